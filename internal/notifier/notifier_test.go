package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BrentLens/internal/collector"
	"BrentLens/internal/model"
	"BrentLens/internal/overlay"
	"BrentLens/internal/table"
)

func demoModel(t *testing.T) (*overlay.Model, *collector.Series) {
	t.Helper()
	s, err := collector.NewLoader(collector.NewDemoFetcher(), "demo").Load(context.Background())
	require.NoError(t, err)
	return overlay.Build(s.Prices, s.ChangePoints, s.Events), s
}

func TestFormatHeadline(t *testing.T) {
	m, _ := demoModel(t)
	assert.Equal(t, "Detected 1 structural change points aligned with 1 major events", FormatHeadline(m))
}

func TestFormatSummary(t *testing.T) {
	m, _ := demoModel(t)
	out := FormatSummary("Brent <Crude>", m)
	assert.Contains(t, out, "Brent &lt;Crude&gt;")
	assert.Contains(t, out, "2022-01-02 → 2022-06-30 (180 points)")
	assert.Contains(t, out, "1 of 2 events have no price on their date")
}

func TestFormatImpacts(t *testing.T) {
	assert.Contains(t, FormatImpacts(nil), NoImpacts)

	recs := []model.ImpactRecord{{
		ChangePointDate:     model.MustParseDate("2008-07-14"),
		PriceChangePct:      decimal.NewFromFloat(-35.24),
		VolatilityChangePct: decimal.NewFromFloat(80),
		ToPrice:             decimal.NewNullDecimal(decimal.NewFromFloat(95.5)),
	}}
	out := FormatImpacts(recs)
	assert.Contains(t, out, "Change on 2008-07-14")
	assert.Contains(t, out, "Price Change: -35.2%")
	assert.Contains(t, out, "Volatility Change: +80.0%")
	assert.Contains(t, out, "Price Before: unknown | After: $95.50")
	assert.NotContains(t, out, NoImpacts)
}

func TestFormatEventTable(t *testing.T) {
	_, s := demoModel(t)
	c := table.NewCursor()
	out := FormatEventTable(c.SortedView(s.Events), c, 1)
	assert.Contains(t, out, "by event_date ▼")
	assert.Contains(t, out, "Demo summit")
	assert.NotContains(t, out, "Demo supply shock")
	assert.Contains(t, out, "… 1 more")

	assert.Contains(t, FormatEventTable(nil, c, 10), "No events.")
}

func TestFormatEventLine(t *testing.T) {
	m, _ := demoModel(t)
	require.Len(t, m.Events, 2)
	assert.Contains(t, FormatEventLine(m.Events[0]), "$")
	assert.Contains(t, FormatEventLine(m.Events[1]), "no price")
}

func TestFormatLoadError(t *testing.T) {
	le := &collector.LoadError{Source: "http://127.0.0.1:5000", Endpoint: "events", Err: errors.New("connection refused")}
	out := FormatLoadError(le)
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "Make sure the backend is running at http://127.0.0.1:5000")
}

func TestFormatLegend(t *testing.T) {
	out := FormatLegend()
	for _, hex := range []string{"ff0000", "ff9966", "cccccc"} {
		assert.Contains(t, out, hex)
	}
}

func TestTelegramNotifier_SendAndPhoto(t *testing.T) {
	var paths []string
	var text string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			_ = json.NewDecoder(r.Body).Decode(&p)
			text = p["text"]
		case strings.HasSuffix(r.URL.Path, "/sendPhoto"):
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			f, _, err := r.FormFile("photo")
			if !assert.NoError(t, err) {
				return
			}
			data, _ := io.ReadAll(f)
			assert.Equal(t, []byte("png"), data)
			assert.Equal(t, "caption", r.FormValue("caption"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	require.True(t, tn.Enabled())

	require.NoError(t, tn.Send(context.Background(), "hello"))
	require.NoError(t, tn.SendPhoto(context.Background(), []byte("png"), "caption"))
	assert.Equal(t, []string{"/bottoken/sendMessage", "/bottoken/sendPhoto"}, paths)
	assert.Equal(t, "hello", text)
}

func TestTelegramNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad chat", http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	err := tn.SendWithRetry(context.Background(), "hello", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestTelegramNotifier_Disabled(t *testing.T) {
	var tn *TelegramNotifier
	assert.False(t, tn.Enabled())
	assert.False(t, NewTelegramNotifier("", "", "").Enabled())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
}

func TestStartPolling_BacksOffOnAPIError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"ok":false,"error_code":401,"description":"Unauthorized"}`},
		{"ok false", http.StatusOK, `{"ok":false,"description":"Conflict"}`},
		{"malformed", http.StatusOK, `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tn := NewTelegramNotifier("bad", "42", "")
			tn.APIBase = srv.URL
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()

			done := make(chan struct{})
			go func() {
				tn.StartPolling(ctx, func(context.Context, string) error {
					t.Error("handler must not run on a failed poll")
					return nil
				})
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("polling did not stop after cancel")
			}
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestStartPolling_DispatchesCommands(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /summary "}},{"update_id":8}]}`))
			return
		}
		assert.Equal(t, "9", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":false,"description":"stop"}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	go tn.StartPolling(ctx, func(_ context.Context, cmd string) error {
		got <- cmd
		return errors.New("send failed")
	})
	select {
	case cmd := <-got:
		assert.Equal(t, "/summary", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("command was not dispatched")
	}
}

func TestDeliver(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/sendPhoto") {
			http.Error(w, "bad photo", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "")
	tn.APIBase = srv.URL
	require.NoError(t, tn.Deliver(context.Background(), Reply{Text: "hi"}))
	assert.ErrorContains(t, tn.Deliver(context.Background(), Reply{Text: "cap", Photo: []byte("png")}), "status 400")
	require.NoError(t, tn.Deliver(context.Background(), Reply{}))
	assert.Equal(t, []string{"/bottoken/sendMessage", "/bottoken/sendPhoto"}, paths)
}
