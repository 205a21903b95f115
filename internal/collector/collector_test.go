package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	priceJSON  = `[{"Date":"Wed, 01 Jan 2020 00:00:00 GMT","Price":63.5},{"Date":"Thu, 02 Jan 2020 00:00:00 GMT","Price":64.1}]`
	cpJSON     = `[{"date":"2020-01-02","price_at_cp":64.1}]`
	eventJSON  = `[{"event_date":"Wed, 01 Jan 2020 00:00:00 GMT","event_title":"Strike","event_category":"Conflict","match_status":"✅ STRONG MATCH","days_difference":1}]`
	impactJSON = `[{"change_point_date":"2020-01-02","price_change_pct":6.1,"volatility_change_pct":3,"from_price":null,"to_price":64.1}]`
)

func newBackend(t *testing.T, failPath string) *httptest.Server {
	t.Helper()
	bodies := map[string]string{
		PricePath:       priceJSON,
		ChangePointPath: cpJSON,
		EventPath:       eventJSON,
		ImpactPath:      impactJSON,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == failPath {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		body, ok := bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoader_HTTPSuccess(t *testing.T) {
	srv := newBackend(t, "")
	l := NewLoader(NewHTTPFetcher(srv.URL+"/", "", "", 5*time.Second), srv.URL)

	s, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Prices, 2)
	require.Len(t, s.ChangePoints, 1)
	require.Len(t, s.Events, 1)
	require.Len(t, s.Impacts, 1)

	assert.Equal(t, "2020-01-01", s.Prices[0].Date.String())
	assert.Equal(t, "Strike", s.Events[0].Title)
	assert.Equal(t, "Conflict", s.Events[0].Category)
	assert.False(t, s.Impacts[0].FromPrice.Valid)
	assert.True(t, s.Impacts[0].ToPrice.Valid)
	assert.False(t, s.FetchedAt.IsZero())
}

func TestLoader_AnyEndpointFailureFailsSession(t *testing.T) {
	tests := []struct {
		path     string
		endpoint string
	}{
		{PricePath, "price_data"},
		{ChangePointPath, "change_points"},
		{EventPath, "events"},
		{ImpactPath, "impact_analysis"},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			srv := newBackend(t, tt.path)
			l := NewLoader(NewHTTPFetcher(srv.URL, "", "", 5*time.Second), srv.URL)

			s, err := l.Load(context.Background())
			assert.Nil(t, s)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.endpoint, le.Endpoint)
			assert.Contains(t, le.Error(), "status 500")
			assert.Contains(t, le.UserMessage(), "Make sure the backend is running at "+srv.URL)
		})
	}
}

func TestLoader_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	_, err := NewLoader(NewHTTPFetcher(srv.URL, "", "", time.Second), srv.URL).Load(context.Background())
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Err.Error(), "decode")
}

func TestLoader_BackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLoader(NewHTTPFetcher(url, "", "", time.Second), url).Load(context.Background())
	var le *LoadError
	assert.ErrorAs(t, err, &le)
}

func TestHTTPFetcher_SendsAPIKey(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(srv.URL, "secret", "", time.Second).FetchEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", got)
}

func TestLoader_MockError(t *testing.T) {
	boom := errors.New("boom")
	m := NewDemoFetcher()
	m.ErrEvents = boom

	_, err := NewLoader(m, "demo").Load(context.Background())
	assert.ErrorIs(t, err, boom)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "events", le.Endpoint)
}

func TestNewDemoFetcher_Consistent(t *testing.T) {
	s, err := NewLoader(NewDemoFetcher(), "demo").Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Prices, 180)
	assert.Equal(t, "2022-06-30", s.Prices[179].Date.String())
	assert.Equal(t, s.ChangePoints[0].Date, s.Impacts[0].ChangePointDate)
}
