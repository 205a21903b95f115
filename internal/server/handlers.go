package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"BrentLens/internal/calculator"
	"BrentLens/internal/collector"
	"BrentLens/internal/impact"
	"BrentLens/internal/model"
	"BrentLens/internal/recorder"
	"BrentLens/internal/render"
	"BrentLens/internal/session"
	"BrentLens/internal/table"
)

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// writeSessionError reports why there is nothing to show.
func writeSessionError(w http.ResponseWriter, err error) {
	var le *collector.LoadError
	if errors.As(err, &le) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  le.Err.Error(),
			"hint":   le.UserMessage(),
		})
		return
	}
	writeError(w, http.StatusServiceUnavailable, err.Error())
}

// current loads the session or writes the error response.
func (s *Server) current(w http.ResponseWriter) (*session.Session, bool) {
	sess, err := s.store.Current()
	if err != nil {
		writeSessionError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.current(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Overlay)
}

type eventsResponse struct {
	Cursor table.Cursor  `json:"cursor"`
	Events []model.Event `json:"events"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.current(w)
	if !ok {
		return
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		key, err := table.ParseSortKey(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if sess, err = s.store.RequestSort(key); err != nil {
			writeSessionError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Cursor: sess.Cursor, Events: sess.SortedEvents()})
}

type impactsResponse struct {
	PriceThresholdPct      decimal.Decimal `json:"price_threshold_pct"`
	VolatilityThresholdPct decimal.Decimal `json:"volatility_threshold_pct"`
	Impacts                []impact.Card   `json:"impacts"`
	Message                string          `json:"message,omitempty"`
}

// rankOptions applies query overrides on top of the configured thresholds.
func (s *Server) rankOptions(r *http.Request) (impact.RankOptions, error) {
	opts := s.opts.Rank
	q := r.URL.Query()
	if v := q.Get("price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return opts, errors.New("invalid price threshold")
		}
		opts.PriceThresholdPct = d
	}
	if v := q.Get("volatility"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return opts, errors.New("invalid volatility threshold")
		}
		opts.VolatilityThresholdPct = d
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New("invalid limit")
		}
		opts.Limit = n
	}
	return opts, nil
}

func (s *Server) handleImpacts(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	opts, err := s.rankOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.current(w)
	if !ok {
		return
	}
	resp := impactsResponse{
		PriceThresholdPct:      opts.PriceThresholdPct,
		VolatilityThresholdPct: opts.VolatilityThresholdPct,
		Impacts:                impact.Cards(sess.TopImpacts(opts)),
	}
	if len(resp.Impacts) == 0 {
		resp.Message = "No significant impacts found in the data."
	}
	writeJSON(w, http.StatusOK, resp)
}

type summaryResponse struct {
	Title            string     `json:"title"`
	ChangePoints     int        `json:"change_points"`
	StrongMatches    int        `json:"strong_matches"`
	Events           int        `json:"events"`
	EventsWithPrice  int        `json:"events_with_price"`
	First            model.Date `json:"first"`
	Last             model.Date `json:"last"`
	High             string     `json:"high,omitempty"`
	Low              string     `json:"low,omitempty"`
	OverallChangePct string     `json:"overall_change_pct,omitempty"`
	LoadedAt         time.Time  `json:"loaded_at"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.current(w)
	if !ok {
		return
	}
	m := sess.Overlay
	resp := summaryResponse{
		Title:           s.opts.Title,
		ChangePoints:    len(m.ChangePoints),
		StrongMatches:   m.StrongCount(),
		Events:          len(m.Events),
		EventsWithPrice: len(m.Plottable()),
		LoadedAt:        sess.LoadedAt,
	}
	if rng, err := calculator.CalculateRange(m.PriceLine); err == nil {
		resp.First, resp.Last = rng.First.Date, rng.Last.Date
		resp.High, resp.Low = rng.High.StringFixed(2), rng.Low.StringFixed(2)
		if pct, err := rng.ChangePct(); err == nil {
			resp.OverallChangePct = impact.FormatPct(pct)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	sess, ok := s.current(w)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Chart(&buf, sess.Overlay, s.opts.Chart); err != nil {
		if errors.Is(err, render.ErrNotEnoughData) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Printf("[ERROR] render chart: %v", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	sess, err := s.store.Refresh(r.Context())
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "success",
		"change_points": len(sess.Overlay.ChangePoints),
		"events":        len(sess.Overlay.Events),
		"loaded_at":     sess.LoadedAt,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	resp := map[string]any{"status": "ok", "loaded": false}
	if sess, err := s.store.Current(); err == nil {
		resp["loaded"] = true
		resp["loaded_at"] = sess.LoadedAt
	}
	if le := s.store.LastError(); le != nil {
		resp["last_error"] = le.Error()
	}
	if s.opts.Recorder != nil {
		loads, err := s.opts.Recorder.RecentLoads(recentLoadLimit)
		if err != nil {
			log.Printf("[WARN] read recent loads: %v", err)
		} else {
			resp["recent_loads"] = loadViews(loads)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

const recentLoadLimit = 5

type loadView struct {
	At           time.Time `json:"at"`
	Success      bool      `json:"success"`
	DurationMs   int64     `json:"duration_ms"`
	ChangePoints int       `json:"change_points"`
	StrongEvents int       `json:"strong_events"`
	Significant  int       `json:"significant_impacts"`
	Error        string    `json:"error,omitempty"`
}

func loadViews(loads []recorder.LoadEvent) []loadView {
	out := make([]loadView, len(loads))
	for i, l := range loads {
		out[i] = loadView{
			At:           l.At,
			Success:      l.Success,
			DurationMs:   l.Duration.Milliseconds(),
			ChangePoints: l.ChangePoints,
			StrongEvents: l.StrongEvents,
			Significant:  l.Significant,
			Error:        l.Error,
		}
	}
	return out
}
