package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Views over the current session
	mux.HandleFunc("/api/overlay", s.handleOverlay)
	mux.HandleFunc("/api/events", s.handleEvents)
	mux.HandleFunc("/api/impacts", s.handleImpacts)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/chart.png", s.handleChart)

	// Session control
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/health", s.handleHealth)

	return mux
}
