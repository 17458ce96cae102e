package server

import "net/http"

// registerRoutes wires every endpoint onto the mux. REST endpoints go
// through the per-client rate limiter; the WebSocket upgrade does not, since
// a connection is a single long-lived request.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/health", s.rateLimitMiddleware(s.HandleHealth))
	mux.HandleFunc("/api/graph", s.rateLimitMiddleware(s.HandleGraph))
	mux.HandleFunc("/api/tree/", s.rateLimitMiddleware(s.HandleTree))
	mux.HandleFunc("/api/validate", s.rateLimitMiddleware(s.HandleValidate))
	mux.HandleFunc("/api/order/analyze", s.rateLimitMiddleware(s.HandleAnalyze))
	mux.HandleFunc("/api/order/synthesize", s.rateLimitMiddleware(s.HandleSynthesize))
	mux.HandleFunc("/api/export", s.rateLimitMiddleware(s.HandleExport))
	mux.HandleFunc("/api/snapshots", s.rateLimitMiddleware(s.HandleSnapshots))
	mux.HandleFunc("/api/snapshots/", s.rateLimitMiddleware(s.HandleSnapshot))
}
