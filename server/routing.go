package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the server's HTTP handler, building the routes on first use
func (s *Server) Handler() http.Handler {
	s.muxOnce.Do(s.setupHTTPRoutes)
	return s.mux
}

// setupHTTPRoutes configures all HTTP handlers
func (s *Server) setupHTTPRoutes() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket)) // Canvas sessions (frames, events, input)
	mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/config", s.corsMiddleware(s.HandleConfig))          // Active config (GET, ?introspection=true)
	mux.HandleFunc("/api/render.svg", s.corsMiddleware(s.HandleRenderSVG))   // One-shot canvas snapshot (POST)
	mux.HandleFunc("/api/minimap.png", s.corsMiddleware(s.HandleMinimapPNG)) // One-shot minimap raster (POST)
	s.mux = mux
}

// corsMiddleware adds CORS headers to HTTP responses using configured allowed origins.
// Uses the same origin validation as WebSocket connections (server.allowed_origins config).
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
