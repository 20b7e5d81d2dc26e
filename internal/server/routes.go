package server

import (
	"log/slog"
	"net/http"
)

// NewRouter wires the API routes and middleware. Routing uses the Go 1.22+
// ServeMux method patterns; allowedOrigins comes straight from
// config.Config.Origins.
func NewRouter(h *Handlers, logger *slog.Logger, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("POST /api/swap", h.CreateSwap)
	mux.HandleFunc("GET /api/swap/{id}", h.GetSwap)
	mux.HandleFunc("DELETE /api/swap/{id}", h.CancelSwap)

	mux.HandleFunc("POST /api/lipsync", h.CreateLipSync)
	mux.HandleFunc("GET /api/lipsync/{id}", h.GetLipSync)

	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		CORSMiddleware(allowedOrigins),
	)

	return chain(mux)
}
