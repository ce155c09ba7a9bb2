package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Metrics(),
	)

	// Graphs
	mux.Handle("POST /api/v1/graphs/run", chain(http.HandlerFunc(h.RunGraph)))

	// Runs
	mux.Handle("GET /api/v1/runs", chain(http.HandlerFunc(h.ListRuns)))
	mux.Handle("GET /api/v1/runs/{id}", chain(http.HandlerFunc(h.GetRun)))

	// SSE-стрим без Logging: соединение живёт минутами.
	mux.Handle("GET /api/v1/runs/{id}/stream", Recovery(h.logger)(http.HandlerFunc(h.StreamRun)))
}
