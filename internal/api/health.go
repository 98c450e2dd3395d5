package api

import (
	"net/http"

	"github.com/affinity-search/affinity/internal/log"
)

// healthHandler serves the liveness message and probes.
type healthHandler struct {
	logger log.Logger
	pinger Pinger
}

// root implements GET / — the liveness message of the original surface.
func (h *healthHandler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "affinity backend is running",
	})
}

// liveness implements GET /health.
func (h *healthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness implements GET /ready: the service is ready when the model
// server answers. Without a pinger the probe always succeeds.
func (h *healthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Error("readiness check failed", "error", err)
			http.Error(w, "model server not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
