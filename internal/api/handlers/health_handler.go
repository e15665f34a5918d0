package handlers

import (
	"net/http"

	"github.com/postboard/postboard-be/internal/monitoring"
)

// HealthHandler reports the latest health monitor snapshot.
type HealthHandler struct {
	monitor *monitoring.HealthMonitor
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(monitor *monitoring.HealthMonitor) *HealthHandler {
	return &HealthHandler{monitor: monitor}
}

// Get responds 200 when the last check succeeded and 503 otherwise.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	status := h.monitor.Snapshot()
	code := http.StatusOK
	if status.Status != monitoring.StatusOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
