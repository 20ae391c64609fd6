package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	tempPath string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(tempPath string) *HealthHandler {
	return &HealthHandler{tempPath: tempPath}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status        string  `json:"status"`
	Timestamp     string  `json:"timestamp"`
	DiskFreeBytes int64   `json:"disk_free_bytes,omitempty"`
	DiskUsedPct   float64 `json:"disk_used_pct,omitempty"`
}

// Live handles GET /health - liveness probe.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe. The service is ready when the
// temporary directory is writable; downloads cannot work without it.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	probe := filepath.Join(h.tempPath, ".probe-"+uuid.New().String())
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "error",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	os.Remove(probe)

	_, free, _, usedPct := getDiskStats(h.tempPath)
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DiskFreeBytes: free,
		DiskUsedPct:   usedPct,
	})
}
