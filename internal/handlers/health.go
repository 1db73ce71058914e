package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"bedtime-streamer/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

var startTime = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status         string `json:"status"`
	Ready          bool   `json:"ready"`
	Version        string `json:"version"`
	Uptime         string `json:"uptime"`
	Streaming      bool   `json:"streaming"`
	HistoryEnabled bool   `json:"historyEnabled"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// ready reports whether the output directory can be served.
func (h *Handlers) ready() bool {
	info, err := os.Stat(h.hlsDir)
	return err == nil && info.IsDir()
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready()
	response := HealthResponse{
		Status:         statusHealthy,
		Ready:          ready,
		Version:        startup.Version,
		Uptime:         time.Since(startTime).Round(time.Second).String(),
		Streaming:      h.stream.Status().Running,
		HistoryEnabled: h.history != nil,
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		NumGoroutine:   runtime.NumGoroutine(),
	}

	code := http.StatusOK
	if !ready {
		response.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, code, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.ready() {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}
