package handlers

import (
	"errors"
	"net/http"

	"bedtime-streamer/internal/logging"
	"bedtime-streamer/internal/presets"
	"bedtime-streamer/internal/probe"
	"bedtime-streamer/internal/stream"
)

type probeRequest struct {
	Path string `json:"path"`
}

// Probe returns the subtitle and video summary of a file, or null when the
// file cannot be probed.
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !h.library.Contains(req.Path) {
		logging.Warn("probe rejected, path outside library: %q", req.Path)
		writeJSONError(w, "path is outside the library", http.StatusBadRequest)
		return
	}

	meta, err := h.prober.Probe(r.Context(), req.Path)
	if err != nil {
		logging.Warn("probe failed: %v", err)
		writeJSONResponse(w, http.StatusOK, nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, meta)
}

// StartStream replaces the current stream with the requested one.
func (h *Handlers) StartStream(w http.ResponseWriter, r *http.Request) {
	var req stream.Request
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}
	if !h.library.Contains(req.Path) {
		logging.Warn("start rejected, path outside library: %q", req.Path)
		writeJSONError(w, "path is outside the library", http.StatusBadRequest)
		return
	}
	if req.SubtitlePath != "" && !h.library.Contains(req.SubtitlePath) {
		logging.Warn("start rejected, subtitle outside library: %q", req.SubtitlePath)
		writeJSONError(w, "sub_path is outside the library", http.StatusBadRequest)
		return
	}

	if _, err := h.stream.Start(r.Context(), req); err != nil {
		status := startErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.Error("failed to start stream for %s: %v", req.Path, err)
		} else {
			logging.Warn("stream start rejected for %s: %v", req.Path, err)
		}
		writeJSONError(w, err.Error(), status)
		return
	}

	writeJSONStatus(w, "started")
}

func startErrorStatus(err error) int {
	switch {
	case errors.Is(err, presets.ErrUnknownPreset), errors.Is(err, stream.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, probe.ErrProbe):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// StopStream stops the current stream, if any.
func (h *Handlers) StopStream(w http.ResponseWriter, _ *http.Request) {
	if err := h.stream.Stop(); err != nil {
		logging.Error("failed to stop stream: %v", err)
		writeJSONError(w, "failed to stop stream", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "stopped")
}

// GetStatus reports whether a stream is running and how the last one ended.
func (h *Handlers) GetStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, http.StatusOK, h.stream.Status())
}
