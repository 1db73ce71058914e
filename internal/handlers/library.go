package handlers

import (
	"net/http"

	"bedtime-streamer/internal/logging"
)

// GetLibrary lists the library folders with their episodes and subtitles.
func (h *Handlers) GetLibrary(w http.ResponseWriter, _ *http.Request) {
	folders, err := h.library.Scan()
	if err != nil {
		logging.Error("library scan failed: %v", err)
		writeJSONError(w, "failed to scan library", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, folders)
}

// GetPresets lists the encoding preset keys in catalog order.
func (h *Handlers) GetPresets(w http.ResponseWriter, _ *http.Request) {
	writeJSONResponse(w, http.StatusOK, h.presets.Keys())
}
