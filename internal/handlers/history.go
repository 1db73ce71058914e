package handlers

import (
	"net/http"
	"strconv"

	"bedtime-streamer/internal/database"
	"bedtime-streamer/internal/logging"
)

const maxHistoryLimit = 500

// GetHistory lists recent streams, newest first.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeJSONError(w, "stream history is disabled", http.StatusServiceUnavailable)
		return
	}

	limit := database.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	sessions, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logging.Error("failed to load stream history: %v", err)
		writeJSONError(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, http.StatusOK, sessions)
}
