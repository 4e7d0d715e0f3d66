package handlers

import (
	"net/http"
	"strconv"
)

// Bouts lists archived bouts, newest first. ?limit caps the count.
func (h *Handler) Bouts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "invalid limit", h.logger)
			return
		}
		limit = n
	}
	list, err := h.svc.ArchivedBouts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bouts": list}, h.logger)
}

// Bout returns one archived bout.
func (h *Handler) Bout(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.ArchivedBout(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rec, h.logger)
}
