package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/jams"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/http/middleware"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
	"github.com/preston-bernstein/derby-clock-service/internal/rosters"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	switch {
	case errors.Is(err, store.ErrNoBout):
		writeError(w, r, http.StatusConflict, "no bout in progress", logger)
	case errors.Is(err, bout.ErrInvalidStart),
		errors.Is(err, gamestate.ErrInvalidTeam),
		errors.Is(err, jams.ErrInvalidTrip):
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
	case errors.Is(err, gamestate.ErrUnknownJam),
		errors.Is(err, snapshots.ErrNotFound),
		errors.Is(err, rosters.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error(), logger)
	case errors.Is(err, snapshots.ErrNotConfigured):
		writeError(w, r, http.StatusServiceUnavailable, "bout archive not configured", logger)
	default:
		logging.Error(logger, "request failed", err)
		writeError(w, r, http.StatusInternalServerError, "internal error", logger)
	}
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
