package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
)

// Recover turns a handler panic into a 500. Game state consistency faults
// are logged with the offending phase and tag.
func Recover(baseLogger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger := logging.FromContext(r.Context(), baseLogger)
			if ce, ok := gamestate.AsConsistencyError(rec); ok {
				logging.Error(logger, "inconsistent game state", ce,
					logging.FieldPhase, ce.Phase.String(),
					"tag", ce.Tag.String(),
					"stack", string(debug.Stack()),
				)
			} else {
				logging.Error(logger, "handler panic", nil,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
			}

			body := map[string]string{"error": "internal error"}
			if reqID := RequestIDFromContext(r.Context()); reqID != "" {
				body["requestId"] = reqID
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(body)
		}()
		next.ServeHTTP(w, r)
	})
}
