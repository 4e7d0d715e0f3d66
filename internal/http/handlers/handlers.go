package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
	"github.com/preston-bernstein/derby-clock-service/internal/rosters"
	"github.com/preston-bernstein/derby-clock-service/internal/ticker"
)

type nowFunc func() time.Time

// RosterLister lists the rosters a bout can be started with.
type RosterLister interface {
	List() []rosters.Entry
}

// Handler wires HTTP routes to the bout service.
type Handler struct {
	svc      *bout.Service
	rosters  RosterLister
	logger   *slog.Logger
	now      nowFunc
	statusFn func() ticker.Status
}

// NewHandler constructs a Handler with defaults.
func NewHandler(svc *bout.Service, rosters RosterLister, logger *slog.Logger, statusFn func() ticker.Status) *Handler {
	return &Handler{
		svc:      svc,
		rosters:  rosters,
		logger:   logger,
		now:      time.Now,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports whether the clock ticker is keeping up.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady(h.now()) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Rosters lists the loaded rosters.
func (h *Handler) Rosters(w http.ResponseWriter, r *http.Request) {
	entries := []rosters.Entry{}
	if h.rosters != nil {
		entries = h.rosters.List()
	}
	writeJSON(w, http.StatusOK, map[string]any{"rosters": entries}, h.logger)
}

// teamParam parses the {team} path value, answering 400 when it is bad.
func (h *Handler) teamParam(w http.ResponseWriter, r *http.Request) (teams.Team, bool) {
	team, err := teams.Parse(r.PathValue("team"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid team", h.logger)
		return 0, false
	}
	return team, true
}
