package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
)

// StartBout starts a new bout, replacing any bout in progress.
func (h *Handler) StartBout(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	logger := loggerFromContext(r, h.logger)

	start := bout.StartRequest{
		Home:      strings.TrimSpace(req.Home),
		Away:      strings.TrimSpace(req.Away),
		Countdown: time.Duration(req.CountdownMinutes) * time.Minute,
	}
	if req.StartAt != nil {
		start.StartAt = &bout.StartAt{
			Hours:    req.StartAt.Hours,
			Minutes:  req.StartAt.Minutes,
			Meridiem: strings.ToLower(req.StartAt.AmPm),
		}
	}
	info, err := h.svc.Start(r.Context(), start)
	if err != nil {
		logging.Warn(logger, "bout start refused", "home", req.Home, "away", req.Away, "error", err)
		writeServiceError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusCreated, info, logger)
}

// Game exports the whole running bout.
func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	info, snap, err := h.svc.Export()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bout": info, "state": snap}, h.logger)
}

// Scoreboard returns the scoreboard projection.
func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Scoreboard()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, board, h.logger)
}

// Score returns the total and current jam scores.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Scoreboard()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]teams.Score{
		"total": {Home: board.Teams.Home.Score, Away: board.Teams.Away.Score},
		"jam":   {Home: board.Teams.Home.JamScore, Away: board.Teams.Away.JamScore},
	}, h.logger)
}

// PeriodTime returns the period number and its remaining time.
func (h *Handler) PeriodTime(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Scoreboard()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":  board.Period,
		"clock":   board.PeriodClock,
		"clockMs": board.PeriodClockMS,
	}, h.logger)
}

// ActiveClock returns the featured clock.
func (h *Handler) ActiveClock(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Scoreboard()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, board.Active, h.logger)
}

// Allowances returns the timeouts and reviews each team has left.
func (h *Handler) Allowances(w http.ResponseWriter, r *http.Request) {
	board, err := h.svc.Scoreboard()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]teams.Pair[int]{
		"timeouts": {Home: board.Teams.Home.Timeouts, Away: board.Teams.Away.Timeouts},
		"reviews":  {Home: board.Teams.Home.Reviews, Away: board.Teams.Away.Reviews},
	}, h.logger)
}

// Jams lists the jam ledger.
func (h *Handler) Jams(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.Jams()
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jams": views}, h.logger)
}

// Penalties groups a team's penalties by skater number.
func (h *Handler) Penalties(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	byNumber, err := h.svc.Penalties(team)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"team": team, "penalties": byNumber}, h.logger)
}

// Roster returns a team's roster in the running bout.
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	rost, err := h.svc.Roster(team)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rost, h.logger)
}
