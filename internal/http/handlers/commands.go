package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
)

func (h *Handler) writeChanged(w http.ResponseWriter, r *http.Request, changed bool, err error) {
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed}, h.logger)
}

func (h *Handler) writeGranted(w http.ResponseWriter, r *http.Request, granted bool, err error) {
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"granted": granted}, h.logger)
}

func (h *Handler) writeOK(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// StartJam starts the next jam.
func (h *Handler) StartJam(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.StartJam(r.Context())
	h.writeChanged(w, r, changed, err)
}

// StopJam ends the running jam.
func (h *Handler) StopJam(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.StopJam(r.Context())
	h.writeChanged(w, r, changed, err)
}

// OfficialTimeout stops play for the officials.
func (h *Handler) OfficialTimeout(w http.ResponseWriter, r *http.Request) {
	changed, err := h.svc.OfficialTimeout(r.Context())
	h.writeChanged(w, r, changed, err)
}

// TeamTimeout calls a timeout for the {team} in the path.
func (h *Handler) TeamTimeout(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	granted, err := h.svc.TeamTimeout(r.Context(), team)
	h.writeGranted(w, r, granted, err)
}

// OfficialReview requests a review for the {team} in the path.
func (h *Handler) OfficialReview(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	granted, err := h.svc.OfficialReview(r.Context(), team)
	h.writeGranted(w, r, granted, err)
}

// ReviewLost removes the team's remaining reviews.
func (h *Handler) ReviewLost(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	h.writeOK(w, r, h.svc.ReviewLost(r.Context(), team))
}

// SetPeriodClock overrides the period clock.
func (h *Handler) SetPeriodClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	h.writeOK(w, r, h.svc.SetPeriodClock(r.Context(), req.duration()))
}

// SetIntermissionClock overrides the intermission countdown.
func (h *Handler) SetIntermissionClock(w http.ResponseWriter, r *http.Request) {
	var req clockRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	changed, err := h.svc.SetIntermissionClock(r.Context(), req.duration())
	h.writeChanged(w, r, changed, err)
}

// AdjustScore changes the team's points in the current jam.
func (h *Handler) AdjustScore(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	var req scoreRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	h.writeOK(w, r, h.svc.AdjustScore(r.Context(), team, req.Delta))
}

// SetStarPass records a star pass in the current jam.
func (h *Handler) SetStarPass(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	var req starPassRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	h.writeOK(w, r, h.svc.SetStarPass(r.Context(), team, *req.StarPass))
}

// RecordPenalty adds a penalty to the current jam. Unknown skaters are
// accepted and dropped.
func (h *Handler) RecordPenalty(w http.ResponseWriter, r *http.Request) {
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	var req penaltyRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	code, err := penalties.Parse(req.Code)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "code is invalid", h.logger)
		return
	}
	err = h.svc.RecordPenalty(r.Context(), team, req.Skater, code)
	if errors.Is(err, gamestate.ErrUnknownSkater) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"}, h.logger)
		return
	}
	h.writeOK(w, r, err)
}

// UpdateJam edits lead, lost, call, star pass or a trip of a recorded jam.
func (h *Handler) UpdateJam(w http.ResponseWriter, r *http.Request) {
	jam, err := strconv.Atoi(r.PathValue("jam"))
	if err != nil || jam < 1 {
		writeError(w, r, http.StatusBadRequest, "invalid jam", h.logger)
		return
	}
	team, ok := h.teamParam(w, r)
	if !ok {
		return
	}
	var req jamUpdateRequest
	if !h.bindJSON(w, r, &req) {
		return
	}
	h.writeOK(w, r, h.svc.UpdateJam(r.Context(), jam, team, req.update()))
}
