package bout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/jams"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
	"github.com/preston-bernstein/derby-clock-service/internal/events"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
	"github.com/preston-bernstein/derby-clock-service/internal/metrics"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
)

// outcome is what a command did, plus the event to publish for it.
type outcome struct {
	result string
	event  events.Type
	data   any
}

func ok(event events.Type, data any) outcome {
	return outcome{result: metrics.OutcomeOK, event: event, data: data}
}

func rejected() outcome {
	return outcome{result: metrics.OutcomeRejected}
}

// run executes fn under the bout's write lock, then reports the command and
// any phase changes it caused.
func (s *Service) run(ctx context.Context, command string, fn func(g *gamestate.GameState, now time.Time) (outcome, error)) (outcome, error) {
	var out outcome
	change, err := s.store.Write(func(g *gamestate.GameState, now time.Time) error {
		var err error
		out, err = fn(g, now)
		return err
	})
	if errors.Is(err, store.ErrNoBout) {
		s.recorder.RecordCommand(command, metrics.OutcomeRejected)
		return out, err
	}

	s.handleTransitions(ctx, change)
	if err != nil {
		s.recorder.RecordCommand(command, metrics.OutcomeError)
		return out, err
	}
	s.recorder.RecordCommand(command, out.result)
	logging.Debug(s.logger, "bout command",
		logging.FieldBoutID, change.BoutID,
		logging.FieldCommand, command,
		"outcome", out.result,
	)
	if out.event != "" {
		s.publish(ctx, out.event, change.BoutID, out.data)
	}
	return out, nil
}

func checkTeam(team teams.Team) error {
	if !team.Valid() {
		return fmt.Errorf("%w: %d", gamestate.ErrInvalidTeam, int(team))
	}
	return nil
}

// StartJam starts the next jam. It reports whether a jam is now running.
func (s *Service) StartJam(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, "start_jam", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.Tick(now)
		if g.Phase() == clock.Jam {
			return rejected(), nil
		}
		g.StartJam(now)
		if g.Phase() != clock.Jam {
			return rejected(), nil
		}
		return outcome{result: metrics.OutcomeOK}, nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// StopJam ends the running jam. It reports whether a jam was running.
func (s *Service) StopJam(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, "stop_jam", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.Tick(now)
		if g.Phase() != clock.Jam {
			return rejected(), nil
		}
		g.StopJam(now)
		return outcome{result: metrics.OutcomeOK}, nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// OfficialTimeout stops play for the officials.
func (s *Service) OfficialTimeout(ctx context.Context) (bool, error) {
	out, err := s.run(ctx, "official_timeout", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.OfficialTimeout(now)
		if g.Phase() == clock.Intermission {
			return rejected(), nil
		}
		return ok(events.OfficialTimeout, nil), nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// TeamTimeout calls a team timeout and reports whether it was granted.
func (s *Service) TeamTimeout(ctx context.Context, team teams.Team) (bool, error) {
	if err := checkTeam(team); err != nil {
		return false, err
	}
	out, err := s.run(ctx, "team_timeout", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		if g.TeamTimeout(team, now) {
			return ok(events.TeamTimeoutCalled, map[string]any{"team": team}), nil
		}
		return downgraded(g, team), nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// OfficialReview requests a review and reports whether it was granted.
func (s *Service) OfficialReview(ctx context.Context, team teams.Team) (bool, error) {
	if err := checkTeam(team); err != nil {
		return false, err
	}
	out, err := s.run(ctx, "official_review", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		if g.OfficialReview(team, now) {
			return ok(events.ReviewRequested, map[string]any{"team": team}), nil
		}
		return downgraded(g, team), nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// downgraded reports a refused allowance: an official timeout when play
// stopped anyway, a rejection when nothing happened.
func downgraded(g *gamestate.GameState, team teams.Team) outcome {
	if g.Phase() == clock.Intermission {
		return rejected()
	}
	return outcome{
		result: metrics.OutcomeDowngraded,
		event:  events.OfficialTimeout,
		data:   map[string]any{"requestedBy": team},
	}
}

// ReviewLost removes the team's remaining reviews.
func (s *Service) ReviewLost(ctx context.Context, team teams.Team) error {
	if err := checkTeam(team); err != nil {
		return err
	}
	_, err := s.run(ctx, "review_lost", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.ReviewLost(team, now)
		return ok(events.ReviewLost, map[string]any{"team": team}), nil
	})
	return err
}

// SetPeriodClock overrides the time left in the period.
func (s *Service) SetPeriodClock(ctx context.Context, remaining time.Duration) error {
	_, err := s.run(ctx, "set_period_clock", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.SetPeriodClock(remaining, now)
		return ok(events.PeriodClockSet, map[string]any{"remainingMs": remaining.Milliseconds()}), nil
	})
	return err
}

// SetIntermissionClock overrides the intermission countdown. It reports
// false outside an intermission.
func (s *Service) SetIntermissionClock(ctx context.Context, remaining time.Duration) (bool, error) {
	out, err := s.run(ctx, "set_intermission_clock", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		if !g.SetIntermissionClock(remaining, now) {
			return rejected(), nil
		}
		return ok(events.IntermissionSet, map[string]any{"remainingMs": remaining.Milliseconds()}), nil
	})
	return err == nil && out.result == metrics.OutcomeOK, err
}

// AdjustScore changes the team's points in the current jam.
func (s *Service) AdjustScore(ctx context.Context, team teams.Team, delta int) error {
	if err := checkTeam(team); err != nil {
		return err
	}
	_, err := s.run(ctx, "adjust_score", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.AdjustScore(team, delta, now)
		return ok(events.ScoreAdjusted, map[string]any{
			"team":  team,
			"delta": delta,
			"score": g.TotalScore(),
		}), nil
	})
	return err
}

// SetStarPass records whether the team passed the star in the current jam.
func (s *Service) SetStarPass(ctx context.Context, team teams.Team, pass bool) error {
	if err := checkTeam(team); err != nil {
		return err
	}
	_, err := s.run(ctx, "set_star_pass", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		g.SetStarPass(team, pass, now)
		return ok(events.StarPassSet, map[string]any{"team": team, "starPass": pass}), nil
	})
	return err
}

// RecordPenalty adds a penalty in the current jam. An unknown skater is
// logged and reported with gamestate.ErrUnknownSkater.
func (s *Service) RecordPenalty(ctx context.Context, team teams.Team, number string, code penalties.Code) error {
	if err := checkTeam(team); err != nil {
		return err
	}
	out, err := s.run(ctx, "record_penalty", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		if err := g.RecordPenalty(team, number, code, now); err != nil {
			if errors.Is(err, gamestate.ErrUnknownSkater) {
				return rejected(), nil
			}
			return outcome{}, err
		}
		period, jam := g.PeriodJam(g.LedgerLen() - 1)
		return ok(events.PenaltyRecorded, map[string]any{
			"team":   team,
			"skater": number,
			"code":   code,
			"period": period,
			"jam":    jam,
		}), nil
	})
	if err != nil {
		return err
	}
	if out.result == metrics.OutcomeRejected {
		logging.Warn(s.logger, "penalty for unknown skater dropped",
			logging.FieldTeam, team.String(),
			logging.FieldSkater, number,
		)
		return fmt.Errorf("%w: %s skater %q", gamestate.ErrUnknownSkater, team, number)
	}
	return nil
}

// UpdateJam edits a recorded jam by its 1-based position in the bout.
func (s *Service) UpdateJam(ctx context.Context, jam int, team teams.Team, u gamestate.JamUpdate) error {
	if err := checkTeam(team); err != nil {
		return err
	}
	_, err := s.run(ctx, "update_jam", func(g *gamestate.GameState, now time.Time) (outcome, error) {
		if err := g.UpdateJam(jam, team, u, now); err != nil {
			return outcome{}, err
		}
		return ok(events.JamUpdated, map[string]any{"jam": jam, "team": team}), nil
	})
	if errors.Is(err, gamestate.ErrUnknownJam) || errors.Is(err, jams.ErrInvalidTrip) {
		logging.Warn(s.logger, "jam update refused",
			logging.FieldJam, jam,
			logging.FieldTeam, team.String(),
			"error", err,
		)
	}
	return err
}
