package gamestate

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/jams"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

const (
	DefaultTimeouts = 3
	DefaultReviews  = 2
)

// Config sets the clock timings and per-team allowances for a bout.
type Config struct {
	Policy   clock.Policy
	Timeouts int
	Reviews  int
}

func (c Config) withDefaults() Config {
	if c.Timeouts <= 0 {
		c.Timeouts = DefaultTimeouts
	}
	if c.Reviews <= 0 {
		c.Reviews = DefaultReviews
	}
	return c
}

// TeamState is one team's roster and remaining allowances.
type TeamState struct {
	Roster   *roster.Roster
	Timeouts int
	Reviews  int
}

// GameState drives one bout. It is not safe for concurrent use; the bout
// store serializes every call.
type GameState struct {
	cfg               Config
	teams             teams.Pair[TeamState]
	clock             *clock.Clock
	ledger            *jams.Ledger
	tag               Tag
	secondPeriodStart int
	pending           []clock.Transition
}

// New starts a bout in its pre-game countdown.
func New(home, away *roster.Roster, countdown time.Duration, now time.Time, cfg Config) *GameState {
	cfg = cfg.withDefaults()
	g := &GameState{
		cfg:    cfg,
		clock:  clock.New(cfg.Policy, countdown, now),
		ledger: jams.NewLedger(),
		tag:    Tag{Kind: TagPreGame},
	}
	g.teams.Home = TeamState{Roster: home, Timeouts: cfg.Timeouts, Reviews: cfg.Reviews}
	g.teams.Away = TeamState{Roster: away, Timeouts: cfg.Timeouts, Reviews: cfg.Reviews}
	return g
}

func (g *GameState) team(team teams.Team) *TeamState {
	if !team.Valid() {
		panic(fmt.Errorf("%w: %d", ErrInvalidTeam, int(team)))
	}
	return g.teams.Get(team)
}

// sync reconciles the clock and applies side effects of any natural
// transitions before a command runs.
func (g *GameState) sync(now time.Time) {
	g.apply(g.clock.Settle(now))
}

func (g *GameState) apply(ts []clock.Transition) {
	for _, t := range ts {
		if t.From == clock.Jam {
			end := t.At
			g.ledger.Current().End = &end
			g.ledger.Append()
			g.tag = Tag{}
		}
		if t.From == clock.Intermission && g.tag.Kind == TagHalftime {
			g.teams.Home.Reviews = g.cfg.Reviews
			g.teams.Away.Reviews = g.cfg.Reviews
		}
		switch t.To {
		case clock.Jam:
			g.tag = Tag{}
			if cur := g.ledger.Current(); cur.Start == nil {
				start := t.At
				cur.Start = &start
			}
		case clock.Intermission:
			if g.clock.PeriodNumber() == 1 {
				g.secondPeriodStart = g.ledger.Len() - 1
				g.tag = Tag{Kind: TagHalftime}
			} else {
				g.tag = Tag{}
			}
		case clock.OtherTimeout:
			if t.Cause == clock.CauseCeiling {
				g.tag = Tag{Kind: TagOfficialTimeout}
			}
		}
		g.pending = append(g.pending, t)
	}
}

// Tick reconciles the clock and reports whether the phase changed.
func (g *GameState) Tick(now time.Time) bool {
	before := len(g.pending)
	g.sync(now)
	return len(g.pending) > before
}

// DrainTransitions returns and forgets every transition applied since the
// last call.
func (g *GameState) DrainTransitions() []clock.Transition {
	out := g.pending
	g.pending = nil
	return out
}

// Final reports whether the second period is over. No further jams start.
func (g *GameState) Final() bool {
	return g.clock.Phase() == clock.Intermission && g.clock.PeriodNumber() >= 2 && g.tag.Kind == TagNone
}

// StartJam starts the next jam. Leaving an intermission starts the next period.
func (g *GameState) StartJam(now time.Time) {
	g.sync(now)
	if g.Final() {
		return
	}
	g.apply(g.clock.StartJam(now))
}

// StopJam ends the running jam and opens the next ledger slot.
func (g *GameState) StopJam(now time.Time) {
	g.sync(now)
	g.apply(g.clock.StopJam(now))
}

// OfficialTimeout stops play for the officials without using any allowance.
func (g *GameState) OfficialTimeout(now time.Time) {
	g.sync(now)
	if g.clock.Phase() == clock.Intermission {
		return
	}
	g.apply(g.clock.OtherTimeout(now))
	g.tag = Tag{Kind: TagOfficialTimeout}
}

// TeamTimeout grants a team timeout while the team has one left. Otherwise
// the request becomes an official timeout and false is returned.
func (g *GameState) TeamTimeout(team teams.Team, now time.Time) bool {
	ts := g.team(team)
	g.sync(now)
	if g.clock.Phase() == clock.Intermission {
		return false
	}
	if ts.Timeouts <= 0 {
		g.apply(g.clock.OtherTimeout(now))
		g.tag = Tag{Kind: TagOfficialTimeout}
		return false
	}
	ts.Timeouts--
	g.apply(g.clock.TeamTimeout(now))
	g.tag = Tag{Kind: TagTeamTimeout, Team: team}
	return true
}

// OfficialReview grants a captain's review while the team has one left.
// Reviews share the official timeout phase and differ only by tag.
func (g *GameState) OfficialReview(team teams.Team, now time.Time) bool {
	ts := g.team(team)
	g.sync(now)
	if g.clock.Phase() == clock.Intermission {
		return false
	}
	g.apply(g.clock.OtherTimeout(now))
	if ts.Reviews <= 0 {
		g.tag = Tag{Kind: TagOfficialTimeout}
		return false
	}
	ts.Reviews--
	g.tag = Tag{Kind: TagReview, Team: team}
	return true
}

// ReviewLost zeroes the team's remaining reviews.
func (g *GameState) ReviewLost(team teams.Team, now time.Time) {
	ts := g.team(team)
	g.sync(now)
	ts.Reviews = 0
}

// SetPeriodClock overrides the time left in the period.
func (g *GameState) SetPeriodClock(remaining time.Duration, now time.Time) {
	g.apply(g.clock.SetPeriodClock(now, remaining))
}

// SetIntermissionClock overrides the pre-game or halftime countdown.
func (g *GameState) SetIntermissionClock(remaining time.Duration, now time.Time) bool {
	ts, ok := g.clock.SetIntermissionClock(now, remaining)
	g.apply(ts)
	return ok
}

// AdjustScore changes the running trip of the current jam slot.
func (g *GameState) AdjustScore(team teams.Team, delta int, now time.Time) {
	g.team(team)
	g.sync(now)
	g.ledger.Current().Team(team).AdjustPoints(delta)
}

// SetStarPass records a star pass in the current jam slot.
func (g *GameState) SetStarPass(team teams.Team, pass bool, now time.Time) {
	g.team(team)
	g.sync(now)
	g.ledger.Current().Team(team).SetStarPass(pass)
}

// RecordPenalty adds a penalty to the current jam slot. Numbers missing from
// the roster are dropped and reported with ErrUnknownSkater.
func (g *GameState) RecordPenalty(team teams.Team, number string, code penalties.Code, now time.Time) error {
	ts := g.team(team)
	g.sync(now)
	idx, ok := ts.Roster.Index(number)
	if !ok {
		return fmt.Errorf("%w: %s skater %q", ErrUnknownSkater, team, number)
	}
	side := g.ledger.Current().Team(team)
	side.Penalties = append(side.Penalties, jams.Penalty{Skater: idx, Code: code})
	return nil
}

// JamUpdate carries the fields a jam edit may change. Nil fields are left alone.
type JamUpdate struct {
	Lead     *bool
	Lost     *bool
	Call     *bool
	StarPass *bool
	Trip     *TripPoints
}

// TripPoints sets the points of a 1-based scoring trip.
type TripPoints struct {
	Trip   int
	Points int
}

// UpdateJam edits a recorded jam by its 1-based position in the whole bout.
func (g *GameState) UpdateJam(jam int, team teams.Team, u JamUpdate, now time.Time) error {
	g.team(team)
	g.sync(now)
	j := g.ledger.At(jam - 1)
	if j == nil {
		return fmt.Errorf("%w: %d", ErrUnknownJam, jam)
	}
	side := j.Team(team)
	if u.StarPass != nil {
		side.SetStarPass(*u.StarPass)
	}
	if u.Lost != nil {
		side.SetLost(*u.Lost)
	}
	if u.Lead != nil {
		j.SetLead(team, *u.Lead)
	}
	if u.Call != nil {
		side.Call = *u.Call
	}
	if u.Trip != nil {
		if err := side.SetTrip(u.Trip.Trip, u.Trip.Points); err != nil {
			return err
		}
	}
	return nil
}
