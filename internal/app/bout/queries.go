package bout

import (
	"context"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
	"github.com/preston-bernstein/derby-clock-service/internal/timeutil"
)

// TeamBoard is one team's line on the scoreboard.
type TeamBoard struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	JamScore int    `json:"jamScore"`
	Timeouts int    `json:"timeouts"`
	Reviews  int    `json:"reviews"`
}

// ActiveView is the featured clock.
type ActiveView struct {
	Kind    gamestate.ActiveKind `json:"kind"`
	Team    teams.Team           `json:"team,omitempty"`
	Jam     int                  `json:"jam,omitempty"`
	Clock   string               `json:"clock"`
	ClockMS int64                `json:"clockMs"`
}

// Scoreboard is everything a bout display needs.
type Scoreboard struct {
	BoutID        string                `json:"boutId"`
	Teams         teams.Pair[TeamBoard] `json:"teams"`
	Period        int                   `json:"period"`
	PeriodClock   string                `json:"periodClock"`
	PeriodClockMS int64                 `json:"periodClockMs"`
	Jam           int                   `json:"jam"`
	Phase         string                `json:"phase"`
	Active        ActiveView            `json:"active"`
	Final         bool                  `json:"final"`
	AsOf          time.Time             `json:"asOf"`
}

// Scoreboard projects the current bout.
func (s *Service) Scoreboard() (Scoreboard, error) {
	var board Scoreboard
	info, err := s.store.Read(func(g *gamestate.GameState) error {
		board = buildScoreboard(g)
		return nil
	})
	if err != nil {
		return Scoreboard{}, err
	}
	board.BoutID = info.ID
	return board, nil
}

func buildScoreboard(g *gamestate.GameState) Scoreboard {
	total, jam := g.TotalScore(), g.CurrentJamScore()
	timeouts, reviews := g.TimeoutsRemaining(), g.ReviewsRemaining()
	period, remaining := g.PeriodTime()
	active := g.ActiveClock()
	state := g.ClockState()

	board := Scoreboard{
		Period:        period,
		PeriodClock:   timeutil.FormatClock(remaining),
		PeriodClockMS: remaining.Milliseconds(),
		Jam:           g.JamNumber(),
		Phase:         state.Phase.String(),
		Active: ActiveView{
			Kind:    active.Kind,
			Team:    active.Team,
			Jam:     active.Jam,
			Clock:   timeutil.FormatClock(active.Time),
			ClockMS: active.Time.Milliseconds(),
		},
		Final: g.Final(),
		AsOf:  state.LastUpdate,
	}
	for _, team := range teams.All {
		line := board.Teams.Get(team)
		if r := g.Roster(team); r != nil {
			line.Name = r.Name
		}
		line.Score = total.Get(team)
		line.JamScore = jam.Get(team)
		line.Timeouts = *timeouts.Get(team)
		line.Reviews = *reviews.Get(team)
	}
	return board
}

// PenaltyView is a penalty with the skater resolved to a number.
type PenaltyView struct {
	Skater string         `json:"skater"`
	Code   penalties.Code `json:"code"`
}

// TeamJamView is one team's record in a jam.
type TeamJamView struct {
	Points      int           `json:"points"`
	JammerTrips []int         `json:"jammerTrips"`
	PivotTrips  []int         `json:"pivotTrips"`
	Penalties   []PenaltyView `json:"penalties"`
	Lead        bool          `json:"lead"`
	Lost        bool          `json:"lost"`
	Call        bool          `json:"call"`
	StarPass    bool          `json:"starPass"`
}

// JamView is one ledger slot placed in its period.
type JamView struct {
	Number    int                     `json:"number"`
	Period    int                     `json:"period"`
	PeriodJam int                     `json:"periodJam"`
	Start     *time.Time              `json:"start,omitempty"`
	End       *time.Time              `json:"end,omitempty"`
	Teams     teams.Pair[TeamJamView] `json:"teams"`
}

// Jams lists every ledger slot, including the one not yet jammed.
func (s *Service) Jams() ([]JamView, error) {
	var out []JamView
	_, err := s.store.Read(func(g *gamestate.GameState) error {
		ledger := g.Jams()
		out = make([]JamView, 0, len(ledger))
		for idx, j := range ledger {
			period, num := g.PeriodJam(idx)
			view := JamView{Number: idx + 1, Period: period, PeriodJam: num, Start: j.Start, End: j.End}
			for _, team := range teams.All {
				side := j.Team(team)
				tv := view.Teams.Get(team)
				*tv = TeamJamView{
					Points:      side.Points(),
					JammerTrips: side.JammerTrips,
					PivotTrips:  side.PivotTrips,
					Penalties:   make([]PenaltyView, 0, len(side.Penalties)),
					Lead:        side.Lead,
					Lost:        side.Lost,
					Call:        side.Call,
					StarPass:    side.StarPass,
				}
				r := g.Roster(team)
				for _, p := range side.Penalties {
					number := ""
					if sk, ok := r.Skater(p.Skater); ok {
						number = sk.Number
					}
					tv.Penalties = append(tv.Penalties, PenaltyView{Skater: number, Code: p.Code})
				}
			}
			out = append(out, view)
		}
		return nil
	})
	return out, err
}

// Penalties groups a team's penalties by skater number.
func (s *Service) Penalties(team teams.Team) (map[string][]gamestate.PenaltyRecord, error) {
	if err := checkTeam(team); err != nil {
		return nil, err
	}
	var out map[string][]gamestate.PenaltyRecord
	_, err := s.store.Read(func(g *gamestate.GameState) error {
		out = g.TeamPenalties(team)
		return nil
	})
	return out, err
}

// Roster returns the team's roster in the running bout.
func (s *Service) Roster(team teams.Team) (roster.Roster, error) {
	if err := checkTeam(team); err != nil {
		return roster.Roster{}, err
	}
	var out roster.Roster
	_, err := s.store.Read(func(g *gamestate.GameState) error {
		if r := g.Roster(team); r != nil {
			out = roster.Roster{Name: r.Name, Skaters: append([]roster.Skater(nil), r.Skaters...)}
		}
		return nil
	})
	return out, err
}

// Export returns a full copy of the running bout.
func (s *Service) Export() (store.Info, gamestate.Snapshot, error) {
	var snap gamestate.Snapshot
	info, err := s.store.Read(func(g *gamestate.GameState) error {
		snap = g.Export()
		return nil
	})
	return info, snap, err
}

// ArchivedBouts lists archived bouts, newest first.
func (s *Service) ArchivedBouts(ctx context.Context, limit int) ([]snapshots.Summary, error) {
	if s.archive == nil {
		return nil, snapshots.ErrNotConfigured
	}
	return s.archive.ListBouts(ctx, limit)
}

// ArchivedBout loads one archived bout.
func (s *Service) ArchivedBout(ctx context.Context, id string) (snapshots.Record, error) {
	if s.archive == nil {
		return snapshots.Record{}, snapshots.ErrNotConfigured
	}
	return s.archive.LoadBout(ctx, id)
}
