package gamestate

import (
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/jams"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

func (g *GameState) Tag() Tag                { return g.tag }
func (g *GameState) Phase() clock.Phase      { return g.clock.Phase() }
func (g *GameState) ClockState() clock.State { return g.clock.State() }
func (g *GameState) SecondPeriodStart() int  { return g.secondPeriodStart }
func (g *GameState) LedgerLen() int          { return g.ledger.Len() }
func (g *GameState) Jams() []jams.Jam        { return g.ledger.Jams() }
func (g *GameState) TotalScore() teams.Score { return g.ledger.TotalScore() }

// CurrentJamScore is the score of the current ledger slot.
func (g *GameState) CurrentJamScore() teams.Score {
	return g.ledger.Current().Score()
}

// PeriodTime returns the period number and the time left in it.
func (g *GameState) PeriodTime() (int, time.Duration) {
	return g.clock.PeriodNumber(), g.clock.PeriodClock()
}

// JamNumber is the 1-based jam count within the current period.
func (g *GameState) JamNumber() int {
	return g.ledger.Len() - g.secondPeriodStart
}

// PeriodJam maps a 0-based ledger index to its period and in-period jam number.
func (g *GameState) PeriodJam(idx int) (period, jam int) {
	if g.secondPeriodStart == 0 || idx < g.secondPeriodStart {
		return 1, idx + 1
	}
	return 2, idx - g.secondPeriodStart + 1
}

// TimeoutsRemaining returns each team's unused team timeouts.
func (g *GameState) TimeoutsRemaining() teams.Pair[int] {
	return teams.Pair[int]{Home: g.teams.Home.Timeouts, Away: g.teams.Away.Timeouts}
}

// ReviewsRemaining returns each team's unused official reviews.
func (g *GameState) ReviewsRemaining() teams.Pair[int] {
	return teams.Pair[int]{Home: g.teams.Home.Reviews, Away: g.teams.Away.Reviews}
}

// Roster returns the team's roster.
func (g *GameState) Roster(team teams.Team) *roster.Roster {
	return g.team(team).Roster
}

// PenaltyRecord places a penalty in the bout.
type PenaltyRecord struct {
	Period int            `json:"period"`
	Jam    int            `json:"jam"`
	Code   penalties.Code `json:"code"`
}

// TeamPenalties replays the ledger and groups the team's penalties by
// skater number in the order they were recorded. Every rostered skater has
// an entry, empty when they have no penalties.
func (g *GameState) TeamPenalties(team teams.Team) map[string][]PenaltyRecord {
	r := g.team(team).Roster
	out := make(map[string][]PenaltyRecord)
	if r != nil {
		for _, s := range r.Skaters {
			out[s.Number] = []PenaltyRecord{}
		}
	}
	for idx := 0; idx < g.ledger.Len(); idx++ {
		period, jam := g.PeriodJam(idx)
		for _, p := range g.ledger.At(idx).Team(team).Penalties {
			skater, ok := r.Skater(p.Skater)
			if !ok {
				continue
			}
			out[skater.Number] = append(out[skater.Number], PenaltyRecord{Period: period, Jam: jam, Code: p.Code})
		}
	}
	return out
}
