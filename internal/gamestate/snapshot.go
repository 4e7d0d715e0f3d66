package gamestate

import (
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/jams"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

// TeamSnapshot is the exported view of one team.
type TeamSnapshot struct {
	Roster   roster.Roster `json:"roster"`
	Timeouts int           `json:"timeouts"`
	Reviews  int           `json:"reviews"`
}

// ClockSnapshot is the exported view of the clock.
type ClockSnapshot struct {
	Phase        string        `json:"phase"`
	PhaseClock   time.Duration `json:"phaseClock"`
	PeriodClock  time.Duration `json:"periodClock"`
	PeriodNumber int           `json:"periodNumber"`
	LastUpdate   time.Time     `json:"lastUpdate"`
}

// Snapshot is a deep copy of the whole bout suitable for archiving.
type Snapshot struct {
	Teams             teams.Pair[TeamSnapshot] `json:"teams"`
	Clock             ClockSnapshot            `json:"clock"`
	Tag               Tag                      `json:"tag"`
	SecondPeriodStart int                      `json:"secondPeriodStart"`
	Score             teams.Score              `json:"score"`
	Final             bool                     `json:"final"`
	Jams              []jams.Jam               `json:"jams"`
}

// Export copies the bout state.
func (g *GameState) Export() Snapshot {
	cs := g.clock.State()
	snap := Snapshot{
		Clock: ClockSnapshot{
			Phase:        cs.Phase.String(),
			PhaseClock:   cs.PhaseClock,
			PeriodClock:  cs.PeriodClock,
			PeriodNumber: cs.PeriodNumber,
			LastUpdate:   cs.LastUpdate,
		},
		Tag:               g.tag,
		SecondPeriodStart: g.secondPeriodStart,
		Score:             g.TotalScore(),
		Final:             g.Final(),
		Jams:              g.ledger.Jams(),
	}
	for _, team := range teams.All {
		ts := g.team(team)
		out := snap.Teams.Get(team)
		out.Timeouts = ts.Timeouts
		out.Reviews = ts.Reviews
		if ts.Roster != nil {
			out.Roster = roster.Roster{
				Name:    ts.Roster.Name,
				Skaters: append([]roster.Skater(nil), ts.Roster.Skaters...),
			}
		}
	}
	return snap
}
