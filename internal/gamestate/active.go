package gamestate

import (
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

// ActiveKind is the derby meaning of the running phase.
type ActiveKind string

const (
	ActiveJam             ActiveKind = "jam"
	ActiveLineup          ActiveKind = "lineup"
	ActiveTeamTimeout     ActiveKind = "team_timeout"
	ActiveOfficialTimeout ActiveKind = "official_timeout"
	ActiveReview          ActiveKind = "review"
	ActiveHalftime        ActiveKind = "halftime"
	ActivePreGame         ActiveKind = "pregame"
	ActiveIdle            ActiveKind = "idle"
)

// ActiveClock is the clock a scoreboard should show. Team is set for team
// timeouts and reviews, Jam for jams.
type ActiveClock struct {
	Kind ActiveKind
	Team teams.Team
	Jam  int
	Time time.Duration
}

// ActiveClock projects the clock phase and tag into one value. Pairings the
// transition rules cannot produce panic with *ConsistencyError.
func (g *GameState) ActiveClock() ActiveClock {
	phase, t := g.clock.Phase(), g.clock.PhaseClock()
	switch {
	case phase == clock.Jam && g.tag.Kind == TagNone:
		return ActiveClock{Kind: ActiveJam, Jam: g.JamNumber(), Time: t}
	case phase == clock.Lineup && g.tag.Kind == TagNone:
		return ActiveClock{Kind: ActiveLineup, Time: t}
	case phase == clock.TeamTimeout && g.tag.Kind == TagTeamTimeout:
		return ActiveClock{Kind: ActiveTeamTimeout, Team: g.tag.Team, Time: t}
	case phase == clock.OtherTimeout && g.tag.Kind == TagOfficialTimeout:
		return ActiveClock{Kind: ActiveOfficialTimeout, Time: t}
	case phase == clock.OtherTimeout && g.tag.Kind == TagReview:
		return ActiveClock{Kind: ActiveReview, Team: g.tag.Team, Time: t}
	case phase == clock.Intermission && g.tag.Kind == TagHalftime:
		return ActiveClock{Kind: ActiveHalftime, Time: t}
	case phase == clock.Intermission && g.tag.Kind == TagPreGame:
		return ActiveClock{Kind: ActivePreGame, Time: t}
	case phase == clock.Intermission && g.tag.Kind == TagNone:
		return ActiveClock{Kind: ActiveIdle}
	}
	panic(&ConsistencyError{Phase: phase, Tag: g.tag})
}
