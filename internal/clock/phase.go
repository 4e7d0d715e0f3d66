package clock

import (
	"fmt"
	"time"
)

// Phase is the generic kind of timer the clock is running.
type Phase int

const (
	Jam Phase = iota
	Lineup
	TeamTimeout
	OtherTimeout
	Intermission
)

var phaseNames = map[Phase]string{
	Jam:          "jam",
	Lineup:       "lineup",
	TeamTimeout:  "team_timeout",
	OtherTimeout: "other_timeout",
	Intermission: "intermission",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// CountsDown reports whether the phase timer runs toward zero.
func (p Phase) CountsDown() bool {
	switch p {
	case Jam, Lineup, Intermission:
		return true
	default:
		return false
	}
}

// DrivesPeriodClock reports whether the period clock elapses during the phase.
func (p Phase) DrivesPeriodClock() bool {
	return p == Jam || p == Lineup
}

// next is the unforced successor once a counting timer runs out.
// Phases without a natural successor return themselves.
func (p Phase) next() Phase {
	switch p {
	case Jam:
		return Lineup
	case Lineup:
		return Jam
	default:
		return p
	}
}

// Cause explains why a transition happened.
type Cause string

const (
	CauseExpired   Cause = "expired"
	CausePeriodEnd Cause = "period_end"
	CauseCeiling   Cause = "ceiling"
	CauseCommand   Cause = "command"
)

// Transition records a single phase change and the instant it took effect.
type Transition struct {
	From  Phase
	To    Phase
	At    time.Time
	Cause Cause
}
