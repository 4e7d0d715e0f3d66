package clock

import "time"

const (
	DefaultJamDuration          = 2 * time.Minute
	DefaultLineupDuration       = 30 * time.Second
	DefaultTeamTimeoutDuration  = 90 * time.Second
	DefaultIntermissionDuration = 10 * time.Minute
	DefaultPeriodDuration       = 30 * time.Minute
)

// Policy holds the configured phase lengths. TeamTimeout is a ceiling
// after which a team timeout becomes an official one.
type Policy struct {
	Jam          time.Duration
	Lineup       time.Duration
	TeamTimeout  time.Duration
	Intermission time.Duration
	Period       time.Duration
}

// DefaultPolicy returns the standard bout timings.
func DefaultPolicy() Policy {
	return Policy{
		Jam:          DefaultJamDuration,
		Lineup:       DefaultLineupDuration,
		TeamTimeout:  DefaultTeamTimeoutDuration,
		Intermission: DefaultIntermissionDuration,
		Period:       DefaultPeriodDuration,
	}
}

// withDefaults fills any non-positive duration from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Jam <= 0 {
		p.Jam = d.Jam
	}
	if p.Lineup <= 0 {
		p.Lineup = d.Lineup
	}
	if p.TeamTimeout <= 0 {
		p.TeamTimeout = d.TeamTimeout
	}
	if p.Intermission <= 0 {
		p.Intermission = d.Intermission
	}
	if p.Period <= 0 {
		p.Period = d.Period
	}
	return p
}

// initial is the phase clock value a phase starts from.
func (p Policy) initial(phase Phase) time.Duration {
	switch phase {
	case Jam:
		return p.Jam
	case Lineup:
		return p.Lineup
	case Intermission:
		return p.Intermission
	default:
		return 0
	}
}
