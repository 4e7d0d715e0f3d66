package clock

import "time"

// Clock integrates wall-clock time into a period clock and a phase timer.
// It is not safe for concurrent use; callers serialize access.
type Clock struct {
	policy       Policy
	periodClock  time.Duration
	periodNumber int
	phase        Phase
	phaseClock   time.Duration
	lastUpdate   time.Time
}

// State is a read-only copy of the clock's fields.
type State struct {
	Phase        Phase
	PhaseClock   time.Duration
	PeriodClock  time.Duration
	PeriodNumber int
	LastUpdate   time.Time
}

// New returns a clock counting down to the first period from Intermission.
func New(policy Policy, countdown time.Duration, now time.Time) *Clock {
	policy = policy.withDefaults()
	if countdown < 0 {
		countdown = 0
	}
	return &Clock{
		policy:      policy,
		periodClock: policy.Period,
		phase:       Intermission,
		phaseClock:  countdown,
		lastUpdate:  now,
	}
}

func (c *Clock) Policy() Policy             { return c.policy }
func (c *Clock) Phase() Phase               { return c.phase }
func (c *Clock) PhaseClock() time.Duration  { return c.phaseClock }
func (c *Clock) PeriodClock() time.Duration { return c.periodClock }
func (c *Clock) PeriodNumber() int          { return c.periodNumber }
func (c *Clock) LastUpdate() time.Time      { return c.lastUpdate }

func (c *Clock) State() State {
	return State{
		Phase:        c.phase,
		PhaseClock:   c.phaseClock,
		PeriodClock:  c.periodClock,
		PeriodNumber: c.periodNumber,
		LastUpdate:   c.lastUpdate,
	}
}

// Reconcile brings the clock up to now and reports whether the phase changed.
func (c *Clock) Reconcile(now time.Time) bool {
	return len(c.Settle(now)) > 0
}

// Settle brings the clock up to now and returns every phase change that
// happened in between, in order. A now earlier than the last update is
// treated as zero elapsed time.
func (c *Clock) Settle(now time.Time) []Transition {
	elapsed := now.Sub(c.lastUpdate)
	if elapsed < 0 {
		elapsed = 0
		now = c.lastUpdate
	}
	out := c.advance(elapsed)
	c.lastUpdate = now
	return out
}

// advance consumes d segment by segment so time spent in an expiring phase
// is never credited twice and the remainder flows into the successor.
func (c *Clock) advance(d time.Duration) []Transition {
	var out []Transition
	at := c.lastUpdate
	for {
		switch c.phase {
		case TeamTimeout:
			c.phaseClock += d
			if c.phaseClock >= c.policy.TeamTimeout {
				over := c.phaseClock - c.policy.TeamTimeout
				out = append(out, c.enter(OtherTimeout, at.Add(d-over), CauseCeiling))
				c.phaseClock = over
			}
			return out
		case OtherTimeout:
			c.phaseClock += d
			return out
		case Intermission:
			c.phaseClock = max(c.phaseClock-d, 0)
			return out
		}

		// The period boundary wins over the lineup ending at the same instant.
		if c.phase == Lineup && c.periodClock <= min(d, c.phaseClock) {
			at = at.Add(c.periodClock)
			d -= c.periodClock
			c.periodClock = 0
			out = append(out, c.enter(Intermission, at, CausePeriodEnd))
			continue
		}
		if d < c.phaseClock {
			c.phaseClock -= d
			c.periodClock = max(c.periodClock-d, 0)
			return out
		}
		spent := c.phaseClock
		c.periodClock = max(c.periodClock-spent, 0)
		at = at.Add(spent)
		d -= spent
		out = append(out, c.enter(c.phase.next(), at, CauseExpired))
	}
}

func (c *Clock) enter(to Phase, at time.Time, cause Cause) Transition {
	t := Transition{From: c.phase, To: to, At: at, Cause: cause}
	c.phase = to
	c.phaseClock = c.policy.initial(to)
	return t
}

// StartJam begins a jam from any phase but Jam. Leaving Intermission starts
// the next period.
func (c *Clock) StartJam(now time.Time) []Transition {
	out := c.Settle(now)
	switch c.phase {
	case Lineup, TeamTimeout, OtherTimeout:
	case Intermission:
		c.periodNumber++
		c.periodClock = c.policy.Period
	default:
		return out
	}
	return append(out, c.enter(Jam, c.lastUpdate, CauseCommand))
}

// StopJam ends a running jam and starts the lineup.
func (c *Clock) StopJam(now time.Time) []Transition {
	out := c.Settle(now)
	if c.phase != Jam {
		return out
	}
	return append(out, c.enter(Lineup, c.lastUpdate, CauseCommand))
}

// TeamTimeout starts a team timeout from a jam, a lineup or an official timeout.
func (c *Clock) TeamTimeout(now time.Time) []Transition {
	out := c.Settle(now)
	switch c.phase {
	case Jam, Lineup, OtherTimeout:
		return append(out, c.enter(TeamTimeout, c.lastUpdate, CauseCommand))
	default:
		return out
	}
}

// OtherTimeout starts an official timeout. A running team timeout is
// converted in place and keeps its accumulated time.
func (c *Clock) OtherTimeout(now time.Time) []Transition {
	out := c.Settle(now)
	switch c.phase {
	case Jam, Lineup:
		return append(out, c.enter(OtherTimeout, c.lastUpdate, CauseCommand))
	case TeamTimeout:
		elapsed := c.phaseClock
		out = append(out, c.enter(OtherTimeout, c.lastUpdate, CauseCommand))
		c.phaseClock = elapsed
		return out
	default:
		return out
	}
}

// SetPeriodClock overrides the time left in the period.
func (c *Clock) SetPeriodClock(now time.Time, remaining time.Duration) []Transition {
	out := c.Settle(now)
	c.periodClock = max(remaining, 0)
	return out
}

// SetIntermissionClock overrides the time left in an intermission and reports
// whether the clock was in one.
func (c *Clock) SetIntermissionClock(now time.Time, remaining time.Duration) ([]Transition, bool) {
	out := c.Settle(now)
	if c.phase != Intermission {
		return out, false
	}
	c.phaseClock = max(remaining, 0)
	return out, true
}
