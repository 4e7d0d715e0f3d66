package jams

import (
	"errors"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

var ErrInvalidTrip = errors.New("trip numbers start at 1")

// Penalty ties a code to the roster index of the skater who drew it.
type Penalty struct {
	Skater int            `json:"skater"`
	Code   penalties.Code `json:"code"`
}

// TeamJam is one team's side of a jam.
type TeamJam struct {
	JammerTrips []int     `json:"jammerTrips"`
	PivotTrips  []int     `json:"pivotTrips"`
	Penalties   []Penalty `json:"penalties"`
	Lead        bool      `json:"lead"`
	Lost        bool      `json:"lost"`
	Call        bool      `json:"call"`
	StarPass    bool      `json:"starPass"`
}

// Points sums every scoring trip for the team in this jam.
func (t *TeamJam) Points() int {
	total := 0
	for _, p := range t.JammerTrips {
		total += p
	}
	for _, p := range t.PivotTrips {
		total += p
	}
	return total
}

// trips returns the sequence scoring currently accrues to.
func (t *TeamJam) trips() *[]int {
	if t.StarPass {
		return &t.PivotTrips
	}
	return &t.JammerTrips
}

// AdjustPoints applies delta to the running trip, never going below zero.
func (t *TeamJam) AdjustPoints(delta int) {
	seq := t.trips()
	if len(*seq) == 0 {
		*seq = append(*seq, 0)
	}
	last := len(*seq) - 1
	(*seq)[last] = max((*seq)[last]+delta, 0)
}

// SetTrip records the points for a 1-based trip, padding skipped trips with zero.
func (t *TeamJam) SetTrip(trip, points int) error {
	if trip < 1 {
		return ErrInvalidTrip
	}
	seq := t.trips()
	for len(*seq) < trip {
		*seq = append(*seq, 0)
	}
	(*seq)[trip-1] = max(points, 0)
	return nil
}

// SetLost marks the jammer as having lost lead eligibility.
func (t *TeamJam) SetLost(lost bool) {
	t.Lost = lost
	if lost {
		t.Lead = false
	}
}

// SetStarPass hands the star to the pivot. Passing it while holding lead
// forfeits lead.
func (t *TeamJam) SetStarPass(pass bool) {
	t.StarPass = pass
	if pass && t.Lead {
		t.Lead = false
		t.Lost = true
	}
}

func (t TeamJam) clone() TeamJam {
	t.JammerTrips = append([]int(nil), t.JammerTrips...)
	t.PivotTrips = append([]int(nil), t.PivotTrips...)
	t.Penalties = append([]Penalty(nil), t.Penalties...)
	return t
}

// Jam is one ledger slot. End stays nil while the jam is running.
type Jam struct {
	Start *time.Time          `json:"start,omitempty"`
	End   *time.Time          `json:"end,omitempty"`
	Teams teams.Pair[TeamJam] `json:"teams"`
}

// Team returns the side of the jam belonging to team.
func (j *Jam) Team(team teams.Team) *TeamJam {
	return j.Teams.Get(team)
}

// SetLead awards or clears lead. Only one team can hold lead.
func (j *Jam) SetLead(team teams.Team, lead bool) {
	side := j.Team(team)
	if lead && side.Lost {
		return
	}
	side.Lead = lead
	if lead {
		j.Team(team.Other()).Lead = false
	}
}

// Score returns the points both teams scored in the jam.
func (j *Jam) Score() teams.Score {
	return teams.Score{Home: j.Teams.Home.Points(), Away: j.Teams.Away.Points()}
}

// Clone returns a deep copy.
func (j Jam) Clone() Jam {
	if j.Start != nil {
		start := *j.Start
		j.Start = &start
	}
	if j.End != nil {
		end := *j.End
		j.End = &end
	}
	j.Teams.Home = j.Teams.Home.clone()
	j.Teams.Away = j.Teams.Away.clone()
	return j
}

// Ledger is the append-only sequence of jam slots. The last slot is the
// current or upcoming jam.
type Ledger struct {
	jams []Jam
}

// NewLedger returns a ledger holding the empty slot for jam 1.
func NewLedger() *Ledger {
	return &Ledger{jams: []Jam{{}}}
}

func (l *Ledger) Len() int { return len(l.jams) }

// Current is the slot commands without a jam index apply to.
func (l *Ledger) Current() *Jam {
	return &l.jams[len(l.jams)-1]
}

// At returns the 0-based slot, or nil when out of range.
func (l *Ledger) At(idx int) *Jam {
	if idx < 0 || idx >= len(l.jams) {
		return nil
	}
	return &l.jams[idx]
}

// Append opens a new empty slot.
func (l *Ledger) Append() {
	l.jams = append(l.jams, Jam{})
}

// TotalScore sums every jam in the ledger.
func (l *Ledger) TotalScore() teams.Score {
	var total teams.Score
	for i := range l.jams {
		s := l.jams[i].Score()
		total.Home += s.Home
		total.Away += s.Away
	}
	return total
}

// Jams returns deep copies of every slot.
func (l *Ledger) Jams() []Jam {
	out := make([]Jam, len(l.jams))
	for i, j := range l.jams {
		out[i] = j.Clone()
	}
	return out
}
