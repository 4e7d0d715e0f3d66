package teams

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Team identifies one side of a bout.
type Team int

const (
	Home Team = 1
	Away Team = 2
)

// All lists both teams in display order.
var All = []Team{Home, Away}

func (t Team) String() string {
	switch t {
	case Home:
		return "home"
	case Away:
		return "away"
	default:
		return fmt.Sprintf("team(%d)", int(t))
	}
}

// Valid reports whether t is Home or Away.
func (t Team) Valid() bool {
	return t == Home || t == Away
}

// Other returns the opposing team.
func (t Team) Other() Team {
	if t == Home {
		return Away
	}
	return Home
}

// Parse accepts "home"/"away" in any case, or the numeric forms "1"/"2".
func Parse(raw string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "home", "1":
		return Home, nil
	case "away", "2":
		return Away, nil
	default:
		return 0, fmt.Errorf("unknown team %q", raw)
	}
}

func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Team) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Score captures home and away points.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Get returns the side of s belonging to team.
func (s Score) Get(team Team) int {
	if team == Away {
		return s.Away
	}
	return s.Home
}

// Pair holds one value per team.
type Pair[T any] struct {
	Home T `json:"home"`
	Away T `json:"away"`
}

// Get returns the value for team.
func (p *Pair[T]) Get(team Team) *T {
	if team == Away {
		return &p.Away
	}
	return &p.Home
}
