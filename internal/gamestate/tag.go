package gamestate

import (
	"fmt"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

// TagKind says what a timeout or intermission phase currently means.
type TagKind int

const (
	TagNone TagKind = iota
	TagTeamTimeout
	TagOfficialTimeout
	TagReview
	TagHalftime
	TagPreGame
)

var tagNames = map[TagKind]string{
	TagNone:            "none",
	TagTeamTimeout:     "team_timeout",
	TagOfficialTimeout: "official_timeout",
	TagReview:          "review",
	TagHalftime:        "halftime",
	TagPreGame:         "pregame",
}

func (k TagKind) String() string {
	if name, ok := tagNames[k]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", int(k))
}

func (k TagKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *TagKind) UnmarshalText(text []byte) error {
	for kind, name := range tagNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown tag %q", text)
}

// Tag pairs a kind with the team it belongs to. Team is only set for team
// timeouts and reviews.
type Tag struct {
	Kind TagKind    `json:"kind"`
	Team teams.Team `json:"team,omitempty"`
}

func (t Tag) String() string {
	if t.Team.Valid() {
		return t.Kind.String() + "(" + t.Team.String() + ")"
	}
	return t.Kind.String()
}
