package roster

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxNumberLen is the longest skater number a roster accepts.
const MaxNumberLen = 4

var (
	ErrNumberTooLong   = errors.New("skater number too long")
	ErrDuplicateNumber = errors.New("duplicate skater number")
)

// Skater is one rostered player.
type Skater struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Roster is a team name plus its skaters, sorted ascending by number.
type Roster struct {
	Name    string   `json:"name"`
	Skaters []Skater `json:"skaters"`
}

// New validates and sorts the skaters. Entries without a number are dropped.
func New(name string, skaters []Skater) (*Roster, error) {
	out := make([]Skater, 0, len(skaters))
	for _, s := range skaters {
		s.Number = strings.TrimSpace(s.Number)
		s.Name = strings.TrimSpace(s.Name)
		if s.Number == "" {
			continue
		}
		if len(s.Number) > MaxNumberLen {
			return nil, fmt.Errorf("%w: %q", ErrNumberTooLong, s.Number)
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	for i := 1; i < len(out); i++ {
		if out[i].Number == out[i-1].Number {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNumber, out[i].Number)
		}
	}
	return &Roster{Name: strings.TrimSpace(name), Skaters: out}, nil
}

// Index finds a skater by number using binary search.
func (r *Roster) Index(number string) (int, bool) {
	if r == nil {
		return 0, false
	}
	i := sort.Search(len(r.Skaters), func(i int) bool { return r.Skaters[i].Number >= number })
	if i < len(r.Skaters) && r.Skaters[i].Number == number {
		return i, true
	}
	return 0, false
}

// Skater returns the skater at idx.
func (r *Roster) Skater(idx int) (Skater, bool) {
	if r == nil || idx < 0 || idx >= len(r.Skaters) {
		return Skater{}, false
	}
	return r.Skaters[idx], true
}
