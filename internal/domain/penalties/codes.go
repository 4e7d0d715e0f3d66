package penalties

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Code is a penalty from the fixed rules vocabulary.
type Code int

const (
	Unknown Code = iota
	HighBlock
	BackBlock
	Directional
	Elbows
	Forearms
	Misconduct
	BlockWithHead
	IllegalProcedure
	LowBlock
	MultiPlayer
	Insubordination
	OutOfBounds
	OutOfPlay
	SkatingOutOfBounds
	CutTrack
	DelayOfGame
)

type codeInfo struct {
	char byte
	name string
}

var codes = map[Code]codeInfo{
	Unknown:            {'U', "Unknown"},
	HighBlock:          {'A', "High Block"},
	BackBlock:          {'B', "Back Block"},
	Directional:        {'C', "Illegal Contact (Directional)"},
	Elbows:             {'E', "Elbows"},
	Forearms:           {'F', "Forearms"},
	Misconduct:         {'G', "Misconduct"},
	BlockWithHead:      {'H', "Block With Head"},
	IllegalProcedure:   {'I', "Illegal Procedure"},
	LowBlock:           {'L', "Low Block"},
	MultiPlayer:        {'M', "Multi-Player Block"},
	Insubordination:    {'N', "Insubordination"},
	OutOfBounds:        {'O', "Out of Bounds"},
	OutOfPlay:          {'P', "Out of Play"},
	SkatingOutOfBounds: {'S', "Skating Out of Bounds"},
	CutTrack:           {'X', "Cut Track"},
	DelayOfGame:        {'Z', "Delay of Game"},
}

var byChar = func() map[byte]Code {
	m := make(map[byte]Code, len(codes))
	for code, info := range codes {
		m[info.char] = code
	}
	return m
}()

// Char returns the single-letter scoresheet code.
func (c Code) Char() byte {
	if info, ok := codes[c]; ok {
		return info.char
	}
	return 'U'
}

func (c Code) String() string {
	return string(c.Char())
}

// Description is the human readable penalty name.
func (c Code) Description() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[Unknown].name
}

// FromChar maps a scoresheet letter to its code. Letters outside the
// vocabulary map to Unknown.
func FromChar(ch byte) Code {
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if code, ok := byChar[ch]; ok {
		return code
	}
	return Unknown
}

// Parse accepts a single letter code.
func Parse(raw string) (Code, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 1 {
		return Unknown, fmt.Errorf("penalty code must be a single letter, got %q", raw)
	}
	return FromChar(raw[0]), nil
}

// All returns every code in declaration order.
func All() []Code {
	out := make([]Code, 0, len(codes))
	for c := Unknown; c <= DelayOfGame; c++ {
		out = append(out, c)
	}
	return out
}

func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Code) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
