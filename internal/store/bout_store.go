package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
)

// ErrNoBout is returned when no bout has been started.
var ErrNoBout = errors.New("no bout in progress")

// Info identifies the current bout.
type Info struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
}

// Change reports what a write did to the bout.
type Change struct {
	BoutID      string
	Transitions []clock.Transition
}

// Replaced is the final state of a bout that a new one displaced.
type Replaced struct {
	Info     Info
	Snapshot gamestate.Snapshot
}

type bout struct {
	info  Info
	state *gamestate.GameState
}

// BoutStore is the handle to the current bout. The ticker and every request
// handler share one BoutStore; all access goes through its lock.
type BoutStore struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	newID func() string
	bout  *bout
}

// NewBoutStore returns an empty store reading time from clk.
func NewBoutStore(clk clockwork.Clock) *BoutStore {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &BoutStore{
		clock: clk,
		newID: func() string { return uuid.NewString() },
	}
}

// Start replaces the current bout with one built by build. The displaced
// bout, if any, is returned so callers can archive it.
func (s *BoutStore) Start(build func(now time.Time) *gamestate.GameState) (Info, *Replaced) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var replaced *Replaced
	if s.bout != nil {
		s.bout.state.Tick(now)
		replaced = &Replaced{Info: s.bout.info, Snapshot: s.bout.state.Export()}
	}
	info := Info{ID: s.newID(), StartedAt: now}
	s.bout = &bout{info: info, state: build(now)}
	return info, replaced
}

// Current returns the current bout's identity.
func (s *BoutStore) Current() (Info, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bout == nil {
		return Info{}, false
	}
	return s.bout.info, true
}

// Read runs fn with shared access to the bout.
func (s *BoutStore) Read(fn func(g *gamestate.GameState) error) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.bout == nil {
		return Info{}, ErrNoBout
	}
	return s.bout.info, fn(s.bout.state)
}

// Write runs fn with exclusive access. now is read after the lock is held so
// successive writes never see time go backwards.
func (s *BoutStore) Write(fn func(g *gamestate.GameState, now time.Time) error) (Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bout == nil {
		return Change{}, ErrNoBout
	}
	err := fn(s.bout.state, s.clock.Now())
	return Change{BoutID: s.bout.info.ID, Transitions: s.bout.state.DrainTransitions()}, err
}

// Tick reconciles the bout against the current time.
func (s *BoutStore) Tick() (Change, error) {
	return s.Write(func(g *gamestate.GameState, now time.Time) error {
		g.Tick(now)
		return nil
	})
}
