package snapshots

import (
	"context"
	"errors"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
)

var (
	// ErrNotFound is returned when no archived bout has the requested ID.
	ErrNotFound = errors.New("bout snapshot not found")
	// ErrNotConfigured is returned when archiving is disabled.
	ErrNotConfigured = errors.New("snapshot store not configured")
)

// Summary is one row of the bout archive listing.
type Summary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Period    int       `json:"period"`
	Final     bool      `json:"final"`
}

// Record is an archived bout with its full snapshot.
type Record struct {
	Summary
	Snapshot gamestate.Snapshot `json:"snapshot"`
}

// Store archives bout snapshots.
type Store interface {
	SaveBout(ctx context.Context, id string, startedAt time.Time, snap gamestate.Snapshot) error
	LoadBout(ctx context.Context, id string) (Record, error)
	ListBouts(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}
