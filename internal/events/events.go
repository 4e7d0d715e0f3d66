package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type names a bout event. Types double as NATS subject suffixes.
type Type string

const (
	BoutStarted       Type = "bout.started"
	BoutReplaced      Type = "bout.replaced"
	JamStarted        Type = "jam.started"
	JamStopped        Type = "jam.stopped"
	JamUpdated        Type = "jam.updated"
	PhaseChanged      Type = "clock.phase_changed"
	PeriodClockSet    Type = "clock.period_set"
	IntermissionSet   Type = "clock.intermission_set"
	TeamTimeoutCalled Type = "timeout.team"
	OfficialTimeout   Type = "timeout.official"
	ReviewRequested   Type = "review.requested"
	ReviewLost        Type = "review.lost"
	ScoreAdjusted     Type = "score.adjusted"
	StarPassSet       Type = "starpass.set"
	PenaltyRecorded   Type = "penalty.recorded"
)

// Event is the envelope published for every change to a bout.
type Event struct {
	ID     string          `json:"id"`
	Type   Type            `json:"type"`
	BoutID string          `json:"boutId"`
	At     time.Time       `json:"at"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// New builds an event, encoding data as its payload.
func New(t Type, boutID string, at time.Time, data any) (Event, error) {
	ev := Event{ID: uuid.NewString(), Type: t, BoutID: boutID, At: at.UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, err
		}
		ev.Data = raw
	}
	return ev, nil
}

// Publisher delivers events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
