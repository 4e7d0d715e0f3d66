package bout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/events"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
	"github.com/preston-bernstein/derby-clock-service/internal/metrics"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
	"github.com/preston-bernstein/derby-clock-service/internal/timeutil"
)

// ErrInvalidStart is returned for a start request that cannot build a bout.
var ErrInvalidStart = errors.New("invalid bout start")

// Rosters looks up the rosters a bout can be started with.
type Rosters interface {
	Get(id string) (*roster.Roster, error)
}

// Archive persists exported bouts. A nil Archive disables archiving.
type Archive interface {
	SaveBout(ctx context.Context, id string, startedAt time.Time, snap gamestate.Snapshot) error
	LoadBout(ctx context.Context, id string) (snapshots.Record, error)
	ListBouts(ctx context.Context, limit int) ([]snapshots.Summary, error)
}

// Options wires a Service.
type Options struct {
	Store     *store.BoutStore
	Rosters   Rosters
	Publisher events.Publisher
	Archive   Archive
	Recorder  *metrics.Recorder
	Logger    *slog.Logger
	Game      gamestate.Config
	Clock     clockwork.Clock
}

// Service runs commands and queries against the current bout and reports
// every change as events, metrics and archive writes.
type Service struct {
	store     *store.BoutStore
	rosters   Rosters
	publisher events.Publisher
	archive   Archive
	recorder  *metrics.Recorder
	logger    *slog.Logger
	game      gamestate.Config
	clock     clockwork.Clock
}

// NewService constructs a Service. Store and Rosters are required.
func NewService(opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Store == nil {
		opts.Store = store.NewBoutStore(opts.Clock)
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	return &Service{
		store:     opts.Store,
		rosters:   opts.Rosters,
		publisher: opts.Publisher,
		archive:   opts.Archive,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		game:      opts.Game,
		clock:     opts.Clock,
	}
}

// StartAt is a wall-clock start time. Meridiem is "am", "pm" or empty.
type StartAt struct {
	Hours    int
	Minutes  int
	Meridiem string
}

// StartRequest names the two rosters and when the first jam is due.
// StartAt wins over Countdown when both are set.
type StartRequest struct {
	Home      string
	Away      string
	Countdown time.Duration
	StartAt   *StartAt
}

// Start replaces the current bout. The displaced bout is archived first.
func (s *Service) Start(ctx context.Context, req StartRequest) (store.Info, error) {
	home, err := s.lookupRoster(req.Home)
	if err != nil {
		return store.Info{}, err
	}
	away, err := s.lookupRoster(req.Away)
	if err != nil {
		return store.Info{}, err
	}

	countdown := req.Countdown
	if req.StartAt != nil {
		countdown, err = timeutil.UntilClockTime(s.clock.Now(), req.StartAt.Hours, req.StartAt.Minutes, req.StartAt.Meridiem)
		if err != nil {
			return store.Info{}, fmt.Errorf("%w: %w", ErrInvalidStart, err)
		}
	}
	if countdown < 0 {
		return store.Info{}, fmt.Errorf("%w: negative countdown", ErrInvalidStart)
	}

	info, replaced := s.store.Start(func(now time.Time) *gamestate.GameState {
		return gamestate.New(home, away, countdown, now, s.game)
	})
	if replaced != nil {
		s.save(ctx, replaced.Info, replaced.Snapshot)
		s.publish(ctx, events.BoutReplaced, replaced.Info.ID, map[string]any{"replacedBy": info.ID})
	}

	s.recorder.RecordCommand("start_bout", metrics.OutcomeOK)
	logging.Info(s.logger, "bout started",
		logging.FieldBoutID, info.ID,
		"home", home.Name,
		"away", away.Name,
		"countdown", countdown.String(),
	)
	s.publish(ctx, events.BoutStarted, info.ID, map[string]any{
		"home":        home.Name,
		"away":        away.Name,
		"countdownMs": countdown.Milliseconds(),
	})
	return info, nil
}

func (s *Service) lookupRoster(id string) (*roster.Roster, error) {
	if s.rosters == nil {
		return nil, fmt.Errorf("%w: no rosters loaded", ErrInvalidStart)
	}
	r, err := s.rosters.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStart, err)
	}
	return r, nil
}

// Current returns the running bout's identity.
func (s *Service) Current() (store.Info, bool) {
	return s.store.Current()
}

// Tick reconciles the running bout. It is the ticker's target; no bout is
// not an error.
func (s *Service) Tick(ctx context.Context) error {
	change, err := s.store.Tick()
	if errors.Is(err, store.ErrNoBout) {
		return nil
	}
	if err != nil {
		return err
	}
	s.handleTransitions(ctx, change)
	return nil
}

// handleTransitions reports each phase change and archives the bout once a
// jam has ended.
func (s *Service) handleTransitions(ctx context.Context, change store.Change) {
	jamEnded := false
	for _, t := range change.Transitions {
		s.recorder.RecordPhaseTransition(t.From.String(), t.To.String(), t.Cause)
		logging.Info(s.logger, "phase changed",
			logging.FieldBoutID, change.BoutID,
			logging.FieldFrom, t.From.String(),
			logging.FieldTo, t.To.String(),
			logging.FieldCause, t.Cause,
		)
		data := map[string]any{"from": t.From.String(), "to": t.To.String(), "cause": t.Cause}
		s.publishAt(ctx, events.PhaseChanged, change.BoutID, t.At, data)
		switch {
		case t.To == clock.Jam:
			s.publishAt(ctx, events.JamStarted, change.BoutID, t.At, data)
		case t.From == clock.Jam:
			jamEnded = true
			s.publishAt(ctx, events.JamStopped, change.BoutID, t.At, data)
		}
	}
	if jamEnded {
		s.archiveCurrent(ctx)
	}
}

// Flush archives the running bout. The server calls it on shutdown.
func (s *Service) Flush(ctx context.Context) {
	s.archiveCurrent(ctx)
}

func (s *Service) archiveCurrent(ctx context.Context) {
	if s.archive == nil {
		return
	}
	var snap gamestate.Snapshot
	info, err := s.store.Read(func(g *gamestate.GameState) error {
		snap = g.Export()
		return nil
	})
	if err != nil {
		return
	}
	s.save(ctx, info, snap)
}

func (s *Service) save(ctx context.Context, info store.Info, snap gamestate.Snapshot) {
	if s.archive == nil {
		return
	}
	start := s.clock.Now()
	err := s.archive.SaveBout(ctx, info.ID, info.StartedAt, snap)
	s.recorder.RecordSnapshotWrite(s.clock.Since(start), err)
	if err != nil {
		logging.Error(s.logger, "bout archive failed", err, logging.FieldBoutID, info.ID)
	}
}

func (s *Service) publish(ctx context.Context, t events.Type, boutID string, data any) {
	s.publishAt(ctx, t, boutID, s.clock.Now(), data)
}

func (s *Service) publishAt(ctx context.Context, t events.Type, boutID string, at time.Time, data any) {
	ev, err := events.New(t, boutID, at, data)
	if err == nil {
		err = s.publisher.Publish(ctx, ev)
	}
	s.recorder.RecordPublish(string(t), err)
	if err != nil {
		logging.Warn(s.logger, "event publish failed",
			logging.FieldBoutID, boutID,
			"event", string(t),
			"error", err,
		)
	}
}
