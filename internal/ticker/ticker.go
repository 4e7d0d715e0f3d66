package ticker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/logging"
	"github.com/preston-bernstein/derby-clock-service/internal/metrics"
)

const (
	defaultInterval = 100 * time.Millisecond
	// readyWindow is how many intervals may pass without a successful tick
	// before the driver reports itself unready.
	readyWindow = 10
)

// Target is reconciled on every tick.
type Target interface {
	Tick(ctx context.Context) error
}

// Ticker drives the bout clock at a fixed cadence.
type Ticker struct {
	target   Target
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	clock    clockwork.Clock

	ticker   clockwork.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the tick loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	Interval            time.Duration
}

// IsReady reports whether the loop ticked successfully within the last few
// intervals as of now.
func (s Status) IsReady(now time.Time) bool {
	if s.LastSuccess.IsZero() || s.ConsecutiveFailures >= 3 {
		return false
	}
	return now.Sub(s.LastSuccess) <= readyWindow*s.Interval
}

// New constructs a Ticker. A nil clock uses the real clock.
func New(target Target, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration, clk clockwork.Clock) *Ticker {
	if interval <= 0 {
		interval = defaultInterval
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &Ticker{
		target:   target,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		clock:    clk,
		done:     make(chan struct{}),
		status:   Status{Interval: interval},
	}
}

// Start ticks until the context is cancelled or Stop is called.
func (t *Ticker) Start(ctx context.Context) {
	t.startMu.Lock()
	if t.started {
		t.startMu.Unlock()
		return
	}
	t.started = true
	t.ticker = t.clock.NewTicker(t.interval)
	t.startMu.Unlock()

	go func() {
		logging.Info(t.logger, "ticker started", logging.FieldDurationMS, t.interval.Milliseconds())
		t.tickOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				t.ticker.Stop()
				logging.Info(t.logger, "ticker stopped")
				return
			case <-t.done:
				t.ticker.Stop()
				logging.Info(t.logger, "ticker stopped")
				return
			case <-t.ticker.Chan():
				t.tickOnce(ctx)
			}
		}
	}()
}

// Stop halts the tick loop.
func (t *Ticker) Stop(ctx context.Context) error {
	_ = ctx
	t.stopOnce.Do(func() {
		close(t.done)
	})
	return nil
}

func (t *Ticker) tickOnce(ctx context.Context) {
	start := t.clock.Now()
	t.recordAttempt(start)
	err := t.safeTick(ctx)
	elapsed := t.clock.Since(start)
	t.metrics.RecordTick(elapsed, err)
	if err != nil {
		logging.Error(t.logger, "tick failed", err, logging.FieldDurationMS, elapsed.Milliseconds())
		t.recordFailure(err, start)
		return
	}
	t.recordSuccess(start)
}

// safeTick turns a panic in the target into an error so one bad tick does
// not kill the loop.
func (t *Ticker) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()
	return t.target.Tick(ctx)
}

func (t *Ticker) recordAttempt(at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.LastAttempt = at
}

func (t *Ticker) recordSuccess(at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.ConsecutiveFailures = 0
	t.status.LastError = ""
	t.status.LastSuccess = at
}

func (t *Ticker) recordFailure(err error, at time.Time) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.ConsecutiveFailures++
	if err != nil {
		t.status.LastError = err.Error()
	}
	t.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (t *Ticker) Status() Status {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

// Ready reports whether the loop is healthy right now.
func (t *Ticker) Ready() bool {
	return t.Status().IsReady(t.clock.Now())
}
