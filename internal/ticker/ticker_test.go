package ticker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

type stubTarget struct {
	calls  atomic.Int32
	err    error
	panics bool
	notify chan struct{}
}

func (s *stubTarget) Tick(context.Context) error {
	s.calls.Add(1)
	defer func() {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	}()
	if s.panics {
		panic("inconsistent")
	}
	return s.err
}

func waitForTick(t *testing.T, target *stubTarget) {
	t.Helper()
	select {
	case <-target.notify:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
	}
}

func TestTickerTicksImmediatelyAndOnInterval(t *testing.T) {
	clk := clockwork.NewFakeClock()
	target := &stubTarget{notify: make(chan struct{}, 1)}
	tk := New(target, nil, nil, 100*time.Millisecond, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tk.Start(ctx)
	waitForTick(t, target)

	clk.Advance(100 * time.Millisecond)
	waitForTick(t, target)

	if got := target.calls.Load(); got < 2 {
		t.Fatalf("expected at least 2 ticks, got %d", got)
	}
	if !tk.Ready() {
		t.Fatalf("expected ticker to be ready, status %+v", tk.Status())
	}
	_ = tk.Stop(context.Background())
}

func TestTickerRecordsFailuresAndRecoversPanics(t *testing.T) {
	clk := clockwork.NewFakeClock()
	target := &stubTarget{panics: true, notify: make(chan struct{}, 1)}
	tk := New(target, nil, nil, time.Second, clk)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tk.Start(ctx)
	waitForTick(t, target)

	deadline := time.After(time.Second)
	for tk.Status().ConsecutiveFailures == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for failure status")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	status := tk.Status()
	if status.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if tk.Ready() {
		t.Fatalf("expected not ready without a success")
	}
	_ = tk.Stop(context.Background())
}

func TestStatusReadiness(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Status{Interval: 100 * time.Millisecond, LastSuccess: now}

	if !s.IsReady(now.Add(500 * time.Millisecond)) {
		t.Fatalf("expected ready within window")
	}
	if s.IsReady(now.Add(2 * time.Second)) {
		t.Fatalf("expected stale ticker to be unready")
	}
	s.ConsecutiveFailures = 3
	if s.IsReady(now) {
		t.Fatalf("expected repeated failures to be unready")
	}
	if (Status{}).IsReady(now) {
		t.Fatalf("expected zero status to be unready")
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	clk := clockwork.NewFakeClock()
	target := &stubTarget{err: errors.New("boom"), notify: make(chan struct{}, 1)}
	tk := New(target, nil, nil, 0, clk)
	if tk.interval != defaultInterval {
		t.Fatalf("expected default interval, got %s", tk.interval)
	}

	ctx := context.Background()
	tk.Start(ctx)
	tk.Start(ctx)
	waitForTick(t, target)

	if err := tk.Stop(ctx); err != nil {
		t.Fatalf("unexpected stop error: %v", err)
	}
	if err := tk.Stop(ctx); err != nil {
		t.Fatalf("unexpected second stop error: %v", err)
	}
}
