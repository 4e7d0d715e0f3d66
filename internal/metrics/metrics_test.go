package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecorderCountsCommandsAndTransitions(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCommand("team_timeout", OutcomeOK)
	rec.RecordCommand("team_timeout", OutcomeOK)
	rec.RecordCommand("team_timeout", OutcomeDowngraded)
	rec.RecordPhaseTransition("jam", "lineup", "expired")

	if got := rec.CommandCount("team_timeout", OutcomeOK); got != 2 {
		t.Fatalf("expected 2 granted timeouts, got %d", got)
	}
	if got := rec.CommandCount("team_timeout", OutcomeDowngraded); got != 1 {
		t.Fatalf("expected 1 downgraded timeout, got %d", got)
	}
	if got := rec.TransitionCount("jam", "lineup"); got != 1 {
		t.Fatalf("expected 1 transition, got %d", got)
	}
}

func TestRecorderTracksTicksAndWrites(t *testing.T) {
	rec := NewRecorder()
	rec.RecordTick(2*time.Millisecond, nil)
	rec.RecordTick(3*time.Millisecond, errors.New("boom"))
	rec.RecordSnapshotWrite(time.Millisecond, errors.New("disk"))
	rec.RecordPublish("jam.started", errors.New("nats"))
	rec.RecordPublish("jam.started", nil)

	snap := rec.Snapshot()
	if snap.Ticks != 2 || snap.TickFailures != 1 {
		t.Fatalf("unexpected tick counters %+v", snap)
	}
	if snap.LastTickLatency != 3*time.Millisecond {
		t.Fatalf("expected last latency 3ms, got %s", snap.LastTickLatency)
	}
	if snap.SnapshotWrites != 1 || snap.SnapshotFailures != 1 {
		t.Fatalf("unexpected snapshot counters %+v", snap)
	}
	if snap.PublishFailures != 1 {
		t.Fatalf("expected 1 publish failure, got %d", snap.PublishFailures)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.RecordCommand("start_jam", OutcomeOK)
	rec.RecordTick(time.Millisecond, nil)
	rec.RecordPhaseTransition("a", "b", "c")
	rec.RecordSnapshotWrite(0, nil)
	rec.RecordPublish("x", nil)
	rec.RecordHTTPRequest("GET", "/", 200, 0)
	if rec.CommandCount("start_jam", OutcomeOK) != 0 {
		t.Fatalf("expected zero counts from nil recorder")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	rec := NewRecorder()
	rec.RecordCommand("stop_jam", OutcomeOK)

	snap := rec.Snapshot()
	snap.Commands["stop_jam/ok"] = 99

	if rec.CommandCount("stop_jam", OutcomeOK) != 1 {
		t.Fatalf("expected snapshot not to alias recorder state")
	}
}
