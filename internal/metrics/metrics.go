package metrics

import (
	"sync"
	"time"
)

// Outcome labels for command metrics.
const (
	OutcomeOK         = "ok"
	OutcomeDowngraded = "downgraded"
	OutcomeRejected   = "rejected"
	OutcomeError      = "error"
)

type boutStats struct {
	commands         map[string]int
	transitions      map[string]int
	ticks            int
	tickFailures     int
	lastTickLatency  time.Duration
	snapshotWrites   int
	snapshotFailures int
	publishFailures  int
}

// Recorder keeps in-memory counters and forwards to OpenTelemetry when
// instruments are configured.
type Recorder struct {
	mu    sync.Mutex
	stats boutStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: boutStats{
			commands:    make(map[string]int),
			transitions: make(map[string]int),
		},
		otel: otel,
	}
}

// RecordCommand counts a bout command by name and outcome.
func (r *Recorder) RecordCommand(command, outcome string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.commands[command+"/"+outcome]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCommand(command, outcome)
	}
}

// RecordTick tracks a reconciliation cycle of the tick loop.
func (r *Recorder) RecordTick(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.ticks++
	r.stats.lastTickLatency = duration
	if err != nil {
		r.stats.tickFailures++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordTick(duration, err)
	}
}

// RecordPhaseTransition counts a clock phase change.
func (r *Recorder) RecordPhaseTransition(from, to, cause string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.transitions[from+"->"+to]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordTransition(from, to, cause)
	}
}

// RecordSnapshotWrite tracks a bout archive write.
func (r *Recorder) RecordSnapshotWrite(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.stats.snapshotWrites++
	if err != nil {
		r.stats.snapshotFailures++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSnapshotWrite(duration, err)
	}
}

// RecordPublish tracks an event publish attempt.
func (r *Recorder) RecordPublish(eventType string, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.mu.Lock()
		r.stats.publishFailures++
		r.mu.Unlock()
	}
	if r.otel != nil {
		r.otel.recordPublish(eventType, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot is a copy of the in-memory counters.
type Snapshot struct {
	Commands         map[string]int
	Transitions      map[string]int
	Ticks            int
	TickFailures     int
	LastTickLatency  time.Duration
	SnapshotWrites   int
	SnapshotFailures int
	PublishFailures  int
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		Commands:         make(map[string]int, len(r.stats.commands)),
		Transitions:      make(map[string]int, len(r.stats.transitions)),
		Ticks:            r.stats.ticks,
		TickFailures:     r.stats.tickFailures,
		LastTickLatency:  r.stats.lastTickLatency,
		SnapshotWrites:   r.stats.snapshotWrites,
		SnapshotFailures: r.stats.snapshotFailures,
		PublishFailures:  r.stats.publishFailures,
	}
	for k, v := range r.stats.commands {
		snap.Commands[k] = v
	}
	for k, v := range r.stats.transitions {
		snap.Transitions[k] = v
	}
	return snap
}

// CommandCount returns how many times command finished with outcome.
func (r *Recorder) CommandCount(command, outcome string) int {
	return r.Snapshot().Commands[command+"/"+outcome]
}

// TransitionCount returns how many from->to phase changes were seen.
func (r *Recorder) TransitionCount(from, to string) int {
	return r.Snapshot().Transitions[from+"->"+to]
}
