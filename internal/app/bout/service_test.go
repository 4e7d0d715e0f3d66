package bout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
	"github.com/preston-bernstein/derby-clock-service/internal/events"
	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/metrics"
	"github.com/preston-bernstein/derby-clock-service/internal/rosters"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
)

var base = time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(t events.Type) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, ev := range p.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type stubArchive struct {
	saved []string
	snaps []gamestate.Snapshot
	err   error
}

func (a *stubArchive) SaveBout(_ context.Context, id string, _ time.Time, snap gamestate.Snapshot) error {
	a.saved = append(a.saved, id)
	a.snaps = append(a.snaps, snap)
	return a.err
}

func (a *stubArchive) LoadBout(_ context.Context, id string) (snapshots.Record, error) {
	for i, saved := range a.saved {
		if saved == id {
			return snapshots.Record{Summary: snapshots.Summary{ID: id}, Snapshot: a.snaps[i]}, nil
		}
	}
	return snapshots.Record{}, snapshots.ErrNotFound
}

func (a *stubArchive) ListBouts(context.Context, int) ([]snapshots.Summary, error) {
	out := make([]snapshots.Summary, 0, len(a.saved))
	for _, id := range a.saved {
		out = append(out, snapshots.Summary{ID: id})
	}
	return out, nil
}

type fixture struct {
	svc      *Service
	clock    *clockwork.FakeClock
	pub      *recordingPublisher
	archive  *stubArchive
	recorder *metrics.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	home, err := roster.New("Rollers", []roster.Skater{{Number: "12", Name: "Ada"}, {Number: "3", Name: "Bo"}})
	if err != nil {
		t.Fatalf("home roster: %v", err)
	}
	away, err := roster.New("Wheels", []roster.Skater{{Number: "9", Name: "Cy"}})
	if err != nil {
		t.Fatalf("away roster: %v", err)
	}
	clk := clockwork.NewFakeClockAt(base)
	f := fixture{
		clock:    clk,
		pub:      &recordingPublisher{},
		archive:  &stubArchive{},
		recorder: metrics.NewRecorder(),
	}
	f.svc = NewService(Options{
		Store:     store.NewBoutStore(clk),
		Rosters:   rosters.NewCatalog(map[string]*roster.Roster{"rollers": home, "wheels": away}),
		Publisher: f.pub,
		Archive:   f.archive,
		Recorder:  f.recorder,
		Clock:     clk,
	})
	return f
}

func (f fixture) start(t *testing.T, countdown time.Duration) store.Info {
	t.Helper()
	info, err := f.svc.Start(context.Background(), StartRequest{Home: "rollers", Away: "wheels", Countdown: countdown})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	return info
}

func TestStartRejectsUnknownRoster(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), StartRequest{Home: "rollers", Away: "nobody"})
	if !errors.Is(err, ErrInvalidStart) {
		t.Fatalf("expected ErrInvalidStart, got %v", err)
	}
	if _, ok := f.svc.Current(); ok {
		t.Fatalf("expected no bout after failed start")
	}
}

func TestStartAtComputesCountdown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), StartRequest{
		Home:    "rollers",
		Away:    "wheels",
		StartAt: &StartAt{Hours: 7, Minutes: 0, Meridiem: "pm"},
	})
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	board, err := f.svc.Scoreboard()
	if err != nil {
		t.Fatalf("scoreboard failed: %v", err)
	}
	if board.Active.Kind != gamestate.ActivePreGame || board.Active.Clock != "60:00" {
		t.Fatalf("expected one hour pregame, got %+v", board.Active)
	}
	if f.pub.count(events.BoutStarted) != 1 {
		t.Fatalf("expected bout.started event")
	}
}

func TestStartAtRejectsBadTime(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Start(context.Background(), StartRequest{
		Home:    "rollers",
		Away:    "wheels",
		StartAt: &StartAt{Hours: 13, Meridiem: "pm"},
	})
	if !errors.Is(err, ErrInvalidStart) {
		t.Fatalf("expected ErrInvalidStart, got %v", err)
	}
}

func TestCommandsWithoutBout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartJam(ctx); !errors.Is(err, store.ErrNoBout) {
		t.Fatalf("expected ErrNoBout, got %v", err)
	}
	if err := f.svc.AdjustScore(ctx, teams.Home, 4); !errors.Is(err, store.ErrNoBout) {
		t.Fatalf("expected ErrNoBout, got %v", err)
	}
	if _, err := f.svc.Scoreboard(); !errors.Is(err, store.ErrNoBout) {
		t.Fatalf("expected ErrNoBout, got %v", err)
	}
	if err := f.svc.Tick(ctx); err != nil {
		t.Fatalf("expected tick without bout to be quiet, got %v", err)
	}
	if f.recorder.CommandCount("start_jam", metrics.OutcomeRejected) != 1 {
		t.Fatalf("expected rejected start_jam to be counted")
	}
}

func TestInvalidTeamRejected(t *testing.T) {
	f := newFixture(t)
	f.start(t, 0)
	if err := f.svc.AdjustScore(context.Background(), teams.Team(7), 1); !errors.Is(err, gamestate.ErrInvalidTeam) {
		t.Fatalf("expected ErrInvalidTeam, got %v", err)
	}
}

func TestJamLifecyclePublishesAndArchives(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	info := f.start(t, 0)

	started, err := f.svc.StartJam(ctx)
	if err != nil || !started {
		t.Fatalf("expected jam to start, got %v %v", started, err)
	}
	if again, _ := f.svc.StartJam(ctx); again {
		t.Fatalf("expected second start to be refused while jamming")
	}
	if err := f.svc.AdjustScore(ctx, teams.Home, 4); err != nil {
		t.Fatalf("adjust score failed: %v", err)
	}

	f.clock.Advance(2*time.Minute + time.Second)
	if err := f.svc.Tick(ctx); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	if f.pub.count(events.JamStarted) != 1 || f.pub.count(events.JamStopped) != 1 {
		t.Fatalf("expected one jam started and stopped, got %+v", f.pub.events)
	}
	if f.pub.count(events.PhaseChanged) != 2 {
		t.Fatalf("expected two phase changes, got %d", f.pub.count(events.PhaseChanged))
	}
	if len(f.archive.saved) != 1 || f.archive.saved[0] != info.ID {
		t.Fatalf("expected bout archived once after jam, got %v", f.archive.saved)
	}
	if f.archive.snaps[0].Score.Home != 4 {
		t.Fatalf("expected archived score 4, got %+v", f.archive.snaps[0].Score)
	}
	if f.recorder.TransitionCount("jam", "lineup") != 1 {
		t.Fatalf("expected jam->lineup transition counted")
	}

	board, err := f.svc.Scoreboard()
	if err != nil {
		t.Fatalf("scoreboard failed: %v", err)
	}
	if board.Active.Kind != gamestate.ActiveLineup || board.Active.Clock != "0:29" {
		t.Fatalf("expected lineup with 29s left, got %+v", board.Active)
	}
	if board.Teams.Home.Score != 4 || board.Teams.Home.JamScore != 0 {
		t.Fatalf("unexpected home line %+v", board.Teams.Home)
	}
	if board.Teams.Home.Name != "Rollers" || board.Teams.Away.Name != "Wheels" {
		t.Fatalf("unexpected team names %+v", board.Teams)
	}
}

func TestStopJamOutsideJamIsRejected(t *testing.T) {
	f := newFixture(t)
	f.start(t, time.Minute)

	stopped, err := f.svc.StopJam(context.Background())
	if err != nil || stopped {
		t.Fatalf("expected refused stop, got %v %v", stopped, err)
	}
	if f.recorder.CommandCount("stop_jam", metrics.OutcomeRejected) != 1 {
		t.Fatalf("expected rejected stop to be counted")
	}
}

func TestTeamTimeoutExhaustionDowngrades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, 0)

	if granted, _ := f.svc.TeamTimeout(ctx, teams.Home); granted {
		t.Fatalf("expected timeout refused during pregame")
	}
	if f.recorder.CommandCount("team_timeout", metrics.OutcomeRejected) != 1 {
		t.Fatalf("expected pregame timeout rejected")
	}

	f.svc.StartJam(ctx)
	f.clock.Advance(time.Minute)
	f.svc.StopJam(ctx)

	for i := 0; i < 3; i++ {
		granted, err := f.svc.TeamTimeout(ctx, teams.Home)
		if err != nil || !granted {
			t.Fatalf("expected timeout %d granted, got %v %v", i+1, granted, err)
		}
	}
	granted, err := f.svc.TeamTimeout(ctx, teams.Home)
	if err != nil || granted {
		t.Fatalf("expected fourth timeout refused, got %v %v", granted, err)
	}
	if f.recorder.CommandCount("team_timeout", metrics.OutcomeDowngraded) != 1 {
		t.Fatalf("expected one downgraded timeout")
	}
	if f.pub.count(events.TeamTimeoutCalled) != 3 || f.pub.count(events.OfficialTimeout) != 1 {
		t.Fatalf("unexpected events %+v", f.pub.events)
	}

	board, _ := f.svc.Scoreboard()
	if board.Active.Kind != gamestate.ActiveOfficialTimeout {
		t.Fatalf("expected official timeout, got %+v", board.Active)
	}
	if board.Teams.Home.Timeouts != 0 || board.Teams.Away.Timeouts != 3 {
		t.Fatalf("unexpected timeouts %+v", board.Teams)
	}
}

func TestOfficialReviewAndLoss(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, 0)
	f.svc.StartJam(ctx)

	granted, err := f.svc.OfficialReview(ctx, teams.Away)
	if err != nil || !granted {
		t.Fatalf("expected review granted, got %v %v", granted, err)
	}
	board, _ := f.svc.Scoreboard()
	if board.Active.Kind != gamestate.ActiveReview || board.Active.Team != teams.Away {
		t.Fatalf("expected away review, got %+v", board.Active)
	}
	if err := f.svc.ReviewLost(ctx, teams.Away); err != nil {
		t.Fatalf("review lost failed: %v", err)
	}
	board, _ = f.svc.Scoreboard()
	if board.Teams.Away.Reviews != 0 {
		t.Fatalf("expected reviews zeroed, got %d", board.Teams.Away.Reviews)
	}
	if f.pub.count(events.ReviewRequested) != 1 || f.pub.count(events.ReviewLost) != 1 {
		t.Fatalf("unexpected events %+v", f.pub.events)
	}
}

func TestRecordPenalty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, 0)
	f.svc.StartJam(ctx)

	if err := f.svc.RecordPenalty(ctx, teams.Home, "12", penalties.HighBlock); err != nil {
		t.Fatalf("record penalty failed: %v", err)
	}
	err := f.svc.RecordPenalty(ctx, teams.Home, "99", penalties.HighBlock)
	if !errors.Is(err, gamestate.ErrUnknownSkater) {
		t.Fatalf("expected ErrUnknownSkater, got %v", err)
	}

	byNumber, err := f.svc.Penalties(teams.Home)
	if err != nil {
		t.Fatalf("penalties failed: %v", err)
	}
	if len(byNumber) != 2 || len(byNumber["12"]) != 1 || len(byNumber["3"]) != 0 {
		t.Fatalf("unexpected penalties %+v", byNumber)
	}
	if rec := byNumber["12"][0]; rec.Period != 1 || rec.Jam != 1 || rec.Code != penalties.HighBlock {
		t.Fatalf("unexpected record %+v", rec)
	}

	views, err := f.svc.Jams()
	if err != nil {
		t.Fatalf("jams failed: %v", err)
	}
	if len(views) != 1 || len(views[0].Teams.Home.Penalties) != 1 || views[0].Teams.Home.Penalties[0].Skater != "12" {
		t.Fatalf("unexpected jam views %+v", views)
	}
	if f.pub.count(events.PenaltyRecorded) != 1 {
		t.Fatalf("expected one penalty event")
	}
}

func TestUpdateJam(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, 0)
	f.svc.StartJam(ctx)
	f.clock.Advance(30 * time.Second)
	f.svc.StopJam(ctx)

	lead := true
	err := f.svc.UpdateJam(ctx, 1, teams.Away, gamestate.JamUpdate{
		Lead: &lead,
		Trip: &gamestate.TripPoints{Trip: 2, Points: 4},
	})
	if err != nil {
		t.Fatalf("update jam failed: %v", err)
	}
	views, _ := f.svc.Jams()
	away := views[0].Teams.Away
	if !away.Lead || away.Points != 4 || len(away.JammerTrips) != 2 {
		t.Fatalf("unexpected away record %+v", away)
	}
	if views[0].Start == nil || views[0].End == nil {
		t.Fatalf("expected first jam stamped, got %+v", views[0])
	}

	if err := f.svc.UpdateJam(ctx, 9, teams.Away, gamestate.JamUpdate{Lead: &lead}); !errors.Is(err, gamestate.ErrUnknownJam) {
		t.Fatalf("expected ErrUnknownJam, got %v", err)
	}
}

func TestStartReplacesAndArchivesPreviousBout(t *testing.T) {
	f := newFixture(t)
	first := f.start(t, time.Minute)
	second := f.start(t, time.Minute)

	if first.ID == second.ID {
		t.Fatalf("expected new bout id")
	}
	if len(f.archive.saved) != 1 || f.archive.saved[0] != first.ID {
		t.Fatalf("expected displaced bout archived, got %v", f.archive.saved)
	}
	if f.pub.count(events.BoutReplaced) != 1 {
		t.Fatalf("expected bout.replaced event")
	}
	list, err := f.svc.ArchivedBouts(context.Background(), 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one archived bout, got %v %v", list, err)
	}
}

func TestArchiveFailureIsCounted(t *testing.T) {
	f := newFixture(t)
	f.archive.err = errors.New("disk full")
	f.start(t, time.Minute)
	f.start(t, time.Minute)

	snap := f.recorder.Snapshot()
	if snap.SnapshotWrites != 1 || snap.SnapshotFailures != 1 {
		t.Fatalf("expected failed write counted, got %+v", snap)
	}
}

func TestPublishFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("nats down")
	f.start(t, 0)

	if err := f.svc.AdjustScore(context.Background(), teams.Home, 1); err != nil {
		t.Fatalf("expected command to succeed, got %v", err)
	}
	if f.recorder.Snapshot().PublishFailures == 0 {
		t.Fatalf("expected publish failures counted")
	}
}

func TestArchiveNotConfigured(t *testing.T) {
	svc := NewService(Options{Rosters: rosters.NewCatalog(nil)})
	if _, err := svc.ArchivedBouts(context.Background(), 1); !errors.Is(err, snapshots.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := svc.ArchivedBout(context.Background(), "x"); !errors.Is(err, snapshots.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFlushArchivesRunningBout(t *testing.T) {
	f := newFixture(t)
	f.svc.Flush(context.Background())
	if len(f.archive.saved) != 0 {
		t.Fatalf("expected nothing archived without a bout, got %v", f.archive.saved)
	}

	info := f.start(t, time.Minute)
	f.svc.Flush(context.Background())
	if len(f.archive.saved) != 1 || f.archive.saved[0] != info.ID {
		t.Fatalf("expected running bout archived, got %v", f.archive.saved)
	}
}

func TestIntermissionClockOnlyInIntermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.start(t, time.Minute)

	set, err := f.svc.SetIntermissionClock(ctx, 5*time.Minute)
	if err != nil || !set {
		t.Fatalf("expected pregame clock set, got %v %v", set, err)
	}
	board, _ := f.svc.Scoreboard()
	if board.Active.Clock != "5:00" {
		t.Fatalf("expected 5:00 pregame, got %s", board.Active.Clock)
	}

	f.svc.StartJam(ctx)
	if set, _ := f.svc.SetIntermissionClock(ctx, time.Minute); set {
		t.Fatalf("expected refusal during a jam")
	}
	if err := f.svc.SetPeriodClock(ctx, 10*time.Minute); err != nil {
		t.Fatalf("set period clock failed: %v", err)
	}
	board, _ = f.svc.Scoreboard()
	if board.PeriodClock != "10:00" || board.Period != 1 {
		t.Fatalf("unexpected period clock %d %s", board.Period, board.PeriodClock)
	}
}
