package snapshots

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/snapshots/migrations"
)

const defaultListLimit = 50

// SQLiteStore archives bouts in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive at path and applies migrations.
func Open(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("snapshot store path is required")
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveBout inserts or replaces the archived state of a bout.
func (s *SQLiteStore) SaveBout(ctx context.Context, id string, startedAt time.Time, snap gamestate.Snapshot) error {
	if s == nil || s.db == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("bout id is required")
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO bouts (id, started_at, updated_at, home_name, away_name, home_score, away_score, period, final, snapshot)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    updated_at = excluded.updated_at,
    home_name = excluded.home_name,
    away_name = excluded.away_name,
    home_score = excluded.home_score,
    away_score = excluded.away_score,
    period = excluded.period,
    final = excluded.final,
    snapshot = excluded.snapshot`,
		id,
		toMillis(startedAt),
		toMillis(s.now()),
		snap.Teams.Home.Roster.Name,
		snap.Teams.Away.Roster.Name,
		snap.Score.Home,
		snap.Score.Away,
		snap.Clock.PeriodNumber,
		boolToInt(snap.Final),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("save bout %s: %w", id, err)
	}
	return nil
}

// LoadBout returns the archived bout with the given ID.
func (s *SQLiteStore) LoadBout(ctx context.Context, id string) (Record, error) {
	if s == nil || s.db == nil {
		return Record{}, ErrNotConfigured
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, started_at, updated_at, home_name, away_name, home_score, away_score, period, final, snapshot
FROM bouts WHERE id = ?`, id)

	var (
		rec     Record
		payload string
	)
	summary, err := scanSummary(row, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load bout %s: %w", id, err)
	}
	rec.Summary = summary
	if err := json.Unmarshal([]byte(payload), &rec.Snapshot); err != nil {
		return Record{}, fmt.Errorf("decode bout %s: %w", id, err)
	}
	return rec, nil
}

// ListBouts returns archived bouts, newest first.
func (s *SQLiteStore) ListBouts(ctx context.Context, limit int) ([]Summary, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, started_at, updated_at, home_name, away_name, home_score, away_score, period, final, snapshot
FROM bouts ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bouts: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var payload string
		summary, err := scanSummary(rows, &payload)
		if err != nil {
			return nil, fmt.Errorf("scan bout: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bouts: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner, payload *string) (Summary, error) {
	var (
		s                Summary
		started, updated int64
		final            int
	)
	if err := row.Scan(&s.ID, &started, &updated, &s.Home, &s.Away, &s.HomeScore, &s.AwayScore, &s.Period, &final, payload); err != nil {
		return Summary{}, err
	}
	s.StartedAt = fromMillis(started)
	s.UpdatedAt = fromMillis(updated)
	s.Final = final != 0
	return s, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
