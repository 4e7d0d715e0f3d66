package snapshots

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/gamestate"
	"github.com/preston-bernstein/derby-clock-service/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 50 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// RetryingStore retries failed bout saves with linear backoff. Reads pass
// straight through.
type RetryingStore struct {
	Store
	logger      *slog.Logger
	clock       clockwork.Clock
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetryingStore wraps inner with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingStore(inner Store, logger *slog.Logger, clk clockwork.Clock, maxAttempts int, backoff time.Duration) *RetryingStore {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &RetryingStore{
		Store:       inner,
		logger:      logger,
		clock:       clk,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *RetryingStore) SaveBout(ctx context.Context, id string, startedAt time.Time, snap gamestate.Snapshot) error {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.Store.SaveBout(ctx, id, startedAt, snap)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == r.maxAttempts {
			break
		}

		logging.Warn(logging.FromContext(ctx, r.logger), "bout save retry",
			logging.FieldBoutID, id,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"err", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.backoffFn(attempt)):
		}
	}

	return lastErr
}
