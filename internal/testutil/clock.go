package testutil

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Base is the fixed start time used across tests.
var Base = time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC)

// NewFakeClock returns a fake clock set to Base.
func NewFakeClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(Base)
}

// NowAt returns a clock function fixed at the provided time.
func NowAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// MustParseRFC3339 parses an RFC3339 timestamp or panics; intended for tests.
func MustParseRFC3339(v string) time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return t
}
