package gamestate

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/derby-clock-service/internal/clock"
)

var (
	ErrUnknownSkater = errors.New("unknown skater")
	ErrUnknownJam    = errors.New("unknown jam")
	ErrInvalidTeam   = errors.New("invalid team")
)

// ConsistencyError reports a phase and tag pairing the transition rules can
// never produce. It is raised with panic.
type ConsistencyError struct {
	Phase clock.Phase
	Tag   Tag
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("inconsistent game state: phase %s with tag %s", e.Phase, e.Tag)
}

// AsConsistencyError unwraps err or a recovered panic value.
func AsConsistencyError(v any) (*ConsistencyError, bool) {
	err, ok := v.(error)
	if !ok {
		return nil, false
	}
	var ce *ConsistencyError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
