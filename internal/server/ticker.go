package server

import (
	"context"

	"github.com/preston-bernstein/derby-clock-service/internal/ticker"
)

// Ticker defines the minimal clock driver behavior needed by the server.
type Ticker interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() ticker.Status
}
