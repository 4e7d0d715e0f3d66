package testutil

import (
	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/derby-clock-service/internal/app/bout"
	"github.com/preston-bernstein/derby-clock-service/internal/store"
)

// NewBoutService returns a service over SampleCatalog driven by clk.
func NewBoutService(clk clockwork.Clock) *bout.Service {
	return bout.NewService(bout.Options{
		Store:   store.NewBoutStore(clk),
		Rosters: SampleCatalog(),
		Clock:   clk,
	})
}
