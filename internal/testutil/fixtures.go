package testutil

import (
	"fmt"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/roster"
	"github.com/preston-bernstein/derby-clock-service/internal/rosters"
)

// SampleRoster builds a roster with one skater per number. It panics on an
// invalid roster; intended for tests.
func SampleRoster(name string, numbers ...string) *roster.Roster {
	skaters := make([]roster.Skater, 0, len(numbers))
	for _, n := range numbers {
		skaters = append(skaters, roster.Skater{Number: n, Name: fmt.Sprintf("%s %s", name, n)})
	}
	r, err := roster.New(name, skaters)
	if err != nil {
		panic(err)
	}
	return r
}

// SampleCatalog holds two rosters with IDs "rollers" and "wheels".
func SampleCatalog() *rosters.Catalog {
	return rosters.NewCatalog(map[string]*roster.Roster{
		"rollers": SampleRoster("Rollers", "12", "3", "77"),
		"wheels":  SampleRoster("Wheels", "9", "45"),
	})
}
