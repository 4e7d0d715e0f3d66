package jams

import (
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/derby-clock-service/internal/domain/penalties"
	"github.com/preston-bernstein/derby-clock-service/internal/domain/teams"
)

func TestAdjustPointsFloorsAtZero(t *testing.T) {
	var tj TeamJam
	tj.AdjustPoints(-3)
	if len(tj.JammerTrips) != 1 || tj.JammerTrips[0] != 0 {
		t.Fatalf("expected a single zero trip, got %v", tj.JammerTrips)
	}

	tj.AdjustPoints(4)
	tj.AdjustPoints(-1)
	if tj.Points() != 3 {
		t.Fatalf("expected 3 points, got %d", tj.Points())
	}
}

func TestStarPassMovesScoringToPivot(t *testing.T) {
	var tj TeamJam
	tj.AdjustPoints(4)
	tj.SetStarPass(true)
	tj.AdjustPoints(2)

	if len(tj.PivotTrips) != 1 || tj.PivotTrips[0] != 2 {
		t.Fatalf("expected pivot trip of 2, got %v", tj.PivotTrips)
	}
	if tj.JammerTrips[0] != 4 {
		t.Fatalf("expected jammer trip untouched, got %v", tj.JammerTrips)
	}
	if tj.Points() != 6 {
		t.Fatalf("expected 6 points, got %d", tj.Points())
	}
}

func TestStarPassWithLeadForfeitsLead(t *testing.T) {
	tj := TeamJam{Lead: true}
	tj.SetStarPass(true)

	if tj.Lead || !tj.Lost {
		t.Fatalf("expected lead forfeited and lost set, got %+v", tj)
	}
}

func TestSetLostClearsLead(t *testing.T) {
	tj := TeamJam{Lead: true}
	tj.SetLost(true)
	if tj.Lead {
		t.Fatalf("expected lead cleared")
	}
	tj.SetLost(false)
	if tj.Lost {
		t.Fatalf("expected lost cleared")
	}
}

func TestSetTripPadsSkippedTrips(t *testing.T) {
	var tj TeamJam
	if err := tj.SetTrip(3, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tj.JammerTrips) != 3 || tj.JammerTrips[2] != 4 || tj.JammerTrips[0] != 0 {
		t.Fatalf("unexpected trips %v", tj.JammerTrips)
	}
	if err := tj.SetTrip(0, 1); !errors.Is(err, ErrInvalidTrip) {
		t.Fatalf("expected ErrInvalidTrip, got %v", err)
	}
}

func TestLeadIsExclusive(t *testing.T) {
	var j Jam
	j.SetLead(teams.Home, true)
	j.SetLead(teams.Away, true)

	if j.Team(teams.Home).Lead {
		t.Fatalf("expected home lead cleared")
	}
	if !j.Team(teams.Away).Lead {
		t.Fatalf("expected away lead")
	}

	j.Team(teams.Home).SetLost(true)
	j.SetLead(teams.Home, true)
	if j.Team(teams.Home).Lead {
		t.Fatalf("expected a jammer who lost lead not to regain it")
	}
}

func TestLedgerScoresAndClones(t *testing.T) {
	l := NewLedger()
	if l.Len() != 1 {
		t.Fatalf("expected one slot, got %d", l.Len())
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.Current().Start = &start
	l.Current().Team(teams.Home).AdjustPoints(4)
	l.Current().Team(teams.Home).Penalties = append(l.Current().Team(teams.Home).Penalties, Penalty{Skater: 1, Code: penalties.Elbows})
	l.Append()
	l.Current().Team(teams.Away).AdjustPoints(3)

	if got := l.TotalScore(); got != (teams.Score{Home: 4, Away: 3}) {
		t.Fatalf("unexpected total %+v", got)
	}
	if got := l.Current().Score(); got != (teams.Score{Away: 3}) {
		t.Fatalf("unexpected jam score %+v", got)
	}

	copies := l.Jams()
	copies[0].Teams.Home.JammerTrips[0] = 99
	*copies[0].Start = start.Add(time.Hour)
	if l.At(0).Teams.Home.JammerTrips[0] != 4 || !l.At(0).Start.Equal(start) {
		t.Fatalf("expected clones not to alias the ledger")
	}
	if l.At(5) != nil {
		t.Fatalf("expected nil for out of range slot")
	}
}
