package usecase

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/fplstats/minileague/internal/domain/gameweek"
	"github.com/fplstats/minileague/internal/platform/logging"
)

func TestGetSquadAnalysisSplitsSquadAndComputesDeltas(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(SyncConfig{TTL: time.Minute, LiveTTL: time.Minute})
	f.snapshots.items[snapshotStubKey(5, 9)] = gameweek.Snapshot{
		TeamID:   5,
		Gameweek: 9,
		Picks: []gameweek.Pick{
			{PlayerID: 101, Position: 1, Multiplier: 1, IsCaptain: true},
			{PlayerID: 104, Position: 2, Multiplier: 1},
		},
	}
	f.gateway.picksFn = func(teamID int64, gw int) (ExternalManagerPicks, error) {
		return ExternalManagerPicks{
			Event:              gw,
			TotalPoints:        280,
			EventTransfersCost: 4,
			Picks: []ExternalPick{
				{PlayerID: 101, Position: 1, Multiplier: 1},
				{PlayerID: 102, Position: 2, Multiplier: 2, IsCaptain: true},
				{PlayerID: 103, Position: 3, Multiplier: 1, IsViceCaptain: true},
				{PlayerID: 105, Position: 12, Multiplier: 0},
			},
		}, nil
	}
	f.gateway.transfersFn = func(teamID int64) ([]ExternalTransfer, error) {
		return []ExternalTransfer{
			{PlayerIn: 102, PlayerOut: 104, Event: 10},
			{PlayerIn: 999, PlayerOut: 998, Event: 3},
		}, nil
	}

	service := NewSquadService(f.service, f.snapshots, logging.NewNop())
	got, err := service.GetSquadAnalysis(context.Background(), 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Starting) != 3 || len(got.Bench) != 1 {
		t.Fatalf("starting = %d bench = %d", len(got.Starting), len(got.Bench))
	}
	if got.CaptainID != 102 || got.ViceCaptainID != 103 {
		t.Fatalf("captain = %d vice = %d", got.CaptainID, got.ViceCaptainID)
	}
	if got.TransfersCost != 4 {
		t.Fatalf("transfers cost = %d", got.TransfersCost)
	}
	if !reflect.DeepEqual(got.PlayersIn, []int64{102, 103, 105}) {
		t.Fatalf("players in = %v", got.PlayersIn)
	}
	if !reflect.DeepEqual(got.PlayersOut, []int64{104}) {
		t.Fatalf("players out = %v", got.PlayersOut)
	}
	if !got.CaptainMoved {
		t.Fatal("captain change not detected")
	}
	if len(got.Transfers) != 1 || got.Transfers[0].PlayerIn != 102 {
		t.Fatalf("transfers = %+v", got.Transfers)
	}
}

func TestGetSquadAnalysisWithoutPreviousGameweek(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(SyncConfig{TTL: time.Minute, LiveTTL: time.Minute})
	f.gateway.picksFn = func(teamID int64, gw int) (ExternalManagerPicks, error) {
		return ExternalManagerPicks{
			Event: gw,
			Picks: []ExternalPick{
				{PlayerID: 101, Position: 1, Multiplier: 1, IsCaptain: true},
			},
		}, nil
	}

	service := NewSquadService(f.service, f.snapshots, logging.NewNop())
	got, err := service.GetSquadAnalysis(context.Background(), 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.PlayersIn) != 0 || len(got.PlayersOut) != 0 || got.CaptainMoved {
		t.Fatalf("first gameweek produced deltas: %+v", got)
	}
}
