package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fplstats/minileague/internal/domain/gameweek"
)

type snapshotKey struct {
	teamID int64
	gw     int
}

type SnapshotRepository struct {
	mu    sync.RWMutex
	items map[snapshotKey]gameweek.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		items: make(map[snapshotKey]gameweek.Snapshot),
	}
}

func (r *SnapshotRepository) Get(_ context.Context, teamID int64, gw int) (gameweek.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[snapshotKey{teamID: teamID, gw: gw}]
	if !ok {
		return gameweek.Snapshot{}, false, nil
	}

	return item, true, nil
}

func (r *SnapshotRepository) Upsert(_ context.Context, item gameweek.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[snapshotKey{teamID: item.TeamID, gw: item.Gameweek}] = item
	return nil
}

func (r *SnapshotRepository) ListByTeam(_ context.Context, teamID int64) ([]gameweek.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gameweek.Snapshot, 0, 8)
	for key, item := range r.items {
		if key.teamID == teamID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Gameweek < out[j].Gameweek
	})

	return out, nil
}
