// Package memory holds in-process repository implementations. They back
// the service when no database is configured and double as fixtures in
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/fplstats/minileague/internal/domain/league"
)

type LeagueRepository struct {
	mu    sync.RWMutex
	items map[int64]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{
		items: make(map[int64]league.League),
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return league.League{}, false, nil
	}

	return item, true, nil
}

func (r *LeagueRepository) Replace(_ context.Context, item league.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The standings slice is stored as-is; callers hand over ownership.
	r.items[item.ID] = item
	return nil
}
