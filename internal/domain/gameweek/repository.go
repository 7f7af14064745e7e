package gameweek

import "context"

type Repository interface {
	Get(ctx context.Context, teamID int64, gw int) (Snapshot, bool, error)
	Upsert(ctx context.Context, item Snapshot) error
	// ListByTeam returns the team's snapshots ordered by gameweek ascending.
	ListByTeam(ctx context.Context, teamID int64) ([]Snapshot, error)
}
