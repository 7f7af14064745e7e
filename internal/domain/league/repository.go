package league

import "context"

type Repository interface {
	GetByID(ctx context.Context, leagueID int64) (League, bool, error)
	// Replace swaps the stored league and its standings atomically.
	Replace(ctx context.Context, item League) error
}
