package team

import "context"

type Repository interface {
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	Upsert(ctx context.Context, item Team) error
}
