// Package postgres persists synced fantasy data with sqlx. Schema
// lives in db/migrations.
package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/fplstats/minileague/internal/domain/team"
	qb "github.com/fplstats/minileague/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}

	item, err := teamFromRow(row)
	if err != nil {
		return team.Team{}, false, err
	}
	return item, true, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	memberships, err := sonic.Marshal(item.ClassicLeagues)
	if err != nil {
		return fmt.Errorf("encode classic leagues team_id=%d: %w", item.ID, err)
	}

	insertModel := teamInsertModel{
		ID:             item.ID,
		Name:           item.Name,
		ManagerName:    item.ManagerName,
		Region:         item.Region,
		OverallPoints:  item.OverallPoints,
		OverallRank:    item.OverallRank,
		ClassicLeagues: memberships,
		LastSyncedAt:   item.LastSyncedAt,
	}
	query, args, err := qb.InsertModel("teams", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    manager_name = EXCLUDED.manager_name,
    region = EXCLUDED.region,
    overall_points = EXCLUDED.overall_points,
    overall_rank = EXCLUDED.overall_rank,
    classic_leagues = EXCLUDED.classic_leagues,
    last_synced_at = EXCLUDED.last_synced_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team id=%d: %w", item.ID, err)
	}
	return nil
}

func teamFromRow(row teamTableModel) (team.Team, error) {
	item := team.Team{
		ID:            row.ID,
		Name:          row.Name,
		ManagerName:   row.ManagerName,
		Region:        row.Region,
		OverallPoints: row.OverallPoints,
		OverallRank:   row.OverallRank,
		LastSyncedAt:  row.LastSyncedAt,
	}
	if len(row.ClassicLeagues) > 0 {
		if err := sonic.Unmarshal(row.ClassicLeagues, &item.ClassicLeagues); err != nil {
			return team.Team{}, fmt.Errorf("decode classic leagues team_id=%d: %w", row.ID, err)
		}
	}
	return item, nil
}
