package postgres

import (
	"context"
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/fplstats/minileague/internal/domain/gameweek"
	qb "github.com/fplstats/minileague/internal/platform/querybuilder"
)

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Get(ctx context.Context, teamID int64, gw int) (gameweek.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("gameweek_snapshots").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("gameweek", gw),
		).
		ToSQL()
	if err != nil {
		return gameweek.Snapshot{}, false, fmt.Errorf("build get snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return gameweek.Snapshot{}, false, nil
		}
		return gameweek.Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}

	item, err := snapshotFromRow(row)
	if err != nil {
		return gameweek.Snapshot{}, false, err
	}
	return item, true, nil
}

func (r *SnapshotRepository) Upsert(ctx context.Context, item gameweek.Snapshot) error {
	picks, err := sonic.Marshal(item.Picks)
	if err != nil {
		return fmt.Errorf("encode picks team_id=%d gw=%d: %w", item.TeamID, item.Gameweek, err)
	}

	insertModel := snapshotTableModel{
		TeamID:        item.TeamID,
		Gameweek:      item.Gameweek,
		Picks:         picks,
		LivePoints:    item.LivePoints,
		TotalPoints:   item.TotalPoints,
		OverallRank:   item.OverallRank,
		TransfersCost: item.TransfersCost,
		Final:         item.Final,
		Stale:         item.Stale,
		SyncedAt:      item.SyncedAt,
	}
	query, args, err := qb.InsertModel("gameweek_snapshots", insertModel, `ON CONFLICT (team_id, gameweek)
DO UPDATE SET
    picks = EXCLUDED.picks,
    live_points = EXCLUDED.live_points,
    total_points = EXCLUDED.total_points,
    overall_rank = EXCLUDED.overall_rank,
    transfers_cost = EXCLUDED.transfers_cost,
    final = EXCLUDED.final,
    stale = EXCLUDED.stale,
    synced_at = EXCLUDED.synced_at`)
	if err != nil {
		return fmt.Errorf("build upsert snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot team_id=%d gw=%d: %w", item.TeamID, item.Gameweek, err)
	}
	return nil
}

func (r *SnapshotRepository) ListByTeam(ctx context.Context, teamID int64) ([]gameweek.Snapshot, error) {
	query, args, err := qb.Select("*").From("gameweek_snapshots").
		Where(qb.Eq("team_id", teamID)).
		OrderBy("gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list snapshots query: %w", err)
	}

	var rows []snapshotTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list snapshots team_id=%d: %w", teamID, err)
	}

	out := make([]gameweek.Snapshot, 0, len(rows))
	for _, row := range rows {
		item, err := snapshotFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func snapshotFromRow(row snapshotTableModel) (gameweek.Snapshot, error) {
	item := gameweek.Snapshot{
		TeamID:        row.TeamID,
		Gameweek:      row.Gameweek,
		LivePoints:    row.LivePoints,
		TotalPoints:   row.TotalPoints,
		OverallRank:   row.OverallRank,
		TransfersCost: row.TransfersCost,
		Final:         row.Final,
		Stale:         row.Stale,
		SyncedAt:      row.SyncedAt,
	}
	if len(row.Picks) > 0 {
		if err := sonic.Unmarshal(row.Picks, &item.Picks); err != nil {
			return gameweek.Snapshot{}, fmt.Errorf("decode picks team_id=%d gw=%d: %w", row.TeamID, row.Gameweek, err)
		}
	}
	return item, nil
}
