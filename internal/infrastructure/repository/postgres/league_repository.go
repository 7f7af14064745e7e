package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/minileague/internal/domain/league"
	qb "github.com/fplstats/minileague/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("id", leagueID)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	standingsQuery, standingsArgs, err := qb.Select("*").From("league_standings").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("rank", "team_id").
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build list league standings query: %w", err)
	}

	var standingRows []leagueStandingTableModel
	if err := r.db.SelectContext(ctx, &standingRows, standingsQuery, standingsArgs...); err != nil {
		return league.League{}, false, fmt.Errorf("list league standings: %w", err)
	}

	item := league.League{
		ID:           row.ID,
		Name:         row.Name,
		Phase:        row.Phase,
		Stale:        row.Stale,
		LastSyncedAt: row.LastSyncedAt,
		Standings:    make([]league.StandingEntry, 0, len(standingRows)),
	}
	for _, standing := range standingRows {
		item.Standings = append(item.Standings, league.StandingEntry{
			TeamID:      standing.TeamID,
			Rank:        standing.Rank,
			LastRank:    standing.LastRank,
			TotalPoints: standing.TotalPoints,
			EventPoints: standing.EventPoints,
			TeamName:    standing.TeamName,
			ManagerName: standing.ManagerName,
			Region:      standing.Region,
		})
	}

	return item, true, nil
}

// Replace swaps the league row and its standings in one transaction so
// readers never observe a half-written table.
func (r *LeagueRepository) Replace(ctx context.Context, item league.League) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace league: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertModel := leagueInsertModel{
		ID:           item.ID,
		Name:         item.Name,
		Phase:        item.Phase,
		Stale:        item.Stale,
		LastSyncedAt: item.LastSyncedAt,
	}
	query, args, err := qb.InsertModel("leagues", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    phase = EXCLUDED.phase,
    stale = EXCLUDED.stale,
    last_synced_at = EXCLUDED.last_synced_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert league query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert league id=%d: %w", item.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM league_standings WHERE league_id = $1", item.ID); err != nil {
		return fmt.Errorf("clear league standings league_id=%d: %w", item.ID, err)
	}

	for _, standing := range item.Standings {
		standingModel := leagueStandingInsertModel{
			LeagueID:    item.ID,
			TeamID:      standing.TeamID,
			Rank:        standing.Rank,
			LastRank:    standing.LastRank,
			TotalPoints: standing.TotalPoints,
			EventPoints: standing.EventPoints,
			TeamName:    standing.TeamName,
			ManagerName: standing.ManagerName,
			Region:      standing.Region,
		}
		standingQuery, standingArgs, err := qb.InsertModel("league_standings", standingModel, "")
		if err != nil {
			return fmt.Errorf("build insert league standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, standingQuery, standingArgs...); err != nil {
			return fmt.Errorf("insert league standing team_id=%d: %w", standing.TeamID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace league tx: %w", err)
	}
	return nil
}
