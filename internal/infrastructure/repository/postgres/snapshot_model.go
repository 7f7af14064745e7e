package postgres

import "time"

type snapshotTableModel struct {
	TeamID        int64     `db:"team_id"`
	Gameweek      int       `db:"gameweek"`
	Picks         []byte    `db:"picks"`
	LivePoints    int       `db:"live_points"`
	TotalPoints   int       `db:"total_points"`
	OverallRank   int       `db:"overall_rank"`
	TransfersCost int       `db:"transfers_cost"`
	Final         bool      `db:"final"`
	Stale         bool      `db:"stale"`
	SyncedAt      time.Time `db:"synced_at"`
}
