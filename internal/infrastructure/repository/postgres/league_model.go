package postgres

import "time"

type leagueTableModel struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Phase        int       `db:"phase"`
	Stale        bool      `db:"stale"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Phase        int       `db:"phase"`
	Stale        bool      `db:"stale"`
	LastSyncedAt time.Time `db:"last_synced_at"`
}

type leagueStandingTableModel struct {
	ID          int64  `db:"id"`
	LeagueID    int64  `db:"league_id"`
	TeamID      int64  `db:"team_id"`
	Rank        int    `db:"rank"`
	LastRank    int    `db:"last_rank"`
	TotalPoints int    `db:"total_points"`
	EventPoints int    `db:"event_points"`
	TeamName    string `db:"team_name"`
	ManagerName string `db:"manager_name"`
	Region      string `db:"region"`
}

type leagueStandingInsertModel struct {
	LeagueID    int64  `db:"league_id"`
	TeamID      int64  `db:"team_id"`
	Rank        int    `db:"rank"`
	LastRank    int    `db:"last_rank"`
	TotalPoints int    `db:"total_points"`
	EventPoints int    `db:"event_points"`
	TeamName    string `db:"team_name"`
	ManagerName string `db:"manager_name"`
	Region      string `db:"region"`
}
