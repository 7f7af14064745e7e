package postgres

import "time"

type teamTableModel struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	ManagerName    string    `db:"manager_name"`
	Region         string    `db:"region"`
	OverallPoints  int       `db:"overall_points"`
	OverallRank    int       `db:"overall_rank"`
	ClassicLeagues []byte    `db:"classic_leagues"`
	LastSyncedAt   time.Time `db:"last_synced_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	ManagerName    string    `db:"manager_name"`
	Region         string    `db:"region"`
	OverallPoints  int       `db:"overall_points"`
	OverallRank    int       `db:"overall_rank"`
	ClassicLeagues []byte    `db:"classic_leagues"`
	LastSyncedAt   time.Time `db:"last_synced_at"`
}
