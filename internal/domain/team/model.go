package team

import "time"

// LeagueMembership is a classic-league entry listed on a manager profile.
type LeagueMembership struct {
	LeagueID int64  `json:"league_id" db:"league_id"`
	Name     string `json:"name" db:"name"`
	Rank     int    `json:"rank" db:"entry_rank"`
}

// Team is a manager entry: the fantasy squad a single manager runs.
type Team struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	ManagerName    string             `json:"manager_name"`
	Region         string             `json:"region,omitempty"`
	OverallPoints  int                `json:"overall_points"`
	OverallRank    int                `json:"overall_rank"`
	ClassicLeagues []LeagueMembership `json:"classic_leagues,omitempty"`
	LastSyncedAt   time.Time          `json:"last_synced_at"`
}
