package league

import "time"

// StandingEntry is one team's row in a league table.
type StandingEntry struct {
	TeamID      int64  `json:"team_id"`
	Rank        int    `json:"rank"`
	LastRank    int    `json:"last_rank"`
	TotalPoints int    `json:"total_points"`
	EventPoints int    `json:"event_points"`
	TeamName    string `json:"team_name"`
	ManagerName string `json:"manager_name"`
	Region      string `json:"region,omitempty"`
}

// League is a mini-league with its full table. A sync always replaces
// the standings wholesale; partial tables are never persisted.
type League struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Phase        int             `json:"phase,omitempty"`
	Standings    []StandingEntry `json:"standings"`
	Stale        bool            `json:"stale,omitempty"`
	LastSyncedAt time.Time       `json:"last_synced_at"`
}
