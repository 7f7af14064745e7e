package gameweek

import "time"

// Pick is one squad slot in a gameweek. Position 1..11 is the starting
// XI, 12..15 the bench. Multiplier carries captaincy (2 or 3) and is 0
// for benched players.
type Pick struct {
	PlayerID      int64 `json:"player_id"`
	Position      int   `json:"position"`
	Multiplier    int   `json:"multiplier"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

func (p Pick) OnBench() bool {
	return p.Position > 11
}

// Snapshot is a team's state for a single gameweek. Once Final is set
// the snapshot is immutable and served without expiry.
type Snapshot struct {
	TeamID        int64     `json:"team_id"`
	Gameweek      int       `json:"gameweek"`
	Picks         []Pick    `json:"picks"`
	LivePoints    int       `json:"live_points"`
	TotalPoints   int       `json:"total_points"`
	OverallRank   int       `json:"overall_rank"`
	TransfersCost int       `json:"transfers_cost"`
	Final         bool      `json:"final"`
	Stale         bool      `json:"stale,omitempty"`
	SyncedAt      time.Time `json:"synced_at"`
}
