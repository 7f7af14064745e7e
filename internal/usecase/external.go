package usecase

import (
	"context"
	"time"
)

// Gateway is the upstream fantasy API boundary. Implementations are
// responsible for retries, circuit breaking and request collapsing;
// callers only see typed payloads and the shared error sentinels.
type Gateway interface {
	GetBootstrap(ctx context.Context) (ExternalBootstrap, error)
	GetFixtures(ctx context.Context, gw int) ([]ExternalFixture, error)
	GetCurrentGameweek(ctx context.Context) (ExternalEvent, error)
	GetLeagueStandings(ctx context.Context, leagueID int64, phase, page int) (ExternalStandingsPage, error)
	GetManagerEntry(ctx context.Context, teamID int64) (ExternalManagerEntry, error)
	GetManagerPicks(ctx context.Context, teamID int64, gw int) (ExternalManagerPicks, error)
	GetManagerHistory(ctx context.Context, teamID int64) (ExternalManagerHistory, error)
	GetManagerTransfers(ctx context.Context, teamID int64) ([]ExternalTransfer, error)
	GetLiveGameweek(ctx context.Context, gw int) (ExternalLiveGameweek, error)
	SearchEntries(ctx context.Context, query string) ([]ExternalEntrySearch, error)
}

type ExternalEvent struct {
	ID          int
	Name        string
	Finished    bool
	DataChecked bool
	IsCurrent   bool
	IsNext      bool
}

type ExternalPhase struct {
	ID         int
	Name       string
	StartEvent int
	StopEvent  int
}

type ExternalBootstrap struct {
	Events       []ExternalEvent
	Phases       []ExternalPhase
	TotalPlayers int
}

type ExternalFixture struct {
	ID         int64
	Event      int
	KickoffAt  time.Time
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  *int
	AwayScore  *int
	Started    bool
	Finished   bool
}

type ExternalStandingRow struct {
	EntryID     int64
	Rank        int
	LastRank    int
	Total       int
	EventTotal  int
	EntryName   string
	ManagerName string
}

type ExternalStandingsPage struct {
	LeagueID   int64
	LeagueName string
	Page       int
	HasNext    bool
	Rows       []ExternalStandingRow
}

type ExternalEntryLeague struct {
	ID        int64
	Name      string
	EntryRank int
}

type ExternalManagerEntry struct {
	ID             int64
	TeamName       string
	ManagerName    string
	Region         string
	OverallPoints  int
	OverallRank    int
	ClassicLeagues []ExternalEntryLeague
}

type ExternalPick struct {
	PlayerID      int64
	Position      int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
}

type ExternalManagerPicks struct {
	Event              int
	Points             int
	TotalPoints        int
	EventTransfersCost int
	OverallRank        int
	Picks              []ExternalPick
}

type ExternalHistoryRound struct {
	Event              int
	Points             int
	TotalPoints        int
	OverallRank        int
	EventTransfersCost int
}

type ExternalManagerHistory struct {
	Rounds []ExternalHistoryRound
}

type ExternalTransfer struct {
	PlayerIn  int64
	PlayerOut int64
	Event     int
	Time      time.Time
}

type ExternalLivePlayer struct {
	ID          int64
	TotalPoints int
	Minutes     int
}

type ExternalLiveGameweek struct {
	Event   int
	Players []ExternalLivePlayer
}

// PointsFor returns the live points scored by a player, zero when the
// player has no live entry yet.
func (l ExternalLiveGameweek) PointsFor(playerID int64) int {
	for _, p := range l.Players {
		if p.ID == playerID {
			return p.TotalPoints
		}
	}
	return 0
}

type ExternalEntrySearch struct {
	EntryID     int64
	EntryName   string
	ManagerName string
	Region      string
}
