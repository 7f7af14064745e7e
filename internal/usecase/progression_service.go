package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fplstats/minileague/internal/domain/gameweek"
	"github.com/fplstats/minileague/internal/domain/league"
	"github.com/fplstats/minileague/internal/platform/logging"
)

type ProgressionPoint struct {
	Gameweek    int `json:"gameweek"`
	Rank        int `json:"rank"`
	TotalPoints int `json:"total_points"`
	OverallRank int `json:"overall_rank,omitempty"`
}

type TeamProgression struct {
	TeamID   int64              `json:"team_id"`
	TeamName string             `json:"team_name"`
	Points   []ProgressionPoint `json:"points"`
}

type ProgressionSeries struct {
	LeagueID int64             `json:"league_id"`
	Teams    []TeamProgression `json:"teams"`
}

// ProgressionService derives per-gameweek league ranks from stored
// snapshots. It is a pure read over persisted data; it never fetches.
type ProgressionService struct {
	leagueRepo   league.Repository
	snapshotRepo gameweek.Repository
	logger       *logging.Logger
}

func NewProgressionService(leagueRepo league.Repository, snapshotRepo gameweek.Repository, logger *logging.Logger) *ProgressionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProgressionService{
		leagueRepo:   leagueRepo,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// GetGameweekRankProgression computes each member's rank trajectory
// across the gameweeks that have snapshots. A team missing a gameweek
// is excluded from that gameweek's ranking only. Ranks order by total
// points descending with team id ascending as the tie-break, so the
// output is deterministic for identical inputs.
func (s *ProgressionService) GetGameweekRankProgression(ctx context.Context, leagueID int64) (ProgressionSeries, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProgressionService.GetGameweekRankProgression")
	defer span.End()

	if leagueID <= 0 {
		return ProgressionSeries{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	l, ok, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return ProgressionSeries{}, fmt.Errorf("load league %d: %w", leagueID, err)
	}
	if !ok {
		return ProgressionSeries{}, fmt.Errorf("%w: league %d is not synced", ErrNotFound, leagueID)
	}

	teamIDs := make([]int64, 0, len(l.Standings))
	nameByTeam := make(map[int64]string, len(l.Standings))
	for _, entry := range l.Standings {
		teamIDs = append(teamIDs, entry.TeamID)
		nameByTeam[entry.TeamID] = entry.TeamName
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })

	type gwTotals struct {
		totalPoints int
		overallRank int
	}
	totalsByTeam := make(map[int64]map[int]gwTotals, len(teamIDs))
	gameweeks := make(map[int]struct{})

	for _, teamID := range teamIDs {
		snaps, listErr := s.snapshotRepo.ListByTeam(ctx, teamID)
		if listErr != nil {
			s.logger.WarnContext(ctx, "snapshot listing failed, excluding team from progression", "team_id", teamID, "error", listErr)
			continue
		}
		if len(snaps) == 0 {
			continue
		}

		byGW := make(map[int]gwTotals, len(snaps))
		for _, snap := range snaps {
			byGW[snap.Gameweek] = gwTotals{
				totalPoints: snap.TotalPoints,
				overallRank: snap.OverallRank,
			}
			gameweeks[snap.Gameweek] = struct{}{}
		}
		totalsByTeam[teamID] = byGW
	}

	orderedGameweeks := make([]int, 0, len(gameweeks))
	for gw := range gameweeks {
		orderedGameweeks = append(orderedGameweeks, gw)
	}
	sort.Ints(orderedGameweeks)

	pointsByTeam := make(map[int64][]ProgressionPoint, len(totalsByTeam))
	for _, gw := range orderedGameweeks {
		type contender struct {
			teamID int64
			totals gwTotals
		}
		contenders := make([]contender, 0, len(totalsByTeam))
		for _, teamID := range teamIDs {
			totals, has := totalsByTeam[teamID][gw]
			if !has {
				continue
			}
			contenders = append(contenders, contender{teamID: teamID, totals: totals})
		}

		sort.Slice(contenders, func(i, j int) bool {
			if contenders[i].totals.totalPoints != contenders[j].totals.totalPoints {
				return contenders[i].totals.totalPoints > contenders[j].totals.totalPoints
			}
			return contenders[i].teamID < contenders[j].teamID
		})

		for rank, c := range contenders {
			pointsByTeam[c.teamID] = append(pointsByTeam[c.teamID], ProgressionPoint{
				Gameweek:    gw,
				Rank:        rank + 1,
				TotalPoints: c.totals.totalPoints,
				OverallRank: c.totals.overallRank,
			})
		}
	}

	series := ProgressionSeries{
		LeagueID: leagueID,
		Teams:    make([]TeamProgression, 0, len(pointsByTeam)),
	}
	for _, teamID := range teamIDs {
		points, has := pointsByTeam[teamID]
		if !has {
			continue
		}
		series.Teams = append(series.Teams, TeamProgression{
			TeamID:   teamID,
			TeamName: nameByTeam[teamID],
			Points:   points,
		})
	}

	return series, nil
}
