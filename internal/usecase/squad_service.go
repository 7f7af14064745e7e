package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fplstats/minileague/internal/domain/gameweek"
	"github.com/fplstats/minileague/internal/platform/logging"
)

type SquadView struct {
	TeamID        int64           `json:"team_id"`
	Gameweek      int             `json:"gameweek"`
	Starting      []gameweek.Pick `json:"starting"`
	Bench         []gameweek.Pick `json:"bench"`
	CaptainID     int64           `json:"captain_id"`
	ViceCaptainID int64           `json:"vice_captain_id"`
	LivePoints    int             `json:"live_points"`
	TotalPoints   int             `json:"total_points"`
	TransfersCost int             `json:"transfers_cost"`
	PlayersIn     []int64         `json:"players_in,omitempty"`
	PlayersOut    []int64         `json:"players_out,omitempty"`
	CaptainMoved  bool            `json:"captain_moved"`
	Transfers     []TransferView  `json:"transfers,omitempty"`
	Stale         bool            `json:"stale,omitempty"`
}

type TransferView struct {
	PlayerIn  int64 `json:"player_in"`
	PlayerOut int64 `json:"player_out"`
}

// SquadService turns gameweek snapshots into a squad view with deltas
// against the previous stored gameweek.
type SquadService struct {
	sync         *SyncService
	snapshotRepo gameweek.Repository
	logger       *logging.Logger
}

func NewSquadService(syncService *SyncService, snapshotRepo gameweek.Repository, logger *logging.Logger) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SquadService{
		sync:         syncService,
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

func (s *SquadService) GetSquadAnalysis(ctx context.Context, teamID int64, gw int) (SquadView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.GetSquadAnalysis")
	defer span.End()

	snap, err := s.sync.SyncGameweekData(ctx, teamID, gw)
	if err != nil {
		return SquadView{}, err
	}

	view := SquadView{
		TeamID:        snap.TeamID,
		Gameweek:      snap.Gameweek,
		Starting:      make([]gameweek.Pick, 0, 11),
		Bench:         make([]gameweek.Pick, 0, 4),
		LivePoints:    snap.LivePoints,
		TotalPoints:   snap.TotalPoints,
		TransfersCost: snap.TransfersCost,
		Stale:         snap.Stale,
	}

	for _, pick := range snap.Picks {
		if pick.IsCaptain {
			view.CaptainID = pick.PlayerID
		}
		if pick.IsViceCaptain {
			view.ViceCaptainID = pick.PlayerID
		}
		if pick.OnBench() {
			view.Bench = append(view.Bench, pick)
		} else {
			view.Starting = append(view.Starting, pick)
		}
	}

	transfers, transfersErr := s.sync.gateway.GetManagerTransfers(ctx, teamID)
	if transfersErr != nil {
		s.logger.WarnContext(ctx, "transfers unavailable, omitting from squad view", "team_id", teamID, "error", transfersErr)
	}
	for _, tr := range transfers {
		if tr.Event != gw {
			continue
		}
		view.Transfers = append(view.Transfers, TransferView{
			PlayerIn:  tr.PlayerIn,
			PlayerOut: tr.PlayerOut,
		})
	}

	if gw > 1 {
		prev, ok, prevErr := s.snapshotRepo.Get(ctx, teamID, gw-1)
		if prevErr != nil {
			s.logger.WarnContext(ctx, "previous snapshot unavailable, skipping deltas", "team_id", teamID, "gameweek", gw-1, "error", prevErr)
		} else if ok {
			view.PlayersIn, view.PlayersOut = pickDeltas(prev.Picks, snap.Picks)
			view.CaptainMoved = captainOf(prev.Picks) != view.CaptainID
		}
	}

	return view, nil
}

func pickDeltas(prev, current []gameweek.Pick) (in []int64, out []int64) {
	prevSet := make(map[int64]struct{}, len(prev))
	for _, p := range prev {
		prevSet[p.PlayerID] = struct{}{}
	}
	currentSet := make(map[int64]struct{}, len(current))
	for _, p := range current {
		currentSet[p.PlayerID] = struct{}{}
	}

	for id := range currentSet {
		if _, kept := prevSet[id]; !kept {
			in = append(in, id)
		}
	}
	for id := range prevSet {
		if _, kept := currentSet[id]; !kept {
			out = append(out, id)
		}
	}

	sort.Slice(in, func(i, j int) bool { return in[i] < in[j] })
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return in, out
}

func captainOf(picks []gameweek.Pick) int64 {
	for _, p := range picks {
		if p.IsCaptain {
			return p.PlayerID
		}
	}
	return 0
}

// ManagerSeason reports a team's round-by-round season history straight
// from the upstream history endpoint.
func (s *SquadService) ManagerSeason(ctx context.Context, teamID int64) ([]ExternalHistoryRound, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.ManagerSeason")
	defer span.End()

	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	history, err := s.sync.gateway.GetManagerHistory(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetch manager history team_id=%d: %w", teamID, err)
	}
	return history.Rounds, nil
}
