package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/usecase"
)

type Handler struct {
	syncService        *usecase.SyncService
	progressionService *usecase.ProgressionService
	squadService       *usecase.SquadService
	crestService       *usecase.CrestService
	cacheStore         *cache.Store
	dbConnected        bool
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	syncService *usecase.SyncService,
	progressionService *usecase.ProgressionService,
	squadService *usecase.SquadService,
	crestService *usecase.CrestService,
	cacheStore *cache.Store,
	dbConnected bool,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:        syncService,
		progressionService: progressionService,
		squadService:       squadService,
		crestService:       crestService,
		cacheStore:         cacheStore,
		dbConnected:        dbConnected,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	storage := "memory"
	if h.dbConnected {
		storage = "postgres"
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"status":  "ok",
		"cache":   h.cacheStore.Backend(ctx),
		"storage": storage,
	})
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.syncService.SyncLeagueData(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetLeagueProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueProgression")
	defer span.End()

	leagueID, err := pathID(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	series, err := h.progressionService.GetGameweekRankProgression(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "league progression failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, series)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.syncService.GetOrCreateTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, item)
}

func (h *Handler) GetTeamLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamLeagues")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	memberships, err := h.syncService.GetTeamLeagues(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team leagues failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, memberships)
}

func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchTeams")
	defer span.End()

	query := r.URL.Query().Get("q")
	teams, err := h.syncService.SearchTeams(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "search teams failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) GetTeamHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamHistory")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rounds, err := h.squadService.ManagerSeason(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team history failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]historyRoundDTO, 0, len(rounds))
	for _, round := range rounds {
		items = append(items, historyRoundDTO{
			Gameweek:      round.Event,
			Points:        round.Points,
			TotalPoints:   round.TotalPoints,
			OverallRank:   round.OverallRank,
			TransfersCost: round.EventTransfersCost,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGameweekSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekSnapshot")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gw, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snap, err := h.syncService.SyncGameweekData(ctx, teamID, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "sync gameweek failed", "team_id", teamID, "gw", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snap)
}

func (h *Handler) GetGameweekSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekSquad")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gw, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	view, err := h.squadService.GetSquadAnalysis(ctx, teamID, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "squad analysis failed", "team_id", teamID, "gw", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, view)
}

func (h *Handler) GetPhases(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPhases")
	defer span.End()

	phases, err := h.syncService.Phases(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get phases failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, phases)
}

func (h *Handler) GetGameweekFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekFixtures")
	defer span.End()

	gw, err := pathGameweek(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtures, err := h.syncService.GameweekFixtures(ctx, gw)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixtures failed", "gw", gw, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureDTO{
			ID:         f.ID,
			Gameweek:   f.Event,
			KickoffAt:  f.KickoffAt,
			HomeTeamID: f.HomeTeamID,
			AwayTeamID: f.AwayTeamID,
			HomeScore:  f.HomeScore,
			AwayScore:  f.AwayScore,
			Started:    f.Started,
			Finished:   f.Finished,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type crestBatchRequest struct {
	Names     []string `json:"names" validate:"required,min=1,dive,required"`
	UseCache  *bool    `json:"use_cache"`
	BatchSize int      `json:"batch_size" validate:"omitempty,gte=1,lte=64"`
}

type crestBatchItemDTO struct {
	SVG    string `json:"svg,omitempty"`
	Cached bool   `json:"cached,omitempty"`
	Error  string `json:"error,omitempty"`
}

type fixtureDTO struct {
	ID         int64     `json:"id"`
	Gameweek   int       `json:"gameweek"`
	KickoffAt  time.Time `json:"kickoff_at"`
	HomeTeamID int64     `json:"home_team_id"`
	AwayTeamID int64     `json:"away_team_id"`
	HomeScore  *int      `json:"home_score,omitempty"`
	AwayScore  *int      `json:"away_score,omitempty"`
	Started    bool      `json:"started"`
	Finished   bool      `json:"finished"`
}

type historyRoundDTO struct {
	Gameweek      int `json:"gameweek"`
	Points        int `json:"points"`
	TotalPoints   int `json:"total_points"`
	OverallRank   int `json:"overall_rank"`
	TransfersCost int `json:"transfers_cost"`
}

func (h *Handler) GenerateCrests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateCrests")
	defer span.End()

	var req crestBatchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}
	results, err := h.crestService.GenerateForAllTeams(ctx, req.Names, usecase.CrestOptions{
		UseCache:  useCache,
		BatchSize: req.BatchSize,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "crest batch failed", "names", len(req.Names), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make(map[string]crestBatchItemDTO, len(results))
	for name, result := range results {
		if !result.OK {
			items[name] = crestBatchItemDTO{Error: result.Err.Error()}
			continue
		}
		items[name] = crestBatchItemDTO{
			SVG:    result.Value.SVG,
			Cached: result.Value.Cached,
		}
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func pathGameweek(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PathValue("gw"))
	gw, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: gw must be an integer", usecase.ErrInvalidInput)
	}
	return gw, nil
}
