package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fplstats/minileague/internal/domain/gameweek"
	"github.com/fplstats/minileague/internal/domain/league"
	"github.com/fplstats/minileague/internal/domain/phase"
	"github.com/fplstats/minileague/internal/domain/team"
	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/platform/resilience"
)

const (
	currentEventCacheKey = "event:current"
	phasesCacheKey       = "phases"

	regionEnrichmentWorkers = 8
)

type SyncConfig struct {
	// TTL applies to settled data, LiveTTL while the current gameweek
	// is in play.
	TTL               time.Duration
	LiveTTL           time.Duration
	StandingsMaxPages int
}

func normalizeSyncConfig(cfg SyncConfig) SyncConfig {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.LiveTTL <= 0 {
		cfg.LiveTTL = time.Minute
	}
	if cfg.StandingsMaxPages < 1 {
		cfg.StandingsMaxPages = 10
	}
	return cfg
}

// SyncService pulls league, team and gameweek data through the gateway
// and keeps cache and repositories consistent. Every resource moves
// through the same path: cache hit, collapsed fetch, whole-entity
// replace, write-through. When the upstream is down the last persisted
// snapshot is served marked stale.
type SyncService struct {
	gateway      Gateway
	leagueRepo   league.Repository
	teamRepo     team.Repository
	snapshotRepo gameweek.Repository
	cache        *cache.Store
	flight       resilience.SingleFlight
	logger       *logging.Logger
	cfg          SyncConfig
}

func NewSyncService(
	gateway Gateway,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	snapshotRepo gameweek.Repository,
	cacheStore *cache.Store,
	cfg SyncConfig,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SyncService{
		gateway:      gateway,
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		snapshotRepo: snapshotRepo,
		cache:        cacheStore,
		logger:       logger,
		cfg:          normalizeSyncConfig(cfg),
	}
}

func leagueCacheKey(leagueID int64) string {
	return "league:" + strconv.FormatInt(leagueID, 10)
}

func teamCacheKey(teamID int64) string {
	return "team:" + strconv.FormatInt(teamID, 10)
}

func snapshotCacheKey(teamID int64, gw int) string {
	return "gw:" + strconv.FormatInt(teamID, 10) + ":" + strconv.Itoa(gw)
}

func fixturesCacheKey(gw int) string {
	return "fixtures:" + strconv.Itoa(gw)
}

// SyncLeagueData returns fresh standings for the league, fetching at
// most once per cache window regardless of concurrent callers.
func (s *SyncService) SyncLeagueData(ctx context.Context, leagueID int64) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncLeagueData")
	defer span.End()

	if leagueID <= 0 {
		return league.League{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	key := leagueCacheKey(leagueID)
	var cached league.League
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	out, err, shared := s.flight.Do(key, func() (any, error) {
		var rechecked league.League
		if s.cache.Get(ctx, key, &rechecked) {
			return rechecked, nil
		}

		fresh, fetchErr := s.fetchLeague(ctx, leagueID)
		if fetchErr == nil {
			return fresh, nil
		}
		if errors.Is(fetchErr, ErrNotFound) || errors.Is(fetchErr, ErrInvalidInput) {
			return league.League{}, fetchErr
		}

		prev, ok, repoErr := s.leagueRepo.GetByID(ctx, leagueID)
		if repoErr != nil {
			s.logger.ErrorContext(ctx, "stale fallback read failed", "league_id", leagueID, "error", repoErr)
		}
		if ok {
			s.logger.WarnContext(ctx, "serving stale league standings", "league_id", leagueID, "error", fetchErr)
			prev.Stale = true
			return prev, nil
		}

		return league.League{}, fmt.Errorf("%w: league %d has no prior snapshot: %v", ErrUpstreamUnavailable, leagueID, fetchErr)
	})
	if err != nil {
		return league.League{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight league sync", "league_id", leagueID)
	}

	result, ok := out.(league.League)
	if !ok {
		return league.League{}, fmt.Errorf("unexpected league sync result type %T", out)
	}
	return result, nil
}

func (s *SyncService) fetchLeague(ctx context.Context, leagueID int64) (league.League, error) {
	entries := make([]league.StandingEntry, 0, 64)
	name := ""

	page := 1
	for {
		standings, err := s.gateway.GetLeagueStandings(ctx, leagueID, 0, page)
		if err != nil {
			return league.League{}, fmt.Errorf("fetch standings league_id=%d page=%d: %w", leagueID, page, err)
		}
		if name == "" {
			name = standings.LeagueName
		}

		for _, row := range standings.Rows {
			entries = append(entries, league.StandingEntry{
				TeamID:      row.EntryID,
				Rank:        row.Rank,
				LastRank:    row.LastRank,
				TotalPoints: row.Total,
				EventPoints: row.EventTotal,
				TeamName:    row.EntryName,
				ManagerName: row.ManagerName,
			})
		}

		if !standings.HasNext || page >= s.cfg.StandingsMaxPages {
			if standings.HasNext {
				s.logger.WarnContext(ctx, "standings truncated at page cap",
					"league_id", leagueID,
					"pages", page,
					"entries", len(entries),
				)
			}
			break
		}
		page++
	}

	s.enrichRegions(ctx, entries)

	fresh := league.League{
		ID:           leagueID,
		Name:         name,
		Standings:    entries,
		LastSyncedAt: time.Now().UTC(),
	}

	if err := s.leagueRepo.Replace(ctx, fresh); err != nil {
		return league.League{}, fmt.Errorf("replace league %d: %w", leagueID, err)
	}
	s.cache.Set(ctx, leagueCacheKey(leagueID), fresh, s.cacheTTL(ctx))

	return fresh, nil
}

// enrichRegions resolves each entry's manager region via the team path.
// Enrichment failures leave the region empty; they never fail the sync.
func (s *SyncService) enrichRegions(ctx context.Context, entries []league.StandingEntry) {
	if len(entries) == 0 {
		return
	}

	workers := pool.New().WithMaxGoroutines(regionEnrichmentWorkers)
	for i := range entries {
		idx := i
		workers.Go(func() {
			t, err := s.GetOrCreateTeam(ctx, entries[idx].TeamID)
			if err != nil {
				s.logger.DebugContext(ctx, "region enrichment skipped", "team_id", entries[idx].TeamID, "error", err)
				return
			}
			entries[idx].Region = t.Region
		})
	}
	workers.Wait()
}

// SyncGameweekData builds or refreshes a team's gameweek snapshot.
// Finalized snapshots are immutable and always served directly.
func (s *SyncService) SyncGameweekData(ctx context.Context, teamID int64, gw int) (gameweek.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncGameweekData")
	defer span.End()

	if teamID <= 0 {
		return gameweek.Snapshot{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}
	if gw < 1 || gw > 38 {
		return gameweek.Snapshot{}, fmt.Errorf("%w: gameweek %d out of range", ErrInvalidInput, gw)
	}

	if prev, ok, err := s.snapshotRepo.Get(ctx, teamID, gw); err == nil && ok && prev.Final {
		return prev, nil
	}

	key := snapshotCacheKey(teamID, gw)
	var cached gameweek.Snapshot
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		var rechecked gameweek.Snapshot
		if s.cache.Get(ctx, key, &rechecked) {
			return rechecked, nil
		}

		fresh, fetchErr := s.fetchSnapshot(ctx, teamID, gw)
		if fetchErr == nil {
			return fresh, nil
		}
		if errors.Is(fetchErr, ErrNotFound) || errors.Is(fetchErr, ErrInvalidInput) {
			return gameweek.Snapshot{}, fetchErr
		}

		prev, ok, repoErr := s.snapshotRepo.Get(ctx, teamID, gw)
		if repoErr != nil {
			s.logger.ErrorContext(ctx, "stale fallback read failed", "team_id", teamID, "gameweek", gw, "error", repoErr)
		}
		if ok {
			s.logger.WarnContext(ctx, "serving stale gameweek snapshot", "team_id", teamID, "gameweek", gw, "error", fetchErr)
			prev.Stale = true
			return prev, nil
		}

		return gameweek.Snapshot{}, fmt.Errorf("%w: no prior snapshot for team %d gameweek %d: %v", ErrUpstreamUnavailable, teamID, gw, fetchErr)
	})
	if err != nil {
		return gameweek.Snapshot{}, err
	}

	result, ok := out.(gameweek.Snapshot)
	if !ok {
		return gameweek.Snapshot{}, fmt.Errorf("unexpected gameweek sync result type %T", out)
	}
	return result, nil
}

func (s *SyncService) fetchSnapshot(ctx context.Context, teamID int64, gw int) (gameweek.Snapshot, error) {
	picks, err := s.gateway.GetManagerPicks(ctx, teamID, gw)
	if err != nil {
		return gameweek.Snapshot{}, fmt.Errorf("fetch picks team_id=%d gw=%d: %w", teamID, gw, err)
	}

	live, err := s.gateway.GetLiveGameweek(ctx, gw)
	if err != nil {
		return gameweek.Snapshot{}, fmt.Errorf("fetch live gw=%d: %w", gw, err)
	}

	snap := gameweek.Snapshot{
		TeamID:        teamID,
		Gameweek:      gw,
		Picks:         make([]gameweek.Pick, 0, len(picks.Picks)),
		TotalPoints:   picks.TotalPoints,
		OverallRank:   picks.OverallRank,
		TransfersCost: picks.EventTransfersCost,
		SyncedAt:      time.Now().UTC(),
	}

	livePoints := 0
	for _, p := range picks.Picks {
		snap.Picks = append(snap.Picks, gameweek.Pick{
			PlayerID:      p.PlayerID,
			Position:      p.Position,
			Multiplier:    p.Multiplier,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
		if p.Multiplier > 0 {
			livePoints += live.PointsFor(p.PlayerID) * p.Multiplier
		}
	}
	snap.LivePoints = livePoints

	current, err := s.currentGameweek(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "current gameweek unavailable, snapshot left open", "gameweek", gw, "error", err)
	} else {
		snap.Final = gw < current.ID || (gw == current.ID && current.Finished && current.DataChecked)
	}

	if err := s.snapshotRepo.Upsert(ctx, snap); err != nil {
		return gameweek.Snapshot{}, fmt.Errorf("upsert snapshot team_id=%d gw=%d: %w", teamID, gw, err)
	}

	ttl := s.cacheTTL(ctx)
	if snap.Final {
		// Final snapshots never change; keep them until evicted.
		ttl = 0
	}
	s.cache.Set(ctx, snapshotCacheKey(teamID, gw), snap, ttl)

	return snap, nil
}

// GetOrCreateTeam returns the persisted team or fetches the manager
// entry once. Repeated calls are idempotent.
func (s *SyncService) GetOrCreateTeam(ctx context.Context, teamID int64) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.GetOrCreateTeam")
	defer span.End()

	if teamID <= 0 {
		return team.Team{}, fmt.Errorf("%w: team id must be greater than zero", ErrInvalidInput)
	}

	if existing, ok, err := s.teamRepo.GetByID(ctx, teamID); err == nil && ok {
		return existing, nil
	}

	key := teamCacheKey(teamID)
	out, err, _ := s.flight.Do(key, func() (any, error) {
		if existing, ok, repoErr := s.teamRepo.GetByID(ctx, teamID); repoErr == nil && ok {
			return existing, nil
		}

		entry, fetchErr := s.gateway.GetManagerEntry(ctx, teamID)
		if fetchErr != nil {
			return team.Team{}, fmt.Errorf("fetch manager entry team_id=%d: %w", teamID, fetchErr)
		}

		leagues := make([]team.LeagueMembership, 0, len(entry.ClassicLeagues))
		for _, l := range entry.ClassicLeagues {
			leagues = append(leagues, team.LeagueMembership{
				LeagueID: l.ID,
				Name:     l.Name,
				Rank:     l.EntryRank,
			})
		}

		fresh := team.Team{
			ID:             entry.ID,
			Name:           entry.TeamName,
			ManagerName:    entry.ManagerName,
			Region:         entry.Region,
			OverallPoints:  entry.OverallPoints,
			OverallRank:    entry.OverallRank,
			ClassicLeagues: leagues,
			LastSyncedAt:   time.Now().UTC(),
		}

		if upsertErr := s.teamRepo.Upsert(ctx, fresh); upsertErr != nil {
			return team.Team{}, fmt.Errorf("upsert team %d: %w", teamID, upsertErr)
		}
		s.cache.Set(ctx, key, fresh, s.cfg.TTL)

		return fresh, nil
	})
	if err != nil {
		return team.Team{}, err
	}

	result, ok := out.(team.Team)
	if !ok {
		return team.Team{}, fmt.Errorf("unexpected team sync result type %T", out)
	}
	return result, nil
}

// GetTeamLeagues lists the classic leagues on a manager's profile.
func (s *SyncService) GetTeamLeagues(ctx context.Context, teamID int64) ([]team.LeagueMembership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.GetTeamLeagues")
	defer span.End()

	t, err := s.GetOrCreateTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	return append([]team.LeagueMembership(nil), t.ClassicLeagues...), nil
}

// SearchTeams delegates a free-text manager search upstream. Results
// are neither cached nor persisted.
func (s *SyncService) SearchTeams(ctx context.Context, query string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SearchTeams")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", ErrInvalidInput)
	}

	rows, err := s.gateway.SearchEntries(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search entries %q: %w", query, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			ID:          row.EntryID,
			Name:        row.EntryName,
			ManagerName: row.ManagerName,
			Region:      row.Region,
		})
	}
	return out, nil
}

// Phases returns the bootstrap phase windows, refreshed with bootstrap
// cadence.
func (s *SyncService) Phases(ctx context.Context) ([]phase.Phase, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Phases")
	defer span.End()

	var cached []phase.Phase
	if s.cache.Get(ctx, phasesCacheKey, &cached) {
		return cached, nil
	}

	bootstrap, err := s.gateway.GetBootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bootstrap: %w", err)
	}

	out := make([]phase.Phase, 0, len(bootstrap.Phases))
	for _, p := range bootstrap.Phases {
		out = append(out, phase.Phase{
			ID:         p.ID,
			Name:       p.Name,
			StartEvent: p.StartEvent,
			StopEvent:  p.StopEvent,
		})
	}
	s.cache.Set(ctx, phasesCacheKey, out, s.cfg.TTL)

	return out, nil
}

// GameweekFixtures returns the fixture list for one gameweek, cached with
// the same live/settled TTL split as snapshots.
func (s *SyncService) GameweekFixtures(ctx context.Context, gw int) ([]ExternalFixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.GameweekFixtures")
	defer span.End()

	if gw < 1 || gw > 38 {
		return nil, fmt.Errorf("%w: gameweek %d out of range", ErrInvalidInput, gw)
	}

	key := fixturesCacheKey(gw)
	var cached []ExternalFixture
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	fixtures, err := s.gateway.GetFixtures(ctx, gw)
	if err != nil {
		return nil, fmt.Errorf("fetch fixtures gw=%d: %w", gw, err)
	}
	s.cache.Set(ctx, key, fixtures, s.cacheTTL(ctx))

	return fixtures, nil
}

func (s *SyncService) currentGameweek(ctx context.Context) (ExternalEvent, error) {
	var cached ExternalEvent
	if s.cache.Get(ctx, currentEventCacheKey, &cached) {
		return cached, nil
	}

	current, err := s.gateway.GetCurrentGameweek(ctx)
	if err != nil {
		return ExternalEvent{}, err
	}
	s.cache.Set(ctx, currentEventCacheKey, current, s.cfg.LiveTTL)

	return current, nil
}

// cacheTTL picks the live TTL while the current gameweek is still in
// play, the settled TTL otherwise.
func (s *SyncService) cacheTTL(ctx context.Context) time.Duration {
	current, err := s.currentGameweek(ctx)
	if err != nil {
		return s.cfg.LiveTTL
	}
	if current.Finished && current.DataChecked {
		return s.cfg.TTL
	}
	return s.cfg.LiveTTL
}
