package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fplstats/minileague/external/crest"
	"github.com/fplstats/minileague/external/fpl"
	"github.com/fplstats/minileague/internal/config"
	"github.com/fplstats/minileague/internal/domain/gameweek"
	"github.com/fplstats/minileague/internal/domain/league"
	"github.com/fplstats/minileague/internal/domain/team"
	"github.com/fplstats/minileague/internal/infrastructure/repository/memory"
	"github.com/fplstats/minileague/internal/infrastructure/repository/postgres"
	"github.com/fplstats/minileague/internal/interfaces/httpapi"
	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/platform/resilience"
	"github.com/fplstats/minileague/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store := cache.NewStore(cache.Config{
		RedisURL:       cfg.CacheRedisURL,
		ConnectTimeout: cfg.CacheConnectTimeout,
		Logger:         logger,
	})

	gateway := fpl.NewClient(fpl.ClientConfig{
		BaseURL:    cfg.FantasyBaseURL,
		Timeout:    cfg.FantasyTimeout,
		MaxRetries: cfg.FantasyMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FantasyCircuitEnabled,
			FailureThreshold: cfg.FantasyCircuitFailureCount,
			OpenTimeout:      cfg.FantasyCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FantasyCircuitHalfOpenMaxReq,
		},
	})

	var (
		leagueRepo   league.Repository
		teamRepo     team.Repository
		snapshotRepo gameweek.Repository
		dbConnected  bool
	)
	if cfg.DBURL != "" {
		db, err := openDB(cfg.DBURL)
		if err != nil {
			return nil, err
		}
		leagueRepo = postgres.NewLeagueRepository(db)
		teamRepo = postgres.NewTeamRepository(db)
		snapshotRepo = postgres.NewSnapshotRepository(db)
		dbConnected = true
		logger.Info("storage backed by postgres", "database", dbNameFromURL(cfg.DBURL))
	} else {
		leagueRepo = memory.NewLeagueRepository()
		teamRepo = memory.NewTeamRepository()
		snapshotRepo = memory.NewSnapshotRepository()
		logger.Info("storage backed by memory", "reason", "DB_URL empty")
	}

	syncService := usecase.NewSyncService(gateway, leagueRepo, teamRepo, snapshotRepo, store, usecase.SyncConfig{
		TTL:               cfg.CacheTTL,
		LiveTTL:           cfg.CacheTTLLive,
		StandingsMaxPages: cfg.LeagueStandingsMaxPages,
	}, logger)
	progressionService := usecase.NewProgressionService(leagueRepo, snapshotRepo, logger)
	squadService := usecase.NewSquadService(syncService, snapshotRepo, logger)
	crestService := usecase.NewCrestService(crest.NewRenderer(), store, cfg.CrestBatchSize, logger)

	handler := httpapi.NewHandler(
		syncService,
		progressionService,
		squadService,
		crestService,
		store,
		dbConnected,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
