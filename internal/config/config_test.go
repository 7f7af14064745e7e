package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fplstats/minileague/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDev, cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, logging.LevelInfo, cfg.LogLevel)
	require.Empty(t, cfg.DBURL)
	require.Equal(t, 2*time.Second, cfg.CacheConnectTimeout)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
	require.Equal(t, time.Minute, cfg.CacheTTLLive)
	require.Equal(t, 10*time.Second, cfg.FantasyTimeout)
	require.Equal(t, 2, cfg.FantasyMaxRetries)
	require.True(t, cfg.FantasyCircuitEnabled)
	require.Equal(t, 10, cfg.LeagueStandingsMaxPages)
	require.Equal(t, 10, cfg.CrestBatchSize)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_ADDR", ":9000")
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("DB_URL", "postgres://app:secret@db:5432/minileague")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("CACHE_TTL_LIVE", "5s")
	t.Setenv("FPL_MAX_RETRIES", "0")
	t.Setenv("LEAGUE_STANDINGS_MAX_PAGES", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvProd, cfg.AppEnv)
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, logging.LevelDebug, cfg.LogLevel)
	require.Equal(t, "postgres://app:secret@db:5432/minileague", cfg.DBURL)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 5*time.Second, cfg.CacheTTLLive)
	require.Zero(t, cfg.FantasyMaxRetries)
	require.Equal(t, 3, cfg.LeagueStandingsMaxPages)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "qa")

	_, err := Load()
	require.ErrorContains(t, err, "invalid APP_ENV")
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "0s")

	_, err := Load()
	require.ErrorContains(t, err, "CACHE_TTL must be > 0")
}

func TestLoadRequiresUptraceDSNWhenEnabled(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")

	_, err := Load()
	require.ErrorContains(t, err, "UPTRACE_DSN is required")
}

func TestLoadRejectsOutOfRangeCrestBatchSize(t *testing.T) {
	t.Setenv("CREST_BATCH_SIZE", "100")

	_, err := Load()
	require.ErrorContains(t, err, "CREST_BATCH_SIZE must be between 1 and 64")
}
