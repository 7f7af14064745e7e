package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fplstats/minileague/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	LogLevel           logging.Level
	CORSAllowedOrigins []string

	// DBURL is optional; when empty the service keeps synced data in
	// process memory only.
	DBURL string

	CacheRedisURL       string
	CacheConnectTimeout time.Duration
	CacheTTL            time.Duration
	CacheTTLLive        time.Duration

	FantasyBaseURL               string
	FantasyTimeout               time.Duration
	FantasyMaxRetries            int
	FantasyCircuitEnabled        bool
	FantasyCircuitFailureCount   int
	FantasyCircuitOpenTimeout    time.Duration
	FantasyCircuitHalfOpenMaxReq int

	LeagueStandingsMaxPages int
	CrestBatchSize          int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cacheConnectTimeout, err := time.ParseDuration(getEnv("CACHE_CONNECT_TIMEOUT", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_CONNECT_TIMEOUT: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cacheTTLLive, err := time.ParseDuration(getEnv("CACHE_TTL_LIVE", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL_LIVE: %w", err)
	}
	if cacheTTLLive <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL_LIVE must be > 0")
	}

	fantasyTimeout, err := time.ParseDuration(getEnv("FPL_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_TIMEOUT: %w", err)
	}
	if fantasyTimeout <= 0 {
		return Config{}, fmt.Errorf("FPL_TIMEOUT must be > 0")
	}
	fantasyMaxRetries, err := getEnvAsInt("FPL_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_MAX_RETRIES: %w", err)
	}
	if fantasyMaxRetries < 0 {
		return Config{}, fmt.Errorf("FPL_MAX_RETRIES must be >= 0")
	}

	fantasyCircuitEnabled, err := strconv.ParseBool(getEnv("FPL_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_ENABLED: %w", err)
	}
	fantasyCircuitFailureCount, err := getEnvAsInt("FPL_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	fantasyCircuitOpenTimeout, err := time.ParseDuration(getEnv("FPL_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	fantasyCircuitHalfOpenMaxReq, err := getEnvAsInt("FPL_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FPL_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}

	leagueStandingsMaxPages, err := getEnvAsInt("LEAGUE_STANDINGS_MAX_PAGES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse LEAGUE_STANDINGS_MAX_PAGES: %w", err)
	}
	if leagueStandingsMaxPages < 1 {
		return Config{}, fmt.Errorf("LEAGUE_STANDINGS_MAX_PAGES must be >= 1")
	}
	crestBatchSize, err := getEnvAsInt("CREST_BATCH_SIZE", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse CREST_BATCH_SIZE: %w", err)
	}
	if crestBatchSize < 1 || crestBatchSize > 64 {
		return Config{}, fmt.Errorf("CREST_BATCH_SIZE must be between 1 and 64")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}

	serviceName := getEnv("SERVICE_NAME", "minileague")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_ADDR", ":8080"),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		DBURL: strings.TrimSpace(getEnv("DB_URL", "")),

		CacheRedisURL:       strings.TrimSpace(getEnv("CACHE_REDIS_URL", "")),
		CacheConnectTimeout: cacheConnectTimeout,
		CacheTTL:            cacheTTL,
		CacheTTLLive:        cacheTTLLive,

		FantasyBaseURL:               getEnv("FPL_BASE_URL", ""),
		FantasyTimeout:               fantasyTimeout,
		FantasyMaxRetries:            fantasyMaxRetries,
		FantasyCircuitEnabled:        fantasyCircuitEnabled,
		FantasyCircuitFailureCount:   fantasyCircuitFailureCount,
		FantasyCircuitOpenTimeout:    fantasyCircuitOpenTimeout,
		FantasyCircuitHalfOpenMaxReq: fantasyCircuitHalfOpenMaxReq,

		LeagueStandingsMaxPages: leagueStandingsMaxPages,
		CrestBatchSize:          crestBatchSize,

		PprofEnabled: pprofEnabled,
		PprofAddr:    getEnv("PPROF_ADDR", ":6060"),

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:       pyroscopeEnabled,
		PyroscopeServerAddress: pyroscopeServerAddress,
		PyroscopeAppName:       getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:     getEnv("PYROSCOPE_AUTH_TOKEN", ""),
	}, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
