package cache

import (
	"context"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/minileague/internal/platform/logging"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type Config struct {
	RedisURL       string
	ConnectTimeout time.Duration
	Logger         *logging.Logger
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a TTL key/value cache. Values are sonic-serialized so the
// in-process map and the optional Redis backend share one representation.
// Backend errors are logged and the call degrades to the local map; a
// cache failure never surfaces to callers.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	logger         *logging.Logger
	redisURL       string
	connectTimeout time.Duration

	connectOnce sync.Once
	redis       redisBackend
}

func NewStore(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}

	return &Store{
		entries:        make(map[string]entry),
		logger:         logger,
		redisURL:       cfg.RedisURL,
		connectTimeout: connectTimeout,
	}
}

// Get decodes the cached value for key into dst and reports whether a
// live entry was found. Expired entries behave as absent.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	if key == "" || dst == nil {
		return false
	}

	if backend := s.backend(ctx); backend != nil {
		raw, found, err := backend.Get(ctx, key)
		if err == nil {
			if !found {
				return false
			}
			if decodeErr := sonic.Unmarshal(raw, dst); decodeErr != nil {
				s.logger.WarnContext(ctx, "cache decode failed, dropping entry", "key", key, "error", decodeErr)
				s.Delete(ctx, key)
				return false
			}
			return true
		}
		s.logger.WarnContext(ctx, "cache backend get failed, falling back to memory", "key", key, "error", err)
	}

	now := time.Now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if !e.expiresAt.IsZero() && !e.expiresAt.After(now) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return false
	}

	if err := sonic.Unmarshal(e.value, dst); err != nil {
		s.logger.WarnContext(ctx, "cache decode failed, dropping entry", "key", key, "error", err)
		s.Delete(ctx, key)
		return false
	}
	return true
}

// Set stores value under key. A ttl <= 0 keeps the entry until it is
// deleted or replaced.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if key == "" {
		return
	}

	raw, err := sonic.Marshal(value)
	if err != nil {
		s.logger.WarnContext(ctx, "cache encode failed, skipping set", "key", key, "error", err)
		return
	}

	if backend := s.backend(ctx); backend != nil {
		err := backend.Set(ctx, key, raw, ttl)
		if err == nil {
			return
		}
		s.logger.WarnContext(ctx, "cache backend set failed, falling back to memory", "key", key, "error", err)
	}

	expiresAt := time.Time{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     raw,
		expiresAt: expiresAt,
	}
	s.mu.Unlock()
}

func (s *Store) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}

	if backend := s.backend(ctx); backend != nil {
		if err := backend.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "cache backend delete failed", "key", key, "error", err)
		}
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Backend reports which backend currently serves the store.
func (s *Store) Backend(ctx context.Context) string {
	if s.backend(ctx) != nil {
		return BackendRedis
	}
	return BackendMemory
}

func (s *Store) backend(ctx context.Context) redisBackend {
	if s.redisURL == "" {
		return nil
	}

	s.connectOnce.Do(func() {
		backend, err := connectRedis(ctx, s.redisURL, s.connectTimeout)
		if err != nil {
			s.logger.WarnContext(ctx, "redis unavailable, serving cache from memory", "error", err)
			return
		}
		s.logger.InfoContext(ctx, "cache backed by redis")
		s.redis = backend
	})

	return s.redis
}
