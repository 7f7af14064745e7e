package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
)

const crestCacheTTL = 24 * time.Hour

// CrestRenderer produces a crest image for a team name.
type CrestRenderer interface {
	Render(ctx context.Context, teamName string) (string, error)
}

type CrestOptions struct {
	UseCache  bool
	BatchSize int
}

type CrestResult struct {
	SVG    string `json:"svg"`
	Cached bool   `json:"cached"`
}

// CrestService generates crests for a set of team names with cache-aside
// reuse and bounded batch concurrency.
type CrestService struct {
	renderer         CrestRenderer
	cache            *cache.Store
	logger           *logging.Logger
	defaultBatchSize int
}

func NewCrestService(renderer CrestRenderer, cacheStore *cache.Store, defaultBatchSize int, logger *logging.Logger) *CrestService {
	if logger == nil {
		logger = logging.Default()
	}
	if defaultBatchSize < 1 {
		defaultBatchSize = 10
	}

	return &CrestService{
		renderer:         renderer,
		cache:            cacheStore,
		logger:           logger,
		defaultBatchSize: defaultBatchSize,
	}
}

func crestCacheKey(teamName string) string {
	return "crest:" + strings.ToLower(strings.TrimSpace(teamName))
}

// GenerateForAllTeams renders a crest per distinct team name. One
// name's failure never aborts the rest of the batch.
func (s *CrestService) GenerateForAllTeams(ctx context.Context, names []string, opts CrestOptions) (map[string]BatchResult[CrestResult], error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CrestService.GenerateForAllTeams")
	defer span.End()

	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one team name is required", ErrInvalidInput)
	}

	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = s.defaultBatchSize
	}

	return RunBatch(ctx, cleaned, batchSize, func(ctx context.Context, name string) (CrestResult, error) {
		key := crestCacheKey(name)
		if opts.UseCache {
			var cachedSVG string
			if s.cache.Get(ctx, key, &cachedSVG) {
				return CrestResult{SVG: cachedSVG, Cached: true}, nil
			}
		}

		svg, err := s.renderer.Render(ctx, name)
		if err != nil {
			return CrestResult{}, fmt.Errorf("render crest for %q: %w", name, err)
		}
		s.cache.Set(ctx, key, svg, crestCacheTTL)

		return CrestResult{SVG: svg}, nil
	})
}
