package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
)

type stubRenderer struct {
	calls atomic.Int32
	fn    func(teamName string) (string, error)
}

func (r *stubRenderer) Render(_ context.Context, teamName string) (string, error) {
	r.calls.Add(1)
	if r.fn != nil {
		return r.fn(teamName)
	}
	return "<svg>" + teamName + "</svg>", nil
}

func TestGenerateForAllTeamsReusesCache(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{}
	service := NewCrestService(renderer, cache.NewStore(cache.Config{}), 10, logging.NewNop())
	ctx := context.Background()
	opts := CrestOptions{UseCache: true}

	first, err := service.GenerateForAllTeams(ctx, []string{"Castle FC"}, opts)
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if first["Castle FC"].Value.Cached {
		t.Fatal("first render reported as cached")
	}

	second, err := service.GenerateForAllTeams(ctx, []string{"Castle FC"}, opts)
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}
	if !second["Castle FC"].Value.Cached {
		t.Fatal("second render should come from cache")
	}
	if got := renderer.calls.Load(); got != 1 {
		t.Fatalf("renderer called %d times, want 1", got)
	}
}

func TestGenerateForAllTeamsBypassesCacheWhenDisabled(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{}
	service := NewCrestService(renderer, cache.NewStore(cache.Config{}), 10, logging.NewNop())
	ctx := context.Background()
	opts := CrestOptions{UseCache: false}

	for i := 0; i < 2; i++ {
		if _, err := service.GenerateForAllTeams(ctx, []string{"Castle FC"}, opts); err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}
	if got := renderer.calls.Load(); got != 2 {
		t.Fatalf("renderer called %d times, want 2", got)
	}
}

func TestGenerateForAllTeamsIsolatesRenderFailures(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{fn: func(teamName string) (string, error) {
		if teamName == "Broken FC" {
			return "", errors.New("glyph overflow")
		}
		return "<svg/>", nil
	}}
	service := NewCrestService(renderer, cache.NewStore(cache.Config{}), 10, logging.NewNop())

	results, err := service.GenerateForAllTeams(context.Background(), []string{"Castle FC", "Broken FC"}, CrestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !results["Castle FC"].OK {
		t.Fatalf("Castle FC = %+v", results["Castle FC"])
	}
	if results["Broken FC"].OK || results["Broken FC"].Err == nil {
		t.Fatalf("Broken FC = %+v", results["Broken FC"])
	}
}

func TestGenerateForAllTeamsRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	service := NewCrestService(&stubRenderer{}, cache.NewStore(cache.Config{}), 10, logging.NewNop())

	if _, err := service.GenerateForAllTeams(context.Background(), []string{" ", ""}, CrestOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
