package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestRunBatchIsolatesFailures(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("render failed")
	results, err := RunBatch(context.Background(), []string{"A", "B", "C"}, 2, func(_ context.Context, item string) (string, error) {
		if item == "B" {
			return "", wantErr
		}
		return "crest-" + item, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results["A"].OK || results["A"].Value != "crest-A" {
		t.Fatalf("A = %+v", results["A"])
	}
	if results["B"].OK || !errors.Is(results["B"].Err, wantErr) {
		t.Fatalf("B = %+v", results["B"])
	}
	if !results["C"].OK || results["C"].Value != "crest-C" {
		t.Fatalf("C = %+v", results["C"])
	}
}

func TestRunBatchCollapsesDuplicates(t *testing.T) {
	t.Parallel()

	var executions atomic.Int32
	results, err := RunBatch(context.Background(), []string{"A", "A", "A"}, 4, func(_ context.Context, item string) (string, error) {
		executions.Add(1)
		return item, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := executions.Load(); got != 1 {
		t.Fatalf("worker executed %d times, want 1", got)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
}

func TestRunBatchBoundsConcurrency(t *testing.T) {
	t.Parallel()

	var inFlight atomic.Int32
	var peak atomic.Int32

	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("team-%d", i)
	}

	_, err := RunBatch(context.Background(), items, 3, func(_ context.Context, item string) (string, error) {
		current := inFlight.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		defer inFlight.Add(-1)
		return item, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := peak.Load(); got > 3 {
		t.Fatalf("peak concurrency = %d, want <= 3", got)
	}
}

func TestRunBatchEmptyInput(t *testing.T) {
	t.Parallel()

	results, err := RunBatch(context.Background(), nil, 4, func(_ context.Context, item string) (string, error) {
		return item, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
}

func TestRunBatchRequiresWorker(t *testing.T) {
	t.Parallel()

	if _, err := RunBatch[string](context.Background(), []string{"A"}, 1, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
