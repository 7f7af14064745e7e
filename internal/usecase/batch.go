package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// BatchResult is the outcome of one batch item. Exactly one result is
// produced per distinct input item; a failed item carries its error and
// never aborts the rest of the batch.
type BatchResult[T any] struct {
	OK    bool
	Value T
	Err   error
}

// RunBatch executes worker for every distinct item over a bounded ants
// pool. Duplicate items collapse to a single execution.
func RunBatch[T any](ctx context.Context, items []string, concurrency int, worker func(context.Context, string) (T, error)) (map[string]BatchResult[T], error) {
	if worker == nil {
		return nil, fmt.Errorf("%w: batch worker is required", ErrInvalidInput)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	distinct := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		distinct = append(distinct, item)
	}

	results := make(map[string]BatchResult[T], len(distinct))
	if len(distinct) == 0 {
		return results, nil
	}

	workerPool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("create batch pool: %w", err)
	}
	defer workerPool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range distinct {
		item := item
		wg.Add(1)
		submitErr := workerPool.Submit(func() {
			defer wg.Done()

			value, workErr := worker(ctx, item)
			mu.Lock()
			if workErr != nil {
				results[item] = BatchResult[T]{Err: workErr}
			} else {
				results[item] = BatchResult[T]{OK: true, Value: value}
			}
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			results[item] = BatchResult[T]{Err: fmt.Errorf("submit batch item: %w", submitErr)}
			mu.Unlock()
		}
	}

	wg.Wait()
	return results, nil
}
