package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlightDoCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	start := make(chan struct{})
	release := make(chan struct{})

	const callers = 50
	results := make([]any, callers)
	shared := make([]bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			val, err, wasShared := flight.Do("standings", func() (any, error) {
				executions.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				t.Errorf("caller %d: unexpected error: %v", idx, err)
			}
			results[idx] = val
			shared[idx] = wasShared
		}(i)
	}

	close(start)
	close(release)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("producer executed %d times, want 1", got)
	}
	sharedCount := 0
	for idx, val := range results {
		if val != 42 {
			t.Fatalf("caller %d got %v, want 42", idx, val)
		}
		if shared[idx] {
			sharedCount++
		}
	}
	if sharedCount != callers-1 {
		t.Fatalf("shared count = %d, want %d", sharedCount, callers-1)
	}
}

func TestSingleFlightDoPropagatesFailureToJoiners(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	wantErr := errors.New("upstream down")

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err, _ := flight.Do("league:1", func() (any, error) {
				return nil, wantErr
			})
			if !errors.Is(err, wantErr) {
				t.Errorf("got error %v, want %v", err, wantErr)
			}
		}()
	}

	close(start)
	wg.Wait()
}

func TestSingleFlightClearsKeyAfterCompletion(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	for i := 0; i < 3; i++ {
		_, err, shared := flight.Do("team:7", func() (any, error) {
			executions.Add(1)
			return i, nil
		})
		if err != nil {
			t.Fatalf("round %d: unexpected error: %v", i, err)
		}
		if shared {
			t.Fatalf("round %d: sequential call reported shared result", i)
		}
	}

	if got := executions.Load(); got != 3 {
		t.Fatalf("producer executed %d times, want 3", got)
	}
}

func TestSingleFlightIsolatesDistinctKeys(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var executions atomic.Int32

	release := make(chan struct{})
	var wg sync.WaitGroup
	for _, key := range []string{"gw:1:10", "gw:2:10"} {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			_, _, _ = flight.Do(k, func() (any, error) {
				executions.Add(1)
				<-release
				return k, nil
			})
		}(key)
	}

	close(release)
	wg.Wait()

	if got := executions.Load(); got != 2 {
		t.Fatalf("producer executed %d times, want 2", got)
	}
}
