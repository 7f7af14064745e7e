package fpl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/platform/resilience"
	"github.com/fplstats/minileague/internal/usecase"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
	})
	return client, server
}

func TestGetBootstrapMapsEventsAndPhases(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bootstrap-static/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"events": [
				{"id": 9, "name": "Gameweek 9", "finished": true, "data_checked": true},
				{"id": 10, "name": "Gameweek 10", "is_current": true}
			],
			"phases": [{"id": 1, "name": "Overall", "start_event": 1, "stop_event": 38}],
			"total_players": 9000000
		}`))
	}))

	got, err := client.GetBootstrap(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Events, 2)
	require.True(t, got.Events[0].Finished)
	require.True(t, got.Events[1].IsCurrent)
	require.Len(t, got.Phases, 1)
	require.Equal(t, 38, got.Phases[0].StopEvent)
	require.Equal(t, 9000000, got.TotalPlayers)
}

func TestGetCurrentGameweekFallsBackToNextEvent(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events": [{"id": 1, "name": "Gameweek 1", "is_next": true}]}`))
	}))

	got, err := client.GetCurrentGameweek(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, got.ID)
}

func TestGetLeagueStandingsSendsPageAndPhase(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/leagues-classic/314/standings/", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("page_standings"))
		require.Equal(t, "2", r.URL.Query().Get("phase"))
		_, _ = w.Write([]byte(`{
			"league": {"id": 314, "name": "Overall"},
			"standings": {
				"has_next": true,
				"page": 3,
				"results": [
					{"entry": 5, "rank": 101, "last_rank": 99, "total": 480, "event_total": 61, "entry_name": "Castle FC", "player_name": "Sam Reed"}
				]
			}
		}`))
	}))

	got, err := client.GetLeagueStandings(context.Background(), 314, 2, 3)
	require.NoError(t, err)
	require.Equal(t, int64(314), got.LeagueID)
	require.True(t, got.HasNext)
	require.Len(t, got.Rows, 1)
	require.Equal(t, int64(5), got.Rows[0].EntryID)
	require.Equal(t, "Sam Reed", got.Rows[0].ManagerName)
}

func TestGetManagerEntryJoinsManagerName(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entry/5/", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id": 5,
			"name": "Castle FC",
			"player_first_name": "Sam",
			"player_last_name": "Reed",
			"player_region_iso_code_short": "ENG",
			"summary_overall_points": 480,
			"summary_overall_rank": 120345,
			"leagues": {"classic": [{"id": 314, "name": "Overall", "entry_rank": 101}]}
		}`))
	}))

	got, err := client.GetManagerEntry(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, "Sam Reed", got.ManagerName)
	require.Equal(t, "ENG", got.Region)
	require.Len(t, got.ClassicLeagues, 1)
	require.Equal(t, int64(314), got.ClassicLeagues[0].ID)
}

func TestDoJSONMapsNotFoundWithoutRetry(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))

	_, err := client.GetManagerEntry(context.Background(), 999)
	require.ErrorIs(t, err, usecase.ErrNotFound)
	require.Equal(t, int32(1), hits.Load())
}

func TestDoJSONRetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"elements": [{"id": 7, "stats": {"total_points": 6, "minutes": 90}}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		MaxRetries: 1,
		Logger:     logging.NewNop(),
	})

	got, err := client.GetLiveGameweek(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, int32(2), hits.Load())
	require.Equal(t, 6, got.PointsFor(7))
}

func TestDoJSONWrapsExhaustedRetriesAsUnavailable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.GetBootstrap(context.Background())
	require.ErrorIs(t, err, usecase.ErrUpstreamUnavailable)
}

func TestDoJSONDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := client.GetBootstrap(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, usecase.ErrUpstreamUnavailable)
	require.Equal(t, int32(1), hits.Load())
}

func TestDoJSONRejectsRequestsWhileCircuitOpen(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
		},
	})

	_, err := client.GetBootstrap(context.Background())
	require.ErrorIs(t, err, usecase.ErrUpstreamUnavailable)
	before := hits.Load()

	_, err = client.GetBootstrap(context.Background())
	require.ErrorIs(t, err, usecase.ErrUpstreamUnavailable)
	require.Equal(t, before, hits.Load())
}

func TestSearchEntriesRequiresQuery(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty query")
	}))

	_, err := client.SearchEntries(context.Background(), "   ")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}
