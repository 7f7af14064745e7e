package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/minileague/internal/infrastructure/repository/memory"
	"github.com/fplstats/minileague/internal/platform/cache"
	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/usecase"
)

type fakeGateway struct{}

func (fakeGateway) GetBootstrap(context.Context) (usecase.ExternalBootstrap, error) {
	return usecase.ExternalBootstrap{
		Events: []usecase.ExternalEvent{
			{ID: 10, Name: "Gameweek 10", IsCurrent: true, Finished: true, DataChecked: true},
		},
		Phases: []usecase.ExternalPhase{
			{ID: 1, Name: "Overall", StartEvent: 1, StopEvent: 38},
		},
	}, nil
}

func (fakeGateway) GetFixtures(_ context.Context, gw int) ([]usecase.ExternalFixture, error) {
	return []usecase.ExternalFixture{
		{ID: 900, Event: gw, HomeTeamID: 1, AwayTeamID: 2, Started: true},
	}, nil
}

func (g fakeGateway) GetCurrentGameweek(ctx context.Context) (usecase.ExternalEvent, error) {
	bootstrap, err := g.GetBootstrap(ctx)
	if err != nil {
		return usecase.ExternalEvent{}, err
	}
	return bootstrap.Events[0], nil
}

func (fakeGateway) GetLeagueStandings(_ context.Context, leagueID int64, _, page int) (usecase.ExternalStandingsPage, error) {
	if leagueID == 404 {
		return usecase.ExternalStandingsPage{}, fmt.Errorf("%w: league not found", usecase.ErrNotFound)
	}
	return usecase.ExternalStandingsPage{
		LeagueID:   leagueID,
		LeagueName: "Office League",
		Page:       page,
		Rows: []usecase.ExternalStandingRow{
			{EntryID: 5, Rank: 1, Total: 480, EntryName: "Castle FC", ManagerName: "Sam Reed"},
		},
	}, nil
}

func (fakeGateway) GetManagerEntry(_ context.Context, teamID int64) (usecase.ExternalManagerEntry, error) {
	return usecase.ExternalManagerEntry{ID: teamID, TeamName: "Castle FC", ManagerName: "Sam Reed"}, nil
}

func (fakeGateway) GetManagerPicks(_ context.Context, _ int64, gw int) (usecase.ExternalManagerPicks, error) {
	return usecase.ExternalManagerPicks{
		Event: gw,
		Picks: []usecase.ExternalPick{
			{PlayerID: 101, Position: 1, Multiplier: 1, IsCaptain: true},
		},
	}, nil
}

func (fakeGateway) GetManagerHistory(context.Context, int64) (usecase.ExternalManagerHistory, error) {
	return usecase.ExternalManagerHistory{
		Rounds: []usecase.ExternalHistoryRound{
			{Event: 1, Points: 60, TotalPoints: 60, OverallRank: 200000},
		},
	}, nil
}

func (fakeGateway) GetManagerTransfers(context.Context, int64) ([]usecase.ExternalTransfer, error) {
	return nil, nil
}

func (fakeGateway) GetLiveGameweek(_ context.Context, gw int) (usecase.ExternalLiveGameweek, error) {
	return usecase.ExternalLiveGameweek{Event: gw}, nil
}

func (fakeGateway) SearchEntries(context.Context, string) ([]usecase.ExternalEntrySearch, error) {
	return nil, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(_ context.Context, teamName string) (string, error) {
	return "<svg>" + teamName + "</svg>", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := logging.NewNop()
	store := cache.NewStore(cache.Config{Logger: logger})
	leagues := memory.NewLeagueRepository()
	teams := memory.NewTeamRepository()
	snapshots := memory.NewSnapshotRepository()

	syncService := usecase.NewSyncService(fakeGateway{}, leagues, teams, snapshots, store, usecase.SyncConfig{
		TTL:     time.Minute,
		LiveTTL: time.Minute,
	}, logger)
	progressionService := usecase.NewProgressionService(leagues, snapshots, logger)
	squadService := usecase.NewSquadService(syncService, snapshots, logger)
	crestService := usecase.NewCrestService(fakeRenderer{}, store, 10, logger)

	handler := NewHandler(syncService, progressionService, squadService, crestService, store, false, logger)
	server := httptest.NewServer(NewRouter(handler, logger, nil))
	t.Cleanup(server.Close)
	return server
}

func decodeEnvelope(t *testing.T, resp *http.Response) googleResponseEnvelope {
	t.Helper()

	defer resp.Body.Close()
	var envelope googleResponseEnvelope
	if err := sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.APIVersion != googleAPIVersion {
		t.Fatalf("apiVersion = %q", envelope.APIVersion)
	}
	return envelope
}

func TestGetLeagueReturnsStandings(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/leagues/314")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", envelope.Data)
	}
	if data["name"] != "Office League" {
		t.Fatalf("league name = %v", data["name"])
	}
	standings, ok := data["standings"].([]any)
	if !ok || len(standings) != 1 {
		t.Fatalf("standings = %v", data["standings"])
	}
}

func TestGetLeagueRejectsMalformedID(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/leagues/abc")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("error = %+v", envelope.Error)
	}
}

func TestGetLeagueMapsNotFound(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/leagues/404")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("error = %+v", envelope.Error)
	}
}

func TestGetGameweekFixtures(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/gameweeks/5/fixtures")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	items, ok := envelope.Data.([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("data = %#v", envelope.Data)
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		t.Fatalf("item = %T", items[0])
	}
	if item["id"] != float64(900) || item["gameweek"] != float64(5) {
		t.Fatalf("item = %#v", item)
	}
}

func TestHealthzReportsBackends(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", envelope.Data)
	}
	if data["status"] != "ok" || data["cache"] != cache.BackendMemory || data["storage"] != "memory" {
		t.Fatalf("healthz = %v", data)
	}
}

func TestGenerateCrestsBatch(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	body := `{"names": ["Castle FC", "Harbor Town"], "batch_size": 2}`
	resp, err := http.Post(server.URL+"/v1/crests/batch", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	if !ok || len(data) != 2 {
		t.Fatalf("data = %v", envelope.Data)
	}
	item, ok := data["Castle FC"].(map[string]any)
	if !ok || item["svg"] != "<svg>Castle FC</svg>" {
		t.Fatalf("crest = %v", data["Castle FC"])
	}
}

func TestGenerateCrestsRejectsEmptyNames(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Post(server.URL+"/v1/crests/batch", "application/json", strings.NewReader(`{"names": []}`))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestGetGameweekSquadReturnsView(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	resp, err := http.Get(server.URL + "/v1/teams/5/gameweeks/10/squad")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	envelope := decodeEnvelope(t, resp)
	data, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %T", envelope.Data)
	}
	if data["captain_id"] != float64(101) {
		t.Fatalf("captain = %v", data["captain_id"])
	}
}
