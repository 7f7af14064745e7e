package fpl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fplstats/minileague/internal/platform/logging"
	"github.com/fplstats/minileague/internal/platform/resilience"
	"github.com/fplstats/minileague/internal/usecase"
)

const defaultBaseURL = "https://fantasy.premierleague.com/api"

var errFantasyTransient = crerr.New("fantasy provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the public fantasy API. It collapses identical
// in-flight requests, retries transient failures and trips a circuit
// breaker when the provider keeps failing.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) GetBootstrap(ctx context.Context) (usecase.ExternalBootstrap, error) {
	var payload bootstrapPayload
	if err := c.doJSON(ctx, "/bootstrap-static/", nil, &payload); err != nil {
		return usecase.ExternalBootstrap{}, fmt.Errorf("fetch bootstrap: %w", err)
	}
	return mapBootstrap(payload), nil
}

func (c *Client) GetFixtures(ctx context.Context, gw int) ([]usecase.ExternalFixture, error) {
	query := map[string]string{}
	if gw > 0 {
		query["event"] = strconv.Itoa(gw)
	}

	var payload []fixturePayload
	if err := c.doJSON(ctx, "/fixtures/", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch fixtures gw=%d: %w", gw, err)
	}

	out := make([]usecase.ExternalFixture, 0, len(payload))
	for _, item := range payload {
		out = append(out, mapFixture(item))
	}
	return out, nil
}

func (c *Client) GetCurrentGameweek(ctx context.Context) (usecase.ExternalEvent, error) {
	bootstrap, err := c.GetBootstrap(ctx)
	if err != nil {
		return usecase.ExternalEvent{}, err
	}
	for _, event := range bootstrap.Events {
		if event.IsCurrent {
			return event, nil
		}
	}
	// Before the first deadline no event is current yet; the upcoming
	// one stands in for it.
	for _, event := range bootstrap.Events {
		if event.IsNext {
			return event, nil
		}
	}
	return usecase.ExternalEvent{}, fmt.Errorf("%w: provider reports no current gameweek", usecase.ErrNotFound)
}

func (c *Client) GetLeagueStandings(ctx context.Context, leagueID int64, phase, page int) (usecase.ExternalStandingsPage, error) {
	if leagueID <= 0 {
		return usecase.ExternalStandingsPage{}, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}
	if page <= 0 {
		page = 1
	}

	query := map[string]string{
		"page_standings": strconv.Itoa(page),
	}
	if phase > 0 {
		query["phase"] = strconv.Itoa(phase)
	}

	var payload standingsEnvelope
	path := fmt.Sprintf("/leagues-classic/%d/standings/", leagueID)
	if err := c.doJSON(ctx, path, query, &payload); err != nil {
		return usecase.ExternalStandingsPage{}, fmt.Errorf("fetch standings league_id=%d page=%d: %w", leagueID, page, err)
	}
	return mapStandings(payload), nil
}

func (c *Client) GetManagerEntry(ctx context.Context, teamID int64) (usecase.ExternalManagerEntry, error) {
	if teamID <= 0 {
		return usecase.ExternalManagerEntry{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload entryPayload
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/", teamID), nil, &payload); err != nil {
		return usecase.ExternalManagerEntry{}, fmt.Errorf("fetch entry team_id=%d: %w", teamID, err)
	}
	return mapEntry(payload), nil
}

func (c *Client) GetManagerPicks(ctx context.Context, teamID int64, gw int) (usecase.ExternalManagerPicks, error) {
	if teamID <= 0 {
		return usecase.ExternalManagerPicks{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	if gw <= 0 {
		return usecase.ExternalManagerPicks{}, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload picksEnvelope
	path := fmt.Sprintf("/entry/%d/event/%d/picks/", teamID, gw)
	if err := c.doJSON(ctx, path, nil, &payload); err != nil {
		return usecase.ExternalManagerPicks{}, fmt.Errorf("fetch picks team_id=%d gw=%d: %w", teamID, gw, err)
	}
	return mapPicks(payload), nil
}

func (c *Client) GetManagerHistory(ctx context.Context, teamID int64) (usecase.ExternalManagerHistory, error) {
	if teamID <= 0 {
		return usecase.ExternalManagerHistory{}, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload historyEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/history/", teamID), nil, &payload); err != nil {
		return usecase.ExternalManagerHistory{}, fmt.Errorf("fetch history team_id=%d: %w", teamID, err)
	}
	return mapHistory(payload), nil
}

func (c *Client) GetManagerTransfers(ctx context.Context, teamID int64) ([]usecase.ExternalTransfer, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload []transferPayload
	if err := c.doJSON(ctx, fmt.Sprintf("/entry/%d/transfers/", teamID), nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch transfers team_id=%d: %w", teamID, err)
	}
	return mapTransfers(payload), nil
}

func (c *Client) GetLiveGameweek(ctx context.Context, gw int) (usecase.ExternalLiveGameweek, error) {
	if gw <= 0 {
		return usecase.ExternalLiveGameweek{}, fmt.Errorf("%w: gameweek must be greater than zero", usecase.ErrInvalidInput)
	}

	var payload liveEnvelope
	if err := c.doJSON(ctx, fmt.Sprintf("/event/%d/live/", gw), nil, &payload); err != nil {
		return usecase.ExternalLiveGameweek{}, fmt.Errorf("fetch live gw=%d: %w", gw, err)
	}
	return mapLive(gw, payload), nil
}

func (c *Client) SearchEntries(ctx context.Context, query string) ([]usecase.ExternalEntrySearch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query must not be empty", usecase.ErrInvalidInput)
	}

	var payload searchEnvelope
	if err := c.doJSON(ctx, "/search/entries/", map[string]string{"term": query}, &payload); err != nil {
		return nil, fmt.Errorf("search entries term=%q: %w", query, err)
	}
	return mapSearch(payload), nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fantasy circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: fantasy provider is temporarily unavailable", usecase.ErrUpstreamUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if isFantasyCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		if stderrors.Is(err, errFantasyTransient) {
			return fmt.Errorf("%w: %v", usecase.ErrUpstreamUnavailable, err)
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFantasyTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFantasyTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider status=404", usecase.ErrNotFound)
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFantasyTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "fantasy request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isFantasyCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errFantasyTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
