package sportradar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
	"github.com/preston-bernstein/nba-stream-service/internal/timeutil"
)

// Config controls how the sportradar client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client fetches play-by-play and schedule data from the Sportradar NBA API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a sportradar client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
	}
}

// FetchPlayByPlay retrieves the raw play-by-play feed for a game.
func (c *Client) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	var raw pbp.Raw
	path := fmt.Sprintf("/games/%s/pbp.json", gameID)
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// FetchGames retrieves the schedule for a date (YYYY-MM-DD, empty means today).
func (c *Client) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	day, err := c.resolveDate(date)
	if err != nil {
		return nil, err
	}

	var payload scheduleResponse
	path := fmt.Sprintf("/games/%s/schedule.json", day.Format("2006/01/02"))
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	games := make([]domain.Game, 0, len(payload.Games))
	for _, g := range payload.Games {
		games = append(games, mapGame(g))
	}
	return games, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return providers.ErrNotFound
	case http.StatusTooManyRequests:
		return &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sportradar: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

func (c *Client) resolveDate(date string) (time.Time, error) {
	if date == "" {
		return c.now().UTC(), nil
	}
	return timeutil.ParseDate(date)
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
