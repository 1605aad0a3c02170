package sportradar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
)

func TestFetchPlayByPlayDecodesFeed(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "sr-game-1",
			"status": "inprogress",
			"home": {"name": "Celtics", "points": 54},
			"away": {"name": "Lakers", "points": 51},
			"periods": [
				{"number": 2, "events": [
					{"id": "e1", "clock": "03:12", "description": "Jayson Tatum makes layup", "event_type": "twopointmade"}
				]}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
	raw, err := client.FetchPlayByPlay(context.Background(), "sr-game-1")
	if err != nil {
		t.Fatalf("FetchPlayByPlay returned error: %v", err)
	}

	if gotPath != "/games/sr-game-1/pbp.json" {
		t.Fatalf("got path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("got api_key %q", gotKey)
	}
	if raw.Status != "inprogress" {
		t.Fatalf("got status %q", raw.Status)
	}
	if raw.Home.Points != 54 || raw.Away.Points != 51 {
		t.Fatalf("got score %d-%d", raw.Home.Points, raw.Away.Points)
	}
	if len(raw.Periods) != 1 || len(raw.Periods[0].Events) != 1 {
		t.Fatalf("unexpected periods shape: %+v", raw.Periods)
	}
}

func TestFetchPlayByPlayNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FetchPlayByPlay(context.Background(), "missing")
	if !errors.Is(err, providers.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestFetchPlayByPlayRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FetchPlayByPlay(context.Background(), "g1")

	rlErr, ok := providers.AsRateLimitError(err)
	if !ok {
		t.Fatalf("got %v, want RateLimitError", err)
	}
	if rlErr.RetryAfter != 7*time.Second {
		t.Fatalf("got retry-after %v, want 7s", rlErr.RetryAfter)
	}
	if rlErr.Provider != providerName {
		t.Fatalf("got provider %q", rlErr.Provider)
	}
}

func TestFetchGamesMapsSchedule(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"date": "2026-01-15",
			"games": [
				{
					"id": "sr-game-1",
					"status": "closed",
					"scheduled": "2026-01-15T19:30:00Z",
					"home": {"id": "t1", "name": "Celtics", "alias": "BOS"},
					"away": {"id": "t2", "name": "Lakers", "alias": "LAL"},
					"home_points": 112,
					"away_points": 104
				},
				{
					"id": "sr-game-2",
					"status": "scheduled",
					"scheduled": "2026-01-15T22:00:00Z",
					"home": {"id": "t3", "name": "Warriors", "alias": "GSW"},
					"away": {"id": "t4", "name": "Suns", "alias": "PHX"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	games, err := client.FetchGames(context.Background(), "2026-01-15")
	if err != nil {
		t.Fatalf("FetchGames returned error: %v", err)
	}

	if gotPath != "/games/2026/01/15/schedule.json" {
		t.Fatalf("got path %q", gotPath)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	first := games[0]
	if first.Provider != providerName {
		t.Fatalf("got provider %q", first.Provider)
	}
	if first.Status != domain.StatusClosed {
		t.Fatalf("got status %q", first.Status)
	}
	if first.HomeTeam.Alias != "BOS" || first.AwayTeam.Alias != "LAL" {
		t.Fatalf("unexpected teams: %+v vs %+v", first.HomeTeam, first.AwayTeam)
	}
	if first.HomeScore != 112 || first.AwayScore != 104 {
		t.Fatalf("got score %d-%d", first.HomeScore, first.AwayScore)
	}
	if games[1].Status != domain.StatusScheduled {
		t.Fatalf("got status %q", games[1].Status)
	}
}

func TestFetchGamesDefaultsToToday(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"games": []}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	client.now = func() time.Time {
		return time.Date(2026, 3, 7, 4, 0, 0, 0, time.UTC)
	}

	if _, err := client.FetchGames(context.Background(), ""); err != nil {
		t.Fatalf("FetchGames returned error: %v", err)
	}
	if gotPath != "/games/2026/03/07/schedule.json" {
		t.Fatalf("got path %q", gotPath)
	}
}

func TestFetchGamesRejectsBadDate(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost"})
	if _, err := client.FetchGames(context.Background(), "Jan 15"); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestFetchPlayByPlayUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.FetchPlayByPlay(context.Background(), "g1")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}
