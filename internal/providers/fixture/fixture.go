// Package fixture provides a deterministic provider useful for local
// development: a static schedule plus a scripted play-by-play replay that
// walks each game through its full lifecycle without an upstream key.
package fixture

import (
	"context"
	"sync"
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
	"github.com/preston-bernstein/nba-stream-service/internal/providers"
)

// Provider replays a scripted feed. Each FetchPlayByPlay call advances the
// game one frame; after the script ends the final frame repeats.
type Provider struct {
	now func() time.Time

	mu    sync.Mutex
	calls map[string]int
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now:   time.Now,
		calls: make(map[string]int),
	}
}

// FetchGames returns a deterministic set of example games.
func (p *Provider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	_ = ctx

	start := p.now().UTC().Truncate(time.Hour)
	if date != "" {
		if parsed, err := time.Parse("2006-01-02", date); err == nil {
			start = parsed.UTC()
		}
	}

	return []domain.Game{
		{
			ID:        "fixture-1",
			Provider:  "fixture",
			HomeTeam:  domain.Team{ID: "bos", Name: "Celtics", Alias: "BOS"},
			AwayTeam:  domain.Team{ID: "lal", Name: "Lakers", Alias: "LAL"},
			Scheduled: start.Add(2 * time.Hour).Format(time.RFC3339),
			Status:    domain.StatusScheduled,
		},
		{
			ID:        "fixture-2",
			Provider:  "fixture",
			HomeTeam:  domain.Team{ID: "gsw", Name: "Warriors", Alias: "GSW"},
			AwayTeam:  domain.Team{ID: "mia", Name: "Heat", Alias: "MIA"},
			Scheduled: start.Add(4 * time.Hour).Format(time.RFC3339),
			Status:    domain.StatusScheduled,
		},
	}, nil
}

// FetchPlayByPlay returns the next scripted frame for the game.
func (p *Provider) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	_ = ctx

	p.mu.Lock()
	frame := p.calls[gameID]
	p.calls[gameID]++
	p.mu.Unlock()

	script := scriptFor(gameID)
	if frame >= len(script) {
		frame = len(script) - 1
	}
	step := script[frame]
	if step.err != nil {
		return nil, step.err
	}
	return step.raw, nil
}

// Reset rewinds every game's replay to the first frame.
func (p *Provider) Reset() {
	p.mu.Lock()
	p.calls = make(map[string]int)
	p.mu.Unlock()
}

type frame struct {
	raw *pbp.Raw
	err error
}

func scriptFor(gameID string) []frame {
	return []frame{
		{err: providers.ErrNotFound},
		{raw: &pbp.Raw{ID: gameID, Status: "inprogress"}},
		{raw: &pbp.Raw{
			ID:     gameID,
			Status: "inprogress",
			Home:   pbp.RawTeam{Name: "Celtics", Points: 2},
			Away:   pbp.RawTeam{Name: "Lakers", Points: 0},
			Periods: []pbp.Period{{Number: 1, Events: []pbp.Event{{
				ID:          gameID + "-e1",
				Clock:       "11:42",
				Description: "makes two point layup",
				EventType:   "twopointmade",
				Attribution: pbp.Attribution{Name: "Celtics"},
				Statistics:  []pbp.Statistic{{Player: pbp.Player{FullName: "Jayson Tatum"}}},
			}}}},
		}},
		{raw: &pbp.Raw{
			ID:     gameID,
			Status: "inprogress",
			Home:   pbp.RawTeam{Name: "Celtics", Points: 2},
			Away:   pbp.RawTeam{Name: "Lakers", Points: 3},
			Periods: []pbp.Period{{Number: 1, Events: []pbp.Event{
				{ID: gameID + "-e1", Clock: "11:42", Description: "makes two point layup", EventType: "twopointmade"},
				{
					ID:           gameID + "-e2",
					Clock:        "11:18",
					Description:  "makes three point jump shot",
					EventType:    "shot",
					ShotType:     "jump shot",
					ShotDistance: 26,
					Attribution:  pbp.Attribution{Name: "Lakers"},
					Statistics:   []pbp.Statistic{{Player: pbp.Player{FullName: "Luka Doncic"}}},
				},
			}}},
		}},
		{raw: &pbp.Raw{
			ID:     gameID,
			Status: "inprogress",
			Home:   pbp.RawTeam{Name: "Celtics", Points: 58},
			Away:   pbp.RawTeam{Name: "Lakers", Points: 55},
			Periods: []pbp.Period{
				{Number: 1},
				{Number: 3, Events: []pbp.Event{{
					ID:          gameID + "-e3",
					Clock:       "07:05",
					Description: "makes free throw 1 of 2",
					EventType:   "freethrowmade",
					Attribution: pbp.Attribution{Name: "Celtics"},
				}}},
			},
		}},
		{raw: &pbp.Raw{
			ID:     gameID,
			Status: "closed",
			Home:   pbp.RawTeam{Name: "Celtics", Points: 112},
			Away:   pbp.RawTeam{Name: "Lakers", Points: 104},
		}},
	}
}
