package providers

import (
	"context"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
)

// PlayByPlayProvider defines how live play-by-play data is fetched for one game.
// Implementations return ErrNotFound when the upstream has no feed for the
// game yet, and a RateLimitError when the upstream throttles us.
type PlayByPlayProvider interface {
	FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error)
}

// ScheduleProvider fetches the normalized schedule for a date (YYYY-MM-DD).
// An empty date means "today" in the provider's configured location.
type ScheduleProvider interface {
	FetchGames(ctx context.Context, date string) ([]domain.Game, error)
}

// DataProvider combines all provider capabilities.
type DataProvider interface {
	PlayByPlayProvider
	ScheduleProvider
}
