// Package teststubs holds shared stubs for provider and snapshot interfaces.
package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/domain/pbp"
)

// StubProvider is a canned DataProvider for tests. Notify, when set, receives
// a signal on the first FetchGames call.
type StubProvider struct {
	Games  []domain.Game
	Raw    *pbp.Raw
	Err    error
	Notify chan struct{}
	Calls  atomic.Int64

	notifyOnce sync.Once
}

func (s *StubProvider) FetchGames(ctx context.Context, date string) ([]domain.Game, error) {
	s.Calls.Add(1)
	if s.Notify != nil {
		s.notifyOnce.Do(func() { close(s.Notify) })
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Games, nil
}

func (s *StubProvider) FetchPlayByPlay(ctx context.Context, gameID string) (*pbp.Raw, error) {
	s.Calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Raw, nil
}

// StubSnapshotWriter records written snapshots keyed by date.
type StubSnapshotWriter struct {
	Err error

	mu      sync.Mutex
	Written map[string]domain.TodayResponse
}

func (s *StubSnapshotWriter) WriteGamesSnapshot(date string, snapshot domain.TodayResponse) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Written == nil {
		s.Written = make(map[string]domain.TodayResponse)
	}
	s.Written[date] = snapshot
	return nil
}

// Snapshot returns the stored snapshot for a date.
func (s *StubSnapshotWriter) Snapshot(date string) (domain.TodayResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.Written[date]
	return snap, ok
}

// StubGameSink records the latest schedule it was handed.
type StubGameSink struct {
	mu    sync.Mutex
	Date  string
	Games []domain.Game
}

func (s *StubGameSink) SetGames(date string, games []domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Date = date
	s.Games = games
}

// Latest returns the most recent date and games handed to the sink.
func (s *StubGameSink) Latest() (string, []domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Date, s.Games
}
