// Package games coordinates schedule reads between the in-memory store and
// the on-disk snapshot fallback.
package games

import (
	"time"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
	"github.com/preston-bernstein/nba-stream-service/internal/timeutil"
)

// Store defines the contract for the live schedule snapshot.
type Store interface {
	ListGames() []domain.Game
	GetGame(id string) (domain.Game, bool)
	Date() string
	SetGames(date string, games []domain.Game)
}

// SnapshotLoader loads a persisted schedule for a date.
type SnapshotLoader interface {
	LoadGames(date string) (domain.TodayResponse, error)
}

// Service coordinates game operations using a Store with snapshot fallback.
type Service struct {
	store     Store
	snapshots SnapshotLoader
	now       func() time.Time
}

// NewService constructs a Service. The snapshot loader may be nil, in which
// case there is no fallback when the store has no data for today.
func NewService(store Store, snapshots SnapshotLoader) *Service {
	return &Service{
		store:     store,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// Today returns today's schedule. The live store wins when it holds today's
// data; otherwise the last persisted snapshot for today is served, and
// failing that an empty schedule.
func (s *Service) Today() domain.TodayResponse {
	today := timeutil.Today(s.now)
	if s.store.Date() == today {
		return domain.NewTodayResponse(today, s.store.ListGames())
	}

	if s.snapshots != nil {
		if snap, err := s.snapshots.LoadGames(today); err == nil {
			return snap
		}
	}
	return domain.NewTodayResponse(today, nil)
}

// GameByID returns a single game if present in the live store.
func (s *Service) GameByID(id string) (domain.Game, bool) {
	return s.store.GetGame(id)
}

// ReplaceGames swaps the in-memory games with a new snapshot for a date.
func (s *Service) ReplaceGames(date string, games []domain.Game) {
	s.store.SetGames(date, games)
}
