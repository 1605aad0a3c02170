package store

import (
	"sync"

	"github.com/preston-bernstein/nba-stream-service/internal/domain"
)

// MemoryStore keeps a thread-safe snapshot of the day's schedule in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	date  string
	games map[string]domain.Game
	order []string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]domain.Game),
	}
}

// ListGames returns a copy of the current games in schedule order.
func (s *MemoryStore) ListGames() []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Game, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.games[id])
	}
	return result
}

// GetGame retrieves a game by ID.
func (s *MemoryStore) GetGame(id string) (domain.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	return g, ok
}

// Date returns the date the current snapshot was fetched for.
func (s *MemoryStore) Date() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.date
}

// SetGames replaces the existing games with a new snapshot for a date.
func (s *MemoryStore) SetGames(date string, games []domain.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.date = date
	s.games = make(map[string]domain.Game, len(games))
	s.order = make([]string, 0, len(games))
	for _, g := range games {
		if _, dup := s.games[g.ID]; !dup {
			s.order = append(s.order, g.ID)
		}
		s.games[g.ID] = g
	}
}
