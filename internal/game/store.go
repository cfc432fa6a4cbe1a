// internal/game/store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// Store is an in-memory registry of live games.
type Store struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*VintoGame
}

// NewStore returns an empty registry.
func NewStore() *Store {
	return &Store{games: make(map[uuid.UUID]*VintoGame)}
}

// Create registers a new empty game and returns it.
func (s *Store) Create() *VintoGame {
	g := NewVintoGame()
	s.mu.Lock()
	s.games[g.ID] = g
	s.mu.Unlock()
	return g
}

// Get returns the game with the given ID, or nil.
func (s *Store) Get(id uuid.UUID) *VintoGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

// Remove drops a finished game from the registry.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	delete(s.games, id)
	s.mu.Unlock()
}
