// Package game holds the per-game state materialized at room start: the
// immutable roster with assigned roles, the per-player views, and the bounded
// chat transcript.
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/models"
)

// GamePlayer is one seat in the immutable roster. Roles never change
// mid-game.
type GamePlayer struct {
	ConnID   uuid.UUID       `json:"-"`
	Identity models.Identity `json:"identity"`
	Role     string          `json:"role"`
}

// PlayerView is the asymmetric information bundle computed once at start and
// handed privately to each player. It is never recomputed; anything shared
// later travels over chat.
type PlayerView struct {
	Role          string                 `json:"role"`
	RoleInfo      catalog.RoleDefinition `json:"roleInfo"`
	CaseSummary   catalog.CaseSummary    `json:"caseSummary"`
	VisibleClues  []catalog.Clue         `json:"visibleClues"`
	Suspects      []catalog.Suspect      `json:"suspects"`
	RoleSpecifics []string               `json:"roleSpecificInfo"`
}

// Game is one active mystery session spawned from a room.
type Game struct {
	ID        uuid.UUID
	RoomID    uuid.UUID
	CaseID    string
	StartTime time.Time

	Players []GamePlayer

	// views is keyed by connection id; computed once in Assign.
	views map[uuid.UUID]*PlayerView

	mu       sync.Mutex
	messages []models.ChatMessage
}

// View returns the private view for a connection.
func (g *Game) View(connID uuid.UUID) (*PlayerView, bool) {
	v, ok := g.views[connID]
	return v, ok
}

// Roster returns a copy of the public roster with assigned roles.
func (g *Game) Roster() []GamePlayer {
	out := make([]GamePlayer, len(g.Players))
	copy(out, g.Players)
	return out
}

// roleOf returns the role assigned to a connection, or "" if it has no seat
// in this game.
func (g *Game) roleOf(connID uuid.UUID) string {
	for _, p := range g.Players {
		if p.ConnID == connID {
			return p.Role
		}
	}
	return ""
}

// Store manages active games in memory.
type Store struct {
	mu    sync.Mutex
	games map[uuid.UUID]*Game
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{games: make(map[uuid.UUID]*Game)}
}

// Add registers a game.
func (s *Store) Add(g *Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

// Get returns a game by id.
func (s *Store) Get(id uuid.UUID) (*Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	return g, ok
}

// Delete removes a game.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
}
