package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/models"
)

// Tracker owns the connection -> session map.
type Tracker struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create registers a new session for an authenticated connection and returns
// it. Out is buffered so broadcasts never block room-mutating paths.
func (t *Tracker) Create(identity models.Identity, cancel func()) *Session {
	s := &Session{
		ConnID:   uuid.New(),
		Identity: identity,
		JoinedAt: time.Now(),
		Cancel:   cancel,
		Out:      make(chan map[string]interface{}, 32),
	}
	t.mu.Lock()
	t.sessions[s.ConnID] = s
	t.mu.Unlock()
	return s
}

// Get returns the session for a connection id.
func (t *Tracker) Get(connID uuid.UUID) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[connID]
	return s, ok
}

// Remove destroys a session. The caller is responsible for having already
// detached it from any room.
func (t *Tracker) Remove(connID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, connID)
}

// Count returns the number of live sessions.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Idle returns sessions that are not currently in any room, used for
// best-effort lobby room-list broadcasts.
func (t *Tracker) Idle() []*Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		if s.RoomID == uuid.Nil {
			out = append(out, s)
		}
	}
	return out
}
