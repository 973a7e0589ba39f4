package room

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/models"
	"github.com/whodunit-live/whodunit/internal/session"
)

// Errors surfaced to the requesting client on room operations.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game already in progress")
)

// Registry owns the collection of live rooms. It mutates room membership;
// status and ready flags are driven by the readiness coordination layer
// through the room's own API.
type Registry struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*Room
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[uuid.UUID]*Room),
	}
}

// Create builds a Waiting room, seats the creator as its first player, and
// registers it. Room ids are generated UUIDs, collision-checked against the
// live set.
func (reg *Registry) Create(creator *session.Session, settings models.RoomSettings) *Room {
	r := New(creator.Identity, settings)

	reg.mu.Lock()
	for {
		if _, taken := reg.rooms[r.ID]; !taken {
			break
		}
		r.ID = uuid.New()
	}
	reg.rooms[r.ID] = r
	reg.mu.Unlock()

	r.OnEmpty = func(id uuid.UUID) { reg.delete(id) }

	// Seating the creator cannot fail: the room is fresh, Waiting, empty.
	r.Mu.Lock()
	r.AddPlayerUnsafe(creator)
	r.Mu.Unlock()

	log.Printf("registry: room %s created by %s", r.ID, creator.Identity.DisplayName)
	return r
}

// Get returns a live room by id.
func (reg *Registry) Get(id uuid.UUID) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[id]
	return r, ok
}

// Join seats a session in the room. A session already in a different room is
// moved, never double-seated. Fails with ErrRoomNotFound, ErrRoomFull, or
// ErrGameInProgress. On success the caller receives the room with the join
// already applied and broadcast-ready.
func (reg *Registry) Join(s *session.Session, roomID uuid.UUID) (*Room, error) {
	r, ok := reg.Get(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	// Move semantics: leave any previous room first. The leave runs its full
	// path including creator hand-off and empty-room deletion.
	if s.RoomID != uuid.Nil && s.RoomID != roomID {
		reg.Leave(s, false)
	}

	r.Mu.Lock()
	if r.MemberUnsafe(s.ConnID) {
		r.Mu.Unlock()
		return r, nil
	}
	if r.Status != models.StatusWaiting {
		r.Mu.Unlock()
		return nil, ErrGameInProgress
	}
	if r.PlayerCountUnsafe() >= MaxPlayers {
		r.Mu.Unlock()
		return nil, ErrRoomFull
	}
	r.AddPlayerUnsafe(s)
	r.Mu.Unlock()

	log.Printf("registry: %s joined room %s", s.Identity.DisplayName, roomID)
	return r, nil
}

// LeaveResult describes what happened during a leave so the caller can
// broadcast the right events.
type LeaveResult struct {
	Room               *Room
	Left               models.Identity
	Disconnected       bool
	NewCreator         *models.Identity
	RoomDeleted        bool
	CountdownCancelled bool
}

// Leave removes the session from its current room, if any. Disconnects run
// this exact same path: the flag only changes which event the caller
// broadcasts, never the bookkeeping.
//
// While the room is Starting, losing any player voids the four-player
// precondition, so the countdown is cancelled, every remaining ready flag is
// cleared, and the room returns to Waiting.
func (reg *Registry) Leave(s *session.Session, disconnected bool) (*LeaveResult, bool) {
	if s.RoomID == uuid.Nil {
		return nil, false
	}
	r, ok := reg.Get(s.RoomID)
	if !ok {
		// Session pointed at a room that is already gone; normalize.
		s.RoomID = uuid.Nil
		return nil, false
	}

	r.Mu.Lock()
	removed, creatorChanged := r.RemovePlayerUnsafe(s.ConnID)
	if removed == nil {
		r.Mu.Unlock()
		s.RoomID = uuid.Nil
		return nil, false
	}

	res := &LeaveResult{
		Room:         r,
		Left:         removed.Identity,
		Disconnected: disconnected,
	}
	if creatorChanged {
		c := r.Creator
		res.NewCreator = &c
	}

	if r.Status == models.StatusStarting {
		res.CountdownCancelled = r.CancelCountdownUnsafe()
		r.Status = models.StatusWaiting
		r.ClearReadyUnsafe()
	}

	empty := r.PlayerCountUnsafe() == 0
	if empty {
		// Rooms never linger without players.
		r.CancelCountdownUnsafe()
	}
	onEmpty := r.OnEmpty
	r.Mu.Unlock()

	if empty {
		res.RoomDeleted = true
		if onEmpty != nil {
			onEmpty(r.ID)
		}
	}
	return res, true
}

// ListJoinable returns summaries of public Waiting rooms with an open seat.
func (reg *Registry) ListJoinable() []models.RoomSummary {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	out := []models.RoomSummary{}
	for _, r := range rooms {
		r.Mu.Lock()
		if r.Status == models.StatusWaiting && r.Settings.IsPublic && r.PlayerCountUnsafe() < MaxPlayers {
			out = append(out, r.SummaryUnsafe())
		}
		r.Mu.Unlock()
	}
	return out
}

// Count returns the number of live rooms.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) delete(id uuid.UUID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[id]; ok {
		delete(reg.rooms, id)
		log.Printf("registry: room %s deleted", id)
	}
}

// SweepOlderThan deletes rooms created more than maxAge ago, regardless of
// activity. Best-effort housekeeping; occupants are notified and detached.
// Returns the number of rooms swept.
func (reg *Registry) SweepOlderThan(maxAge time.Duration) int {
	reg.mu.Lock()
	stale := make([]*Room, 0)
	cutoff := time.Now().Add(-maxAge)
	for _, r := range reg.rooms {
		if r.CreatedAt.Before(cutoff) {
			stale = append(stale, r)
		}
	}
	reg.mu.Unlock()

	for _, r := range stale {
		r.Mu.Lock()
		r.CancelCountdownUnsafe()
		r.BroadcastUnsafe(map[string]interface{}{
			"type":    "error",
			"message": "room expired",
		})
		for _, s := range r.PlayersUnsafe() {
			r.RemovePlayerUnsafe(s.ConnID)
		}
		r.Mu.Unlock()
		reg.delete(r.ID)
	}
	return len(stale)
}
