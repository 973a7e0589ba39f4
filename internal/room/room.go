// Package room owns the room collection and the per-room coordination state:
// ordered membership, status, ready flags, and the start countdown handle.
package room

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/models"
	"github.com/whodunit-live/whodunit/internal/session"
)

// MaxPlayers is the fixed table size. Rooms never admit a fifth player and
// never auto-start below four.
const MaxPlayers = 4

// Room is a lobby grouping up to four players before and during one game.
// All fields are protected by Mu; methods with the Unsafe suffix assume the
// caller holds it.
type Room struct {
	ID      uuid.UUID
	Creator models.Identity

	// players is ordered by join time; the head is the longest-present
	// player and inherits creator duties on hand-off.
	players []*session.Session

	Status   models.RoomStatus
	Settings models.RoomSettings

	CaseID    string
	GameID    uuid.UUID
	CreatedAt time.Time

	countdown *Countdown

	// OnEmpty is invoked (outside the lock) after the last player leaves.
	// Assigned by the registry so empty rooms delete themselves.
	OnEmpty func(roomID uuid.UUID)

	Mu sync.Mutex
}

// New constructs a Waiting room. The creator is added separately via the
// registry's join path so join bookkeeping happens in exactly one place.
func New(creator models.Identity, settings models.RoomSettings) *Room {
	return &Room{
		ID:        uuid.New(),
		Creator:   creator,
		Status:    models.StatusWaiting,
		Settings:  settings,
		CreatedAt: time.Now(),
	}
}

// AddPlayerUnsafe appends a session to the room. Capacity and status gating
// are the caller's responsibility (the registry checks both).
func (r *Room) AddPlayerUnsafe(s *session.Session) {
	r.players = append(r.players, s)
	s.RoomID = r.ID
	s.Ready = false
	s.Role = ""
}

// RemovePlayerUnsafe removes the session with the given connection id and
// returns it, along with whether creator duties moved to another player.
func (r *Room) RemovePlayerUnsafe(connID uuid.UUID) (removed *session.Session, creatorChanged bool) {
	for i, s := range r.players {
		if s.ConnID == connID {
			removed = s
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	if removed == nil {
		return nil, false
	}

	removed.RoomID = uuid.Nil
	removed.Ready = false
	removed.Role = ""

	if len(r.players) > 0 && r.Creator.ID == removed.Identity.ID {
		r.Creator = r.players[0].Identity
		creatorChanged = true
	}
	return removed, creatorChanged
}

// PlayersUnsafe returns a copy of the ordered player list.
func (r *Room) PlayersUnsafe() []*session.Session {
	out := make([]*session.Session, len(r.players))
	copy(out, r.players)
	return out
}

// PlayerCountUnsafe returns the current headcount.
func (r *Room) PlayerCountUnsafe() int {
	return len(r.players)
}

// MemberUnsafe reports whether the connection is in this room.
func (r *Room) MemberUnsafe(connID uuid.UUID) bool {
	for _, s := range r.players {
		if s.ConnID == connID {
			return true
		}
	}
	return false
}

// ReadyCountUnsafe counts players with the ready flag set.
func (r *Room) ReadyCountUnsafe() int {
	n := 0
	for _, s := range r.players {
		if s.Ready {
			n++
		}
	}
	return n
}

// StartEligibleUnsafe reports whether the room may begin the start countdown:
// exactly MaxPlayers present and every one of them ready. A smaller table is
// never start-eligible regardless of ready flags.
func (r *Room) StartEligibleUnsafe() bool {
	if len(r.players) != MaxPlayers {
		return false
	}
	for _, s := range r.players {
		if !s.Ready {
			return false
		}
	}
	return true
}

// ClearReadyUnsafe resets every player's ready flag.
func (r *Room) ClearReadyUnsafe() {
	for _, s := range r.players {
		s.Ready = false
	}
}

// BroadcastUnsafe sends msg to every player. Session writes are
// non-blocking, so this is safe while holding the lock.
func (r *Room) BroadcastUnsafe(msg map[string]interface{}) {
	for _, s := range r.players {
		s.Write(msg)
	}
}

// Broadcast sends msg to every player, acquiring the lock.
func (r *Room) Broadcast(msg map[string]interface{}) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	r.BroadcastUnsafe(msg)
}

// RosterUnsafe returns the public roster in join order.
func (r *Room) RosterUnsafe() []models.PlayerInfo {
	roster := make([]models.PlayerInfo, 0, len(r.players))
	for _, s := range r.players {
		roster = append(roster, s.Info())
	}
	return roster
}

// PlayersUpdateUnsafe builds the room:players_update payload.
func (r *Room) PlayersUpdateUnsafe() map[string]interface{} {
	return map[string]interface{}{
		"type":         "room:players_update",
		"roomId":       r.ID.String(),
		"players":      r.RosterUnsafe(),
		"readyCount":   r.ReadyCountUnsafe(),
		"totalPlayers": len(r.players),
	}
}

// StatePayloadUnsafe builds the full room state sent on create/join.
func (r *Room) StatePayloadUnsafe() map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID.String(),
		"creatorId":   r.Creator.ID.String(),
		"creatorName": r.Creator.DisplayName,
		"status":      string(r.Status),
		"settings":    r.Settings,
		"players":     r.RosterUnsafe(),
		"maxPlayers":  MaxPlayers,
	}
}

// SummaryUnsafe returns the joinable-list projection.
func (r *Room) SummaryUnsafe() models.RoomSummary {
	return models.RoomSummary{
		ID:          r.ID,
		CreatorName: r.Creator.DisplayName,
		PlayerCount: len(r.players),
		MaxPlayers:  MaxPlayers,
		Settings:    r.Settings,
	}
}

// SetCountdownUnsafe installs the active countdown handle.
func (r *Room) SetCountdownUnsafe(cd *Countdown) {
	r.countdown = cd
}

// CountdownUnsafe returns the active countdown handle, if any.
func (r *Room) CountdownUnsafe() *Countdown {
	return r.countdown
}

// CancelCountdownUnsafe stops the active countdown, if any, and clears the
// handle. A tick already in flight observes the cleared handle and becomes a
// no-op.
func (r *Room) CancelCountdownUnsafe() bool {
	if r.countdown == nil {
		return false
	}
	r.countdown.Stop()
	r.countdown = nil
	return true
}
