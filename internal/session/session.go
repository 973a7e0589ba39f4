// Package session tracks live connections. The Tracker is the single source
// of truth for "who is currently connected and where"; rooms hold session
// references but never own their lifecycle.
package session

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/models"
)

// Session is the live binding between one network connection and an
// authenticated identity. Created on successful authentication, destroyed on
// disconnect. Room-related fields (RoomID, Role, Ready) are mutated only
// under the owning room's lock while the session is a member.
type Session struct {
	ConnID   uuid.UUID
	Identity models.Identity

	RoomID   uuid.UUID // uuid.Nil when not in a room
	Role     string
	Ready    bool
	JoinedAt time.Time

	// Cancel stops the connection's read loop.
	Cancel context.CancelFunc
	// Out carries server events to the write pump.
	Out chan map[string]interface{}
}

// Write pushes a message onto the session's Out channel without blocking.
// A full or closed channel drops the message; the write pump failure path
// will tear the connection down soon after.
func (s *Session) Write(msg map[string]interface{}) {
	select {
	case s.Out <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Printf("session %s: out channel closed or full, dropped %q", s.ConnID, msgType)
	}
}

// WriteError sends a structured error event to this connection only.
func (s *Session) WriteError(message string) {
	s.Write(map[string]interface{}{
		"type":    "error",
		"message": message,
	})
}

// Info returns the public roster entry for this session.
func (s *Session) Info() models.PlayerInfo {
	return models.PlayerInfo{
		ID:          s.Identity.ID,
		DisplayName: s.Identity.DisplayName,
		Ready:       s.Ready,
		Role:        s.Role,
	}
}
