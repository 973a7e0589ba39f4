// internal/session/tracker_test.go
package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whodunit-live/whodunit/internal/models"
)

func TestTrackerLifecycle(t *testing.T) {
	tr := NewTracker()
	identity := models.Identity{ID: uuid.New(), DisplayName: "alice"}

	s := tr.Create(identity, func() {})
	require.NotEqual(t, uuid.Nil, s.ConnID)
	assert.Equal(t, identity, s.Identity)
	assert.Equal(t, 1, tr.Count())

	got, ok := tr.Get(s.ConnID)
	require.True(t, ok)
	assert.Same(t, s, got)

	tr.Remove(s.ConnID)
	_, ok = tr.Get(s.ConnID)
	assert.False(t, ok)
	assert.Equal(t, 0, tr.Count())
}

func TestTrackerIdleExcludesSeatedSessions(t *testing.T) {
	tr := NewTracker()

	idle := tr.Create(models.Identity{ID: uuid.New(), DisplayName: "idle"}, func() {})
	seated := tr.Create(models.Identity{ID: uuid.New(), DisplayName: "seated"}, func() {})
	seated.RoomID = uuid.New()

	out := tr.Idle()
	require.Len(t, out, 1)
	assert.Equal(t, idle.ConnID, out[0].ConnID)
}

func TestSessionWriteNeverBlocks(t *testing.T) {
	s := &Session{
		ConnID: uuid.New(),
		Out:    make(chan map[string]interface{}, 2),
	}

	// Fill the buffer, then write past it; the overflow must be dropped
	// rather than blocking the caller.
	s.Write(map[string]interface{}{"type": "a"})
	s.Write(map[string]interface{}{"type": "b"})
	s.Write(map[string]interface{}{"type": "c"})

	assert.Len(t, s.Out, 2)
	first := <-s.Out
	assert.Equal(t, "a", first["type"])
}

func TestWriteErrorShape(t *testing.T) {
	s := &Session{
		ConnID: uuid.New(),
		Out:    make(chan map[string]interface{}, 1),
	}
	s.WriteError("room is full")

	msg := <-s.Out
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "room is full", msg["message"])
}
