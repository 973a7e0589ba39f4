// internal/room/registry_test.go
package room

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whodunit-live/whodunit/internal/models"
	"github.com/whodunit-live/whodunit/internal/session"
)

// newTestSession builds a session with a buffered out channel so broadcasts
// during registry operations never block or drop.
func newTestSession(name string) *session.Session {
	return &session.Session{
		ConnID:   uuid.New(),
		Identity: models.Identity{ID: uuid.New(), DisplayName: name},
		JoinedAt: time.Now(),
		Out:      make(chan map[string]interface{}, 64),
	}
}

func TestCreateSeatsCreator(t *testing.T) {
	reg := NewRegistry()
	creator := newTestSession("alice")

	r := reg.Create(creator, models.DefaultRoomSettings())

	require.NotNil(t, r)
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, creator.Identity, r.Creator)
	assert.Equal(t, r.ID, creator.RoomID)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, models.StatusWaiting, r.Status)
	assert.Equal(t, 1, r.PlayerCountUnsafe())
	assert.True(t, r.MemberUnsafe(creator.ConnID))
}

func TestJoinUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	s := newTestSession("bob")

	_, err := reg.Join(s, uuid.New())
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, uuid.Nil, s.RoomID)
}

func TestJoinFullRoom(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create(newTestSession("p0"), models.DefaultRoomSettings())
	for i := 1; i < MaxPlayers; i++ {
		_, err := reg.Join(newTestSession("p"), r.ID)
		require.NoError(t, err)
	}

	fifth := newTestSession("fifth")
	_, err := reg.Join(fifth, r.ID)
	assert.ErrorIs(t, err, ErrRoomFull)
	assert.Equal(t, uuid.Nil, fifth.RoomID)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, MaxPlayers, r.PlayerCountUnsafe())
}

func TestJoinInProgressRoom(t *testing.T) {
	reg := NewRegistry()
	r := reg.Create(newTestSession("host"), models.DefaultRoomSettings())

	r.Mu.Lock()
	r.Status = models.StatusInProgress
	r.Mu.Unlock()

	_, err := reg.Join(newTestSession("late"), r.ID)
	assert.ErrorIs(t, err, ErrGameInProgress)
}

func TestJoinIsIdempotentForMembers(t *testing.T) {
	reg := NewRegistry()
	s := newTestSession("host")
	r := reg.Create(s, models.DefaultRoomSettings())

	again, err := reg.Join(s, r.ID)
	require.NoError(t, err)
	assert.Same(t, r, again)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, 1, r.PlayerCountUnsafe())
}

func TestJoinMovesBetweenRooms(t *testing.T) {
	reg := NewRegistry()
	first := reg.Create(newTestSession("a"), models.DefaultRoomSettings())
	second := reg.Create(newTestSession("b"), models.DefaultRoomSettings())

	mover := newTestSession("mover")
	_, err := reg.Join(mover, first.ID)
	require.NoError(t, err)

	_, err = reg.Join(mover, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, mover.RoomID)

	first.Mu.Lock()
	assert.False(t, first.MemberUnsafe(mover.ConnID))
	first.Mu.Unlock()

	second.Mu.Lock()
	assert.True(t, second.MemberUnsafe(mover.ConnID))
	second.Mu.Unlock()
}

func TestLeaveHandsCreatorToLongestPresent(t *testing.T) {
	reg := NewRegistry()
	host := newTestSession("host")
	r := reg.Create(host, models.DefaultRoomSettings())

	second := newTestSession("second")
	third := newTestSession("third")
	_, err := reg.Join(second, r.ID)
	require.NoError(t, err)
	_, err = reg.Join(third, r.ID)
	require.NoError(t, err)

	res, ok := reg.Leave(host, false)
	require.True(t, ok)
	require.NotNil(t, res.NewCreator)
	assert.Equal(t, second.Identity.ID, res.NewCreator.ID)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, second.Identity, r.Creator)
}

func TestLeaveNonCreatorKeepsCreator(t *testing.T) {
	reg := NewRegistry()
	host := newTestSession("host")
	r := reg.Create(host, models.DefaultRoomSettings())
	other := newTestSession("other")
	_, err := reg.Join(other, r.ID)
	require.NoError(t, err)

	res, ok := reg.Leave(other, false)
	require.True(t, ok)
	assert.Nil(t, res.NewCreator)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, host.Identity, r.Creator)
}

func TestLeaveLastPlayerDeletesRoom(t *testing.T) {
	reg := NewRegistry()
	host := newTestSession("host")
	r := reg.Create(host, models.DefaultRoomSettings())
	require.Equal(t, 1, reg.Count())

	res, ok := reg.Leave(host, false)
	require.True(t, ok)
	assert.True(t, res.RoomDeleted)
	assert.Equal(t, 0, reg.Count())
	assert.Equal(t, uuid.Nil, host.RoomID)

	_, found := reg.Get(r.ID)
	assert.False(t, found)
}

func TestLeaveDuringStartingCancelsCountdown(t *testing.T) {
	reg := NewRegistry()
	host := newTestSession("host")
	r := reg.Create(host, models.DefaultRoomSettings())

	others := make([]*session.Session, 0, MaxPlayers-1)
	for i := 1; i < MaxPlayers; i++ {
		s := newTestSession("p")
		_, err := reg.Join(s, r.ID)
		require.NoError(t, err)
		others = append(others, s)
	}

	// Simulate the coordination layer having flipped the room to Starting.
	r.Mu.Lock()
	host.Ready = true
	for _, s := range others {
		s.Ready = true
	}
	r.Status = models.StatusStarting
	r.SetCountdownUnsafe(StartCountdown(5, time.Hour, func(int) bool { return true }, func() {}))
	r.Mu.Unlock()

	res, ok := reg.Leave(others[0], true)
	require.True(t, ok)
	assert.True(t, res.Disconnected)
	assert.True(t, res.CountdownCancelled)

	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Equal(t, models.StatusWaiting, r.Status)
	assert.Nil(t, r.CountdownUnsafe())
	assert.Equal(t, 0, r.ReadyCountUnsafe(), "remaining ready flags must clear")
}

func TestLeaveWhenNotInRoom(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.Leave(newTestSession("ghost"), false)
	assert.False(t, ok)
}

func TestStartEligibleRequiresFullReadyTable(t *testing.T) {
	reg := NewRegistry()
	host := newTestSession("host")
	r := reg.Create(host, models.DefaultRoomSettings())

	sessions := []*session.Session{host}
	for i := 1; i < MaxPlayers; i++ {
		s := newTestSession("p")
		_, err := reg.Join(s, r.ID)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	r.Mu.Lock()
	defer r.Mu.Unlock()

	// All seated, none ready.
	assert.False(t, r.StartEligibleUnsafe())

	// Three of four ready.
	for _, s := range sessions[:MaxPlayers-1] {
		s.Ready = true
	}
	assert.False(t, r.StartEligibleUnsafe())

	// All four ready.
	sessions[MaxPlayers-1].Ready = true
	assert.True(t, r.StartEligibleUnsafe())
}

func TestListJoinableFilters(t *testing.T) {
	reg := NewRegistry()

	open := reg.Create(newTestSession("open"), models.DefaultRoomSettings())

	private := models.DefaultRoomSettings()
	private.IsPublic = false
	reg.Create(newTestSession("private"), private)

	running := reg.Create(newTestSession("running"), models.DefaultRoomSettings())
	running.Mu.Lock()
	running.Status = models.StatusInProgress
	running.Mu.Unlock()

	full := reg.Create(newTestSession("full"), models.DefaultRoomSettings())
	for i := 1; i < MaxPlayers; i++ {
		_, err := reg.Join(newTestSession("p"), full.ID)
		require.NoError(t, err)
	}

	list := reg.ListJoinable()
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
	assert.Equal(t, 1, list[0].PlayerCount)
	assert.Equal(t, MaxPlayers, list[0].MaxPlayers)
}

func TestSweepOlderThan(t *testing.T) {
	reg := NewRegistry()
	stale := reg.Create(newTestSession("stale"), models.DefaultRoomSettings())
	staleOccupant := newTestSession("occupant")
	_, err := reg.Join(staleOccupant, stale.ID)
	require.NoError(t, err)

	fresh := reg.Create(newTestSession("fresh"), models.DefaultRoomSettings())

	stale.Mu.Lock()
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	stale.Mu.Unlock()

	n := reg.SweepOlderThan(time.Hour)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, reg.Count())
	assert.Equal(t, uuid.Nil, staleOccupant.RoomID)

	_, found := reg.Get(stale.ID)
	assert.False(t, found)
	_, found = reg.Get(fresh.ID)
	assert.True(t, found)
}
