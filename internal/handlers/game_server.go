package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/whodunit-live/whodunit/internal/archive"
	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/game"
	"github.com/whodunit-live/whodunit/internal/models"
	"github.com/whodunit-live/whodunit/internal/room"
	"github.com/whodunit-live/whodunit/internal/session"
)

// CountdownFrom is the starting tick of the launch countdown. Clients see
// CountdownFrom, CountdownFrom-1, ..., 0, then game:start.
const CountdownFrom = 5

// GameServer is the composition root for connection handling: it holds the
// room registry, the session tracker, the content catalog, active games, and
// the archive notifier, and orchestrates the ready/countdown/start protocol.
type GameServer struct {
	Logger   *logrus.Logger
	Rooms    *room.Registry
	Sessions *session.Tracker
	Catalog  *catalog.Catalog
	Games    *game.Store
	Archive  archive.Notifier

	CaseSelect game.CaseSelect

	// CountdownInterval is the tick cadence. Tests shrink it.
	CountdownInterval time.Duration
}

// NewGameServer wires a GameServer with the given catalog and archive.
func NewGameServer(logger *logrus.Logger, cat *catalog.Catalog, notifier archive.Notifier) *GameServer {
	if notifier == nil {
		notifier = archive.Nop{}
	}
	return &GameServer{
		Logger:            logger,
		Rooms:             room.NewRegistry(),
		Sessions:          session.NewTracker(),
		Catalog:           cat,
		Games:             game.NewStore(),
		Archive:           notifier,
		CaseSelect:        game.CaseSelectFixed,
		CountdownInterval: time.Second,
	}
}

// HandleCreateRoom creates a room with the sender as creator and first
// player. A sender already seated elsewhere is moved out first.
func (gs *GameServer) HandleCreateRoom(s *session.Session, settings *models.RoomSettings) {
	if s.RoomID != uuid.Nil {
		gs.leave(s, false)
	}

	applied := models.DefaultRoomSettings()
	if settings != nil {
		applied = *settings
	}

	r := gs.Rooms.Create(s, applied)

	r.Mu.Lock()
	state := r.StatePayloadUnsafe()
	r.Mu.Unlock()

	s.Write(map[string]interface{}{
		"type": "room:created",
		"room": state,
	})
	gs.broadcastRoomList()
}

// HandleJoinRoom seats the sender in an existing room.
func (gs *GameServer) HandleJoinRoom(s *session.Session, roomIDStr string) {
	roomID, err := uuid.Parse(roomIDStr)
	if err != nil {
		s.WriteError("invalid room id")
		return
	}

	// A move between rooms runs the full leave first so the old room's
	// occupants see the departure and any countdown cancellation.
	if s.RoomID != uuid.Nil && s.RoomID != roomID {
		gs.leave(s, false)
	}

	r, err := gs.Rooms.Join(s, roomID)
	if err != nil {
		s.WriteError(joinErrorMessage(err))
		return
	}

	r.Mu.Lock()
	joined := map[string]interface{}{
		"type":   "room:player_joined",
		"roomId": r.ID.String(),
		"player": s.Info(),
	}
	for _, other := range r.PlayersUnsafe() {
		if other.ConnID != s.ConnID {
			other.Write(joined)
		}
	}
	s.Write(map[string]interface{}{
		"type": "room:joined",
		"room": r.StatePayloadUnsafe(),
	})
	r.BroadcastUnsafe(r.PlayersUpdateUnsafe())
	r.Mu.Unlock()

	gs.broadcastRoomList()
}

func joinErrorMessage(err error) string {
	switch err {
	case room.ErrRoomNotFound:
		return "room not found"
	case room.ErrRoomFull:
		return "room is full"
	case room.ErrGameInProgress:
		return "game already in progress"
	default:
		return "failed to join room"
	}
}

// HandleLeaveRoom handles an explicit room:leave.
func (gs *GameServer) HandleLeaveRoom(s *session.Session) {
	gs.leave(s, false)
}

// HandleDisconnect runs when a connection drops for any reason. It follows
// the identical leave path as an explicit leave, then destroys the session.
// A vanished player must never leave a room that still counts them.
func (gs *GameServer) HandleDisconnect(s *session.Session) {
	gs.leave(s, true)
	gs.Sessions.Remove(s.ConnID)
}

// leave removes the sender from its room (if any) and broadcasts the
// aftermath to the remaining occupants. Countdown cancellation and creator
// hand-off happen inside the registry's leave path.
func (gs *GameServer) leave(s *session.Session, disconnected bool) {
	res, ok := gs.Rooms.Leave(s, disconnected)
	if !ok {
		return
	}

	if !res.RoomDeleted {
		eventType := "room:player_left"
		if disconnected {
			eventType = "room:player_disconnected"
		}
		r := res.Room
		r.Mu.Lock()
		leftMsg := map[string]interface{}{
			"type":        eventType,
			"roomId":      r.ID.String(),
			"playerId":    res.Left.ID.String(),
			"displayName": res.Left.DisplayName,
		}
		if res.NewCreator != nil {
			leftMsg["newCreatorId"] = res.NewCreator.ID.String()
		}
		r.BroadcastUnsafe(leftMsg)
		r.BroadcastUnsafe(r.PlayersUpdateUnsafe())
		r.Mu.Unlock()
	}

	if res.CountdownCancelled {
		gs.Logger.Infof("room %s: countdown cancelled, %s left during start", res.Room.ID, res.Left.DisplayName)
	}
	gs.broadcastRoomList()
}

// HandleReady toggles the sender's ready flag. Toggling while the countdown
// is already running is a deliberate no-op; a toggle that completes the
// four-ready condition flips the room to Starting and launches the countdown.
func (gs *GameServer) HandleReady(s *session.Session) {
	r, ok := gs.roomOf(s)
	if !ok {
		return
	}

	r.Mu.Lock()
	switch r.Status {
	case models.StatusStarting:
		r.Mu.Unlock()
		return
	case models.StatusWaiting:
		// fallthrough to the toggle
	default:
		r.Mu.Unlock()
		s.WriteError("game already in progress")
		return
	}

	s.Ready = !s.Ready
	r.BroadcastUnsafe(map[string]interface{}{
		"type":        "game:player_ready",
		"playerId":    s.Identity.ID.String(),
		"displayName": s.Identity.DisplayName,
		"ready":       s.Ready,
	})
	r.BroadcastUnsafe(r.PlayersUpdateUnsafe())

	if r.StartEligibleUnsafe() {
		r.Status = models.StatusStarting
		gs.beginCountdownUnsafe(r)
	}
	r.Mu.Unlock()
}

// beginCountdownUnsafe installs and launches the start countdown. Assumes
// the room lock is held and status has just flipped to Starting. Every tick
// re-checks status and handle identity under the lock, so a tick that fires
// after cancellation or room deletion is a silent no-op.
func (gs *GameServer) beginCountdownUnsafe(r *room.Room) {
	var cd *room.Countdown
	cd = room.StartCountdown(CountdownFrom, gs.CountdownInterval,
		func(remaining int) bool {
			r.Mu.Lock()
			if r.Status != models.StatusStarting || r.CountdownUnsafe() != cd {
				r.Mu.Unlock()
				return false
			}
			r.BroadcastUnsafe(map[string]interface{}{
				"type":      "game:countdown",
				"roomId":    r.ID.String(),
				"countdown": remaining,
			})
			r.Mu.Unlock()
			return true
		},
		func() {
			gs.startGame(r, cd)
		})
	r.SetCountdownUnsafe(cd)
	gs.Logger.Infof("room %s: all players ready, countdown started", r.ID)
}

// startGame materializes the Game after the countdown reaches zero. On any
// failure the room rolls back to Waiting with ready flags cleared and a
// room-wide start error; it is never left stuck in Starting.
func (gs *GameServer) startGame(r *room.Room, cd *room.Countdown) {
	r.Mu.Lock()

	// Stale countdown: the room was cancelled, restarted, or deleted while
	// the final tick was in flight.
	if r.Status != models.StatusStarting || r.CountdownUnsafe() != cd {
		r.Mu.Unlock()
		return
	}
	r.SetCountdownUnsafe(nil)

	players := r.PlayersUnsafe()
	roster := make([]game.RosterEntry, 0, len(players))
	for _, p := range players {
		roster = append(roster, game.RosterEntry{ConnID: p.ConnID, Identity: p.Identity})
	}

	g, err := game.Assign(gs.Catalog, gs.CaseSelect, r.ID, roster)
	if err != nil {
		r.Status = models.StatusWaiting
		r.ClearReadyUnsafe()
		r.BroadcastUnsafe(map[string]interface{}{
			"type":    "game:start_error",
			"roomId":  r.ID.String(),
			"message": "failed to start game, please ready up again",
		})
		r.BroadcastUnsafe(r.PlayersUpdateUnsafe())
		r.Mu.Unlock()
		gs.Logger.Errorf("room %s: start failed: %v", r.ID, err)
		return
	}

	r.Status = models.StatusInProgress
	r.GameID = g.ID
	r.CaseID = g.CaseID
	gs.Games.Add(g)

	byConn := make(map[uuid.UUID]*session.Session, len(players))
	for _, p := range players {
		byConn[p.ConnID] = p
	}
	for _, gp := range g.Players {
		if sess, ok := byConn[gp.ConnID]; ok {
			sess.Role = gp.Role
		}
	}

	caseDef, _ := gs.Catalog.Case(g.CaseID)
	allPlayers := publicRoster(g)
	for _, p := range players {
		view, _ := g.View(p.ConnID)
		p.Write(map[string]interface{}{
			"type":       "game:start",
			"gameId":     g.ID.String(),
			"playerData": view,
			"allPlayers": allPlayers,
			"case":       caseDef.Summarize(),
		})
	}
	r.Mu.Unlock()

	gs.Logger.Infof("room %s: game %s started with case %s", r.ID, g.ID, g.CaseID)
	gs.Archive.GameCreated(g.ID, r.ID, g.CaseID, len(g.Players))
	for _, p := range g.Roster() {
		gs.Archive.ParticipantAdded(g.ID, p.Identity, p.Role)
	}
	gs.broadcastRoomList()
}

func publicRoster(g *game.Game) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, map[string]interface{}{
			"id":          p.Identity.ID.String(),
			"displayName": p.Identity.DisplayName,
			"role":        p.Role,
		})
	}
	return out
}

// HandleChat validates and relays a chat message to the sender's room. The
// append and the broadcast happen under the room lock so delivery order
// matches transcript order.
func (gs *GameServer) HandleChat(s *session.Session, text string) {
	r, ok := gs.roomOf(s)
	if !ok {
		return
	}

	r.Mu.Lock()
	if r.Status != models.StatusInProgress {
		r.Mu.Unlock()
		s.WriteError("game has not started")
		return
	}
	g, ok := gs.Games.Get(r.GameID)
	if !ok {
		r.Mu.Unlock()
		s.WriteError("game not found")
		return
	}

	msg, err := g.AppendMessage(s.ConnID, s.Identity, text)
	if err != nil {
		r.Mu.Unlock()
		switch err {
		case game.ErrMessageTooLong:
			s.WriteError("message too long")
		default:
			s.WriteError("message is empty")
		}
		return
	}

	r.BroadcastUnsafe(map[string]interface{}{
		"type":    "game:chat_message",
		"message": msg,
	})
	r.Mu.Unlock()

	gs.Archive.ChatMessageSaved(msg)
}

// HandleChatHistory replays the current transcript to the requester only.
func (gs *GameServer) HandleChatHistory(s *session.Session) {
	g, ok := gs.gameOf(s)
	if !ok {
		s.WriteError("game has not started")
		return
	}
	s.Write(map[string]interface{}{
		"type":    "game:chat_history",
		"gameId":  g.ID.String(),
		"history": g.History(),
	})
}

// HandleStateRequest resyncs the requester: the room state while waiting,
// or the original game:start payload (private view included) once a game is
// running. The view was computed at start and is replayed as-is.
func (gs *GameServer) HandleStateRequest(s *session.Session) {
	r, ok := gs.roomOf(s)
	if !ok {
		return
	}

	r.Mu.Lock()
	status := r.Status
	gameID := r.GameID
	state := r.StatePayloadUnsafe()
	r.Mu.Unlock()

	if status != models.StatusInProgress {
		s.Write(map[string]interface{}{
			"type": "room:joined",
			"room": state,
		})
		return
	}

	g, ok := gs.Games.Get(gameID)
	if !ok {
		s.WriteError("game not found")
		return
	}
	view, _ := g.View(s.ConnID)
	caseDef, _ := gs.Catalog.Case(g.CaseID)
	s.Write(map[string]interface{}{
		"type":       "game:start",
		"gameId":     g.ID.String(),
		"playerData": view,
		"allPlayers": publicRoster(g),
		"case":       caseDef.Summarize(),
	})
}

// roomOf resolves the sender's current room, reporting an error to the
// sender when there is none.
func (gs *GameServer) roomOf(s *session.Session) (*room.Room, bool) {
	if s.RoomID == uuid.Nil {
		s.WriteError("not in a room")
		return nil, false
	}
	r, ok := gs.Rooms.Get(s.RoomID)
	if !ok {
		s.WriteError("room not found")
		return nil, false
	}
	return r, true
}

func (gs *GameServer) gameOf(s *session.Session) (*game.Game, bool) {
	r, ok := gs.roomOf(s)
	if !ok {
		return nil, false
	}
	r.Mu.Lock()
	gameID := r.GameID
	r.Mu.Unlock()
	if gameID == uuid.Nil {
		return nil, false
	}
	return gs.Games.Get(gameID)
}

// broadcastRoomList pushes the joinable-room list to every connection idling
// outside a room. Best-effort; no ordering guarantee across rooms.
func (gs *GameServer) broadcastRoomList() {
	list := gs.Rooms.ListJoinable()
	msg := map[string]interface{}{
		"type":  "room:list",
		"rooms": list,
	}
	for _, s := range gs.Sessions.Idle() {
		s.Write(msg)
	}
}

// StartJanitor runs the periodic stale-room sweep for the life of the
// process. Best-effort housekeeping, not correctness-critical.
func (gs *GameServer) StartJanitor(interval, maxAge time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for range t.C {
			if n := gs.Rooms.SweepOlderThan(maxAge); n > 0 {
				gs.Logger.Infof("janitor: swept %d stale room(s)", n)
				gs.broadcastRoomList()
			}
		}
	}()
}
