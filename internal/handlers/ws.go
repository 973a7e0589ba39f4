package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
	"github.com/whodunit-live/whodunit/internal/models"
	"github.com/whodunit-live/whodunit/internal/session"
)

// clientEvent is the envelope for every client -> server message.
type clientEvent struct {
	Type     string               `json:"type"`
	Settings *models.RoomSettings `json:"settings,omitempty"`
	RoomID   string               `json:"roomId,omitempty"`
	Text     string               `json:"text,omitempty"`
}

// WSHandler upgrades the connection, authenticates it, creates the player
// session, and runs the read loop. Whatever ends the read loop funnels into
// the one disconnect path so rooms never hold ghost players.
func WSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"whodunit"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "whodunit" {
			c.Close(BadSubprotocolError, "client must speak the whodunit subprotocol")
			return
		}

		identity, err := EnsureUser(w, r)
		if err != nil {
			logger.Warnf("authentication failed for %s: %v", r.RemoteAddr, err)
			c.Close(AuthenticationError, "authentication failed")
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		s := gs.Sessions.Create(identity, cancel)
		logger.Infof("user %s (%s) connected as session %s", identity.DisplayName, r.RemoteAddr, s.ConnID)

		// Greet with the current joinable-room list.
		s.Write(map[string]interface{}{
			"type":  "room:list",
			"rooms": gs.Rooms.ListJoinable(),
		})

		go writePump(ctx, c, s, logger)
		readPump(ctx, c, gs, s, logger)

		logger.Infof("session %s read loop exited, cleaning up", s.ConnID)
		gs.HandleDisconnect(s)
		cancel()
	}
}

// readPump consumes client events until the connection dies or the context
// is cancelled.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, s *session.Session, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("session %s: websocket closed normally", s.ConnID)
			} else if !strings.Contains(err.Error(), "context canceled") {
				logger.Warnf("session %s: read error: %v", s.ConnID, err)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		var ev clientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.WriteError("invalid JSON")
			continue
		}

		dispatch(gs, s, ev)
	}
}

// dispatch routes one client event. Events for a connection are handled
// strictly in arrival order; the pump does not read the next message until
// the current handler returns.
func dispatch(gs *GameServer, s *session.Session, ev clientEvent) {
	switch ev.Type {
	case "room:create":
		gs.HandleCreateRoom(s, ev.Settings)
	case "room:join":
		gs.HandleJoinRoom(s, ev.RoomID)
	case "room:leave":
		gs.HandleLeaveRoom(s)
	case "game:ready":
		gs.HandleReady(s)
	case "game:message":
		gs.HandleChat(s, ev.Text)
	case "game:chat_history_request":
		gs.HandleChatHistory(s)
	case "game:state_request":
		gs.HandleStateRequest(s)
	default:
		s.WriteError("unknown event type: " + ev.Type)
	}
}

// writePump drains the session's Out channel onto the socket and pings
// periodically so dead peers are detected even when idle.
func writePump(ctx context.Context, c *websocket.Conn, s *session.Session, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.Out:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("session %s: failed to marshal outgoing message: %v", s.ConnID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("session %s: write failed: %v", s.ConnID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("session %s: ping failed, assuming disconnect: %v", s.ConnID, err)
				return
			}
		}
	}
}
