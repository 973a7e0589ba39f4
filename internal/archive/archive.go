// Package archive sends fire-and-forget persistence notifications to a Redis
// queue for an out-of-process consumer. A failed or missing archive never
// affects in-memory room or game state.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/whodunit-live/whodunit/internal/models"
)

// DefaultQueueName is the Redis list the service pushes records to.
const DefaultQueueName = "whodunit_archive"

// Record kinds pushed to the queue.
const (
	KindGameCreated      = "game_created"
	KindParticipantAdded = "participant_added"
	KindChatMessage      = "chat_message"
)

// Record is the envelope for one archive notification.
type Record struct {
	Kind      string                 `json:"kind"`
	GameID    uuid.UUID              `json:"game_id"`
	RoomID    uuid.UUID              `json:"room_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Notifier is the PersistenceStore boundary. Implementations must never
// block gameplay; the redis implementation pushes from a goroutine.
type Notifier interface {
	GameCreated(gameID, roomID uuid.UUID, caseID string, playerCount int)
	ParticipantAdded(gameID uuid.UUID, identity models.Identity, role string)
	ChatMessageSaved(msg models.ChatMessage)
}

// Nop is the no-archive implementation used when REDIS_ADDR is unset.
type Nop struct{}

func (Nop) GameCreated(uuid.UUID, uuid.UUID, string, int)       {}
func (Nop) ParticipantAdded(uuid.UUID, models.Identity, string) {}
func (Nop) ChatMessageSaved(models.ChatMessage)                 {}

// Redis pushes records onto a Redis list.
type Redis struct {
	client *redis.Client
	queue  string
	logger *logrus.Logger
}

// ConnectRedis builds a Redis-backed notifier from REDIS_ADDR, REDIS_DB, and
// ARCHIVE_QUEUE_NAME. Fails if the server is unreachable at startup; callers
// typically fall back to Nop.
func ConnectRedis(logger *logrus.Logger) (*Redis, error) {
	addr := getEnv("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR not set")
	}
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &Redis{
		client: client,
		queue:  getEnv("ARCHIVE_QUEUE_NAME", DefaultQueueName),
		logger: logger,
	}, nil
}

func (a *Redis) push(rec Record) {
	go func() {
		data, err := json.Marshal(rec)
		if err != nil {
			a.logger.Warnf("archive: failed to marshal %s record: %v", rec.Kind, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.client.RPush(ctx, a.queue, data).Err(); err != nil {
			a.logger.Warnf("archive: rpush %s failed: %v", rec.Kind, err)
		}
	}()
}

// GameCreated records a new game start.
func (a *Redis) GameCreated(gameID, roomID uuid.UUID, caseID string, playerCount int) {
	a.push(Record{
		Kind:   KindGameCreated,
		GameID: gameID,
		RoomID: roomID,
		Payload: map[string]interface{}{
			"case_id":      caseID,
			"player_count": playerCount,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

// ParticipantAdded records one seated player with their assigned role.
func (a *Redis) ParticipantAdded(gameID uuid.UUID, identity models.Identity, role string) {
	a.push(Record{
		Kind:   KindParticipantAdded,
		GameID: gameID,
		Payload: map[string]interface{}{
			"user_id":      identity.ID.String(),
			"display_name": identity.DisplayName,
			"role":         role,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

// ChatMessageSaved records an accepted chat message.
func (a *Redis) ChatMessageSaved(msg models.ChatMessage) {
	a.push(Record{
		Kind:   KindChatMessage,
		GameID: msg.GameID,
		Payload: map[string]interface{}{
			"message_id": msg.ID.String(),
			"sender_id":  msg.SenderID.String(),
			"role":       msg.Role,
			"text":       msg.Text,
			"sent_at":    msg.Timestamp.UnixMilli(),
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
