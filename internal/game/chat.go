package game

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/whodunit-live/whodunit/internal/models"
)

const (
	// MaxTranscript caps the in-memory transcript; older entries are
	// evicted silently.
	MaxTranscript = 100
	// MaxMessageLen is the longest accepted message in runes, measured
	// after trimming.
	MaxMessageLen = 500
)

// Chat input violations, surfaced to the sender only.
var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

// AppendMessage validates, attributes, and appends a chat message from the
// given connection, truncating the transcript to the most recent
// MaxTranscript entries. The returned message is what gets broadcast.
func (g *Game) AppendMessage(connID uuid.UUID, sender models.Identity, text string) (models.ChatMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.ChatMessage{}, ErrInvalidMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLen {
		return models.ChatMessage{}, ErrMessageTooLong
	}

	msg := models.ChatMessage{
		ID:         uuid.New(),
		GameID:     g.ID,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		Role:       g.roleOf(connID),
		Text:       trimmed,
		Timestamp:  time.Now(),
	}

	g.mu.Lock()
	g.messages = append(g.messages, msg)
	if len(g.messages) > MaxTranscript {
		g.messages = g.messages[len(g.messages)-MaxTranscript:]
	}
	g.mu.Unlock()

	return msg, nil
}

// History returns a snapshot of the current transcript in accept order.
func (g *Game) History() []models.ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.ChatMessage, len(g.messages))
	copy(out, g.messages)
	return out
}
