// internal/game/chat_test.go
package game

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whodunit-live/whodunit/internal/catalog"
	"github.com/whodunit-live/whodunit/internal/models"
)

func newChatGame(t *testing.T) (*Game, []RosterEntry) {
	t.Helper()
	roster := testRoster(catalog.RoleCount)
	g, err := Assign(catalog.Builtin(), CaseSelectFixed, uuid.New(), roster)
	require.NoError(t, err)
	return g, roster
}

func TestAppendMessageAttributesSenderRole(t *testing.T) {
	g, roster := newChatGame(t)
	sender := roster[2]

	msg, err := g.AppendMessage(sender.ConnID, sender.Identity, "  found something in the east wing  ")
	require.NoError(t, err)

	assert.Equal(t, "found something in the east wing", msg.Text, "whitespace must be trimmed")
	assert.Equal(t, sender.Identity.ID, msg.SenderID)
	assert.Equal(t, sender.Identity.DisplayName, msg.SenderName)
	assert.Equal(t, g.roleOf(sender.ConnID), msg.Role)
	assert.Equal(t, g.ID, msg.GameID)
	assert.NotEqual(t, uuid.Nil, msg.ID)
}

func TestAppendMessageRejectsEmpty(t *testing.T) {
	g, roster := newChatGame(t)

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := g.AppendMessage(roster[0].ConnID, roster[0].Identity, text)
		assert.ErrorIs(t, err, ErrInvalidMessage)
	}
	assert.Empty(t, g.History())
}

func TestAppendMessageLengthLimit(t *testing.T) {
	g, roster := newChatGame(t)

	atLimit := strings.Repeat("a", MaxMessageLen)
	_, err := g.AppendMessage(roster[0].ConnID, roster[0].Identity, atLimit)
	assert.NoError(t, err)

	_, err = g.AppendMessage(roster[0].ConnID, roster[0].Identity, atLimit+"a")
	assert.ErrorIs(t, err, ErrMessageTooLong)

	// Trailing whitespace does not count against the limit.
	_, err = g.AppendMessage(roster[0].ConnID, roster[0].Identity, atLimit+"   ")
	assert.NoError(t, err)

	// The limit counts runes, not bytes: a multibyte message of exactly
	// MaxMessageLen characters is accepted.
	wide := strings.Repeat("謎", MaxMessageLen)
	_, err = g.AppendMessage(roster[0].ConnID, roster[0].Identity, wide)
	assert.NoError(t, err)

	_, err = g.AppendMessage(roster[0].ConnID, roster[0].Identity, wide+"謎")
	assert.ErrorIs(t, err, ErrMessageTooLong)

	assert.Len(t, g.History(), 3)
}

func TestTranscriptKeepsMostRecentHundred(t *testing.T) {
	g, roster := newChatGame(t)
	sender := roster[0]

	total := MaxTranscript + 50
	for i := 0; i < total; i++ {
		_, err := g.AppendMessage(sender.ConnID, sender.Identity, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	history := g.History()
	require.Len(t, history, MaxTranscript)
	assert.Equal(t, fmt.Sprintf("message %d", total-MaxTranscript), history[0].Text)
	assert.Equal(t, fmt.Sprintf("message %d", total-1), history[len(history)-1].Text)

	// Order is preserved across the eviction.
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestHistoryReturnsSnapshot(t *testing.T) {
	g, roster := newChatGame(t)
	_, err := g.AppendMessage(roster[0].ConnID, roster[0].Identity, "first")
	require.NoError(t, err)

	snap := g.History()
	snap[0].Text = "tampered"

	assert.Equal(t, "first", g.History()[0].Text)
}

func TestAppendMessageFromOutsiderHasNoRole(t *testing.T) {
	g, _ := newChatGame(t)
	outsider := models.Identity{ID: uuid.New(), DisplayName: "ghost"}

	msg, err := g.AppendMessage(uuid.New(), outsider, "hello")
	require.NoError(t, err)
	assert.Empty(t, msg.Role)
}
