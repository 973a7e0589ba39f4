package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in a game's transcript.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	SenderID   uuid.UUID `json:"senderId"`
	SenderName string    `json:"senderName"`
	Role       string    `json:"role"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}
