package models

import "github.com/google/uuid"

// RoomStatus is the lifecycle state of a room. The only legal transitions are
// Waiting -> Starting -> InProgress -> Finished, plus the single backward edge
// Starting -> Waiting when a countdown is cancelled or a start fails.
type RoomStatus string

const (
	StatusWaiting    RoomStatus = "waiting"
	StatusStarting   RoomStatus = "starting"
	StatusInProgress RoomStatus = "in_progress"
	StatusFinished   RoomStatus = "finished"
)

// RoomSettings are the creator-chosen knobs for a room.
type RoomSettings struct {
	IsPublic         bool   `json:"isPublic"`
	Difficulty       string `json:"difficulty"`
	TimeLimitMinutes int    `json:"timeLimitMinutes"`
}

// DefaultRoomSettings returns the settings applied when the creator sends none.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		IsPublic:         true,
		Difficulty:       "normal",
		TimeLimitMinutes: 30,
	}
}

// RoomSummary is the joinable-list projection of a room.
type RoomSummary struct {
	ID          uuid.UUID    `json:"id"`
	CreatorName string       `json:"creatorName"`
	PlayerCount int          `json:"playerCount"`
	MaxPlayers  int          `json:"maxPlayers"`
	Settings    RoomSettings `json:"settings"`
}

// PlayerInfo is the public roster entry broadcast in room:players_update.
type PlayerInfo struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Ready       bool      `json:"ready"`
	Role        string    `json:"role,omitempty"`
}
