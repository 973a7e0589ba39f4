package models

import "github.com/google/uuid"

// Identity is the authenticated principal behind a connection. It is produced
// once at connect time and never changes for the lifetime of that connection.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
}

// User represents a row in the users table. Guest users are minted on the fly
// for connections that arrive without a valid token.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	DisplayName string    `json:"displayName"`
	IsGuest     bool      `json:"isGuest"`
}

// Identity derives the connection-facing identity from a user record.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, DisplayName: u.DisplayName}
}
