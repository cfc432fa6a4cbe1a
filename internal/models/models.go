// internal/models/models.go
package models

import (
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	IsEphemeral  bool      `json:"isEphemeral"` // guest accounts created for a single session
	CreatedAt    time.Time `json:"createdAt"`
}

// Player is a user's presence inside a single game: their connection state
// plus the seat they occupy.
type Player struct {
	ID        uuid.UUID       `json:"id"`
	User      *User           `json:"user,omitempty"`
	Conn      *websocket.Conn `json:"-"`
	Connected bool            `json:"connected"`
	SeatID    string          `json:"seatId"` // stable engine player ID for this seat
	IsBot     bool            `json:"isBot"`
}

// GameAction is the wire form of a player action received over the WebSocket.
// Fields beyond Type are read per action type; unknown fields are ignored.
type GameAction struct {
	Type           string `json:"type"`
	Position       int    `json:"position,omitempty"`
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	Positions      []int  `json:"positions,omitempty"`
	DeclaredRank   string `json:"declaredRank,omitempty"`
	Rank           string `json:"rank,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}
