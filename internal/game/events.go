// internal/game/events.go
package game

import (
	"github.com/google/uuid"
)

// GameEventType represents the type of a game-related event broadcast via
// WebSockets.
type GameEventType string

const (
	EventGameSetup         GameEventType = "game_setup"          // Public: setup phase began.
	EventGameStart         GameEventType = "game_start"          // Public: playing phase began.
	EventPlayerTurn        GameEventType = "game_player_turn"    // Public: notification of the current player's turn.
	EventActionApplied     GameEventType = "action_applied"      // Public: an action succeeded (obfuscated details).
	EventPrivateActionFail GameEventType = "private_action_fail" // Private: the submitted action was rejected.
	EventPrivateReveal     GameEventType = "private_reveal"      // Private: card details revealed to one player.
	EventTossInOpened      GameEventType = "toss_in_opened"      // Public: a toss-in window opened or extended.
	EventTossInClosed      GameEventType = "toss_in_closed"      // Public: the toss-in window closed.
	EventPenalty           GameEventType = "penalty_draw"        // Public: a player drew penalty cards.
	EventVintoCalled       GameEventType = "vinto_called"        // Public: a player called Vinto.
	EventPrivateSyncState  GameEventType = "private_sync_state"  // Private: full game state sync for a player.
	EventPrivateSetupPeek  GameEventType = "private_setup_peek"  // Private: setup peek card details.
	EventGameEnd           GameEventType = "game_end"            // Public: game has ended, includes results.
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// EventCard identifies a card within a GameEvent payload, optionally
// including details. Unknown cards carry only the ID.
type EventCard struct {
	ID    string     `json:"id"`
	Rank  string     `json:"rank,omitempty"`
	Value *int       `json:"value,omitempty"`
	Idx   *int       `json:"idx,omitempty"`
	User  *EventUser `json:"user,omitempty"`
}

// GameEvent is the standard structure for broadcasting game state changes
// and actions.
type GameEvent struct {
	Type GameEventType `json:"type"`
	User *EventUser    `json:"user,omitempty"`
	Card *EventCard    `json:"card,omitempty"`

	Payload map[string]any `json:"payload,omitempty"`

	State *ObfGameState `json:"state,omitempty"`
}
