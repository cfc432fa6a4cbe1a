package engine

// ActionType enumerates the closed action vocabulary. The validator and the
// dispatcher both switch exhaustively over this set; an unknown value is a
// programming error and panics.
type ActionType string

const (
	// Setup phase.
	ActionPeekSetupCard ActionType = "peek-setup-card"
	ActionFinishSetup   ActionType = "finish-setup"

	// Turn start.
	ActionDrawCard    ActionType = "draw-card"
	ActionTakeDiscard ActionType = "take-discard"

	// Post-draw.
	ActionSwapCard      ActionType = "swap-card"
	ActionDiscardCard   ActionType = "discard-card"
	ActionUseCardAction ActionType = "use-card-action"

	// Resolution.
	ActionSelectActionTarget ActionType = "select-action-target"
	ActionConfirmPeek        ActionType = "confirm-peek"
	ActionSkipPeek           ActionType = "skip-peek"
	ActionExecuteJackSwap    ActionType = "execute-jack-swap"
	ActionSkipJackSwap       ActionType = "skip-jack-swap"
	ActionExecuteQueenSwap   ActionType = "execute-queen-swap"
	ActionSkipQueenSwap      ActionType = "skip-queen-swap"
	ActionDeclareKingAction  ActionType = "declare-king-action"

	// Toss-in window.
	ActionParticipateInTossIn  ActionType = "participate-in-toss-in"
	ActionPlayerTossInFinished ActionType = "player-toss-in-finished"
	ActionFinishTossInPeriod   ActionType = "finish-toss-in-period"

	// Endgame.
	ActionCallEndgame        ActionType = "call-endgame"
	ActionSetCoalitionLeader ActionType = "set-coalition-leader"

	// Config/debug — outside the correctness surface.
	ActionUpdateDifficulty ActionType = "update-difficulty"
	ActionSetNextDrawCard  ActionType = "set-next-draw-card"
	ActionSwapHandWithDeck ActionType = "swap-hand-with-deck"
	ActionNoOp             ActionType = "no-op"
)

// Action is one submitted player action. Only the fields relevant to the
// Type are read; the rest are ignored.
type Action struct {
	Type     ActionType `json:"type"`
	PlayerID string     `json:"playerId"`

	// Position is a hand index (peek-setup-card, swap-card,
	// select-action-target).
	Position int `json:"position,omitempty"`
	// TargetPlayerID names the targeted player (select-action-target,
	// set-coalition-leader gets the leader here too).
	TargetPlayerID string `json:"targetPlayerId,omitempty"`
	// Positions lists hand indices for participate-in-toss-in.
	Positions []int `json:"positions,omitempty"`
	// DeclaredRank is read by declare-king-action and optionally swap-card.
	DeclaredRank Rank `json:"declaredRank,omitempty"`
	// Rank is the forced top card for set-next-draw-card.
	Rank Rank `json:"rank,omitempty"`
	// Difficulty is read by update-difficulty.
	Difficulty string `json:"difficulty,omitempty"`
}

// allActionTypes is used by tests to verify validator/dispatch exhaustiveness.
var allActionTypes = []ActionType{
	ActionPeekSetupCard, ActionFinishSetup,
	ActionDrawCard, ActionTakeDiscard,
	ActionSwapCard, ActionDiscardCard, ActionUseCardAction,
	ActionSelectActionTarget, ActionConfirmPeek, ActionSkipPeek,
	ActionExecuteJackSwap, ActionSkipJackSwap,
	ActionExecuteQueenSwap, ActionSkipQueenSwap,
	ActionDeclareKingAction,
	ActionParticipateInTossIn, ActionPlayerTossInFinished, ActionFinishTossInPeriod,
	ActionCallEndgame, ActionSetCoalitionLeader,
	ActionUpdateDifficulty, ActionSetNextDrawCard, ActionSwapHandWithDeck, ActionNoOp,
}
