// internal/game/actions.go
package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto/engine"
	"github.com/Lonli-Lokli/vinto/internal/models"
)

// wireActionTypes is the set of action types accepted from clients. Debug
// actions are deliberately absent: they are reachable only through the
// admin surface, never the game socket.
var wireActionTypes = map[engine.ActionType]bool{
	engine.ActionPeekSetupCard:        true,
	engine.ActionFinishSetup:          true,
	engine.ActionDrawCard:             true,
	engine.ActionTakeDiscard:          true,
	engine.ActionSwapCard:             true,
	engine.ActionDiscardCard:          true,
	engine.ActionUseCardAction:        true,
	engine.ActionSelectActionTarget:   true,
	engine.ActionConfirmPeek:          true,
	engine.ActionSkipPeek:             true,
	engine.ActionExecuteJackSwap:      true,
	engine.ActionSkipJackSwap:         true,
	engine.ActionExecuteQueenSwap:     true,
	engine.ActionSkipQueenSwap:        true,
	engine.ActionDeclareKingAction:    true,
	engine.ActionParticipateInTossIn:  true,
	engine.ActionPlayerTossInFinished: true,
	engine.ActionFinishTossInPeriod:   true,
	engine.ActionCallEndgame:          true,
	engine.ActionSetCoalitionLeader:   true,
}

// toEngineAction converts a wire action into an engine action for the given
// seat. Returns false for action types clients may not submit; the engine
// panics on unknown types, so the gate here is load-bearing.
func toEngineAction(seatID string, a models.GameAction) (engine.Action, bool) {
	t := engine.ActionType(a.Type)
	if !wireActionTypes[t] {
		return engine.Action{}, false
	}
	return engine.Action{
		Type:           t,
		PlayerID:       seatID,
		Position:       a.Position,
		TargetPlayerID: a.TargetPlayerID,
		Positions:      a.Positions,
		DeclaredRank:   engine.Rank(a.DeclaredRank),
	}, true
}

// adminActionTypes are reachable only for admin users through the admin
// message surface.
var adminActionTypes = map[engine.ActionType]bool{
	engine.ActionUpdateDifficulty: true,
	engine.ActionSetNextDrawCard:  true,
	engine.ActionSwapHandWithDeck: true,
}

// toAdminAction converts a wire action into a debug engine action.
func toAdminAction(seatID string, a models.GameAction) (engine.Action, bool) {
	t := engine.ActionType(a.Type)
	if !adminActionTypes[t] {
		return engine.Action{}, false
	}
	return engine.Action{
		Type:       t,
		PlayerID:   seatID,
		Rank:       engine.Rank(a.Rank),
		Difficulty: a.Difficulty,
	}, true
}

// HandleAdminAction routes a debug action. Only admin users get here; the
// server rejects admin messages from everyone else before calling in.
func (g *VintoGame) HandleAdminAction(playerID uuid.UUID, action models.GameAction) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.Started || g.State == nil {
		g.fireActionFail(playerID, "The game has not started yet.")
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil {
		return
	}
	engAction, ok := toAdminAction(player.SeatID, action)
	if !ok {
		g.fireActionFail(playerID, "Unknown admin action type.")
		return
	}
	g.applyAction(playerID, engAction)
}
