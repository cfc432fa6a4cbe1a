package engine

import (
	"fmt"
	"reflect"
)

// Result is the discriminated outcome of a Reduce call. On failure State is
// the unchanged input; callers must branch on Success.
type Result struct {
	Success bool
	State   *GameState
	Reason  string
}

// Engine applies actions to game states. It holds no game state of its own;
// the only dependency is the injected observer.
type Engine struct {
	obs Observer
}

// New returns an Engine tracing through obs. A nil obs disables tracing.
func New(obs Observer) *Engine {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Engine{obs: obs}
}

// Reduce validates the action, dispatches it to its handler on a private
// deep copy, then runs the post-action turn-advancement check. The input
// state is never mutated. An unhandled ActionType panics: that is a missing
// case, not a user mistake.
func (e *Engine) Reduce(state *GameState, a Action) Result {
	if err := validate(state, a); err != nil {
		return Result{Success: false, State: state, Reason: err.Error()}
	}

	next := state.Clone()

	var err error
	switch a.Type {
	case ActionPeekSetupCard:
		err = e.handlePeekSetupCard(next, a)
	case ActionFinishSetup:
		err = e.handleFinishSetup(next, a)
	case ActionDrawCard:
		err = e.handleDrawCard(next, a)
	case ActionTakeDiscard:
		err = e.handleTakeDiscard(next, a)
	case ActionSwapCard:
		err = e.handleSwapCard(next, a)
	case ActionDiscardCard:
		err = e.handleDiscardCard(next, a)
	case ActionUseCardAction:
		err = e.handleUseCardAction(next, a)
	case ActionSelectActionTarget:
		err = e.handleSelectActionTarget(next, a)
	case ActionConfirmPeek:
		err = e.handleConfirmPeek(next, a)
	case ActionSkipPeek:
		err = e.handleSkipPeek(next, a)
	case ActionExecuteJackSwap:
		err = e.handleJackSwapDecision(next, a, true)
	case ActionSkipJackSwap:
		err = e.handleJackSwapDecision(next, a, false)
	case ActionExecuteQueenSwap:
		err = e.handleQueenSwapDecision(next, a, true)
	case ActionSkipQueenSwap:
		err = e.handleQueenSwapDecision(next, a, false)
	case ActionDeclareKingAction:
		err = e.handleDeclareKing(next, a)
	case ActionParticipateInTossIn:
		err = e.handleParticipateInTossIn(next, a)
	case ActionPlayerTossInFinished:
		err = e.handlePlayerTossInFinished(next, a)
	case ActionFinishTossInPeriod:
		err = e.handleFinishTossInPeriod(next, a)
	case ActionCallEndgame:
		err = e.handleCallEndgame(next, a)
	case ActionSetCoalitionLeader:
		err = e.handleSetCoalitionLeader(next, a)
	case ActionUpdateDifficulty:
		err = e.handleUpdateDifficulty(next, a)
	case ActionSetNextDrawCard:
		err = e.handleSetNextDrawCard(next, a)
	case ActionSwapHandWithDeck:
		err = e.handleSwapHandWithDeck(next, a)
	case ActionNoOp:
		// Dedicated no-op: the one action allowed to change nothing.
		return Result{Success: true, State: next}
	default:
		panic(fmt.Sprintf("engine: reduce: unhandled action type %q", a.Type))
	}

	if err != nil {
		// Internal invariant violation inside a handler. Return the
		// original state untouched; live play must not crash.
		e.obs.Warn("handler failed", map[string]any{
			"action": string(a.Type), "player": a.PlayerID, "error": err.Error(),
		})
		return Result{Success: false, State: state, Reason: "internal: " + err.Error()}
	}

	// A validated non-noop action that changed nothing means a handler bug.
	if reflect.DeepEqual(state, next) {
		e.obs.Warn("handler produced no state change", map[string]any{
			"action": string(a.Type), "player": a.PlayerID,
		})
		return Result{Success: false, State: state, Reason: "internal: handler produced no state change"}
	}

	e.maybeAdvanceTurn(next)

	return Result{Success: true, State: next}
}

// maybeAdvanceTurn is the post-action check: the turn advances once the
// toss-in queue is drained, nothing is pending, and every player has
// signalled readiness.
func (e *Engine) maybeAdvanceTurn(g *GameState) {
	if g.Pending != nil || g.TossIn == nil {
		return
	}
	if len(g.TossIn.QueuedActions) != 0 {
		return
	}
	if len(g.TossIn.PlayersReadyForNextTurn) != len(g.Players) {
		return
	}
	e.advanceTurn(g)
}

// advanceTurn closes any open toss-in window, restores the frozen turn
// pointer, and moves to the next player. Turn and round counters increment
// on wraparound.
func (e *Engine) advanceTurn(g *GameState) {
	if g.TossIn != nil {
		// CurrentPlayerIndex is frozen for the whole window; restoring from
		// the window's snapshot keeps the post-window player correct even
		// if a handler misbehaved.
		g.CurrentPlayerIndex = g.TossIn.OriginalPlayerIndex
		e.obs.Event(EvTossInClosed, map[string]any{
			"ranks": g.TossIn.Ranks, "initiator": g.TossIn.InitiatorID,
		})
		g.TossIn = nil
	}
	g.Pending = nil

	g.TurnNumber++
	next := (g.CurrentPlayerIndex + 1) % len(g.Players)
	if next == 0 {
		g.RoundNumber++
	}
	g.CurrentPlayerIndex = next
	g.SubPhase = SubPhaseIdle

	if g.Phase == PhaseFinal && g.FinalTurnTriggered && g.Players[next].ID == g.VintoCallerID {
		// The turn has come back around to the caller: the round is done.
		g.RoundOver = true
		e.obs.Event(EvRoundOver, map[string]any{"caller": g.VintoCallerID})
	}

	e.obs.Event(EvTurnAdvanced, map[string]any{
		"turn": g.TurnNumber, "round": g.RoundNumber, "current": g.Players[next].ID,
	})
}
