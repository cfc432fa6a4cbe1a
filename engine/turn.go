package engine

import "fmt"

// handleDrawCard pops the top draw-pile card (reshuffling the discard pile
// into it first when empty) and holds it as the pending action card.
func (e *Engine) handleDrawCard(g *GameState, a Action) error {
	reshuffled := len(g.DrawPile) == 0
	card, ok := g.drawFromPile()
	if !ok {
		return fmt.Errorf("draw pile empty and no discard to reshuffle")
	}
	if reshuffled {
		e.obs.Event(EvReshuffle, map[string]any{"drawPile": len(g.DrawPile) + 1})
	}

	g.Pending = &PendingAction{
		Card:         card,
		PlayerID:     a.PlayerID,
		Phase:        ActionPhaseChoosing,
		SwapPosition: -1,
	}
	g.SubPhase = SubPhaseChoosing

	e.obs.Event(EvDrawCard, map[string]any{"player": a.PlayerID})
	return nil
}

// handleTakeDiscard takes the top discard card; taking it forces immediate
// use of its action, so the card is marked played and target selection
// begins at once.
func (e *Engine) handleTakeDiscard(g *GameState, a Action) error {
	card := g.DiscardPile[len(g.DiscardPile)-1]
	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	card.Played = true

	g.Pending = &PendingAction{
		Card:         card,
		PlayerID:     a.PlayerID,
		Phase:        ActionPhaseSelectingTarget,
		SwapPosition: -1,
	}
	g.SubPhase = SubPhaseSelecting

	e.obs.Event(EvTakeDiscard, map[string]any{"player": a.PlayerID, "rank": string(card.Rank)})
	e.obs.Event(EvUseAction, map[string]any{"player": a.PlayerID, "rank": string(card.Rank)})
	return nil
}

// handleSwapCard swaps the pending drawn card into the hand at the chosen
// position. The replaced card goes to the discard pile, opening or extending
// a toss-in window for its rank.
//
// An optional declared rank is checked against the replaced card: a correct
// declaration of an actionable card turns it into a new pending action for
// the same player; a wrong declaration costs a penalty draw.
func (e *Engine) handleSwapCard(g *GameState, a Action) error {
	p := g.Pending
	idx := g.PlayerIndex(a.PlayerID)
	player := &g.Players[idx]

	replaced := player.Hand[a.Position]
	player.Hand[a.Position] = p.Card
	p.SwapPosition = a.Position

	// The actor saw the drawn card; everyone else's knowledge of the slot
	// is now stale.
	g.forgetEverywhere(a.PlayerID, a.Position)
	g.revealToOwner(idx, a.Position)

	e.obs.Event(EvSwapCard, map[string]any{
		"player": a.PlayerID, "position": a.Position, "discarded": string(replaced.Rank),
	})

	declared := a.DeclaredRank
	correct := declared != "" && declared == replaced.Rank

	if declared != "" && !correct {
		// Wrong call on the outgoing card: penalty draw; the card is
		// public the moment it hits the discard pile anyway.
		e.drawPenaltyCard(g, idx)
	}

	e.placeOnDiscard(g, replaced, a.PlayerID)

	if correct && replaced.Actionable() {
		// Correct declaration of an actionable card: it becomes a new
		// pending action for the same player, exactly like a King hit.
		spent := replaced
		spent.Played = true
		g.markDiscardPlayed(spent.ID)
		g.Pending = &PendingAction{
			Card:          spent,
			PlayerID:      a.PlayerID,
			Phase:         ActionPhaseSelectingTarget,
			SwapPosition:  -1,
			CardInDiscard: true,
		}
		g.SubPhase = SubPhaseSelecting
		return nil
	}

	g.Pending = nil
	g.SubPhase = SubPhaseTossQueueActive
	return nil
}

// handleDiscardCard discards the pending card without swapping, forfeiting
// its action. A queue-origin card is already on the discard pile; declining
// it just finishes that queue entry.
func (e *Engine) handleDiscardCard(g *GameState, a Action) error {
	p := g.Pending

	e.obs.Event(EvDiscardCard, map[string]any{"player": a.PlayerID, "rank": string(p.Card.Rank)})

	if p.CardInDiscard {
		fromQueue := p.FromQueue
		g.Pending = nil
		g.SubPhase = SubPhaseTossQueueActive
		if fromQueue {
			e.resetTossRound(g)
		}
		return nil
	}

	card := p.Card
	g.Pending = nil
	e.placeOnDiscard(g, card, a.PlayerID)
	g.SubPhase = SubPhaseTossQueueActive
	return nil
}

// handleUseCardAction commits to using the pending card's action. The played
// flag flips the instant the action is used.
func (e *Engine) handleUseCardAction(g *GameState, a Action) error {
	p := g.Pending
	p.Card.Played = true
	if p.CardInDiscard {
		g.markDiscardPlayed(p.Card.ID)
	}
	p.Phase = ActionPhaseSelectingTarget
	if p.FromQueue {
		g.SubPhase = SubPhaseTossQueueProcessing
	} else {
		g.SubPhase = SubPhaseSelecting
	}

	e.obs.Event(EvUseAction, map[string]any{"player": a.PlayerID, "rank": string(p.Card.Rank)})
	return nil
}
