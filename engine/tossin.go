package engine

import (
	"fmt"
	"sort"
)

// placeOnDiscard puts a card on top of the discard pile and opens or extends
// the toss-in window for its rank. byPlayerID becomes the window initiator
// when a new window opens.
func (e *Engine) placeOnDiscard(g *GameState, card Card, byPlayerID string) {
	g.DiscardPile = append(g.DiscardPile, card)
	e.openOrExtendTossIn(g, card.Rank, byPlayerID)
}

// openOrExtendTossIn implements step 1 of the cascade algorithm. A fresh
// window starts with ranks={r} and the ready-list pre-seeded with players
// who have called the endgame (they cannot react). Re-entry while a window
// is already open ADDS r to the rank set — never replaces — and clears the
// ready-list so a new reaction round begins.
func (e *Engine) openOrExtendTossIn(g *GameState, r Rank, byPlayerID string) {
	if g.TossIn == nil {
		g.TossIn = &ActiveTossIn{
			Ranks:                   []Rank{r},
			InitiatorID:             byPlayerID,
			OriginalPlayerIndex:     g.CurrentPlayerIndex,
			PlayersReadyForNextTurn: g.vintoCallerPreseed(),
			WaitingForInput:         true,
			FailedAttempts:          make(map[string]int),
		}
		e.obs.Event(EvTossInOpen, map[string]any{"rank": string(r), "initiator": byPlayerID})
		return
	}

	if !g.TossIn.HasRank(r) {
		g.TossIn.Ranks = append(g.TossIn.Ranks, r)
	}
	g.TossIn.PlayersReadyForNextTurn = g.vintoCallerPreseed()
	g.TossIn.WaitingForInput = true
	e.obs.Event(EvTossInExtend, map[string]any{"rank": string(r), "ranks": g.TossIn.Ranks})
}

// resetTossRound resets the window's per-round fields between successive
// rounds of the same window. The accumulated rank set persists until the
// window fully closes.
func (e *Engine) resetTossRound(g *GameState) {
	t := g.TossIn
	if t == nil {
		return
	}
	t.Participants = nil
	t.PlayersReadyForNextTurn = g.vintoCallerPreseed()
	t.WaitingForInput = true
}

// vintoCallerPreseed returns the ready-list seed: every player who has
// already called the endgame.
func (g *GameState) vintoCallerPreseed() []string {
	var ready []string
	for i := range g.Players {
		if g.Players[i].IsVintoCaller {
			ready = append(ready, g.Players[i].ID)
		}
	}
	return ready
}

// handleParticipateInTossIn applies one toss-in submission. Every named card
// must match a currently eligible rank; if ANY fails the whole submission is
// rejected: no cards are removed, one penalty card is drawn per attempted
// card, and the attempted cards become public knowledge.
func (e *Engine) handleParticipateInTossIn(g *GameState, a Action) error {
	t := g.TossIn
	idx := g.PlayerIndex(a.PlayerID)
	hand := g.Players[idx].Hand

	valid := true
	for _, pos := range a.Positions {
		if !t.HasRank(hand[pos].Rank) {
			valid = false
			break
		}
	}

	if !valid {
		for _, pos := range a.Positions {
			g.revealToAll(a.PlayerID, pos)
			e.drawPenaltyCard(g, idx)
		}
		t.FailedAttempts[a.PlayerID]++
		e.obs.Event(EvTossInRejected, map[string]any{
			"player": a.PlayerID, "attempted": len(a.Positions),
		})
		return nil
	}

	// Remove high-to-low so earlier removals cannot shift later positions.
	positions := append([]int(nil), a.Positions...)
	sort.Sort(sort.Reverse(sort.IntSlice(positions)))
	for _, pos := range positions {
		card := g.removeCardAt(idx, pos)
		g.DiscardPile = append(g.DiscardPile, card)
		if card.Actionable() {
			t.QueuedActions = append(t.QueuedActions, QueuedTossAction{
				PlayerID: a.PlayerID,
				Rank:     card.Rank,
				Position: pos,
				CardID:   card.ID,
			})
		}
	}

	alreadyIn := false
	for _, id := range t.Participants {
		if id == a.PlayerID {
			alreadyIn = true
			break
		}
	}
	if !alreadyIn {
		t.Participants = append(t.Participants, a.PlayerID)
	}

	e.obs.Event(EvTossInAccepted, map[string]any{
		"player": a.PlayerID, "count": len(positions), "queued": len(t.QueuedActions),
	})
	return nil
}

// handlePlayerTossInFinished records a readiness signal. Once the ready-list
// covers all players, the queue head (if any) is materialized as a new
// pending action for its owner; an empty queue leaves the orchestrator's
// post-action check to advance the turn.
func (e *Engine) handlePlayerTossInFinished(g *GameState, a Action) error {
	t := g.TossIn
	t.PlayersReadyForNextTurn = append(t.PlayersReadyForNextTurn, a.PlayerID)

	if len(t.PlayersReadyForNextTurn) < len(g.Players) {
		return nil
	}

	if len(t.QueuedActions) == 0 {
		// Window is done; maybeAdvanceTurn closes it.
		t.WaitingForInput = false
		return nil
	}

	entry := t.QueuedActions[0]
	t.QueuedActions = t.QueuedActions[1:]

	card, ok := g.findDiscardCard(entry.CardID)
	if !ok {
		return fmt.Errorf("queued card %s not found on discard pile", entry.CardID)
	}

	phase := ActionPhaseChoosing
	if card.Rank == RankKing {
		// The King goes straight to target selection; its action is in
		// use from the moment it is materialized.
		phase = ActionPhaseSelectingTarget
		card.Played = true
		g.markDiscardPlayed(card.ID)
	}

	g.Pending = &PendingAction{
		Card:          card,
		PlayerID:      entry.PlayerID,
		Phase:         phase,
		SwapPosition:  -1,
		FromQueue:     true,
		CardInDiscard: true,
	}
	g.SubPhase = SubPhaseTossQueueProcessing
	t.WaitingForInput = false

	e.obs.Event(EvTossInQueuePop, map[string]any{
		"player": entry.PlayerID, "rank": string(entry.Rank),
	})
	return nil
}

// handleFinishTossInPeriod is the administrative close: it resets the
// participant, queue, and ready fields but preserves the accumulated rank
// set. Only the window's initiator may invoke it; normal play closes the
// window implicitly through readiness signals.
func (e *Engine) handleFinishTossInPeriod(g *GameState, a Action) error {
	t := g.TossIn
	t.Participants = nil
	t.QueuedActions = nil
	t.PlayersReadyForNextTurn = g.vintoCallerPreseed()
	t.WaitingForInput = true
	return nil
}

// findDiscardCard returns the discard-pile card with the given ID, searching
// from the top.
func (g *GameState) findDiscardCard(cardID string) (Card, bool) {
	for i := len(g.DiscardPile) - 1; i >= 0; i-- {
		if g.DiscardPile[i].ID == cardID {
			return g.DiscardPile[i], true
		}
	}
	return Card{}, false
}

// markDiscardPlayed flips the played flag on the discard-pile copy of a card.
func (g *GameState) markDiscardPlayed(cardID string) {
	for i := len(g.DiscardPile) - 1; i >= 0; i-- {
		if g.DiscardPile[i].ID == cardID {
			g.DiscardPile[i].Played = true
			return
		}
	}
}

// drawPenaltyCard draws one penalty (PenaltyDrawCount cards, reshuffling
// first when the draw pile is empty) into the player's hand. The new cards
// are unknown to everyone.
func (e *Engine) drawPenaltyCard(g *GameState, playerIdx int) {
	for i := 0; i < g.Rules.PenaltyDrawCount; i++ {
		card, ok := g.drawFromPile()
		if !ok {
			e.obs.Warn("penalty draw with no cards available", map[string]any{
				"player": g.Players[playerIdx].ID,
			})
			return
		}
		g.Players[playerIdx].Hand = append(g.Players[playerIdx].Hand, card)
	}
	e.obs.Event(EvPenaltyDraw, map[string]any{"player": g.Players[playerIdx].ID})
}
