package engine

// awaitingSubPhase picks the sub-phase for a pending action that is waiting
// on a terminal decision: queue-origin resolutions stay in queue processing.
func awaitingSubPhase(p *PendingAction) SubPhase {
	if p.FromQueue {
		return SubPhaseTossQueueProcessing
	}
	return SubPhaseAwaitingAction
}

// handleSelectActionTarget accumulates targets for the pending action card.
// Multi-step cards (J, Q, K) take targets incrementally; the step is
// determined by how many targets have been collected so far.
func (e *Engine) handleSelectActionTarget(g *GameState, a Action) error {
	p := g.Pending
	targetIdx := g.PlayerIndex(a.TargetPlayerID)

	switch p.Card.Rank {
	case RankSeven, RankEight:
		card := g.Players[targetIdx].Hand[a.Position]
		g.revealToOwner(targetIdx, a.Position)
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: a.Position, Card: &card})
		g.SubPhase = awaitingSubPhase(p)
		e.obs.Event(EvReveal, map[string]any{
			"player": a.PlayerID, "owner": a.TargetPlayerID, "position": a.Position, "scope": "owner",
		})

	case RankNine, RankTen:
		card := g.Players[targetIdx].Hand[a.Position]
		g.revealToPlayer(a.PlayerID, a.TargetPlayerID, a.Position)
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: a.Position, Card: &card})
		g.SubPhase = awaitingSubPhase(p)
		e.obs.Event(EvReveal, map[string]any{
			"player": a.PlayerID, "owner": a.TargetPlayerID, "position": a.Position, "scope": "actor",
		})

	case RankJack:
		// Blind: no reveal at any step.
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: a.Position})
		if len(p.Targets) == 2 {
			g.SubPhase = awaitingSubPhase(p)
		}

	case RankQueen:
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: a.Position})
		if len(p.Targets) == 2 {
			// Both targets chosen: reveal both to the actor, who then
			// executes or skips the swap.
			for i := range p.Targets {
				t := &p.Targets[i]
				ownerIdx := g.PlayerIndex(t.PlayerID)
				card := g.Players[ownerIdx].Hand[t.Position]
				t.Card = &card
				g.revealToPlayer(a.PlayerID, t.PlayerID, t.Position)
				e.obs.Event(EvReveal, map[string]any{
					"player": a.PlayerID, "owner": t.PlayerID, "position": t.Position, "scope": "actor",
				})
			}
			g.SubPhase = awaitingSubPhase(p)
		}

	case RankKing:
		// No reveal: the declaration is checked against the actual card,
		// independent of what anyone has seen.
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: a.Position})
		g.SubPhase = awaitingSubPhase(p)

	case RankAce:
		// Terminal in one step: the target draws a penalty card.
		p.Targets = append(p.Targets, Target{PlayerID: a.TargetPlayerID, Position: -1})
		e.drawPenaltyCard(g, targetIdx)
		e.completePending(g)
	}
	return nil
}

// handleConfirmPeek acknowledges a revealed peek and finishes the action.
func (e *Engine) handleConfirmPeek(g *GameState, a Action) error {
	e.completePending(g)
	return nil
}

// handleSkipPeek forgoes the peek entirely; nothing is revealed.
func (e *Engine) handleSkipPeek(g *GameState, a Action) error {
	e.completePending(g)
	return nil
}

// handleJackSwapDecision executes or skips the Jack's blind swap. Executing
// swaps the two targeted cards sight unseen; both positions lose known
// status for everyone.
func (e *Engine) handleJackSwapDecision(g *GameState, a Action, execute bool) error {
	p := g.Pending
	if execute {
		t1, t2 := p.Targets[0], p.Targets[1]
		i1 := g.PlayerIndex(t1.PlayerID)
		i2 := g.PlayerIndex(t2.PlayerID)
		g.Players[i1].Hand[t1.Position], g.Players[i2].Hand[t2.Position] =
			g.Players[i2].Hand[t2.Position], g.Players[i1].Hand[t1.Position]
		g.forgetEverywhere(t1.PlayerID, t1.Position)
		g.forgetEverywhere(t2.PlayerID, t2.Position)
		e.obs.Event(EvBlindSwap, map[string]any{
			"player": a.PlayerID,
			"first":  t1.PlayerID, "firstPos": t1.Position,
			"second": t2.PlayerID, "secondPos": t2.Position,
		})
	}
	e.completePending(g)
	return nil
}

// handleQueenSwapDecision executes or skips the Queen's swap. Both cards
// were revealed to the actor at selection time, so after an executed swap
// the actor still knows both positions; everyone else's knowledge is gone.
func (e *Engine) handleQueenSwapDecision(g *GameState, a Action, execute bool) error {
	p := g.Pending
	if execute {
		t1, t2 := p.Targets[0], p.Targets[1]
		i1 := g.PlayerIndex(t1.PlayerID)
		i2 := g.PlayerIndex(t2.PlayerID)
		g.Players[i1].Hand[t1.Position], g.Players[i2].Hand[t2.Position] =
			g.Players[i2].Hand[t2.Position], g.Players[i1].Hand[t1.Position]
		g.forgetEverywhere(t1.PlayerID, t1.Position)
		g.forgetEverywhere(t2.PlayerID, t2.Position)
		g.revealToPlayer(a.PlayerID, t1.PlayerID, t1.Position)
		g.revealToPlayer(a.PlayerID, t2.PlayerID, t2.Position)
	}
	e.completePending(g)
	return nil
}

// handleDeclareKing resolves the King's declaration against the actual rank
// of the targeted card at declaration time.
//
// Correct: the card leaves its hand for the discard pile and, if actionable,
// immediately becomes a new pending action for the same player; the window's
// rank set gains both K and the declared rank. Wrong: the card stays in
// hand, is revealed to all, and the actor draws one penalty card; only K
// joins the rank set. This is a forward-only punitive branch, never an
// error.
func (e *Engine) handleDeclareKing(g *GameState, a Action) error {
	p := g.Pending
	t := p.Targets[0]
	targetIdx := g.PlayerIndex(t.PlayerID)
	actorIdx := g.PlayerIndex(a.PlayerID)

	actual := g.Players[targetIdx].Hand[t.Position]
	correct := a.DeclaredRank == actual.Rank

	fromQueue := p.FromQueue
	kingCard := p.Card
	kingInDiscard := p.CardInDiscard
	g.Pending = nil

	e.obs.Event(EvKingDeclare, map[string]any{
		"player": a.PlayerID, "declared": string(a.DeclaredRank), "correct": correct,
	})

	// The spent King lands first (queue-origin Kings already sit on the pile).
	if !kingInDiscard {
		e.placeOnDiscard(g, kingCard, a.PlayerID)
	}

	if !correct {
		g.revealToAll(t.PlayerID, t.Position)
		e.drawPenaltyCard(g, actorIdx)
		g.SubPhase = SubPhaseTossQueueActive
		if fromQueue {
			e.resetTossRound(g)
		}
		return nil
	}

	removed := g.removeCardAt(targetIdx, t.Position)
	e.placeOnDiscard(g, removed, a.PlayerID)

	if removed.Actionable() {
		spent := removed
		spent.Played = true
		g.markDiscardPlayed(spent.ID)
		g.Pending = &PendingAction{
			Card:          spent,
			PlayerID:      a.PlayerID,
			Phase:         ActionPhaseSelectingTarget,
			SwapPosition:  -1,
			FromQueue:     fromQueue,
			CardInDiscard: true,
		}
		if fromQueue {
			g.SubPhase = SubPhaseTossQueueProcessing
		} else {
			g.SubPhase = SubPhaseSelecting
		}
		return nil
	}

	g.SubPhase = SubPhaseTossQueueActive
	if fromQueue {
		e.resetTossRound(g)
	}
	return nil
}

// completePending destroys the pending action. A card still held off-pile
// lands on the discard pile, opening or extending the toss-in window for its
// rank; a queue-origin completion starts a fresh reaction round of the same
// window instead.
func (e *Engine) completePending(g *GameState) {
	p := g.Pending
	card := p.Card
	owner := p.PlayerID
	inDiscard := p.CardInDiscard
	fromQueue := p.FromQueue
	g.Pending = nil

	if !inDiscard {
		e.placeOnDiscard(g, card, owner)
	}
	g.SubPhase = SubPhaseTossQueueActive
	if fromQueue {
		e.resetTossRound(g)
	}
}
