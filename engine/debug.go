package engine

// Debug handlers. These sit outside the correctness surface: they exist for
// development tooling and scripted tests, not for live play.

// handleUpdateDifficulty records the bot difficulty requested by the host.
// The engine itself never reads it; the bot layer does.
func (e *Engine) handleUpdateDifficulty(g *GameState, a Action) error {
	g.Difficulty = a.Difficulty
	return nil
}

// handleSetNextDrawCard moves a card of the requested rank to the top of the
// draw pile.
func (e *Engine) handleSetNextDrawCard(g *GameState, a Action) error {
	for i := len(g.DrawPile) - 1; i >= 0; i-- {
		if g.DrawPile[i].Rank == a.Rank {
			card := g.DrawPile[i]
			g.DrawPile = append(g.DrawPile[:i], g.DrawPile[i+1:]...)
			g.DrawPile = append(g.DrawPile, card)
			return nil
		}
	}
	return nil
}

// handleSwapHandWithDeck replaces the player's entire hand with the top of
// the draw pile, pushing the old hand to the bottom. All knowledge about the
// hand is wiped.
func (e *Engine) handleSwapHandWithDeck(g *GameState, a Action) error {
	idx := g.PlayerIndex(a.PlayerID)
	p := &g.Players[idx]
	n := len(p.Hand)

	newHand := make([]Card, n)
	copy(newHand, g.DrawPile[len(g.DrawPile)-n:])
	old := p.Hand

	g.DrawPile = append(old, g.DrawPile[:len(g.DrawPile)-n]...)
	p.Hand = newHand

	p.KnownCards = make(map[int]bool)
	for i := range g.Players {
		if g.Players[i].ID == p.ID {
			continue
		}
		if _, ok := g.Players[i].OpponentKnowledge[p.ID]; ok {
			g.Players[i].OpponentKnowledge[p.ID] = make(map[int]bool)
		}
	}
	return nil
}
