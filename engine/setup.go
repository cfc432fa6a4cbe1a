package engine

// handlePeekSetupCard reveals one of the player's own cards to them during
// the setup phase.
func (e *Engine) handlePeekSetupCard(g *GameState, a Action) error {
	idx := g.PlayerIndex(a.PlayerID)
	p := &g.Players[idx]
	p.SetupPeeksUsed++
	g.revealToOwner(idx, a.Position)
	e.obs.Event(EvReveal, map[string]any{
		"player": a.PlayerID, "owner": a.PlayerID, "position": a.Position, "scope": "setup",
	})
	return nil
}

// handleFinishSetup marks the player ready. Once every player has finished,
// the game flips into the playing phase.
func (e *Engine) handleFinishSetup(g *GameState, a Action) error {
	g.Player(a.PlayerID).SetupDone = true

	for i := range g.Players {
		if !g.Players[i].SetupDone {
			return nil
		}
	}
	g.Phase = PhasePlaying
	g.SubPhase = SubPhaseIdle
	return nil
}
