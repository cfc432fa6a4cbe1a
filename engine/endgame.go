package engine

// handleCallEndgame is a player's "Vinto" declaration: it triggers the final
// round. Every other player gets one more turn, implicitly cooperating as a
// coalition against the caller, and the round ends when the turn comes back
// around. Calling consumes the caller's turn.
func (e *Engine) handleCallEndgame(g *GameState, a Action) error {
	caller := g.Player(a.PlayerID)
	caller.IsVintoCaller = true
	g.VintoCallerID = a.PlayerID
	g.FinalTurnTriggered = true
	g.Phase = PhaseFinal

	for i := range g.Players {
		p := &g.Players[i]
		if p.ID == a.PlayerID {
			continue
		}
		p.CoalitionWith = nil
		for j := range g.Players {
			if g.Players[j].ID != a.PlayerID && g.Players[j].ID != p.ID {
				p.CoalitionWith = append(p.CoalitionWith, g.Players[j].ID)
			}
		}
	}

	e.obs.Event(EvEndgameCalled, map[string]any{"caller": a.PlayerID})

	e.advanceTurn(g)
	return nil
}

// handleSetCoalitionLeader designates the coalition's champion: the
// non-caller whose score the coalition tries to minimize.
func (e *Engine) handleSetCoalitionLeader(g *GameState, a Action) error {
	g.CoalitionLeaderID = a.TargetPlayerID
	return nil
}
