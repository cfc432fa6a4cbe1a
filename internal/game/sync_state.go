// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	"github.com/Lonli-Lokli/vinto/engine"
)

// ObfCard represents a card's state for client synchronization. Rank and
// Value are present only when the requesting client is allowed to see them.
type ObfCard struct {
	ID    string `json:"id"`
	Known bool   `json:"known"`
	Rank  string `json:"rank,omitempty"`
	Value *int   `json:"value,omitempty"`
	Idx   *int   `json:"idx,omitempty"`
}

// ObfPlayerState is one player's state as seen by a specific observer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Username      string    `json:"username"`
	HandSize      int       `json:"handSize"`
	Hand          []ObfCard `json:"hand"`
	IsVintoCaller bool      `json:"isVintoCaller"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	SetupDone     bool      `json:"setupDone"`
}

// ObfTossIn mirrors the open reaction window for clients.
type ObfTossIn struct {
	Ranks     []string `json:"ranks"`
	Initiator string   `json:"initiator"`
	Ready     []string `json:"ready"`
	Queued    int      `json:"queued"`
}

// ObfGameState is the overall state, obfuscated for a specific observer.
// Hidden cards keep their IDs so clients can track movement without
// learning ranks.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Phase           string           `json:"phase"`
	SubPhase        string           `json:"subPhase"`
	TurnNumber      int              `json:"turnNumber"`
	RoundNumber     int              `json:"roundNumber"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	ActingPlayerID  uuid.UUID        `json:"actingPlayerId"`
	DrawPileSize    int              `json:"drawPileSize"`
	DiscardSize     int              `json:"discardSize"`
	DiscardTop      *ObfCard         `json:"discardTop,omitempty"`
	Players         []ObfPlayerState `json:"players"`
	TossIn          *ObfTossIn       `json:"tossIn,omitempty"`
	VintoCallerID   uuid.UUID        `json:"vintoCallerId,omitempty"`
	RoundOver       bool             `json:"roundOver"`
	GameOver        bool             `json:"gameOver"`
}

// ObfuscatedStateFor generates a snapshot of the game state tailored to the
// perspective of the requesting user. A hand card's details are included
// when the viewer has seen that card per the engine's knowledge tracking,
// or when the round is over (all hands flip face up).
// Assumes the game lock is held by the caller.
func (g *VintoGame) ObfuscatedStateFor(forUser uuid.UUID) ObfGameState {
	s := g.State
	viewerSeat := g.seatOf(forUser)

	obf := ObfGameState{
		GameID:          g.ID,
		Phase:           string(s.Phase),
		SubPhase:        string(s.SubPhase),
		TurnNumber:      s.TurnNumber,
		RoundNumber:     s.RoundNumber,
		CurrentPlayerID: g.playerOfSeat(s.CurrentPlayer().ID),
		ActingPlayerID:  g.playerOfSeat(s.ActingPlayerID()),
		DrawPileSize:    len(s.DrawPile),
		DiscardSize:     len(s.DiscardPile),
		RoundOver:       s.RoundOver,
		GameOver:        g.GameOver,
	}
	if s.VintoCallerID != "" {
		obf.VintoCallerID = g.playerOfSeat(s.VintoCallerID)
	}

	// The discard top is always public.
	if top := s.DiscardTop(); top != nil {
		v := top.Value()
		obf.DiscardTop = &ObfCard{ID: top.ID, Known: true, Rank: string(top.Rank), Value: &v}
	}

	if s.TossIn != nil {
		t := &ObfTossIn{
			Initiator: s.TossIn.InitiatorID,
			Queued:    len(s.TossIn.QueuedActions),
			Ready:     append([]string(nil), s.TossIn.PlayersReadyForNextTurn...),
		}
		for _, r := range s.TossIn.Ranks {
			t.Ranks = append(t.Ranks, string(r))
		}
		obf.TossIn = t
	}

	viewer := s.Player(viewerSeat)

	obf.Players = make([]ObfPlayerState, len(s.Players))
	for i := range s.Players {
		seat := &s.Players[i]
		playerID := g.playerOfSeat(seat.ID)
		pl := g.getPlayerByID(playerID)

		ps := ObfPlayerState{
			PlayerID:      playerID,
			HandSize:      len(seat.Hand),
			IsVintoCaller: seat.IsVintoCaller,
			IsCurrentTurn: seat.ID == s.CurrentPlayer().ID,
			SetupDone:     seat.SetupDone,
		}
		if pl != nil {
			ps.Username = username(pl)
			ps.Connected = pl.Connected
		}

		ps.Hand = make([]ObfCard, len(seat.Hand))
		for j, card := range seat.Hand {
			idx := j
			oc := ObfCard{ID: card.ID, Idx: &idx}
			if g.cardVisible(viewer, seat, j) || s.RoundOver {
				v := card.Value()
				oc.Known = true
				oc.Rank = string(card.Rank)
				oc.Value = &v
			}
			ps.Hand[j] = oc
		}
		obf.Players[i] = ps
	}
	return obf
}

// cardVisible reports whether the viewer has seen owner's card at pos,
// per the engine's knowledge tracking.
func (g *VintoGame) cardVisible(viewer, owner *engine.PlayerState, pos int) bool {
	if viewer == nil {
		return false // spectators see nothing beyond the public surface
	}
	if viewer.ID == owner.ID {
		return viewer.KnownCards[pos]
	}
	set, ok := viewer.OpponentKnowledge[owner.ID]
	return ok && set[pos]
}
