package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// drawAndUse has p1 draw the top card and commit to its action.
func drawAndUse(t *testing.T, e *Engine, g *GameState) *GameState {
	t.Helper()
	g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})
	g = apply(t, e, g, Action{Type: ActionUseCardAction, PlayerID: "p1"})
	require.Equal(t, ActionPhaseSelectingTarget, g.Pending.Phase)
	require.True(t, g.Pending.Card.Played)
	return g
}

func TestSwapCardReplacesAndDiscards(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankNine, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankTwo}, // p1 draws the 2
		nil)
	g.Player("p2").OpponentKnowledge["p1"][0] = true

	g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})
	drawn := g.Pending.Card
	g = apply(t, e, g, Action{Type: ActionSwapCard, PlayerID: "p1", Position: 0})

	require.Equal(t, drawn.ID, g.Player("p1").Hand[0].ID)
	require.True(t, g.Player("p1").KnownCards[0], "the actor saw the drawn card")
	require.False(t, g.Player("p2").OpponentKnowledge["p1"][0], "old knowledge of the slot is stale")
	require.Equal(t, RankNine, g.DiscardTop().Rank)
	require.NotNil(t, g.TossIn)
	require.Equal(t, []Rank{RankNine}, g.TossIn.Ranks)
	require.Nil(t, g.Pending)
}

func TestSwapCardWithDeclaredRank(t *testing.T) {
	e := New(nil)

	t.Run("correct declaration chains the replaced card's action", func(t *testing.T) {
		g := newTestGame(t,
			[][]Rank{{RankNine, RankThree}, {RankFour, RankSix}},
			[]Rank{RankFive, RankTwo},
			nil)
		g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})
		g = apply(t, e, g, Action{Type: ActionSwapCard, PlayerID: "p1", Position: 0, DeclaredRank: RankNine})

		require.NotNil(t, g.Pending)
		require.Equal(t, RankNine, g.Pending.Card.Rank)
		require.Equal(t, "p1", g.Pending.PlayerID)
		require.True(t, g.Pending.CardInDiscard)
		require.True(t, g.Pending.Card.Played)
		require.True(t, g.DiscardTop().Played)
		require.Len(t, g.Player("p1").Hand, 2, "no penalty on a correct call")
	})

	t.Run("wrong declaration costs a penalty draw", func(t *testing.T) {
		g := newTestGame(t,
			[][]Rank{{RankNine, RankThree}, {RankFour, RankSix}},
			[]Rank{RankFive, RankTwo},
			nil)
		g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})
		g = apply(t, e, g, Action{Type: ActionSwapCard, PlayerID: "p1", Position: 0, DeclaredRank: RankKing})

		require.Nil(t, g.Pending)
		require.Len(t, g.Player("p1").Hand, 3)
		require.NotNil(t, g.TossIn)
	})
}

func TestSevenPeeksOwnCard(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankSeven},
		nil)
	g = drawAndUse(t, e, g)

	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p1", Position: 1})
	require.True(t, g.Player("p1").KnownCards[1])
	require.Len(t, g.Pending.Targets, 1)
	require.NotNil(t, g.Pending.Targets[0].Card)
	require.Equal(t, RankThree, g.Pending.Targets[0].Card.Rank)
	require.Equal(t, SubPhaseAwaitingAction, g.SubPhase)

	g = apply(t, e, g, Action{Type: ActionConfirmPeek, PlayerID: "p1"})
	require.Nil(t, g.Pending)
	require.Equal(t, RankSeven, g.DiscardTop().Rank)
	require.True(t, g.DiscardTop().Played)
	require.NotNil(t, g.TossIn)
}

func TestNinePeeksOpponentCard(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankNine},
		nil)
	g = drawAndUse(t, e, g)

	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2", Position: 0})
	require.True(t, g.Player("p1").OpponentKnowledge["p2"][0])
	require.False(t, g.Player("p2").KnownCards[0], "the owner learns nothing")

	g = apply(t, e, g, Action{Type: ActionConfirmPeek, PlayerID: "p1"})
	require.Nil(t, g.Pending)
}

func TestSkipPeekRevealsNothing(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankNine},
		nil)
	g = drawAndUse(t, e, g)

	g = apply(t, e, g, Action{Type: ActionSkipPeek, PlayerID: "p1"})
	require.Nil(t, g.Pending)
	require.Empty(t, g.Player("p1").OpponentKnowledge["p2"])
	require.NotNil(t, g.TossIn, "a skipped action still ends on the discard pile")
}

func TestJackBlindSwap(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankJack},
		nil)
	g.Player("p1").KnownCards[0] = true
	g.Player("p2").KnownCards[1] = true

	p1Card := g.Player("p1").Hand[0]
	p2Card := g.Player("p2").Hand[1]

	g = drawAndUse(t, e, g)
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	require.Equal(t, SubPhaseSelecting, g.SubPhase, "one target down, one to go")
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2", Position: 1})
	require.Equal(t, SubPhaseAwaitingAction, g.SubPhase)

	g = apply(t, e, g, Action{Type: ActionExecuteJackSwap, PlayerID: "p1"})
	require.Equal(t, p2Card.ID, g.Player("p1").Hand[0].ID)
	require.Equal(t, p1Card.ID, g.Player("p2").Hand[1].ID)
	// Blind swap: nobody knows either slot anymore.
	require.False(t, g.Player("p1").KnownCards[0])
	require.False(t, g.Player("p2").KnownCards[1])
	require.Nil(t, g.Pending)
}

func TestSkipJackSwapLeavesHandsAlone(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankJack},
		nil)
	p1Card := g.Player("p1").Hand[0]

	g = drawAndUse(t, e, g)
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	g = apply(t, e, g, Action{Type: ActionSkipJackSwap, PlayerID: "p1"})

	require.Equal(t, p1Card.ID, g.Player("p1").Hand[0].ID)
	require.Nil(t, g.Pending)
	require.NotNil(t, g.TossIn)
}

func TestQueenPeeksThenSwaps(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankQueen},
		nil)
	g = drawAndUse(t, e, g)

	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	require.False(t, g.Player("p1").KnownCards[0], "nothing revealed until both targets are chosen")

	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2", Position: 1})
	require.True(t, g.Player("p1").KnownCards[0])
	require.True(t, g.Player("p1").OpponentKnowledge["p2"][1])
	require.Equal(t, RankTwo, g.Pending.Targets[0].Card.Rank)
	require.Equal(t, RankSix, g.Pending.Targets[1].Card.Rank)

	g = apply(t, e, g, Action{Type: ActionExecuteQueenSwap, PlayerID: "p1"})
	require.Equal(t, RankSix, g.Player("p1").Hand[0].Rank)
	require.Equal(t, RankTwo, g.Player("p2").Hand[1].Rank)
	// The actor watched the swap; the owner of the other slot did not.
	require.True(t, g.Player("p1").KnownCards[0])
	require.True(t, g.Player("p1").OpponentKnowledge["p2"][1])
	require.False(t, g.Player("p2").KnownCards[1])
}

func TestAceForcesOpponentDraw(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}},
		[]Rank{RankFive, RankAce},
		nil)
	g = drawAndUse(t, e, g)

	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2"})
	require.Len(t, g.Player("p2").Hand, 3)
	require.Nil(t, g.Pending, "the Ace resolves in a single step")
	require.Equal(t, RankAce, g.DiscardTop().Rank)
	require.NotNil(t, g.TossIn)
	require.Equal(t, []Rank{RankAce}, g.TossIn.Ranks)
}

// TestAceTossInStaysInSameWindow is the full reaction scenario: an Ace is
// played, a matching Ace is tossed in, and its forced draw resolves inside
// the SAME window — the rank set never changes and no nested window opens.
func TestAceTossInStaysInSameWindow(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFour, RankSix}, {RankAce, RankFive}},
		[]Rank{RankFive, RankSeven, RankAce},
		nil)
	g = drawAndUse(t, e, g)
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2"})
	require.NotNil(t, g.TossIn)

	// p3 tosses in the matching Ace; it queues for later resolution.
	g = apply(t, e, g, Action{Type: ActionParticipateInTossIn, PlayerID: "p3", Positions: []int{0}})
	require.Len(t, g.TossIn.QueuedActions, 1)
	require.Len(t, g.Player("p3").Hand, 1)

	for _, id := range []string{"p1", "p2", "p3"} {
		g = apply(t, e, g, Action{Type: ActionPlayerTossInFinished, PlayerID: id})
	}
	require.NotNil(t, g.Pending)
	require.Equal(t, "p3", g.Pending.PlayerID)

	// p3 resolves the tossed Ace against p1.
	g = apply(t, e, g, Action{Type: ActionUseCardAction, PlayerID: "p3"})
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p3", TargetPlayerID: "p1"})
	require.Len(t, g.Player("p1").Hand, 3)

	// Same window throughout: ranks still exactly {A}, pointer still on p1.
	require.NotNil(t, g.TossIn)
	require.Equal(t, []Rank{RankAce}, g.TossIn.Ranks)
	require.Equal(t, 0, g.CurrentPlayerIndex)

	g = allReady(t, e, g)
	require.Nil(t, g.TossIn)
	require.Equal(t, 1, g.CurrentPlayerIndex)
}

func TestReshuffleKeepsTopDiscard(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo}, {RankFour}},
		nil, // draw pile empty: drawing must reshuffle
		[]Rank{RankFive, RankSix, RankSeven, RankThree})
	top := *g.DiscardTop()
	total := g.TotalCards()

	g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})

	require.Equal(t, top.ID, g.DiscardTop().ID, "the top discard stays put")
	require.Len(t, g.DiscardPile, 1)
	require.Len(t, g.DrawPile, 2, "three reshuffled minus the one drawn")
	require.Equal(t, total, g.TotalCards())
	require.NotNil(t, g.Pending)
}
