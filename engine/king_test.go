package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// drawKingAndTarget has p1 draw a King (pre-placed on top of the draw pile),
// use it, and target p2's position 0.
func drawKingAndTarget(t *testing.T, e *Engine, g *GameState) *GameState {
	t.Helper()
	g = drawAndUse(t, e, g)
	require.Equal(t, RankKing, g.Pending.Card.Rank)
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p2", Position: 0})
	require.Equal(t, SubPhaseAwaitingAction, g.SubPhase)
	return g
}

func TestKingCorrectDeclarationNonActionable(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFive, RankSix}},
		[]Rank{RankFour, RankKing},
		nil)
	g = drawKingAndTarget(t, e, g)

	g = apply(t, e, g, Action{Type: ActionDeclareKingAction, PlayerID: "p1", DeclaredRank: RankFive})

	require.Len(t, g.Player("p2").Hand, 1, "the declared card leaves the hand")
	require.Equal(t, RankFive, g.DiscardTop().Rank)
	require.Nil(t, g.Pending, "a 5 carries no follow-up action")
	require.NotNil(t, g.TossIn)
	require.ElementsMatch(t, []Rank{RankKing, RankFive}, g.TossIn.Ranks)
	require.Len(t, g.Player("p1").Hand, 2, "no penalty on a correct call")
}

func TestKingCorrectDeclarationChainsActionableCard(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankSeven, RankSix}},
		[]Rank{RankFour, RankKing},
		nil)
	g = drawKingAndTarget(t, e, g)

	g = apply(t, e, g, Action{Type: ActionDeclareKingAction, PlayerID: "p1", DeclaredRank: RankSeven})

	// The hit 7 immediately becomes a pending action for the declarer.
	require.NotNil(t, g.Pending)
	require.Equal(t, RankSeven, g.Pending.Card.Rank)
	require.Equal(t, "p1", g.Pending.PlayerID)
	require.Equal(t, ActionPhaseSelectingTarget, g.Pending.Phase)
	require.True(t, g.Pending.CardInDiscard)
	require.True(t, g.Pending.Card.Played)
	require.ElementsMatch(t, []Rank{RankKing, RankSeven}, g.TossIn.Ranks)

	// Reactions wait until the chained resolution is done.
	reason := reject(t, e, g, Action{Type: ActionParticipateInTossIn, PlayerID: "p2", Positions: []int{0}})
	require.Contains(t, reason, "still resolving")

	// Resolve the chained 7 (peek own card) and close out.
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p1", TargetPlayerID: "p1", Position: 0})
	g = apply(t, e, g, Action{Type: ActionConfirmPeek, PlayerID: "p1"})
	require.Nil(t, g.Pending)
	require.NotNil(t, g.TossIn, "the window stays open for reactions")
	require.ElementsMatch(t, []Rank{RankKing, RankSeven}, g.TossIn.Ranks)
}

func TestKingWrongDeclarationIsPunitiveNotAnError(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankFive, RankSix}},
		[]Rank{RankFour, RankNine, RankKing},
		nil)
	total := g.TotalCards()
	g = drawKingAndTarget(t, e, g)

	g = apply(t, e, g, Action{Type: ActionDeclareKingAction, PlayerID: "p1", DeclaredRank: RankJack})

	require.Len(t, g.Player("p2").Hand, 2, "the target keeps its card")
	require.Len(t, g.Player("p1").Hand, 3, "the declarer draws a penalty")
	require.Equal(t, RankKing, g.DiscardTop().Rank)
	require.Nil(t, g.Pending)
	require.NotNil(t, g.TossIn)
	require.Equal(t, []Rank{RankKing}, g.TossIn.Ranks, "only K joins the rank set")
	// The misdeclared card is public knowledge now.
	for _, id := range []string{"p1", "p2"} {
		if id == "p2" {
			require.True(t, g.Player(id).KnownCards[0])
		} else {
			require.True(t, g.Player(id).OpponentKnowledge["p2"][0])
		}
	}
	require.Equal(t, total, g.TotalCards())
}

// TestKingFromTossInQueue: a King tossed in during a window materializes
// straight into target selection and its declaration extends the SAME window.
func TestKingFromTossInQueue(t *testing.T) {
	e := New(nil)
	g := newTestGame(t,
		[][]Rank{{RankTwo, RankThree}, {RankKing, RankFive}},
		[]Rank{RankFour, RankNine, RankKing},
		nil)
	// p1 draws a King and discards it unused, opening a {K} window.
	g = apply(t, e, g, Action{Type: ActionDrawCard, PlayerID: "p1"})
	g = apply(t, e, g, Action{Type: ActionDiscardCard, PlayerID: "p1"})
	require.Equal(t, []Rank{RankKing}, g.TossIn.Ranks)

	// p2 tosses in their own King; it queues.
	g = apply(t, e, g, Action{Type: ActionParticipateInTossIn, PlayerID: "p2", Positions: []int{0}})
	require.Len(t, g.TossIn.QueuedActions, 1)

	for _, id := range []string{"p1", "p2"} {
		g = apply(t, e, g, Action{Type: ActionPlayerTossInFinished, PlayerID: id})
	}

	// A queued King skips the use/decline choice entirely.
	require.NotNil(t, g.Pending)
	require.Equal(t, RankKing, g.Pending.Card.Rank)
	require.Equal(t, ActionPhaseSelectingTarget, g.Pending.Phase)
	require.True(t, g.Pending.FromQueue)
	require.Equal(t, SubPhaseTossQueueProcessing, g.SubPhase)

	// p2 declares p1's position 1 correctly (a 3).
	g = apply(t, e, g, Action{Type: ActionSelectActionTarget, PlayerID: "p2", TargetPlayerID: "p1", Position: 1})
	g = apply(t, e, g, Action{Type: ActionDeclareKingAction, PlayerID: "p2", DeclaredRank: RankThree})

	require.Len(t, g.Player("p1").Hand, 1)
	require.NotNil(t, g.TossIn, "still the same window")
	require.ElementsMatch(t, []Rank{RankKing, RankThree}, g.TossIn.Ranks)
	require.Equal(t, 0, g.CurrentPlayerIndex, "pointer frozen through the whole cascade")
	require.Empty(t, g.TossIn.Participants, "a fresh reaction round began")

	g = allReady(t, e, g)
	require.Nil(t, g.TossIn)
	require.Equal(t, 1, g.CurrentPlayerIndex)
}
