// internal/game/session_test.go
package game

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lonli-Lokli/vinto/engine"
	"github.com/Lonli-Lokli/vinto/internal/models"
)

// mockBroadcaster captures game events for testing assertions.
type mockBroadcaster struct {
	mu           sync.Mutex
	allEvents    []GameEvent
	playerEvents map[uuid.UUID][]GameEvent
}

func newMockBroadcaster() *mockBroadcaster {
	return &mockBroadcaster{
		playerEvents: make(map[uuid.UUID][]GameEvent),
	}
}

func (mb *mockBroadcaster) broadcastFn(ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = append(mb.allEvents, ev)
}

func (mb *mockBroadcaster) broadcastToPlayerFn(playerID uuid.UUID, ev GameEvent) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.playerEvents[playerID] = append(mb.playerEvents[playerID], ev)
}

func (mb *mockBroadcaster) clear() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.allEvents = []GameEvent{}
	mb.playerEvents = make(map[uuid.UUID][]GameEvent)
}

func (mb *mockBroadcaster) findEventByType(eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for i := len(mb.allEvents) - 1; i >= 0; i-- {
		if mb.allEvents[i].Type == eventType {
			return &mb.allEvents[i]
		}
	}
	return nil
}

func (mb *mockBroadcaster) findPlayerEventByType(playerID uuid.UUID, eventType GameEventType) *GameEvent {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	events := mb.playerEvents[playerID]
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == eventType {
			return &events[i]
		}
	}
	return nil
}

// setupTestGame initializes a VintoGame with mock players and broadcasters.
// The game is started (Begin) but still in the setup phase; the turn timer
// is disabled so tests drive every action themselves.
func setupTestGame(t *testing.T, numPlayers int) (*VintoGame, []*models.Player, *mockBroadcaster) {
	t.Helper()

	g := NewVintoGame()
	g.TurnDuration = 0
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	players := make([]*models.Player, numPlayers)
	for i := 0; i < numPlayers; i++ {
		player := &models.Player{
			ID:        uuid.New(),
			Connected: true,
			User:      &models.User{ID: uuid.New(), Username: "Player" + string(rune('A'+i))},
		}
		players[i] = player
		g.AddPlayer(player)
	}

	g.Begin()
	require.True(t, g.Started, "game should be marked as started")
	require.NotNil(t, g.State, "engine state should exist after Begin")
	require.Equal(t, engine.PhaseSetup, g.State.Phase)

	return g, players, mb
}

// finishSetupAll ends the setup phase for every player.
func finishSetupAll(t *testing.T, g *VintoGame, players []*models.Player) {
	t.Helper()
	for _, p := range players {
		g.HandlePlayerAction(p.ID, models.GameAction{Type: "finish-setup"})
	}
	require.Equal(t, engine.PhasePlaying, g.State.Phase, "all setups done should open play")
}

// currentTurnPlayer returns the player whose turn it currently is.
func currentTurnPlayer(g *VintoGame) *models.Player {
	seatID := g.State.CurrentPlayer().ID
	return g.getPlayerByID(g.playerOfSeat(seatID))
}

// closeTossInWindow signals readiness for every player still outstanding.
func closeTossInWindow(g *VintoGame, players []*models.Player) {
	for _, p := range players {
		if g.State.TossIn == nil {
			return
		}
		if !g.State.TossIn.IsReady(p.SeatID) {
			g.HandlePlayerAction(p.ID, models.GameAction{Type: "player-toss-in-finished"})
		}
	}
}

func TestBeginDealsAndAnnouncesSetup(t *testing.T) {
	g, players, mb := setupTestGame(t, 3)

	for _, p := range players {
		seat := g.State.Player(p.SeatID)
		require.NotNil(t, seat, "every player should have a seat")
		assert.Len(t, seat.Hand, g.Rules.HandSize)
	}
	assert.Equal(t, 54, g.State.TotalCards())

	setupEvent := mb.findEventByType(EventGameSetup)
	require.NotNil(t, setupEvent, "expected a public setup event")
	assert.Equal(t, 3, setupEvent.Payload["players"])

	for _, p := range players {
		sync := mb.findPlayerEventByType(p.ID, EventPrivateSyncState)
		require.NotNil(t, sync, "every player should receive an initial state sync")
		require.NotNil(t, sync.State)
		assert.Equal(t, string(engine.PhaseSetup), sync.State.Phase)
	}
}

func TestSetupPeekIsPrivate(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	peeker, other := players[0], players[1]

	g.HandlePlayerAction(peeker.ID, models.GameAction{Type: "peek-setup-card", Position: 0})

	peekEvent := mb.findPlayerEventByType(peeker.ID, EventPrivateSetupPeek)
	require.NotNil(t, peekEvent, "peeker should get a private peek event")
	require.NotNil(t, peekEvent.Card)
	assert.NotEmpty(t, peekEvent.Card.Rank, "peek event should reveal the rank")

	assert.Nil(t, mb.findPlayerEventByType(other.ID, EventPrivateSetupPeek),
		"the other player must not see the peeked card")

	// The peeker's own view shows the card; the opponent's view does not.
	ownView := g.ObfuscatedStateFor(peeker.ID)
	otherView := g.ObfuscatedStateFor(other.ID)
	for _, ps := range ownView.Players {
		if ps.PlayerID == peeker.ID {
			assert.True(t, ps.Hand[0].Known, "peeker should see their peeked card")
		}
	}
	for _, ps := range otherView.Players {
		if ps.PlayerID == peeker.ID {
			assert.False(t, ps.Hand[0].Known, "opponent must not see the peeked card")
		}
	}
}

func TestSetupPeeksAreLimited(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	peeker := players[0]

	g.HandlePlayerAction(peeker.ID, models.GameAction{Type: "peek-setup-card", Position: 0})
	g.HandlePlayerAction(peeker.ID, models.GameAction{Type: "peek-setup-card", Position: 1})
	mb.clear()

	g.HandlePlayerAction(peeker.ID, models.GameAction{Type: "peek-setup-card", Position: 2})

	fail := mb.findPlayerEventByType(peeker.ID, EventPrivateActionFail)
	require.NotNil(t, fail, "a third peek should be privately rejected")
	assert.Contains(t, fail.Payload["message"], "peek")
}

func TestFinishSetupStartsPlay(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	mb.clear()

	finishSetupAll(t, g, players)

	require.NotNil(t, mb.findEventByType(EventGameStart), "expected a game start event")
	turnEvent := mb.findEventByType(EventPlayerTurn)
	require.NotNil(t, turnEvent, "expected a turn announcement")
	assert.Equal(t, currentTurnPlayer(g).ID, turnEvent.User.ID)
}

func TestDrawDiscardOpensWindowThenTurnAdvances(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	finishSetupAll(t, g, players)

	current := currentTurnPlayer(g)
	startTurn := g.State.TurnNumber
	mb.clear()

	g.HandlePlayerAction(current.ID, models.GameAction{Type: "draw-card"})

	require.NotNil(t, g.State.Pending, "drawing should leave a pending card")
	reveal := mb.findPlayerEventByType(current.ID, EventPrivateReveal)
	require.NotNil(t, reveal, "drawer should privately see the drawn card")
	require.NotNil(t, reveal.Card)
	assert.NotEmpty(t, reveal.Card.Rank)

	g.HandlePlayerAction(current.ID, models.GameAction{Type: "discard-card"})

	require.NotNil(t, g.State.TossIn, "discarding should open a reaction window")
	require.NotNil(t, mb.findEventByType(EventTossInOpened))
	assert.Equal(t, startTurn, g.State.TurnNumber, "turn must not advance while the window is open")

	closeTossInWindow(g, players)

	assert.Nil(t, g.State.TossIn, "window should close once everyone is ready")
	require.NotNil(t, mb.findEventByType(EventTossInClosed))
	assert.Equal(t, startTurn+1, g.State.TurnNumber)

	turnEvent := mb.findEventByType(EventPlayerTurn)
	require.NotNil(t, turnEvent, "expected a turn announcement after the window closed")
	assert.NotEqual(t, current.ID, turnEvent.User.ID, "the turn should pass to the other player")
}

func TestOutOfTurnActionRejectedPrivately(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	finishSetupAll(t, g, players)

	current := currentTurnPlayer(g)
	var other *models.Player
	for _, p := range players {
		if p.ID != current.ID {
			other = p
		}
	}
	mb.clear()

	g.HandlePlayerAction(other.ID, models.GameAction{Type: "draw-card"})

	fail := mb.findPlayerEventByType(other.ID, EventPrivateActionFail)
	require.NotNil(t, fail, "expected a private rejection")
	assert.Contains(t, fail.Payload["message"], "not your turn")
	assert.Nil(t, mb.findEventByType(EventActionApplied), "nothing should have been applied")
}

func TestUnknownWireActionRejected(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	mb.clear()

	g.HandlePlayerAction(players[0].ID, models.GameAction{Type: "hack-the-deck"})

	fail := mb.findPlayerEventByType(players[0].ID, EventPrivateActionFail)
	require.NotNil(t, fail)
	assert.Equal(t, "Unknown action type.", fail.Payload["message"])
}

func TestDebugActionsOnlyThroughAdminSurface(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	admin := players[0]

	// The game socket must not accept debug actions.
	g.HandlePlayerAction(admin.ID, models.GameAction{Type: "update-difficulty", Difficulty: "hard"})
	fail := mb.findPlayerEventByType(admin.ID, EventPrivateActionFail)
	require.NotNil(t, fail)
	assert.Equal(t, "Unknown action type.", fail.Payload["message"])

	// The admin surface routes the same action into the engine.
	g.HandleAdminAction(admin.ID, models.GameAction{Type: "update-difficulty", Difficulty: "hard"})
	assert.Equal(t, "hard", g.State.Difficulty)
}

func TestSpectatorSeesOnlyPublicSurface(t *testing.T) {
	g, players, _ := setupTestGame(t, 2)
	g.HandlePlayerAction(players[0].ID, models.GameAction{Type: "peek-setup-card", Position: 0})

	view := g.ObfuscatedStateFor(uuid.New())
	for _, ps := range view.Players {
		for _, c := range ps.Hand {
			assert.False(t, c.Known, "spectators must not see any hand card")
			assert.Empty(t, c.Rank)
		}
	}
}

func TestGameEndsWhenEveryoneDisconnects(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)

	g.HandleDisconnect(players[0].ID)
	require.False(t, g.GameOver, "one remaining player keeps the game alive")

	g.HandleDisconnect(players[1].ID)
	require.True(t, g.GameOver, "the game ends when the table empties")

	endEvent := mb.findEventByType(EventGameEnd)
	require.NotNil(t, endEvent, "expected a game end event")
	assert.Contains(t, endEvent.Payload, "scores")
	assert.Contains(t, endEvent.Payload, "winner")
}

func TestReconnectRestoresSeatAndSyncs(t *testing.T) {
	g, players, mb := setupTestGame(t, 2)
	p := players[0]

	g.HandleDisconnect(p.ID)
	require.False(t, g.getPlayerByID(p.ID).Connected)
	mb.clear()

	g.HandleReconnect(p.ID, nil)
	require.True(t, g.getPlayerByID(p.ID).Connected)

	sync := mb.findPlayerEventByType(p.ID, EventPrivateSyncState)
	require.NotNil(t, sync, "reconnecting player should be resynced")
	require.NotNil(t, sync.State)
}

func TestTurnTimerForcesSetupForward(t *testing.T) {
	g := NewVintoGame()
	g.TurnDuration = 50 * time.Millisecond
	mb := newMockBroadcaster()
	g.BroadcastFn = mb.broadcastFn
	g.BroadcastToPlayerFn = mb.broadcastToPlayerFn

	for i := 0; i < 2; i++ {
		g.AddPlayer(&models.Player{
			ID:        uuid.New(),
			Connected: true,
			User:      &models.User{ID: uuid.New(), Username: "Timer" + string(rune('A'+i))},
		})
	}
	g.Begin()
	require.True(t, g.Started)

	require.Eventually(t, func() bool {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		return g.State.Phase == engine.PhasePlaying
	}, 2*time.Second, 20*time.Millisecond, "the timer should finish setup for stalled players")

	g.EndGame()
}

func TestActionLogIndicesAdvanceOncePerAction(t *testing.T) {
	g, players, _ := setupTestGame(t, 3)

	before := g.actionIndex
	g.HandlePlayerAction(players[0].ID, models.GameAction{Type: "finish-setup"})
	require.Equal(t, before+1, g.actionIndex, "one applied action should log exactly one record")

	// Repeating the action is rejected and must not consume an index.
	g.HandlePlayerAction(players[0].ID, models.GameAction{Type: "finish-setup"})
	require.Equal(t, before+1, g.actionIndex, "a rejected action should not advance the log")

	g.HandlePlayerAction(players[1].ID, models.GameAction{Type: "finish-setup"})
	require.Equal(t, before+2, g.actionIndex)
}
