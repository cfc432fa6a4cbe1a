// internal/game/session.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Lonli-Lokli/vinto/engine"
	"github.com/Lonli-Lokli/vinto/internal/cache"
	"github.com/Lonli-Lokli/vinto/internal/database"
	"github.com/Lonli-Lokli/vinto/internal/models"
)

// OnGameEndFunc is the callback executed when a game ends. It receives the
// game ID, the winner's ID (can be Nil) and the final scores.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// MinPlayers and MaxPlayers bound the table size.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// finishedLogTTL is how long a finished game's action log stays in Redis.
const finishedLogTTL = 24 * time.Hour

// VintoGame is one live table: the authoritative engine state plus the
// connection bookkeeping, timers, and persistence around it. All exported
// methods take the session lock themselves unless noted otherwise.
type VintoGame struct {
	ID uuid.UUID

	Rules engine.Rules

	Players []*models.Player

	// State is the authoritative game state; every action replaces it with
	// the engine's next snapshot.
	State *engine.GameState
	eng   *engine.Engine

	TurnDuration time.Duration
	turnTimer    *time.Timer
	actionIndex  int

	Started  bool
	GameOver bool

	lastSeen map[uuid.UUID]time.Time
	Mu       sync.Mutex

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewVintoGame creates an empty table with default rules.
func NewVintoGame() *VintoGame {
	id, _ := uuid.NewRandom()
	g := &VintoGame{
		ID:           id,
		Rules:        engine.DefaultRules(),
		TurnDuration: 30 * time.Second,
		lastSeen:     make(map[uuid.UUID]time.Time),
	}
	g.eng = engine.New(&sessionObserver{g: g})
	return g
}

// AddPlayer seats a new player, or reattaches a returning one.
// Assumes lock is held by caller.
func (g *VintoGame) AddPlayer(p *models.Player) {
	for i, pl := range g.Players {
		if pl.ID == p.ID {
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			g.Players[i].User = p.User
			g.lastSeen[p.ID] = time.Now()
			logrus.Infof("game %s: player %s reconnected", g.ID, p.ID)
			return
		}
	}
	if g.Started {
		logrus.Infof("game %s: player %s cannot join a started game", g.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Game already in progress.")
		}
		return
	}
	if len(g.Players) >= MaxPlayers {
		logrus.Infof("game %s: table full, rejecting player %s", g.ID, p.ID)
		if p.Conn != nil {
			p.Conn.Close(websocket.StatusPolicyViolation, "Table is full.")
		}
		return
	}
	p.SeatID = p.ID.String()
	g.Players = append(g.Players, p)
	g.lastSeen[p.ID] = time.Now()
	g.logAction(p.ID, "player_add", map[string]any{"username": username(p)})
}

// Begin deals the game and opens the setup phase.
func (g *VintoGame) Begin() {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started || g.GameOver {
		logrus.Warnf("game %s: Begin called in invalid state (started:%v over:%v)", g.ID, g.Started, g.GameOver)
		return
	}
	if len(g.Players) < MinPlayers {
		logrus.Warnf("game %s: need at least %d players, have %d", g.ID, MinPlayers, len(g.Players))
		return
	}

	seats := make([]engine.PlayerSeat, len(g.Players))
	for i, p := range g.Players {
		seats[i] = engine.PlayerSeat{ID: p.SeatID, Name: username(p)}
	}
	seed := uint64(time.Now().UnixNano())
	g.State = engine.NewGame(g.ID.String(), seed, g.Rules, seats)
	g.Started = true

	g.logAction(uuid.Nil, "game_setup_start", map[string]any{"players": len(g.Players)})
	g.persistInitialGameState()

	g.fireEvent(GameEvent{Type: EventGameSetup, Payload: map[string]any{
		"players":    len(g.Players),
		"setupPeeks": g.Rules.SetupPeeks,
	}})
	g.broadcastSyncStateToAll()
	g.scheduleNextTurnTimer()
}

// HandlePlayerAction routes one wire action from a player into the engine.
func (g *VintoGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.GameOver {
		return
	}
	if !g.Started {
		g.fireActionFail(playerID, "The game has not started yet.")
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil || !player.Connected {
		return
	}
	g.lastSeen[playerID] = time.Now()

	engAction, ok := toEngineAction(player.SeatID, action)
	if !ok {
		g.fireActionFail(playerID, "Unknown action type.")
		return
	}
	g.applyAction(playerID, engAction)
}

// applyAction runs one engine action and reacts to the outcome: rejected
// actions produce a private failure event, successful ones replace the
// authoritative state, are logged, and may finish the round.
// Assumes lock is held by caller.
func (g *VintoGame) applyAction(actorID uuid.UUID, a engine.Action) {
	res := g.eng.Reduce(g.State, a)
	if !res.Success {
		logrus.WithFields(logrus.Fields{
			"game": g.ID, "player": actorID, "action": a.Type,
		}).Debugf("action rejected: %s", res.Reason)
		g.fireActionFail(actorID, res.Reason)
		return
	}

	prevTurn := g.State.TurnNumber
	prevPhase := g.State.Phase
	g.State = res.State
	g.logAction(actorID, string(a.Type), map[string]any{
		"position":  a.Position,
		"target":    a.TargetPlayerID,
		"positions": a.Positions,
	})

	g.fireEvent(GameEvent{
		Type:    EventActionApplied,
		User:    &EventUser{ID: actorID},
		Payload: map[string]any{"action": string(a.Type), "turn": g.State.TurnNumber},
	})
	g.sendPrivateReveals(actorID, a)
	g.broadcastSyncStateToAll()

	if g.State.RoundOver {
		g.endGameLocked()
		return
	}
	if prevPhase == engine.PhaseSetup && g.State.Phase == engine.PhasePlaying {
		g.fireEvent(GameEvent{Type: EventGameStart, Payload: map[string]any{
			"turn": g.State.TurnNumber,
		}})
		g.broadcastPlayerTurn()
		g.scheduleNextTurnTimer()
		return
	}
	if g.State.TurnNumber != prevTurn {
		g.broadcastPlayerTurn()
		g.scheduleNextTurnTimer()
	}
}

// sendPrivateReveals ships card details that only the actor may see after
// certain actions: the drawn card, and peeked targets.
// Assumes lock is held by caller.
func (g *VintoGame) sendPrivateReveals(actorID uuid.UUID, a engine.Action) {
	p := g.State.Pending
	if p == nil {
		return
	}
	switch a.Type {
	case engine.ActionDrawCard:
		v := p.Card.Value()
		g.fireEventToPlayer(actorID, GameEvent{
			Type: EventPrivateReveal,
			Card: &EventCard{ID: p.Card.ID, Rank: string(p.Card.Rank), Value: &v},
		})
	case engine.ActionSelectActionTarget:
		for _, t := range p.Targets {
			if t.Card == nil {
				continue
			}
			v := t.Card.Value()
			idx := t.Position
			ownerID, err := uuid.Parse(t.PlayerID)
			if err != nil {
				continue
			}
			g.fireEventToPlayer(actorID, GameEvent{
				Type: EventPrivateReveal,
				Card: &EventCard{
					ID: t.Card.ID, Rank: string(t.Card.Rank), Value: &v,
					Idx: &idx, User: &EventUser{ID: ownerID},
				},
			})
		}
	case engine.ActionPeekSetupCard:
		seat := g.State.Player(g.seatOf(actorID))
		if seat == nil || a.Position >= len(seat.Hand) {
			return
		}
		card := seat.Hand[a.Position]
		v := card.Value()
		idx := a.Position
		g.fireEventToPlayer(actorID, GameEvent{
			Type: EventPrivateSetupPeek,
			Card: &EventCard{ID: card.ID, Rank: string(card.Rank), Value: &v, Idx: &idx},
		})
	}
}

// scheduleNextTurnTimer arms the timer for the acting player. A zero
// TurnDuration disables timers entirely.
// Assumes lock is held by caller.
func (g *VintoGame) scheduleNextTurnTimer() {
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}
	if g.TurnDuration <= 0 || g.GameOver || g.State == nil {
		return
	}
	turnAtSchedule := g.State.TurnNumber
	g.turnTimer = time.AfterFunc(g.TurnDuration, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		if g.GameOver || g.State == nil || g.State.TurnNumber != turnAtSchedule {
			return
		}
		g.handleTimeout()
	})
}

// handleTimeout forces the game forward when the acting player stalls:
// stalled reaction windows are force-closed, a held card is discarded, and
// an untouched turn is played as draw-then-discard.
// Assumes lock is held by caller.
func (g *VintoGame) handleTimeout() {
	s := g.State
	logrus.WithFields(logrus.Fields{"game": g.ID, "turn": s.TurnNumber}).Info("turn timed out")

	switch {
	case s.Pending != nil:
		owner := s.Pending.PlayerID
		switch s.Pending.Phase {
		case engine.ActionPhaseChoosing:
			g.applySeatAction(owner, engine.Action{Type: engine.ActionDiscardCard, PlayerID: owner})
		case engine.ActionPhaseSelectingTarget:
			// Target selection cannot be auto-completed sensibly; skip what
			// can be skipped, otherwise wait for the next timeout cycle.
			switch s.Pending.Card.Rank {
			case engine.RankSeven, engine.RankEight, engine.RankNine, engine.RankTen:
				if len(s.Pending.Targets) == 0 {
					g.applySeatAction(owner, engine.Action{Type: engine.ActionSkipPeek, PlayerID: owner})
				} else {
					g.applySeatAction(owner, engine.Action{Type: engine.ActionConfirmPeek, PlayerID: owner})
				}
			case engine.RankJack:
				g.applySeatAction(owner, engine.Action{Type: engine.ActionSkipJackSwap, PlayerID: owner})
			case engine.RankQueen:
				g.applySeatAction(owner, engine.Action{Type: engine.ActionSkipQueenSwap, PlayerID: owner})
			}
		}
	case s.TossIn != nil:
		// Mark every straggler ready; this drains the queue or closes the
		// window through the normal path.
		for _, p := range g.Players {
			if g.State.TossIn == nil || g.State.Pending != nil {
				break
			}
			if !g.State.TossIn.IsReady(p.SeatID) {
				g.applySeatAction(p.SeatID, engine.Action{Type: engine.ActionPlayerTossInFinished, PlayerID: p.SeatID})
			}
		}
	case s.Phase == engine.PhaseSetup:
		// Finish setup for everyone who stalled.
		for _, p := range g.Players {
			seat := g.State.Player(p.SeatID)
			if seat != nil && !seat.SetupDone {
				g.applySeatAction(p.SeatID, engine.Action{Type: engine.ActionFinishSetup, PlayerID: p.SeatID})
			}
		}
	default:
		current := s.CurrentPlayer().ID
		g.applySeatAction(current, engine.Action{Type: engine.ActionDrawCard, PlayerID: current})
		if g.State.Pending != nil {
			g.applySeatAction(current, engine.Action{Type: engine.ActionDiscardCard, PlayerID: current})
		}
	}
	g.scheduleNextTurnTimer()
}

// applySeatAction applies an engine action on behalf of a seat, resolving
// the seat back to a player UUID for event attribution.
// Assumes lock is held by caller.
func (g *VintoGame) applySeatAction(seatID string, a engine.Action) {
	actorID := uuid.Nil
	if id, err := uuid.Parse(seatID); err == nil {
		actorID = id
	}
	g.applyAction(actorID, a)
}

// broadcastPlayerTurn notifies all players of the current player's turn.
// Assumes lock is held by caller.
func (g *VintoGame) broadcastPlayerTurn() {
	s := g.State
	g.fireEvent(GameEvent{
		Type: EventPlayerTurn,
		User: &EventUser{ID: g.playerOfSeat(s.CurrentPlayer().ID)},
		Payload: map[string]any{
			"turn":  s.TurnNumber,
			"round": s.RoundNumber,
			"phase": string(s.Phase),
		},
	})
}

// endGameLocked finalizes the round: scores it, persists the outcome,
// broadcasts the results, and fires the end callback.
// Assumes lock is held by caller.
func (g *VintoGame) endGameLocked() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	if g.turnTimer != nil {
		g.turnTimer.Stop()
		g.turnTimer = nil
	}

	result := engine.ScoreRound(g.State)
	scores := make(map[uuid.UUID]int, len(result.Scores))
	for seatID, score := range result.Scores {
		scores[g.playerOfSeat(seatID)] = score
	}
	winner := g.playerOfSeat(result.WinnerID)

	logrus.WithFields(logrus.Fields{
		"game": g.ID, "winner": winner, "callerWon": result.CallerWon,
	}).Info("game over")

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]any{
		"scores":    result.Scores,
		"winner":    result.WinnerID,
		"callerWon": result.CallerWon,
		"champion":  result.ChampionID,
	})
	g.persistFinalGameState(result)
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.ExpireGameActions(ctx, id, int(finishedLogTTL.Seconds())); err != nil {
			logrus.Errorf("game %s: failed scheduling action log expiry: %v", id, err)
		}
	}(g.ID)

	payloadScores := make(map[string]int, len(scores))
	for id, s := range scores {
		payloadScores[id.String()] = s
	}
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: map[string]any{
		"scores":    payloadScores,
		"winner":    winner.String(),
		"callerWon": result.CallerWon,
	}})

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winner, scores)
	}
}

// EndGame force-finishes the game (admin action or last player leaving).
func (g *VintoGame) EndGame() {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if g.State == nil {
		g.GameOver = true
		return
	}
	g.endGameLocked()
}

// HandleDisconnect marks a player disconnected. The engine state is left
// untouched; the turn timer will play for them if they stay away.
func (g *VintoGame) HandleDisconnect(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for i := range g.Players {
		if g.Players[i].ID != playerID {
			continue
		}
		if !g.Players[i].Connected {
			return
		}
		g.Players[i].Connected = false
		g.Players[i].Conn = nil
		g.logAction(playerID, "player_disconnect", nil)
		break
	}

	if g.Started && !g.GameOver && g.countConnectedPlayers() == 0 {
		logrus.Infof("game %s: all players disconnected, ending game", g.ID)
		g.endGameLocked()
		return
	}
	g.broadcastSyncStateToAll()
}

// HandleReconnect reattaches a returning player and resyncs them.
func (g *VintoGame) HandleReconnect(playerID uuid.UUID, conn *websocket.Conn) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for i := range g.Players {
		if g.Players[i].ID != playerID {
			continue
		}
		g.Players[i].Connected = true
		g.Players[i].Conn = conn
		g.lastSeen[playerID] = time.Now()
		g.logAction(playerID, "player_reconnect", nil)
		g.sendSyncState(playerID)
		g.broadcastSyncStateToAll()
		return
	}

	logrus.Infof("game %s: reconnecting player %s not found", g.ID, playerID)
	if conn != nil {
		conn.Close(websocket.StatusPolicyViolation, "Game not found or you were removed.")
	}
}

// sendSyncState sends the current obfuscated game state to a single player.
// Assumes lock is held by caller.
func (g *VintoGame) sendSyncState(playerID uuid.UUID) {
	if g.State == nil {
		return
	}
	state := g.ObfuscatedStateFor(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected player their own obfuscated
// view of the state.
// Assumes lock is held by caller.
func (g *VintoGame) broadcastSyncStateToAll() {
	for _, p := range g.Players {
		if p.Connected {
			g.sendSyncState(p.ID)
		}
	}
}

func (g *VintoGame) countConnectedPlayers() int {
	count := 0
	for _, p := range g.Players {
		if p.Connected {
			count++
		}
	}
	return count
}

// fireEvent broadcasts an event to all connected players.
// Assumes lock is held by caller.
func (g *VintoGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to one connected player.
// Assumes lock is held by caller.
func (g *VintoGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	p := g.getPlayerByID(playerID)
	if p != nil && p.Connected {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

func (g *VintoGame) fireActionFail(playerID uuid.UUID, reason string) {
	g.fireEventToPlayer(playerID, GameEvent{
		Type:    EventPrivateActionFail,
		Payload: map[string]any{"message": reason},
	})
}

func (g *VintoGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// seatOf returns the engine seat ID for a player UUID.
func (g *VintoGame) seatOf(playerID uuid.UUID) string {
	p := g.getPlayerByID(playerID)
	if p == nil {
		return ""
	}
	return p.SeatID
}

// playerOfSeat maps an engine seat ID back to the player UUID.
func (g *VintoGame) playerOfSeat(seatID string) uuid.UUID {
	for _, p := range g.Players {
		if p.SeatID == seatID {
			return p.ID
		}
	}
	return uuid.Nil
}

// persistInitialGameState saves the dealt state for audit and replay.
// Assumes lock is held by caller.
func (g *VintoGame) persistInitialGameState() {
	type seatState struct {
		PlayerID string `json:"playerId"`
		Cards    int    `json:"cards"`
	}
	snap := map[string]any{
		"drawPileSize": len(g.State.DrawPile),
		"seats":        []seatState{},
		"rules":        g.Rules,
	}
	seatsJSON := make([]seatState, len(g.State.Players))
	for i := range g.State.Players {
		seatsJSON[i] = seatState{PlayerID: g.State.Players[i].ID, Cards: len(g.State.Players[i].Hand)}
	}
	snap["seats"] = seatsJSON

	go database.UpsertInitialGameState(context.Background(), g.ID, snap)
	g.logAction(uuid.Nil, "game_initial_state_saved", map[string]any{"drawPileSize": len(g.State.DrawPile)})
}

// persistFinalGameState saves final hands and the round result.
// Assumes lock is held by caller.
func (g *VintoGame) persistFinalGameState(result engine.RoundResult) {
	type finalHandCard struct {
		Rank  string `json:"rank"`
		Value int    `json:"value"`
	}
	type finalSeatState struct {
		Hand  []finalHandCard `json:"hand"`
		Score int             `json:"score"`
	}

	seats := make(map[string]finalSeatState, len(g.State.Players))
	for i := range g.State.Players {
		p := &g.State.Players[i]
		state := finalSeatState{
			Hand:  make([]finalHandCard, len(p.Hand)),
			Score: result.Scores[p.ID],
		}
		for j, c := range p.Hand {
			state.Hand[j] = finalHandCard{Rank: string(c.Rank), Value: c.Value()}
		}
		seats[p.ID] = state
	}
	snapshot := map[string]any{
		"seats":     seats,
		"winner":    result.WinnerID,
		"callerWon": result.CallerWon,
		"champion":  result.ChampionID,
	}

	go database.StoreFinalGameState(context.Background(), g.ID, snapshot)
}

// logAction publishes one record to the game's ordered action log.
// Assumes lock is held by caller.
func (g *VintoGame) logAction(actorID uuid.UUID, actionType string, payload map[string]any) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]any)
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.Errorf("game %s: failed publishing action %d (%s): %v", g.ID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

func username(p *models.Player) string {
	if p.User != nil {
		return p.User.Username
	}
	return p.ID.String()
}
