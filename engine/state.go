package engine

// Phase is the coarse game phase.
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseFinal   Phase = "final"
)

// SubPhase is the fine-grained phase that gates which actions are legal.
type SubPhase string

const (
	SubPhaseIdle                SubPhase = "idle"
	SubPhaseDrawing             SubPhase = "drawing"
	SubPhaseChoosing            SubPhase = "choosing"
	SubPhaseSelecting           SubPhase = "selecting"
	SubPhaseAwaitingAction      SubPhase = "awaiting_action"
	SubPhaseTossQueueActive     SubPhase = "toss_queue_active"
	SubPhaseTossQueueProcessing SubPhase = "toss_queue_processing"
	SubPhaseAIThinking          SubPhase = "ai_thinking"
)

// ActionPhase describes which step of resolution a pending action card is in.
type ActionPhase string

const (
	ActionPhaseChoosing        ActionPhase = "choosing-action"
	ActionPhaseSelectingTarget ActionPhase = "selecting-target"
)

// Target is one selected target of a pending action card. Card is filled in
// once the targeted card has been revealed to the actor.
type Target struct {
	PlayerID string `json:"playerId"`
	Position int    `json:"position"`
	Card     *Card  `json:"card,omitempty"`
}

// PendingAction is the single in-flight action card. At most one exists at a
// time. CardInDiscard is true when the card already sits on the discard pile
// (queue-origin and King-chain pendings); otherwise the card is held off-pile
// until resolution completes.
type PendingAction struct {
	Card          Card        `json:"card"`
	PlayerID      string      `json:"playerId"`
	Phase         ActionPhase `json:"actionPhase"`
	Targets       []Target    `json:"targets"`
	DeclaredRank  Rank        `json:"declaredRank,omitempty"`
	SwapPosition  int         `json:"swapPosition"`
	FromQueue     bool        `json:"fromQueue"`
	CardInDiscard bool        `json:"cardInDiscard"`
}

// QueuedTossAction is one actionable card tossed in during a window, deferred
// for sequential resolution once all players signal readiness.
type QueuedTossAction struct {
	PlayerID string `json:"playerId"`
	Rank     Rank   `json:"rank"`
	Position int    `json:"position"`
	CardID   string `json:"cardId"`
}

// ActiveTossIn is an open reaction window. Ranks only ever grows while the
// window is open; the participant/queue/ready fields reset between successive
// rounds of the same window.
type ActiveTossIn struct {
	Ranks                   []Rank             `json:"ranks"`
	InitiatorID             string             `json:"initiatorId"`
	OriginalPlayerIndex     int                `json:"originalPlayerIndex"`
	Participants            []string           `json:"participants"`
	QueuedActions           []QueuedTossAction `json:"queuedActions"`
	PlayersReadyForNextTurn []string           `json:"playersReadyForNextTurn"`
	WaitingForInput         bool               `json:"waitingForInput"`
	FailedAttempts          map[string]int     `json:"failedAttempts"`
}

// HasRank reports whether r is currently eligible for toss-in.
func (t *ActiveTossIn) HasRank(r Rank) bool {
	for _, have := range t.Ranks {
		if have == r {
			return true
		}
	}
	return false
}

// IsReady reports whether the player has already signalled readiness.
func (t *ActiveTossIn) IsReady(playerID string) bool {
	for _, id := range t.PlayersReadyForNextTurn {
		if id == playerID {
			return true
		}
	}
	return false
}

// PlayerState holds one player's hand and knowledge.
type PlayerState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Hand []Card `json:"hand"`

	// KnownCards are hand positions the player has seen themselves.
	KnownCards map[int]bool `json:"knownCardPositions"`
	// OpponentKnowledge maps an opponent's ID to the positions of that
	// opponent's hand this player has seen.
	OpponentKnowledge map[string]map[int]bool `json:"opponentKnowledge"`

	IsVintoCaller bool     `json:"isVintoCaller"`
	CoalitionWith []string `json:"coalitionWith"`

	SetupPeeksUsed int  `json:"setupPeeksUsed"`
	SetupDone      bool `json:"setupDone"`
}

// GameState is the complete, self-contained state of a Vinto game.
type GameState struct {
	GameID      string `json:"gameId"`
	RoundNumber int    `json:"roundNumber"`
	TurnNumber  int    `json:"turnNumber"`

	Phase    Phase    `json:"phase"`
	SubPhase SubPhase `json:"subPhase"`

	Players            []PlayerState `json:"players"`
	CurrentPlayerIndex int           `json:"currentPlayerIndex"`

	DrawPile    []Card `json:"drawPile"`
	DiscardPile []Card `json:"discardPile"`

	Pending *PendingAction `json:"pendingAction,omitempty"`
	TossIn  *ActiveTossIn  `json:"activeTossIn,omitempty"`

	VintoCallerID      string `json:"vintoCallerId,omitempty"`
	CoalitionLeaderID  string `json:"coalitionLeaderId,omitempty"`
	FinalTurnTriggered bool   `json:"finalTurnTriggered"`
	RoundOver          bool   `json:"roundOver"`

	Difficulty string `json:"difficulty,omitempty"`
	Rules      Rules  `json:"rules"`

	// RNG is an xorshift64 state for deterministic shuffles.
	RNG uint64 `json:"rng"`
}

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// PlayerSeat names one player joining a new game.
type PlayerSeat struct {
	ID   string
	Name string
}

// NewGame initializes a game in the setup phase: deck built and shuffled,
// hands dealt, every card face down and unknown.
func NewGame(gameID string, seed uint64, rules Rules, seats []PlayerSeat) *GameState {
	g := &GameState{
		GameID:      gameID,
		RoundNumber: 1,
		Phase:       PhaseSetup,
		SubPhase:    SubPhaseIdle,
		Rules:       rules,
		RNG:         seed,
	}
	if g.RNG == 0 {
		g.RNG = 1 // xorshift can't start at 0
	}

	g.DrawPile = newDeck(gameID, rules.NumJokers)
	g.shuffleDrawPile()

	g.Players = make([]PlayerState, len(seats))
	for i, s := range seats {
		g.Players[i] = PlayerState{
			ID:                s.ID,
			Name:              s.Name,
			Hand:              make([]Card, 0, rules.HandSize),
			KnownCards:        make(map[int]bool),
			OpponentKnowledge: make(map[string]map[int]bool),
		}
		for _, other := range seats {
			if other.ID != s.ID {
				g.Players[i].OpponentKnowledge[other.ID] = make(map[int]bool)
			}
		}
	}

	// Deal round-robin, one card at a time.
	for c := 0; c < rules.HandSize; c++ {
		for p := range g.Players {
			card := g.DrawPile[len(g.DrawPile)-1]
			g.DrawPile = g.DrawPile[:len(g.DrawPile)-1]
			g.Players[p].Hand = append(g.Players[p].Hand, card)
		}
	}

	g.CurrentPlayerIndex = int(g.randN(uint64(len(g.Players))))
	return g
}

// shuffleDrawPile runs a Fisher-Yates shuffle over the draw pile.
func (g *GameState) shuffleDrawPile() {
	for i := len(g.DrawPile) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		g.DrawPile[i], g.DrawPile[j] = g.DrawPile[j], g.DrawPile[i]
	}
}

// ---------------------------------------------------------------------------
// Query methods
// ---------------------------------------------------------------------------

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() *PlayerState {
	return &g.Players[g.CurrentPlayerIndex]
}

// PlayerIndex returns the seat index for a player ID, or -1.
func (g *GameState) PlayerIndex(playerID string) int {
	for i := range g.Players {
		if g.Players[i].ID == playerID {
			return i
		}
	}
	return -1
}

// Player returns the player with the given ID, or nil.
func (g *GameState) Player(playerID string) *PlayerState {
	if i := g.PlayerIndex(playerID); i >= 0 {
		return &g.Players[i]
	}
	return nil
}

// DiscardTop returns the top discard card, or nil when the pile is empty.
func (g *GameState) DiscardTop() *Card {
	if len(g.DiscardPile) == 0 {
		return nil
	}
	return &g.DiscardPile[len(g.DiscardPile)-1]
}

// ActingPlayerID returns the ID of the player whose move is awaited. While a
// pending action exists its owner acts; otherwise the turn player acts.
func (g *GameState) ActingPlayerID() string {
	if g.Pending != nil {
		return g.Pending.PlayerID
	}
	return g.Players[g.CurrentPlayerIndex].ID
}

// TotalCards counts every card the state holds: hands, both piles, and a
// pending card held off-pile. Queue entries reference cards already on the
// discard pile and are not counted again.
func (g *GameState) TotalCards() int {
	n := len(g.DrawPile) + len(g.DiscardPile)
	for i := range g.Players {
		n += len(g.Players[i].Hand)
	}
	if g.Pending != nil && !g.Pending.CardInDiscard {
		n++
	}
	return n
}

// ---------------------------------------------------------------------------
// Clone — every Reduce works on a private deep copy
// ---------------------------------------------------------------------------

// Clone returns a deep copy of the state. Reduce never mutates its input;
// handlers work on the clone and a failing handler never corrupts the
// caller-held state.
func (g *GameState) Clone() *GameState {
	c := *g

	c.DrawPile = append([]Card(nil), g.DrawPile...)
	c.DiscardPile = append([]Card(nil), g.DiscardPile...)

	c.Players = make([]PlayerState, len(g.Players))
	for i := range g.Players {
		p := g.Players[i]
		p.Hand = append([]Card(nil), p.Hand...)
		p.CoalitionWith = append([]string(nil), p.CoalitionWith...)
		p.KnownCards = cloneIntSet(p.KnownCards)
		p.OpponentKnowledge = make(map[string]map[int]bool, len(g.Players[i].OpponentKnowledge))
		for id, set := range g.Players[i].OpponentKnowledge {
			p.OpponentKnowledge[id] = cloneIntSet(set)
		}
		c.Players[i] = p
	}

	if g.Pending != nil {
		p := *g.Pending
		p.Targets = make([]Target, len(g.Pending.Targets))
		for i, t := range g.Pending.Targets {
			if t.Card != nil {
				card := *t.Card
				t.Card = &card
			}
			p.Targets[i] = t
		}
		c.Pending = &p
	}

	if g.TossIn != nil {
		t := *g.TossIn
		t.Ranks = append([]Rank(nil), g.TossIn.Ranks...)
		t.Participants = append([]string(nil), g.TossIn.Participants...)
		t.QueuedActions = append([]QueuedTossAction(nil), g.TossIn.QueuedActions...)
		t.PlayersReadyForNextTurn = append([]string(nil), g.TossIn.PlayersReadyForNextTurn...)
		t.FailedAttempts = make(map[string]int, len(g.TossIn.FailedAttempts))
		for id, n := range g.TossIn.FailedAttempts {
			t.FailedAttempts[id] = n
		}
		c.TossIn = &t
	}

	return &c
}

func cloneIntSet(s map[int]bool) map[int]bool {
	c := make(map[int]bool, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// ---------------------------------------------------------------------------
// Pile and hand mutation helpers (operate on a Reduce-owned clone)
// ---------------------------------------------------------------------------

// drawFromPile pops the top draw-pile card, reshuffling the discard pile into
// it first when empty. Returns false when no card can be produced at all.
func (g *GameState) drawFromPile() (Card, bool) {
	if len(g.DrawPile) == 0 {
		g.reshuffleDiscardIntoDraw()
	}
	if len(g.DrawPile) == 0 {
		return Card{}, false
	}
	card := g.DrawPile[len(g.DrawPile)-1]
	g.DrawPile = g.DrawPile[:len(g.DrawPile)-1]
	return card, true
}

// reshuffleDiscardIntoDraw moves all but the top discard card into the draw
// pile and shuffles. A single-card discard pile is left untouched.
func (g *GameState) reshuffleDiscardIntoDraw() {
	if len(g.DiscardPile) <= 1 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	g.DrawPile = append(g.DrawPile, g.DiscardPile[:len(g.DiscardPile)-1]...)
	g.DiscardPile = []Card{top}
	g.shuffleDrawPile()
}

// removeCardAt removes hand[pos] from the player at seat playerIdx and shifts
// every knowledge index past the removal point, for the owner's own knowledge
// and for every opponent's knowledge of the owner. This is the single place
// index-shifting happens.
func (g *GameState) removeCardAt(playerIdx, pos int) Card {
	p := &g.Players[playerIdx]
	card := p.Hand[pos]
	p.Hand = append(p.Hand[:pos], p.Hand[pos+1:]...)
	p.KnownCards = shiftIntSet(p.KnownCards, pos)
	ownerID := p.ID
	for i := range g.Players {
		if g.Players[i].ID == ownerID {
			continue
		}
		if set, ok := g.Players[i].OpponentKnowledge[ownerID]; ok {
			g.Players[i].OpponentKnowledge[ownerID] = shiftIntSet(set, pos)
		}
	}
	return card
}

// shiftIntSet drops the removed position and shifts all higher positions down
// by one.
func shiftIntSet(s map[int]bool, removed int) map[int]bool {
	out := make(map[int]bool, len(s))
	for k, v := range s {
		switch {
		case k < removed:
			out[k] = v
		case k > removed:
			out[k-1] = v
		}
	}
	return out
}

// revealToOwner marks hand[pos] of the player as known to that player.
func (g *GameState) revealToOwner(playerIdx, pos int) {
	g.Players[playerIdx].KnownCards[pos] = true
}

// revealToPlayer marks ownerID's hand[pos] as known to viewerID.
func (g *GameState) revealToPlayer(viewerID, ownerID string, pos int) {
	viewer := g.Player(viewerID)
	if viewer == nil {
		return
	}
	if viewer.ID == ownerID {
		viewer.KnownCards[pos] = true
		return
	}
	set, ok := viewer.OpponentKnowledge[ownerID]
	if !ok {
		set = make(map[int]bool)
		viewer.OpponentKnowledge[ownerID] = set
	}
	set[pos] = true
}

// revealToAll makes ownerID's hand[pos] public knowledge.
func (g *GameState) revealToAll(ownerID string, pos int) {
	for i := range g.Players {
		g.revealToPlayer(g.Players[i].ID, ownerID, pos)
	}
}

// forgetEverywhere clears all knowledge anyone holds about ownerID's
// hand[pos]. Used after blind swaps, which destroy known-status.
func (g *GameState) forgetEverywhere(ownerID string, pos int) {
	for i := range g.Players {
		if g.Players[i].ID == ownerID {
			delete(g.Players[i].KnownCards, pos)
			continue
		}
		if set, ok := g.Players[i].OpponentKnowledge[ownerID]; ok {
			delete(set, pos)
		}
	}
}
