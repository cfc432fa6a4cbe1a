package engine

import "fmt"

// validate is the total, pure gatekeeper over the action union. It returns
// nil when the action is legal, or an error carrying the rejection reason.
// State is never mutated here. An unhandled ActionType is a programming
// error and panics.
func validate(g *GameState, a Action) error {
	if g.Player(a.PlayerID) == nil && a.Type != ActionNoOp {
		return fmt.Errorf("unknown player %q", a.PlayerID)
	}
	if g.RoundOver && !isDebugAction(a.Type) {
		return fmt.Errorf("round is over")
	}

	switch a.Type {
	case ActionPeekSetupCard:
		return validatePeekSetupCard(g, a)
	case ActionFinishSetup:
		return validateFinishSetup(g, a)
	case ActionDrawCard:
		return validateTurnStart(g, a, false)
	case ActionTakeDiscard:
		return validateTurnStart(g, a, true)
	case ActionSwapCard:
		return validateSwapCard(g, a)
	case ActionDiscardCard:
		return validatePendingChoice(g, a)
	case ActionUseCardAction:
		return validateUseCardAction(g, a)
	case ActionSelectActionTarget:
		return validateSelectActionTarget(g, a)
	case ActionConfirmPeek:
		return validateConfirmPeek(g, a)
	case ActionSkipPeek:
		return validateSkipPeek(g, a)
	case ActionExecuteJackSwap, ActionSkipJackSwap:
		return validateSwapDecision(g, a, RankJack)
	case ActionExecuteQueenSwap, ActionSkipQueenSwap:
		return validateSwapDecision(g, a, RankQueen)
	case ActionDeclareKingAction:
		return validateDeclareKing(g, a)
	case ActionParticipateInTossIn:
		return validateParticipate(g, a)
	case ActionPlayerTossInFinished:
		return validateTossInFinished(g, a)
	case ActionFinishTossInPeriod:
		return validateFinishTossInPeriod(g, a)
	case ActionCallEndgame:
		return validateCallEndgame(g, a)
	case ActionSetCoalitionLeader:
		return validateSetCoalitionLeader(g, a)
	case ActionUpdateDifficulty:
		if a.Difficulty == "" {
			return fmt.Errorf("difficulty must not be empty")
		}
		if a.Difficulty == g.Difficulty {
			return fmt.Errorf("difficulty is already %q", a.Difficulty)
		}
		return nil
	case ActionSetNextDrawCard:
		return validateSetNextDrawCard(g, a)
	case ActionSwapHandWithDeck:
		return validateSwapHandWithDeck(g, a)
	case ActionNoOp:
		return nil
	default:
		panic(fmt.Sprintf("engine: validate: unhandled action type %q", a.Type))
	}
}

func isDebugAction(t ActionType) bool {
	switch t {
	case ActionUpdateDifficulty, ActionSetNextDrawCard, ActionSwapHandWithDeck, ActionNoOp:
		return true
	}
	return false
}

func validatePeekSetupCard(g *GameState, a Action) error {
	if g.Phase != PhaseSetup {
		return fmt.Errorf("setup peeks are only allowed during the setup phase")
	}
	p := g.Player(a.PlayerID)
	if p.SetupDone {
		return fmt.Errorf("player has already finished setup")
	}
	if a.Position < 0 || a.Position >= len(p.Hand) {
		return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(p.Hand))
	}
	if p.KnownCards[a.Position] {
		return fmt.Errorf("position %d has already been peeked", a.Position)
	}
	if p.SetupPeeksUsed >= g.Rules.SetupPeeks {
		return fmt.Errorf("no setup peeks remaining (limit %d)", g.Rules.SetupPeeks)
	}
	return nil
}

func validateFinishSetup(g *GameState, a Action) error {
	if g.Phase != PhaseSetup {
		return fmt.Errorf("not in the setup phase")
	}
	if g.Player(a.PlayerID).SetupDone {
		return fmt.Errorf("player has already finished setup")
	}
	return nil
}

// validateTurnStart covers draw-card and take-discard.
func validateTurnStart(g *GameState, a Action, fromDiscard bool) error {
	if g.Phase != PhasePlaying && g.Phase != PhaseFinal {
		return fmt.Errorf("cannot draw during the %s phase", g.Phase)
	}
	if g.SubPhase != SubPhaseIdle {
		return fmt.Errorf("cannot draw in sub-phase %s", g.SubPhase)
	}
	if g.Pending != nil {
		return fmt.Errorf("a pending action is already in flight")
	}
	if g.TossIn != nil {
		return fmt.Errorf("a toss-in window is open")
	}
	if a.PlayerID != g.CurrentPlayer().ID {
		return fmt.Errorf("not your turn")
	}
	if fromDiscard {
		top := g.DiscardTop()
		if top == nil {
			return fmt.Errorf("discard pile is empty")
		}
		if !top.Actionable() {
			return fmt.Errorf("top discard %s has no action", top.Rank)
		}
		if top.Played {
			return fmt.Errorf("top discard %s has already been played", top.Rank)
		}
		return nil
	}
	if len(g.DrawPile) == 0 && len(g.DiscardPile) <= 1 {
		return fmt.Errorf("no cards left to draw")
	}
	return nil
}

// requirePending checks the shared preconditions of post-draw and resolution
// actions: a pending action exists and the actor owns it. Turn ownership is
// thereby delegated to the queued action's owner while a queue is drained.
func requirePending(g *GameState, a Action) (*PendingAction, error) {
	if g.Pending == nil {
		return nil, fmt.Errorf("no pending action")
	}
	if g.Pending.PlayerID != a.PlayerID {
		return nil, fmt.Errorf("pending action belongs to another player")
	}
	return g.Pending, nil
}

func validateSwapCard(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	if p.Phase != ActionPhaseChoosing {
		return fmt.Errorf("pending action is not awaiting a post-draw choice")
	}
	if p.CardInDiscard {
		return fmt.Errorf("a tossed-in card cannot be swapped into the hand")
	}
	hand := g.Player(a.PlayerID).Hand
	if a.Position < 0 || a.Position >= len(hand) {
		return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(hand))
	}
	return nil
}

func validatePendingChoice(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	if p.Phase != ActionPhaseChoosing {
		return fmt.Errorf("pending action is not awaiting a post-draw choice")
	}
	return nil
}

func validateUseCardAction(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	if p.Phase != ActionPhaseChoosing {
		return fmt.Errorf("pending action is not awaiting a post-draw choice")
	}
	if !p.Card.Actionable() {
		return fmt.Errorf("%s has no action to use", p.Card.Rank)
	}
	if p.Card.Played {
		return fmt.Errorf("%s has already been played", p.Card.Rank)
	}
	return nil
}

func validateSelectActionTarget(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	if p.Phase != ActionPhaseSelectingTarget {
		return fmt.Errorf("pending action is not selecting targets")
	}
	target := g.Player(a.TargetPlayerID)
	if target == nil {
		return fmt.Errorf("unknown target player %q", a.TargetPlayerID)
	}
	// Coalition rule: in the final phase non-callers may never target the
	// Vinto caller.
	if g.Phase == PhaseFinal && a.PlayerID != g.VintoCallerID && a.TargetPlayerID == g.VintoCallerID {
		return fmt.Errorf("cannot target the Vinto caller in the final phase")
	}

	inRange := a.Position >= 0 && a.Position < len(target.Hand)

	switch p.Card.Rank {
	case RankSeven, RankEight:
		if len(p.Targets) != 0 {
			return fmt.Errorf("%s takes exactly one target", p.Card.Rank)
		}
		if a.TargetPlayerID != a.PlayerID {
			return fmt.Errorf("%s may only target your own cards", p.Card.Rank)
		}
		if !inRange {
			return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(target.Hand))
		}
	case RankNine, RankTen:
		if len(p.Targets) != 0 {
			return fmt.Errorf("%s takes exactly one target", p.Card.Rank)
		}
		if a.TargetPlayerID == a.PlayerID {
			return fmt.Errorf("%s may only target an opponent's cards", p.Card.Rank)
		}
		if !inRange {
			return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(target.Hand))
		}
	case RankJack, RankQueen:
		if len(p.Targets) >= 2 {
			return fmt.Errorf("%s already has both targets", p.Card.Rank)
		}
		if !inRange {
			return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(target.Hand))
		}
		if len(p.Targets) == 1 {
			first := p.Targets[0]
			if first.PlayerID == a.TargetPlayerID {
				if !g.Rules.AllowSamePlayerSwapTargets {
					return fmt.Errorf("%s targets must belong to distinct players", p.Card.Rank)
				}
				if first.Position == a.Position {
					return fmt.Errorf("both targets name the same card")
				}
			}
		}
	case RankKing:
		if len(p.Targets) != 0 {
			return fmt.Errorf("K takes exactly one target")
		}
		if !inRange {
			return fmt.Errorf("position %d out of range (hand size %d)", a.Position, len(target.Hand))
		}
	case RankAce:
		if len(p.Targets) != 0 {
			return fmt.Errorf("A takes exactly one target")
		}
		// Any player, self allowed; position is ignored.
	default:
		return fmt.Errorf("%s has no action targets", p.Card.Rank)
	}
	return nil
}

func validateConfirmPeek(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	switch p.Card.Rank {
	case RankSeven, RankEight, RankNine, RankTen:
	default:
		return fmt.Errorf("%s is not a peek card", p.Card.Rank)
	}
	if len(p.Targets) != 1 || p.Targets[0].Card == nil {
		return fmt.Errorf("nothing has been peeked yet")
	}
	return nil
}

func validateSkipPeek(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	switch p.Card.Rank {
	case RankSeven, RankEight, RankNine, RankTen:
	default:
		return fmt.Errorf("%s is not a peek card", p.Card.Rank)
	}
	if p.Phase != ActionPhaseSelectingTarget {
		return fmt.Errorf("peek can no longer be skipped")
	}
	return nil
}

func validateSwapDecision(g *GameState, a Action, want Rank) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	// Jack and Queen share swap semantics; the decision action must match
	// the pending card.
	if p.Card.Rank != want {
		return fmt.Errorf("pending card is %s, not %s", p.Card.Rank, want)
	}
	if p.Phase != ActionPhaseSelectingTarget {
		return fmt.Errorf("%s is not resolving its swap", want)
	}
	// Skipping is legal at any point of target selection; executing needs
	// both targets on record.
	executing := a.Type == ActionExecuteJackSwap || a.Type == ActionExecuteQueenSwap
	if executing && len(p.Targets) != 2 {
		return fmt.Errorf("%s needs both targets before executing", want)
	}
	return nil
}

func validateDeclareKing(g *GameState, a Action) error {
	p, err := requirePending(g, a)
	if err != nil {
		return err
	}
	if p.Card.Rank != RankKing {
		return fmt.Errorf("pending card is %s, not K", p.Card.Rank)
	}
	if len(p.Targets) != 1 {
		return fmt.Errorf("K needs a target before a declaration")
	}
	if !isValidRank(a.DeclaredRank) {
		return fmt.Errorf("unknown declared rank %q", a.DeclaredRank)
	}
	return nil
}

func validateParticipate(g *GameState, a Action) error {
	if g.TossIn == nil {
		return fmt.Errorf("no toss-in window is open")
	}
	// Hands must not shrink under a live resolution: a pending action records
	// its targets by position, so reactions wait until it completes.
	if g.Pending != nil {
		return fmt.Errorf("an action is still resolving")
	}
	if g.TossIn.IsReady(a.PlayerID) {
		return fmt.Errorf("player has already signalled readiness and cannot react")
	}
	if len(a.Positions) == 0 {
		return fmt.Errorf("no positions named")
	}
	hand := g.Player(a.PlayerID).Hand
	seen := make(map[int]bool, len(a.Positions))
	for _, pos := range a.Positions {
		if pos < 0 || pos >= len(hand) {
			return fmt.Errorf("position %d out of range (hand size %d)", pos, len(hand))
		}
		if seen[pos] {
			return fmt.Errorf("position %d named twice", pos)
		}
		seen[pos] = true
	}
	return nil
}

func validateTossInFinished(g *GameState, a Action) error {
	if g.TossIn == nil {
		return fmt.Errorf("no toss-in window is open")
	}
	if g.Pending != nil {
		return fmt.Errorf("a queued action is still being resolved")
	}
	// Once-only readiness guard.
	if g.TossIn.IsReady(a.PlayerID) {
		return fmt.Errorf("player already marked ready for next turn")
	}
	return nil
}

func validateFinishTossInPeriod(g *GameState, a Action) error {
	if g.TossIn == nil {
		return fmt.Errorf("no toss-in window is open")
	}
	if a.PlayerID != g.TossIn.InitiatorID {
		return fmt.Errorf("only the window initiator may close the toss-in period")
	}
	t := g.TossIn
	if len(t.Participants) == 0 && len(t.QueuedActions) == 0 &&
		len(t.PlayersReadyForNextTurn) == len(g.vintoCallerPreseed()) {
		return fmt.Errorf("the toss-in round is already fresh")
	}
	return nil
}

func validateCallEndgame(g *GameState, a Action) error {
	if g.Phase != PhasePlaying {
		return fmt.Errorf("cannot call the endgame during the %s phase", g.Phase)
	}
	if g.FinalTurnTriggered {
		return fmt.Errorf("the endgame has already been called")
	}
	if g.SubPhase != SubPhaseIdle || g.Pending != nil || g.TossIn != nil {
		return fmt.Errorf("the endgame can only be called at the start of your turn")
	}
	if a.PlayerID != g.CurrentPlayer().ID {
		return fmt.Errorf("not your turn")
	}
	return nil
}

func validateSetCoalitionLeader(g *GameState, a Action) error {
	if g.Phase != PhaseFinal {
		return fmt.Errorf("coalition leaders exist only in the final phase")
	}
	leader := g.Player(a.TargetPlayerID)
	if leader == nil {
		return fmt.Errorf("unknown leader %q", a.TargetPlayerID)
	}
	if a.TargetPlayerID == g.VintoCallerID {
		return fmt.Errorf("the Vinto caller cannot lead the coalition")
	}
	if a.PlayerID == g.VintoCallerID {
		return fmt.Errorf("the Vinto caller has no say in the coalition")
	}
	if g.CoalitionLeaderID == a.TargetPlayerID {
		return fmt.Errorf("that player already leads the coalition")
	}
	return nil
}

func validateSetNextDrawCard(g *GameState, a Action) error {
	if !isValidRank(a.Rank) {
		return fmt.Errorf("unknown rank %q", a.Rank)
	}
	if n := len(g.DrawPile); n > 0 && g.DrawPile[n-1].Rank == a.Rank {
		return fmt.Errorf("the next draw is already %s", a.Rank)
	}
	for _, c := range g.DrawPile {
		if c.Rank == a.Rank {
			return nil
		}
	}
	return fmt.Errorf("no %s left in the draw pile", a.Rank)
}

func validateSwapHandWithDeck(g *GameState, a Action) error {
	hand := g.Player(a.PlayerID).Hand
	if len(g.DrawPile) < len(hand) {
		return fmt.Errorf("draw pile too small to swap a %d-card hand", len(hand))
	}
	return nil
}

func isValidRank(r Rank) bool {
	for _, have := range Ranks {
		if have == r {
			return true
		}
	}
	return false
}
