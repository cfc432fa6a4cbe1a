package engine

// Observer receives structured trace events from the engine. Core logic
// never depends on an observer's behavior; implementations must not mutate
// the state they are shown.
type Observer interface {
	// Event is called after a noteworthy transition with a stable event
	// name and a small field set.
	Event(name string, fields map[string]any)
	// Warn is called for internal invariant violations that were handled
	// defensively.
	Warn(msg string, fields map[string]any)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) Event(string, map[string]any) {}
func (NopObserver) Warn(string, map[string]any)  {}

// Event names emitted through the observer.
const (
	EvDrawCard       = "draw_card"
	EvTakeDiscard    = "take_discard"
	EvSwapCard       = "swap_card"
	EvDiscardCard    = "discard_card"
	EvUseAction      = "use_card_action"
	EvReveal         = "reveal"
	EvBlindSwap      = "blind_swap"
	EvKingDeclare    = "king_declare"
	EvPenaltyDraw    = "penalty_draw"
	EvReshuffle      = "reshuffle"
	EvTossInOpen     = "toss_in_open"
	EvTossInExtend   = "toss_in_extend"
	EvTossInAccepted = "toss_in_accepted"
	EvTossInRejected = "toss_in_rejected"
	EvTossInQueuePop = "toss_in_queue_pop"
	EvTossInClosed   = "toss_in_closed"
	EvTurnAdvanced   = "turn_advanced"
	EvEndgameCalled  = "endgame_called"
	EvRoundOver      = "round_over"
)
