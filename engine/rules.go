package engine

// Rules holds configurable game rule settings.
type Rules struct {
	HandSize                   int  // cards dealt to each player
	SetupPeeks                 int  // own cards a player may peek during setup
	PenaltyDrawCount           int  // cards drawn per penalty
	NumJokers                  int  // jokers added to the 52-card deck
	AllowSamePlayerSwapTargets bool // if true, Jack/Queen may target two cards of one player
}

// DefaultRules returns the standard Vinto rules.
func DefaultRules() Rules {
	return Rules{
		HandSize:                   5,
		SetupPeeks:                 2,
		PenaltyDrawCount:           1,
		NumJokers:                  2,
		AllowSamePlayerSwapTargets: false,
	}
}
