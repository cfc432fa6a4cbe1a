// Package engine implements the Vinto turn-resolution rules.
//
// The engine is a deterministic, single-writer state machine: every player
// action is validated, dispatched to a pure handler, and produces a fresh
// state snapshot. Transport, persistence, and bot decision-making live
// outside this package and submit the same action vocabulary as a human.
package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Rank identifies a card face. Ten is written "10", jokers are "Joker".
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
	RankJoker Rank = "Joker"
)

// Ranks lists every rank in deck order, jokers last.
var Ranks = []Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing, RankJoker,
}

// Value returns the point value of the rank.
//   - Ace → 1
//   - Two–Ten → face value
//   - Jack → 11, Queen → 12, King → 13
//   - Joker → 0
func (r Rank) Value() int {
	switch r {
	case RankAce:
		return 1
	case RankTwo:
		return 2
	case RankThree:
		return 3
	case RankFour:
		return 4
	case RankFive:
		return 5
	case RankSix:
		return 6
	case RankSeven:
		return 7
	case RankEight:
		return 8
	case RankNine:
		return 9
	case RankTen:
		return 10
	case RankJack:
		return 11
	case RankQueen:
		return 12
	case RankKing:
		return 13
	case RankJoker:
		return 0
	}
	return 0
}

// ActionText returns the action granted by the rank, or "" for plain cards.
func (r Rank) ActionText() string {
	switch r {
	case RankSeven, RankEight:
		return "peek own card"
	case RankNine, RankTen:
		return "peek opponent card"
	case RankJack:
		return "swap any two cards"
	case RankQueen:
		return "peek two cards, then swap"
	case RankKing:
		return "declare a rank"
	case RankAce:
		return "force opponent draw"
	}
	return ""
}

// Actionable reports whether the rank carries an action.
func (r Rank) Actionable() bool { return r.ActionText() != "" }

// Card is a single card instance. Rank never changes; Played flips true the
// instant the card's action is used and never flips back.
type Card struct {
	ID     string `json:"id"`
	Rank   Rank   `json:"rank"`
	Played bool   `json:"played"`
}

// Value returns the point value of the card.
func (c Card) Value() int { return c.Rank.Value() }

// ActionText returns the card's action text, or "" for plain cards.
func (c Card) ActionText() string { return c.Rank.ActionText() }

// Actionable reports whether the card carries an action.
func (c Card) Actionable() bool { return c.Rank.Actionable() }

// cardNamespace seeds deterministic card IDs so a replayed game reproduces
// the exact same deck.
var cardNamespace = uuid.MustParse("8d9e7a52-1f3b-4c6d-9e0a-5b2c7d4f8a11")

// newDeck builds the 54-card deck (four of each rank plus the configured
// jokers) with IDs derived deterministically from the game ID.
func newDeck(gameID string, jokers int) []Card {
	ns := uuid.NewSHA1(cardNamespace, []byte(gameID))
	deck := make([]Card, 0, 52+jokers)
	n := 0
	add := func(r Rank) {
		id := uuid.NewSHA1(ns, []byte(fmt.Sprintf("card-%d", n)))
		deck = append(deck, Card{ID: id.String(), Rank: r})
		n++
	}
	for _, r := range Ranks[:13] {
		for i := 0; i < 4; i++ {
			add(r)
		}
	}
	for i := 0; i < jokers; i++ {
		add(RankJoker)
	}
	return deck
}
