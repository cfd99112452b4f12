package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Rank is a card rank. ACE through TEN are numeric; JACK, QUEEN, KING and JOKER are faces.
type Rank int

const (
	RankAce Rank = iota + 1
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankJoker
)

var rankCodes = map[Rank]string{
	RankAce:   "A",
	RankTwo:   "2",
	RankThree: "3",
	RankFour:  "4",
	RankFive:  "5",
	RankSix:   "6",
	RankSeven: "7",
	RankEight: "8",
	RankNine:  "9",
	RankTen:   "10",
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
	RankJoker: "JK",
}

// IsNumeric reports whether the rank is ACE..TEN.
func (r Rank) IsNumeric() bool {
	return r >= RankAce && r <= RankTen
}

// IsFace reports whether the rank can only be played as an attachment.
func (r Rank) IsFace() bool {
	return r >= RankJack && r <= RankJoker
}

// String returns the wire code of the rank.
func (r Rank) String() string {
	if code, ok := rankCodes[r]; ok {
		return code
	}
	return fmt.Sprintf("Rank(%d)", int(r))
}

// ParseRank resolves a wire code produced by Rank.String.
func ParseRank(code string) (Rank, error) {
	for r, c := range rankCodes {
		if c == code {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", code)
}

// Suit is one of the four card suits.
type Suit int

const (
	SuitHearts Suit = iota + 1
	SuitDiamonds
	SuitClubs
	SuitSpades
)

// Suits lists every suit in deck order.
var Suits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// String returns the wire code of the suit.
func (s Suit) String() string {
	switch s {
	case SuitHearts:
		return "H"
	case SuitDiamonds:
		return "D"
	case SuitClubs:
		return "C"
	case SuitSpades:
		return "S"
	}
	return fmt.Sprintf("Suit(%d)", int(s))
}

// ParseSuit resolves a wire code produced by Suit.String.
func ParseSuit(code string) (Suit, error) {
	for _, s := range Suits {
		if s.String() == code {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown suit %q", code)
}

// OptionalSuit is a suit that may be absent. Jokers carry no suit.
type OptionalSuit struct {
	suit  Suit
	valid bool
}

// SomeSuit wraps a concrete suit.
func SomeSuit(s Suit) OptionalSuit {
	return OptionalSuit{suit: s, valid: true}
}

// NoSuit is the absent suit.
func NoSuit() OptionalSuit {
	return OptionalSuit{}
}

// Get returns the suit and whether it is present.
func (o OptionalSuit) Get() (Suit, bool) {
	return o.suit, o.valid
}

// Valid reports whether a suit is present.
func (o OptionalSuit) Valid() bool {
	return o.valid
}

// Matches reports whether both suits are present and equal. An absent suit never matches.
func (o OptionalSuit) Matches(other OptionalSuit) bool {
	return o.valid && other.valid && o.suit == other.suit
}

// String returns the suit code, or an empty string when absent.
func (o OptionalSuit) String() string {
	if !o.valid {
		return ""
	}
	return o.suit.String()
}

// Card is an immutable playing card.
type Card struct {
	id   uuid.UUID
	rank Rank
	suit OptionalSuit
}

// NewCard creates a card. Jokers never carry a suit, so the suit is dropped for RankJoker.
func NewCard(id uuid.UUID, rank Rank, suit Suit) Card {
	if rank == RankJoker {
		return NewJoker(id)
	}
	return Card{id: id, rank: rank, suit: SomeSuit(suit)}
}

// NewJoker creates a suitless joker.
func NewJoker(id uuid.UUID) Card {
	return Card{id: id, rank: RankJoker}
}

func (c Card) ID() uuid.UUID      { return c.id }
func (c Card) Rank() Rank         { return c.rank }
func (c Card) Suit() OptionalSuit { return c.suit }

// Value returns the numeric value of an ACE..TEN card.
// It panics for face ranks: callers must check Rank().IsNumeric() first.
func (c Card) Value() int {
	if !c.rank.IsNumeric() {
		panic(fmt.Sprintf("domain: value requested for non-numeric rank %s", c.rank))
	}
	return int(c.rank)
}

// String renders the card as rank and suit codes, e.g. "10H" or "JK".
func (c Card) String() string {
	return c.rank.String() + c.suit.String()
}

// PlayedCard is a numeric base card in a caravan together with its attached face cards.
type PlayedCard struct {
	Base        Card
	Attachments []Card
}

// QueenCount returns how many queens are attached. Odd counts flip the caravan direction.
func (p PlayedCard) QueenCount() int {
	return p.countAttached(RankQueen)
}

// KingCount returns how many kings are attached. Each king doubles the base value.
func (p PlayedCard) KingCount() int {
	return p.countAttached(RankKing)
}

// LastQueenSuit returns the suit of the most recently attached queen.
func (p PlayedCard) LastQueenSuit() OptionalSuit {
	for i := len(p.Attachments) - 1; i >= 0; i-- {
		if p.Attachments[i].Rank() == RankQueen {
			return p.Attachments[i].Suit()
		}
	}
	return NoSuit()
}

func (p PlayedCard) countAttached(rank Rank) int {
	n := 0
	for _, face := range p.Attachments {
		if face.Rank() == rank {
			n++
		}
	}
	return n
}

func (p PlayedCard) clone() PlayedCard {
	return PlayedCard{Base: p.Base, Attachments: append([]Card(nil), p.Attachments...)}
}
