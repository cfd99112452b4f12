package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// PlayerID identifies one of the two seats.
type PlayerID int

const (
	PlayerOne PlayerID = iota + 1
	PlayerTwo
)

// Players lists both players in evaluation order.
var Players = []PlayerID{PlayerOne, PlayerTwo}

// Other returns the opponent.
func (p PlayerID) Other() PlayerID {
	if p == PlayerOne {
		return PlayerTwo
	}
	return PlayerOne
}

// Valid reports whether p is one of the two seats.
func (p PlayerID) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

func (p PlayerID) String() string {
	switch p {
	case PlayerOne:
		return "P1"
	case PlayerTwo:
		return "P2"
	}
	return fmt.Sprintf("Player(%d)", int(p))
}

// ParsePlayerID resolves a code produced by PlayerID.String.
func ParsePlayerID(code string) (PlayerID, error) {
	for _, p := range Players {
		if p.String() == code {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown player %q", code)
}

// Phase represents the lifecycle stage of a game. It only ever moves forward.
type Phase string

const (
	// PhaseSetup is the opening where each player places one base card per caravan.
	PhaseSetup Phase = "setup"
	// PhaseMain is regular play.
	PhaseMain Phase = "main"
	// PhaseFinished is set once a result exists.
	PhaseFinished Phase = "finished"
)

// WinReason explains how a game ended.
type WinReason string

const (
	WinTwoCaravans   WinReason = "two_caravans"
	WinThreeCaravans WinReason = "three_caravans"
	WinConcede       WinReason = "concede"
	WinOutOfCards    WinReason = "out_of_cards"
)

// GameResult is the terminal outcome of a game.
type GameResult struct {
	Winner        PlayerID
	Reason        WinReason
	EndTurnNumber int
}

// Hand holds the cards a player can play, keyed by identity.
// Insertion order is kept for display.
type Hand struct {
	order []uuid.UUID
	cards map[uuid.UUID]Card
}

// NewHand builds a hand from cards in display order.
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make(map[uuid.UUID]Card, len(cards))}
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

// Add puts a card into the hand. Adding a card already held is a no-op.
func (h *Hand) Add(card Card) {
	if h.cards == nil {
		h.cards = make(map[uuid.UUID]Card)
	}
	if _, ok := h.cards[card.ID()]; ok {
		return
	}
	h.cards[card.ID()] = card
	h.order = append(h.order, card.ID())
}

// Get looks up a held card.
func (h *Hand) Get(id uuid.UUID) (Card, bool) {
	if h == nil {
		return Card{}, false
	}
	card, ok := h.cards[id]
	return card, ok
}

// Has reports whether the card is held.
func (h *Hand) Has(id uuid.UUID) bool {
	if h == nil {
		return false
	}
	_, ok := h.cards[id]
	return ok
}

// Remove takes a card out of the hand.
func (h *Hand) Remove(id uuid.UUID) (Card, bool) {
	if h == nil {
		return Card{}, false
	}
	card, ok := h.cards[id]
	if !ok {
		return Card{}, false
	}
	delete(h.cards, id)
	for i, held := range h.order {
		if held == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return card, true
}

// Len returns the number of held cards.
func (h *Hand) Len() int {
	if h == nil {
		return 0
	}
	return len(h.cards)
}

// Cards returns the held cards in display order.
func (h *Hand) Cards() []Card {
	if h == nil {
		return nil
	}
	out := make([]Card, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.cards[id])
	}
	return out
}

// PlayerState is a player's draw pile and hand. The top of Deck is its last element.
type PlayerState struct {
	Deck []Card
	Hand *Hand
}

// NewPlayerState returns a player with the given deck and hand.
func NewPlayerState(deck []Card, hand ...Card) *PlayerState {
	return &PlayerState{Deck: deck, Hand: NewHand(hand...)}
}

// OutOfCards reports whether the player has nothing left to hold or draw.
func (p *PlayerState) OutOfCards() bool {
	return p.Hand.Len() == 0 && len(p.Deck) == 0
}

// Draw moves the top card of the deck into the hand.
func (p *PlayerState) Draw() (Card, bool) {
	if len(p.Deck) == 0 {
		return Card{}, false
	}
	card := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	p.Hand.Add(card)
	return card, true
}

// GameState is the mutable root of a game. Only the move applier changes it once play starts.
type GameState struct {
	Players       map[PlayerID]*PlayerState
	Caravans      map[CaravanID]*Caravan
	CurrentPlayer PlayerID
	TurnNumber    int
	Phase         Phase
	Result        *GameResult
}

// NewGameState creates a SETUP state at turn 0 with six empty caravans.
func NewGameState(p1, p2 *PlayerState, starting PlayerID) *GameState {
	caravans := make(map[CaravanID]*Caravan, len(CaravanIDs))
	for _, id := range CaravanIDs {
		caravans[id] = NewCaravan(id)
	}
	return &GameState{
		Players:       map[PlayerID]*PlayerState{PlayerOne: p1, PlayerTwo: p2},
		Caravans:      caravans,
		CurrentPlayer: starting,
		Phase:         PhaseSetup,
	}
}

// Player returns the state of a player.
func (s *GameState) Player(id PlayerID) (*PlayerState, bool) {
	p, ok := s.Players[id]
	return p, ok && p != nil
}

// Caravan returns the caravan in a slot.
func (s *GameState) Caravan(id CaravanID) (*Caravan, bool) {
	c, ok := s.Caravans[id]
	return c, ok && c != nil
}

// CaravanFor returns the caravan a player builds on a route.
func (s *GameState) CaravanFor(player PlayerID, route RouteID) (*Caravan, bool) {
	id, ok := CaravanIDFor(player, route)
	if !ok {
		return nil, false
	}
	return s.Caravan(id)
}

// Finished reports whether the game has a result.
func (s *GameState) Finished() bool {
	return s.Phase == PhaseFinished
}
