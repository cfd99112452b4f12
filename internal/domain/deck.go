package domain

import (
	"math/rand"

	"github.com/google/uuid"
)

// StandardDeckSize is four suits of thirteen ranks plus two jokers.
const StandardDeckSize = 54

// StandardDeck returns an unshuffled deck. newID mints each card identity;
// pass uuid.New outside tests.
func StandardDeck(newID func() uuid.UUID) []Card {
	deck := make([]Card, 0, StandardDeckSize)
	for _, suit := range Suits {
		for rank := RankAce; rank <= RankKing; rank++ {
			deck = append(deck, NewCard(newID(), rank, suit))
		}
	}
	deck = append(deck, NewJoker(newID()), NewJoker(newID()))
	return deck
}

// Shuffle returns a shuffled copy of deck using rng.
func Shuffle(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Deal moves n cards from the top of deck into a new player state.
// It deals fewer when the deck runs short.
func Deal(deck []Card, n int) *PlayerState {
	if n > len(deck) {
		n = len(deck)
	}
	cut := len(deck) - n
	hand := make([]Card, 0, n)
	for i := len(deck) - 1; i >= cut; i-- {
		hand = append(hand, deck[i])
	}
	rest := make([]Card, cut)
	copy(rest, deck[:cut])
	return NewPlayerState(rest, hand...)
}
