package domain

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
)

// cardFactory mints cards with sequential, readable ids.
type cardFactory struct {
	next uint64
}

func (f *cardFactory) id() uuid.UUID {
	f.next++
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], f.next)
	return id
}

func (f *cardFactory) card(rank Rank, suit Suit) Card {
	return NewCard(f.id(), rank, suit)
}

func (f *cardFactory) joker() Card {
	return NewJoker(f.id())
}

// newMainState returns a MAIN phase state at turn 1 with P1 to move and empty hands.
func newMainState() *GameState {
	state := NewGameState(NewPlayerState(nil), NewPlayerState(nil), PlayerOne)
	state.Phase = PhaseMain
	state.TurnNumber = 1
	return state
}

// build places base cards on a caravan, bypassing legality checks.
func build(t *testing.T, state *GameState, id CaravanID, cards ...Card) {
	t.Helper()
	caravan, ok := state.Caravan(id)
	if !ok {
		t.Fatalf("caravan %s missing", id)
	}
	for _, c := range cards {
		if err := caravan.AddBaseCard(c); err != nil {
			t.Fatalf("add %s to %s: %v", c, id, err)
		}
	}
}

func attach(t *testing.T, state *GameState, id CaravanID, target Card, faces ...Card) {
	t.Helper()
	caravan, _ := state.Caravan(id)
	for _, f := range faces {
		if err := caravan.Attach(target.ID(), f); err != nil {
			t.Fatalf("attach %s to %s: %v", f, target, err)
		}
	}
}
