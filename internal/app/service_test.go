package app

import (
	"encoding/binary"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"caravan/internal/domain"
)

// sequentialDecks builds standard decks with predictable ids.
func sequentialDecks() DeckBuilder {
	var n uint64
	return func(domain.PlayerID) []domain.Card {
		return domain.StandardDeck(func() uuid.UUID {
			n++
			var id uuid.UUID
			binary.BigEndian.PutUint64(id[8:], n)
			return id
		})
	}
}

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), domain.DefaultRules())
}

func TestStartGameDealsHands(t *testing.T) {
	svc := newTestService(42)
	setup := DefaultSetup()
	setup.DeckBuilder = sequentialDecks()

	state, evs, err := svc.StartGame(setup)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if state.Phase != domain.PhaseSetup || state.TurnNumber != 0 {
		t.Fatalf("phase/turn = %s/%d, want setup/0", state.Phase, state.TurnNumber)
	}
	if state.CurrentPlayer != domain.PlayerOne {
		t.Fatalf("current player = %s, want P1", state.CurrentPlayer)
	}
	for _, id := range domain.CaravanIDs {
		if c, ok := state.Caravan(id); !ok || c.Len() != 0 {
			t.Fatalf("caravan %s missing or not empty", id)
		}
	}

	handEvents := 0
	for _, ev := range evs {
		if ev.Kind == EventHandDealt {
			handEvents++
			payload := ev.Payload.(HandDealtPayload)
			if len(payload.Hand) != 8 {
				t.Fatalf("hand size = %d, want 8", len(payload.Hand))
			}
			if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.Player {
				t.Fatalf("hand event recipients = %v, want only %s", ev.Recipients, payload.Player)
			}
			if got := len(state.Players[payload.Player].Deck); got != domain.StandardDeckSize-8 {
				t.Fatalf("deck size = %d, want %d", got, domain.StandardDeckSize-8)
			}
		}
	}
	if handEvents != 2 {
		t.Fatalf("hand events = %d, want 2", handEvents)
	}
	if last := evs[len(evs)-1]; last.Kind != EventGameStarted || len(last.Recipients) != 0 {
		t.Fatalf("last event = %+v, want broadcast game_started", last)
	}
}

func TestStartGameIsReproducible(t *testing.T) {
	deal := func() []domain.Card {
		setup := DefaultSetup()
		setup.DeckBuilder = sequentialDecks()
		state, _, err := newTestService(7).StartGame(setup)
		if err != nil {
			t.Fatalf("start game error: %v", err)
		}
		return state.Players[domain.PlayerOne].Hand.Cards()
	}

	a, b := deal(), deal()
	for i := range a {
		if a[i].ID() != b[i].ID() {
			t.Fatalf("hands differ at %d for the same seed", i)
		}
	}
}

func TestStartGameWithoutShuffle(t *testing.T) {
	setup := DefaultSetup()
	setup.ShuffleDecks = false
	setup.StartingPlayer = domain.PlayerTwo
	setup.DeckBuilder = sequentialDecks()

	state, _, err := newTestService(1).StartGame(setup)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	if state.CurrentPlayer != domain.PlayerTwo {
		t.Fatalf("current player = %s, want P2", state.CurrentPlayer)
	}
	// Unshuffled decks end with the two jokers, which are dealt first.
	jokers := 0
	for _, c := range state.Players[domain.PlayerOne].Hand.Cards() {
		if c.Rank() == domain.RankJoker {
			jokers++
		}
	}
	if jokers != 2 {
		t.Fatalf("jokers in hand = %d, want 2", jokers)
	}
}

func TestStartGameRejectsBadSetup(t *testing.T) {
	svc := newTestService(1)

	bad := DefaultSetup()
	bad.StartingHandSize = 0
	if _, _, err := svc.StartGame(bad); !errors.Is(err, ErrInvalidSetup) {
		t.Fatalf("err = %v, want ErrInvalidSetup", err)
	}

	small := DefaultSetup()
	small.DeckBuilder = func(domain.PlayerID) []domain.Card { return sequentialDecks()(domain.PlayerOne)[:3] }
	if _, _, err := svc.StartGame(small); !errors.Is(err, ErrDeckTooSmall) {
		t.Fatalf("err = %v, want ErrDeckTooSmall", err)
	}
}

func TestStepEmitsEvents(t *testing.T) {
	svc := newTestService(5)
	setup := DefaultSetup()
	setup.DeckBuilder = sequentialDecks()
	state, _, err := svc.StartGame(setup)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	move := firstLegal(t, state, domain.MovePlayBase)
	evs, err := svc.Step(state, move)
	if err != nil {
		t.Fatalf("step error: %v", err)
	}
	if len(evs) != 1 || evs[0].Kind != EventMoveApplied {
		t.Fatalf("events = %+v, want one move_applied", evs)
	}
	payload := evs[0].Payload.(MoveAppliedPayload)
	if payload.NextPlayer != domain.PlayerTwo || payload.TurnNumber != 1 {
		t.Fatalf("payload = %+v, want P2 at turn 1", payload)
	}

	if _, err := svc.Step(state, move); !errors.Is(err, domain.ErrIllegalMove) {
		t.Fatalf("replayed move err = %v, want ErrIllegalMove", err)
	}

	evs, err = svc.Step(state, domain.Concede{Player: domain.PlayerTwo})
	if err != nil {
		t.Fatalf("concede error: %v", err)
	}
	if len(evs) != 2 || evs[1].Kind != EventGameEnded {
		t.Fatalf("events = %+v, want move_applied then game_ended", evs)
	}
	ended := evs[1].Payload.(GameEndedPayload)
	if ended.Result.Winner != domain.PlayerOne || ended.Result.Reason != domain.WinConcede {
		t.Fatalf("result = %+v, want P1 by concede", ended.Result)
	}

	evs, err = svc.Step(state, domain.Concede{Player: domain.PlayerTwo})
	if err != nil || evs != nil {
		t.Fatalf("step on a finished game = %v, %v; want nothing", evs, err)
	}
}

func firstLegal(t *testing.T, state *domain.GameState, kind domain.MoveKind) domain.Move {
	t.Helper()
	for _, m := range domain.LegalMoves(state) {
		if m.Kind() == kind {
			return m
		}
	}
	t.Fatalf("no legal %s move", kind)
	return nil
}
