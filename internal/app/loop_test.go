package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"caravan/internal/domain"
)

// scriptedSource replays moves in order and records who was asked.
type scriptedSource struct {
	moves []domain.Move
	asked []domain.PlayerID
}

func (s *scriptedSource) NextMove(ctx context.Context, state *domain.GameState, player domain.PlayerID) (domain.Move, error) {
	s.asked = append(s.asked, player)
	if len(s.moves) == 0 {
		return nil, errors.New("script exhausted")
	}
	m := s.moves[0]
	s.moves = s.moves[1:]
	return m, nil
}

func startedGame(t *testing.T) (*Service, *domain.GameState) {
	t.Helper()
	svc := newTestService(11)
	setup := DefaultSetup()
	setup.DeckBuilder = sequentialDecks()
	state, _, err := svc.StartGame(setup)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	return svc, state
}

func TestRunnerRetriesIllegalMoves(t *testing.T) {
	svc, state := startedGame(t)

	source := &scriptedSource{moves: []domain.Move{
		domain.Concede{Player: domain.PlayerTwo}, // not P2's turn
		domain.DiscardCaravan{Player: domain.PlayerOne, CaravanID: domain.CaravanP1A}, // not during setup
		domain.Concede{Player: domain.PlayerOne},
	}}

	var rejected []error
	var ended *domain.GameResult
	turnStarts := 0
	hooks := Hooks{
		OnTurnStart: func(*domain.GameState) { turnStarts++ },
		OnError:     func(_ *domain.GameState, _ domain.Move, err error) { rejected = append(rejected, err) },
		OnGameEnd:   func(_ *domain.GameState, r domain.GameResult) { ended = &r },
	}

	result, err := NewRunner(svc, zaptest.NewLogger(t)).Run(context.Background(), state, source, hooks)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if result.Winner != domain.PlayerTwo || result.Reason != domain.WinConcede || result.EndTurnNumber != 0 {
		t.Fatalf("result = %+v, want P2 by concede at turn 0", result)
	}
	if len(rejected) != 2 {
		t.Fatalf("rejected = %d, want 2", len(rejected))
	}
	for _, err := range rejected {
		if !errors.Is(err, domain.ErrIllegalMove) {
			t.Errorf("rejection %v is not ErrIllegalMove", err)
		}
	}
	for i, p := range source.asked {
		if p != domain.PlayerOne {
			t.Errorf("request %d went to %s, want P1", i, p)
		}
	}
	if turnStarts != 3 {
		t.Errorf("turn starts = %d, want 3", turnStarts)
	}
	if ended == nil || *ended != *result {
		t.Errorf("OnGameEnd result = %+v, want %+v", ended, result)
	}
}

func TestRunnerRoutesByPlayer(t *testing.T) {
	svc, state := startedGame(t)

	p1 := &scriptedSource{moves: []domain.Move{firstLegal(t, state, domain.MovePlayBase)}}
	p2 := &scriptedSource{moves: []domain.Move{domain.Concede{Player: domain.PlayerTwo}}}

	applied := 0
	result, err := NewRunner(svc, zaptest.NewLogger(t)).Run(context.Background(), state,
		MoveSourceByPlayer{domain.PlayerOne: p1, domain.PlayerTwo: p2},
		Hooks{OnApplied: func(*domain.GameState, domain.Move, []Event) { applied++ }},
	)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if result.Winner != domain.PlayerOne || result.EndTurnNumber != 1 {
		t.Fatalf("result = %+v, want P1 at turn 1", result)
	}
	if applied != 2 {
		t.Fatalf("applied = %d, want 2", applied)
	}
	if len(p1.asked) != 1 || len(p2.asked) != 1 {
		t.Fatalf("asked p1=%d p2=%d, want 1 each", len(p1.asked), len(p2.asked))
	}
}

func TestRunnerMissingSource(t *testing.T) {
	svc, state := startedGame(t)
	_, err := NewRunner(svc, nil).Run(context.Background(), state, MoveSourceByPlayer{}, Hooks{})
	if !errors.Is(err, ErrNoMoveSource) {
		t.Fatalf("err = %v, want ErrNoMoveSource", err)
	}
}

func TestRunnerNilMove(t *testing.T) {
	svc, state := startedGame(t)
	nothing := MoveSourceFunc(func(context.Context, *domain.GameState, domain.PlayerID) (domain.Move, error) {
		return nil, nil
	})
	if _, err := NewRunner(svc, nil).Run(context.Background(), state, nothing, Hooks{}); !errors.Is(err, ErrNoMove) {
		t.Fatalf("err = %v, want ErrNoMove", err)
	}
}

func TestRunnerHonoursCancellation(t *testing.T) {
	svc, state := startedGame(t)
	ctx, cancel := context.WithCancel(context.Background())

	source := MoveSourceFunc(func(ctx context.Context, s *domain.GameState, p domain.PlayerID) (domain.Move, error) {
		cancel()
		for _, m := range domain.LegalMoves(s) {
			if m.Kind() == domain.MovePlayBase {
				return m, nil
			}
		}
		return domain.Concede{Player: p}, nil
	})

	_, err := NewRunner(svc, zaptest.NewLogger(t)).Run(ctx, state, source, Hooks{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if state.TurnNumber != 1 {
		t.Fatalf("turn = %d, want exactly one move applied", state.TurnNumber)
	}
}

func TestRunnerStopsOnInvalidOutcome(t *testing.T) {
	svc, state := startedGame(t)
	delete(state.Caravans, domain.CaravanP2C)

	source := MoveSourceFunc(func(_ context.Context, s *domain.GameState, p domain.PlayerID) (domain.Move, error) {
		return firstLegal(t, s, domain.MovePlayBase), nil
	})
	_, err := NewRunner(svc, zaptest.NewLogger(t)).Run(context.Background(), state, source, Hooks{})
	if !errors.Is(err, domain.ErrInvalidOutcome) {
		t.Fatalf("err = %v, want ErrInvalidOutcome", err)
	}
}
