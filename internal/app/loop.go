package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"caravan/internal/domain"
)

// MoveSource supplies the next move for a player. Implementations may block, e.g.
// waiting on a network connection, and should return when ctx is done.
type MoveSource interface {
	NextMove(ctx context.Context, state *domain.GameState, player domain.PlayerID) (domain.Move, error)
}

// MoveSourceFunc adapts a function to MoveSource.
type MoveSourceFunc func(ctx context.Context, state *domain.GameState, player domain.PlayerID) (domain.Move, error)

func (f MoveSourceFunc) NextMove(ctx context.Context, state *domain.GameState, player domain.PlayerID) (domain.Move, error) {
	return f(ctx, state, player)
}

// MoveSourceByPlayer routes each request to the source registered for the mover.
type MoveSourceByPlayer map[domain.PlayerID]MoveSource

var (
	ErrNoMoveSource = errors.New("no move source for player")
	ErrNoMove       = errors.New("move source returned no move")
)

func (m MoveSourceByPlayer) NextMove(ctx context.Context, state *domain.GameState, player domain.PlayerID) (domain.Move, error) {
	src, ok := m[player]
	if !ok || src == nil {
		return nil, fmt.Errorf("%w %s", ErrNoMoveSource, player)
	}
	return src.NextMove(ctx, state, player)
}

// Hooks observe the turn loop. Any field may be nil.
type Hooks struct {
	OnTurnStart func(state *domain.GameState)
	// OnError receives rejected moves before the mover is asked again.
	OnError   func(state *domain.GameState, move domain.Move, err error)
	OnApplied func(state *domain.GameState, move domain.Move, events []Event)
	OnGameEnd func(state *domain.GameState, result domain.GameResult)
}

// Runner drives a game to completion by pulling moves from a MoveSource.
type Runner struct {
	svc    *Service
	logger *zap.Logger
}

// NewRunner builds a Runner. A nil logger disables logging.
func NewRunner(svc *Service, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{svc: svc, logger: logger}
}

// Run applies moves until the game finishes and returns the result.
// An illegal move is reported through OnError and the same player is asked again.
// Any other failure, including a broken engine invariant, stops the loop.
// The context is checked between moves.
func (r *Runner) Run(ctx context.Context, state *domain.GameState, source MoveSource, hooks Hooks) (*domain.GameResult, error) {
	for !state.Finished() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hooks.OnTurnStart != nil {
			hooks.OnTurnStart(state)
		}

		mover := state.CurrentPlayer
		move, err := source.NextMove(ctx, state, mover)
		if err != nil {
			return nil, fmt.Errorf("next move for %s: %w", mover, err)
		}
		if move == nil {
			return nil, fmt.Errorf("next move for %s: %w", mover, ErrNoMove)
		}

		events, err := r.svc.Step(state, move)
		if err != nil {
			if errors.Is(err, domain.ErrIllegalMove) {
				r.logger.Debug("move rejected",
					zap.Stringer("player", mover),
					zap.String("move", string(move.Kind())),
					zap.Error(err),
				)
				if hooks.OnError != nil {
					hooks.OnError(state, move, err)
				}
				continue
			}
			r.logger.Error("move failed",
				zap.Stringer("player", mover),
				zap.String("move", string(move.Kind())),
				zap.Int("turn", state.TurnNumber),
				zap.Error(err),
			)
			return nil, err
		}

		r.logger.Debug("move applied",
			zap.Stringer("player", mover),
			zap.String("move", string(move.Kind())),
			zap.Int("turn", state.TurnNumber),
			zap.String("phase", string(state.Phase)),
		)
		if hooks.OnApplied != nil {
			hooks.OnApplied(state, move, events)
		}
	}

	if state.Result == nil {
		return nil, fmt.Errorf("%w: finished game has no result", domain.ErrInvalidOutcome)
	}
	result := *state.Result
	r.logger.Info("game ended",
		zap.Stringer("winner", result.Winner),
		zap.String("reason", string(result.Reason)),
		zap.Int("end_turn", result.EndTurnNumber),
	)
	if hooks.OnGameEnd != nil {
		hooks.OnGameEnd(state, result)
	}
	return &result, nil
}
