package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"caravan/internal/config"
	"caravan/internal/domain"
)

// Service contains Caravan use-cases operating on domain state.
type Service struct {
	rng   *rand.Rand
	rules domain.Rules
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, rules domain.Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rules: rules}
}

var (
	ErrInvalidSetup = errors.New("invalid game setup")
	ErrDeckTooSmall = errors.New("deck smaller than starting hand")
)

// DeckBuilder returns the unshuffled deck a player starts with.
type DeckBuilder func(player domain.PlayerID) []domain.Card

// StandardDeckBuilder gives every player a fresh 54-card deck.
func StandardDeckBuilder(domain.PlayerID) []domain.Card {
	return domain.StandardDeck(uuid.New)
}

// Setup describes how a new game is dealt.
type Setup struct {
	StartingHandSize int
	StartingPlayer   domain.PlayerID
	ShuffleDecks     bool
	DeckBuilder      DeckBuilder
}

// DefaultSetup deals eight cards from shuffled standard decks with P1 to move.
func DefaultSetup() Setup {
	return Setup{
		StartingHandSize: 8,
		StartingPlayer:   domain.PlayerOne,
		ShuffleDecks:     true,
		DeckBuilder:      StandardDeckBuilder,
	}
}

// SetupFromConfig maps the loaded game configuration onto a Setup.
func SetupFromConfig(c *config.GameConfig) Setup {
	return Setup{
		StartingHandSize: c.StartingHandSize,
		StartingPlayer:   c.StartingPlayerID(),
		ShuffleDecks:     c.ShuffleDecks,
		DeckBuilder:      StandardDeckBuilder,
	}
}

// Rules returns the victory rules the service applies.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

// StartGame deals both players and returns a SETUP state at turn 0.
// Each player receives a private hand_dealt event, followed by a broadcast game_started.
func (s *Service) StartGame(setup Setup) (*domain.GameState, []Event, error) {
	if setup.StartingHandSize <= 0 || !setup.StartingPlayer.Valid() {
		return nil, nil, fmt.Errorf("%w: hand size %d, starting player %s",
			ErrInvalidSetup, setup.StartingHandSize, setup.StartingPlayer)
	}
	build := setup.DeckBuilder
	if build == nil {
		build = StandardDeckBuilder
	}

	players := make(map[domain.PlayerID]*domain.PlayerState, len(domain.Players))
	events := make([]Event, 0, len(domain.Players)+1)
	for _, id := range domain.Players {
		deck := build(id)
		if setup.ShuffleDecks {
			deck = domain.Shuffle(deck, s.rng)
		}
		if len(deck) < setup.StartingHandSize {
			return nil, nil, fmt.Errorf("%w: %s has %d cards, needs %d",
				ErrDeckTooSmall, id, len(deck), setup.StartingHandSize)
		}
		players[id] = domain.Deal(deck, setup.StartingHandSize)

		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				Player: id,
				Hand:   players[id].Hand.Cards(),
			},
			Recipients: []domain.PlayerID{id},
		})
	}

	state := domain.NewGameState(players[domain.PlayerOne], players[domain.PlayerTwo], setup.StartingPlayer)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:          state.Phase,
			StartingPlayer: state.CurrentPlayer,
		},
	})
	return state, events, nil
}

// Step applies one move. A finished game ignores the move and emits nothing.
// Rule errors are returned unchanged so callers can test them with errors.Is.
func (s *Service) Step(state *domain.GameState, move domain.Move) ([]Event, error) {
	if state.Finished() {
		return nil, nil
	}

	result, err := s.rules.ApplyMove(state, move)
	if err != nil {
		return nil, err
	}

	events := []Event{
		{
			Kind: EventMoveApplied,
			Payload: MoveAppliedPayload{
				Move:       move,
				NextPlayer: state.CurrentPlayer,
				TurnNumber: state.TurnNumber,
				Phase:      state.Phase,
			},
		},
	}
	if result != nil {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Result: *result},
		})
	}
	return events, nil
}
