package app

import "caravan/internal/domain"

// EventKind identifies emitted game events for Nakama dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventMoveApplied  EventKind = "move_applied"
	EventGameEnded    EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.PlayerID // empty means broadcast
}

type PlayerJoinedPayload struct {
	UserID string
	Seat   domain.PlayerID
	Owner  bool
}

type PlayerLeftPayload struct {
	UserID string
	Seat   domain.PlayerID
}

type GameStartedPayload struct {
	Phase          domain.Phase
	StartingPlayer domain.PlayerID
}

type HandDealtPayload struct {
	Player domain.PlayerID
	Hand   []domain.Card
}

type MoveAppliedPayload struct {
	Move       domain.Move
	NextPlayer domain.PlayerID
	TurnNumber int
	Phase      domain.Phase
}

type GameEndedPayload struct {
	Result domain.GameResult
}
