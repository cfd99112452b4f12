package nakama

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/app"
	"caravan/internal/domain"
	"caravan/internal/wire"
)

// marshalPayload renders a JSON object through structpb so every message shares
// the wire package's encoding rules.
func marshalPayload(fields map[string]any) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	return protojson.Marshal(s)
}

func marshalStruct(s *structpb.Struct) ([]byte, error) {
	return protojson.Marshal(s)
}

// eventToMessage maps an app event to an opcode and payload. ok is false for
// events that are not forwarded as-is.
func eventToMessage(ev app.Event) (opCode int64, data []byte, ok bool, err error) {
	var fields map[string]any
	switch ev.Kind {
	case app.EventGameStarted:
		p := ev.Payload.(app.GameStartedPayload)
		opCode = OpGameStarted
		fields = map[string]any{
			"phase":           string(p.Phase),
			"starting_player": p.StartingPlayer.String(),
		}
	case app.EventMoveApplied:
		p := ev.Payload.(app.MoveAppliedPayload)
		move, encErr := wire.EncodeMove(p.Move)
		if encErr != nil {
			return 0, nil, false, encErr
		}
		opCode = OpMoveApplied
		fields = map[string]any{
			"move":        move.AsMap(),
			"next_player": p.NextPlayer.String(),
			"turn_number": p.TurnNumber,
			"phase":       string(p.Phase),
		}
	case app.EventGameEnded:
		p := ev.Payload.(app.GameEndedPayload)
		result, encErr := wire.EncodeResult(p.Result)
		if encErr != nil {
			return 0, nil, false, encErr
		}
		opCode = OpGameEnded
		fields = map[string]any{
			"result": result.AsMap(),
		}
	default:
		return 0, nil, false, nil
	}

	data, err = marshalPayload(fields)
	if err != nil {
		return 0, nil, false, err
	}
	return opCode, data, true, nil
}

// withMover rebinds a decoded move to the sender's seat.
func withMover(move domain.Move, player domain.PlayerID) domain.Move {
	switch m := move.(type) {
	case domain.PlayBase:
		m.Player = player
		return m
	case domain.AttachFace:
		m.Player = player
		return m
	case domain.DiscardCard:
		m.Player = player
		return m
	case domain.DiscardCaravan:
		m.Player = player
		return m
	case domain.Concede:
		m.Player = player
		return m
	}
	return move
}
