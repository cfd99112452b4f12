package wire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/domain"
)

// MarshalState encodes a full game state as JSON.
func MarshalState(state *domain.GameState) ([]byte, error) {
	s, err := EncodeState(state)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// UnmarshalState decodes JSON produced by MarshalState.
func UnmarshalState(data []byte) (*domain.GameState, error) {
	s, err := unmarshalStruct(data)
	if err != nil {
		return nil, err
	}
	return DecodeState(s)
}

// MarshalMove encodes a move as JSON.
func MarshalMove(move domain.Move) ([]byte, error) {
	s, err := EncodeMove(move)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// UnmarshalMove decodes a JSON move record.
func UnmarshalMove(data []byte) (domain.Move, error) {
	s, err := unmarshalStruct(data)
	if err != nil {
		return nil, err
	}
	return DecodeMove(s)
}

// MarshalResult encodes a game result as JSON.
func MarshalResult(result domain.GameResult) ([]byte, error) {
	s, err := EncodeResult(result)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// UnmarshalResult decodes a JSON result record.
func UnmarshalResult(data []byte) (domain.GameResult, error) {
	s, err := unmarshalStruct(data)
	if err != nil {
		return domain.GameResult{}, err
	}
	return DecodeResult(s)
}

func unmarshalStruct(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return s, nil
}
