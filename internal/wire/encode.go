package wire

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/domain"
)

// EncodeState converts a full game state, hidden information included.
func EncodeState(state *domain.GameState) (*structpb.Struct, error) {
	return structpb.NewStruct(stateMap(state))
}

// EncodeResult converts a game result.
func EncodeResult(result domain.GameResult) (*structpb.Struct, error) {
	return structpb.NewStruct(resultMap(result))
}

// EncodeMove converts a move.
func EncodeMove(move domain.Move) (*structpb.Struct, error) {
	m, err := moveMap(move)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func stateMap(state *domain.GameState) map[string]any {
	players := make(map[string]any, len(state.Players))
	for id, p := range state.Players {
		if p == nil {
			continue
		}
		players[id.String()] = map[string]any{
			"deck": cardList(p.Deck),
			"hand": cardList(p.Hand.Cards()),
		}
	}

	caravans := make(map[string]any, len(state.Caravans))
	for id, c := range state.Caravans {
		if c == nil {
			continue
		}
		caravans[id.String()] = caravanMap(c)
	}

	var result any
	if state.Result != nil {
		result = resultMap(*state.Result)
	}
	return map[string]any{
		"players":        players,
		"caravans":       caravans,
		"current_player": state.CurrentPlayer.String(),
		"turn_number":    state.TurnNumber,
		"phase":          string(state.Phase),
		"result":         result,
	}
}

func caravanMap(c *domain.Caravan) map[string]any {
	pile := c.Pile()
	out := make([]any, 0, len(pile))
	for _, pc := range pile {
		out = append(out, map[string]any{
			"base_card":   cardMap(pc.Base),
			"attachments": cardList(pc.Attachments),
		})
	}
	return map[string]any{
		"id":   c.ID().String(),
		"pile": out,
	}
}

func cardList(cards []domain.Card) []any {
	out := make([]any, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardMap(c))
	}
	return out
}

func cardMap(c domain.Card) map[string]any {
	var suit any
	if s, ok := c.Suit().Get(); ok {
		suit = s.String()
	}
	return map[string]any{
		"id":   c.ID().String(),
		"rank": c.Rank().String(),
		"suit": suit,
	}
}

func resultMap(r domain.GameResult) map[string]any {
	return map[string]any{
		"winner_id":       r.Winner.String(),
		"reason":          string(r.Reason),
		"end_turn_number": r.EndTurnNumber,
	}
}

func moveMap(move domain.Move) (map[string]any, error) {
	out := map[string]any{
		"player_id": move.Mover().String(),
		"move_type": string(move.Kind()),
	}
	switch m := move.(type) {
	case domain.PlayBase:
		out["card_id"] = m.CardID.String()
		out["caravan_id"] = m.CaravanID.String()
	case domain.AttachFace:
		out["card_id"] = m.CardID.String()
		out["caravan_id"] = m.CaravanID.String()
		out["target_base_id"] = m.TargetBaseID.String()
	case domain.DiscardCard:
		out["card_id"] = m.CardID.String()
	case domain.DiscardCaravan:
		out["caravan_id"] = m.CaravanID.String()
	case domain.Concede:
	default:
		return nil, fmt.Errorf("unsupported move %T", move)
	}
	return out, nil
}
