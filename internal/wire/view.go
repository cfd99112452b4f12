package wire

import (
	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/domain"
)

// ViewFor encodes what viewer may see: their own hand, counts for the opponent's
// hand and both decks, every caravan with its derived score and direction, and the
// viewer's legal moves when it is their turn.
func ViewFor(state *domain.GameState, viewer domain.PlayerID) (*structpb.Struct, error) {
	players := make(map[string]any, len(domain.Players))
	for _, id := range domain.Players {
		p, ok := state.Player(id)
		if !ok {
			continue
		}
		entry := map[string]any{
			"deck_count": len(p.Deck),
			"hand_count": p.Hand.Len(),
		}
		if id == viewer {
			entry["hand"] = cardList(p.Hand.Cards())
		}
		players[id.String()] = entry
	}

	caravans := make(map[string]any, len(domain.CaravanIDs))
	for _, id := range domain.CaravanIDs {
		c, ok := state.Caravan(id)
		if !ok {
			continue
		}
		entry := caravanMap(c)
		entry["score"] = c.Score()
		entry["direction"] = string(c.Direction())
		entry["suit"] = nil
		if s, ok := c.CurrentSuit().Get(); ok {
			entry["suit"] = s.String()
		}
		caravans[id.String()] = entry
	}

	legal := []any{}
	if state.CurrentPlayer == viewer {
		for _, m := range domain.LegalMoves(state) {
			mm, err := moveMap(m)
			if err != nil {
				return nil, err
			}
			legal = append(legal, mm)
		}
	}

	var result any
	if state.Result != nil {
		result = resultMap(*state.Result)
	}
	return structpb.NewStruct(map[string]any{
		"viewer":         viewer.String(),
		"players":        players,
		"caravans":       caravans,
		"current_player": state.CurrentPlayer.String(),
		"turn_number":    state.TurnNumber,
		"phase":          string(state.Phase),
		"result":         result,
		"legal_moves":    legal,
	})
}
