package wire

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/structpb"

	"caravan/internal/domain"
)

// ErrMalformed marks a record that does not describe a valid value.
var ErrMalformed = errors.New("malformed record")

// decodeRecord maps a structpb record onto a typed record. Unknown keys are rejected.
func decodeRecord(in *structpb.Struct, out any) error {
	if in == nil {
		return fmt.Errorf("%w: empty record", ErrMalformed)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in.AsMap()); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// DecodeState rebuilds a game state. Piles are rebuilt through the caravan
// operations, so a record holding a face card as a base card is rejected.
func DecodeState(in *structpb.Struct) (*domain.GameState, error) {
	var rec StateRecord
	if err := decodeRecord(in, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

// DecodeResult rebuilds a game result.
func DecodeResult(in *structpb.Struct) (domain.GameResult, error) {
	var rec ResultRecord
	if err := decodeRecord(in, &rec); err != nil {
		return domain.GameResult{}, err
	}
	return rec.toDomain()
}

// DecodeMove rebuilds a move.
func DecodeMove(in *structpb.Struct) (domain.Move, error) {
	var rec MoveRecord
	if err := decodeRecord(in, &rec); err != nil {
		return nil, err
	}
	return rec.toDomain()
}

func (r StateRecord) toDomain() (*domain.GameState, error) {
	players := make(map[domain.PlayerID]*domain.PlayerState, len(domain.Players))
	for _, id := range domain.Players {
		p, ok := r.Players[id.String()]
		if !ok {
			return nil, fmt.Errorf("%w: missing player %s", ErrMalformed, id)
		}
		state, err := p.toDomain()
		if err != nil {
			return nil, fmt.Errorf("player %s: %w", id, err)
		}
		players[id] = state
	}
	if len(r.Players) != len(domain.Players) {
		return nil, fmt.Errorf("%w: expected %d players, got %d", ErrMalformed, len(domain.Players), len(r.Players))
	}

	current, err := domain.ParsePlayerID(r.CurrentPlayer)
	if err != nil {
		return nil, fmt.Errorf("%w: current_player: %v", ErrMalformed, err)
	}
	phase, err := parsePhase(r.Phase)
	if err != nil {
		return nil, err
	}

	if err := r.checkCardIDs(); err != nil {
		return nil, err
	}
	for _, id := range domain.CaravanIDs {
		if _, ok := r.Caravans[id.String()]; !ok {
			return nil, fmt.Errorf("%w: missing caravan %s", ErrMalformed, id)
		}
	}
	if (phase == domain.PhaseFinished) != (r.Result != nil) {
		return nil, fmt.Errorf("%w: phase %s does not match result %v", ErrMalformed, phase, r.Result != nil)
	}

	state := domain.NewGameState(players[domain.PlayerOne], players[domain.PlayerTwo], current)
	state.TurnNumber = r.TurnNumber
	state.Phase = phase

	for code, c := range r.Caravans {
		id, err := domain.ParseCaravanID(code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		caravan, err := c.toDomain(id)
		if err != nil {
			return nil, err
		}
		state.Caravans[id] = caravan
	}

	if r.Result != nil {
		result, err := r.Result.toDomain()
		if err != nil {
			return nil, err
		}
		state.Result = &result
	}
	return state, nil
}

// checkCardIDs rejects a record holding the same card id twice anywhere in decks,
// hands or piles.
func (r StateRecord) checkCardIDs() error {
	seen := make(map[uuid.UUID]struct{})
	add := func(field string, rec CardRecord) error {
		id, err := parseID(field, rec.ID)
		if err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate card id %s in %s", ErrMalformed, id, field)
		}
		seen[id] = struct{}{}
		return nil
	}

	for code, p := range r.Players {
		for _, rec := range p.Deck {
			if err := add(code+" deck", rec); err != nil {
				return err
			}
		}
		for _, rec := range p.Hand {
			if err := add(code+" hand", rec); err != nil {
				return err
			}
		}
	}
	for code, c := range r.Caravans {
		for _, pc := range c.Pile {
			if err := add(code+" pile", pc.BaseCard); err != nil {
				return err
			}
			for _, a := range pc.Attachments {
				if err := add(code+" pile", a); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r PlayerRecord) toDomain() (*domain.PlayerState, error) {
	deck, err := cardsToDomain(r.Deck)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	hand, err := cardsToDomain(r.Hand)
	if err != nil {
		return nil, fmt.Errorf("hand: %w", err)
	}
	return domain.NewPlayerState(deck, hand...), nil
}

func (r CaravanRecord) toDomain(slot domain.CaravanID) (*domain.Caravan, error) {
	if r.ID != "" && r.ID != slot.String() {
		return nil, fmt.Errorf("%w: caravan %s keyed as %s", ErrMalformed, r.ID, slot)
	}
	caravan := domain.NewCaravan(slot)
	for _, pc := range r.Pile {
		base, err := pc.BaseCard.toDomain()
		if err != nil {
			return nil, err
		}
		if err := caravan.AddBaseCard(base); err != nil {
			return nil, err
		}
		for _, a := range pc.Attachments {
			face, err := a.toDomain()
			if err != nil {
				return nil, err
			}
			if err := caravan.Attach(base.ID(), face); err != nil {
				return nil, err
			}
		}
	}
	return caravan, nil
}

func cardsToDomain(recs []CardRecord) ([]domain.Card, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	out := make([]domain.Card, 0, len(recs))
	for _, rec := range recs {
		c, err := rec.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r CardRecord) toDomain() (domain.Card, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: card id %q: %v", ErrMalformed, r.ID, err)
	}
	rank, err := domain.ParseRank(r.Rank)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rank == domain.RankJoker {
		if r.Suit != nil {
			return domain.Card{}, fmt.Errorf("%w: joker %s carries suit %q", ErrMalformed, id, *r.Suit)
		}
		return domain.NewJoker(id), nil
	}
	if r.Suit == nil {
		return domain.Card{}, fmt.Errorf("%w: card %s has no suit", ErrMalformed, id)
	}
	suit, err := domain.ParseSuit(*r.Suit)
	if err != nil {
		return domain.Card{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return domain.NewCard(id, rank, suit), nil
}

func (r ResultRecord) toDomain() (domain.GameResult, error) {
	winner, err := domain.ParsePlayerID(r.WinnerID)
	if err != nil {
		return domain.GameResult{}, fmt.Errorf("%w: winner_id: %v", ErrMalformed, err)
	}
	reason := domain.WinReason(r.Reason)
	switch reason {
	case domain.WinTwoCaravans, domain.WinThreeCaravans, domain.WinConcede, domain.WinOutOfCards:
	default:
		return domain.GameResult{}, fmt.Errorf("%w: unknown reason %q", ErrMalformed, r.Reason)
	}
	return domain.GameResult{Winner: winner, Reason: reason, EndTurnNumber: r.EndTurnNumber}, nil
}

func (r MoveRecord) toDomain() (domain.Move, error) {
	player, err := domain.ParsePlayerID(r.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("%w: player_id: %v", ErrMalformed, err)
	}

	switch domain.MoveKind(r.MoveType) {
	case domain.MovePlayBase:
		card, caravan, err := r.cardAndCaravan()
		if err != nil {
			return nil, err
		}
		return domain.PlayBase{Player: player, CardID: card, CaravanID: caravan}, nil
	case domain.MoveAttachFace:
		card, caravan, err := r.cardAndCaravan()
		if err != nil {
			return nil, err
		}
		target, err := parseID("target_base_id", r.TargetBaseID)
		if err != nil {
			return nil, err
		}
		return domain.AttachFace{Player: player, CardID: card, CaravanID: caravan, TargetBaseID: target}, nil
	case domain.MoveDiscardCard:
		card, err := parseID("card_id", r.CardID)
		if err != nil {
			return nil, err
		}
		return domain.DiscardCard{Player: player, CardID: card}, nil
	case domain.MoveDiscardCaravan:
		caravan, err := domain.ParseCaravanID(r.CaravanID)
		if err != nil {
			return nil, fmt.Errorf("%w: caravan_id: %v", ErrMalformed, err)
		}
		return domain.DiscardCaravan{Player: player, CaravanID: caravan}, nil
	case domain.MoveConcede:
		return domain.Concede{Player: player}, nil
	}
	return nil, fmt.Errorf("%w: unknown move_type %q", ErrMalformed, r.MoveType)
}

func (r MoveRecord) cardAndCaravan() (uuid.UUID, domain.CaravanID, error) {
	card, err := parseID("card_id", r.CardID)
	if err != nil {
		return uuid.Nil, 0, err
	}
	caravan, err := domain.ParseCaravanID(r.CaravanID)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("%w: caravan_id: %v", ErrMalformed, err)
	}
	return card, caravan, nil
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q: %v", ErrMalformed, field, value, err)
	}
	return id, nil
}

func parsePhase(s string) (domain.Phase, error) {
	switch p := domain.Phase(s); p {
	case domain.PhaseSetup, domain.PhaseMain, domain.PhaseFinished:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown phase %q", ErrMalformed, s)
}
