package domain

import "github.com/google/uuid"

// Legality predicates. Each Can* function is pure and may be re-evaluated freely;
// its check* twin reports the first failing condition so the applier can explain
// a rejection.

// CanPlayBase reports whether a PlayBase move is legal in state.
func CanPlayBase(state *GameState, move PlayBase) bool {
	return checkPlayBase(state, move) == nil
}

// CanAttachFace reports whether an AttachFace move is legal in state.
func CanAttachFace(state *GameState, move AttachFace) bool {
	return checkAttachFace(state, move) == nil
}

// CanDiscardCard reports whether a DiscardCard move is legal in state.
func CanDiscardCard(state *GameState, move DiscardCard) bool {
	return checkDiscardCard(state, move) == nil
}

// CanDiscardCaravan reports whether a DiscardCaravan move is legal in state.
func CanDiscardCaravan(state *GameState, move DiscardCaravan) bool {
	return checkDiscardCaravan(state, move) == nil
}

// CanConcede reports whether a Concede move is legal in state.
func CanConcede(state *GameState, move Concede) bool {
	return checkConcede(state, move) == nil
}

// CanApply dispatches to the predicate for the move's variant.
func CanApply(state *GameState, move Move) bool {
	return CheckMove(state, move) == nil
}

// CheckMove returns nil for a legal move, or an ErrIllegalMove-coded error naming
// the first rule the move breaks.
func CheckMove(state *GameState, move Move) error {
	var err *Error
	switch m := move.(type) {
	case PlayBase:
		err = checkPlayBase(state, m)
	case AttachFace:
		err = checkAttachFace(state, m)
	case DiscardCard:
		err = checkDiscardCard(state, m)
	case DiscardCaravan:
		err = checkDiscardCaravan(state, m)
	case Concede:
		err = checkConcede(state, m)
	default:
		err = illegalMove("unsupported move %T", move)
	}
	if err != nil {
		return err
	}
	return nil
}

func checkPlayBase(state *GameState, move PlayBase) *Error {
	card, err := checkHeldCard(state, move.Player, move.CardID)
	if err != nil {
		return err
	}
	if !card.Rank().IsNumeric() {
		return illegalMove("%s is not a numeric card", card)
	}
	if move.CaravanID.Owner() != move.Player {
		return illegalMove("caravan %s does not belong to %s", move.CaravanID, move.Player)
	}
	caravan, ok := state.Caravan(move.CaravanID)
	if !ok {
		return illegalMove("caravan %s does not exist", move.CaravanID)
	}
	if state.Phase == PhaseSetup && caravan.Len() > 0 {
		return illegalMove("caravan %s already has its setup card", move.CaravanID)
	}
	return checkProgression(caravan, card)
}

// checkProgression applies the value/suit/direction rule for placing card on caravan.
// Suit match and direction match are independent ways to satisfy it.
func checkProgression(caravan *Caravan, card Card) *Error {
	top, ok := caravan.TopCard()
	if !ok {
		return nil
	}
	topValue := top.Base.Value()
	value := card.Value()
	if value == topValue {
		return illegalMove("%s has the same value as the top card of caravan %s", card, caravan.ID())
	}

	direction := caravan.Direction()
	if direction == DirectionUnset {
		return nil
	}
	if card.Suit().Matches(caravan.CurrentSuit()) {
		return nil
	}
	if (direction == DirectionAscending && value > topValue) ||
		(direction == DirectionDescending && value < topValue) {
		return nil
	}
	return illegalMove("%s neither matches suit %s nor continues the %s caravan %s",
		card, caravan.CurrentSuit(), direction, caravan.ID())
}

func checkAttachFace(state *GameState, move AttachFace) *Error {
	card, err := checkHeldCard(state, move.Player, move.CardID)
	if err != nil {
		return err
	}
	if !card.Rank().IsFace() {
		return illegalMove("%s is not a face card", card)
	}
	if state.Phase != PhaseMain {
		return illegalMove("face cards cannot be played during %s", state.Phase)
	}
	caravan, ok := state.Caravan(move.CaravanID)
	if !ok {
		return illegalMove("caravan %s does not exist", move.CaravanID)
	}
	target, ok := caravan.Find(move.TargetBaseID)
	if !ok {
		return illegalMove("target card %s is not in caravan %s", move.TargetBaseID, move.CaravanID)
	}
	if !target.Base.Rank().IsNumeric() {
		return illegalMove("target card %s is not numeric", target.Base)
	}
	return nil
}

func checkDiscardCard(state *GameState, move DiscardCard) *Error {
	if _, err := checkHeldCard(state, move.Player, move.CardID); err != nil {
		return err
	}
	player, _ := state.Player(move.Player)
	if len(player.Deck) == 0 {
		return illegalMove("%s cannot discard with an empty deck", move.Player)
	}
	if state.Phase != PhaseMain {
		return illegalMove("cards cannot be discarded during %s", state.Phase)
	}
	return nil
}

func checkDiscardCaravan(state *GameState, move DiscardCaravan) *Error {
	if err := checkTurn(state, move.Player); err != nil {
		return err
	}
	if move.CaravanID.Owner() != move.Player {
		return illegalMove("caravan %s does not belong to %s", move.CaravanID, move.Player)
	}
	if state.Phase != PhaseMain {
		return illegalMove("caravans cannot be discarded during %s", state.Phase)
	}
	return nil
}

func checkConcede(state *GameState, move Concede) *Error {
	return checkTurn(state, move.Player)
}

func checkTurn(state *GameState, player PlayerID) *Error {
	if state.Finished() {
		return illegalMove("game is finished")
	}
	if state.CurrentPlayer != player {
		return illegalMove("it is not %s's turn", player)
	}
	return nil
}

func checkHeldCard(state *GameState, player PlayerID, cardID uuid.UUID) (Card, *Error) {
	if err := checkTurn(state, player); err != nil {
		return Card{}, err
	}
	ps, ok := state.Player(player)
	if !ok {
		return Card{}, illegalMove("unknown player %s", player)
	}
	card, ok := ps.Hand.Get(cardID)
	if !ok {
		return Card{}, illegalMove("%s does not hold card %s", player, cardID)
	}
	return card, nil
}

// LegalMoves lists every legal move for the current player, in hand order.
// It only enumerates; it never ranks or picks a move.
func LegalMoves(state *GameState) []Move {
	if state.Finished() {
		return nil
	}
	mover := state.CurrentPlayer
	player, ok := state.Player(mover)
	if !ok {
		return nil
	}

	var candidates []Move
	for _, card := range player.Hand.Cards() {
		switch {
		case card.Rank().IsNumeric():
			for _, id := range CaravanIDs {
				if id.Owner() == mover {
					candidates = append(candidates, PlayBase{Player: mover, CardID: card.ID(), CaravanID: id})
				}
			}
		case card.Rank().IsFace():
			for _, id := range CaravanIDs {
				caravan, ok := state.Caravan(id)
				if !ok {
					continue
				}
				for _, pc := range caravan.pile {
					candidates = append(candidates, AttachFace{
						Player:       mover,
						CardID:       card.ID(),
						CaravanID:    id,
						TargetBaseID: pc.Base.ID(),
					})
				}
			}
		}
		candidates = append(candidates, DiscardCard{Player: mover, CardID: card.ID()})
	}
	for _, id := range CaravanIDs {
		if id.Owner() == mover {
			candidates = append(candidates, DiscardCaravan{Player: mover, CaravanID: id})
		}
	}
	candidates = append(candidates, Concede{Player: mover})

	legal := candidates[:0]
	for _, m := range candidates {
		if CanApply(state, m) {
			legal = append(legal, m)
		}
	}
	return legal
}
