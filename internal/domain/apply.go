package domain

// ApplyMove applies move with the default rules. See Rules.ApplyMove.
func ApplyMove(state *GameState, move Move) (*GameResult, error) {
	return DefaultRules().ApplyMove(state, move)
}

// ApplyMove validates move, mutates state and evaluates victory. An illegal move
// returns an ErrIllegalMove error and leaves state untouched. When the move ends
// the game the result is recorded on state and returned.
func (r Rules) ApplyMove(state *GameState, move Move) (*GameResult, error) {
	if err := CheckMove(state, move); err != nil {
		return nil, err
	}

	var (
		result *GameResult
		err    error
	)
	switch m := move.(type) {
	case PlayBase:
		result, err = r.applyPlayBase(state, m)
	case AttachFace:
		result, err = r.applyAttachFace(state, m)
	case DiscardCard:
		result, err = r.applyDiscardCard(state, m)
	case DiscardCaravan:
		result, err = r.applyDiscardCaravan(state, m)
	case Concede:
		result = r.CheckConcession(state, m.Player)
	default:
		return nil, illegalMove("unsupported move %T", move)
	}
	if err != nil {
		return nil, err
	}
	if result != nil {
		state.Phase = PhaseFinished
		state.Result = result
	}
	return result, nil
}

func (r Rules) applyPlayBase(state *GameState, move PlayBase) (*GameResult, error) {
	player, _ := state.Player(move.Player)
	caravan, _ := state.Caravan(move.CaravanID)

	card, _ := player.Hand.Remove(move.CardID)
	if err := caravan.AddBaseCard(card); err != nil {
		return nil, err
	}
	return r.finishTurn(state, move.Player, true)
}

func (r Rules) applyAttachFace(state *GameState, move AttachFace) (*GameResult, error) {
	player, _ := state.Player(move.Player)
	caravan, _ := state.Caravan(move.CaravanID)

	target, ok := caravan.Find(move.TargetBaseID)
	if !ok {
		return nil, newError(CodeTargetNotFound, "caravan %s: target card %s not found in pile", move.CaravanID, move.TargetBaseID)
	}
	card, _ := player.Hand.Remove(move.CardID)
	if err := caravan.Attach(move.TargetBaseID, card); err != nil {
		return nil, err
	}

	switch card.Rank() {
	case RankJack:
		caravan.RemoveBaseCard(move.TargetBaseID)
	case RankJoker:
		removeJokerMatches(state, target.Base)
	}
	return r.finishTurn(state, move.Player, true)
}

// removeJokerMatches clears every other numeric card sharing the target's suit when
// the target is an ace, or its rank otherwise.
func removeJokerMatches(state *GameState, target Card) {
	match := func(card Card) bool {
		if card.ID() == target.ID() || !card.Rank().IsNumeric() {
			return false
		}
		if target.Rank() == RankAce {
			return card.Suit().Matches(target.Suit())
		}
		return card.Rank() == target.Rank()
	}
	for _, id := range CaravanIDs {
		if caravan, ok := state.Caravan(id); ok {
			caravan.RemoveBaseCardsWhere(match)
		}
	}
}

func (r Rules) applyDiscardCard(state *GameState, move DiscardCard) (*GameResult, error) {
	player, _ := state.Player(move.Player)
	player.Hand.Remove(move.CardID)
	return r.finishTurn(state, move.Player, true)
}

func (r Rules) applyDiscardCaravan(state *GameState, move DiscardCaravan) (*GameResult, error) {
	caravan, _ := state.Caravan(move.CaravanID)
	caravan.Discard()
	return r.finishTurn(state, move.Player, false)
}

// finishTurn evaluates victory and, when play continues, refills the mover's hand
// and passes the turn.
func (r Rules) finishTurn(state *GameState, mover PlayerID, draw bool) (*GameResult, error) {
	result, err := r.CheckVictory(state)
	if err != nil || result != nil {
		return result, err
	}
	if draw {
		drawIfPossible(state, mover)
	}
	advanceTurn(state)
	return nil, nil
}

func drawIfPossible(state *GameState, mover PlayerID) {
	if state.Phase == PhaseSetup {
		return
	}
	if player, ok := state.Player(mover); ok {
		player.Draw()
	}
}

func advanceTurn(state *GameState) {
	if state.Phase == PhaseSetup && setupComplete(state) {
		state.Phase = PhaseMain
	}
	state.TurnNumber++
	state.CurrentPlayer = state.CurrentPlayer.Other()
}

func setupComplete(state *GameState) bool {
	for _, id := range CaravanIDs {
		caravan, ok := state.Caravan(id)
		if !ok || caravan.Len() == 0 {
			return false
		}
	}
	return true
}
