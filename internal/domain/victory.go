package domain

const (
	// DefaultMinScore is the lowest qualifying caravan score.
	DefaultMinScore = 21
	// DefaultMaxScore is the highest qualifying caravan score.
	DefaultMaxScore = 26
)

// Rules holds the tunable constants of the victory evaluator.
type Rules struct {
	MinScore int
	MaxScore int
	// RequireAllRoutesSold delays any sales victory until every route has at least
	// one qualifying caravan.
	RequireAllRoutesSold bool
}

// DefaultRules returns the standard 21-26 score range.
func DefaultRules() Rules {
	return Rules{MinScore: DefaultMinScore, MaxScore: DefaultMaxScore}
}

// Qualifies reports whether score lies in the inclusive target range.
func (r Rules) Qualifies(score int) bool {
	return score >= r.MinScore && score <= r.MaxScore
}

// CheckConcession returns the result of conceding player giving up at the current turn.
func (r Rules) CheckConcession(state *GameState, conceding PlayerID) *GameResult {
	return &GameResult{
		Winner:        conceding.Other(),
		Reason:        WinConcede,
		EndTurnNumber: state.TurnNumber,
	}
}

// CheckVictory evaluates sales victory, then out-of-cards. It never mutates state.
// A nil result with a nil error means the game continues.
func (r Rules) CheckVictory(state *GameState) (*GameResult, error) {
	result, err := r.salesVictory(state)
	if err != nil || result != nil {
		return result, err
	}

	for _, id := range Players {
		player, ok := state.Player(id)
		if !ok {
			return nil, newError(CodeInvalidOutcome, "missing player %s", id)
		}
		if player.OutOfCards() {
			return &GameResult{
				Winner:        id.Other(),
				Reason:        WinOutOfCards,
				EndTurnNumber: state.TurnNumber,
			}, nil
		}
	}
	return nil, nil
}

// RouteWinner returns the player who currently takes route, if any.
func (r Rules) RouteWinner(state *GameState, route RouteID) (PlayerID, bool, error) {
	mine, ok := state.CaravanFor(PlayerOne, route)
	if !ok {
		return 0, false, newError(CodeInvalidOutcome, "missing %s caravan for route %s", PlayerOne, route)
	}
	theirs, ok := state.CaravanFor(PlayerTwo, route)
	if !ok {
		return 0, false, newError(CodeInvalidOutcome, "missing %s caravan for route %s", PlayerTwo, route)
	}

	scoreOne, scoreTwo := mine.Score(), theirs.Score()
	oneQualifies, twoQualifies := r.Qualifies(scoreOne), r.Qualifies(scoreTwo)
	switch {
	case oneQualifies && !twoQualifies:
		return PlayerOne, true, nil
	case twoQualifies && !oneQualifies:
		return PlayerTwo, true, nil
	case oneQualifies && twoQualifies && scoreOne > scoreTwo:
		return PlayerOne, true, nil
	case oneQualifies && twoQualifies && scoreTwo > scoreOne:
		return PlayerTwo, true, nil
	}
	return 0, false, nil
}

func (r Rules) salesVictory(state *GameState) (*GameResult, error) {
	if r.RequireAllRoutesSold {
		sold, err := r.allRoutesSold(state)
		if err != nil || !sold {
			return nil, err
		}
	}

	wins := make(map[PlayerID]int, len(Players))
	for _, route := range Routes {
		winner, ok, err := r.RouteWinner(state, route)
		if err != nil {
			return nil, err
		}
		if ok {
			wins[winner]++
		}
	}

	oneWon, twoWon := wins[PlayerOne] >= 2, wins[PlayerTwo] >= 2
	switch {
	case oneWon && twoWon:
		return nil, newError(CodeInvalidOutcome, "both players hold a route majority (P1: %d, P2: %d)",
			wins[PlayerOne], wins[PlayerTwo])
	case oneWon:
		return r.salesResult(state, PlayerOne, wins[PlayerOne]), nil
	case twoWon:
		return r.salesResult(state, PlayerTwo, wins[PlayerTwo]), nil
	}
	return nil, nil
}

func (r Rules) salesResult(state *GameState, winner PlayerID, routes int) *GameResult {
	reason := WinTwoCaravans
	if routes == len(Routes) {
		reason = WinThreeCaravans
	}
	return &GameResult{Winner: winner, Reason: reason, EndTurnNumber: state.TurnNumber}
}

func (r Rules) allRoutesSold(state *GameState) (bool, error) {
	for _, route := range Routes {
		for _, player := range Players {
			if _, ok := state.CaravanFor(player, route); !ok {
				return false, newError(CodeInvalidOutcome, "missing %s caravan for route %s", player, route)
			}
		}
		mine, _ := state.CaravanFor(PlayerOne, route)
		theirs, _ := state.CaravanFor(PlayerTwo, route)
		if !r.Qualifies(mine.Score()) && !r.Qualifies(theirs.Score()) {
			return false, nil
		}
	}
	return true, nil
}
