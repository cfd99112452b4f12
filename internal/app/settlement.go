package app

import (
	"caravan/internal/domain"
	"caravan/internal/ports"
)

// Settle moves the wager from the loser to the winner. seats maps each player to
// a user id; a zero wager or an unseated player settles nothing.
func Settle(result domain.GameResult, seats map[domain.PlayerID]string, wager int64) []ports.WalletUpdate {
	if wager <= 0 {
		return nil
	}
	winner, ok := seats[result.Winner]
	if !ok || winner == "" {
		return nil
	}
	loser, ok := seats[result.Winner.Other()]
	if !ok || loser == "" {
		return nil
	}

	metadata := map[string]interface{}{
		"reason":          "caravan_wager",
		"win_reason":      string(result.Reason),
		"end_turn_number": result.EndTurnNumber,
	}
	return []ports.WalletUpdate{
		{UserID: winner, Amount: wager, Metadata: metadata},
		{UserID: loser, Amount: -wager, Metadata: metadata},
	}
}
