package ports

import "context"

// Currency is the wallet key of the in-game money wagered on matches.
const Currency = "caps"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for managing game currency.
type EconomyPort interface {
	// GetBalance retrieves the current caps balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes atomically.
	// This is used at the end of a game to settle the wager.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
