package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"caravan/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// walletModule is the slice of runtime.NakamaModule the economy adapter needs.
type walletModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletsUpdate(ctx context.Context, updates []*runtime.WalletUpdate, updateLedger bool) ([]*runtime.WalletUpdateResult, error)
}

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
type NakamaEconomyAdapter struct {
	nk walletModule
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk walletModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{
		nk: nk,
	}
}

// GetBalance retrieves the current caps balance for a user.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Wallet == "" {
		return 0, nil
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}

	return wallet[ports.Currency], nil
}

// UpdateBalances applies every non-zero change in a single wallet transaction, so a
// rejected debit leaves every wallet untouched.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	batch := make([]*runtime.WalletUpdate, 0, len(updates))
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}
		batch = append(batch, &runtime.WalletUpdate{
			UserID:    update.UserID,
			Changeset: map[string]int64{ports.Currency: update.Amount},
			Metadata:  update.Metadata,
		})
	}
	if len(batch) == 0 {
		return nil
	}

	if _, err := a.nk.WalletsUpdate(ctx, batch, true); err != nil {
		return fmt.Errorf("failed to settle %d wallet updates: %w", len(batch), err)
	}
	return nil
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
