package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"caravan/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RulesResponse describes the rule set matches are currently created with.
type RulesResponse struct {
	MinScore             int                `json:"min_score"`
	MaxScore             int                `json:"max_score"`
	RequireAllRoutesSold bool               `json:"require_all_routes_sold"`
	StartingHandSize     int                `json:"starting_hand_size"`
	StartingPlayer       string             `json:"starting_player"`
	TurnDurationSeconds  int                `json:"turn_duration_seconds"`
	DefaultTier          string             `json:"default_tier"`
	Tiers                []config.WagerTier `json:"tiers"`
}

func rulesResponse(cfg *config.GameConfig) RulesResponse {
	rules := cfg.Rules()
	return RulesResponse{
		MinScore:             rules.MinScore,
		MaxScore:             rules.MaxScore,
		RequireAllRoutesSold: rules.RequireAllRoutesSold,
		StartingHandSize:     cfg.StartingHandSize,
		StartingPlayer:       cfg.StartingPlayerID().String(),
		TurnDurationSeconds:  int(cfg.TurnDuration().Seconds()),
		DefaultTier:          cfg.DefaultTier,
		Tiers:                cfg.Tiers,
	}
}

// rpcCaravanRules returns the active rule configuration so clients can show target
// scores and wager tiers before joining.
//
// Payload: unused.
func rpcCaravanRules(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	b, err := json.Marshal(rulesResponse(config.GetGameConfig()))
	if err != nil {
		logger.Error("rpcCaravanRules: Failed to marshal rules: %v", err)
		return "", err
	}
	return string(b), nil
}
