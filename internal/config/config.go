package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"

	"caravan/internal/domain"
)

// EnvPrefix scopes every environment override, e.g. CARAVAN_TURN_DURATION_SECONDS.
const EnvPrefix = "CARAVAN_"

type WagerTier struct {
	ID    string `json:"id"`
	Wager int64  `json:"wager"`
}

type GameConfig struct {
	StartingHandSize     int    `json:"starting_hand_size" env:"STARTING_HAND_SIZE"`
	StartingPlayer       string `json:"starting_player" env:"STARTING_PLAYER"`
	ShuffleDecks         bool   `json:"shuffle_decks" env:"SHUFFLE_DECKS"`
	MinScore             int    `json:"min_score" env:"MIN_SCORE"`
	MaxScore             int    `json:"max_score" env:"MAX_SCORE"`
	RequireAllRoutesSold bool   `json:"require_all_routes_sold" env:"REQUIRE_ALL_ROUTES_SOLD"`
	TurnDurationSeconds  int    `json:"turn_duration_seconds" env:"TURN_DURATION_SECONDS"`
	// StartingCaps is granted once to every new account by the onboarding hook.
	StartingCaps int64       `json:"starting_caps" env:"STARTING_CAPS"`
	DefaultTier  string      `json:"default_tier" env:"DEFAULT_TIER"`
	Tiers        []WagerTier `json:"tiers"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the standard game: 8 card hands, P1 first, shuffled decks, 21-26.
func Default() GameConfig {
	return GameConfig{
		StartingHandSize:    8,
		StartingPlayer:      domain.PlayerOne.String(),
		ShuffleDecks:        true,
		MinScore:            domain.DefaultMinScore,
		MaxScore:            domain.DefaultMaxScore,
		TurnDurationSeconds: 60,
		StartingCaps:        500,
	}
}

// Parse overlays JSON data and then environment overrides on top of Default.
// environ is usually the Nakama runtime env map; nil skips overrides.
func Parse(data []byte, environ map[string]string) (*GameConfig, error) {
	c := Default()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
		}
	}
	if environ != nil {
		if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
			return nil, fmt.Errorf("failed to apply env overrides: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadGameConfig loads the game configuration from the given path once.
// A missing file falls back to defaults plus env overrides.
func LoadGameConfig(path string, environ map[string]string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := Parse(data, environ)
		if err != nil {
			loadErr = err
			return
		}
		cfg = c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or defaults when none was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		d := Default()
		return &d
	}
	return cfg
}

// Validate rejects configurations the engine cannot run.
func (c *GameConfig) Validate() error {
	if c.StartingHandSize <= 0 {
		return fmt.Errorf("starting_hand_size must be positive, got %d", c.StartingHandSize)
	}
	if _, err := domain.ParsePlayerID(c.StartingPlayer); err != nil {
		return fmt.Errorf("starting_player: %w", err)
	}
	if c.MinScore <= 0 || c.MinScore > c.MaxScore {
		return fmt.Errorf("invalid score range [%d, %d]", c.MinScore, c.MaxScore)
	}
	if c.TurnDurationSeconds < 0 {
		return fmt.Errorf("turn_duration_seconds must not be negative, got %d", c.TurnDurationSeconds)
	}
	return nil
}

// Rules returns the victory rules for this configuration.
func (c *GameConfig) Rules() domain.Rules {
	return domain.Rules{
		MinScore:             c.MinScore,
		MaxScore:             c.MaxScore,
		RequireAllRoutesSold: c.RequireAllRoutesSold,
	}
}

// StartingPlayerID resolves StartingPlayer, falling back to P1.
func (c *GameConfig) StartingPlayerID() domain.PlayerID {
	id, err := domain.ParsePlayerID(c.StartingPlayer)
	if err != nil {
		return domain.PlayerOne
	}
	return id
}

// TurnDuration returns the per-turn time limit. Zero disables the timer.
func (c *GameConfig) TurnDuration() time.Duration {
	return time.Duration(c.TurnDurationSeconds) * time.Second
}

// GetWager returns the wager for a given tier ID, or the default tier's when not found.
// Zero means the match is played for free.
func GetWager(tierID string) int64 {
	c := GetGameConfig()

	target := tierID
	if target == "" {
		target = c.DefaultTier
	}
	for _, tier := range c.Tiers {
		if tier.ID == target {
			return tier.Wager
		}
	}
	for _, tier := range c.Tiers {
		if tier.ID == c.DefaultTier {
			return tier.Wager
		}
	}
	return 0
}
