package nakama

import (
	"context"
	"database/sql"

	"caravan/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	configPathEnv     = config.EnvPrefix + "CONFIG_PATH"
	defaultConfigPath = "data/game_config.json"
)

// InitModule wires config, RPCs, hooks and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	environ, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	path := defaultConfigPath
	if p := environ[configPathEnv]; p != "" {
		path = p
	}
	if err := config.LoadGameConfig(path, environ); err != nil {
		logger.Warn("InitModule: Failed to load game config from %s, using defaults: %v", path, err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameCaravan, NewMatch); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	cfg := config.GetGameConfig()
	logger.Info("Caravan Go module loaded (score %d-%d, hand %d).", cfg.MinScore, cfg.MaxScore, cfg.StartingHandSize)
	return nil
}
