package configutil

import (
	"fmt"
	"os"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
)

const (
	DefaultConfigPath = ".env"
	EnvConfigPath     = "EDINAR_CONFIG_PATH"
)

// ResolvePath picks the config file: explicit flag, then EDINAR_CONFIG_PATH, then ./.env.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		return envPath
	}
	return DefaultConfigPath
}

// SetPath points the shared config manager at path and drops any cached config.
func SetPath(path string) {
	config.GetConfigManager().SetConfigPath(path)
}

// GetConfig loads and validates the configuration, caching it for later callers.
func GetConfig() (*config.Config, error) {
	manager := config.GetConfigManager()

	cfg, err := manager.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", manager.GetConfigPath(), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", manager.GetConfigPath(), err)
	}

	return cfg, nil
}
