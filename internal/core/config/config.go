package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultConfirmTimeout  = 2 * time.Minute
	DefaultTokenSymbol     = "EDINAR"
	DefaultDashboardPort   = 8090
	DefaultMetricsInterval = 15 * time.Second
)

type Config struct {
	Blockchain BlockchainConfig `mapstructure:"BLOCKCHAIN"`
	Staking    StakingConfig    `mapstructure:"STAKING"`
	Dashboard  DashboardConfig  `mapstructure:"DASHBOARD"`
	Telemetry  TelemetryConfig  `mapstructure:"TELEMETRY"`
}

type BlockchainConfig struct {
	RPC            string `mapstructure:"RPC"`
	ChainID        int64  `mapstructure:"CHAIN_ID"`
	StakingAddress string `mapstructure:"STAKING_ADDRESS"`
	TokenSymbol    string `mapstructure:"TOKEN_SYMBOL"`
	NetworkName    string `mapstructure:"NETWORK_NAME"`
}

type StakingConfig struct {
	PollInterval   time.Duration `mapstructure:"POLL_INTERVAL"`
	ConfirmTimeout time.Duration `mapstructure:"CONFIRM_TIMEOUT"`
}

type DashboardConfig struct {
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	Endpoint string `mapstructure:"ENDPOINT"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"ENABLED"`
	ServiceName       string        `mapstructure:"SERVICE_NAME"`
	CollectorEndpoint string        `mapstructure:"COLLECTOR_ENDPOINT"`
	MetricsInterval   time.Duration `mapstructure:"METRICS_INTERVAL"`
}

func (c DashboardConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate reports missing values that every command needs.
func (c *Config) Validate() error {
	if c.Blockchain.RPC == "" {
		return fmt.Errorf("BLOCKCHAIN_RPC is required")
	}
	if c.Blockchain.ChainID <= 0 {
		return fmt.Errorf("BLOCKCHAIN_CHAIN_ID must be positive")
	}
	if c.Blockchain.StakingAddress == "" {
		return fmt.Errorf("BLOCKCHAIN_STAKING_ADDRESS is required")
	}
	if !common.IsHexAddress(c.Blockchain.StakingAddress) {
		return fmt.Errorf("BLOCKCHAIN_STAKING_ADDRESS %q is not a valid address", c.Blockchain.StakingAddress)
	}
	return nil
}

type ConfigManager struct {
	config     *Config
	configPath string
	mutex      sync.RWMutex
}

var (
	instance *ConfigManager
	once     sync.Once
)

func GetConfigManager() *ConfigManager {
	once.Do(func() {
		instance = &ConfigManager{
			configPath: ".env",
		}
	})
	return instance
}

func (cm *ConfigManager) SetConfigPath(path string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.configPath = path
	cm.config = nil
}

func (cm *ConfigManager) GetConfigPath() string {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return cm.configPath
}

func (cm *ConfigManager) GetConfig() (*Config, error) {
	cm.mutex.RLock()
	if cm.config != nil {
		defer cm.mutex.RUnlock()
		return cm.config, nil
	}
	cm.mutex.RUnlock()

	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	if cm.config != nil {
		return cm.config, nil
	}

	cfg, err := LoadConfig(cm.configPath)
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm.config, nil
}

// LoadConfig reads a dotenv-style file; process environment variables take precedence.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Without a file the environment alone can configure the client.
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("BLOCKCHAIN", map[string]interface{}{
		"RPC":             v.GetString("BLOCKCHAIN_RPC"),
		"CHAIN_ID":        v.GetInt64("BLOCKCHAIN_CHAIN_ID"),
		"STAKING_ADDRESS": v.GetString("BLOCKCHAIN_STAKING_ADDRESS"),
		"TOKEN_SYMBOL":    v.GetString("BLOCKCHAIN_TOKEN_SYMBOL"),
		"NETWORK_NAME":    v.GetString("BLOCKCHAIN_NETWORK_NAME"),
	})

	v.SetDefault("STAKING", map[string]interface{}{
		"POLL_INTERVAL":   v.GetDuration("STAKING_POLL_INTERVAL"),
		"CONFIRM_TIMEOUT": v.GetDuration("STAKING_CONFIRM_TIMEOUT"),
	})

	v.SetDefault("DASHBOARD", map[string]interface{}{
		"HOST":     v.GetString("DASHBOARD_HOST"),
		"PORT":     v.GetInt("DASHBOARD_PORT"),
		"ENDPOINT": v.GetString("DASHBOARD_ENDPOINT"),
	})

	v.SetDefault("TELEMETRY", map[string]interface{}{
		"ENABLED":            v.GetBool("TELEMETRY_ENABLED"),
		"SERVICE_NAME":       v.GetString("TELEMETRY_SERVICE_NAME"),
		"COLLECTOR_ENDPOINT": v.GetString("TELEMETRY_COLLECTOR_ENDPOINT"),
		"METRICS_INTERVAL":   v.GetDuration("TELEMETRY_METRICS_INTERVAL"),
	})

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func applyDefaults(cfg *Config) {
	if cfg.Blockchain.TokenSymbol == "" {
		cfg.Blockchain.TokenSymbol = DefaultTokenSymbol
	}
	if cfg.Staking.PollInterval <= 0 {
		cfg.Staking.PollInterval = DefaultPollInterval
	}
	if cfg.Staking.ConfirmTimeout <= 0 {
		cfg.Staking.ConfirmTimeout = DefaultConfirmTimeout
	}
	if cfg.Dashboard.Host == "" {
		cfg.Dashboard.Host = "127.0.0.1"
	}
	if cfg.Dashboard.Port == 0 {
		cfg.Dashboard.Port = DefaultDashboardPort
	}
	if cfg.Dashboard.Endpoint == "" {
		cfg.Dashboard.Endpoint = "/api/v1"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "edinar-staking"
	}
	if cfg.Telemetry.MetricsInterval <= 0 {
		cfg.Telemetry.MetricsInterval = DefaultMetricsInterval
	}
}
