// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the wallet client.
type Config struct {
	ServerURL string        `envconfig:"SERVER_URL" default:"http://localhost:3001"`
	Timeout   time.Duration `envconfig:"TIMEOUT" default:"30s"`
	Retries   int           `envconfig:"RETRIES" default:"3"`
	DataDir   string        `envconfig:"DATA_DIR"`
	Offline   bool          `envconfig:"OFFLINE" default:"false"`
	EthRPC    string        `envconfig:"ETH_RPC"`
	LogLevel  string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from PANOPLIA_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("panoplia", cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, "panoplia")
	}
	return cfg, nil
}
