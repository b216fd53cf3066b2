// Package config holds the node configuration, loaded from a TOML file with
// environment-variable overrides.
package config

import "fmt"

// Config is the full node configuration.
type Config struct {
	Node     NodeConfig     `mapstructure:"node"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`

	configPath string
}

// NodeConfig covers process-level settings.
type NodeConfig struct {
	// DataDir is the root directory for all node state.
	DataDir string `mapstructure:"data_dir"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig covers the pebble-backed state store.
type DatabaseConfig struct {
	// CacheEntries sizes the read cache in front of the state store.
	// Zero disables caching.
	CacheEntries int `mapstructure:"cache_entries"`
}

// ChainConfig covers chain-level parameters.
type ChainConfig struct {
	// NetworkName tags the chain instance (mainnet, testnet, simnet).
	NetworkName string `mapstructure:"network_name"`
}

// Path returns where the configuration was loaded from, empty when running
// on defaults.
func (c *Config) Path() string { return c.configPath }

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Node.DataDir == "" {
		return fmt.Errorf("node.data_dir must not be empty")
	}
	switch c.Node.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("node.log_level %q is not one of debug, info, warn, error", c.Node.LogLevel)
	}
	if c.Database.CacheEntries < 0 {
		return fmt.Errorf("database.cache_entries must not be negative")
	}
	switch c.Chain.NetworkName {
	case "mainnet", "testnet", "simnet":
	default:
		return fmt.Errorf("chain.network_name %q is not one of mainnet, testnet, simnet", c.Chain.NetworkName)
	}
	return nil
}
