package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load builds the configuration from, in priority order: defaults, the
// configuration file (when path is non-empty), and PHANTASMA_-prefixed
// environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("PHANTASMA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("node.data_dir", defaultDataDir())
	v.SetDefault("node.log_level", "info")
	v.SetDefault("database.cache_entries", 10_000)
	v.SetDefault("chain.network_name", "mainnet")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".phantasma"
	}
	return home + "/.phantasma"
}
