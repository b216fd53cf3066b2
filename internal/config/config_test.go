package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Node.LogLevel)
	assert.Equal(t, "mainnet", cfg.Chain.NetworkName)
	assert.Equal(t, 10_000, cfg.Database.CacheEntries)
	assert.NotEmpty(t, cfg.Node.DataDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phantasmad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[node]
data_dir = "/tmp/phantasma-test"
log_level = "debug"

[chain]
network_name = "testnet"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/phantasma-test", cfg.Node.DataDir)
	assert.Equal(t, "debug", cfg.Node.LogLevel)
	assert.Equal(t, "testnet", cfg.Chain.NetworkName)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty data dir", func(c *Config) { c.Node.DataDir = "" }},
		{"bad log level", func(c *Config) { c.Node.LogLevel = "loud" }},
		{"negative cache", func(c *Config) { c.Database.CacheEntries = -1 }},
		{"unknown network", func(c *Config) { c.Chain.NetworkName = "moonnet" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
