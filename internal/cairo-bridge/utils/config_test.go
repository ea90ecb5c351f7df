package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	require.NotNil(t, config)
	require.NoError(t, config.Validate())
	require.Equal(t, HashSHA3, config.HashFunction)
	require.Equal(t, uint64(MaxUint32Address), config.MaxPublicAddress)
}

// TestConfigValidate tests configuration validation
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default", func(c *Config) {}, false},
		{"blake2s", func(c *Config) { c.HashFunction = HashBlake2s }, false},
		{"unknown layout", func(c *Config) { c.Layout = "huge" }, true},
		{"unknown hash", func(c *Config) { c.HashFunction = "md5" }, true},
		{"zero queries", func(c *Config) { c.Queries = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"zero address bound", func(c *Config) { c.MaxPublicAddress = 0 }, true},
		{"address bound above u32", func(c *Config) { c.MaxPublicAddress = 1 << 32 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestConfigBuilders tests the With* methods and Clone
func TestConfigBuilders(t *testing.T) {
	config := DefaultConfig().
		WithLayout("small").
		WithHashFunction(HashSHA256).
		WithQueries(4).
		WithLogLevel("debug").
		WithMaxPublicAddress(1 << 20)

	require.Equal(t, "small", config.Layout)
	require.Equal(t, HashSHA256, config.HashFunction)
	require.Equal(t, 4, config.Queries)
	require.Equal(t, "debug", config.LogLevel)
	require.Equal(t, uint64(1<<20), config.MaxPublicAddress)

	clone := config.Clone()
	clone.Queries = 9
	require.Equal(t, 4, config.Queries)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("layout: recursive\nqueries: 3\n"))
	require.NoError(t, err)
	require.Equal(t, "recursive", cfg.Layout)
	require.Equal(t, 3, cfg.Queries)
	require.Equal(t, HashSHA3, cfg.HashFunction)

	_, err = ParseConfig([]byte("hash_function: md5\n"))
	require.Error(t, err)

	_, err = ParseConfig([]byte("queries: [1\n"))
	require.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hash_function: blake2s\nlog_level: warn\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, HashBlake2s, cfg.HashFunction)
	require.Equal(t, "warn", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
