package utils

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Supported hash functions for the Fiat-Shamir channel.
const (
	HashSHA3    = "sha3"
	HashSHA256  = "sha256"
	HashBlake2s = "blake2s"
)

// MaxUint32Address is the largest address the witness can carry for public memory.
const MaxUint32Address = 1<<32 - 1

// Layouts lists the builtin layouts an execution may declare.
var Layouts = []string{
	"plain",
	"small",
	"dex",
	"recursive",
	"starknet",
	"starknet_with_keccak",
	"recursive_large_output",
	"recursive_with_poseidon",
	"all_cairo",
	"all_solidity",
	"dynamic",
}

func knownLayout(name string) bool {
	for _, l := range Layouts {
		if l == name {
			return true
		}
	}
	return false
}

// Config represents the configuration for witness generation and proving
type Config struct {
	// Layout names the builtin layout the execution ran with
	Layout string `yaml:"layout"`

	// HashFunction drives the Fiat-Shamir channel: "sha3", "sha256" or "blake2s"
	HashFunction string `yaml:"hash_function"`

	// Queries is the number of trace rows opened by a proof
	Queries int `yaml:"queries"`

	LogLevel string `yaml:"log_level"`

	// MaxPublicAddress bounds public memory addresses accepted by the adapter
	MaxPublicAddress uint64 `yaml:"max_public_address"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Layout:           "all_cairo",
		HashFunction:     HashSHA3,
		Queries:          16,
		LogLevel:         "info",
		MaxPublicAddress: MaxUint32Address,
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML document on top of DefaultConfig and validates it.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !knownLayout(c.Layout) {
		return fmt.Errorf("unknown layout '%s'", c.Layout)
	}

	switch c.HashFunction {
	case HashSHA3, HashSHA256, HashBlake2s:
	default:
		return fmt.Errorf("hash function must be 'sha3', 'sha256' or 'blake2s', got '%s'", c.HashFunction)
	}

	if c.Queries <= 0 {
		return fmt.Errorf("queries must be positive")
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.MaxPublicAddress == 0 || c.MaxPublicAddress > MaxUint32Address {
		return fmt.Errorf("max public address must be in [1, %d], got %d", uint64(MaxUint32Address), c.MaxPublicAddress)
	}

	return nil
}

// WithLayout sets the layout
func (c *Config) WithLayout(layout string) *Config {
	c.Layout = layout
	return c
}

// WithHashFunction sets the hash function
func (c *Config) WithHashFunction(hashFunc string) *Config {
	c.HashFunction = hashFunc
	return c
}

// WithQueries sets the number of queries
func (c *Config) WithQueries(queries int) *Config {
	c.Queries = queries
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// WithMaxPublicAddress sets the public address bound
func (c *Config) WithMaxPublicAddress(limit uint64) *Config {
	c.MaxPublicAddress = limit
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
