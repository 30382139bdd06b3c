package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nbd-wtf/go-nostr"
	"gopkg.in/yaml.v3"
)

// AccountState gates outbound writes. A read-only account browses and
// scores locally but never publishes.
type AccountState int

const (
	AccountActive AccountState = iota
	AccountReadOnly
)

func (s AccountState) String() string {
	if s == AccountReadOnly {
		return "read-only"
	}
	return "active"
}

// Config is the on-disk YAML configuration.
type Config struct {
	// DataDir holds the SQLite database and downloaded course definitions.
	DataDir string `yaml:"data_dir"`

	// SecretKey is the local signing key, 64-char lowercase hex.
	SecretKey string `yaml:"secret_key"`

	// Relays are the general read/write relays.
	Relays []string `yaml:"relays"`

	// DMRelays are the fallback inbox relays used for invites when a
	// recipient publishes no inbox relay list of their own.
	DMRelays []string `yaml:"dm_relays"`

	// ReadOnly puts the account in read-only state: no publishes at all.
	ReadOnly bool `yaml:"read_only"`

	// LogLevel is a logrus level name; empty means "info".
	LogLevel string `yaml:"log_level"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &cfg, nil
}

// Default returns a config with a generated key and stock relay lists,
// rooted under the user config dir. Used on first run.
func Default() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	cfg := &Config{
		DataDir:   filepath.Join(home, ".fairway"),
		SecretKey: nostr.GeneratePrivateKey(),
		Relays:    []string{"wss://relay.damus.io", "wss://nos.lol"},
		DMRelays:  []string{"wss://relay.damus.io"},
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".fairway")
		}
	}
}

// Validate checks the config for structural problems with actionable
// messages.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key is required (64-char hex)")
	}
	if len(c.SecretKey) != 64 {
		return fmt.Errorf("secret_key must be 64 hex chars, got %d", len(c.SecretKey))
	}
	if _, err := nostr.GetPublicKey(c.SecretKey); err != nil {
		return fmt.Errorf("secret_key is not a valid key: %w", err)
	}
	if len(c.Relays) == 0 {
		return fmt.Errorf("at least one relay is required")
	}
	for _, r := range append(append([]string{}, c.Relays...), c.DMRelays...) {
		if r == "" {
			return fmt.Errorf("relay URLs must be non-empty")
		}
	}
	return nil
}

// AccountState derives the account state from the read_only flag.
func (c *Config) AccountState() AccountState {
	if c.ReadOnly {
		return AccountReadOnly
	}
	return AccountActive
}

// PublicKey derives the local public key from the secret key. Validate
// must have passed first.
func (c *Config) PublicKey() (string, error) {
	return nostr.GetPublicKey(c.SecretKey)
}

// DatabasePath is the SQLite file location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "fairway.db")
}
