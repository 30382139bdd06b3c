package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func validYAML(t *testing.T) string {
	t.Helper()
	return "data_dir: /tmp/fairway-test\n" +
		"secret_key: " + nostr.GeneratePrivateKey() + "\n" +
		"relays:\n  - wss://relay.example.com\n"
}

func TestLoad_Valid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML(t)))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/fairway-test", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel, "log level defaults to info")
	assert.Equal(t, AccountActive, cfg.AccountState())
	assert.Equal(t, filepath.Join("/tmp/fairway-test", "fairway.db"), cfg.DatabasePath())

	pk, err := cfg.PublicKey()
	require.NoError(t, err)
	assert.Len(t, pk, 64)
}

func TestLoad_ReadOnlyAccount(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML(t)+"read_only: true\n"))
	require.NoError(t, err)
	assert.Equal(t, AccountReadOnly, cfg.AccountState())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing secret key", "data_dir: /tmp/x\nrelays:\n  - wss://r\n"},
		{"short secret key", "data_dir: /tmp/x\nsecret_key: abc\nrelays:\n  - wss://r\n"},
		{"no relays", "data_dir: /tmp/x\nsecret_key: " + nostr.GeneratePrivateKey() + "\n"},
		{"malformed yaml", "relays: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.Relays)
	assert.NotEmpty(t, cfg.DMRelays)
}
