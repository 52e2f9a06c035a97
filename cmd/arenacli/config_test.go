package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.EqualValues(t, 56, cfg.ChainID)
	require.Equal(t, "0x7bBa695f46feD048ea89CD7FfB4A8eC592b77724", cfg.GameContract)
	require.Equal(t, "0xCAE3fEAD6134d1F09dcf2688F8Cbc9dA88912f57", cfg.TokenContract)
	require.Equal(t, "0x55d398326f99059fF775485246999027B3197955", cfg.CreditContract)
	require.Equal(t, "0xf4C7A8BE34525B0BeCf41F0e308170CaE93cfa01", cfg.ItemsContract)
	require.NotEmpty(t, cfg.Endpoint)
	require.Equal(t, ":8080", cfg.RPCAddr)
	require.Empty(t, cfg.PrivateKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	data := []byte(`
endpoint: ws://localhost:8546
chain_id: 1001
game_contract: "0x0000000000000000000000000000000000000001"
db_path: /tmp/arena
rpc_addr: ":9090"
use_fiber: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "ws://localhost:8546", cfg.Endpoint)
	require.EqualValues(t, 1001, cfg.ChainID)
	require.Equal(t, "0x0000000000000000000000000000000000000001", cfg.GameContract)
	require.Equal(t, "/tmp/arena", cfg.DBPath)
	require.Equal(t, ":9090", cfg.RPCAddr)
	require.True(t, cfg.UseFiber)

	// Unset fields still get defaults.
	require.Equal(t, "0xCAE3fEAD6134d1F09dcf2688F8Cbc9dA88912f57", cfg.TokenContract)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// Environment overrides win over the YAML file; the key never comes from YAML.
func TestLoadConfigEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chain_id: 1001\n"), 0o600))

	t.Setenv("ARENA_CHAIN_ID", "97")
	t.Setenv("ARENA_PRIVATE_KEY", "deadbeef")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.EqualValues(t, 97, cfg.ChainID)
	require.Equal(t, "deadbeef", cfg.PrivateKey)
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.EqualValues(t, 56, cfg.ChainID)
}
