package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the client configuration. Values come from the YAML file,
// then environment variables, then flags, later sources winning.
type Config struct {
	// Endpoint is the JSON-RPC endpoint of the chain node (ws:// or wss://
	// for event subscriptions).
	Endpoint string `yaml:"endpoint" env:"ARENA_ENDPOINT"`

	// ChainID is the expected chain. Connecting to any other chain fails.
	ChainID uint64 `yaml:"chain_id" env:"ARENA_CHAIN_ID"`

	// GameContract is the arena game contract address.
	GameContract string `yaml:"game_contract" env:"ARENA_GAME_CONTRACT"`

	// TokenContract is the game ERC-20 token address.
	TokenContract string `yaml:"token_contract" env:"ARENA_TOKEN_CONTRACT"`

	// CreditContract is the external deposit ERC-20 token address.
	CreditContract string `yaml:"credit_contract" env:"ARENA_CREDIT_CONTRACT"`

	// ItemsContract is the ERC-1155 collectible address.
	ItemsContract string `yaml:"items_contract" env:"ARENA_ITEMS_CONTRACT"`

	// PrivateKey is the hex signing key. Environment only; never in YAML.
	PrivateKey string `yaml:"-" env:"ARENA_PRIVATE_KEY"`

	// DBPath is the local snapshot database directory.
	DBPath string `yaml:"db_path" env:"ARENA_DB_PATH"`

	// RPCAddr is the listen address of the status JSON-RPC server.
	RPCAddr string `yaml:"rpc_addr" env:"ARENA_RPC_ADDR"`

	// UseFiber selects the fiber HTTP stack for the status server.
	UseFiber bool `yaml:"use_fiber" env:"ARENA_USE_FIBER"`

	// LogLevel is the zerolog log level (0=debug, 1=info, 2=warn, 3=error).
	LogLevel int `yaml:"log_level" env:"ARENA_LOG_LEVEL"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// LoadConfig loads configuration from an optional YAML file with environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for unset fields. The contract addresses
// default to the production deployment on BNB Smart Chain.
func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "wss://bsc-ws-node.nariox.org:443"
	}

	if c.ChainID == 0 {
		c.ChainID = 56
	}

	if c.GameContract == "" {
		c.GameContract = "0x7bBa695f46feD048ea89CD7FfB4A8eC592b77724"
	}

	if c.TokenContract == "" {
		c.TokenContract = "0xCAE3fEAD6134d1F09dcf2688F8Cbc9dA88912f57"
	}

	if c.CreditContract == "" {
		c.CreditContract = "0x55d398326f99059fF775485246999027B3197955"
	}

	if c.ItemsContract == "" {
		c.ItemsContract = "0xf4C7A8BE34525B0BeCf41F0e308170CaE93cfa01"
	}

	if c.DBPath == "" {
		c.DBPath = "./arenadb"
	}

	if c.RPCAddr == "" {
		c.RPCAddr = ":8080"
	}

	if c.LogLevel == 0 {
		c.LogLevel = int(zerolog.InfoLevel)
	}
}
