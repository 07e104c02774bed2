package utils

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/tyler-smith/go-bip39"
)

type Config struct {
	RpcUserName string
	RpcPassword string
	RPCServer   string
	NoTLS       bool
	Listen      string
	DB          string
	RedisURL    string
	EthURL      string
	Sentry      string
	Mnemonic    string
}

func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(homeDir, ".barter", "config.json")
}

// LoadConfig reads the JSON config file, generating and persisting a fresh
// operator mnemonic on first run.
func LoadConfig(path string) (Config, error) {
	config := Config{}
	configFile, err := os.ReadFile(path)
	if err == nil {
		json.Unmarshal(configFile, &config)
	}
	if config.Listen == "" {
		config.Listen = ":3000"
	}
	if config.RPCServer == "" {
		config.RPCServer = "127.0.0.1:3000"
	}
	if config.DB == "" {
		config.DB = filepath.Join(filepath.Dir(path), "barter.db")
	}

	if config.Mnemonic == "" {
		entropy := make([]byte, 32)
		if _, err := rand.Read(entropy[:]); err != nil {
			return config, err
		}
		mnemonic, err := bip39.NewMnemonic(entropy)
		if err != nil {
			return config, err
		}
		color.Green("Generating new operator mnemonic:\n[ %v ]", mnemonic)
		config.Mnemonic = mnemonic

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return config, err
		}
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return config, err
		}
		if err := os.WriteFile(path, data, 0755); err != nil {
			return config, err
		}
	}
	if !bip39.IsMnemonicValid(config.Mnemonic) {
		return config, fmt.Errorf("invalid mnemonic in %s", path)
	}
	return config, nil
}
