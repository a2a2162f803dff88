package config

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the node-level TOML configuration.
type Config struct {
	ListenAddress string  `toml:"ListenAddress"`
	DataDir       string  `toml:"DataDir"`
	Environment   string  `toml:"Environment"`
	Lending       Lending `toml:"lending"`
	Oracle        Oracle  `toml:"oracle"`
	Genesis       Genesis `toml:"genesis"`
}

// Lending captures the governed risk parameters applied at bootstrap. The
// RiskAdmin owner can change rates at runtime; these are the initial values.
type Lending struct {
	// Owner is the bech32 address holding the risk-admin gate.
	Owner         string `toml:"Owner"`
	MaxLTVBps     uint64 `toml:"MaxLTVBps"`
	BorrowRateBps uint64 `toml:"BorrowRateBps"`
}

// Oracle carries the static per-class valuations, in wei-scale decimal
// strings.
type Oracle struct {
	Quotes map[string]string `toml:"quotes"`
}

// Genesis seeds accounts and assets when the data directory is empty.
type Genesis struct {
	Accounts []GenesisAccount `toml:"accounts"`
	Assets   []GenesisAsset   `toml:"assets"`
}

type GenesisAccount struct {
	Address string `toml:"Address"`
	Balance string `toml:"Balance"`
}

type GenesisAsset struct {
	Owner string `toml:"Owner"`
	Class string `toml:"Class"`
	ID    uint64 `toml:"ID"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		ListenAddress: ":8645",
		DataDir:       "./pawnpool-data",
		Environment:   "dev",
		Lending: Lending{
			MaxLTVBps:     5000,
			BorrowRateBps: 800,
		},
		Oracle: Oracle{Quotes: map[string]string{}},
	}
}

// Load reads and validates the TOML file at path, layered over defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the node cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must not be empty")
	}
	if c.Lending.MaxLTVBps > 10_000 {
		return fmt.Errorf("config: MaxLTVBps %d exceeds 10000", c.Lending.MaxLTVBps)
	}
	for class, quote := range c.Oracle.Quotes {
		if _, err := parseAmount(quote); err != nil {
			return fmt.Errorf("config: oracle quote for %q: %w", class, err)
		}
	}
	for _, account := range c.Genesis.Accounts {
		if _, err := parseAmount(account.Balance); err != nil {
			return fmt.Errorf("config: genesis balance for %q: %w", account.Address, err)
		}
	}
	return nil
}

// ParsedQuotes converts the oracle quotes into big integers.
func (c *Config) ParsedQuotes() (map[string]*big.Int, error) {
	quotes := make(map[string]*big.Int, len(c.Oracle.Quotes))
	for class, raw := range c.Oracle.Quotes {
		value, err := parseAmount(raw)
		if err != nil {
			return nil, fmt.Errorf("config: oracle quote for %q: %w", class, err)
		}
		quotes[class] = value
	}
	return quotes, nil
}

func parseAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount must not be empty")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return value, nil
}

// ParseAmount exposes the decimal amount parser for callers seeding state.
func ParseAmount(raw string) (*big.Int, error) {
	return parseAmount(raw)
}
