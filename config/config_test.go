package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":8645", cfg.ListenAddress)
	require.Equal(t, "dev", cfg.Environment)
	require.EqualValues(t, 5000, cfg.Lending.MaxLTVBps)
	require.EqualValues(t, 800, cfg.Lending.BorrowRateBps)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
ListenAddress = ":9000"
Environment = "prod"

[lending]
Owner = "pawn1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqpa84l7e"
MaxLTVBps = 4000
BorrowRateBps = 650

[oracle.quotes]
punk = "1000000000000000000"

[[genesis.accounts]]
Address = "pawn1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqpa84l7e"
Balance = "5000000000000000000"

[[genesis.assets]]
Owner = "pawn1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqpa84l7e"
Class = "punk"
ID = 7
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.ListenAddress)
	require.Equal(t, "prod", cfg.Environment)
	require.EqualValues(t, 4000, cfg.Lending.MaxLTVBps)
	require.EqualValues(t, 650, cfg.Lending.BorrowRateBps)
	// Unset keys keep their defaults.
	require.Equal(t, "./pawnpool-data", cfg.DataDir)

	quotes, err := cfg.ParsedQuotes()
	require.NoError(t, err)
	wad := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	require.Equal(t, 0, quotes["punk"].Cmp(wad))

	require.Len(t, cfg.Genesis.Accounts, 1)
	require.Len(t, cfg.Genesis.Assets, 1)
	require.EqualValues(t, 7, cfg.Genesis.Assets[0].ID)
}

func TestLoadRejectsBadLTV(t *testing.T) {
	path := writeConfig(t, `
[lending]
MaxLTVBps = 10001
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadQuote(t *testing.T) {
	path := writeConfig(t, `
[oracle.quotes]
punk = "one wad"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadGenesisBalance(t *testing.T) {
	path := writeConfig(t, `
[[genesis.accounts]]
Address = "pawn1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqpa84l7e"
Balance = "-3"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	value, err := ParseAmount(" 42 ")
	require.NoError(t, err)
	require.Equal(t, 0, value.Cmp(big.NewInt(42)))

	_, err = ParseAmount("")
	require.Error(t, err)
	_, err = ParseAmount("0x10")
	require.Error(t, err)
}
