package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
[offering]
issuer = "issuer-account"
nominee = "nominee-account"
platform_wallet = "platform-wallet"
platform_portfolio = "platform-portfolio"
eur_ledger_account = "eur-ledger"
eth_ledger_account = "eth-ledger"
custodial_wallet_account = "custodial"
terms_ref = "terms-v1"
unit_ledger_ref = "units-v1"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offeringd.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	// Defaults survive alongside the file-provided parties.
	assert.Equal(t, "127.0.0.1:7423", cfg.Server.Addr)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 8, cfg.Rates.CacheSize)
	assert.Equal(t, "issuer-account", cfg.Offering.Issuer)

	terms, err := cfg.Terms()
	require.NoError(t, err)
	assert.Equal(t, "32", terms.UnitPriceEUR.String())
	assert.Equal(t, uint64(10000), terms.UnitsPerShare)
	assert.Equal(t, 7*24*time.Hour, terms.WhitelistDuration)
	assert.Equal(t, "nominee-account", terms.Nominee)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
[server]
addr = "0.0.0.0:9000"

[journal]
enabled = true
path = "/tmp/offeringd-journal"

[rates]
refresh_interval = "30s"
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, "/tmp/offeringd-journal", cfg.Journal.Path)

	refresh, err := cfg.RatesRefresh()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, refresh)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("OFFERINGD_SERVER_ADDR", "127.0.0.1:19000")
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:19000", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing parties",
			content: ``,
		},
		{
			name: "bad listen address",
			content: minimalConfig + `
[server]
addr = "not-a-hostport"
`,
		},
		{
			name: "journal enabled without path",
			content: minimalConfig + `
[journal]
enabled = true
path = ""
`,
		},
		{
			name:    "malformed amount",
			content: minimalConfig + `unit_price_eur = "lots"` + "\n",
		},
		{
			name:    "malformed duration",
			content: minimalConfig + `whitelist_duration = "tomorrow"` + "\n",
		},
		{
			name:    "min ticket above max ticket",
			content: minimalConfig + "min_ticket_eur = \"2000\"\nmax_ticket_eur = \"1000\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
