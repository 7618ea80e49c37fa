// Package config loads the offeringd configuration from defaults, a
// TOML file and OFFERINGD_-prefixed environment variables, and freezes
// the offering section into immutable offering.Terms.
package config

import (
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
	"github.com/crowdlane/offeringd/internal/core/offering"
)

// Config is the complete offeringd configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Journal  JournalConfig  `toml:"journal" mapstructure:"journal"`
	Rates    RatesConfig    `toml:"rates" mapstructure:"rates"`
	Offering OfferingConfig `toml:"offering" mapstructure:"offering"`
}

// ServerConfig configures the JSON-RPC listener.
type ServerConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`
}

// JournalConfig configures the operation journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path" mapstructure:"path"`
}

// RatesConfig configures the exchange-rate cache.
type RatesConfig struct {
	CacheSize       int    `toml:"cache_size" mapstructure:"cache_size"`
	RefreshInterval string `toml:"refresh_interval" mapstructure:"refresh_interval"`
}

// OfferingConfig is the TOML-facing shape of the offering terms. Amount
// fields are base-10 strings (values exceed 64 bits); durations use the
// Go duration syntax.
type OfferingConfig struct {
	UnitPriceEUR     string `toml:"unit_price_eur" mapstructure:"unit_price_eur"`
	MinTicketEUR     string `toml:"min_ticket_eur" mapstructure:"min_ticket_eur"`
	MaxTicketEUR     string `toml:"max_ticket_eur" mapstructure:"max_ticket_eur"`
	MaxInvestmentEUR string `toml:"max_investment_eur" mapstructure:"max_investment_eur"`

	MinUnits            string `toml:"min_units" mapstructure:"min_units"`
	MaxUnits            string `toml:"max_units" mapstructure:"max_units"`
	MaxWhitelistUnits   string `toml:"max_whitelist_units" mapstructure:"max_whitelist_units"`
	MaxTheoreticalUnits string `toml:"max_theoretical_units" mapstructure:"max_theoretical_units"`

	UnitsPerShare   uint64 `toml:"units_per_share" mapstructure:"units_per_share"`
	ShareNominalEUR string `toml:"share_nominal_eur" mapstructure:"share_nominal_eur"`

	PlatformFeeFrac          uint64 `toml:"platform_fee_frac" mapstructure:"platform_fee_frac"`
	ParticipationFeeFrac     uint64 `toml:"participation_fee_frac" mapstructure:"participation_fee_frac"`
	PlatformShareDenominator uint64 `toml:"platform_share_denominator" mapstructure:"platform_share_denominator"`
	WhitelistDiscountFrac    uint64 `toml:"whitelist_discount_frac" mapstructure:"whitelist_discount_frac"`
	FixedSlotDiscountFrac    uint64 `toml:"fixed_slot_discount_frac" mapstructure:"fixed_slot_discount_frac"`

	WhitelistDuration string `toml:"whitelist_duration" mapstructure:"whitelist_duration"`
	PublicDuration    string `toml:"public_duration" mapstructure:"public_duration"`
	ClaimDuration     string `toml:"claim_duration" mapstructure:"claim_duration"`
	MinLeadTime       string `toml:"min_lead_time" mapstructure:"min_lead_time"`
	RateExpiry        string `toml:"rate_expiry" mapstructure:"rate_expiry"`

	Issuer            string `toml:"issuer" mapstructure:"issuer"`
	Nominee           string `toml:"nominee" mapstructure:"nominee"`
	PlatformWallet    string `toml:"platform_wallet" mapstructure:"platform_wallet"`
	PlatformPortfolio string `toml:"platform_portfolio" mapstructure:"platform_portfolio"`

	EURLedgerAccount       string `toml:"eur_ledger_account" mapstructure:"eur_ledger_account"`
	ETHLedgerAccount       string `toml:"eth_ledger_account" mapstructure:"eth_ledger_account"`
	CustodialWalletAccount string `toml:"custodial_wallet_account" mapstructure:"custodial_wallet_account"`

	TermsRef      string `toml:"terms_ref" mapstructure:"terms_ref"`
	UnitLedgerRef string `toml:"unit_ledger_ref" mapstructure:"unit_ledger_ref"`
}

// Terms converts the offering section into offering.Terms and validates
// the result.
func (c *Config) Terms() (offering.Terms, error) {
	var t offering.Terms
	var err error

	parse := func(dst *amount.Amount, s string) {
		if err != nil {
			return
		}
		*dst, err = amount.Parse(s)
	}
	parse(&t.UnitPriceEUR, c.Offering.UnitPriceEUR)
	parse(&t.MinTicketEUR, c.Offering.MinTicketEUR)
	parse(&t.MaxTicketEUR, c.Offering.MaxTicketEUR)
	parse(&t.MaxInvestmentEUR, c.Offering.MaxInvestmentEUR)
	parse(&t.MinUnits, c.Offering.MinUnits)
	parse(&t.MaxUnits, c.Offering.MaxUnits)
	parse(&t.MaxWhitelistUnits, c.Offering.MaxWhitelistUnits)
	parse(&t.MaxTheoreticalUnits, c.Offering.MaxTheoreticalUnits)
	parse(&t.ShareNominalEUR, c.Offering.ShareNominalEUR)
	if err != nil {
		return offering.Terms{}, err
	}

	dur := func(dst *time.Duration, s string) {
		if err != nil {
			return
		}
		*dst, err = time.ParseDuration(s)
	}
	dur(&t.WhitelistDuration, c.Offering.WhitelistDuration)
	dur(&t.PublicDuration, c.Offering.PublicDuration)
	dur(&t.ClaimDuration, c.Offering.ClaimDuration)
	dur(&t.MinLeadTime, c.Offering.MinLeadTime)
	dur(&t.RateExpiry, c.Offering.RateExpiry)
	if err != nil {
		return offering.Terms{}, err
	}

	t.UnitsPerShare = c.Offering.UnitsPerShare
	t.PlatformFeeFrac = c.Offering.PlatformFeeFrac
	t.ParticipationFeeFrac = c.Offering.ParticipationFeeFrac
	t.PlatformShareDenominator = c.Offering.PlatformShareDenominator
	t.WhitelistDiscountFrac = c.Offering.WhitelistDiscountFrac
	t.FixedSlotDiscountFrac = c.Offering.FixedSlotDiscountFrac

	t.Issuer = c.Offering.Issuer
	t.Nominee = c.Offering.Nominee
	t.PlatformWallet = c.Offering.PlatformWallet
	t.PlatformPortfolio = c.Offering.PlatformPortfolio
	t.EURLedgerAccount = c.Offering.EURLedgerAccount
	t.ETHLedgerAccount = c.Offering.ETHLedgerAccount
	t.CustodialWalletAccount = c.Offering.CustodialWalletAccount
	t.TermsRef = c.Offering.TermsRef
	t.UnitLedgerRef = c.Offering.UnitLedgerRef

	if err := t.Validate(); err != nil {
		return offering.Terms{}, err
	}
	return t, nil
}

// RatesRefresh parses the rate-cache refresh interval.
func (c *Config) RatesRefresh() (time.Duration, error) {
	return time.ParseDuration(c.Rates.RefreshInterval)
}
