package config

import "github.com/spf13/viper"

// setDefaults seeds every configuration key so a minimal config file
// only has to override the offering terms it cares about. The default
// offering is a small share-capital raise priced in EUR cents.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:7423")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "journal.db")

	v.SetDefault("rates.cache_size", 8)
	v.SetDefault("rates.refresh_interval", "1m")

	// Amounts in EUR cents; units are indivisible.
	v.SetDefault("offering.unit_price_eur", "32")
	v.SetDefault("offering.min_ticket_eur", "10000")       // 100 EUR
	v.SetDefault("offering.max_ticket_eur", "1000000000")  // 10M EUR
	v.SetDefault("offering.max_investment_eur", "2500000000")

	v.SetDefault("offering.min_units", "5000000")
	v.SetDefault("offering.max_units", "30000000")
	v.SetDefault("offering.max_whitelist_units", "10000000")
	v.SetDefault("offering.max_theoretical_units", "30610000")

	v.SetDefault("offering.units_per_share", uint64(10000))
	v.SetDefault("offering.share_nominal_eur", "100")

	// Fractions in parts per 1e18.
	v.SetDefault("offering.platform_fee_frac", uint64(30_000_000_000_000_000))       // 3%
	v.SetDefault("offering.participation_fee_frac", uint64(20_000_000_000_000_000)) // 2%
	v.SetDefault("offering.platform_share_denominator", uint64(2))
	v.SetDefault("offering.whitelist_discount_frac", uint64(100_000_000_000_000_000)) // 10%
	v.SetDefault("offering.fixed_slot_discount_frac", uint64(200_000_000_000_000_000)) // 20%

	v.SetDefault("offering.whitelist_duration", "168h") // 7 days
	v.SetDefault("offering.public_duration", "720h")    // 30 days
	v.SetDefault("offering.claim_duration", "240h")     // 10 days
	v.SetDefault("offering.min_lead_time", "336h")      // 14 days
	v.SetDefault("offering.rate_expiry", "6h")

	v.SetDefault("offering.issuer", "")
	v.SetDefault("offering.nominee", "")
	v.SetDefault("offering.platform_wallet", "")
	v.SetDefault("offering.platform_portfolio", "")
	v.SetDefault("offering.eur_ledger_account", "")
	v.SetDefault("offering.eth_ledger_account", "")
	v.SetDefault("offering.custodial_wallet_account", "")
	v.SetDefault("offering.terms_ref", "")
	v.SetDefault("offering.unit_ledger_ref", "")
}
