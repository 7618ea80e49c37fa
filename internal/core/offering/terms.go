package offering

import (
	"errors"
	"fmt"
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
)

// Currency identifies one of the two trusted payment currencies.
// EUR is the reference currency all contributions are normalized into.
type Currency int

const (
	CurrencyEUR Currency = iota
	CurrencyETH
)

// String returns the currency symbol.
func (c Currency) String() string {
	switch c {
	case CurrencyEUR:
		return "EUR"
	case CurrencyETH:
		return "ETH"
	default:
		return "???"
	}
}

// Terms is the immutable configuration of a single offering. All values
// are captured at engine construction and fixed for the instance's
// lifetime; the core never reaches out for terms mid-operation.
type Terms struct {
	// UnitPriceEUR is the base price of one unit in the reference currency.
	UnitPriceEUR amount.Amount

	// MinTicketEUR and MaxTicketEUR bound the cumulative ticket size of a
	// single investor.
	MinTicketEUR amount.Amount
	MaxTicketEUR amount.Amount

	// MaxInvestmentEUR is the absolute reference-currency ceiling across
	// all investors.
	MaxInvestmentEUR amount.Amount

	// MinUnits is the minimum number of units that must be sold for the
	// offering to succeed; below it, Signing entry is redirected to Refund.
	MinUnits amount.Amount

	// MaxUnits is the global cap on sellable units.
	MaxUnits amount.Amount

	// MaxWhitelistUnits caps non-fixed-slot units during the whitelist phase.
	MaxWhitelistUnits amount.Amount

	// MaxTheoreticalUnits is the share-aligned absolute maximum including
	// the platform participation fee. When exactly MaxUnits were sold the
	// participation fee is MaxTheoreticalUnits - MaxUnits.
	MaxTheoreticalUnits amount.Amount

	// UnitsPerShare is the fixed units-per-share ratio. Units sold plus
	// the participation fee must divide evenly by it.
	UnitsPerShare uint64

	// ShareNominalEUR is the nominal capital value of one share.
	ShareNominalEUR amount.Amount

	// PlatformFeeFrac is the proportional cash fee in parts per 1e18,
	// applied per currency to the additional-contribution sub-totals.
	PlatformFeeFrac uint64

	// ParticipationFeeFrac is the proportional unit fee in parts per 1e18.
	ParticipationFeeFrac uint64

	// PlatformShareDenominator splits reward issuance between platform
	// and investor: the platform share is reward/denominator, floored.
	PlatformShareDenominator uint64

	// WhitelistDiscountFrac discounts the unit price for whitelisted
	// investors during the whitelist phase, in parts per 1e18.
	WhitelistDiscountFrac uint64

	// FixedSlotDiscountFrac discounts the unit price for pre-reserved
	// fixed-slot allocations, in parts per 1e18.
	FixedSlotDiscountFrac uint64

	// Phase durations. Signing has no scheduled end: leaving it requires
	// the nominee confirmation (or the Refund override on entry).
	WhitelistDuration time.Duration
	PublicDuration    time.Duration
	ClaimDuration     time.Duration

	// MinLeadTime is the minimum distance between committing a start date
	// and the whitelist start.
	MinLeadTime time.Duration

	// RateExpiry is the maximum age of an exchange-rate quote.
	RateExpiry time.Duration

	// Party identities.
	Issuer            string
	Nominee           string
	PlatformWallet    string
	PlatformPortfolio string

	// Trusted deposit sources: the account identities of the two currency
	// ledgers allowed to notify contributions.
	EURLedgerAccount string
	ETHLedgerAccount string

	// CustodialWalletAccount is the indirect custodial wallet; deposits
	// routed through it carry the beneficial investor in the notification.
	CustodialWalletAccount string

	// TermsRef and UnitLedgerRef anchor the start-date call to the agreed
	// terms document and unit-ledger instance.
	TermsRef      string
	UnitLedgerRef string
}

// Validate checks internal consistency of the terms.
func (t Terms) Validate() error {
	if t.UnitPriceEUR.IsZero() {
		return errors.New("terms: unit price must be positive")
	}
	if t.UnitsPerShare == 0 {
		return errors.New("terms: units per share must be positive")
	}
	if t.PlatformShareDenominator == 0 {
		return errors.New("terms: platform share denominator must be positive")
	}
	if t.MinTicketEUR.Cmp(t.MaxTicketEUR) > 0 {
		return errors.New("terms: minimum ticket exceeds maximum ticket")
	}
	if t.MinUnits.Cmp(t.MaxUnits) > 0 {
		return errors.New("terms: minimum units exceed maximum units")
	}
	if t.MaxUnits.Cmp(t.MaxTheoreticalUnits) > 0 {
		return errors.New("terms: maximum units exceed theoretical maximum")
	}
	if t.MaxWhitelistUnits.Cmp(t.MaxUnits) > 0 {
		return errors.New("terms: whitelist cap exceeds global cap")
	}
	if t.PlatformFeeFrac > amount.FracDenominator ||
		t.ParticipationFeeFrac > amount.FracDenominator ||
		t.WhitelistDiscountFrac >= amount.FracDenominator ||
		t.FixedSlotDiscountFrac >= amount.FracDenominator {
		return errors.New("terms: fraction out of range")
	}
	if t.WhitelistDuration <= 0 || t.PublicDuration <= 0 || t.ClaimDuration <= 0 {
		return errors.New("terms: phase durations must be positive")
	}
	if t.MinLeadTime <= 0 {
		return errors.New("terms: minimum lead time must be positive")
	}
	if t.RateExpiry <= 0 {
		return errors.New("terms: rate expiry must be positive")
	}
	for name, v := range map[string]string{
		"issuer":             t.Issuer,
		"nominee":            t.Nominee,
		"platform wallet":    t.PlatformWallet,
		"platform portfolio": t.PlatformPortfolio,
		"EUR ledger account": t.EURLedgerAccount,
		"ETH ledger account": t.ETHLedgerAccount,
	} {
		if v == "" {
			return fmt.Errorf("terms: %s must be set", name)
		}
	}
	return nil
}

// whitelistPrice is the discounted unit price for whitelisted investors.
func (t Terms) whitelistPrice() amount.Amount {
	return t.UnitPriceEUR.MulFrac(amount.FracDenominator - t.WhitelistDiscountFrac)
}

// fixedSlotPrice is the discounted unit price for fixed-slot allocations.
func (t Terms) fixedSlotPrice() amount.Amount {
	return t.UnitPriceEUR.MulFrac(amount.FracDenominator - t.FixedSlotDiscountFrac)
}

// minTicketUnits is the unit amount implied by a minimum-sized ticket at
// the base price, used by the logic-driven phase acceleration.
func (t Terms) minTicketUnits() amount.Amount {
	return divAmount(t.MinTicketEUR, t.UnitPriceEUR)
}

// divAmount returns a/b with floor rounding, zero when b is zero.
func divAmount(a, b amount.Amount) amount.Amount {
	if b.IsZero() {
		return amount.Zero()
	}
	var q = a.BigInt()
	q.Quo(q, b.BigInt())
	r, err := amount.Parse(q.String())
	if err != nil {
		return amount.Zero()
	}
	return r
}
