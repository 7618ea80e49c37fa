package offering

import (
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
)

// The core owns the ticket ledger and aggregate totals exclusively.
// Collaborators only ever receive settlement instructions or read-only
// values through the interfaces below; none of them can write core state.

// CurrencyVault moves currency held by the offering to a destination
// account on the respective currency ledger.
type CurrencyVault interface {
	Transfer(cur Currency, to string, amt amount.Amount) error
}

// UnitLedger is the issued-equity-unit ledger.
type UnitLedger interface {
	// Mint creates amt units held by the offering.
	Mint(amt amount.Amount) error

	// Transfer moves units from the offering to a destination.
	Transfer(to string, amt amount.Amount) error
}

// RewardLedger is the reward-unit ledger.
type RewardLedger interface {
	// ComputeIssuance is the external incremental-issuance function: the
	// reward generated by adding contribution on top of raisedTotal.
	// It is a pure computation; no units move.
	ComputeIssuance(raisedTotal, contribution amount.Amount) (amount.Amount, error)

	// Issue mints amt reward units to the offering.
	Issue(amt amount.Amount) error

	// Balance returns the reward units currently held by the offering.
	Balance() (amount.Amount, error)

	// Transfer moves reward units from the offering to a destination.
	Transfer(to string, amt amount.Amount) error

	// Burn destroys amt reward units held by the offering.
	Burn(amt amount.Amount) error
}

// WhitelistEntry describes an investor's standing on the whitelist.
type WhitelistEntry struct {
	// FixedSlotEUR is the pre-reserved allocation, in reference currency,
	// priced at the fixed-slot discount and exempt from the whitelist
	// sub-cap.
	FixedSlotEUR amount.Amount
}

// IdentityRegistry tracks identity verification and whitelist membership.
type IdentityRegistry interface {
	// IsVerified reports whether the investor passed the KYC check.
	IsVerified(investor string) bool

	// WhitelistEntry returns the investor's whitelist entry, if any.
	WhitelistEntry(investor string) (WhitelistEntry, bool)
}

// CustodialWallet is the indirect custodial wallet collaborator.
type CustodialWallet interface {
	// Pending returns the amount still pending for the investor in the
	// external custodial mechanism for the given currency.
	Pending(investor string, cur Currency) (amount.Amount, error)

	// SettleRefund satisfies amt of the investor's pending balance.
	SettleRefund(investor string, cur Currency, amt amount.Amount) error

	// NotifyClaimed tells the wallet the investor's claim is resolved.
	NotifyClaimed(investor string) error
}

// FeeCollector receives platform cash fees and recycle instructions.
type FeeCollector interface {
	// Deposit hands over a platform fee, tagged with an instrument
	// identifier for pro-rata attribution.
	Deposit(instrument string, cur Currency, amt amount.Amount) error

	// Reject forwards a recycle instruction for a listed instrument.
	Reject(instrument string) error
}

// RateSource is the exchange-rate oracle contract. Quotes carry their
// own timestamp; the engine rejects quotes older than the configured
// expiry window.
type RateSource interface {
	// Rate returns the EUR value of one unit of cur as a num/den pair,
	// together with the quote timestamp.
	Rate(cur Currency) (num, den uint64, asOf time.Time, err error)
}

// LegalRegistry tracks legal-agreement acceptance.
type LegalRegistry interface {
	// HasActiveAgreement reports whether the party operates under an
	// accepted legal agreement.
	HasActiveAgreement(party string) bool
}

// PhaseObserver is notified after a phase transition has committed.
// The core holds a single registered implementation; tests substitute a
// double.
type PhaseObserver interface {
	OnPhaseEntered(p Phase)
}
