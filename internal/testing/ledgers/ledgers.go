// Package ledgers provides in-memory implementations of the offering
// collaborators: the currency, unit and reward ledgers, the identity
// registry, the custodial wallet, the fee collector and the legal
// registry. Tests and the standalone serve mode wire these in place of
// the production services.
package ledgers

import (
	"errors"
	"fmt"
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
	"github.com/crowdlane/offeringd/internal/core/offering"
)

// Transfer is one recorded currency movement.
type Transfer struct {
	Currency offering.Currency
	To       string
	Amount   amount.Amount
}

// CurrencyVault records transfers instructed by the engine.
type CurrencyVault struct {
	Transfers []Transfer
	FailNext  bool
}

func (v *CurrencyVault) Transfer(cur offering.Currency, to string, amt amount.Amount) error {
	if v.FailNext {
		v.FailNext = false
		return errors.New("vault: transfer rejected")
	}
	v.Transfers = append(v.Transfers, Transfer{Currency: cur, To: to, Amount: amt})
	return nil
}

// Sent sums recorded transfers to one destination in one currency.
func (v *CurrencyVault) Sent(cur offering.Currency, to string) amount.Amount {
	total := amount.Zero()
	for _, t := range v.Transfers {
		if t.Currency == cur && t.To == to {
			total, _ = total.Add(t.Amount)
		}
	}
	return total
}

// UnitLedger tracks minted units and per-holder balances.
type UnitLedger struct {
	Minted   amount.Amount
	Held     amount.Amount // units still with the offering
	Balances map[string]amount.Amount
}

func NewUnitLedger() *UnitLedger {
	return &UnitLedger{Balances: make(map[string]amount.Amount)}
}

func (l *UnitLedger) Mint(amt amount.Amount) error {
	var err error
	if l.Minted, err = l.Minted.Add(amt); err != nil {
		return err
	}
	l.Held, err = l.Held.Add(amt)
	return err
}

func (l *UnitLedger) Transfer(to string, amt amount.Amount) error {
	held, err := l.Held.Sub(amt)
	if err != nil {
		return fmt.Errorf("unit ledger: offering holds %s, cannot transfer %s", l.Held, amt)
	}
	l.Held = held
	bal, err := l.Balances[to].Add(amt)
	if err != nil {
		return err
	}
	l.Balances[to] = bal
	return nil
}

// RewardLedger issues rewards linearly: Num reward units per Den units
// of reference currency contributed.
type RewardLedger struct {
	Num uint64
	Den uint64

	Issued   amount.Amount
	Held     amount.Amount
	Burned   amount.Amount
	Balances map[string]amount.Amount
}

func NewRewardLedger(num, den uint64) *RewardLedger {
	return &RewardLedger{Num: num, Den: den, Balances: make(map[string]amount.Amount)}
}

func (l *RewardLedger) ComputeIssuance(_, contribution amount.Amount) (amount.Amount, error) {
	return contribution.MulDiv(l.Num, l.Den)
}

func (l *RewardLedger) Issue(amt amount.Amount) error {
	var err error
	if l.Issued, err = l.Issued.Add(amt); err != nil {
		return err
	}
	l.Held, err = l.Held.Add(amt)
	return err
}

func (l *RewardLedger) Balance() (amount.Amount, error) {
	return l.Held, nil
}

func (l *RewardLedger) Transfer(to string, amt amount.Amount) error {
	held, err := l.Held.Sub(amt)
	if err != nil {
		return fmt.Errorf("reward ledger: offering holds %s, cannot transfer %s", l.Held, amt)
	}
	l.Held = held
	bal, err := l.Balances[to].Add(amt)
	if err != nil {
		return err
	}
	l.Balances[to] = bal
	return nil
}

func (l *RewardLedger) Burn(amt amount.Amount) error {
	held, err := l.Held.Sub(amt)
	if err != nil {
		return fmt.Errorf("reward ledger: offering holds %s, cannot burn %s", l.Held, amt)
	}
	l.Held = held
	l.Burned, err = l.Burned.Add(amt)
	return err
}

// IdentityRegistry holds verification flags and whitelist entries.
type IdentityRegistry struct {
	Verified  map[string]bool
	Whitelist map[string]offering.WhitelistEntry
}

func NewIdentityRegistry() *IdentityRegistry {
	return &IdentityRegistry{
		Verified:  make(map[string]bool),
		Whitelist: make(map[string]offering.WhitelistEntry),
	}
}

func (r *IdentityRegistry) IsVerified(investor string) bool {
	return r.Verified[investor]
}

func (r *IdentityRegistry) WhitelistEntry(investor string) (offering.WhitelistEntry, bool) {
	e, ok := r.Whitelist[investor]
	return e, ok
}

type custodialKey struct {
	investor string
	cur      offering.Currency
}

// CustodialWallet tracks pending balances and settle notifications.
type CustodialWallet struct {
	PendingBalances map[custodialKey]amount.Amount
	Refunded        []Transfer
	Claimed         []string
}

func NewCustodialWallet() *CustodialWallet {
	return &CustodialWallet{PendingBalances: make(map[custodialKey]amount.Amount)}
}

// SetPending seeds the pending balance for an investor and currency.
func (w *CustodialWallet) SetPending(investor string, cur offering.Currency, amt amount.Amount) {
	w.PendingBalances[custodialKey{investor, cur}] = amt
}

func (w *CustodialWallet) Pending(investor string, cur offering.Currency) (amount.Amount, error) {
	return w.PendingBalances[custodialKey{investor, cur}], nil
}

func (w *CustodialWallet) SettleRefund(investor string, cur offering.Currency, amt amount.Amount) error {
	key := custodialKey{investor, cur}
	rest, err := w.PendingBalances[key].Sub(amt)
	if err != nil {
		return fmt.Errorf("custodial wallet: pending %s below refund %s", w.PendingBalances[key], amt)
	}
	w.PendingBalances[key] = rest
	w.Refunded = append(w.Refunded, Transfer{Currency: cur, To: investor, Amount: amt})
	return nil
}

func (w *CustodialWallet) NotifyClaimed(investor string) error {
	w.Claimed = append(w.Claimed, investor)
	return nil
}

// FeeDeposit is one platform fee handed to the collector.
type FeeDeposit struct {
	Instrument string
	Currency   offering.Currency
	Amount     amount.Amount
}

// FeeCollector records deposits and recycle instructions.
type FeeCollector struct {
	Deposits []FeeDeposit
	Rejected []string
}

func (c *FeeCollector) Deposit(instrument string, cur offering.Currency, amt amount.Amount) error {
	c.Deposits = append(c.Deposits, FeeDeposit{Instrument: instrument, Currency: cur, Amount: amt})
	return nil
}

func (c *FeeCollector) Reject(instrument string) error {
	c.Rejected = append(c.Rejected, instrument)
	return nil
}

// LegalRegistry flags parties under an active agreement.
type LegalRegistry struct {
	Active map[string]bool
}

func NewLegalRegistry(parties ...string) *LegalRegistry {
	r := &LegalRegistry{Active: make(map[string]bool)}
	for _, p := range parties {
		r.Active[p] = true
	}
	return r
}

func (r *LegalRegistry) HasActiveAgreement(party string) bool {
	return r.Active[party]
}

// FixedQuote is a static oracle reading.
type FixedQuote struct {
	Num  uint64
	Den  uint64
	AsOf time.Time
}

// FixedRates serves static quotes per currency.
type FixedRates struct {
	Quotes map[offering.Currency]FixedQuote
}

func (r *FixedRates) Rate(cur offering.Currency) (num, den uint64, asOf time.Time, err error) {
	q, ok := r.Quotes[cur]
	if !ok {
		return 0, 0, time.Time{}, fmt.Errorf("rates: no quote for %s", cur)
	}
	return q.Num, q.Den, q.AsOf, nil
}

// PhaseRecorder records observer notifications.
type PhaseRecorder struct {
	Entered []offering.Phase
}

func (r *PhaseRecorder) OnPhaseEntered(p offering.Phase) {
	r.Entered = append(r.Entered, p)
}
