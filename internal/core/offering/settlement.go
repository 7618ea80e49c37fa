package offering

import (
	"github.com/google/uuid"

	"github.com/crowdlane/offeringd/internal/core/amount"
)

// Outcome is created once, on Signing entry, and immutable thereafter.
// (UnitsSold + ParticipationFeeUnits) divides evenly by units-per-share.
type Outcome struct {
	SharesIssued          amount.Amount
	ParticipationFeeUnits amount.Amount
	PlatformFeeEUR        amount.Amount
	PlatformFeeETH        amount.Amount
	CapitalIncreaseEUR    amount.Amount
}

// onEnterSigning fixes the offering outcome: the platform participation
// fee in units, shares issued, platform cash fees, and the immediate
// nominal-capital transfer to the nominee.
func (e *Engine) onEnterSigning(op *opCtx) Result {
	st := op.st
	t := e.terms

	// Participation fee. If exactly the maximum sellable amount was sold
	// the fee is the exact remainder up to the theoretical maximum;
	// otherwise a proportional fee rounded up to the next whole-share
	// boundary.
	var fee amount.Amount
	var err error
	if st.totals.Units.Cmp(t.MaxUnits) == 0 {
		if fee, err = t.MaxTheoreticalUnits.Sub(t.MaxUnits); err != nil {
			return ResInternal
		}
	} else {
		fee = st.totals.Units.MulFrac(t.ParticipationFeeFrac)
		withFee, err := st.totals.Units.Add(fee)
		if err != nil {
			return ResInternal
		}
		if rem := withFee.Mod(t.UnitsPerShare); rem != 0 {
			if fee, err = fee.Add(amount.FromUint64(t.UnitsPerShare - rem)); err != nil {
				return ResInternal
			}
		}
	}
	withFee, err := st.totals.Units.Add(fee)
	if err != nil || withFee.Mod(t.UnitsPerShare) != 0 {
		return ResNonWholeShareCount
	}
	shares := withFee.Div(t.UnitsPerShare)

	// From here the currency sub-totals are reinterpreted as additional
	// contribution. Carve the platform cash fees out in place.
	feeEUR := st.totals.SubEUR.MulFrac(t.PlatformFeeFrac)
	feeETH := st.totals.SubETH.MulFrac(t.PlatformFeeFrac)
	if st.totals.SubEUR, err = st.totals.SubEUR.Sub(feeEUR); err != nil {
		return ResInternal
	}
	if st.totals.SubETH, err = st.totals.SubETH.Sub(feeETH); err != nil {
		return ResInternal
	}

	// Nominal per-share capital moves to the nominee immediately, capped
	// at the net reference-currency balance. A shortfall does not fail
	// the transition; it is left as an off-system reconciliation.
	capitalBig := shares.BigInt()
	capitalBig.Mul(capitalBig, t.ShareNominalEUR.BigInt())
	capital, err := amount.Parse(capitalBig.String())
	if err != nil {
		return ResInternal
	}
	toNominee := capital.Min(st.totals.SubEUR)
	if st.totals.SubEUR, err = st.totals.SubEUR.Sub(toNominee); err != nil {
		return ResInternal
	}
	if !toNominee.IsZero() {
		op.transfer(func() error {
			return e.deps.Vault.Transfer(CurrencyEUR, t.Nominee, toNominee)
		})
	}

	st.outcome = &Outcome{
		SharesIssued:          shares,
		ParticipationFeeUnits: fee,
		PlatformFeeEUR:        feeEUR,
		PlatformFeeETH:        feeETH,
		CapitalIncreaseEUR:    capital,
	}
	return ResOK
}

// onEnterClaim splits the offering's reward balance by the platform
// share rule, pays out the remaining additional contribution to the
// issuer, and mints the sold units plus the participation fee. The fee
// portion stays with the offering pending Payout.
func (e *Engine) onEnterClaim(op *opCtx) Result {
	st := op.st
	t := e.terms

	balance, err := e.deps.Rewards.Balance()
	if err != nil {
		return ResInternal
	}
	platformShare := balance.Div(t.PlatformShareDenominator)
	if !platformShare.IsZero() {
		op.transfer(func() error {
			return e.deps.Rewards.Transfer(t.PlatformWallet, platformShare)
		})
	}

	if !st.totals.SubEUR.IsZero() {
		net := st.totals.SubEUR
		op.transfer(func() error {
			return e.deps.Vault.Transfer(CurrencyEUR, t.Issuer, net)
		})
		st.totals.SubEUR = amount.Zero()
	}
	if !st.totals.SubETH.IsZero() {
		net := st.totals.SubETH
		op.transfer(func() error {
			return e.deps.Vault.Transfer(CurrencyETH, t.Issuer, net)
		})
		st.totals.SubETH = amount.Zero()
	}

	mint, err := st.totals.Units.Add(st.outcome.ParticipationFeeUnits)
	if err != nil {
		return ResInternal
	}
	op.transfer(func() error {
		return e.deps.Units.Mint(mint)
	})
	return ResOK
}

// onEnterRefund burns the reward balance the offering holds, including
// any received erroneously.
func (e *Engine) onEnterRefund(op *opCtx) Result {
	balance, err := e.deps.Rewards.Balance()
	if err != nil {
		return ResInternal
	}
	if !balance.IsZero() {
		op.transfer(func() error {
			return e.deps.Rewards.Burn(balance)
		})
	}
	return ResOK
}

// onEnterPayout disburses the platform cash fees to the fee collector,
// tagged with an instrument identifier for pro-rata attribution, and
// moves the reserved participation-fee units to the platform portfolio.
func (e *Engine) onEnterPayout(op *opCtx) Result {
	st := op.st
	t := e.terms

	if st.outcome == nil {
		return ResInternal
	}
	if !st.outcome.PlatformFeeEUR.IsZero() {
		instrument := uuid.NewString()
		fee := st.outcome.PlatformFeeEUR
		op.transfer(func() error {
			return e.deps.Fees.Deposit(instrument, CurrencyEUR, fee)
		})
	}
	if !st.outcome.PlatformFeeETH.IsZero() {
		instrument := uuid.NewString()
		fee := st.outcome.PlatformFeeETH
		op.transfer(func() error {
			return e.deps.Fees.Deposit(instrument, CurrencyETH, fee)
		})
	}
	if !st.outcome.ParticipationFeeUnits.IsZero() {
		fee := st.outcome.ParticipationFeeUnits
		op.transfer(func() error {
			return e.deps.Units.Transfer(t.PlatformPortfolio, fee)
		})
	}
	return ResOK
}

// settleClaim settles the caller's ticket and moves reward units and
// acquired units out. Callable any number of times; effective once.
func (e *Engine) settleClaim(op *opCtx, investor string) Result {
	ticket, effective := op.st.tickets.settle(investor)
	if !effective {
		return ResOK
	}
	if !ticket.RewardUnits.IsZero() {
		r := ticket.RewardUnits
		op.transfer(func() error {
			return e.deps.Rewards.Transfer(investor, r)
		})
	}
	if !ticket.Units.IsZero() {
		u := ticket.Units
		op.transfer(func() error {
			return e.deps.Units.Transfer(investor, u)
		})
	}
	if ticket.UsedIntermediary {
		op.transfer(func() error {
			return e.deps.Custodial.NotifyClaimed(investor)
		})
	}
	return ResOK
}

// settleRefund settles the caller's ticket and returns the paid amounts
// per currency. When the ticket used the custodial wallet, any amount
// still pending there is satisfied first; the remainder moves directly.
func (e *Engine) settleRefund(op *opCtx, investor string) Result {
	ticket, effective := op.st.tickets.settle(investor)
	if !effective {
		return ResOK
	}
	for _, leg := range []struct {
		cur Currency
		amt amount.Amount
	}{
		{CurrencyEUR, ticket.AmountEUR},
		{CurrencyETH, ticket.AmountETH},
	} {
		if leg.amt.IsZero() {
			continue
		}
		direct := leg.amt
		if ticket.UsedIntermediary {
			pending, err := e.deps.Custodial.Pending(investor, leg.cur)
			if err != nil {
				return ResInternal
			}
			viaWallet := pending.Min(leg.amt)
			if !viaWallet.IsZero() {
				cur, amt := leg.cur, viaWallet
				op.transfer(func() error {
					return e.deps.Custodial.SettleRefund(investor, cur, amt)
				})
			}
			var err2 error
			if direct, err2 = leg.amt.Sub(viaWallet); err2 != nil {
				return ResInternal
			}
		}
		if !direct.IsZero() {
			cur, amt := leg.cur, direct
			op.transfer(func() error {
				return e.deps.Vault.Transfer(cur, investor, amt)
			})
		}
	}
	return ResOK
}
