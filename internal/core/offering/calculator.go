package offering

import "github.com/crowdlane/offeringd/internal/core/amount"

// contribution is the calculator's verdict on a candidate contribution.
type contribution struct {
	// Whitelisted reports whitelist membership of the investor.
	Whitelisted bool

	// Units is the resulting unit amount; FixedSlotUnits the portion
	// attributable to the pre-reserved fixed-slot allocation.
	Units          amount.Amount
	FixedSlotUnits amount.Amount

	// RewardTotal is the full reward issuance for the contribution;
	// RewardInvestor and RewardPlatform split it, with the floor-division
	// remainder staying with the offering until Claim entry. All three
	// are zero for contributions routed via the custodial wallet.
	RewardTotal    amount.Amount
	RewardInvestor amount.Amount
	RewardPlatform amount.Amount
}

// calculateContribution is a pure function of the current totals, the
// investor's existing ticket and the candidate contribution value in the
// reference currency. It performs every eligibility and cap check; the
// ticket ledger and totals trust its verdict. whitelistRules selects the
// whitelist-era pricing and sub-cap checks.
func calculateContribution(terms Terms, identity IdentityRegistry, rewards RewardLedger,
	totals Totals, ticket Ticket, investor string, equivEUR amount.Amount,
	viaIntermediary, whitelistRules bool) (contribution, Result) {

	var out contribution

	if !identity.IsVerified(investor) {
		return out, ResIneligibleInvestor
	}

	entry, whitelisted := identity.WhitelistEntry(investor)
	out.Whitelisted = whitelisted

	// Contributions via the indirect custodial wallet are pre-vetted and
	// admitted during the whitelist phase regardless of membership.
	if whitelistRules && !whitelisted && !viaIntermediary {
		return out, ResNotWhitelisted
	}

	newTicketEUR, err := ticket.EquivEUR.Add(equivEUR)
	if err != nil {
		return out, ResTicketOverflow
	}
	if newTicketEUR.Cmp(terms.MinTicketEUR) < 0 {
		return out, ResBelowMinimumTicket
	}
	if newTicketEUR.Cmp(terms.MaxTicketEUR) > 0 {
		return out, ResAboveMaximumTicket
	}

	// Fixed-slot portion: the unused remainder of the investor's
	// pre-reserved allocation buys units at the fixed-slot price.
	slotEUR := amount.Zero()
	if whitelisted && !entry.FixedSlotEUR.IsZero() {
		remaining, err := entry.FixedSlotEUR.Sub(ticket.EquivEUR)
		if err == nil {
			slotEUR = equivEUR.Min(remaining)
		}
	}
	restEUR, err := equivEUR.Sub(slotEUR)
	if err != nil {
		return out, ResInternal
	}

	restPrice := terms.UnitPriceEUR
	if whitelistRules && whitelisted {
		restPrice = terms.whitelistPrice()
	}
	out.FixedSlotUnits = divAmount(slotEUR, terms.fixedSlotPrice())
	restUnits := divAmount(restEUR, restPrice)
	if out.Units, err = out.FixedSlotUnits.Add(restUnits); err != nil {
		return out, ResTicketOverflow
	}

	// Below one indivisible unit the ticket is rejected even if the
	// reference-currency minimum was met.
	if out.Units.IsZero() {
		return out, ResBelowMinimumTicket
	}

	newUnits, err := totals.Units.Add(out.Units)
	if err != nil || newUnits.Cmp(terms.MaxUnits) > 0 {
		return out, ResCapExceeded
	}
	if whitelistRules {
		// Whitelist sub-cap counts non-fixed-slot units only.
		newFixed, err := totals.FixedSlotUnits.Add(out.FixedSlotUnits)
		if err != nil {
			return out, ResCapExceeded
		}
		nonSlot, err := newUnits.Sub(newFixed)
		if err == nil && nonSlot.Cmp(terms.MaxWhitelistUnits) > 0 {
			return out, ResCapExceeded
		}
	}
	newEquiv, err := totals.EquivEUR.Add(equivEUR)
	if err != nil || newEquiv.Cmp(terms.MaxInvestmentEUR) > 0 {
		return out, ResCapExceeded
	}

	// Reward units are only generated for contributions from the
	// investor's own account. The platform share rounds down; the
	// investor receives the remainder minus a denominator-1 correction
	// recovered in aggregate at Claim entry.
	if !viaIntermediary {
		reward, err := rewards.ComputeIssuance(totals.EquivEUR, equivEUR)
		if err != nil {
			return out, ResInternal
		}
		out.RewardTotal = reward
		out.RewardPlatform = reward.Div(terms.PlatformShareDenominator)
		investorShare, err := reward.Sub(out.RewardPlatform)
		if err != nil {
			return out, ResInternal
		}
		correction := amount.FromUint64(terms.PlatformShareDenominator - 1)
		if corrected, err := investorShare.Sub(correction); err == nil {
			out.RewardInvestor = corrected
		} else {
			out.RewardInvestor = amount.Zero()
		}
	}

	return out, ResOK
}
