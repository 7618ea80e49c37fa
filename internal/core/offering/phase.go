package offering

import "time"

// Phase is a named stage of the offering lifecycle. Progression is
// strictly linear with a single fork: Signing may resolve to Refund
// instead of Claim when the minimum raise was not met.
type Phase int

const (
	// PhaseSetup is the initial phase. Only setting the start date is valid.
	PhaseSetup Phase = iota

	// PhaseWhitelist accepts contributions from whitelisted investors
	// (and pre-vetted custodial routing) under the whitelist sub-cap.
	PhaseWhitelist

	// PhasePublic accepts contributions from any verified investor.
	PhasePublic

	// PhaseSigning is the legal-completion window: the issuer signs the
	// investment agreement and the nominee countersigns it.
	PhaseSigning

	// PhaseClaim lets investors collect their units and reward units.
	PhaseClaim

	// PhasePayout is terminal on the success path: platform fees are
	// disbursed and investors may still claim.
	PhasePayout

	// PhaseRefund is terminal on the failure path: investors recover
	// their paid amounts.
	PhaseRefund
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseWhitelist:
		return "whitelist"
	case PhasePublic:
		return "public"
	case PhaseSigning:
		return "signing"
	case PhaseClaim:
		return "claim"
	case PhasePayout:
		return "payout"
	case PhaseRefund:
		return "refund"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition can leave p.
func (p Phase) IsTerminal() bool {
	return p == PhasePayout || p == PhaseRefund
}

// next returns the normal-path successor of p. The Signing→Refund fork
// is applied separately by the pre-transition override.
func (p Phase) next() Phase {
	switch p {
	case PhaseSetup:
		return PhaseWhitelist
	case PhaseWhitelist:
		return PhasePublic
	case PhasePublic:
		return PhaseSigning
	case PhaseSigning:
		return PhaseClaim
	case PhaseClaim:
		return PhasePayout
	default:
		return p
	}
}

// Schedule holds the earliest-start times of the time-driven phases.
// Whitelist, Public and Signing starts are fixed the moment the start
// date is committed. The Payout start is only known once Claim is
// entered; Claim itself is never entered on time alone (it requires the
// nominee confirmation), and Refund is only reached via the override.
type Schedule struct {
	Whitelist time.Time
	Public    time.Time
	Signing   time.Time
	Payout    time.Time // zero until Claim is entered
}

// at returns the latest phase whose scheduled start has passed at now.
// Claim and Refund have no scheduled start; the time baseline can carry
// the machine at most into Signing, and into Payout once the Claim
// entry has fixed the payout start.
func (s Schedule) at(now time.Time, current Phase) Phase {
	if s.Whitelist.IsZero() {
		return PhaseSetup
	}
	switch {
	case current >= PhaseClaim && !s.Payout.IsZero() && !now.Before(s.Payout):
		return PhasePayout
	case current >= PhaseClaim:
		return current
	case !now.Before(s.Signing):
		return PhaseSigning
	case !now.Before(s.Public):
		return PhasePublic
	case !now.Before(s.Whitelist):
		return PhaseWhitelist
	default:
		return PhaseSetup
	}
}
