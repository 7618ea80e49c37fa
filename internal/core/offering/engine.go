package offering

import (
	"errors"
	"sync"
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
)

// Collaborators bundles the external interfaces the engine settles
// against. All of them are required except Observer and Auditor.
type Collaborators struct {
	Vault     CurrencyVault
	Units     UnitLedger
	Rewards   RewardLedger
	Identity  IdentityRegistry
	Custodial CustodialWallet
	Fees      FeeCollector
	Rates     RateSource
	Legal     LegalRegistry
	Observer  PhaseObserver
	Auditor   Auditor
}

// AuditRecord describes one committed operation for the audit journal.
type AuditRecord struct {
	Kind     string
	Investor string
	Currency string
	Amount   string
	Phase    string
	At       time.Time
}

// Auditor records committed operations. Failures are logged by the
// caller of the engine, never surfaced to investors; the engine treats
// auditing as fire-and-forget.
type Auditor interface {
	Record(AuditRecord)
}

// state is the complete mutable ledger state of one offering. Operations
// work on a clone and commit it only on full success, so a rejected
// operation leaves all state exactly as it was.
type state struct {
	phase    Phase
	schedule Schedule

	tickets *ticketLedger
	totals  Totals
	outcome *Outcome

	issuerAgreementRef string
	confirmedRef       string
	nomineeConfirmed   bool
}

func newState() *state {
	return &state{phase: PhaseSetup, tickets: newTicketLedger()}
}

func (s *state) clone() *state {
	c := *s
	c.tickets = s.tickets.clone()
	if s.outcome != nil {
		o := *s.outcome
		c.outcome = &o
	}
	return &c
}

// opCtx carries one in-flight operation: the working state clone and the
// outbound settlement calls queued behind it. State is always mutated
// before the matching external call is queued, and all calls run only
// after the operation's own mutations are complete.
type opCtx struct {
	st      *state
	calls   []func() error
	entered []Phase
	audit   AuditRecord
}

func (op *opCtx) transfer(call func() error) {
	op.calls = append(op.calls, call)
}

// Engine is the offering settlement state machine. The execution model
// is strictly serial: one operation runs to completion before the next
// begins, guarded by a single mutex.
type Engine struct {
	mu    sync.Mutex
	terms Terms
	deps  Collaborators
	clock func() time.Time
	st    *state
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.clock = now }
}

// NewEngine creates an engine in the Setup phase.
func NewEngine(terms Terms, deps Collaborators, opts ...Option) (*Engine, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Vault == nil, deps.Units == nil, deps.Rewards == nil,
		deps.Identity == nil, deps.Custodial == nil, deps.Fees == nil,
		deps.Rates == nil, deps.Legal == nil:
		return nil, errors.New("offering: missing collaborator")
	}
	e := &Engine{
		terms: terms,
		deps:  deps,
		clock: time.Now,
		st:    newState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Terms returns the immutable offering terms.
func (e *Engine) Terms() Terms {
	return e.terms
}

// run executes one atomic operation: it clones the state, performs the
// time-driven phase re-evaluation, runs fn, executes the queued outbound
// calls, and commits. Any non-OK result or failed outbound call discards
// the clone, leaving committed state untouched.
func (e *Engine) run(kind string, fn func(op *opCtx) Result) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	op := &opCtx{st: e.st.clone()}

	if res := e.evaluatePhase(op, now); !res.IsSuccess() {
		return res
	}
	if res := fn(op); !res.IsSuccess() {
		return res
	}
	for _, call := range op.calls {
		if err := call(); err != nil {
			return ResInternal
		}
	}
	e.st = op.st

	if e.deps.Observer != nil {
		for _, p := range op.entered {
			e.deps.Observer.OnPhaseEntered(p)
		}
	}
	if e.deps.Auditor != nil {
		rec := op.audit
		rec.Kind = kind
		rec.Phase = e.st.phase.String()
		rec.At = now
		e.deps.Auditor.Record(rec)
	}
	return ResOK
}

// evaluatePhase runs the three-stage transition evaluation: the
// time-driven baseline, then the logic-driven acceleration, each entry
// subject to the pre-transition override. Phase-entry settlement actions
// fire exactly once, on the transition itself.
func (e *Engine) evaluatePhase(op *opCtx, now time.Time) Result {
	for !op.st.phase.IsTerminal() {
		target := op.st.schedule.at(now, op.st.phase)
		if target > op.st.phase {
			if res := e.advance(op, now, op.st.phase.next()); !res.IsSuccess() {
				return res
			}
			continue
		}
		logical := e.logicalAdvance(op.st)
		if logical > op.st.phase {
			if res := e.advance(op, now, logical); !res.IsSuccess() {
				return res
			}
			continue
		}
		break
	}
	return ResOK
}

// logicalAdvance proposes the next phase independent of time. It never
// skips more than one step. The machine is eligible to leave Whitelist
// or Public early when the global unit cap would be exceeded by one
// minimum-sized ticket, and leaves Signing once the nominee confirmation
// has been recorded.
func (e *Engine) logicalAdvance(st *state) Phase {
	switch st.phase {
	case PhaseWhitelist, PhasePublic:
		withMin, err := st.totals.Units.Add(e.terms.minTicketUnits())
		if err != nil || withMin.Cmp(e.terms.MaxUnits) > 0 {
			return st.phase.next()
		}
	case PhaseSigning:
		if st.nomineeConfirmed {
			return PhaseClaim
		}
	}
	return st.phase
}

// advance moves the machine one step to proposed, applying the override
// and firing the phase-entry settlement action.
func (e *Engine) advance(op *opCtx, now time.Time, proposed Phase) Result {
	// Pre-transition override: entering Signing below the minimum raise
	// redirects to Refund. This is the sole path to failure.
	if proposed == PhaseSigning && op.st.totals.Units.Cmp(e.terms.MinUnits) < 0 {
		proposed = PhaseRefund
	}

	var res Result = ResOK
	switch proposed {
	case PhaseSigning:
		res = e.onEnterSigning(op)
	case PhaseClaim:
		res = e.onEnterClaim(op)
	case PhaseRefund:
		res = e.onEnterRefund(op)
	case PhasePayout:
		res = e.onEnterPayout(op)
	}
	if !res.IsSuccess() {
		return res
	}
	op.st.phase = proposed
	if proposed == PhaseClaim {
		op.st.schedule.Payout = now.Add(e.terms.ClaimDuration)
	}
	op.entered = append(op.entered, proposed)
	return ResOK
}

// Tick performs the phase re-evaluation with no further effect. It gives
// time-driven transitions a trigger when no investor operation arrives.
func (e *Engine) Tick() Result {
	return e.run("tick", func(op *opCtx) Result { return ResOK })
}

// FundsReceived consumes a deposit notification from one of the two
// trusted currency ledgers. sourceWallet may differ from the beneficial
// investor when routed through the indirect custodial wallet, in which
// case encodedInvestor names the true investor.
func (e *Engine) FundsReceived(fromAccount, sourceWallet string, paid amount.Amount, encodedInvestor string) Result {
	return e.run("funds_received", func(op *opCtx) Result {
		var cur Currency
		switch fromAccount {
		case e.terms.EURLedgerAccount:
			cur = CurrencyEUR
		case e.terms.ETHLedgerAccount:
			cur = CurrencyETH
		default:
			return ResUnknownPaymentSource
		}

		st := op.st
		if st.phase != PhaseWhitelist && st.phase != PhasePublic {
			return ResWrongPhase
		}

		viaIntermediary := sourceWallet == e.terms.CustodialWalletAccount && e.terms.CustodialWalletAccount != ""
		investor := sourceWallet
		if viaIntermediary {
			if encodedInvestor == "" {
				return ResIneligibleInvestor
			}
			investor = encodedInvestor
		}

		equivEUR, res := e.toReferenceCurrency(cur, paid)
		if !res.IsSuccess() {
			return res
		}
		op.audit.Investor = investor
		op.audit.Currency = cur.String()
		op.audit.Amount = paid.String()

		ticket := st.tickets.get(investor)
		calc, res := calculateContribution(e.terms, e.deps.Identity, e.deps.Rewards,
			st.totals, ticket, investor, equivEUR, viaIntermediary, st.phase == PhaseWhitelist)
		if !res.IsSuccess() {
			return res
		}

		firstTime, res := st.tickets.applyContribution(investor, equivEUR,
			calc.RewardInvestor, calc.Units, cur, paid, viaIntermediary)
		if !res.IsSuccess() {
			return res
		}
		st.totals.recordContribution(calc.Units, calc.FixedSlotUnits, equivEUR, cur, paid, firstTime)

		// Reward units for own-account contributions are issued to the
		// offering; the platform share and rounding remainder stay with
		// it until Claim entry.
		if !calc.RewardTotal.IsZero() {
			issue := calc.RewardTotal
			op.transfer(func() error {
				return e.deps.Rewards.Issue(issue)
			})
		}

		// The contribution may itself trigger a phase advance.
		return e.evaluatePhase(op, e.clock())
	})
}

// toReferenceCurrency converts paid to the reference currency. The
// reference currency converts with the identity rate and no staleness
// check; any other quote older than the expiry window is rejected.
func (e *Engine) toReferenceCurrency(cur Currency, paid amount.Amount) (amount.Amount, Result) {
	if cur == CurrencyEUR {
		return paid, ResOK
	}
	num, den, asOf, err := e.deps.Rates.Rate(cur)
	if err != nil {
		return amount.Zero(), ResInternal
	}
	if e.clock().Sub(asOf) > e.terms.RateExpiry {
		return amount.Zero(), ResStaleExchangeRate
	}
	equiv, err := paid.MulDiv(num, den)
	if err != nil {
		return amount.Zero(), ResTicketOverflow
	}
	return equiv, ResOK
}

// Claim settles the caller's ticket on the success path. Valid in Claim
// or Payout.
func (e *Engine) Claim(caller string) Result {
	return e.run("claim", func(op *opCtx) Result {
		if op.st.phase != PhaseClaim && op.st.phase != PhasePayout {
			return ResWrongPhase
		}
		op.audit.Investor = caller
		return e.settleClaim(op, caller)
	})
}

// Refund settles the caller's ticket on the failure path. Valid only in
// Refund.
func (e *Engine) Refund(caller string) Result {
	return e.run("refund", func(op *opCtx) Result {
		if op.st.phase != PhaseRefund {
			return ResWrongPhase
		}
		op.audit.Investor = caller
		return e.settleRefund(op, caller)
	})
}

// Payout verifies the offering has reached the Payout phase; the
// disbursal itself fires once, on the phase entry performed by the
// re-evaluation wrapped around this call.
func (e *Engine) Payout(string) Result {
	return e.run("payout", func(op *opCtx) Result {
		if op.st.phase != PhasePayout {
			return ResWrongPhase
		}
		return ResOK
	})
}

// Recycle forwards a reject instruction to the fee collector for each
// listed instrument. Callable only in Payout.
func (e *Engine) Recycle(instruments []string) Result {
	return e.run("recycle", func(op *opCtx) Result {
		if op.st.phase != PhasePayout {
			return ResWrongPhase
		}
		for _, instrument := range instruments {
			id := instrument
			op.transfer(func() error {
				return e.deps.Fees.Reject(id)
			})
		}
		return ResOK
	})
}

// SetStartDate commits the offering schedule. Valid only while the phase
// is Setup, for the issuer under an active legal agreement, against the
// agreed terms and unit-ledger references. The date must leave the
// minimum lead time before investors could whitelist, and a lead time
// already committed by an earlier call cannot be shortened.
func (e *Engine) SetStartDate(caller, termsRef, unitLedgerRef string, start time.Time) Result {
	return e.run("set_start_date", func(op *opCtx) Result {
		st := op.st
		if st.phase != PhaseSetup {
			return ResWrongPhase
		}
		if caller != e.terms.Issuer || !e.deps.Legal.HasActiveAgreement(caller) {
			return ResUnauthorizedCaller
		}
		if termsRef != e.terms.TermsRef || unitLedgerRef != e.terms.UnitLedgerRef {
			return ResUnauthorizedCaller
		}
		now := e.clock()
		if start.Before(now.Add(e.terms.MinLeadTime)) {
			return ResWrongPhase
		}
		// Once the committed date is within the lead window the schedule
		// is locked and cannot be moved.
		if !st.schedule.Whitelist.IsZero() &&
			st.schedule.Whitelist.Before(now.Add(e.terms.MinLeadTime)) {
			return ResWrongPhase
		}
		st.schedule.Whitelist = start
		st.schedule.Public = start.Add(e.terms.WhitelistDuration)
		st.schedule.Signing = st.schedule.Public.Add(e.terms.PublicDuration)
		return ResOK
	})
}

// IssuerSignsAgreement records the issuer-submitted investment-agreement
// reference. Gated on Signing.
func (e *Engine) IssuerSignsAgreement(caller, documentRef string) Result {
	return e.run("sign_agreement", func(op *opCtx) Result {
		st := op.st
		if st.phase != PhaseSigning {
			return ResWrongPhase
		}
		if caller != e.terms.Issuer {
			return ResUnauthorizedCaller
		}
		if st.nomineeConfirmed {
			return ResAlreadyConfirmed
		}
		st.issuerAgreementRef = documentRef
		return ResOK
	})
}

// NomineeConfirmsAgreement validates the nominee confirmation by hash
// equality against the issuer-submitted reference and records it. The
// confirmation is the trigger for the Signing→Claim advance, which fires
// within this same operation.
func (e *Engine) NomineeConfirmsAgreement(caller, documentRef string) Result {
	return e.run("confirm_agreement", func(op *opCtx) Result {
		st := op.st
		if st.phase != PhaseSigning {
			return ResWrongPhase
		}
		if caller != e.terms.Nominee {
			return ResUnauthorizedCaller
		}
		if st.nomineeConfirmed {
			return ResAlreadyConfirmed
		}
		if st.issuerAgreementRef == "" || documentRef != st.issuerAgreementRef {
			return ResUnauthorizedCaller
		}
		st.nomineeConfirmed = true
		st.confirmedRef = documentRef
		return e.evaluatePhase(op, e.clock())
	})
}
