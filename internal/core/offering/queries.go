package offering

import (
	"github.com/shopspring/decimal"
)

// TicketInfo is the read-only per-investor breakdown.
type TicketInfo struct {
	Ticket

	// AverageUnitPriceEUR is the derived price paid per unit. Display
	// only; settlement arithmetic never touches it.
	AverageUnitPriceEUR decimal.Decimal
}

// OutcomeInfo is the issuer/nominee-visible outcome summary. Present
// only once Signing has been entered.
type OutcomeInfo struct {
	Outcome
	Present bool
}

// Phase returns the current committed phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.phase
}

// TicketFor returns the investor's ticket breakdown.
func (e *Engine) TicketFor(investor string) TicketInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.st.tickets.get(investor)
	info := TicketInfo{Ticket: t}
	if !t.Units.IsZero() {
		equiv := decimal.NewFromBigInt(t.EquivEUR.BigInt(), 0)
		units := decimal.NewFromBigInt(t.Units.BigInt(), 0)
		info.AverageUnitPriceEUR = equiv.DivRound(units, 6)
	}
	return info
}

// Totals returns the offering-wide running sums.
func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.totals
}

// Outcome returns the offering outcome fixed at Signing entry.
func (e *Engine) Outcome() OutcomeInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.st.outcome == nil {
		return OutcomeInfo{}
	}
	return OutcomeInfo{Outcome: *e.st.outcome, Present: true}
}

// AgreementRef returns the signed investment-agreement reference and
// whether the nominee has confirmed it.
func (e *Engine) AgreementRef() (ref string, confirmed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.issuerAgreementRef, e.st.nomineeConfirmed
}

// ScheduleInfo returns the committed phase schedule. The zero value
// means the start date has not been set.
func (e *Engine) ScheduleInfo() Schedule {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.schedule
}
