package offering

import "github.com/crowdlane/offeringd/internal/core/amount"

// Ticket is an investor's cumulative position in the offering. All
// amount fields only grow until Settled flips, and Settled flips exactly
// once.
type Ticket struct {
	// EquivEUR is the accumulated contribution in the reference currency.
	EquivEUR amount.Amount

	// RewardUnits and Units are the accumulated reward units and acquired
	// units.
	RewardUnits amount.Amount
	Units       amount.Amount

	// AmountEUR and AmountETH split the paid amounts by payment currency.
	AmountEUR amount.Amount
	AmountETH amount.Amount

	// Settled guards claim and refund from executing twice.
	Settled bool

	// UsedIntermediary is true if any contribution arrived via the
	// indirect custodial wallet rather than the investor's own account.
	UsedIntermediary bool
}

// IsEmpty reports whether the ticket carries no contribution.
func (t Ticket) IsEmpty() bool {
	return t.EquivEUR.IsZero()
}

// ticketLedger is the per-investor ticket store. It is exclusively owned
// by the engine; callers outside the core only ever see Ticket copies.
type ticketLedger struct {
	tickets map[string]*Ticket
}

func newTicketLedger() *ticketLedger {
	return &ticketLedger{tickets: make(map[string]*Ticket)}
}

// get returns a copy of the investor's ticket; a zero ticket if absent.
func (l *ticketLedger) get(investor string) Ticket {
	if t, ok := l.tickets[investor]; ok {
		return *t
	}
	return Ticket{}
}

// applyContribution adds all deltas to the investor's ticket, creating
// it if absent. The prior ticket being empty is how a first-time
// investor is detected. Every new field value is computed before any is
// assigned, so a TicketOverflow leaves the ticket untouched.
func (l *ticketLedger) applyContribution(investor string, equivEUR, reward, units amount.Amount, cur Currency, paid amount.Amount, viaIntermediary bool) (firstTime bool, res Result) {
	t, ok := l.tickets[investor]
	if !ok {
		t = &Ticket{}
	}
	firstTime = t.IsEmpty()

	newEquiv, err := t.EquivEUR.Add(equivEUR)
	if err != nil {
		return false, ResTicketOverflow
	}
	newReward, err := t.RewardUnits.Add(reward)
	if err != nil {
		return false, ResTicketOverflow
	}
	newUnits, err := t.Units.Add(units)
	if err != nil {
		return false, ResTicketOverflow
	}
	newEUR, newETH := t.AmountEUR, t.AmountETH
	switch cur {
	case CurrencyEUR:
		if newEUR, err = t.AmountEUR.Add(paid); err != nil {
			return false, ResTicketOverflow
		}
	case CurrencyETH:
		if newETH, err = t.AmountETH.Add(paid); err != nil {
			return false, ResTicketOverflow
		}
	}

	t.EquivEUR = newEquiv
	t.RewardUnits = newReward
	t.Units = newUnits
	t.AmountEUR = newEUR
	t.AmountETH = newETH
	if viaIntermediary {
		t.UsedIntermediary = true
	}
	l.tickets[investor] = t
	return firstTime, ResOK
}

// settle marks the ticket settled and returns its snapshot. It is
// idempotent: an already-settled or empty ticket yields effective=false
// and the settlement engine performs zero transfers. The settled flag is
// flipped before any external transfer is issued.
func (l *ticketLedger) settle(investor string) (snapshot Ticket, effective bool) {
	t, ok := l.tickets[investor]
	if !ok || t.Settled || t.IsEmpty() {
		if ok {
			return *t, false
		}
		return Ticket{}, false
	}
	t.Settled = true
	return *t, true
}

// forEach visits every ticket in unspecified order.
func (l *ticketLedger) forEach(fn func(investor string, t Ticket)) {
	for inv, t := range l.tickets {
		fn(inv, *t)
	}
}

func (l *ticketLedger) clone() *ticketLedger {
	c := newTicketLedger()
	for inv, t := range l.tickets {
		cp := *t
		c.tickets[inv] = &cp
	}
	return c
}
