package offering

import "github.com/crowdlane/offeringd/internal/core/amount"

// Totals are the offering-wide running sums. All fields only increase
// until Signing is entered; from then on SubEUR and SubETH are
// reinterpreted as the net additional contribution (funds beyond nominal
// share value) and only decrease as fees and capital are carved out.
type Totals struct {
	// EquivEUR is the total reference-currency value raised.
	EquivEUR amount.Amount

	// Units is the total units sold; FixedSlotUnits the portion sold in
	// the discount/fixed-slot class. Units >= FixedSlotUnits always.
	Units          amount.Amount
	FixedSlotUnits amount.Amount

	// Investors counts distinct contributing investors.
	Investors uint64

	// SubEUR and SubETH hold gross contributions per payment currency
	// before Signing, then additional contribution after.
	SubEUR amount.Amount
	SubETH amount.Amount
}

// recordContribution increments all running sums. No validation happens
// here: the calculator has already approved the contribution and this
// bookkeeping must never reject it. Amount fields are 96-bit sums of
// 96-bit ticket values bounded by the caps, so overflow indicates a
// defect upstream, not a condition to report.
func (t *Totals) recordContribution(units, fixedSlotUnits, equivEUR amount.Amount, cur Currency, paid amount.Amount, firstTime bool) {
	t.Units = mustAdd(t.Units, units)
	t.FixedSlotUnits = mustAdd(t.FixedSlotUnits, fixedSlotUnits)
	t.EquivEUR = mustAdd(t.EquivEUR, equivEUR)
	switch cur {
	case CurrencyEUR:
		t.SubEUR = mustAdd(t.SubEUR, paid)
	case CurrencyETH:
		t.SubETH = mustAdd(t.SubETH, paid)
	}
	if firstTime {
		t.Investors++
	}
}

func mustAdd(a, b amount.Amount) amount.Amount {
	r, err := a.Add(b)
	if err != nil {
		panic("offering: aggregate total overflow: " + err.Error())
	}
	return r
}
