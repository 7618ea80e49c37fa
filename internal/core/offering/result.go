package offering

import "fmt"

// Result is an operation result code. Any code other than ResOK is
// operation-fatal: every mutation attempted by the operation is
// discarded and the code is surfaced to the caller.
type Result int

const (
	// ResOK means the operation was applied in full.
	ResOK Result = 0

	// Contribution rejections (100-199)
	ResIneligibleInvestor Result = 100
	ResBelowMinimumTicket Result = 101
	ResAboveMaximumTicket Result = 102
	ResCapExceeded        Result = 103
	ResNotWhitelisted     Result = 104
	ResTicketOverflow     Result = 105
	ResStaleExchangeRate  Result = 106
	ResUnknownPaymentSource Result = 107

	// Authorization and sequencing rejections (200-299)
	ResUnauthorizedCaller Result = 200
	ResWrongPhase         Result = 201
	ResAlreadyConfirmed   Result = 202

	// Settlement invariant violations (300-399)
	ResNonWholeShareCount Result = 300

	// ResInternal covers collaborator failures and consistency defects.
	// These are fatal, not recoverable conditions.
	ResInternal Result = 999
)

// String returns the canonical code name.
func (r Result) String() string {
	switch r {
	case ResOK:
		return "ok"
	case ResIneligibleInvestor:
		return "IneligibleInvestor"
	case ResBelowMinimumTicket:
		return "BelowMinimumTicket"
	case ResAboveMaximumTicket:
		return "AboveMaximumTicket"
	case ResCapExceeded:
		return "CapExceeded"
	case ResNotWhitelisted:
		return "NotWhitelisted"
	case ResTicketOverflow:
		return "TicketOverflow"
	case ResStaleExchangeRate:
		return "StaleExchangeRate"
	case ResUnknownPaymentSource:
		return "UnknownPaymentSource"
	case ResUnauthorizedCaller:
		return "UnauthorizedCaller"
	case ResWrongPhase:
		return "WrongPhase"
	case ResAlreadyConfirmed:
		return "AlreadyConfirmed"
	case ResNonWholeShareCount:
		return "NonWholeShareCount"
	case ResInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// IsSuccess reports whether the operation was applied.
func (r Result) IsSuccess() bool {
	return r == ResOK
}

// Message returns a human-readable description of the result.
func (r Result) Message() string {
	switch r {
	case ResOK:
		return "The operation was applied."
	case ResIneligibleInvestor:
		return "The investor did not pass the eligibility check."
	case ResBelowMinimumTicket:
		return "The resulting ticket would be below the minimum ticket size."
	case ResAboveMaximumTicket:
		return "The resulting ticket would exceed the maximum ticket size."
	case ResCapExceeded:
		return "The contribution would cross a unit cap or the investment ceiling."
	case ResNotWhitelisted:
		return "The investor is not on the whitelist for the whitelist phase."
	case ResTicketOverflow:
		return "A ticket field would exceed its fixed-width bound."
	case ResStaleExchangeRate:
		return "The exchange rate is older than the configured expiry window."
	case ResUnknownPaymentSource:
		return "The deposit notification did not come from a trusted currency ledger."
	case ResUnauthorizedCaller:
		return "The caller is not authorized for this operation."
	case ResWrongPhase:
		return "The operation is not valid in the current phase."
	case ResAlreadyConfirmed:
		return "The agreement has already been confirmed."
	case ResNonWholeShareCount:
		return "Units sold plus the participation fee do not form whole shares."
	case ResInternal:
		return "Internal consistency violation; the operation was discarded."
	default:
		return r.String()
	}
}
