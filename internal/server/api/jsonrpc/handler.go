package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crowdlane/offeringd/internal/core/amount"
	"github.com/crowdlane/offeringd/internal/core/offering"
	"github.com/crowdlane/offeringd/internal/storage/journal"
)

var (
	errMethodNotFound = errors.New("method not found")
	errInvalidParams  = errors.New("invalid params")
)

// OfferingHandler handles offering-related JSON-RPC methods.
type OfferingHandler struct {
	engine  *offering.Engine
	journal *journal.Journal
	methods map[string]func(json.RawMessage) (interface{}, error)
}

// NewOfferingHandler initializes a new OfferingHandler instance. The
// journal is optional; passing nil disables the journal_tail method.
func NewOfferingHandler(engine *offering.Engine, jnl *journal.Journal) *OfferingHandler {
	h := &OfferingHandler{
		engine:  engine,
		journal: jnl,
		methods: make(map[string]func(json.RawMessage) (interface{}, error)),
	}

	// Operations.
	h.methods["tick"] = h.handleTick
	h.methods["funds_received"] = h.handleFundsReceived
	h.methods["claim"] = h.handleClaim
	h.methods["refund"] = h.handleRefund
	h.methods["payout"] = h.handlePayout
	h.methods["recycle"] = h.handleRecycle
	h.methods["set_start_date"] = h.handleSetStartDate
	h.methods["sign_agreement"] = h.handleSignAgreement
	h.methods["confirm_agreement"] = h.handleConfirmAgreement

	// Queries.
	h.methods["phase"] = h.handlePhase
	h.methods["ticket"] = h.handleTicket
	h.methods["totals"] = h.handleTotals
	h.methods["outcome"] = h.handleOutcome
	h.methods["agreement"] = h.handleAgreement
	h.methods["schedule"] = h.handleSchedule
	if jnl != nil {
		h.methods["journal_tail"] = h.handleJournalTail
	}

	return h
}

// Handle dispatches a JSON-RPC method to the appropriate handler.
func (h *OfferingHandler) Handle(method string, params json.RawMessage) (interface{}, error) {
	handler, exists := h.methods[method]
	if !exists {
		return nil, fmt.Errorf("%w: %s", errMethodNotFound, method)
	}
	return handler(params)
}

func decodeParams(params json.RawMessage, dst interface{}) error {
	if len(params) == 0 || string(params) == "null" {
		return fmt.Errorf("%w: missing params", errInvalidParams)
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// operationResult is the body every state-changing method returns.
type operationResult struct {
	Result        string `json:"result"`
	ResultCode    int    `json:"result_code"`
	ResultMessage string `json:"result_message"`
	Phase         string `json:"phase"`
}

func (h *OfferingHandler) opResult(res offering.Result) operationResult {
	return operationResult{
		Result:        res.String(),
		ResultCode:    int(res),
		ResultMessage: res.Message(),
		Phase:         h.engine.Phase().String(),
	}
}

func (h *OfferingHandler) handleTick(json.RawMessage) (interface{}, error) {
	return h.opResult(h.engine.Tick()), nil
}

func (h *OfferingHandler) handleFundsReceived(params json.RawMessage) (interface{}, error) {
	var p struct {
		FromAccount  string `json:"from_account"`
		SourceWallet string `json:"source_wallet"`
		Amount       string `json:"amount"`
		Investor     string `json:"investor,omitempty"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	paid, err := amount.Parse(p.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", errInvalidParams, err)
	}
	return h.opResult(h.engine.FundsReceived(p.FromAccount, p.SourceWallet, paid, p.Investor)), nil
}

func (h *OfferingHandler) handleClaim(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller string `json:"caller"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.Claim(p.Caller)), nil
}

func (h *OfferingHandler) handleRefund(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller string `json:"caller"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.Refund(p.Caller)), nil
}

func (h *OfferingHandler) handlePayout(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller string `json:"caller"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
	}
	return h.opResult(h.engine.Payout(p.Caller)), nil
}

func (h *OfferingHandler) handleRecycle(params json.RawMessage) (interface{}, error) {
	var p struct {
		Instruments []string `json:"instruments"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.Recycle(p.Instruments)), nil
}

func (h *OfferingHandler) handleSetStartDate(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller        string    `json:"caller"`
		TermsRef      string    `json:"terms_ref"`
		UnitLedgerRef string    `json:"unit_ledger_ref"`
		Start         time.Time `json:"start"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.SetStartDate(p.Caller, p.TermsRef, p.UnitLedgerRef, p.Start)), nil
}

func (h *OfferingHandler) handleSignAgreement(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller      string `json:"caller"`
		DocumentRef string `json:"document_ref"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.IssuerSignsAgreement(p.Caller, p.DocumentRef)), nil
}

func (h *OfferingHandler) handleConfirmAgreement(params json.RawMessage) (interface{}, error) {
	var p struct {
		Caller      string `json:"caller"`
		DocumentRef string `json:"document_ref"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.opResult(h.engine.NomineeConfirmsAgreement(p.Caller, p.DocumentRef)), nil
}

func (h *OfferingHandler) handlePhase(json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"phase": h.engine.Phase().String(),
	}, nil
}

func (h *OfferingHandler) handleTicket(params json.RawMessage) (interface{}, error) {
	var p struct {
		Investor string `json:"investor"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	info := h.engine.TicketFor(p.Investor)
	return map[string]interface{}{
		"investor":           p.Investor,
		"equiv_eur":          info.EquivEUR,
		"reward_units":       info.RewardUnits,
		"units":              info.Units,
		"amount_eur":         info.AmountEUR,
		"amount_eth":         info.AmountETH,
		"settled":            info.Settled,
		"used_intermediary":  info.UsedIntermediary,
		"average_unit_price": info.AverageUnitPriceEUR,
	}, nil
}

func (h *OfferingHandler) handleTotals(json.RawMessage) (interface{}, error) {
	t := h.engine.Totals()
	return map[string]interface{}{
		"equiv_eur":        t.EquivEUR,
		"units":            t.Units,
		"fixed_slot_units": t.FixedSlotUnits,
		"investors":        t.Investors,
		"sub_eur":          t.SubEUR,
		"sub_eth":          t.SubETH,
	}, nil
}

func (h *OfferingHandler) handleOutcome(json.RawMessage) (interface{}, error) {
	o := h.engine.Outcome()
	if !o.Present {
		return map[string]interface{}{"present": false}, nil
	}
	return map[string]interface{}{
		"present":                 true,
		"shares_issued":           o.SharesIssued,
		"participation_fee_units": o.ParticipationFeeUnits,
		"platform_fee_eur":        o.PlatformFeeEUR,
		"platform_fee_eth":        o.PlatformFeeETH,
		"capital_increase_eur":    o.CapitalIncreaseEUR,
	}, nil
}

func (h *OfferingHandler) handleAgreement(json.RawMessage) (interface{}, error) {
	ref, confirmed := h.engine.AgreementRef()
	return map[string]interface{}{
		"document_ref": ref,
		"confirmed":    confirmed,
	}, nil
}

func (h *OfferingHandler) handleSchedule(json.RawMessage) (interface{}, error) {
	s := h.engine.ScheduleInfo()
	out := map[string]interface{}{
		"start_set": !s.Whitelist.IsZero(),
	}
	if !s.Whitelist.IsZero() {
		out["whitelist"] = s.Whitelist
		out["public"] = s.Public
		out["signing"] = s.Signing
	}
	if !s.Payout.IsZero() {
		out["payout"] = s.Payout
	}
	return out, nil
}

func (h *OfferingHandler) handleJournalTail(params json.RawMessage) (interface{}, error) {
	p := struct {
		Limit int `json:"limit"`
	}{Limit: 20}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
		}
	}
	if p.Limit <= 0 || p.Limit > 1000 {
		return nil, fmt.Errorf("%w: limit must be in [1,1000]", errInvalidParams)
	}
	records, err := h.journal.Tail(p.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"records": records}, nil
}
