package jsonrpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdlane/offeringd/internal/core/amount"
	"github.com/crowdlane/offeringd/internal/core/offering"
	"github.com/crowdlane/offeringd/internal/testing/ledgers"
)

func testEngine(t *testing.T) *offering.Engine {
	t.Helper()
	terms := offering.Terms{
		UnitPriceEUR:        amount.FromUint64(10),
		MinTicketEUR:        amount.FromUint64(100),
		MaxTicketEUR:        amount.FromUint64(10000),
		MaxInvestmentEUR:    amount.FromUint64(100000),
		MinUnits:            amount.FromUint64(50),
		MaxUnits:            amount.FromUint64(1000),
		MaxWhitelistUnits:   amount.FromUint64(300),
		MaxTheoreticalUnits: amount.FromUint64(1030),
		UnitsPerShare:       10,
		ShareNominalEUR:     amount.FromUint64(50),

		PlatformShareDenominator: 2,

		WhitelistDuration: 7 * 24 * time.Hour,
		PublicDuration:    30 * 24 * time.Hour,
		ClaimDuration:     10 * 24 * time.Hour,
		MinLeadTime:       14 * 24 * time.Hour,
		RateExpiry:        6 * time.Hour,

		Issuer:            "issuer",
		Nominee:           "nominee",
		PlatformWallet:    "platform-wallet",
		PlatformPortfolio: "platform-portfolio",
		EURLedgerAccount:  "eur-ledger",
		ETHLedgerAccount:  "eth-ledger",
		TermsRef:          "terms-v1",
		UnitLedgerRef:     "units-v1",
	}
	engine, err := offering.NewEngine(terms, offering.Collaborators{
		Vault:     &ledgers.CurrencyVault{},
		Units:     ledgers.NewUnitLedger(),
		Rewards:   ledgers.NewRewardLedger(0, 1),
		Identity:  ledgers.NewIdentityRegistry(),
		Custodial: ledgers.NewCustodialWallet(),
		Fees:      &ledgers.FeeCollector{},
		Rates:     &ledgers.FixedRates{Quotes: map[offering.Currency]ledgers.FixedQuote{}},
		Legal:     ledgers.NewLegalRegistry("issuer", "nominee"),
	})
	require.NoError(t, err)
	return engine
}

func call(t *testing.T, ts *httptest.Server, method string, params interface{}) Response {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServerDispatch(t *testing.T) {
	ts := httptest.NewServer(NewServer(NewOfferingHandler(testEngine(t), nil)))
	defer ts.Close()

	resp := call(t, ts, "phase", nil)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "setup", result["phase"])
}

func TestServerOperationRejectionIsResult(t *testing.T) {
	ts := httptest.NewServer(NewServer(NewOfferingHandler(testEngine(t), nil)))
	defer ts.Close()

	// A rejected operation is a successful RPC carrying the offering
	// result code, mirroring how clients distinguish the two layers.
	resp := call(t, ts, "funds_received", map[string]interface{}{
		"from_account":  "eur-ledger",
		"source_wallet": "alice",
		"amount":        "500",
	})
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "WrongPhase", result["result"])
	assert.Equal(t, float64(offering.ResWrongPhase), result["result_code"])
}

func TestServerSetStartDateFlow(t *testing.T) {
	ts := httptest.NewServer(NewServer(NewOfferingHandler(testEngine(t), nil)))
	defer ts.Close()

	start := time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	resp := call(t, ts, "set_start_date", map[string]interface{}{
		"caller":          "issuer",
		"terms_ref":       "terms-v1",
		"unit_ledger_ref": "units-v1",
		"start":           start,
	})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	assert.Equal(t, "ok", result["result"])

	resp = call(t, ts, "schedule", nil)
	require.Nil(t, resp.Error)
	schedule := resp.Result.(map[string]interface{})
	assert.Equal(t, true, schedule["start_set"])
	assert.NotEmpty(t, schedule["whitelist"])
}

func TestServerProtocolErrors(t *testing.T) {
	ts := httptest.NewServer(NewServer(NewOfferingHandler(testEngine(t), nil)))
	defer ts.Close()

	t.Run("method not found", func(t *testing.T) {
		resp := call(t, ts, "no_such_method", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		resp := call(t, ts, "funds_received", map[string]interface{}{
			"from_account": "eur-ledger",
			"amount":       "not-a-number",
		})
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeInvalidParams, resp.Error.Code)
	})

	t.Run("missing params", func(t *testing.T) {
		resp := call(t, ts, "claim", nil)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeInvalidParams, resp.Error.Code)
	})

	t.Run("parse error", func(t *testing.T) {
		httpResp, err := http.Post(ts.URL, "application/json", bytes.NewReader([]byte("{not json")))
		require.NoError(t, err)
		defer httpResp.Body.Close()
		var out Response
		require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&out))
		require.NotNil(t, out.Error)
		assert.Equal(t, codeParseError, out.Error.Code)
	})

	t.Run("journal disabled", func(t *testing.T) {
		resp := call(t, ts, "journal_tail", map[string]interface{}{"limit": 5})
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeMethodNotFound, resp.Error.Code)
	})

	t.Run("get rejected", func(t *testing.T) {
		httpResp, err := http.Get(ts.URL)
		require.NoError(t, err)
		defer httpResp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, httpResp.StatusCode)
	})
}
