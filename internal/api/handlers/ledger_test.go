package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/handlers"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/service"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/testutil"
)

// newLedgerHandler builds a handler over a fresh in-memory database and a
// feed whose quote server prices the given symbols.
func newLedgerHandler(t *testing.T, initialBalance string, prices map[string]string) (*handlers.LedgerHandler, *pricefeed.Feed) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ledgerService := testutil.NewTestLedgerService(t, db, initialBalance)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		price, ok := prices[symbol]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"symbol":%q,"price":%s,"timestamp":1756728000}`, symbol, price)
	}))
	t.Cleanup(server.Close)

	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	feed := pricefeed.NewFeed(pricefeed.NewClient(server.URL), symbols)

	return handlers.NewLedgerHandler(ledgerService, feed), feed
}

func orderBody(assetID, quantity, unitPrice string) map[string]any {
	return map[string]any{
		"assetId":   assetID,
		"quantity":  quantity,
		"unitPrice": unitPrice,
	}
}

// TestLedgerHandler_Buy tests the buy endpoint's happy path.
func TestLedgerHandler_Buy(t *testing.T) {
	handler, _ := newLedgerHandler(t, "10000", nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/buy",
		orderBody("AAPL", "5", "100"))
	rec := httptest.NewRecorder()
	handler.Buy(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var result service.OperationResult
	testutil.DecodeJSONResponse(t, rec, &result)

	if result.Transaction.Kind != model.KindBuy {
		t.Errorf("transaction kind = %q, want %q", result.Transaction.Kind, model.KindBuy)
	}
	if result.Transaction.AssetID != "AAPL" {
		t.Errorf("transaction assetId = %q, want AAPL", result.Transaction.AssetID)
	}
	if !result.CashBalance.Equal(testutil.MustMoney(t, "9500")) {
		t.Errorf("cash balance = %s, want 9500", result.CashBalance)
	}
	if !result.Holding.Equal(testutil.MustQuantity(t, "5")) {
		t.Errorf("holding = %s, want 5", result.Holding)
	}
	if !result.Persisted {
		t.Error("expected the snapshot to be persisted")
	}
}

// TestLedgerHandler_BuyRejections tests that rejected buys map to the right
// status codes and leave the ledger untouched.
func TestLedgerHandler_BuyRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "insufficient funds",
			body:       orderBody("AAPL", "1000", "100"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "negative quantity",
			body:       orderBody("AAPL", "-5", "100"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero unit price",
			body:       orderBody("AAPL", "5", "0"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed asset id",
			body:       orderBody("not valid", "5", "100"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       map[string]any{"assetId": "AAPL", "quantity": "5", "unitPrice": "100", "side": "buy"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "non-numeric quantity",
			body:       map[string]any{"assetId": "AAPL", "quantity": "lots", "unitPrice": "100"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newLedgerHandler(t, "10000", nil)

			req := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/buy", tt.body)
			rec := httptest.NewRecorder()
			handler.Buy(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			// The rejection must be a no-op.
			stateRec := httptest.NewRecorder()
			handler.State(stateRec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))

			var state service.LedgerState
			testutil.DecodeJSONResponse(t, stateRec, &state)
			if !state.CashBalance.Equal(testutil.MustMoney(t, "10000")) {
				t.Errorf("cash balance after rejection = %s, want 10000", state.CashBalance)
			}
			if state.TransactionCount != 0 {
				t.Errorf("transaction count after rejection = %d, want 0", state.TransactionCount)
			}
		})
	}
}

// TestLedgerHandler_SellWithoutHoldings tests that selling an asset never
// bought is a 409.
func TestLedgerHandler_SellWithoutHoldings(t *testing.T) {
	handler, _ := newLedgerHandler(t, "10000", nil)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/sell",
		orderBody("AAPL", "1", "100"))
	rec := httptest.NewRecorder()
	handler.Sell(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", rec.Code, rec.Body.String())
	}
}

// TestLedgerHandler_SellRealizesPL tests a buy-then-sell round trip over HTTP.
func TestLedgerHandler_SellRealizesPL(t *testing.T) {
	handler, _ := newLedgerHandler(t, "10000", nil)

	buyReq := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/buy",
		orderBody("AAPL", "10", "100"))
	buyRec := httptest.NewRecorder()
	handler.Buy(buyRec, buyReq)
	if buyRec.Code != http.StatusCreated {
		t.Fatalf("buy status = %d, want 201; body: %s", buyRec.Code, buyRec.Body.String())
	}

	sellReq := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/sell",
		orderBody("AAPL", "10", "120"))
	sellRec := httptest.NewRecorder()
	handler.Sell(sellRec, sellReq)
	if sellRec.Code != http.StatusCreated {
		t.Fatalf("sell status = %d, want 201; body: %s", sellRec.Code, sellRec.Body.String())
	}

	var result service.OperationResult
	testutil.DecodeJSONResponse(t, sellRec, &result)

	if result.Transaction.RealizedPL == nil {
		t.Fatal("sell transaction is missing realizedPL")
	}
	if !result.Transaction.RealizedPL.Equal(testutil.MustMoney(t, "200")) {
		t.Errorf("realizedPL = %s, want 200", result.Transaction.RealizedPL)
	}
	if !result.CashBalance.Equal(testutil.MustMoney(t, "10200")) {
		t.Errorf("cash balance = %s, want 10200", result.CashBalance)
	}
	if !result.Holding.IsZero() {
		t.Errorf("holding after full sell = %s, want 0", result.Holding)
	}
}

// TestLedgerHandler_Reset tests that a reset returns the pristine state.
func TestLedgerHandler_Reset(t *testing.T) {
	handler, _ := newLedgerHandler(t, "10000", nil)

	buyReq := testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/buy",
		orderBody("AAPL", "5", "100"))
	handler.Buy(httptest.NewRecorder(), buyReq)

	rec := httptest.NewRecorder()
	handler.Reset(rec, httptest.NewRequest(http.MethodPost, "/api/ledger/reset", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.ResetResponse
	testutil.DecodeJSONResponse(t, rec, &resp)

	if !resp.State.CashBalance.Equal(testutil.MustMoney(t, "10000")) {
		t.Errorf("cash balance after reset = %s, want 10000", resp.State.CashBalance)
	}
	if len(resp.State.Holdings) != 0 {
		t.Errorf("holdings after reset = %v, want none", resp.State.Holdings)
	}
	if resp.State.TransactionCount != 0 {
		t.Errorf("transaction count after reset = %d, want 0", resp.State.TransactionCount)
	}
	if !resp.Persisted {
		t.Error("expected the reset snapshot to be persisted")
	}
}

// TestLedgerHandler_TransactionsEmpty tests that an empty log serializes as
// an array, not null.
func TestLedgerHandler_TransactionsEmpty(t *testing.T) {
	handler, _ := newLedgerHandler(t, "10000", nil)

	rec := httptest.NewRecorder()
	handler.Transactions(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/transactions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("empty log body = %q, want []", got)
	}
}

// TestLedgerHandler_Valuation tests the mark-to-market report over HTTP,
// including the unpriced surfacing for a held asset the feed does not know.
func TestLedgerHandler_Valuation(t *testing.T) {
	handler, feed := newLedgerHandler(t, "10000", map[string]string{"AAPL": "110"})

	if err := feed.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	for _, body := range []map[string]any{
		orderBody("AAPL", "10", "100"),
		orderBody("MSFT", "5", "200"),
	} {
		rec := httptest.NewRecorder()
		handler.Buy(rec, testutil.NewJSONRequest(t, http.MethodPost, "/api/ledger/buy", body))
		if rec.Code != http.StatusCreated {
			t.Fatalf("buy status = %d, want 201; body: %s", rec.Code, rec.Body.String())
		}
	}

	rec := httptest.NewRecorder()
	handler.Valuation(rec, httptest.NewRequest(http.MethodGet, "/api/ledger/valuation", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.ValuationResponse
	testutil.DecodeJSONResponse(t, rec, &resp)

	// Cash 10000 - 1000 - 1000 = 8000; AAPL marked at 110*10 = 1100; MSFT
	// unpriced, excluded from the totals.
	if !resp.CashBalance.Equal(testutil.MustMoney(t, "8000")) {
		t.Errorf("cash balance = %s, want 8000", resp.CashBalance)
	}
	if !resp.HoldingsValue.Equal(testutil.MustMoney(t, "1100")) {
		t.Errorf("holdings value = %s, want 1100", resp.HoldingsValue)
	}
	if !resp.TotalValue.Equal(testutil.MustMoney(t, "9100")) {
		t.Errorf("total value = %s, want 9100", resp.TotalValue)
	}
	if len(resp.Unpriced) != 1 || resp.Unpriced[0] != "MSFT" {
		t.Errorf("unpriced = %v, want [MSFT]", resp.Unpriced)
	}
	if resp.PricesAsOf == nil {
		t.Error("expected pricesAsOf to be set after a refresh")
	}

	if len(resp.Positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(resp.Positions))
	}
	aapl, msft := resp.Positions[0], resp.Positions[1]
	if aapl.AssetID != "AAPL" || msft.AssetID != "MSFT" {
		t.Fatalf("positions not sorted by asset: %q, %q", aapl.AssetID, msft.AssetID)
	}
	if aapl.UnrealizedPL == nil || !aapl.UnrealizedPL.Equal(testutil.MustMoney(t, "100")) {
		t.Errorf("AAPL unrealizedPL = %v, want 100", aapl.UnrealizedPL)
	}
	if msft.Price != nil || msft.MarketValue != nil || msft.UnrealizedPL != nil {
		t.Error("unpriced MSFT position should have nil price fields")
	}
}
