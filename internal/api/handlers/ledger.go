package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/request"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/response"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/service"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/validation"
)

// LedgerHandler handles HTTP requests for the trading ledger. It is the only
// path through which the presentation layer may touch ledger state.
type LedgerHandler struct {
	ledgerService *service.LedgerService
	feed          *pricefeed.Feed
}

// NewLedgerHandler creates a new LedgerHandler with its dependencies.
func NewLedgerHandler(ledgerService *service.LedgerService, feed *pricefeed.Feed) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
		feed:          feed,
	}
}

// State handles GET requests for current balances and open positions.
//
// Endpoint: GET /api/ledger
// Response: 200 OK with LedgerState
func (h *LedgerHandler) State(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.ledgerService.State(r.Context()))
}

// Buy handles POST requests to execute a buy order.
//
// Endpoint: POST /api/ledger/buy
// Request Body: OrderRequest (assetId, quantity, unitPrice)
// Response: 201 Created with OperationResult
// Error: 400 Bad Request if the body or order fields are invalid
// Error: 409 Conflict if the order costs more than the cash balance
func (h *LedgerHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.executeOrder(w, r, model.KindBuy)
}

// Sell handles POST requests to execute a sell order.
//
// Endpoint: POST /api/ledger/sell
// Request Body: OrderRequest (assetId, quantity, unitPrice)
// Response: 201 Created with OperationResult (includes realizedPL)
// Error: 400 Bad Request if the body or order fields are invalid
// Error: 409 Conflict if the quantity exceeds the held position
func (h *LedgerHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.executeOrder(w, r, model.KindSell)
}

func (h *LedgerHandler) executeOrder(w http.ResponseWriter, r *http.Request, kind model.TransactionKind) {
	req, err := parseJSON[request.OrderRequest](r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateOrder(req); err != nil {
		response.Error(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	qty := money.Q(req.Quantity)
	price := money.M(req.UnitPrice)

	var result service.OperationResult
	if kind == model.KindBuy {
		result, err = h.ledgerService.Buy(r.Context(), req.AssetID, qty, price)
	} else {
		result, err = h.ledgerService.Sell(r.Context(), req.AssetID, qty, price)
	}

	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidOrder):
			response.Error(w, http.StatusBadRequest, apperrors.ErrInvalidOrder.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			response.Error(w, http.StatusConflict, apperrors.ErrInsufficientFunds.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInsufficientHoldings):
			response.Error(w, http.StatusConflict, apperrors.ErrInsufficientHoldings.Error(), err.Error())
		default:
			response.Error(w, http.StatusInternalServerError, "failed to execute order", err.Error())
		}
		return
	}

	response.JSON(w, http.StatusCreated, result)
}

// ResetResponse represents the outcome of a ledger reset.
type ResetResponse struct {
	State     service.LedgerState `json:"state"`
	Persisted bool                `json:"persisted"`
	Warning   string              `json:"warning,omitempty"`
}

// Reset handles POST requests to reinitialize the ledger.
//
// Endpoint: POST /api/ledger/reset
// Response: 200 OK with ResetResponse
func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, persisted, warning := h.ledgerService.Reset(r.Context())

	response.JSON(w, http.StatusOK, ResetResponse{
		State:     state,
		Persisted: persisted,
		Warning:   warning,
	})
}

// Transactions handles GET requests for the full ordered transaction log.
//
// Endpoint: GET /api/ledger/transactions
// Response: 200 OK with array of Transaction
func (h *LedgerHandler) Transactions(w http.ResponseWriter, _ *http.Request) {
	txs := h.ledgerService.Transactions()
	if txs == nil {
		txs = []model.Transaction{}
	}
	response.JSON(w, http.StatusOK, txs)
}

// ValuationResponse wraps the valuation report with price freshness.
type ValuationResponse struct {
	service.Valuation
	PricesAsOf *time.Time `json:"pricesAsOf,omitempty"`
}

// Valuation handles GET requests for the mark-to-market report against the
// price feed's current snapshot.
//
// Endpoint: GET /api/ledger/valuation
// Response: 200 OK with ValuationResponse; held assets without a current
// price appear under "unpriced" and are excluded from the totals.
func (h *LedgerHandler) Valuation(w http.ResponseWriter, _ *http.Request) {
	prices, fetchedAt := h.feed.Snapshot()

	resp := ValuationResponse{Valuation: h.ledgerService.Valuation(prices)}
	if !fetchedAt.IsZero() {
		resp.PricesAsOf = &fetchedAt
	}

	response.JSON(w, http.StatusOK, resp)
}
