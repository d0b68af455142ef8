package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/api/response"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
)

// PricesHandler handles HTTP requests for the cached price feed.
type PricesHandler struct {
	feed *pricefeed.Feed
}

// NewPricesHandler creates a new PricesHandler.
func NewPricesHandler(feed *pricefeed.Feed) *PricesHandler {
	return &PricesHandler{feed: feed}
}

// PriceMapResponse is the cached price map with its fetch time.
type PriceMapResponse struct {
	Prices    map[string]money.Money `json:"prices"`
	FetchedAt *time.Time             `json:"fetchedAt,omitempty"`
}

// List handles GET requests for the current price map.
//
// Endpoint: GET /api/prices
func (h *PricesHandler) List(w http.ResponseWriter, _ *http.Request) {
	prices, fetchedAt := h.feed.Snapshot()

	resp := PriceMapResponse{Prices: prices}
	if !fetchedAt.IsZero() {
		resp.FetchedAt = &fetchedAt
	}

	response.JSON(w, http.StatusOK, resp)
}

// Refresh handles POST requests to force a feed refresh, the manual retry
// path when a valuation reported unpriced assets.
//
// Endpoint: POST /api/prices/refresh
// Response: 200 OK with the refreshed price map
// Error: 502 Bad Gateway if any symbol failed to fetch (successes are
// still merged into the cache)
func (h *PricesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Refresh(r.Context()); err != nil {
		response.Error(w, http.StatusBadGateway, "price refresh incomplete", err.Error())
		return
	}

	h.List(w, r)
}

// Quote handles GET requests for a single symbol's quote. Symbols outside
// the configured refresh list are fetched on demand.
//
// Endpoint: GET /api/prices/{symbol}
// Error: 400 Bad Request if the symbol is malformed (validated by middleware)
// Error: 404 Not Found if the feed has no price for the symbol
// Error: 502 Bad Gateway if the quote endpoint is unreachable
func (h *PricesHandler) Quote(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	quote, err := h.feed.Quote(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, apperrors.ErrPriceUnavailable) {
			response.Error(w, http.StatusNotFound, apperrors.ErrPriceUnavailable.Error(), err.Error())
			return
		}
		response.Error(w, http.StatusBadGateway, apperrors.ErrQuoteFetchFailed.Error(), err.Error())
		return
	}

	response.JSON(w, http.StatusOK, quote)
}
