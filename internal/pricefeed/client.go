// Package pricefeed sources current asset prices from the remote quote API
// and caches them as the price map the ledger's valuation queries consume.
// The feed is read-only with respect to the ledger: a refresh only swaps the
// cached map, it never touches balance or holdings.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Client fetches quotes from the content platform's quote endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a quote client for the given API base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// Quote is a single asset price at a point in time.
type Quote struct {
	Symbol    string      `json:"symbol"`
	Price     money.Money `json:"price"`
	Timestamp time.Time   `json:"timestamp"`
}

// quoteResponse mirrors the quote API's wire format.
type quoteResponse struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// GetQuote fetches the current quote for one symbol. The price contract
// requires positive prices; anything else is rejected here so a bad upstream
// value can never reach the ledger.
func (c *Client) GetQuote(ctx context.Context, symbol string) (Quote, error) {
	endpoint := fmt.Sprintf("%s/quote?symbol=%s", c.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", apperrors.ErrQuoteFetchFailed, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", apperrors.ErrQuoteFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Quote{}, fmt.Errorf("%w: unknown symbol %s", apperrors.ErrPriceUnavailable, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: quote endpoint returned %d", apperrors.ErrQuoteFetchFailed, resp.StatusCode)
	}

	var qr quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return Quote{}, fmt.Errorf("%w: decode quote: %w", apperrors.ErrQuoteFetchFailed, err)
	}

	price := money.M(qr.Price)
	if !price.IsPositive() {
		return Quote{}, fmt.Errorf("%w: non-positive price %s for %s", apperrors.ErrPriceUnavailable, price, symbol)
	}

	return Quote{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Unix(qr.Timestamp, 0).UTC(),
	}, nil
}
