package pricefeed

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Feed holds the cached price map for the configured symbols and refreshes
// it on a fixed interval. A symbol whose fetch fails keeps its last known
// price; a symbol never fetched stays absent, which valuation reports as
// unpriced rather than zero.
type Feed struct {
	client  *Client
	symbols []string

	mu        sync.RWMutex
	prices    map[string]money.Money
	fetchedAt time.Time
}

// NewFeed creates a feed for the given symbols with an empty price map.
func NewFeed(client *Client, symbols []string) *Feed {
	return &Feed{
		client:  client,
		symbols: symbols,
		prices:  make(map[string]money.Money),
	}
}

// Refresh fetches all configured symbols concurrently and merges the
// successes into the cached map. Returns the first fetch error, if any;
// a partial refresh still updates the symbols that succeeded.
func (f *Feed) Refresh(ctx context.Context) error {
	var fetchedMu sync.Mutex
	fetched := make(map[string]money.Money, len(f.symbols))

	g := new(errgroup.Group)
	for _, symbol := range f.symbols {
		g.Go(func() error {
			quote, err := f.client.GetQuote(ctx, symbol)
			if err != nil {
				return err
			}
			fetchedMu.Lock()
			fetched[quote.Symbol] = quote.Price
			fetchedMu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	f.mu.Lock()
	for symbol, price := range fetched {
		f.prices[symbol] = price
	}
	f.fetchedAt = time.Now().UTC()
	f.mu.Unlock()

	return err
}

// Price returns the cached price for a symbol.
func (f *Feed) Price(symbol string) (money.Money, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	price, ok := f.prices[symbol]
	return price, ok
}

// Snapshot returns a copy of the cached price map and when it was refreshed.
func (f *Feed) Snapshot() (map[string]money.Money, time.Time) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]money.Money, len(f.prices))
	for symbol, price := range f.prices {
		out[symbol] = price
	}
	return out, f.fetchedAt
}

// Quote returns the cached quote for a symbol, fetching it once on a cache
// miss so ad hoc lookups work for symbols outside the refresh list.
func (f *Feed) Quote(ctx context.Context, symbol string) (Quote, error) {
	if price, ok := f.Price(symbol); ok {
		f.mu.RLock()
		fetchedAt := f.fetchedAt
		f.mu.RUnlock()
		return Quote{Symbol: symbol, Price: price, Timestamp: fetchedAt}, nil
	}

	quote, err := f.client.GetQuote(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}

	f.mu.Lock()
	f.prices[symbol] = quote.Price
	f.mu.Unlock()

	return quote, nil
}
