package pricefeed_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/pricefeed"
)

// quoteServer serves a fixed set of symbol prices; unknown symbols get 404.
func quoteServer(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()

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

	return server
}

// TestFeed_Refresh tests that a refresh populates the cached price map.
func TestFeed_Refresh(t *testing.T) {
	server := quoteServer(t, map[string]string{"AAA": "101.5", "BBB": "42"})
	feed := pricefeed.NewFeed(pricefeed.NewClient(server.URL), []string{"AAA", "BBB"})

	if err := feed.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	prices, fetchedAt := feed.Snapshot()
	if fetchedAt.IsZero() {
		t.Error("expected fetchedAt to be set after refresh")
	}

	want, _ := money.ParseMoney("101.5")
	if got, ok := prices["AAA"]; !ok || !got.Equal(want) {
		t.Errorf("prices[AAA] = %v (present=%v), want 101.5", got, ok)
	}
	if got, ok := prices["BBB"]; !ok || !got.Equal(money.M(42)) {
		t.Errorf("prices[BBB] = %v (present=%v), want 42", got, ok)
	}
}

// TestFeed_PartialFailureKeepsLastKnown tests that a failing symbol does not
// wipe its last known price and does not block the other symbols.
//
// WHY: a transient missing price should not permanently misstate value; the
// cache must degrade per symbol, not wholesale.
func TestFeed_PartialFailureKeepsLastKnown(t *testing.T) {
	var failBBB atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "BBB" && failBBB.Load() {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"symbol":%q,"price":100,"timestamp":1756728000}`, symbol)
	}))
	t.Cleanup(server.Close)

	feed := pricefeed.NewFeed(pricefeed.NewClient(server.URL), []string{"AAA", "BBB"})

	if err := feed.Refresh(context.Background()); err != nil {
		t.Fatalf("initial Refresh failed: %v", err)
	}

	failBBB.Store(true)
	if err := feed.Refresh(context.Background()); err == nil {
		t.Error("expected an error from the failing symbol")
	}

	if _, ok := feed.Price("BBB"); !ok {
		t.Error("last known price for BBB was dropped on a failed refresh")
	}
	if _, ok := feed.Price("AAA"); !ok {
		t.Error("AAA should still have been refreshed")
	}
}

// TestFeed_QuoteCacheMiss tests the fetch-on-miss path for ad hoc lookups.
func TestFeed_QuoteCacheMiss(t *testing.T) {
	server := quoteServer(t, map[string]string{"CCC": "7.25"})
	feed := pricefeed.NewFeed(pricefeed.NewClient(server.URL), nil)

	quote, err := feed.Quote(context.Background(), "CCC")
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	want, _ := money.ParseMoney("7.25")
	if !quote.Price.Equal(want) {
		t.Errorf("quote price = %s, want 7.25", quote.Price)
	}

	// Now cached.
	if _, ok := feed.Price("CCC"); !ok {
		t.Error("expected CCC to be cached after the lookup")
	}
}

// TestClient_Errors tests error mapping for the quote client.
func TestClient_Errors(t *testing.T) {
	t.Run("unknown symbol", func(t *testing.T) {
		server := quoteServer(t, nil)
		client := pricefeed.NewClient(server.URL)

		_, err := client.GetQuote(context.Background(), "NOPE")
		if !errors.Is(err, apperrors.ErrPriceUnavailable) {
			t.Errorf("expected ErrPriceUnavailable, got %v", err)
		}
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		server := quoteServer(t, map[string]string{"ZZZ": "0"})
		client := pricefeed.NewClient(server.URL)

		_, err := client.GetQuote(context.Background(), "ZZZ")
		if !errors.Is(err, apperrors.ErrPriceUnavailable) {
			t.Errorf("expected ErrPriceUnavailable for zero price, got %v", err)
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		client := pricefeed.NewClient(server.URL)

		_, err := client.GetQuote(context.Background(), "AAA")
		if !errors.Is(err, apperrors.ErrQuoteFetchFailed) {
			t.Errorf("expected ErrQuoteFetchFailed, got %v", err)
		}
	})
}
