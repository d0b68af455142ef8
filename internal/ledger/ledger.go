// Package ledger implements the virtual trading ledger: a simulated brokerage
// account holding cash and per-asset positions, mutated only through buy,
// sell and reset operations, with an append-only transaction log as the
// source of truth for cost basis and profit/loss.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Ledger owns the cash balance, the per-asset holdings and the transaction
// log. Every operation validates fully before mutating, so a rejected
// operation leaves all three untouched.
//
// Ledger is not safe for concurrent use; callers serialize operations.
type Ledger struct {
	initialBalance money.Money
	cash           money.Money
	holdings       map[string]money.Quantity
	transactions   []model.Transaction
}

// New creates an empty ledger funded with the configured starting balance.
func New(initialBalance money.Money) *Ledger {
	return &Ledger{
		initialBalance: initialBalance,
		cash:           initialBalance,
		holdings:       make(map[string]money.Quantity),
	}
}

// FromSnapshot restores a ledger from a persisted snapshot. Snapshots written
// before the initial balance was recorded fall back to the configured value.
func FromSnapshot(snap model.Snapshot, fallbackInitial money.Money) *Ledger {
	initial := snap.InitialBalance
	if initial.IsZero() {
		initial = fallbackInitial
	}

	holdings := make(map[string]money.Quantity, len(snap.Holdings))
	for assetID, qty := range snap.Holdings {
		holdings[assetID] = qty
	}

	return &Ledger{
		initialBalance: initial,
		cash:           snap.CashBalance,
		holdings:       holdings,
		transactions:   append([]model.Transaction(nil), snap.Transactions...),
	}
}

// InitialBalance returns the configured starting cash balance.
func (l *Ledger) InitialBalance() money.Money { return l.initialBalance }

// CashBalance returns the current cash balance.
func (l *Ledger) CashBalance() money.Money { return l.cash }

// Holding returns the held quantity for an asset, zero if none.
func (l *Ledger) Holding(assetID string) money.Quantity {
	return l.holdings[assetID]
}

// Holdings returns a copy of the current positions. Fully liquidated assets
// (quantity zero) are omitted: zero means no position.
func (l *Ledger) Holdings() map[string]money.Quantity {
	out := make(map[string]money.Quantity, len(l.holdings))
	for assetID, qty := range l.holdings {
		if qty.IsZero() {
			continue
		}
		out[assetID] = qty
	}
	return out
}

// Transactions returns a copy of the append-only transaction log in
// insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	return append([]model.Transaction(nil), l.transactions...)
}

func validateOrder(assetID string, qty money.Quantity, unitPrice money.Money) error {
	if strings.TrimSpace(assetID) == "" {
		return fmt.Errorf("%w: asset id is required", apperrors.ErrInvalidOrder)
	}
	if !qty.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", apperrors.ErrInvalidOrder, qty)
	}
	if !unitPrice.IsPositive() {
		return fmt.Errorf("%w: unit price must be positive, got %s", apperrors.ErrInvalidOrder, unitPrice)
	}
	return nil
}

// Buy purchases qty units of assetID at unitPrice, debiting cash by exactly
// qty times unitPrice. Returns the appended transaction.
func (l *Ledger) Buy(assetID string, qty money.Quantity, unitPrice money.Money) (model.Transaction, error) {
	if err := validateOrder(assetID, qty, unitPrice); err != nil {
		return model.Transaction{}, err
	}

	cost := unitPrice.Mul(qty)
	if cost.GreaterThan(l.cash) {
		shortfall := cost.Sub(l.cash)
		return model.Transaction{}, fmt.Errorf("%w: order costs %s, cash balance is %s, short %s",
			apperrors.ErrInsufficientFunds, cost, l.cash, shortfall)
	}

	tx := model.Transaction{
		ID:         uuid.New().String(),
		Kind:       model.KindBuy,
		AssetID:    assetID,
		Quantity:   qty,
		UnitPrice:  unitPrice,
		GrossValue: cost,
		Timestamp:  time.Now().UTC(),
	}

	l.cash = l.cash.Sub(cost)
	l.holdings[assetID] = l.holdings[assetID].Add(qty)
	l.transactions = append(l.transactions, tx)

	return tx, nil
}

// Sell liquidates qty units of assetID at unitPrice, crediting cash by
// exactly qty times unitPrice. The cost basis at sale is qty times the
// average buy price over the full buy history; realized P&L is proceeds
// minus that basis. Selling the entire position and selling a fraction are
// the same operation.
func (l *Ledger) Sell(assetID string, qty money.Quantity, unitPrice money.Money) (model.Transaction, error) {
	if err := validateOrder(assetID, qty, unitPrice); err != nil {
		return model.Transaction{}, err
	}

	held := l.holdings[assetID]
	if held.LessThan(qty) {
		return model.Transaction{}, fmt.Errorf("%w: tried to sell %s of %s, holding %s",
			apperrors.ErrInsufficientHoldings, qty, assetID, held)
	}

	avgCost := AverageBuyPrice(l.transactions, assetID)
	proceeds := unitPrice.Mul(qty)
	costBasis := avgCost.Mul(qty)
	realized := proceeds.Sub(costBasis)

	tx := model.Transaction{
		ID:              uuid.New().String(),
		Kind:            model.KindSell,
		AssetID:         assetID,
		Quantity:        qty,
		UnitPrice:       unitPrice,
		GrossValue:      proceeds,
		CostBasisAtSale: &costBasis,
		RealizedPL:      &realized,
		Timestamp:       time.Now().UTC(),
	}

	l.cash = l.cash.Add(proceeds)
	l.holdings[assetID] = held.Sub(qty)
	l.transactions = append(l.transactions, tx)

	return tx, nil
}

// Reset reinitializes the ledger to the configured starting balance and
// clears holdings and the transaction log. Always succeeds; calling it twice
// is the same as calling it once.
func (l *Ledger) Reset() {
	l.cash = l.initialBalance
	l.holdings = make(map[string]money.Quantity)
	l.transactions = nil
}

// ValueOf returns the mark-to-market value of all holdings given a price map,
// plus the sorted list of held assets with no entry in the map. Unpriced
// assets are excluded from the sum rather than counted as zero; the caller
// retries once a price becomes available.
func (l *Ledger) ValueOf(prices map[string]money.Money) (money.Money, []string) {
	var total money.Money
	var unpriced []string

	for assetID, qty := range l.holdings {
		if qty.IsZero() {
			continue
		}
		price, ok := prices[assetID]
		if !ok {
			unpriced = append(unpriced, assetID)
			continue
		}
		total = total.Add(price.Mul(qty))
	}

	sort.Strings(unpriced)
	return total, unpriced
}

// Snapshot captures full ledger state for persistence.
func (l *Ledger) Snapshot(now time.Time) model.Snapshot {
	holdings := make(map[string]money.Quantity, len(l.holdings))
	for assetID, qty := range l.holdings {
		holdings[assetID] = qty
	}

	return model.Snapshot{
		InitialBalance: l.initialBalance,
		CashBalance:    l.cash,
		Holdings:       holdings,
		Transactions:   append([]model.Transaction(nil), l.transactions...),
		SavedAt:        now,
	}
}
