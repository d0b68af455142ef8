package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/ledger"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/repository"
)

// LedgerService exposes the ledger's operation surface to the HTTP layer and
// snapshots state after every successful mutation. A mutex serializes
// operations so each one reads current state, runs to completion, and its
// result is visible to the next.
type LedgerService struct {
	mu        sync.Mutex
	ledger    *ledger.Ledger
	snapshots *repository.SnapshotRepository
}

// NewLedgerService creates a new LedgerService around an existing ledger.
func NewLedgerService(l *ledger.Ledger, snapshots *repository.SnapshotRepository) *LedgerService {
	return &LedgerService{
		ledger:    l,
		snapshots: snapshots,
	}
}

// LoadOrNewLedger restores the ledger from the stored snapshot, or creates a
// fresh one with the configured initial balance when no usable snapshot
// exists. A corrupt snapshot is logged and discarded rather than blocking
// startup.
func LoadOrNewLedger(ctx context.Context, snapshots *repository.SnapshotRepository, initialBalance money.Money) *ledger.Ledger {
	snap, err := snapshots.Load(ctx)
	switch {
	case err == nil:
		log.Printf("Restored ledger snapshot from %s (%d transactions)",
			snap.SavedAt.Format(time.RFC3339), len(snap.Transactions))
		return ledger.FromSnapshot(snap, initialBalance)
	case errors.Is(err, apperrors.ErrNoSnapshot):
		log.Println("No ledger snapshot found, starting fresh")
	default:
		log.Printf("Failed to load ledger snapshot, starting fresh: %v", err)
	}
	return ledger.New(initialBalance)
}

// OperationResult is the outcome of a successful buy or sell: the appended
// transaction, the balances it produced, and whether the post-mutation
// snapshot reached storage. Persisted false means the in-memory ledger is
// still authoritative but state may not survive a restart.
type OperationResult struct {
	Transaction model.Transaction `json:"transaction"`
	CashBalance money.Money       `json:"cashBalance"`
	Holding     money.Quantity    `json:"holding"`
	Persisted   bool              `json:"persisted"`
	Warning     string            `json:"warning,omitempty"`
}

// Buy executes a buy order and snapshots the resulting state.
func (s *LedgerService) Buy(ctx context.Context, assetID string, qty money.Quantity, unitPrice money.Money) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ledger.Buy(assetID, qty, unitPrice)
	if err != nil {
		return OperationResult{}, err
	}

	persisted, warning := s.persist(ctx)
	return OperationResult{
		Transaction: tx,
		CashBalance: s.ledger.CashBalance(),
		Holding:     s.ledger.Holding(assetID),
		Persisted:   persisted,
		Warning:     warning,
	}, nil
}

// Sell executes a sell order and snapshots the resulting state.
func (s *LedgerService) Sell(ctx context.Context, assetID string, qty money.Quantity, unitPrice money.Money) (OperationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.ledger.Sell(assetID, qty, unitPrice)
	if err != nil {
		return OperationResult{}, err
	}

	persisted, warning := s.persist(ctx)
	return OperationResult{
		Transaction: tx,
		CashBalance: s.ledger.CashBalance(),
		Holding:     s.ledger.Holding(assetID),
		Persisted:   persisted,
		Warning:     warning,
	}, nil
}

// Reset reinitializes the ledger to its starting state and snapshots it.
func (s *LedgerService) Reset(ctx context.Context) (LedgerState, bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	persisted, warning := s.persist(ctx)
	return s.state(), persisted, warning
}

// persist snapshots current ledger state. A failed write is logged and
// reported but never fails the operation: the mutation has already been
// applied and the in-memory ledger remains the source of truth.
func (s *LedgerService) persist(ctx context.Context) (bool, string) {
	snap := s.ledger.Snapshot(time.Now().UTC())
	if err := s.snapshots.Save(ctx, snap); err != nil {
		log.Printf("Snapshot save failed, in-memory ledger remains authoritative: %v", err)
		return false, err.Error()
	}
	return true, ""
}

// HoldingState is one open position with its derived average buy price.
type HoldingState struct {
	AssetID         string         `json:"assetId"`
	Quantity        money.Quantity `json:"quantity"`
	AverageBuyPrice money.Money    `json:"averageBuyPrice"`
}

// LedgerState is the ledger's observable state for the UI. LastSavedAt is
// when the current snapshot reached storage, nil when nothing is stored yet.
type LedgerState struct {
	InitialBalance   money.Money    `json:"initialBalance"`
	CashBalance      money.Money    `json:"cashBalance"`
	Holdings         []HoldingState `json:"holdings"`
	TransactionCount int            `json:"transactionCount"`
	LastSavedAt      *time.Time     `json:"lastSavedAt,omitempty"`
}

// State returns current balances, open positions and snapshot freshness.
func (s *LedgerService) State(ctx context.Context) LedgerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state()
	if savedAt, err := s.snapshots.SavedAt(ctx); err == nil {
		state.LastSavedAt = &savedAt
	}
	return state
}

func (s *LedgerService) state() LedgerState {
	txs := s.ledger.Transactions()

	holdings := make([]HoldingState, 0, len(s.ledger.Holdings()))
	for assetID, qty := range s.ledger.Holdings() {
		holdings = append(holdings, HoldingState{
			AssetID:         assetID,
			Quantity:        qty,
			AverageBuyPrice: ledger.AverageBuyPrice(txs, assetID),
		})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].AssetID < holdings[j].AssetID })

	return LedgerState{
		InitialBalance:   s.ledger.InitialBalance(),
		CashBalance:      s.ledger.CashBalance(),
		Holdings:         holdings,
		TransactionCount: len(txs),
	}
}

// Transactions returns the full ordered transaction log.
func (s *LedgerService) Transactions() []model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Transactions()
}

// PositionValuation is the mark-to-market view of one open position. Price,
// MarketValue and UnrealizedPL are nil when no current price is known.
type PositionValuation struct {
	AssetID         string         `json:"assetId"`
	Quantity        money.Quantity `json:"quantity"`
	AverageBuyPrice money.Money    `json:"averageBuyPrice"`
	Price           *money.Money   `json:"price,omitempty"`
	MarketValue     *money.Money   `json:"marketValue,omitempty"`
	UnrealizedPL    *money.Money   `json:"unrealizedPL,omitempty"`
}

// Valuation aggregates cash, holdings value, realized and unrealized P&L.
// Unpriced lists held assets absent from the price map; they are excluded
// from the totals, not counted as zero, and the caller should retry once a
// price becomes available.
type Valuation struct {
	CashBalance     money.Money         `json:"cashBalance"`
	HoldingsValue   money.Money         `json:"holdingsValue"`
	TotalValue      money.Money         `json:"totalValue"`
	TotalRealizedPL money.Money         `json:"totalRealizedPL"`
	Positions       []PositionValuation `json:"positions"`
	Unpriced        []string            `json:"unpriced"`
}

// Valuation derives the full mark-to-market report from the ledger and a
// price map. Pure query: recomputed on demand, never stored.
func (s *LedgerService) Valuation(prices map[string]money.Money) Valuation {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := s.ledger.Transactions()
	holdingsValue, unpriced := s.ledger.ValueOf(prices)

	positions := make([]PositionValuation, 0, len(s.ledger.Holdings()))
	for assetID, qty := range s.ledger.Holdings() {
		pos := PositionValuation{
			AssetID:         assetID,
			Quantity:        qty,
			AverageBuyPrice: ledger.AverageBuyPrice(txs, assetID),
		}
		if price, ok := prices[assetID]; ok {
			value := price.Mul(qty)
			pl, _ := ledger.UnrealizedPL(s.ledger, prices, assetID)
			pos.Price = &price
			pos.MarketValue = &value
			pos.UnrealizedPL = &pl
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].AssetID < positions[j].AssetID })

	if unpriced == nil {
		unpriced = []string{}
	}

	return Valuation{
		CashBalance:     s.ledger.CashBalance(),
		HoldingsValue:   holdingsValue,
		TotalValue:      s.ledger.CashBalance().Add(holdingsValue),
		TotalRealizedPL: ledger.TotalRealizedPL(s.ledger),
		Positions:       positions,
		Unpriced:        unpriced,
	}
}
