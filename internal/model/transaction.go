package model

import (
	"time"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// TransactionKind distinguishes the two ways cash can move in the ledger.
type TransactionKind string

const (
	KindBuy  TransactionKind = "buy"
	KindSell TransactionKind = "sell"
)

// Transaction is one immutable entry in the ledger's append-only log.
// The log is the audit trail: holdings and cost basis are derivable by
// replaying it in insertion order.
//
// CostBasisAtSale and RealizedPL are set on sell transactions only.
// CostBasisAtSale is quantity times the average buy price at the moment of
// sale; RealizedPL is gross proceeds minus that basis.
type Transaction struct {
	ID              string          `json:"id"`
	Kind            TransactionKind `json:"kind"`
	AssetID         string          `json:"assetId"`
	Quantity        money.Quantity  `json:"quantity"`
	UnitPrice       money.Money     `json:"unitPrice"`
	GrossValue      money.Money     `json:"grossValue"`
	CostBasisAtSale *money.Money    `json:"costBasisAtSale,omitempty"`
	RealizedPL      *money.Money    `json:"realizedPL,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// IsSell reports whether the transaction is a sale.
func (t Transaction) IsSell() bool { return t.Kind == KindSell }
