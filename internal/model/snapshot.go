package model

import (
	"time"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Snapshot is the serializable record of full ledger state written after
// every successful mutation. Loading a snapshot reproduces cash balance,
// holdings and the ordered transaction log exactly.
//
// Decoding is tolerant: unknown fields are ignored so older servers can read
// snapshots written by newer ones.
type Snapshot struct {
	InitialBalance money.Money               `json:"initialBalance"`
	CashBalance    money.Money               `json:"cashBalance"`
	Holdings       map[string]money.Quantity `json:"holdings"`
	Transactions   []Transaction             `json:"transactions"`
	SavedAt        time.Time                 `json:"savedAt"`
}
