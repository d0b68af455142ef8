package testutil

import (
	"database/sql"
	"testing"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/ledger"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/repository"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/service"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/snapshot"
)

// NewTestLedgerService builds a LedgerService over the given database with a
// fresh ledger and an unencrypted snapshot codec.
func NewTestLedgerService(t *testing.T, db *sql.DB, initialBalance string) *service.LedgerService {
	t.Helper()

	codec, err := snapshot.NewCodec("")
	if err != nil {
		t.Fatalf("Failed to create snapshot codec: %v", err)
	}

	snapshotRepo := repository.NewSnapshotRepository(db, codec)
	l := ledger.New(MustMoney(t, initialBalance))

	return service.NewLedgerService(l, snapshotRepo)
}

// MustMoney parses a decimal money string or fails the test.
func MustMoney(t *testing.T, s string) money.Money {
	t.Helper()

	m, err := money.ParseMoney(s)
	if err != nil {
		t.Fatalf("Failed to parse money %q: %v", s, err)
	}
	return m
}

// MustQuantity parses a decimal quantity string or fails the test.
func MustQuantity(t *testing.T, s string) money.Quantity {
	t.Helper()

	q, err := money.ParseQuantity(s)
	if err != nil {
		t.Fatalf("Failed to parse quantity %q: %v", s, err)
	}
	return q
}
