package apperrors

import "errors"

// Business rule errors represent order rejections. A rejected operation
// leaves the ledger untouched; these are recoverable conditions returned to
// the immediate caller, never fatal to the process.
var (
	// ErrInvalidOrder indicates a non-positive quantity or price, or a
	// missing asset identifier. Checked before any other precondition.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientFunds indicates that a buy order costs more than the
	// current cash balance. The wrapped message carries the shortfall.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings indicates that a sell order exceeds the held
	// quantity of the asset, including the never-bought case.
	ErrInsufficientHoldings = errors.New("insufficient holdings")
)

// Persistence errors represent failures at the storage boundary. The
// in-memory ledger remains authoritative and usable when a snapshot write
// fails, but the failure is surfaced so the UI can warn that state may not
// survive a reload.
var (
	// ErrPersistenceFailure indicates a snapshot save or load I/O error.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNoSnapshot indicates that no snapshot has been written yet.
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrSnapshotCorrupt indicates that a stored snapshot could not be
	// decoded or failed token verification.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
)

// Price feed errors represent failures sourcing quotes from the external
// feed. They never mutate ledger state.
var (
	// ErrPriceUnavailable indicates that no current price is known for an
	// asset. Valuation excludes the asset and reports it as unpriced.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrQuoteFetchFailed indicates that the quote endpoint could not be
	// reached or returned an unusable response.
	ErrQuoteFetchFailed = errors.New("failed to fetch quote")
)
