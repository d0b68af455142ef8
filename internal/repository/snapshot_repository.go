package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/snapshot"
)

// SnapshotRepository stores the encoded ledger snapshot in a single-row
// table. The ledger core never touches storage directly; it hands a snapshot
// to this boundary after every successful mutation.
type SnapshotRepository struct {
	db    *sql.DB
	codec *snapshot.Codec
}

// NewSnapshotRepository creates a new SnapshotRepository with the provided
// database connection and snapshot codec.
func NewSnapshotRepository(db *sql.DB, codec *snapshot.Codec) *SnapshotRepository {
	return &SnapshotRepository{db: db, codec: codec}
}

// Save encodes and upserts the snapshot. Failures are wrapped as
// persistence failures; the caller keeps the in-memory ledger authoritative.
func (r *SnapshotRepository) Save(ctx context.Context, snap model.Snapshot) error {
	data, err := r.codec.Encode(snap)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_snapshot (id, data, saved_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at
	`

	if _, err := r.db.ExecContext(ctx, query, data, snap.SavedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("%w: failed to write snapshot: %w", apperrors.ErrPersistenceFailure, err)
	}

	return nil
}

// Load reads and decodes the stored snapshot. Returns ErrNoSnapshot when
// nothing has been saved yet.
func (r *SnapshotRepository) Load(ctx context.Context) (model.Snapshot, error) {
	var data []byte

	err := r.db.QueryRowContext(ctx, `SELECT data FROM ledger_snapshot WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Snapshot{}, apperrors.ErrNoSnapshot
	}
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: failed to read snapshot: %w", apperrors.ErrPersistenceFailure, err)
	}

	return r.codec.Decode(data)
}

// SavedAt returns when the stored snapshot was written, or ErrNoSnapshot.
func (r *SnapshotRepository) SavedAt(ctx context.Context) (time.Time, error) {
	var savedAtStr string

	err := r.db.QueryRowContext(ctx, `SELECT saved_at FROM ledger_snapshot WHERE id = 1`).Scan(&savedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, apperrors.ErrNoSnapshot
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to read snapshot timestamp: %w", apperrors.ErrPersistenceFailure, err)
	}

	savedAt, err := time.Parse(time.RFC3339Nano, savedAtStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to parse snapshot timestamp: %w", apperrors.ErrSnapshotCorrupt, err)
	}

	return savedAt.UTC(), nil
}
