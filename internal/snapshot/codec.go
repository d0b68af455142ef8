// Package snapshot encodes and decodes ledger snapshots for the persistence
// boundary. The wire format is a JSON document; when an encryption key is
// configured the document is wrapped in a fernet token so snapshots are
// unreadable at rest.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/apperrors"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/model"
	"github.com/mverbaan/Virtual-Trading-Ledger-Backend/internal/money"
)

// Codec serializes snapshots. The zero-key codec writes plain JSON.
type Codec struct {
	keys []*fernet.Key
}

// NewCodec creates a codec. key is a base64 fernet key, or empty for
// unencrypted snapshots.
func NewCodec(key string) (*Codec, error) {
	if key == "" {
		return &Codec{}, nil
	}

	keys, err := fernet.DecodeKeys(key)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot key: %w", err)
	}
	return &Codec{keys: keys}, nil
}

// Encrypted reports whether the codec wraps snapshots in fernet tokens.
func (c *Codec) Encrypted() bool { return len(c.keys) > 0 }

// Encode serializes a snapshot to its stored form.
func (c *Codec) Encode(snap model.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %w", apperrors.ErrPersistenceFailure, err)
	}

	if !c.Encrypted() {
		return data, nil
	}

	tok, err := fernet.EncryptAndSign(data, c.keys[0])
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt snapshot: %w", apperrors.ErrPersistenceFailure, err)
	}
	return tok, nil
}

// Decode parses a stored snapshot. Unknown fields are ignored so the format
// stays forward-readable when optional fields are added later; an absent
// holdings map decodes to an empty one.
func (c *Codec) Decode(data []byte) (model.Snapshot, error) {
	if c.Encrypted() {
		// TTL 0 disables expiry; snapshots stay valid indefinitely.
		msg := fernet.VerifyAndDecrypt(data, 0, c.keys)
		if msg == nil {
			return model.Snapshot{}, fmt.Errorf("%w: snapshot token rejected", apperrors.ErrSnapshotCorrupt)
		}
		data = msg
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.Snapshot{}, fmt.Errorf("%w: decode snapshot: %w", apperrors.ErrSnapshotCorrupt, err)
	}

	if snap.Holdings == nil {
		snap.Holdings = make(map[string]money.Quantity)
	}
	return snap, nil
}
