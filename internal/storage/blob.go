// Package storage provides the blob store for WCIF snapshot payloads.
package storage

import (
	"context"
	"fmt"
	"time"
)

// BlobStore is a key-value store over a single named bucket. The blob
// store exclusively owns payload lifecycle; the relational snapshot
// index holds metadata pointing at it.
type BlobStore interface {
	// Put writes payload bytes under key. Callers must not record a
	// snapshot index row unless Put succeeds.
	Put(ctx context.Context, key string, payload []byte) error
	// Get returns the payload bytes stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the payload under key. Deleting an absent key is
	// treated as success so the retention sweep stays idempotent.
	Delete(ctx context.Context, key string) error
}

// ComputeKey builds the deterministic blob key for one save operation:
// "{competitionId}-{userId}-{ISO8601 timestamp}". The timestamp carries
// millisecond precision, which keeps keys unique under reasonable save
// rates; a same-millisecond double submit could still collide, and the
// unique index on blob_key rejects the second insert in that case.
func ComputeKey(competitionID string, userID uint, t time.Time) string {
	return fmt.Sprintf("%s-%d-%s", competitionID, userID, t.UTC().Format("2006-01-02T15:04:05.000Z"))
}
