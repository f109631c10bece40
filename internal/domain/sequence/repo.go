package sequence

import (
	"context"

	"facturador/internal/core/id"
)

// Repository persists sequences. Implementations must make GetOrCreate and
// ReserveRange safe under concurrent callers: both run as single atomic
// statements in the postgres implementation.
type Repository interface {
	// GetOrCreate inserts the sequence, or returns the existing one for the
	// same (business, point, doc type). The bool reports whether a row was
	// created.
	GetOrCreate(ctx context.Context, seq *Sequence) (*Sequence, bool, error)

	// GetByID retrieves a sequence by primary key
	GetByID(ctx context.Context, sequenceID id.ID) (*Sequence, error)

	// ListByBusiness returns all sequences of a business
	ListByBusiness(ctx context.Context, businessID id.ID) ([]*Sequence, error)

	// ReserveRange atomically advances the counter by size and returns the
	// new high-water mark. The reserved range is (mark-size, mark].
	ReserveRange(ctx context.Context, sequenceID id.ID, size int64) (int64, error)
}
