package block

import (
	"context"

	"facturador/internal/core/id"
)

// Consumed is the result of taking one number from a block.
type Consumed struct {
	Number     int64
	SequenceID id.ID

	// Exhausted is true when this consumption took the last number
	Exhausted bool
}

// Repository persists blocks. ConsumeNext must be a single atomic statement:
// two devices hammering the same block must never receive the same number.
type Repository interface {
	// Insert stores a new block
	Insert(ctx context.Context, b *Block) error

	// GetOwned retrieves a block only if it belongs to the business.
	// Returns NotFound otherwise.
	GetOwned(ctx context.Context, businessID, blockID id.ID) (*Block, error)

	// FindAvailable returns the oldest AVAILABLE block of the sequence, or
	// NotFound when none exists. OPEN blocks belong to a device and do not
	// count.
	FindAvailable(ctx context.Context, businessID, sequenceID id.ID) (*Block, error)

	// ConsumeNext atomically takes the next number from the block. The bool
	// is false when no number was issued because the block is missing or
	// exhausted; callers disambiguate with GetOwned.
	ConsumeNext(ctx context.Context, businessID, blockID id.ID) (Consumed, bool, error)

	// Open marks an AVAILABLE block as OPEN and assigns the device.
	// No-op when the block is already open.
	Open(ctx context.Context, businessID, blockID id.ID, deviceID string) error

	// ListBySequence returns all blocks of a sequence, oldest first
	ListBySequence(ctx context.Context, businessID, sequenceID id.ID) ([]*Block, error)
}
