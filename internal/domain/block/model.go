// Package block implements allocation blocks: contiguous ranges of document
// numbers reserved from a sequence and handed to an issuing device. A device
// consumes its block number by number; once the range is spent the block is
// exhausted and a new one must be created.
package block

import (
	"time"

	"facturador/internal/core/id"
)

// Status is the lifecycle state of a block. Transitions only move forward:
// AVAILABLE -> OPEN -> EXHAUSTED.
type Status string

const (
	// StatusAvailable means the block is reserved but no device has
	// consumed from it yet (e.g. the bootstrap block).
	StatusAvailable Status = "AVAILABLE"

	// StatusOpen means at least one number has been consumed.
	StatusOpen Status = "OPEN"

	// StatusExhausted means every number in the range has been issued.
	StatusExhausted Status = "EXHAUSTED"
)

// Size limits for a single block.
const (
	MinSize = 10
	MaxSize = 10000

	// DefaultSize is used when the caller does not specify one
	DefaultSize = 100

	// BootstrapSize is the range reserved during onboarding
	BootstrapSize = 200
)

// SystemDevice identifies blocks created by the platform itself rather
// than a physical device.
const SystemDevice = "SYSTEM"

// Block is a reserved range [StartNumber, EndNumber] of one sequence.
// NextNumber is the next number to hand out; it ends at EndNumber+1 once
// the block is spent.
type Block struct {
	ID         id.ID `db:"id" json:"id"`
	BusinessID id.ID `db:"business_id" json:"businessId"`
	SequenceID id.ID `db:"sequence_id" json:"sequenceId"`
	PointID    id.ID `db:"point_id" json:"pointId"`

	StartNumber int64 `db:"start_number" json:"startNumber"`
	EndNumber   int64 `db:"end_number" json:"endNumber"`
	NextNumber  int64 `db:"next_number" json:"nextNumber"`

	Status Status `db:"status" json:"status"`

	// DeviceID names the consumer the block was assigned to
	DeviceID string `db:"device_id" json:"deviceId"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBlock creates a block over the inclusive range [start, end].
func NewBlock(businessID, sequenceID, pointID id.ID, start, end int64, deviceID string) *Block {
	return &Block{
		ID:          id.New(),
		BusinessID:  businessID,
		SequenceID:  sequenceID,
		PointID:     pointID,
		StartNumber: start,
		EndNumber:   end,
		NextNumber:  start,
		Status:      StatusAvailable,
		DeviceID:    deviceID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Size returns the total number of issuable numbers in the block.
func (b *Block) Size() int64 {
	return b.EndNumber - b.StartNumber + 1
}

// Remaining returns how many numbers are still issuable.
func (b *Block) Remaining() int64 {
	if b.NextNumber > b.EndNumber {
		return 0
	}
	return b.EndNumber - b.NextNumber + 1
}

// IsExhausted reports whether the block has no numbers left.
func (b *Block) IsExhausted() bool {
	return b.Status == StatusExhausted || b.NextNumber > b.EndNumber
}
