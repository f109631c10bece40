// Package audit defines the numbering audit trail. Every event that changes
// what numbers a business may issue is recorded: sequence creation, range
// reservation, block exhaustion, onboarding.
package audit

import (
	"context"
	"time"

	"facturador/internal/core/id"
)

// Action identifies what happened.
type Action string

const (
	ActionSequenceCreated Action = "SEQUENCE_CREATED"
	ActionRangeReserved   Action = "RANGE_RESERVED"
	ActionBlockOpened     Action = "BLOCK_OPENED"
	ActionBlockExhausted  Action = "BLOCK_EXHAUSTED"
	ActionBootstrapped    Action = "BOOTSTRAPPED"
)

// Entry is one audit record. Payload holds action-specific details and is
// stored compressed.
type Entry struct {
	ID         id.ID     `db:"id" json:"id"`
	BusinessID id.ID     `db:"business_id" json:"businessId"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   id.ID     `db:"entity_id" json:"entityId"`
	Action     Action    `db:"action" json:"action"`
	UserID     string    `db:"user_id" json:"userId"`
	Payload    any       `db:"-" json:"payload,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates an entry stamped with the current time.
func NewEntry(businessID id.ID, entityType string, entityID id.ID, action Action) Entry {
	return Entry{
		ID:         id.New(),
		BusinessID: businessID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		CreatedAt:  time.Now().UTC(),
	}
}

// WithPayload attaches action details.
func (e Entry) WithPayload(payload any) Entry {
	e.Payload = payload
	return e
}

// Recorder persists audit entries. Recording failures must not fail the
// business operation; implementations log and move on.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Nop discards all entries. Used in tests.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) {}
