package block

import (
	"context"
	"fmt"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/core/tx"
	"facturador/internal/domain/audit"
	"facturador/internal/domain/sequence"
	"facturador/pkg/logger"
)

// SequenceSource is the slice of the sequence service blocks depend on.
type SequenceSource interface {
	GetOwned(ctx context.Context, businessID, sequenceID id.ID) (*sequence.Sequence, error)
	ReserveRange(ctx context.Context, businessID, sequenceID id.ID, size int64) (start, end int64, err error)
}

// CreateInput describes a block creation request. PointID, when set, must
// match the point the sequence was created for; internal callers that
// already hold the sequence may leave it zero.
type CreateInput struct {
	BusinessID id.ID
	SequenceID id.ID
	PointID    id.ID
	Size       int64
	DeviceID   string
}

// Issued is one document number taken from a block.
type Issued struct {
	Number    int64  `json:"number"`
	Formatted string `json:"formatted"`

	// Exhausted is true when this was the last number of the block
	Exhausted bool `json:"exhausted"`
}

// Service provides block operations.
type Service struct {
	repo      Repository
	sequences SequenceSource
	txManager tx.Manager
	recorder  audit.Recorder
	log       *logger.Logger
}

// NewService creates the block service.
func NewService(repo Repository, sequences SequenceSource, txManager tx.Manager, recorder audit.Recorder, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		sequences: sequences,
		txManager: txManager,
		recorder:  recorder,
		log:       log,
	}
}

// Create reserves a range from the sequence and stores a block over it.
// Reservation and insert run in one transaction, so a failed insert rolls
// the counter back and no capacity is lost. Concurrent creators get
// disjoint ranges because the counter update is atomic.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Block, error) {
	size := in.Size
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize || size > MaxSize {
		return nil, apperror.NewValidation(
			fmt.Sprintf("block size must be between %d and %d", MinSize, MaxSize)).
			WithDetail("size", size)
	}

	deviceID := in.DeviceID
	if deviceID == "" {
		deviceID = SystemDevice
	}

	seq, err := s.sequences.GetOwned(ctx, in.BusinessID, in.SequenceID)
	if err != nil {
		return nil, err
	}

	// A sequence claimed for the wrong point reads as missing, the same as
	// a cross-business lookup.
	if !id.IsNil(in.PointID) && seq.PointID != in.PointID {
		return nil, apperror.NewNotFound("sequence", in.SequenceID.String())
	}

	var blk *Block
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		start, end, err := s.sequences.ReserveRange(ctx, in.BusinessID, in.SequenceID, size)
		if err != nil {
			return err
		}

		blk = NewBlock(in.BusinessID, in.SequenceID, seq.PointID, start, end, deviceID)
		if err := s.repo.Insert(ctx, blk); err != nil {
			return apperror.NewStoreFailure("insert block", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.NewEntry(in.BusinessID, "block", blk.ID, audit.ActionRangeReserved).
		WithPayload(map[string]any{
			"sequence_id": in.SequenceID.String(),
			"start":       blk.StartNumber,
			"end":         blk.EndNumber,
			"device_id":   deviceID,
		}))

	s.log.WithContext(ctx).Infow("block created",
		"block_id", blk.ID.String(),
		"sequence_id", in.SequenceID.String(),
		"range", fmt.Sprintf("[%d,%d]", blk.StartNumber, blk.EndNumber),
		"device_id", deviceID)

	return blk, nil
}

// EnsureAvailable guarantees the sequence has an AVAILABLE block, creating
// a bootstrap-sized one when it does not. OPEN blocks do not satisfy the
// check even with numbers left: they are bound to a device already. The
// bool reports whether a block was created. Idempotent.
func (s *Service) EnsureAvailable(ctx context.Context, businessID, sequenceID id.ID) (*Block, bool, error) {
	blk, err := s.repo.FindAvailable(ctx, businessID, sequenceID)
	if err == nil {
		return blk, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	blk, err = s.Create(ctx, CreateInput{
		BusinessID: businessID,
		SequenceID: sequenceID,
		Size:       BootstrapSize,
		DeviceID:   SystemDevice,
	})
	if err != nil {
		return nil, false, err
	}
	return blk, true, nil
}

// Consume takes the next number from the block and returns it formatted as
// a document number. On an exhausted block it fails with ExhaustedBlock and
// issues nothing; on an unknown or foreign block it fails with NotFound.
func (s *Service) Consume(ctx context.Context, businessID, blockID id.ID) (*Issued, error) {
	consumed, ok, err := s.repo.ConsumeNext(ctx, businessID, blockID)
	if err != nil {
		return nil, apperror.NewStoreFailure("consume number", err)
	}

	if !ok {
		// Nothing was issued: either the block does not exist (for this
		// business) or it is spent.
		blk, err := s.repo.GetOwned(ctx, businessID, blockID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return nil, apperror.NewNotFound("block", blockID.String())
			}
			return nil, err
		}
		if blk.IsExhausted() {
			return nil, apperror.NewExhaustedBlock(blockID.String())
		}
		// The block gained capacity between the two reads; extremely
		// unlikely given forward-only transitions, treat as conflict.
		return nil, apperror.NewConcurrentModification("block", blockID.String())
	}

	seq, err := s.sequences.GetOwned(ctx, businessID, consumed.SequenceID)
	if err != nil {
		return nil, err
	}

	if consumed.Exhausted {
		s.recorder.Record(ctx, audit.NewEntry(businessID, "block", blockID, audit.ActionBlockExhausted).
			WithPayload(map[string]any{"last_number": consumed.Number}))
		s.log.WithContext(ctx).Warnw("block exhausted",
			"block_id", blockID.String(),
			"sequence_id", consumed.SequenceID.String())
	}

	return &Issued{
		Number:    consumed.Number,
		Formatted: seq.FormatNumber(consumed.Number),
		Exhausted: consumed.Exhausted,
	}, nil
}

// Open assigns an AVAILABLE block to a device. Opening an already open
// block is a no-op; opening an exhausted one fails.
func (s *Service) Open(ctx context.Context, businessID, blockID id.ID, deviceID string) (*Block, error) {
	if deviceID == "" {
		return nil, apperror.NewValidation("device id is required").
			WithDetail("field", "deviceId")
	}

	blk, err := s.repo.GetOwned(ctx, businessID, blockID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("block", blockID.String())
		}
		return nil, err
	}
	if blk.IsExhausted() {
		return nil, apperror.NewExhaustedBlock(blockID.String())
	}

	if err := s.repo.Open(ctx, businessID, blockID, deviceID); err != nil {
		return nil, apperror.NewStoreFailure("open block", err)
	}

	s.recorder.Record(ctx, audit.NewEntry(businessID, "block", blockID, audit.ActionBlockOpened).
		WithPayload(map[string]any{"device_id": deviceID}))

	return s.repo.GetOwned(ctx, businessID, blockID)
}

// GetOwned retrieves a block scoped to the business.
func (s *Service) GetOwned(ctx context.Context, businessID, blockID id.ID) (*Block, error) {
	blk, err := s.repo.GetOwned(ctx, businessID, blockID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("block", blockID.String())
		}
		return nil, err
	}
	return blk, nil
}

// ListBySequence returns all blocks of a sequence after checking ownership.
func (s *Service) ListBySequence(ctx context.Context, businessID, sequenceID id.ID) ([]*Block, error) {
	if _, err := s.sequences.GetOwned(ctx, businessID, sequenceID); err != nil {
		return nil, err
	}
	return s.repo.ListBySequence(ctx, businessID, sequenceID)
}
