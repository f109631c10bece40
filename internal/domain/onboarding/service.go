// Package onboarding bootstraps numbering for a business: one invoice
// sequence and one available block per emission point, then flips the
// business to READY. The whole operation is idempotent.
package onboarding

import (
	"context"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/audit"
	"facturador/internal/domain/block"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/domain/sequence"
	"facturador/pkg/logger"
)

// PointReadiness describes the numbering state of one emission point after
// bootstrap.
type PointReadiness struct {
	PointID      id.ID  `json:"pointId"`
	PointCode    string `json:"pointCode"`
	SequenceID   id.ID  `json:"sequenceId"`
	Series       string `json:"series"`
	BlockID      id.ID  `json:"blockId"`
	BlockCreated bool   `json:"blockCreated"`
}

// Result summarizes a bootstrap run.
type Result struct {
	Points        []PointReadiness `json:"points"`
	BlocksCreated int              `json:"blocksCreated"`
}

// The slices of the catalog and allocator services onboarding depends on.
type (
	BusinessDirectory interface {
		MarkReady(ctx context.Context, businessID id.ID) error
	}
	BranchLister interface {
		ListByBusiness(ctx context.Context, businessID id.ID) ([]*branch.Branch, error)
	}
	PointLister interface {
		ListByBusiness(ctx context.Context, businessID id.ID, branchID *id.ID) ([]*point.EmissionPoint, error)
	}
	SequenceProvider interface {
		GetOrCreate(ctx context.Context, businessID, pointID id.ID, docType string) (*sequence.Sequence, bool, error)
	}
	BlockProvider interface {
		EnsureAvailable(ctx context.Context, businessID, sequenceID id.ID) (*block.Block, bool, error)
	}
)

// Service orchestrates the readiness check.
type Service struct {
	businesses BusinessDirectory
	branches   BranchLister
	points     PointLister
	sequences  SequenceProvider
	blocks     BlockProvider
	recorder   audit.Recorder
	log        *logger.Logger
}

// NewService creates the onboarding service.
func NewService(
	businesses BusinessDirectory,
	branches BranchLister,
	points PointLister,
	sequences SequenceProvider,
	blocks BlockProvider,
	recorder audit.Recorder,
	log *logger.Logger,
) *Service {
	return &Service{
		businesses: businesses,
		branches:   branches,
		points:     points,
		sequences:  sequences,
		blocks:     blocks,
		recorder:   recorder,
		log:        log,
	}
}

// EnsureReady walks every emission point of the business, makes sure each
// has an invoice sequence and a block with numbers left, and marks the
// business READY. Re-running it creates nothing new once the setup holds.
//
// Each point gets its own reserved range: the per-sequence counter is
// advanced atomically, so repeated or concurrent runs never hand two
// points (or two runs) overlapping numbers.
func (s *Service) EnsureReady(ctx context.Context, businessID id.ID) (*Result, error) {
	branches, err := s.branches.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if len(branches) == 0 {
		return nil, apperror.NewBusinessRule("NO_BRANCHES",
			"at least one branch is required before onboarding can complete")
	}

	points, err := s.points.ListByBusiness(ctx, businessID, nil)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, apperror.NewBusinessRule("NO_EMISSION_POINTS",
			"at least one emission point is required before onboarding can complete")
	}

	result := &Result{Points: make([]PointReadiness, 0, len(points))}
	for _, pt := range points {
		seq, _, err := s.sequences.GetOrCreate(ctx, businessID, pt.ID, sequence.DocTypeInvoice)
		if err != nil {
			return nil, err
		}

		blk, created, err := s.blocks.EnsureAvailable(ctx, businessID, seq.ID)
		if err != nil {
			return nil, err
		}
		if created {
			result.BlocksCreated++
		}

		result.Points = append(result.Points, PointReadiness{
			PointID:      pt.ID,
			PointCode:    pt.Code,
			SequenceID:   seq.ID,
			Series:       seq.Series,
			BlockID:      blk.ID,
			BlockCreated: created,
		})
	}

	if err := s.businesses.MarkReady(ctx, businessID); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, audit.NewEntry(businessID, "business", businessID, audit.ActionBootstrapped).
		WithPayload(map[string]any{
			"points":         len(result.Points),
			"blocks_created": result.BlocksCreated,
		}))

	s.log.WithContext(ctx).Infow("onboarding completed",
		"business_id", businessID.String(),
		"points", len(result.Points),
		"blocks_created", result.BlocksCreated)

	return result, nil
}
