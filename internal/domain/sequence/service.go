package sequence

import (
	"context"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/domain/catalogs/point"
	"facturador/pkg/logger"
)

// The slices of the catalog services sequences depend on.
type (
	BranchSource interface {
		GetOwned(ctx context.Context, businessID, branchID id.ID) (*branch.Branch, error)
	}
	PointSource interface {
		GetOwned(ctx context.Context, businessID, pointID id.ID) (*point.EmissionPoint, error)
	}
)

// Service provides sequence operations. Reservation is delegated to the
// repository's atomic counter update, so the service never holds locks.
type Service struct {
	repo     Repository
	branches BranchSource
	points   PointSource
	log      *logger.Logger
}

// NewService creates the sequence service.
func NewService(repo Repository, branches BranchSource, points PointSource, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		branches: branches,
		points:   points,
		log:      log,
	}
}

// GetOrCreate resolves the sequence for (point, docType), creating it at
// zero on first use, and reports whether this call created it. The series
// is derived from the branch and point codes at creation time and fixed
// afterwards. Safe to call concurrently: losers of the insert race get the
// winner's row.
func (s *Service) GetOrCreate(ctx context.Context, businessID, pointID id.ID, docType string) (*Sequence, bool, error) {
	if !IsValidDocType(docType) {
		return nil, false, apperror.NewValidation("unknown document type").
			WithDetail("field", "docType").
			WithDetail("value", docType)
	}

	pt, err := s.points.GetOwned(ctx, businessID, pointID)
	if err != nil {
		return nil, false, err
	}
	br, err := s.branches.GetOwned(ctx, businessID, pt.BranchID)
	if err != nil {
		return nil, false, err
	}

	seq, created, err := s.repo.GetOrCreate(ctx,
		NewSequence(businessID, br.ID, pt.ID, docType, Series(br.Code, pt.Code)))
	if err != nil {
		return nil, false, apperror.NewStoreFailure("sequence upsert", err)
	}

	if created {
		s.log.WithContext(ctx).Infow("sequence created",
			"sequence_id", seq.ID.String(),
			"series", seq.Series,
			"doc_type", seq.DocType)
	}

	return seq, created, nil
}

// GetOwned retrieves a sequence scoped to the business. A sequence of
// another business reads as NotFound.
func (s *Service) GetOwned(ctx context.Context, businessID, sequenceID id.ID) (*Sequence, error) {
	seq, err := s.repo.GetByID(ctx, sequenceID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("sequence", sequenceID.String())
		}
		return nil, err
	}
	if seq.BusinessID != businessID {
		return nil, apperror.NewNotFound("sequence", sequenceID.String())
	}
	return seq, nil
}

// ListByBusiness returns all sequences of a business.
func (s *Service) ListByBusiness(ctx context.Context, businessID id.ID) ([]*Sequence, error) {
	return s.repo.ListByBusiness(ctx, businessID)
}

// ReserveRange carves size consecutive numbers out of the sequence and
// returns the inclusive bounds. The range is spent the moment this returns:
// callers that fail to persist their block leave a gap, never a duplicate.
func (s *Service) ReserveRange(ctx context.Context, businessID, sequenceID id.ID, size int64) (start, end int64, err error) {
	if size <= 0 {
		return 0, 0, apperror.NewValidation("range size must be positive").
			WithDetail("size", size)
	}

	if _, err := s.GetOwned(ctx, businessID, sequenceID); err != nil {
		return 0, 0, err
	}

	mark, err := s.repo.ReserveRange(ctx, sequenceID, size)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, 0, apperror.NewNotFound("sequence", sequenceID.String())
		}
		return 0, 0, apperror.NewStoreFailure("reserve range", err)
	}

	return mark - size + 1, mark, nil
}
