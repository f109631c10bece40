package point

import (
	"context"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/core/tx"
	"facturador/internal/domain"
	"facturador/internal/domain/catalogs/branch"
	"facturador/pkg/logger"
)

// Service provides emission point operations.
type Service struct {
	*domain.CatalogService[*EmissionPoint]

	repo     Repository
	branches *branch.Service
	log      *logger.Logger
}

// NewService creates the emission point service.
func NewService(repo Repository, branches *branch.Service, txManager tx.Manager, log *logger.Logger) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*EmissionPoint]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "emission point",
		}),
		repo:     repo,
		branches: branches,
		log:      log,
	}

	s.Hooks().OnBeforeCreate(func(ctx context.Context, p *EmissionPoint) error {
		// The branch must exist and belong to the same business. A branch
		// from another business reads as NotFound.
		br, err := branches.GetOwned(ctx, p.BusinessID, p.BranchID)
		if err != nil {
			return err
		}
		if !br.IsActive {
			return apperror.NewBusinessRule("BRANCH_INACTIVE",
				"cannot add emission points to an inactive branch")
		}

		exists, err := repo.ExistsByCode(ctx, p.BranchID, p.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicate("emission point", "code", p.Code)
		}
		return nil
	})

	return s
}

// GetOwned retrieves a point scoped to the business.
func (s *Service) GetOwned(ctx context.Context, businessID, pointID id.ID) (*EmissionPoint, error) {
	p, err := s.repo.GetOwned(ctx, businessID, pointID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("emission point", pointID.String())
		}
		return nil, err
	}
	return p, nil
}

// ListByBusiness returns all points of a business, optionally narrowed to a branch.
func (s *Service) ListByBusiness(ctx context.Context, businessID id.ID, branchID *id.ID) ([]*EmissionPoint, error) {
	filter := domain.DefaultListFilter()
	filter.BusinessID = businessID
	filter.BranchID = branchID
	filter.Limit = 1000

	res, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
