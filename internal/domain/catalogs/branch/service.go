package branch

import (
	"context"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/core/tx"
	"facturador/internal/domain"
	"facturador/pkg/logger"
)

// Service provides branch catalog operations.
type Service struct {
	*domain.CatalogService[*Branch]

	repo Repository
	log  *logger.Logger
}

// NewService creates the branch service.
func NewService(repo Repository, txManager tx.Manager, log *logger.Logger) *Service {
	s := &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Branch]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "branch",
		}),
		repo: repo,
		log:  log,
	}

	// Reject duplicate codes with a friendly error before hitting the
	// unique index. The index still backs this up under races.
	s.Hooks().OnBeforeCreate(func(ctx context.Context, b *Branch) error {
		exists, err := repo.ExistsByCode(ctx, b.BusinessID, b.Code)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewDuplicate("branch", "code", b.Code)
		}
		return nil
	})

	return s
}

// GetOwned retrieves a branch scoped to the business.
func (s *Service) GetOwned(ctx context.Context, businessID, branchID id.ID) (*Branch, error) {
	b, err := s.repo.GetOwned(ctx, businessID, branchID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("branch", branchID.String())
		}
		return nil, err
	}
	return b, nil
}

// ListByBusiness returns all active-and-inactive branches of a business.
func (s *Service) ListByBusiness(ctx context.Context, businessID id.ID) ([]*Branch, error) {
	filter := domain.DefaultListFilter()
	filter.BusinessID = businessID
	filter.Limit = 1000

	res, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}
