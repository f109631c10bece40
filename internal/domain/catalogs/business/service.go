package business

import (
	"context"
	"fmt"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/core/tx"
	"facturador/internal/domain"
	"facturador/pkg/logger"
)

// Service provides business catalog operations.
type Service struct {
	*domain.CatalogService[*Business]

	repo      Repository
	txManager tx.Manager
	log       *logger.Logger
}

// NewService creates the business service.
func NewService(repo Repository, txManager tx.Manager, log *logger.Logger) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Business]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "business",
		}),
		repo:      repo,
		txManager: txManager,
		log:       log,
	}
}

// Register creates a business and links the creating user as ADMIN, in one
// transaction. A user can be linked to at most one business; a second
// registration fails with Conflict.
func (s *Service) Register(ctx context.Context, b *Business, ownerID id.ID) (*Business, error) {
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	if _, _, err := s.repo.GetForUser(ctx, ownerID); err == nil {
		return nil, apperror.NewConflict("user is already linked to a business")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, b); err != nil {
			return fmt.Errorf("create business: %w", err)
		}
		return s.repo.LinkUser(ctx, Membership{
			BusinessID: b.ID,
			UserID:     ownerID,
			Role:       RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Infow("business registered",
		"business_id", b.ID.String(),
		"ruc", b.Code)

	return b, nil
}

// GetForUser resolves the business a user account belongs to.
func (s *Service) GetForUser(ctx context.Context, userID id.ID) (*Business, string, error) {
	return s.repo.GetForUser(ctx, userID)
}

// GetByRUC looks up a business by tax identifier.
func (s *Service) GetByRUC(ctx context.Context, ruc string) (*Business, error) {
	b, err := s.repo.GetByRUC(ctx, ruc)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("business", ruc)
		}
		return nil, err
	}
	return b, nil
}

// MarkReady flips the onboarding status to READY. Idempotent.
func (s *Service) MarkReady(ctx context.Context, businessID id.ID) error {
	return s.repo.SetOnboardingStatus(ctx, businessID, OnboardingReady)
}
