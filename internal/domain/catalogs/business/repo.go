package business

import (
	"context"

	"facturador/internal/core/id"
	"facturador/internal/domain"
)

// Membership links a user account to a business with a role.
type Membership struct {
	BusinessID id.ID  `db:"business_id" json:"businessId"`
	UserID     id.ID  `db:"user_id" json:"userId"`
	Role       string `db:"role" json:"role"`
}

// Repository extends the generic catalog repository with business-specific
// lookups and user membership management.
type Repository interface {
	domain.CatalogRepository[*Business]

	// GetByRUC looks up a business by its tax identifier
	GetByRUC(ctx context.Context, ruc string) (*Business, error)

	// GetForUser returns the business a user is linked to, with the role.
	// Returns NotFound when the user has no membership.
	GetForUser(ctx context.Context, userID id.ID) (*Business, string, error)

	// LinkUser creates a membership row
	LinkUser(ctx context.Context, m Membership) error

	// SetOnboardingStatus updates the onboarding status only
	SetOnboardingStatus(ctx context.Context, businessID id.ID, status OnboardingStatus) error
}
