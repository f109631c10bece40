package branch

import (
	"context"

	"facturador/internal/core/id"
	"facturador/internal/domain"
)

// Repository extends the generic catalog repository with code lookups.
// All lookups are scoped by business: a branch is never visible outside
// its owning business.
type Repository interface {
	domain.CatalogRepository[*Branch]

	// GetOwned retrieves a branch only if it belongs to the business.
	// Returns NotFound otherwise, never Forbidden, so existence does not leak.
	GetOwned(ctx context.Context, businessID, branchID id.ID) (*Branch, error)

	// ExistsByCode checks for a branch with the code inside the business
	ExistsByCode(ctx context.Context, businessID id.ID, code string) (bool, error)
}
