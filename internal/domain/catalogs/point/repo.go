package point

import (
	"context"

	"facturador/internal/core/id"
	"facturador/internal/domain"
)

// Repository extends the generic catalog repository with scoped lookups.
type Repository interface {
	domain.CatalogRepository[*EmissionPoint]

	// GetOwned retrieves a point only if it belongs to the business.
	// Returns NotFound otherwise.
	GetOwned(ctx context.Context, businessID, pointID id.ID) (*EmissionPoint, error)

	// ExistsByCode checks for a point with the code inside the branch
	ExistsByCode(ctx context.Context, branchID id.ID, code string) (bool, error)
}
