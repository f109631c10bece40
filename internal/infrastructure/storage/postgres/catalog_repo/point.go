package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/infrastructure/storage/postgres"
)

const pointTable = "emission_points"

// PointRepo implements point.Repository.
type PointRepo struct {
	*BaseCatalogRepo[*point.EmissionPoint]
}

// NewPointRepo creates a new emission point repository.
func NewPointRepo(txm *postgres.TxManager) *PointRepo {
	return &PointRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			pointTable,
			postgres.ExtractDBColumns[point.EmissionPoint](),
			func() *point.EmissionPoint { return &point.EmissionPoint{} },
			true,
		),
	}
}

// GetOwned retrieves a point only if it belongs to the business.
func (r *PointRepo) GetOwned(ctx context.Context, businessID, pointID id.ID) (*point.EmissionPoint, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": pointID}).
		Where(squirrel.Eq{"business_id": businessID}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ExistsByCode checks for a point with the code inside the branch.
func (r *PointRepo) ExistsByCode(ctx context.Context, branchID id.ID, code string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(pointTable).
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.exists(ctx, q)
}
