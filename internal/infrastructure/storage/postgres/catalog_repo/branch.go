package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/infrastructure/storage/postgres"
)

const branchTable = "branches"

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	*BaseCatalogRepo[*branch.Branch]
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo(txm *postgres.TxManager) *BranchRepo {
	return &BranchRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			branchTable,
			postgres.ExtractDBColumns[branch.Branch](),
			func() *branch.Branch { return &branch.Branch{} },
			true,
		),
	}
}

// GetOwned retrieves a branch only if it belongs to the business.
func (r *BranchRepo) GetOwned(ctx context.Context, businessID, branchID id.ID) (*branch.Branch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": branchID}).
		Where(squirrel.Eq{"business_id": businessID}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ExistsByCode checks for a branch with the code inside the business.
func (r *BranchRepo) ExistsByCode(ctx context.Context, businessID id.ID, code string) (bool, error) {
	q := r.Builder().
		Select("1").
		From(branchTable).
		Where(squirrel.Eq{"business_id": businessID}).
		Where(squirrel.Eq{"code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.exists(ctx, q)
}
