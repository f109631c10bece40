package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"facturador/internal/core/apperror"
	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/business"
	"facturador/internal/infrastructure/storage/postgres"
)

const (
	businessTable   = "businesses"
	membershipTable = "user_business"
)

// BusinessRepo implements business.Repository.
type BusinessRepo struct {
	*BaseCatalogRepo[*business.Business]
}

// NewBusinessRepo creates a new business repository.
func NewBusinessRepo(txm *postgres.TxManager) *BusinessRepo {
	return &BusinessRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			businessTable,
			postgres.ExtractDBColumns[business.Business](),
			func() *business.Business { return &business.Business{} },
			false, // the business table is the tenant root, not scoped by one
		),
	}
}

// GetByRUC looks up a business by tax identifier.
func (r *BusinessRepo) GetByRUC(ctx context.Context, ruc string) (*business.Business, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": ruc}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// GetForUser returns the business a user is linked to, with the role.
func (r *BusinessRepo) GetForUser(ctx context.Context, userID id.ID) (*business.Business, string, error) {
	cols := make([]string, 0, len(r.selectCols)+1)
	for _, c := range r.selectCols {
		cols = append(cols, "b."+c)
	}
	cols = append(cols, "ub.role")

	q := r.Builder().
		Select(cols...).
		From(businessTable + " b").
		Join(membershipTable + " ub ON ub.business_id = b.id").
		Where(squirrel.Eq{"ub.user_id": userID}).
		Where(squirrel.Eq{"b.deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, "", fmt.Errorf("build query: %w", err)
	}

	// scany cannot split the joined row across two destinations, so the
	// role rides along in a wrapper struct
	var row struct {
		business.Business
		Role string `db:"role"`
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, "", apperror.NewNotFound("business membership", userID.String())
		}
		return nil, "", fmt.Errorf("get business for user: %w", err)
	}

	b := row.Business
	return &b, row.Role, nil
}

// LinkUser creates a membership row.
func (r *BusinessRepo) LinkUser(ctx context.Context, m business.Membership) error {
	q := r.Builder().
		Insert(membershipTable).
		Columns("business_id", "user_id", "role").
		Values(m.BusinessID, m.UserID, m.Role)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewConflict("user is already linked to a business").WithCause(err)
		}
		return fmt.Errorf("link user: %w", err)
	}

	return nil
}

// SetOnboardingStatus updates the onboarding status only.
func (r *BusinessRepo) SetOnboardingStatus(ctx context.Context, businessID id.ID, status business.OnboardingStatus) error {
	q := r.Builder().
		Update(businessTable).
		Set("onboarding_status", status).
		Where(squirrel.Eq{"id": businessID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set onboarding status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("business", businessID.String())
	}

	return nil
}
