// Package point provides the EmissionPoint catalog: issuing terminals inside
// a branch. The 3-digit point code is the second segment of a document series.
package point

import (
	"context"
	"regexp"

	"facturador/internal/core/apperror"
	"facturador/internal/core/entity"
	"facturador/internal/core/id"
)

var codePattern = regexp.MustCompile(`^[0-9]{3}$`)

// EmissionPoint represents an issuing terminal (POS, web portal, kiosk)
// inside a branch.
type EmissionPoint struct {
	entity.Catalog

	// BusinessID is the owning business, denormalized from the branch so
	// every point query can be tenant-scoped without a join
	BusinessID id.ID `db:"business_id" json:"businessId"`

	// BranchID is the branch the point issues from
	BranchID id.ID `db:"branch_id" json:"branchId"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewEmissionPoint creates an active emission point.
func NewEmissionPoint(businessID, branchID id.ID, code, name string) *EmissionPoint {
	return &EmissionPoint{
		Catalog:    entity.NewCatalog(code, name),
		BusinessID: businessID,
		BranchID:   branchID,
		IsActive:   true,
	}
}

// Validate implements entity.Validatable interface.
func (p *EmissionPoint) Validate(ctx context.Context) error {
	if !codePattern.MatchString(p.Code) {
		return apperror.NewValidation("emission point code must be exactly 3 digits").
			WithDetail("field", "code").
			WithDetail("value", p.Code)
	}

	if p.Name == "" {
		return apperror.NewValidation("emission point name is required").
			WithDetail("field", "name")
	}

	if id.IsNil(p.BusinessID) {
		return apperror.NewValidation("business is required").
			WithDetail("field", "businessId")
	}

	if id.IsNil(p.BranchID) {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	return nil
}
