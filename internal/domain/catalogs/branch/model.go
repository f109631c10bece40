// Package branch provides the Branch catalog: physical establishments of a
// business. The 3-digit branch code is the first segment of a document series.
package branch

import (
	"context"
	"regexp"

	"facturador/internal/core/apperror"
	"facturador/internal/core/entity"
	"facturador/internal/core/id"
)

var codePattern = regexp.MustCompile(`^[0-9]{3}$`)

// Branch represents an establishment of a business.
type Branch struct {
	entity.Catalog

	// BusinessID is the owning business
	BusinessID id.ID `db:"business_id" json:"businessId"`

	// Address of the establishment
	Address *string `db:"address" json:"address,omitempty"`

	City *string `db:"city" json:"city,omitempty"`

	// IsActive gates new emission points; inactive branches keep history
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewBranch creates an active branch.
func NewBranch(businessID id.ID, code, name string) *Branch {
	return &Branch{
		Catalog:    entity.NewCatalog(code, name),
		BusinessID: businessID,
		IsActive:   true,
	}
}

// Validate implements entity.Validatable interface.
func (b *Branch) Validate(ctx context.Context) error {
	if !codePattern.MatchString(b.Code) {
		return apperror.NewValidation("branch code must be exactly 3 digits").
			WithDetail("field", "code").
			WithDetail("value", b.Code)
	}

	if b.Name == "" {
		return apperror.NewValidation("branch name is required").
			WithDetail("field", "name")
	}

	if id.IsNil(b.BusinessID) {
		return apperror.NewValidation("business is required").
			WithDetail("field", "businessId")
	}

	return nil
}
