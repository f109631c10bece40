package entity

import (
	"context"

	"facturador/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: Business, Branch, EmissionPoint.
type Catalog struct {
	BaseEntity

	// Code is a human-readable identifier (unique within its scope:
	// RUC for businesses, 3-digit codes for branches and points)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if c.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}

	return nil
}
