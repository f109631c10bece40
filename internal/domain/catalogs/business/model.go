// Package business provides the Business catalog: the issuing company a
// user account is linked to. A business owns branches, emission points and
// numbering sequences.
package business

import (
	"context"
	"regexp"

	"facturador/internal/core/apperror"
	"facturador/internal/core/entity"
)

// Environment selects the tax-authority environment documents are issued against.
type Environment string

const (
	EnvTest Environment = "TEST"
	EnvProd Environment = "PROD"
)

// OnboardingStatus tracks first-time setup progress.
type OnboardingStatus string

const (
	// OnboardingDraft means setup is incomplete: branches, points or
	// numbering blocks may still be missing.
	OnboardingDraft OnboardingStatus = "DRAFT"

	// OnboardingReady means every emission point has a sequence for the
	// default document type and at least one available block.
	OnboardingReady OnboardingStatus = "READY"
)

// Role of a user on a business.
const (
	RoleAdmin  = "ADMIN"
	RoleIssuer = "ISSUER"
)

var rucPattern = regexp.MustCompile(`^[0-9]{13}$`)

// Business represents an issuing company.
// Code holds the RUC (13-digit tax ID), Name the legal name.
type Business struct {
	entity.Catalog

	// TradeName is the commercial name, if different from the legal one
	TradeName *string `db:"trade_name" json:"tradeName,omitempty"`

	// Email for tax-authority notifications
	Email *string `db:"email" json:"email,omitempty"`

	Phone *string `db:"phone" json:"phone,omitempty"`

	// HeadOfficeAddress is the registered head office address
	HeadOfficeAddress *string `db:"head_office_address" json:"headOfficeAddress,omitempty"`

	// Environment documents are issued against
	Environment Environment `db:"environment" json:"environment"`

	// OnboardingStatus flips to READY once numbering is bootstrapped
	OnboardingStatus OnboardingStatus `db:"onboarding_status" json:"onboardingStatus"`
}

// NewBusiness creates a Business in DRAFT state on the TEST environment.
func NewBusiness(ruc, legalName string) *Business {
	return &Business{
		Catalog:          entity.NewCatalog(ruc, legalName),
		Environment:      EnvTest,
		OnboardingStatus: OnboardingDraft,
	}
}

// RUC returns the tax identifier.
func (b *Business) RUC() string {
	return b.Code
}

// IsReady reports whether onboarding has completed.
func (b *Business) IsReady() bool {
	return b.OnboardingStatus == OnboardingReady
}

// Validate implements entity.Validatable interface.
func (b *Business) Validate(ctx context.Context) error {
	if !rucPattern.MatchString(b.Code) {
		return apperror.NewValidation("RUC must be 13 digits").
			WithDetail("field", "ruc")
	}

	if len(b.Name) < 3 {
		return apperror.NewValidation("legal name is required").
			WithDetail("field", "legalName")
	}

	switch b.Environment {
	case EnvTest, EnvProd:
	default:
		return apperror.NewValidation("invalid environment").
			WithDetail("field", "environment").
			WithDetail("value", string(b.Environment))
	}

	return nil
}
