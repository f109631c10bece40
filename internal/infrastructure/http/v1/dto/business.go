package dto

import (
	"facturador/internal/domain/catalogs/business"
)

// CreateBusinessRequest registers the caller's business.
type CreateBusinessRequest struct {
	RUC         string  `json:"ruc" binding:"required,len=13,numeric"`
	LegalName   string  `json:"legalName" binding:"required,min=3"`
	TradeName   *string `json:"tradeName"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	Environment string  `json:"environment" binding:"omitempty,oneof=TEST PROD"`
}

// ToEntity converts the request to a domain entity.
func (r *CreateBusinessRequest) ToEntity() *business.Business {
	b := business.NewBusiness(r.RUC, r.LegalName)
	b.TradeName = r.TradeName
	b.Email = r.Email
	b.Phone = r.Phone
	b.HeadOfficeAddress = r.Address
	if r.Environment != "" {
		b.Environment = business.Environment(r.Environment)
	}
	return b
}

// BusinessResponse is the public view of a business.
type BusinessResponse struct {
	*business.Business

	// Role of the requesting user on this business
	Role string `json:"role,omitempty"`
}
