package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/domain"
	"facturador/internal/domain/catalogs/branch"
	"facturador/internal/infrastructure/http/v1/dto"
)

// BranchHandler handles branch catalog endpoints.
type BranchHandler struct {
	*BaseHandler
	service *branch.Service
}

// NewBranchHandler creates a new branch handler.
func NewBranchHandler(service *branch.Service) *BranchHandler {
	return &BranchHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create adds a branch to the caller's business.
// POST /api/v1/onboarding/branches
func (h *BranchHandler) Create(c *gin.Context) {
	var req dto.CreateBranchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	b := branch.NewBranch(businessID, req.Code, req.Name)
	b.Address = req.Address
	b.City = req.City

	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// List returns branches of the caller's business.
// GET /api/v1/onboarding/branches
func (h *BranchHandler) List(c *gin.Context) {
	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	query.Defaults()

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	filter := domain.DefaultListFilter()
	filter.BusinessID = businessID
	filter.Search = query.Search
	filter.IncludeDeleted = query.IncludeDeleted
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	filter.Limit = query.PageSize
	filter.Offset = query.Offset()

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get returns one branch of the caller's business.
// GET /api/v1/onboarding/branches/:id
func (h *BranchHandler) Get(c *gin.Context) {
	branchID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	b, err := h.service.GetOwned(c.Request.Context(), businessID, branchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}
