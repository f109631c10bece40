package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/core/id"
	"facturador/internal/domain/catalogs/point"
	"facturador/internal/infrastructure/http/v1/dto"
)

// PointHandler handles emission point endpoints.
type PointHandler struct {
	*BaseHandler
	service *point.Service
}

// NewPointHandler creates a new emission point handler.
func NewPointHandler(service *point.Service) *PointHandler {
	return &PointHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create adds an emission point to a branch of the caller's business.
// POST /api/v1/onboarding/points
func (h *PointHandler) Create(c *gin.Context) {
	var req dto.CreatePointRequest
	if !h.BindJSON(c, &req) {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	p := point.NewEmissionPoint(businessID, req.BranchID, req.Code, req.Name)

	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// List returns emission points, optionally narrowed to one branch.
// GET /api/v1/onboarding/points?branchId=...
func (h *PointHandler) List(c *gin.Context) {
	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	var branchID *id.ID
	if raw := c.Query("branchId"); raw != "" {
		parsed, ok := h.parseQueryID(c, "branchId", raw)
		if !ok {
			return
		}
		branchID = &parsed
	}

	points, err := h.service.ListByBusiness(c.Request.Context(), businessID, branchID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      points,
		TotalCount: int64(len(points)),
		Limit:      len(points),
	})
}

// Get returns one emission point of the caller's business.
// GET /api/v1/onboarding/points/:id
func (h *PointHandler) Get(c *gin.Context) {
	pointID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	p, err := h.service.GetOwned(c.Request.Context(), businessID, pointID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
