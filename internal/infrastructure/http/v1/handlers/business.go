package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/core/apperror"
	"facturador/internal/domain/catalogs/business"
	"facturador/internal/infrastructure/http/v1/dto"
)

// BusinessHandler handles business catalog endpoints.
type BusinessHandler struct {
	*BaseHandler
	service *business.Service
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(service *business.Service) *BusinessHandler {
	return &BusinessHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create registers the caller's business and links them as ADMIN.
// POST /api/v1/business
func (h *BusinessHandler) Create(c *gin.Context) {
	var req dto.CreateBusinessRequest
	if !h.BindJSON(c, &req) {
		return
	}

	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	b, err := h.service.Register(c.Request.Context(), req.ToEntity(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BusinessResponse{Business: b, Role: business.RoleAdmin})
}

// Get returns the caller's business.
// GET /api/v1/business
func (h *BusinessHandler) Get(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}

	b, role, err := h.service.GetForUser(c.Request.Context(), userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			h.Error(c, apperror.NewNotFound("business", "current user"))
			return
		}
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BusinessResponse{Business: b, Role: role})
}
