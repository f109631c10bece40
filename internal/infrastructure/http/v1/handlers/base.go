// Package handlers contains gin HTTP handlers for the v1 API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"facturador/internal/core/apperror"
	appctx "facturador/internal/core/context"
	"facturador/internal/core/id"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// Error registers error on Gin context and aborts request.
// Actual JSON response is produced by middleware.ErrorHandler (single source of truth).
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParamID parses a path parameter as an entity id.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", name))
		return id.Nil(), false
	}
	return parsed, true
}

// parseQueryID parses a query parameter as an entity id.
func (h *BaseHandler) parseQueryID(c *gin.Context, name, raw string) (id.ID, bool) {
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", name))
		return id.Nil(), false
	}
	return parsed, true
}

// BusinessID extracts the caller's business from request context.
// The BusinessScope middleware guarantees it is set on scoped routes.
func (h *BaseHandler) BusinessID(c *gin.Context) (id.ID, bool) {
	raw := appctx.GetBusinessID(c.Request.Context())
	businessID, err := id.Parse(raw)
	if err != nil || id.IsNil(businessID) {
		h.Error(c, apperror.NewForbidden("no business registered for this account"))
		return id.Nil(), false
	}
	return businessID, true
}

// UserID extracts the caller's user id from request context.
func (h *BaseHandler) UserID(c *gin.Context) (id.ID, bool) {
	raw := appctx.GetUserID(c.Request.Context())
	userID, err := id.Parse(raw)
	if err != nil || id.IsNil(userID) {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}
	return userID, true
}
