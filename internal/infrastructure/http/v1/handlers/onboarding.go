package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/domain/onboarding"
)

// OnboardingHandler handles the readiness bootstrap endpoint.
type OnboardingHandler struct {
	*BaseHandler
	service *onboarding.Service
}

// NewOnboardingHandler creates a new onboarding handler.
func NewOnboardingHandler(service *onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Ready bootstraps numbering for every emission point and marks the
// business READY. Idempotent: re-running confirms the setup.
// POST /api/v1/onboarding/ready
func (h *OnboardingHandler) Ready(c *gin.Context) {
	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	result, err := h.service.EnsureReady(c.Request.Context(), businessID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
