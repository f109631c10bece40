package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/domain/block"
	"facturador/internal/infrastructure/http/v1/dto"
)

// BlockHandler handles allocation block endpoints.
type BlockHandler struct {
	*BaseHandler
	service *block.Service
}

// NewBlockHandler creates a new block handler.
func NewBlockHandler(service *block.Service) *BlockHandler {
	return &BlockHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// Create reserves a range from a sequence and stores a block over it.
// POST /api/v1/onboarding/blocks
func (h *BlockHandler) Create(c *gin.Context) {
	var req dto.CreateBlockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	blk, err := h.service.Create(c.Request.Context(), block.CreateInput{
		BusinessID: businessID,
		SequenceID: req.SequenceID,
		PointID:    req.PointID,
		Size:       req.Size,
		DeviceID:   req.DeviceID,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewBlockResponse(blk))
}

// Get returns one block of the caller's business.
// GET /api/v1/blocks/:id
func (h *BlockHandler) Get(c *gin.Context) {
	blockID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	blk, err := h.service.GetOwned(c.Request.Context(), businessID, blockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBlockResponse(blk))
}

// Open assigns an AVAILABLE block to a device.
// POST /api/v1/blocks/:id/open
func (h *BlockHandler) Open(c *gin.Context) {
	blockID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	var req dto.OpenBlockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	blk, err := h.service.Open(c.Request.Context(), businessID, blockID, req.DeviceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBlockResponse(blk))
}

// Consume takes the next number from a block.
// POST /api/v1/blocks/:id/consume
func (h *BlockHandler) Consume(c *gin.Context) {
	blockID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	issued, err := h.service.Consume(c.Request.Context(), businessID, blockID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, issued)
}
