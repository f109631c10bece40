package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facturador/internal/domain/block"
	"facturador/internal/domain/sequence"
	"facturador/internal/infrastructure/http/v1/dto"
)

// SequenceHandler handles sequence endpoints.
type SequenceHandler struct {
	*BaseHandler
	sequences *sequence.Service
	blocks    *block.Service
}

// NewSequenceHandler creates a new sequence handler.
func NewSequenceHandler(sequences *sequence.Service, blocks *block.Service) *SequenceHandler {
	return &SequenceHandler{
		BaseHandler: NewBaseHandler(),
		sequences:   sequences,
		blocks:      blocks,
	}
}

// Ensure resolves or creates the sequence for a point and document type.
// POST /api/v1/onboarding/sequences
func (h *SequenceHandler) Ensure(c *gin.Context) {
	var req dto.EnsureSequenceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.DocType == "" {
		req.DocType = sequence.DocTypeInvoice
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	seq, created, err := h.sequences.GetOrCreate(c.Request.Context(), businessID, req.PointID, req.DocType)
	if err != nil {
		h.Error(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, seq)
}

// List returns all sequences of the caller's business.
// GET /api/v1/onboarding/sequences
func (h *SequenceHandler) List(c *gin.Context) {
	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	items, err := h.sequences.ListByBusiness(c.Request.Context(), businessID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      len(items),
	})
}

// Blocks returns all blocks of one sequence.
// GET /api/v1/onboarding/sequences/:id/blocks
func (h *SequenceHandler) Blocks(c *gin.Context) {
	sequenceID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	businessID, ok := h.BusinessID(c)
	if !ok {
		return
	}

	items, err := h.blocks.ListBySequence(c.Request.Context(), businessID, sequenceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	responses := make([]dto.BlockResponse, 0, len(items))
	for _, b := range items {
		responses = append(responses, dto.NewBlockResponse(b))
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      responses,
		TotalCount: int64(len(responses)),
		Limit:      len(responses),
	})
}
