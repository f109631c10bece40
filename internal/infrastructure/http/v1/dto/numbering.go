package dto

import (
	"facturador/internal/core/id"
	"facturador/internal/domain/block"
)

// --- Branches & emission points ---

// CreateBranchRequest adds an establishment to the caller's business.
type CreateBranchRequest struct {
	Code    string  `json:"code" binding:"required,len=3,numeric"`
	Name    string  `json:"name" binding:"required"`
	Address *string `json:"address"`
	City    *string `json:"city"`
}

// CreatePointRequest adds an emission point to a branch.
type CreatePointRequest struct {
	BranchID id.ID  `json:"branchId" binding:"required"`
	Code     string `json:"code" binding:"required,len=3,numeric"`
	Name     string `json:"name" binding:"required"`
}

// --- Sequences ---

// EnsureSequenceRequest resolves or creates the sequence for a point and
// document type.
type EnsureSequenceRequest struct {
	PointID id.ID  `json:"pointId" binding:"required"`
	DocType string `json:"docType" binding:"omitempty,len=2,numeric"`
}

// --- Blocks ---

// CreateBlockRequest reserves a range from a sequence. The point must be
// the one the sequence was created for.
type CreateBlockRequest struct {
	SequenceID id.ID  `json:"sequenceId" binding:"required"`
	PointID    id.ID  `json:"pointId" binding:"required"`
	Size       int64  `json:"size" binding:"omitempty,min=10,max=10000"`
	DeviceID   string `json:"deviceId"`
}

// OpenBlockRequest assigns a block to a device.
type OpenBlockRequest struct {
	DeviceID string `json:"deviceId" binding:"required"`
}

// BlockResponse is the public view of a block.
type BlockResponse struct {
	*block.Block

	Remaining int64 `json:"remaining"`
}

// NewBlockResponse maps a block to the response shape.
func NewBlockResponse(b *block.Block) BlockResponse {
	return BlockResponse{Block: b, Remaining: b.Remaining()}
}
