// Package sequence implements authorized document numbering. A Sequence is
// the per-(business, emission point, document type) counter that ranges of
// numbers are carved out of. Numbers move strictly forward: reserved ranges
// may go unused, but a number is never handed out twice.
package sequence

import (
	"fmt"
	"time"

	"facturador/internal/core/id"
)

// Document type codes as assigned by the tax authority.
const (
	DocTypeInvoice      = "01"
	DocTypeCreditNote   = "04"
	DocTypeDebitNote    = "05"
	DocTypeDeliveryNote = "06"
	DocTypeWithholding  = "07"
)

// DefaultPadding is the digit width of the sequential part of a document
// number, per the authority's format (e.g. 000000042).
const DefaultPadding = 9

// Sequence is the source of truth for issued numbers of one document type
// at one emission point. CurrentNumber is the highest number ever reserved;
// it only grows.
type Sequence struct {
	ID         id.ID  `db:"id" json:"id"`
	BusinessID id.ID  `db:"business_id" json:"businessId"`
	BranchID   id.ID  `db:"branch_id" json:"branchId"`
	PointID    id.ID  `db:"point_id" json:"pointId"`
	DocType    string `db:"doc_type" json:"docType"`

	// Series is the display prefix derived from branch and point codes,
	// e.g. "001-002". Stored denormalized so formatting needs no joins.
	Series string `db:"series" json:"series"`

	// CurrentNumber is the high-water mark of reserved numbers
	CurrentNumber int64 `db:"current_number" json:"currentNumber"`

	// Padding is the digit width of the formatted sequential part
	Padding int `db:"padding" json:"padding"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewSequence creates a fresh counter starting at zero.
func NewSequence(businessID, branchID, pointID id.ID, docType, series string) *Sequence {
	return &Sequence{
		ID:         id.New(),
		BusinessID: businessID,
		BranchID:   branchID,
		PointID:    pointID,
		DocType:    docType,
		Series:     series,
		Padding:    DefaultPadding,
		CreatedAt:  time.Now().UTC(),
	}
}

// Series builds the display prefix from branch and point codes. Codes are
// stored zero-padded to 3 digits already; padding here keeps the format
// stable even for legacy unpadded codes.
func Series(branchCode, pointCode string) string {
	return pad3(branchCode) + "-" + pad3(pointCode)
}

func pad3(code string) string {
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}

// FormatNumber renders a sequential number in the authority's document
// number format: series plus the zero-padded number, e.g. "001-002-000000042".
func (s *Sequence) FormatNumber(n int64) string {
	return fmt.Sprintf("%s-%0*d", s.Series, s.Padding, n)
}

// IsValidDocType reports whether the code is a known document type.
func IsValidDocType(code string) bool {
	switch code {
	case DocTypeInvoice, DocTypeCreditNote, DocTypeDebitNote,
		DocTypeDeliveryNote, DocTypeWithholding:
		return true
	}
	return false
}
