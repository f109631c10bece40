package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"facturador/internal/core/id"
)

func TestSeries(t *testing.T) {
	assert.Equal(t, "001-002", Series("001", "002"))
	assert.Equal(t, "001-002", Series("1", "2"))
	assert.Equal(t, "012-120", Series("12", "120"))
}

func TestFormatNumber(t *testing.T) {
	seq := NewSequence(id.New(), id.New(), id.New(), DocTypeInvoice, "001-002")

	assert.Equal(t, "001-002-000000001", seq.FormatNumber(1))
	assert.Equal(t, "001-002-000000042", seq.FormatNumber(42))
	assert.Equal(t, "001-002-123456789", seq.FormatNumber(123456789))

	// numbers wider than the padding are not truncated
	assert.Equal(t, "001-002-1234567890", seq.FormatNumber(1234567890))
}

func TestFormatNumber_CustomPadding(t *testing.T) {
	seq := NewSequence(id.New(), id.New(), id.New(), DocTypeInvoice, "001-001")
	seq.Padding = 5

	assert.Equal(t, "001-001-00042", seq.FormatNumber(42))
}

func TestIsValidDocType(t *testing.T) {
	assert.True(t, IsValidDocType(DocTypeInvoice))
	assert.True(t, IsValidDocType(DocTypeCreditNote))
	assert.True(t, IsValidDocType(DocTypeWithholding))

	assert.False(t, IsValidDocType(""))
	assert.False(t, IsValidDocType("99"))
	assert.False(t, IsValidDocType("invoice"))
}
