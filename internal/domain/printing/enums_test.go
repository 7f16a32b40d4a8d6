package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocTypeIsValid(t *testing.T) {
	for _, dt := range AllDocTypes() {
		assert.True(t, dt.IsValid(), "doc type %s", dt)
	}
	assert.False(t, DocType("SALES_ORDER").IsValid())
	assert.False(t, DocType("").IsValid())
}

func TestDocTypeDisplayName(t *testing.T) {
	tests := []struct {
		docType DocType
		want    string
	}{
		{DocTypeInvoice, "Invoice"},
		{DocTypeCustomerStatement, "Customer Statement"},
		{DocTypePayslip, "Payslip"},
		{DocTypePayrollSummary, "Payroll Summary"},
		{DocType("UNKNOWN"), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.docType.DisplayName())
	}
}

func TestPaperSizeDimensions(t *testing.T) {
	tests := []struct {
		size   PaperSize
		width  int
		height int
	}{
		{PaperSizeA4, 210, 297},
		{PaperSizeA5, 148, 210},
		{PaperSizeLetter, 216, 279},
		{PaperSize("UNKNOWN"), 210, 297}, // falls back to A4
	}

	for _, tt := range tests {
		w, h := tt.size.Dimensions()
		assert.Equal(t, tt.width, w, "width of %s", tt.size)
		assert.Equal(t, tt.height, h, "height of %s", tt.size)
	}
}

func TestPaperSizeIsValid(t *testing.T) {
	for _, ps := range AllPaperSizes() {
		assert.True(t, ps.IsValid(), "paper size %s", ps)
	}
	assert.False(t, PaperSize("RECEIPT_58MM").IsValid())
}

func TestOrientationIsValid(t *testing.T) {
	assert.True(t, OrientationPortrait.IsValid())
	assert.True(t, OrientationLandscape.IsValid())
	assert.False(t, Orientation("DIAGONAL").IsValid())
}

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		from    JobStatus
		to      JobStatus
		allowed bool
	}{
		{JobStatusPending, JobStatusRendering, true},
		{JobStatusPending, JobStatusFailed, true},
		{JobStatusPending, JobStatusCompleted, false},
		{JobStatusRendering, JobStatusCompleted, true},
		{JobStatusRendering, JobStatusFailed, true},
		{JobStatusRendering, JobStatusPending, false},
		{JobStatusCompleted, JobStatusFailed, false},
		{JobStatusFailed, JobStatusRendering, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.False(t, JobStatusPending.IsTerminal())
	assert.False(t, JobStatusRendering.IsTerminal())
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusFailed.IsTerminal())
}
