package printing

import (
	"embed"
	"fmt"

	"github.com/peopledesk/backend/internal/domain/printing"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplate represents a default print template configuration
type DefaultTemplate struct {
	DocType     printing.DocType
	Name        string
	Description string
	PaperSize   printing.PaperSize
	Orientation printing.Orientation
	Margins     printing.Margins
	FilePath    string // Path within embed.FS
	IsDefault   bool   // Whether this is the default for its doc type
}

// GetDefaultTemplates returns all default template configurations
func GetDefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		// =============================================================================
		// INVOICE templates
		// =============================================================================
		{
			DocType:     printing.DocTypeInvoice,
			Name:        "Invoice - A4",
			Description: "Standard A4 invoice with customer details, line items and payment summary",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/invoice_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypeInvoice,
			Name:        "Invoice - Letter",
			Description: "US Letter invoice layout for tenants on Letter paper stock",
			PaperSize:   printing.PaperSizeLetter,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/invoice_a4.html",
			IsDefault:   false,
		},

		// =============================================================================
		// CUSTOMER_STATEMENT templates
		// =============================================================================
		{
			DocType:     printing.DocTypeCustomerStatement,
			Name:        "Customer Statement - A4",
			Description: "A4 statement of account listing the customer's invoices with outstanding balances",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/customer_statement_a4.html",
			IsDefault:   true,
		},

		// =============================================================================
		// PAYSLIP templates
		// =============================================================================
		{
			DocType:     printing.DocTypePayslip,
			Name:        "Payslip - A4",
			Description: "Standard A4 payslip with earnings, deductions and net pay in words",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/payslip_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypePayslip,
			Name:        "Payslip - A5 Compact",
			Description: "Compact A5 payslip for batch printing, two to a sheet",
			PaperSize:   printing.PaperSizeA5,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.CompactMargins(),
			FilePath:    "templates/payslip_a5.html",
			IsDefault:   false,
		},

		// =============================================================================
		// PAYROLL_SUMMARY templates
		// =============================================================================
		{
			DocType:     printing.DocTypePayrollSummary,
			Name:        "Payroll Summary - A4",
			Description: "A4 payroll run summary listing every payslip with gross, tax and net totals",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationPortrait,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/payroll_summary_a4.html",
			IsDefault:   true,
		},
		{
			DocType:     printing.DocTypePayrollSummary,
			Name:        "Payroll Summary - A4 Landscape",
			Description: "Landscape payroll summary with per-employee allowance and deduction columns",
			PaperSize:   printing.PaperSizeA4,
			Orientation: printing.OrientationLandscape,
			Margins:     printing.DefaultMargins(),
			FilePath:    "templates/payroll_summary_a4_landscape.html",
			IsDefault:   false,
		},
	}
}

// LoadTemplateContent loads the HTML content for a default template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// GetDefaultTemplateByDocTypeAndPaperSize finds a default template configuration
func GetDefaultTemplateByDocTypeAndPaperSize(docType printing.DocType, paperSize printing.PaperSize) *DefaultTemplate {
	templates := GetDefaultTemplates()
	for _, t := range templates {
		if t.DocType == docType && t.PaperSize == paperSize {
			return &t
		}
	}
	return nil
}

// GetDefaultTemplateForDocType finds the default template for a document type
func GetDefaultTemplateForDocType(docType printing.DocType) *DefaultTemplate {
	templates := GetDefaultTemplates()
	for _, t := range templates {
		if t.DocType == docType && t.IsDefault {
			return &t
		}
	}
	return nil
}

// GetTemplatesByDocType returns all templates for a document type
func GetTemplatesByDocType(docType printing.DocType) []DefaultTemplate {
	templates := GetDefaultTemplates()
	var result []DefaultTemplate
	for _, t := range templates {
		if t.DocType == docType {
			result = append(result, t)
		}
	}
	return result
}
