package printing

import (
	"context"
	"time"

	"github.com/peopledesk/backend/internal/domain/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DataProvider is the interface for providing document data for template rendering.
// Each document type should have its own implementation.
type DataProvider interface {
	// GetDocType returns the document type this provider handles
	GetDocType() printing.DocType
	// GetData retrieves the document data for rendering
	// documentID is the ID of the document to render
	GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentData, error)
}

// DocumentData is the common structure for all document data used in templates.
// It contains both common metadata and document-specific data.
type DocumentData struct {
	// Common metadata
	Meta DocumentMeta `json:"meta"`

	// Company/Tenant information
	Company CompanyInfo `json:"company"`

	// Document-specific data (varies by document type)
	// This will be one of: InvoiceData, PayslipData, etc.
	Document any `json:"document"`

	// Formatted/computed fields for convenience
	PrintDate     string `json:"printDate"`
	PrintDateTime string `json:"printDateTime"`
	PrintTime     string `json:"printTime"`
}

// DocumentMeta contains common metadata for all documents
type DocumentMeta struct {
	DocType     printing.DocType `json:"docType"`
	DocTypeName string           `json:"docTypeName"`
	DocNo       string           `json:"docNo"` // Document number
	Status      string           `json:"status"`
	StatusText  string           `json:"statusText"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Remark      string           `json:"remark"`
}

// CompanyInfo contains tenant/company information for printing
type CompanyInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`
	Website string    `json:"website"`
	Logo    string    `json:"logo"` // URL or base64
	TaxID   string    `json:"taxId"`
}

// =============================================================================
// Invoice Data
// =============================================================================

// InvoiceData represents invoice data for template rendering
type InvoiceData struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	Customer   CustomerInfo      `json:"customer"`
	Items      []InvoiceItemData `json:"items"`
	Currency   string            `json:"currency"`
	IssueDate  time.Time         `json:"issueDate"`
	DueDate    time.Time         `json:"dueDate"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	TaxTotal   decimal.Decimal   `json:"taxTotal"`
	Total      decimal.Decimal   `json:"total"`
	AmountPaid decimal.Decimal   `json:"amountPaid"`
	BalanceDue decimal.Decimal   `json:"balanceDue"`
	ItemCount  int               `json:"itemCount"`
	Status     string            `json:"status"`
	Notes      string            `json:"notes"`

	// Formatted fields
	IssueDateFormatted  string `json:"issueDateFormatted"`
	DueDateFormatted    string `json:"dueDateFormatted"`
	SubtotalFormatted   string `json:"subtotalFormatted"`
	TaxTotalFormatted   string `json:"taxTotalFormatted"`
	TotalFormatted      string `json:"totalFormatted"`
	AmountPaidFormatted string `json:"amountPaidFormatted"`
	BalanceDueFormatted string `json:"balanceDueFormatted"`
	TotalInWords        string `json:"totalInWords"`
}

// InvoiceItemData represents a line item on an invoice
type InvoiceItemData struct {
	Index       int             `json:"index"` // 1-based index
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	Amount      decimal.Decimal `json:"amount"`

	// Formatted fields
	QuantityFormatted  string `json:"quantityFormatted"`
	UnitPriceFormatted string `json:"unitPriceFormatted"`
	TaxRateFormatted   string `json:"taxRateFormatted"`
	AmountFormatted    string `json:"amountFormatted"`
}

// =============================================================================
// Payslip Data
// =============================================================================

// PayslipData represents a single employee's payslip for template rendering
type PayslipData struct {
	ID         uuid.UUID       `json:"id"`
	Period     string          `json:"period"` // e.g. "2026-03"
	Employee   EmployeeInfo    `json:"employee"`
	Currency   string          `json:"currency"`
	Gross      decimal.Decimal `json:"gross"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Tax        decimal.Decimal `json:"tax"`
	Net        decimal.Decimal `json:"net"`
	Note       string          `json:"note"`
	PaidAt     *time.Time      `json:"paidAt"`

	// Formatted fields
	GrossFormatted      string `json:"grossFormatted"`
	AllowancesFormatted string `json:"allowancesFormatted"`
	DeductionsFormatted string `json:"deductionsFormatted"`
	TaxFormatted        string `json:"taxFormatted"`
	NetFormatted        string `json:"netFormatted"`
	NetInWords          string `json:"netInWords"`
	PaidAtFormatted     string `json:"paidAtFormatted"`
}

// =============================================================================
// Payroll Summary Data
// =============================================================================

// PayrollSummaryData represents a whole payroll run for template rendering
type PayrollSummaryData struct {
	ID         uuid.UUID                `json:"id"`
	Period     string                   `json:"period"`
	Currency   string                   `json:"currency"`
	Status     string                   `json:"status"`
	Lines      []PayrollSummaryLineData `json:"lines"`
	LineCount  int                      `json:"lineCount"`
	TotalGross decimal.Decimal          `json:"totalGross"`
	TotalTax   decimal.Decimal          `json:"totalTax"`
	TotalNet   decimal.Decimal          `json:"totalNet"`

	ProcessedAt *time.Time `json:"processedAt"`
	PaidAt      *time.Time `json:"paidAt"`

	// Formatted fields
	TotalGrossFormatted  string `json:"totalGrossFormatted"`
	TotalTaxFormatted    string `json:"totalTaxFormatted"`
	TotalNetFormatted    string `json:"totalNetFormatted"`
	ProcessedAtFormatted string `json:"processedAtFormatted"`
	PaidAtFormatted      string `json:"paidAtFormatted"`
}

// PayrollSummaryLineData represents one employee's row in a payroll summary
type PayrollSummaryLineData struct {
	Index        int             `json:"index"`
	EmployeeID   uuid.UUID       `json:"employeeId"`
	StaffNumber  string          `json:"staffNumber"`
	EmployeeName string          `json:"employeeName"`
	Department   string          `json:"department"`
	Gross        decimal.Decimal `json:"gross"`
	Allowances   decimal.Decimal `json:"allowances"`
	Deductions   decimal.Decimal `json:"deductions"`
	Tax          decimal.Decimal `json:"tax"`
	Net          decimal.Decimal `json:"net"`

	// Formatted fields
	GrossFormatted string `json:"grossFormatted"`
	TaxFormatted   string `json:"taxFormatted"`
	NetFormatted   string `json:"netFormatted"`
}

// =============================================================================
// Customer Statement Data
// =============================================================================

// CustomerStatementData represents a customer account statement for template rendering
type CustomerStatementData struct {
	Customer  CustomerInfo        `json:"customer"`
	Currency  string              `json:"currency"`
	Lines     []StatementLineData `json:"lines"`
	LineCount int                 `json:"lineCount"`

	TotalInvoiced    decimal.Decimal `json:"totalInvoiced"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`

	// Formatted fields
	TotalInvoicedFormatted    string `json:"totalInvoicedFormatted"`
	TotalPaidFormatted        string `json:"totalPaidFormatted"`
	TotalOutstandingFormatted string `json:"totalOutstandingFormatted"`
}

// StatementLineData represents one invoice row on a customer statement
type StatementLineData struct {
	Index      int             `json:"index"`
	Number     string          `json:"number"`
	IssueDate  time.Time       `json:"issueDate"`
	DueDate    time.Time       `json:"dueDate"`
	Status     string          `json:"status"`
	StatusText string          `json:"statusText"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	BalanceDue decimal.Decimal `json:"balanceDue"`

	// Formatted fields
	IssueDateFormatted  string `json:"issueDateFormatted"`
	DueDateFormatted    string `json:"dueDateFormatted"`
	TotalFormatted      string `json:"totalFormatted"`
	AmountPaidFormatted string `json:"amountPaidFormatted"`
	BalanceDueFormatted string `json:"balanceDueFormatted"`
}

// =============================================================================
// Common Info Types
// =============================================================================

// CustomerInfo contains customer information for printing
type CustomerInfo struct {
	ID      uuid.UUID `json:"id"`
	Code    string    `json:"code"`
	Name    string    `json:"name"`
	Contact string    `json:"contact"`
	Phone   string    `json:"phone"`
	Email   string    `json:"email"`
	Address string    `json:"address"`
	TaxID   string    `json:"taxId"`
}

// EmployeeInfo contains employee information for printing
type EmployeeInfo struct {
	ID          uuid.UUID `json:"id"`
	StaffNumber string    `json:"staffNumber"`
	Name        string    `json:"name"`
	Department  string    `json:"department"`
	JobTitle    string    `json:"jobTitle"`
	Email       string    `json:"email"`
	HireDate    time.Time `json:"hireDate"`

	// Formatted fields
	HireDateFormatted string `json:"hireDateFormatted"`
}

// =============================================================================
// Helper Functions for Data Providers
// =============================================================================

// NewDocumentData creates a new DocumentData with common fields initialized
func NewDocumentData(docType printing.DocType, docNo string) *DocumentData {
	now := time.Now()
	return &DocumentData{
		Meta: DocumentMeta{
			DocType:     docType,
			DocTypeName: docType.DisplayName(),
			DocNo:       docNo,
		},
		PrintDate:     now.Format("2006-01-02"),
		PrintDateTime: now.Format("2006-01-02 15:04:05"),
		PrintTime:     now.Format("15:04:05"),
	}
}

// FormatMoneyValue formats a decimal as money string for data providers
func FormatMoneyValue(d decimal.Decimal, currency string) string {
	return formatMoney(d, currency)
}

// AmountInWordsValue converts a decimal to check-writing words for data providers
func AmountInWordsValue(d decimal.Decimal) string {
	return amountInWords(d)
}

// StatusTextValue converts a status code to display text for data providers
func StatusTextValue(status string) string {
	return statusText(status)
}
