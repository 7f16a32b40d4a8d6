package providers

import (
	"context"
	"fmt"

	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/printing"
	"github.com/peopledesk/backend/internal/domain/shared"
	infra "github.com/peopledesk/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// statementMaxInvoices caps the number of invoices included on a statement
const statementMaxInvoices = 500

// CustomerStatementProvider implements DataProvider for the
// CUSTOMER_STATEMENT document type. The documentID is the customer ID;
// the statement lists all of the customer's invoices.
type CustomerStatementProvider struct {
	customerRepo crm.CustomerRepository
	invoiceRepo  finance.InvoiceRepository
}

// NewCustomerStatementProvider creates a new CustomerStatementProvider.
func NewCustomerStatementProvider(
	customerRepo crm.CustomerRepository,
	invoiceRepo finance.InvoiceRepository,
) *CustomerStatementProvider {
	return &CustomerStatementProvider{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
	}
}

// GetDocType returns the document type this provider handles.
func (p *CustomerStatementProvider) GetDocType() printing.DocType {
	return printing.DocTypeCustomerStatement
}

// GetData retrieves customer statement data for rendering.
func (p *CustomerStatementProvider) GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*infra.DocumentData, error) {
	customer, err := p.customerRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	filter := shared.Filter{
		Page:     1,
		PageSize: statementMaxInvoices,
		OrderBy:  "issue_date",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"customer_id": customer.ID},
	}
	invoices, err := p.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	currency := ""
	if len(invoices) > 0 {
		currency = string(invoices[0].Currency)
	}

	docData := infra.NewDocumentData(printing.DocTypeCustomerStatement, customer.Code)
	docData.Meta.Status = string(customer.Status)
	docData.Meta.StatusText = infra.StatusTextValue(string(customer.Status))
	docData.Meta.CreatedAt = customer.CreatedAt
	docData.Meta.UpdatedAt = customer.UpdatedAt

	lines := make([]infra.StatementLineData, len(invoices))
	totalInvoiced := decimal.Zero
	totalPaid := decimal.Zero
	totalOutstanding := decimal.Zero
	for i, invoice := range invoices {
		totalInvoiced = totalInvoiced.Add(invoice.Total)
		totalPaid = totalPaid.Add(invoice.AmountPaid)
		totalOutstanding = totalOutstanding.Add(invoice.BalanceDue)
		lines[i] = infra.StatementLineData{
			Index:               i + 1,
			Number:              invoice.Number,
			IssueDate:           invoice.IssueDate,
			DueDate:             invoice.DueDate,
			Status:              string(invoice.Status),
			StatusText:          infra.StatusTextValue(string(invoice.Status)),
			Total:               invoice.Total,
			AmountPaid:          invoice.AmountPaid,
			BalanceDue:          invoice.BalanceDue,
			IssueDateFormatted:  invoice.IssueDate.Format("2006-01-02"),
			DueDateFormatted:    invoice.DueDate.Format("2006-01-02"),
			TotalFormatted:      infra.FormatMoneyValue(invoice.Total, currency),
			AmountPaidFormatted: infra.FormatMoneyValue(invoice.AmountPaid, currency),
			BalanceDueFormatted: infra.FormatMoneyValue(invoice.BalanceDue, currency),
		}
	}

	docData.Document = infra.CustomerStatementData{
		Customer:                  customerInfo(customer),
		Currency:                  currency,
		Lines:                     lines,
		LineCount:                 len(lines),
		TotalInvoiced:             totalInvoiced,
		TotalPaid:                 totalPaid,
		TotalOutstanding:          totalOutstanding,
		TotalInvoicedFormatted:    infra.FormatMoneyValue(totalInvoiced, currency),
		TotalPaidFormatted:        infra.FormatMoneyValue(totalPaid, currency),
		TotalOutstandingFormatted: infra.FormatMoneyValue(totalOutstanding, currency),
	}

	return docData, nil
}
