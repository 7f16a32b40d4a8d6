package providers

import (
	"context"
	"fmt"

	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/printing"
	infra "github.com/peopledesk/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
)

// InvoiceProvider implements DataProvider for the INVOICE document type.
// It loads invoice data from the repository for use in print templates.
type InvoiceProvider struct {
	invoiceRepo  finance.InvoiceRepository
	customerRepo crm.CustomerRepository
}

// NewInvoiceProvider creates a new InvoiceProvider.
func NewInvoiceProvider(
	invoiceRepo finance.InvoiceRepository,
	customerRepo crm.CustomerRepository,
) *InvoiceProvider {
	return &InvoiceProvider{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
	}
}

// GetDocType returns the document type this provider handles.
func (p *InvoiceProvider) GetDocType() printing.DocType {
	return printing.DocTypeInvoice
}

// GetData retrieves invoice data for rendering.
func (p *InvoiceProvider) GetData(ctx context.Context, tenantID, documentID uuid.UUID) (*infra.DocumentData, error) {
	invoice, err := p.invoiceRepo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	customer, err := p.customerRepo.FindByIDForTenant(ctx, tenantID, invoice.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	currency := string(invoice.Currency)

	docData := infra.NewDocumentData(printing.DocTypeInvoice, invoice.Number)
	docData.Meta.Status = string(invoice.Status)
	docData.Meta.StatusText = infra.StatusTextValue(string(invoice.Status))
	docData.Meta.CreatedAt = invoice.CreatedAt
	docData.Meta.UpdatedAt = invoice.UpdatedAt
	docData.Meta.Remark = invoice.Notes

	items := make([]infra.InvoiceItemData, len(invoice.Items))
	for i, item := range invoice.Items {
		items[i] = infra.InvoiceItemData{
			Index:              i + 1,
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TaxRate:            item.TaxRate,
			LineTotal:          item.LineTotal,
			TaxAmount:          item.TaxAmount,
			Amount:             item.Amount,
			QuantityFormatted:  item.Quantity.String(),
			UnitPriceFormatted: infra.FormatMoneyValue(item.UnitPrice, currency),
			TaxRateFormatted:   item.TaxRate.StringFixed(2) + "%",
			AmountFormatted:    infra.FormatMoneyValue(item.Amount, currency),
		}
	}

	docData.Document = infra.InvoiceData{
		ID:                  invoice.ID,
		Number:              invoice.Number,
		Customer:            customerInfo(customer),
		Items:               items,
		Currency:            currency,
		IssueDate:           invoice.IssueDate,
		DueDate:             invoice.DueDate,
		Subtotal:            invoice.Subtotal,
		TaxTotal:            invoice.TaxTotal,
		Total:               invoice.Total,
		AmountPaid:          invoice.AmountPaid,
		BalanceDue:          invoice.BalanceDue,
		ItemCount:           len(invoice.Items),
		Status:              string(invoice.Status),
		Notes:               invoice.Notes,
		IssueDateFormatted:  invoice.IssueDate.Format("2006-01-02"),
		DueDateFormatted:    invoice.DueDate.Format("2006-01-02"),
		SubtotalFormatted:   infra.FormatMoneyValue(invoice.Subtotal, currency),
		TaxTotalFormatted:   infra.FormatMoneyValue(invoice.TaxTotal, currency),
		TotalFormatted:      infra.FormatMoneyValue(invoice.Total, currency),
		AmountPaidFormatted: infra.FormatMoneyValue(invoice.AmountPaid, currency),
		BalanceDueFormatted: infra.FormatMoneyValue(invoice.BalanceDue, currency),
		TotalInWords:        infra.AmountInWordsValue(invoice.Total),
	}

	return docData, nil
}

// customerInfo maps a customer aggregate to the print-friendly shape
func customerInfo(customer *crm.Customer) infra.CustomerInfo {
	return infra.CustomerInfo{
		ID:      customer.ID,
		Code:    customer.Code,
		Name:    customer.Name,
		Contact: customer.ContactName,
		Phone:   customer.Phone,
		Email:   customer.Email,
		Address: customer.Address.Oneline(),
		TaxID:   customer.TaxID,
	}
}
