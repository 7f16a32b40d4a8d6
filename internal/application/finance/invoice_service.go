package finance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/crm"
	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// InvoiceService handles accounts-receivable invoice operations
type InvoiceService struct {
	invoiceRepo  finance.InvoiceRepository
	customerRepo crm.CustomerRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	customerRepo crm.CustomerRepository,
	outboxRepo shared.OutboxRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// InvoiceItemInput contains input for an invoice line
type InvoiceItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreateInvoiceInput contains input for creating an invoice
type CreateInvoiceInput struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Number     string // Generated from the tenant sequence when empty
	Currency   string
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
	Items      []InvoiceItemInput
}

// UpdateInvoiceInput contains input for updating a draft invoice
type UpdateInvoiceInput struct {
	TenantID   uuid.UUID
	ID         uuid.UUID
	CustomerID uuid.UUID
	IssueDate  time.Time
	DueDate    time.Time
	Notes      string
}

// RecordPaymentInput contains input for recording a payment
type RecordPaymentInput struct {
	TenantID uuid.UUID
	ID       uuid.UUID
	Amount   decimal.Decimal
}

// InvoiceItemDTO represents an invoice line in responses
type InvoiceItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	LineTotal   decimal.Decimal `json:"line_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Amount      decimal.Decimal `json:"amount"`
	SortOrder   int             `json:"sort_order"`
}

// InvoiceDTO represents an invoice in responses
type InvoiceDTO struct {
	ID         uuid.UUID        `json:"id"`
	TenantID   uuid.UUID        `json:"tenant_id"`
	Number     string           `json:"number"`
	CustomerID uuid.UUID        `json:"customer_id"`
	Status     string           `json:"status"`
	Currency   string           `json:"currency"`
	IssueDate  time.Time        `json:"issue_date"`
	DueDate    time.Time        `json:"due_date"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TaxTotal   decimal.Decimal  `json:"tax_total"`
	Total      decimal.Decimal  `json:"total"`
	AmountPaid decimal.Decimal  `json:"amount_paid"`
	BalanceDue decimal.Decimal  `json:"balance_due"`
	Notes      string           `json:"notes,omitempty"`
	SentAt     *time.Time       `json:"sent_at,omitempty"`
	PaidAt     *time.Time       `json:"paid_at,omitempty"`
	Items      []InvoiceItemDTO `json:"items"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Version    int              `json:"version"`
}

// InvoiceFilter represents filter for querying invoices
type InvoiceFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	Status     string
	CustomerID *uuid.UUID
}

// InvoiceListResult represents a paginated invoice list
type InvoiceListResult struct {
	Invoices   []InvoiceDTO `json:"invoices"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// Create creates a draft invoice with its lines
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error) {
	s.logger.Info("Creating invoice",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("customer_id", input.CustomerID.String()))

	customer, err := s.customerRepo.FindByIDForTenant(ctx, input.TenantID, input.CustomerID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		s.logger.Error("Failed to find customer", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find customer")
	}
	if !customer.IsActive() {
		return nil, shared.NewDomainError("CUSTOMER_NOT_ACTIVE", "Invoices can only be issued to active customers")
	}

	number := input.Number
	if number == "" {
		number, err = s.invoiceRepo.NextNumber(ctx, input.TenantID)
		if err != nil {
			s.logger.Error("Failed to generate invoice number", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate invoice number")
		}
	} else {
		existing, err := s.invoiceRepo.FindByNumber(ctx, input.TenantID, number)
		if err != nil && err != shared.ErrNotFound {
			s.logger.Error("Failed to check invoice number", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check invoice number")
		}
		if existing != nil {
			return nil, shared.NewDomainError("NUMBER_EXISTS", "Invoice number already exists")
		}
	}

	invoice, err := finance.NewInvoice(
		input.TenantID,
		input.CustomerID,
		number,
		valueobject.Currency(input.Currency),
		input.IssueDate,
		input.DueDate,
	)
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		if _, err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice, item.TaxRate); err != nil {
			return nil, err
		}
	}

	if input.Notes != "" {
		if err := invoice.UpdateDetails(invoice.CustomerID, invoice.IssueDate, invoice.DueDate, input.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	if err := s.publishEvents(ctx, invoice); err != nil {
		s.logger.Error("Failed to publish invoice events", zap.Error(err))
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))

	return toInvoiceDTO(invoice), nil
}

// GetByID retrieves an invoice by ID within a tenant
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceDTO(invoice), nil
}

// List retrieves a paginated list of invoices
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (*InvoiceListResult, error) {
	sharedFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		sharedFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		sharedFilter.PageSize = filter.PageSize
	}
	sharedFilter.Search = filter.Keyword
	if filter.Status != "" {
		sharedFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		sharedFilter.Filters["customer_id"] = *filter.CustomerID
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list invoices")
	}

	total, err := s.invoiceRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count invoices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count invoices")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = *toInvoiceDTO(&invoices[i])
	}

	return &InvoiceListResult{
		Invoices:   dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates a draft invoice's details
func (s *InvoiceService) Update(ctx context.Context, input UpdateInvoiceInput) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.CustomerID != invoice.CustomerID {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, input.TenantID, input.CustomerID)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
			}
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find customer")
		}
		if !customer.IsActive() {
			return nil, shared.NewDomainError("CUSTOMER_NOT_ACTIVE", "Invoices can only be issued to active customers")
		}
	}

	if err := invoice.UpdateDetails(input.CustomerID, input.IssueDate, input.DueDate, input.Notes); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to update invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update invoice")
	}

	return toInvoiceDTO(invoice), nil
}

// AddItem adds a line to a draft invoice
func (s *InvoiceService) AddItem(ctx context.Context, tenantID, id uuid.UUID, input InvoiceItemInput) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if _, err := invoice.AddItem(input.Description, input.Quantity, input.UnitPrice, input.TaxRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to add invoice item", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	return toInvoiceDTO(invoice), nil
}

// UpdateItem updates a line on a draft invoice
func (s *InvoiceService) UpdateItem(ctx context.Context, tenantID, id, itemID uuid.UUID, input InvoiceItemInput) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.UpdateItem(itemID, input.Description, input.Quantity, input.UnitPrice, input.TaxRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to update invoice item", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	return toInvoiceDTO(invoice), nil
}

// RemoveItem removes a line from a draft invoice
func (s *InvoiceService) RemoveItem(ctx context.Context, tenantID, id, itemID uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to remove invoice item", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	return toInvoiceDTO(invoice), nil
}

// Send marks an invoice as sent to the customer
func (s *InvoiceService) Send(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Send(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to send invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	if err := s.publishEvents(ctx, invoice); err != nil {
		s.logger.Error("Failed to publish invoice events", zap.Error(err))
	}

	s.logger.Info("Invoice sent",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number))

	return toInvoiceDTO(invoice), nil
}

// RecordPayment applies a payment against an invoice
func (s *InvoiceService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RecordPayment(input.Amount); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to record invoice payment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	if err := s.publishEvents(ctx, invoice); err != nil {
		s.logger.Error("Failed to publish invoice events", zap.Error(err))
	}

	s.logger.Info("Invoice payment recorded",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("number", invoice.Number),
		zap.String("amount", input.Amount.String()),
		zap.String("balance_due", invoice.BalanceDue.String()))

	return toInvoiceDTO(invoice), nil
}

// Cancel cancels an invoice
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to cancel invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save invoice")
	}

	if err := s.publishEvents(ctx, invoice); err != nil {
		s.logger.Error("Failed to publish invoice events", zap.Error(err))
	}

	s.logger.Info("Invoice cancelled", zap.String("invoice_id", id.String()))

	return toInvoiceDTO(invoice), nil
}

// Delete deletes a draft invoice
func (s *InvoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	invoice, err := s.findInvoice(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if invoice.Status != finance.InvoiceStatusDraft {
		return shared.NewDomainError("INVOICE_NOT_DRAFT", "Only draft invoices can be deleted")
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete invoice", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete invoice")
	}

	s.logger.Info("Invoice deleted",
		zap.String("invoice_id", id.String()),
		zap.String("number", invoice.Number))

	return nil
}

// MarkOverdueInvoices flags sent and partially paid invoices past their
// due date. Called by the scheduler's nightly sweep. Returns the number
// of invoices flagged.
func (s *InvoiceService) MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	invoices, err := s.invoiceRepo.FindDueBefore(ctx, asOf)
	if err != nil {
		s.logger.Error("Failed to find due invoices", zap.Error(err))
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to find due invoices")
	}

	flagged := 0
	for i := range invoices {
		invoice := &invoices[i]
		if err := invoice.MarkOverdue(asOf); err != nil {
			continue
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.publishEvents(ctx, invoice); err != nil {
			s.logger.Error("Failed to publish invoice events", zap.Error(err))
		}
		flagged++
	}

	if flagged > 0 {
		s.logger.Info("Overdue invoices flagged", zap.Int("count", flagged))
	}

	return flagged, nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		s.logger.Error("Failed to find invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find invoice")
	}
	return invoice, nil
}

// publishEvents writes the invoice's domain events to the outbox
func (s *InvoiceService) publishEvents(ctx context.Context, invoice *finance.Invoice) error {
	events := invoice.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		entries = append(entries, shared.NewOutboxEntry(invoice.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	invoice.ClearDomainEvents()
	return nil
}

// toInvoiceDTO converts a domain Invoice to InvoiceDTO
func toInvoiceDTO(invoice *finance.Invoice) *InvoiceDTO {
	items := make([]InvoiceItemDTO, len(invoice.Items))
	for i, item := range invoice.Items {
		items[i] = InvoiceItemDTO{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			LineTotal:   item.LineTotal,
			TaxAmount:   item.TaxAmount,
			Amount:      item.Amount,
			SortOrder:   item.SortOrder,
		}
	}

	return &InvoiceDTO{
		ID:         invoice.ID,
		TenantID:   invoice.TenantID,
		Number:     invoice.Number,
		CustomerID: invoice.CustomerID,
		Status:     string(invoice.Status),
		Currency:   string(invoice.Currency),
		IssueDate:  invoice.IssueDate,
		DueDate:    invoice.DueDate,
		Subtotal:   invoice.Subtotal,
		TaxTotal:   invoice.TaxTotal,
		Total:      invoice.Total,
		AmountPaid: invoice.AmountPaid,
		BalanceDue: invoice.BalanceDue,
		Notes:      invoice.Notes,
		SentAt:     invoice.SentAt,
		PaidAt:     invoice.PaidAt,
		Items:      items,
		CreatedAt:  invoice.CreatedAt,
		UpdatedAt:  invoice.UpdatedAt,
		Version:    invoice.Version,
	}
}
