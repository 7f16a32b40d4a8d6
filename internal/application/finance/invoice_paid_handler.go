package finance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// InvoicePaidHandler posts the revenue journal entry when an invoice
// is fully paid: debit cash for the total, credit sales revenue for the
// subtotal and sales tax payable for the tax.
type InvoicePaidHandler struct {
	accountRepo finance.AccountRepository
	entryRepo   finance.JournalEntryRepository
	logger      *zap.Logger
}

// NewInvoicePaidHandler creates a new handler for invoice paid events
func NewInvoicePaidHandler(
	accountRepo finance.AccountRepository,
	entryRepo finance.JournalEntryRepository,
	logger *zap.Logger,
) *InvoicePaidHandler {
	return &InvoicePaidHandler{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoicePaidHandler) EventTypes() []string {
	return []string{finance.EventTypeInvoicePaid}
}

// Handle processes an InvoicePaidEvent by posting a journal entry
func (h *InvoicePaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paidEvent, ok := event.(*finance.InvoicePaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", finance.EventTypeInvoicePaid),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			finance.EventTypeInvoicePaid, event.EventType())
	}

	tenantID := paidEvent.TenantID()

	h.logger.Info("processing invoice paid event for ledger posting",
		zap.String("invoice_id", paidEvent.AggregateID().String()),
		zap.String("invoice_number", paidEvent.Number),
		zap.String("total", paidEvent.Total.String()),
	)

	// Idempotency check: skip if an entry already references the invoice
	filter := shared.DefaultFilter()
	filter.Filters["reference"] = paidEvent.Number
	existing, err := h.entryRepo.Count(ctx, tenantID, filter)
	if err != nil {
		h.logger.Error("failed to check existing journal entry",
			zap.String("invoice_number", paidEvent.Number),
			zap.Error(err),
		)
		return fmt.Errorf("failed to check existing journal entry: %w", err)
	}
	if existing > 0 {
		h.logger.Warn("journal entry already exists for invoice, skipping",
			zap.String("invoice_number", paidEvent.Number),
		)
		return nil // Idempotent - already processed
	}

	if paidEvent.Total.IsZero() {
		h.logger.Info("skipping ledger posting - invoice total is zero",
			zap.String("invoice_number", paidEvent.Number),
		)
		return nil
	}

	cash, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodeCash, "Cash", finance.AccountTypeAsset)
	if err != nil {
		return fmt.Errorf("failed to resolve cash account: %w", err)
	}
	revenue, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodeSalesRevenue, "Sales Revenue", finance.AccountTypeIncome)
	if err != nil {
		return fmt.Errorf("failed to resolve revenue account: %w", err)
	}

	lines := []finance.JournalLineInput{
		{AccountID: cash.ID, Description: "Payment for invoice " + paidEvent.Number, Debit: paidEvent.Total},
		{AccountID: revenue.ID, Description: "Revenue for invoice " + paidEvent.Number, Credit: paidEvent.Subtotal},
	}

	if paidEvent.TaxTotal.IsPositive() {
		taxPayable, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodeSalesTaxPayable, "Sales Tax Payable", finance.AccountTypeLiability)
		if err != nil {
			return fmt.Errorf("failed to resolve tax payable account: %w", err)
		}
		lines = append(lines, finance.JournalLineInput{
			AccountID:   taxPayable.ID,
			Description: "Tax collected on invoice " + paidEvent.Number,
			Credit:      paidEvent.TaxTotal,
		})
	}

	number, err := h.entryRepo.NextNumber(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("failed to generate entry number: %w", err)
	}

	entry, err := finance.NewJournalEntry(
		tenantID,
		number,
		time.Now(),
		valueobject.Currency(paidEvent.Currency),
		"Invoice "+paidEvent.Number+" paid",
		lines,
	)
	if err != nil {
		h.logger.Error("failed to build journal entry",
			zap.String("invoice_number", paidEvent.Number),
			zap.Error(err),
		)
		return fmt.Errorf("failed to build journal entry: %w", err)
	}

	if err := entry.SetReference(paidEvent.Number); err != nil {
		return err
	}
	if err := entry.Post(); err != nil {
		return err
	}

	if err := h.entryRepo.Save(ctx, entry); err != nil {
		h.logger.Error("failed to save journal entry",
			zap.String("entry_number", entry.Number),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save journal entry: %w", err)
	}

	h.logger.Info("revenue journal entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("entry_number", entry.Number),
		zap.String("invoice_number", paidEvent.Number),
		zap.String("total_debit", entry.TotalDebit.String()),
	)

	return nil
}

// Ensure InvoicePaidHandler implements shared.EventHandler
var _ shared.EventHandler = (*InvoicePaidHandler)(nil)
