package finance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// PayrollPaidHandler posts the salary expense journal entry when a
// payroll run is paid: debit salary expense for net pay plus withheld
// tax, credit payroll tax payable for the tax and cash for the net.
type PayrollPaidHandler struct {
	accountRepo finance.AccountRepository
	entryRepo   finance.JournalEntryRepository
	logger      *zap.Logger
}

// NewPayrollPaidHandler creates a new handler for payroll paid events
func NewPayrollPaidHandler(
	accountRepo finance.AccountRepository,
	entryRepo finance.JournalEntryRepository,
	logger *zap.Logger,
) *PayrollPaidHandler {
	return &PayrollPaidHandler{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PayrollPaidHandler) EventTypes() []string {
	return []string{hr.EventTypePayrollPaid}
}

// Handle processes a PayrollPaidEvent by posting a journal entry
func (h *PayrollPaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paidEvent, ok := event.(*hr.PayrollPaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", hr.EventTypePayrollPaid),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			hr.EventTypePayrollPaid, event.EventType())
	}

	tenantID := paidEvent.TenantID()
	reference := "PAYROLL " + paidEvent.Period

	h.logger.Info("processing payroll paid event for ledger posting",
		zap.String("run_id", paidEvent.AggregateID().String()),
		zap.String("period", paidEvent.Period),
		zap.String("total_net", paidEvent.TotalNet.String()),
		zap.String("total_tax", paidEvent.TotalTax.String()),
	)

	// Idempotency check: skip if an entry already references the run
	filter := shared.DefaultFilter()
	filter.Filters["reference"] = reference
	existing, err := h.entryRepo.Count(ctx, tenantID, filter)
	if err != nil {
		h.logger.Error("failed to check existing journal entry",
			zap.String("period", paidEvent.Period),
			zap.Error(err),
		)
		return fmt.Errorf("failed to check existing journal entry: %w", err)
	}
	if existing > 0 {
		h.logger.Warn("journal entry already exists for payroll run, skipping",
			zap.String("period", paidEvent.Period),
		)
		return nil // Idempotent - already processed
	}

	expense := paidEvent.TotalNet.Add(paidEvent.TotalTax)
	if expense.IsZero() {
		h.logger.Info("skipping ledger posting - payroll run total is zero",
			zap.String("period", paidEvent.Period),
		)
		return nil
	}

	salaryExpense, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodeSalaryExpense, "Salary Expense", finance.AccountTypeExpense)
	if err != nil {
		return fmt.Errorf("failed to resolve salary expense account: %w", err)
	}
	cash, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodeCash, "Cash", finance.AccountTypeAsset)
	if err != nil {
		return fmt.Errorf("failed to resolve cash account: %w", err)
	}

	lines := []finance.JournalLineInput{
		{AccountID: salaryExpense.ID, Description: "Salaries for " + paidEvent.Period, Debit: expense},
		{AccountID: cash.ID, Description: "Net pay disbursed for " + paidEvent.Period, Credit: paidEvent.TotalNet},
	}

	if paidEvent.TotalTax.IsPositive() {
		taxPayable, err := ensureAccount(ctx, h.accountRepo, tenantID, AccountCodePayrollTaxOwed, "Payroll Tax Payable", finance.AccountTypeLiability)
		if err != nil {
			return fmt.Errorf("failed to resolve payroll tax account: %w", err)
		}
		lines = append(lines, finance.JournalLineInput{
			AccountID:   taxPayable.ID,
			Description: "Tax withheld for " + paidEvent.Period,
			Credit:      paidEvent.TotalTax,
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
		"Payroll "+paidEvent.Period+" paid",
		lines,
	)
	if err != nil {
		h.logger.Error("failed to build journal entry",
			zap.String("period", paidEvent.Period),
			zap.Error(err),
		)
		return fmt.Errorf("failed to build journal entry: %w", err)
	}

	if err := entry.SetReference(reference); err != nil {
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

	h.logger.Info("salary expense journal entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("entry_number", entry.Number),
		zap.String("period", paidEvent.Period),
		zap.String("total_debit", entry.TotalDebit.String()),
	)

	return nil
}

// Ensure PayrollPaidHandler implements shared.EventHandler
var _ shared.EventHandler = (*PayrollPaidHandler)(nil)
