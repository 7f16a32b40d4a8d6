package finance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindAllForTenant finds invoices for a tenant matching the filter.
	// Filter supports "status" and "customer_id" keys plus a search
	// keyword over the invoice number.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindDueBefore finds sent or partially paid invoices whose due
	// date is before the given time. Used by the overdue sweep.
	FindDueBefore(ctx context.Context, asOf time.Time) ([]Invoice, error)

	// NextNumber reserves the next invoice number for a tenant
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Save creates or updates an invoice with its items
	Save(ctx context.Context, invoice *Invoice) error

	// Delete deletes an invoice and its items
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)

	// FindByIDForTenant finds a vendor by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)

	// FindByCode finds a vendor by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Vendor, error)

	// FindAllForTenant finds vendors for a tenant matching the filter.
	// Filter supports a "status" key plus a search keyword over code,
	// name and email.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Vendor, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error

	// Delete deletes a vendor
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts vendors for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByCode checks whether a code is taken within a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}

// AccountRepository defines the interface for ledger account persistence
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByIDForTenant finds an account by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)

	// FindByCode finds an account by code within a tenant
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)

	// FindAllForTenant finds accounts for a tenant, optionally filtered
	// by a "type" key, ordered by code
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete deletes an account. Fails if journal lines reference it.
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode checks whether a code is taken within a tenant
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)

	// HasEntries checks whether any journal line references the account
	HasEntries(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// JournalEntryRepository defines the interface for journal entry persistence
type JournalEntryRepository interface {
	// FindByID finds a journal entry by ID with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*JournalEntry, error)

	// FindByIDForTenant finds a journal entry by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntry, error)

	// FindByNumber finds a journal entry by number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*JournalEntry, error)

	// FindAllForTenant finds journal entries for a tenant matching the
	// filter. Filter supports "status" and "reference" keys.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]JournalEntry, error)

	// NextNumber reserves the next entry number for a tenant
	NextNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Save creates or updates a journal entry with its lines
	Save(ctx context.Context, entry *JournalEntry) error

	// Count counts journal entries for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// SumPostedByAccount sums posted debit and credit totals per
	// account for entries dated on or before asOf. Feeds the trial
	// balance and balance sheet.
	SumPostedByAccount(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AccountBalance, error)
}
