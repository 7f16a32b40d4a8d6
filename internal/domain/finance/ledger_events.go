package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeAccount      = "LedgerAccount"
	AggregateTypeJournalEntry = "JournalEntry"
)

// Event type constants
const (
	EventTypeAccountCreated       = "LedgerAccountCreated"
	EventTypeJournalEntryCreated  = "JournalEntryCreated"
	EventTypeJournalEntryPosted   = "JournalEntryPosted"
	EventTypeJournalEntryReversed = "JournalEntryReversed"
)

// AccountCreatedEvent is published when a ledger account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"account_type"`
}

// NewAccountCreatedEvent creates a new AccountCreatedEvent
func NewAccountCreatedEvent(account *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, AggregateTypeAccount, account.ID, account.TenantID),
		Code:            account.Code,
		Name:            account.Name,
		AccountType:     account.Type,
	}
}

// JournalEntryCreatedEvent is published when a journal entry is created
type JournalEntryCreatedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	TotalDebit decimal.Decimal `json:"total_debit"`
}

// NewJournalEntryCreatedEvent creates a new JournalEntryCreatedEvent
func NewJournalEntryCreatedEvent(entry *JournalEntry) *JournalEntryCreatedEvent {
	return &JournalEntryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryCreated, AggregateTypeJournalEntry, entry.ID, entry.TenantID),
		Number:          entry.Number,
		TotalDebit:      entry.TotalDebit,
	}
}

// JournalEntryPostedEvent is published when a journal entry is posted
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	Number     string          `json:"number"`
	Reference  string          `json:"reference"`
	TotalDebit decimal.Decimal `json:"total_debit"`
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(entry *JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, AggregateTypeJournalEntry, entry.ID, entry.TenantID),
		Number:          entry.Number,
		Reference:       entry.Reference,
		TotalDebit:      entry.TotalDebit,
	}
}

// JournalEntryReversedEvent is published when a journal entry is reversed
type JournalEntryReversedEvent struct {
	shared.BaseDomainEvent
	Number     string    `json:"number"`
	ReversalID uuid.UUID `json:"reversal_id"`
}

// NewJournalEntryReversedEvent creates a new JournalEntryReversedEvent
func NewJournalEntryReversedEvent(entry *JournalEntry, reversalID uuid.UUID) *JournalEntryReversedEvent {
	return &JournalEntryReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryReversed, AggregateTypeJournalEntry, entry.ID, entry.TenantID),
		Number:          entry.Number,
		ReversalID:      reversalID,
	}
}
