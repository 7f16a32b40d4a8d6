package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// AccountType classifies a ledger account
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalanceDebit reports whether the account type carries a debit
// normal balance. Asset and expense accounts increase on the debit side.
func (t AccountType) NormalBalanceDebit() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// Account is a ledger account in the chart of accounts
type Account struct {
	shared.TenantAggregateRoot
	Code     string      `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_tenant_code,priority:2"`
	Name     string      `gorm:"type:varchar(200);not null"`
	Type     AccountType `gorm:"type:varchar(20);not null;index"`
	IsActive bool        `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "ledger_accounts"
}

// NewAccount creates a new ledger account
func NewAccount(tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error) {
	if err := validateAccountCode(code); err != nil {
		return nil, err
	}
	if name == "" || len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name must be between 1 and 200 characters")
	}
	if !accountType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_TYPE", "Account type must be asset, liability, equity, income, or expense")
	}

	account := &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Type:                accountType,
		IsActive:            true,
	}

	account.AddDomainEvent(NewAccountCreatedEvent(account))

	return account, nil
}

// Rename updates the account's display name. The code and type are
// immutable once entries reference the account.
func (a *Account) Rename(name string) error {
	if name == "" || len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Account name must be between 1 and 200 characters")
	}

	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// Activate activates the account
func (a *Account) Activate() {
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// Deactivate deactivates the account so new entries cannot post to it
func (a *Account) Deactivate() {
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

func validateAccountCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot be empty")
	}
	if len(code) > 20 {
		return shared.NewDomainError("INVALID_CODE", "Account code cannot exceed 20 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.') {
			return shared.NewDomainError("INVALID_CODE", "Account code can only contain letters, numbers, hyphens, and dots")
		}
	}
	return nil
}

// JournalEntryStatus represents the status of a journal entry
type JournalEntryStatus string

const (
	JournalEntryStatusDraft    JournalEntryStatus = "draft"
	JournalEntryStatusPosted   JournalEntryStatus = "posted"
	JournalEntryStatusReversed JournalEntryStatus = "reversed"
)

// JournalLine is a single debit or credit leg of a journal entry.
// Exactly one of Debit or Credit is non-zero.
type JournalLine struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	JournalEntryID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:varchar(500)"`
	Debit          decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
	Credit         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (JournalLine) TableName() string {
	return "journal_lines"
}

// JournalEntry is a balanced set of debit and credit lines posted to
// the ledger. An entry is accepted only when total debits equal total
// credits.
type JournalEntry struct {
	shared.TenantAggregateRoot
	Number      string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_entry_tenant_number,priority:2"`
	Status      JournalEntryStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
	EntryDate   time.Time            `gorm:"not null;index"`
	Memo        string               `gorm:"type:varchar(500)"`
	Reference   string               `gorm:"type:varchar(100);index"` // Source document, e.g. invoice number or payroll run
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	TotalDebit  decimal.Decimal      `gorm:"type:decimal(20,2);not null;default:0"`
	TotalCredit decimal.Decimal      `gorm:"type:decimal(20,2);not null;default:0"`
	PostedAt    *time.Time           `gorm:""`
	ReversedAt  *time.Time           `gorm:""`
	ReversesID  *uuid.UUID           `gorm:"type:uuid"` // Set on the reversing entry, points at the original
	Lines       []JournalLine        `gorm:"foreignKey:JournalEntryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (JournalEntry) TableName() string {
	return "journal_entries"
}

// JournalLineInput carries one leg of a new entry
type JournalLineInput struct {
	AccountID   uuid.UUID
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// NewJournalEntry creates a draft journal entry from balanced lines
func NewJournalEntry(tenantID uuid.UUID, number string, entryDate time.Time, currency valueobject.Currency, memo string, lines []JournalLineInput) (*JournalEntry, error) {
	if number == "" || len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Entry number must be between 1 and 50 characters")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if entryDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ENTRY_DATE", "Entry date is required")
	}

	entry := &JournalEntry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              strings.ToUpper(number),
		Status:              JournalEntryStatusDraft,
		EntryDate:           entryDate,
		Memo:                memo,
		Currency:            valueobject.Currency(strings.ToUpper(string(currency))),
	}

	if err := entry.setLines(lines); err != nil {
		return nil, err
	}

	entry.AddDomainEvent(NewJournalEntryCreatedEvent(entry))

	return entry, nil
}

// SetReference links the entry to a source document
func (e *JournalEntry) SetReference(reference string) error {
	if len(reference) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}

	e.Reference = reference
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// ReplaceLines replaces the lines of a draft entry
func (e *JournalEntry) ReplaceLines(lines []JournalLineInput) error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewDomainError("ENTRY_NOT_DRAFT", "Only draft entries can be modified")
	}

	if err := e.setLines(lines); err != nil {
		return err
	}

	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

func (e *JournalEntry) setLines(lines []JournalLineInput) error {
	if len(lines) < 2 {
		return shared.NewDomainError("TOO_FEW_LINES", "A journal entry requires at least two lines")
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	built := make([]JournalLine, 0, len(lines))

	for _, line := range lines {
		if line.AccountID == uuid.Nil {
			return shared.NewDomainError("INVALID_ACCOUNT", "Journal line account is required")
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Journal line amounts cannot be negative")
		}
		debitSet := line.Debit.IsPositive()
		creditSet := line.Credit.IsPositive()
		if debitSet == creditSet {
			return shared.NewDomainError("INVALID_LINE", "Each journal line must carry either a debit or a credit, not both")
		}

		built = append(built, JournalLine{
			ID:             uuid.New(),
			JournalEntryID: e.ID,
			AccountID:      line.AccountID,
			Description:    line.Description,
			Debit:          line.Debit.Round(2),
			Credit:         line.Credit.Round(2),
		})
		totalDebit = totalDebit.Add(line.Debit.Round(2))
		totalCredit = totalCredit.Add(line.Credit.Round(2))
	}

	if !totalDebit.Equal(totalCredit) {
		return shared.ErrUnbalancedEntry
	}

	e.Lines = built
	e.TotalDebit = totalDebit
	e.TotalCredit = totalCredit

	return nil
}

// Post posts the entry to the ledger. Posted entries are immutable.
func (e *JournalEntry) Post() error {
	if e.Status != JournalEntryStatusDraft {
		return shared.NewDomainError("ENTRY_NOT_DRAFT", "Only draft entries can be posted")
	}
	if !e.TotalDebit.Equal(e.TotalCredit) {
		return shared.ErrUnbalancedEntry
	}

	now := time.Now()
	e.Status = JournalEntryStatusPosted
	e.PostedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewJournalEntryPostedEvent(e))

	return nil
}

// Reverse builds a reversing entry with debits and credits swapped and
// marks this entry reversed. The reversing entry is returned as a draft
// and must be posted by the caller.
func (e *JournalEntry) Reverse(number string, entryDate time.Time) (*JournalEntry, error) {
	if e.Status != JournalEntryStatusPosted {
		return nil, shared.NewDomainError("ENTRY_NOT_POSTED", "Only posted entries can be reversed")
	}

	reversedLines := make([]JournalLineInput, 0, len(e.Lines))
	for _, line := range e.Lines {
		reversedLines = append(reversedLines, JournalLineInput{
			AccountID:   line.AccountID,
			Description: line.Description,
			Debit:       line.Credit,
			Credit:      line.Debit,
		})
	}

	reversal, err := NewJournalEntry(e.TenantID, number, entryDate, e.Currency, "Reversal of "+e.Number, reversedLines)
	if err != nil {
		return nil, err
	}
	reversal.ReversesID = &e.ID
	reversal.Reference = e.Reference

	now := time.Now()
	e.Status = JournalEntryStatusReversed
	e.ReversedAt = &now
	e.UpdatedAt = now
	e.IncrementVersion()

	e.AddDomainEvent(NewJournalEntryReversedEvent(e, reversal.ID))

	return reversal, nil
}

// IsPosted reports whether the entry has been posted
func (e *JournalEntry) IsPosted() bool {
	return e.Status == JournalEntryStatusPosted
}
