package finance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// LedgerService handles the chart of accounts, journal entries and the
// financial reports built from posted entries
type LedgerService struct {
	accountRepo finance.AccountRepository
	entryRepo   finance.JournalEntryRepository
	outboxRepo  shared.OutboxRepository
	logger      *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	accountRepo finance.AccountRepository,
	entryRepo finance.JournalEntryRepository,
	outboxRepo shared.OutboxRepository,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		outboxRepo:  outboxRepo,
		logger:      logger,
	}
}

// CreateAccountInput contains input for creating a ledger account
type CreateAccountInput struct {
	TenantID uuid.UUID
	Code     string
	Name     string
	Type     string
}

// AccountDTO represents a ledger account in responses
type AccountDTO struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JournalLineInputDTO carries one leg of a new journal entry
type JournalLineInputDTO struct {
	AccountID   uuid.UUID
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// CreateJournalEntryInput contains input for creating a journal entry
type CreateJournalEntryInput struct {
	TenantID  uuid.UUID
	Number    string // Generated from the tenant sequence when empty
	EntryDate time.Time
	Currency  string
	Memo      string
	Reference string
	Lines     []JournalLineInputDTO
	AutoPost  bool
}

// JournalLineDTO represents a journal line in responses
type JournalLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"account_id"`
	Description string          `json:"description,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// JournalEntryDTO represents a journal entry in responses
type JournalEntryDTO struct {
	ID          uuid.UUID        `json:"id"`
	TenantID    uuid.UUID        `json:"tenant_id"`
	Number      string           `json:"number"`
	Status      string           `json:"status"`
	EntryDate   time.Time        `json:"entry_date"`
	Memo        string           `json:"memo,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	Currency    string           `json:"currency"`
	TotalDebit  decimal.Decimal  `json:"total_debit"`
	TotalCredit decimal.Decimal  `json:"total_credit"`
	PostedAt    *time.Time       `json:"posted_at,omitempty"`
	ReversedAt  *time.Time       `json:"reversed_at,omitempty"`
	ReversesID  *uuid.UUID       `json:"reverses_id,omitempty"`
	Lines       []JournalLineDTO `json:"lines"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// JournalEntryFilter represents filter for querying journal entries
type JournalEntryFilter struct {
	Page      int
	PageSize  int
	Status    string
	Reference string
}

// JournalEntryListResult represents a paginated journal entry list
type JournalEntryListResult struct {
	Entries    []JournalEntryDTO `json:"entries"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// CreateAccount adds an account to the tenant's chart of accounts
func (s *LedgerService) CreateAccount(ctx context.Context, input CreateAccountInput) (*AccountDTO, error) {
	s.logger.Info("Creating ledger account",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("code", input.Code))

	exists, err := s.accountRepo.ExistsByCode(ctx, input.TenantID, input.Code)
	if err != nil {
		s.logger.Error("Failed to check account code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check code availability")
	}
	if exists {
		return nil, shared.NewDomainError("CODE_EXISTS", "Account code already exists")
	}

	account, err := finance.NewAccount(input.TenantID, input.Code, input.Name, finance.AccountType(input.Type))
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	s.logger.Info("Ledger account created",
		zap.String("account_id", account.ID.String()),
		zap.String("code", account.Code))

	return toAccountDTO(account), nil
}

// GetAccount retrieves an account by ID within a tenant
func (s *LedgerService) GetAccount(ctx context.Context, tenantID, id uuid.UUID) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toAccountDTO(account), nil
}

// ListAccounts retrieves the chart of accounts, optionally filtered by type
func (s *LedgerService) ListAccounts(ctx context.Context, tenantID uuid.UUID, accountType string) ([]AccountDTO, error) {
	filter := shared.DefaultFilter()
	if accountType != "" {
		filter.Filters["type"] = accountType
	}

	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list accounts")
	}

	dtos := make([]AccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = *toAccountDTO(&accounts[i])
	}
	return dtos, nil
}

// RenameAccount updates an account's display name
func (s *LedgerService) RenameAccount(ctx context.Context, tenantID, id uuid.UUID, name string) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := account.Rename(name); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to rename account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	return toAccountDTO(account), nil
}

// SetAccountActive activates or deactivates an account
func (s *LedgerService) SetAccountActive(ctx context.Context, tenantID, id uuid.UUID, active bool) (*AccountDTO, error) {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if active {
		account.Activate()
	} else {
		account.Deactivate()
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		s.logger.Error("Failed to update account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save account")
	}

	return toAccountDTO(account), nil
}

// DeleteAccount removes an account that no journal line references
func (s *LedgerService) DeleteAccount(ctx context.Context, tenantID, id uuid.UUID) error {
	account, err := s.findAccount(ctx, tenantID, id)
	if err != nil {
		return err
	}

	hasEntries, err := s.accountRepo.HasEntries(ctx, id)
	if err != nil {
		s.logger.Error("Failed to check account usage", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to check account usage")
	}
	if hasEntries {
		return shared.NewDomainError("ACCOUNT_IN_USE", "Accounts referenced by journal entries cannot be deleted")
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete account", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete account")
	}

	s.logger.Info("Ledger account deleted",
		zap.String("account_id", id.String()),
		zap.String("code", account.Code))

	return nil
}

// CreateJournalEntry creates a journal entry from balanced lines and
// optionally posts it immediately
func (s *LedgerService) CreateJournalEntry(ctx context.Context, input CreateJournalEntryInput) (*JournalEntryDTO, error) {
	number := input.Number
	var err error
	if number == "" {
		number, err = s.entryRepo.NextNumber(ctx, input.TenantID)
		if err != nil {
			s.logger.Error("Failed to generate entry number", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate entry number")
		}
	}

	lines := make([]finance.JournalLineInput, len(input.Lines))
	for i, line := range input.Lines {
		if err := s.checkAccountPostable(ctx, input.TenantID, line.AccountID); err != nil {
			return nil, err
		}
		lines[i] = finance.JournalLineInput{
			AccountID:   line.AccountID,
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}

	entry, err := finance.NewJournalEntry(
		input.TenantID,
		number,
		input.EntryDate,
		valueobject.Currency(input.Currency),
		input.Memo,
		lines,
	)
	if err != nil {
		return nil, err
	}

	if input.Reference != "" {
		if err := entry.SetReference(input.Reference); err != nil {
			return nil, err
		}
	}

	if input.AutoPost {
		if err := entry.Post(); err != nil {
			return nil, err
		}
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to save journal entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save journal entry")
	}

	if err := s.publishEntryEvents(ctx, entry); err != nil {
		s.logger.Error("Failed to publish journal entry events", zap.Error(err))
	}

	s.logger.Info("Journal entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("number", entry.Number),
		zap.String("status", string(entry.Status)),
		zap.String("total_debit", entry.TotalDebit.String()))

	return toJournalEntryDTO(entry), nil
}

// GetJournalEntry retrieves a journal entry by ID within a tenant
func (s *LedgerService) GetJournalEntry(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntryDTO, error) {
	entry, err := s.findEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toJournalEntryDTO(entry), nil
}

// ListJournalEntries retrieves a paginated list of journal entries
func (s *LedgerService) ListJournalEntries(ctx context.Context, tenantID uuid.UUID, filter JournalEntryFilter) (*JournalEntryListResult, error) {
	sharedFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		sharedFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		sharedFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		sharedFilter.Filters["status"] = filter.Status
	}
	if filter.Reference != "" {
		sharedFilter.Filters["reference"] = filter.Reference
	}

	entries, err := s.entryRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list journal entries", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list journal entries")
	}

	total, err := s.entryRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count journal entries", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count journal entries")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]JournalEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = *toJournalEntryDTO(&entries[i])
	}

	return &JournalEntryListResult{
		Entries:    dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// PostJournalEntry posts a draft entry to the ledger
func (s *LedgerService) PostJournalEntry(ctx context.Context, tenantID, id uuid.UUID) (*JournalEntryDTO, error) {
	entry, err := s.findEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := entry.Post(); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to post journal entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save journal entry")
	}

	if err := s.publishEntryEvents(ctx, entry); err != nil {
		s.logger.Error("Failed to publish journal entry events", zap.Error(err))
	}

	s.logger.Info("Journal entry posted",
		zap.String("entry_id", entry.ID.String()),
		zap.String("number", entry.Number))

	return toJournalEntryDTO(entry), nil
}

// ReverseJournalEntry reverses a posted entry by posting a new entry
// with debits and credits swapped. Returns the reversing entry.
func (s *LedgerService) ReverseJournalEntry(ctx context.Context, tenantID, id uuid.UUID, entryDate time.Time) (*JournalEntryDTO, error) {
	entry, err := s.findEntry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	number, err := s.entryRepo.NextNumber(ctx, tenantID)
	if err != nil {
		s.logger.Error("Failed to generate entry number", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate entry number")
	}

	reversal, err := entry.Reverse(number, entryDate)
	if err != nil {
		return nil, err
	}

	if err := reversal.Post(); err != nil {
		return nil, err
	}

	if err := s.entryRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to save reversed entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save journal entry")
	}
	if err := s.entryRepo.Save(ctx, reversal); err != nil {
		s.logger.Error("Failed to save reversing entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save journal entry")
	}

	if err := s.publishEntryEvents(ctx, entry); err != nil {
		s.logger.Error("Failed to publish journal entry events", zap.Error(err))
	}
	if err := s.publishEntryEvents(ctx, reversal); err != nil {
		s.logger.Error("Failed to publish journal entry events", zap.Error(err))
	}

	s.logger.Info("Journal entry reversed",
		zap.String("entry_id", entry.ID.String()),
		zap.String("reversal_id", reversal.ID.String()),
		zap.String("reversal_number", reversal.Number))

	return toJournalEntryDTO(reversal), nil
}

// TrialBalance computes the trial balance as of a reporting date
func (s *LedgerService) TrialBalance(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*finance.TrialBalance, error) {
	accounts, balances, err := s.loadReportInputs(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	return finance.BuildTrialBalance(asOf, accounts, balances), nil
}

// BalanceSheet computes the balance sheet as of a reporting date
func (s *LedgerService) BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (*finance.BalanceSheet, error) {
	accounts, balances, err := s.loadReportInputs(ctx, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	return finance.BuildBalanceSheet(asOf, accounts, balances), nil
}

func (s *LedgerService) loadReportInputs(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]finance.Account, []finance.AccountBalance, error) {
	accounts, err := s.accountRepo.FindAllForTenant(ctx, tenantID, shared.DefaultFilter())
	if err != nil {
		s.logger.Error("Failed to load chart of accounts", zap.Error(err))
		return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load chart of accounts")
	}

	balances, err := s.entryRepo.SumPostedByAccount(ctx, tenantID, asOf)
	if err != nil {
		s.logger.Error("Failed to sum posted entries", zap.Error(err))
		return nil, nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to sum posted entries")
	}

	return accounts, balances, nil
}

func (s *LedgerService) checkAccountPostable(ctx context.Context, tenantID, accountID uuid.UUID) error {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, accountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("ACCOUNT_NOT_FOUND", "Ledger account not found")
		}
		s.logger.Error("Failed to find account", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}
	if !account.IsActive {
		return shared.NewDomainError("ACCOUNT_INACTIVE", "Entries cannot post to inactive accounts")
	}
	return nil
}

func (s *LedgerService) findAccount(ctx context.Context, tenantID, id uuid.UUID) (*finance.Account, error) {
	account, err := s.accountRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Ledger account not found")
		}
		s.logger.Error("Failed to find account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find account")
	}
	return account, nil
}

func (s *LedgerService) findEntry(ctx context.Context, tenantID, id uuid.UUID) (*finance.JournalEntry, error) {
	entry, err := s.entryRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("ENTRY_NOT_FOUND", "Journal entry not found")
		}
		s.logger.Error("Failed to find journal entry", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find journal entry")
	}
	return entry, nil
}

// publishEntryEvents writes the entry's domain events to the outbox
func (s *LedgerService) publishEntryEvents(ctx context.Context, entry *finance.JournalEntry) error {
	events := entry.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(entry.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	entry.ClearDomainEvents()
	return nil
}

// toAccountDTO converts a domain Account to AccountDTO
func toAccountDTO(account *finance.Account) *AccountDTO {
	return &AccountDTO{
		ID:        account.ID,
		TenantID:  account.TenantID,
		Code:      account.Code,
		Name:      account.Name,
		Type:      string(account.Type),
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// toJournalEntryDTO converts a domain JournalEntry to JournalEntryDTO
func toJournalEntryDTO(entry *finance.JournalEntry) *JournalEntryDTO {
	lines := make([]JournalLineDTO, len(entry.Lines))
	for i, line := range entry.Lines {
		lines[i] = JournalLineDTO{
			ID:          line.ID,
			AccountID:   line.AccountID,
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
		}
	}

	return &JournalEntryDTO{
		ID:          entry.ID,
		TenantID:    entry.TenantID,
		Number:      entry.Number,
		Status:      string(entry.Status),
		EntryDate:   entry.EntryDate,
		Memo:        entry.Memo,
		Reference:   entry.Reference,
		Currency:    string(entry.Currency),
		TotalDebit:  entry.TotalDebit,
		TotalCredit: entry.TotalCredit,
		PostedAt:    entry.PostedAt,
		ReversedAt:  entry.ReversedAt,
		ReversesID:  entry.ReversesID,
		Lines:       lines,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
	}
}
