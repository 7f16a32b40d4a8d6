package handler

import (
	"time"

	financeapp "github.com/peopledesk/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles general ledger API endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *financeapp.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *financeapp.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

// CreateAccountRequest represents a request to create a ledger account
// @Description Request body for creating a ledger account
type CreateAccountRequest struct {
	Code string `json:"code" binding:"required,min=1,max=20" example:"1000"`
	Name string `json:"name" binding:"required,min=1,max=200" example:"Cash"`
	Type string `json:"type" binding:"required,oneof=asset liability equity income expense" example:"asset"`
}

// RenameAccountRequest represents a request to rename a ledger account
// @Description Request body for renaming a ledger account
type RenameAccountRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200" example:"Cash and Equivalents"`
}

// SetAccountActiveRequest represents a request to activate or deactivate an account
// @Description Request body for changing an account's active flag
type SetAccountActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"false"`
}

// JournalLineRequest represents one leg of a journal entry
// @Description Journal entry line
type JournalLineRequest struct {
	AccountID   string  `json:"account_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Description string  `json:"description" binding:"max=500" example:"August payroll"`
	Debit       float64 `json:"debit" binding:"gte=0" example:"12500"`
	Credit      float64 `json:"credit" binding:"gte=0" example:"0"`
}

// CreateJournalEntryRequest represents a request to create a journal entry
// @Description Request body for creating a journal entry
type CreateJournalEntryRequest struct {
	Number    string               `json:"number" binding:"max=50" example:"JE-2026-0001"`
	EntryDate time.Time            `json:"entry_date" binding:"required" example:"2026-08-31T00:00:00Z"`
	Currency  string               `json:"currency" binding:"omitempty,len=3" example:"USD"`
	Memo      string               `json:"memo" binding:"max=500" example:"August payroll accrual"`
	Reference string               `json:"reference" binding:"max=100" example:"PAYROLL-2026-08"`
	Lines     []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
	AutoPost  bool                 `json:"auto_post" example:"false"`
}

// ReverseJournalEntryRequest represents a request to reverse a posted entry
// @Description Request body for reversing a posted journal entry
type ReverseJournalEntryRequest struct {
	EntryDate time.Time `json:"entry_date" binding:"required" example:"2026-09-01T00:00:00Z"`
}

// CreateAccount godoc
// @ID           createLedgerAccount
// @Summary      Create a ledger account
// @Description  Add an account to the tenant's chart of accounts
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateAccountRequest true "Account creation request"
// @Success      201 {object} APIResponse[financeapp.AccountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), financeapp.CreateAccountInput{
		TenantID: tenantID,
		Code:     req.Code,
		Name:     req.Name,
		Type:     req.Type,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, account)
}

// GetAccount godoc
// @ID           getLedgerAccount
// @Summary      Get ledger account
// @Description  Retrieve a ledger account by ID
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.AccountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [get]
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	account, err := h.ledgerService.GetAccount(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// ListAccounts godoc
// @ID           listLedgerAccounts
// @Summary      List ledger accounts
// @Description  Retrieve the chart of accounts, optionally filtered by type
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        type query string false "Account type" Enums(asset, liability, equity, revenue, expense)
// @Success      200 {object} APIResponse[[]financeapp.AccountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), tenantID, c.Query("type"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, accounts)
}

// RenameAccount godoc
// @ID           renameLedgerAccount
// @Summary      Rename a ledger account
// @Description  Change a ledger account's display name
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body RenameAccountRequest true "New account name"
// @Success      200 {object} APIResponse[financeapp.AccountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts/{id}/rename [post]
func (h *LedgerHandler) RenameAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.ledgerService.RenameAccount(c.Request.Context(), tenantID, accountID, req.Name)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// SetAccountActive godoc
// @ID           setLedgerAccountActive
// @Summary      Activate or deactivate an account
// @Description  Set whether a ledger account accepts new postings
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Param        request body SetAccountActiveRequest true "Active flag"
// @Success      200 {object} APIResponse[financeapp.AccountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts/{id}/active [put]
func (h *LedgerHandler) SetAccountActive(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	var req SetAccountActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.ledgerService.SetAccountActive(c.Request.Context(), tenantID, accountID, *req.Active)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, account)
}

// DeleteAccount godoc
// @ID           deleteLedgerAccount
// @Summary      Delete a ledger account
// @Description  Delete a ledger account that has no postings
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Account ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/accounts/{id} [delete]
func (h *LedgerHandler) DeleteAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid account ID format")
		return
	}

	if err := h.ledgerService.DeleteAccount(c.Request.Context(), tenantID, accountID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateJournalEntry godoc
// @ID           createJournalEntry
// @Summary      Create a journal entry
// @Description  Create a balanced journal entry, optionally posting it immediately
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateJournalEntryRequest true "Journal entry creation request"
// @Success      201 {object} APIResponse[financeapp.JournalEntryDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/journal-entries [post]
func (h *LedgerHandler) CreateJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	lines := make([]financeapp.JournalLineInputDTO, 0, len(req.Lines))
	for _, line := range req.Lines {
		accountID, err := uuid.Parse(line.AccountID)
		if err != nil {
			h.BadRequest(c, "Invalid account ID format")
			return
		}
		lines = append(lines, financeapp.JournalLineInputDTO{
			AccountID:   accountID,
			Description: line.Description,
			Debit:       toDecimal(line.Debit),
			Credit:      toDecimal(line.Credit),
		})
	}

	entry, err := h.ledgerService.CreateJournalEntry(c.Request.Context(), financeapp.CreateJournalEntryInput{
		TenantID:  tenantID,
		Number:    req.Number,
		EntryDate: req.EntryDate,
		Currency:  req.Currency,
		Memo:      req.Memo,
		Reference: req.Reference,
		Lines:     lines,
		AutoPost:  req.AutoPost,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// GetJournalEntry godoc
// @ID           getJournalEntry
// @Summary      Get journal entry
// @Description  Retrieve a journal entry with its lines
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Journal Entry ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.JournalEntryDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/journal-entries/{id} [get]
func (h *LedgerHandler) GetJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid journal entry ID format")
		return
	}

	entry, err := h.ledgerService.GetJournalEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// ListJournalEntries godoc
// @ID           listJournalEntries
// @Summary      List journal entries
// @Description  Retrieve a paginated list of journal entries with optional filtering
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Status" Enums(draft, posted, reversed)
// @Param        reference query string false "Reference"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[financeapp.JournalEntryListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/journal-entries [get]
func (h *LedgerHandler) ListJournalEntries(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := financeapp.JournalEntryFilter{
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 20),
		Status:    c.Query("status"),
		Reference: c.Query("reference"),
	}

	result, err := h.ledgerService.ListJournalEntries(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Entries, result.Total, result.Page, result.PageSize)
}

// PostJournalEntry godoc
// @ID           postJournalEntry
// @Summary      Post a journal entry
// @Description  Post a draft journal entry to the ledger
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Journal Entry ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.JournalEntryDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/journal-entries/{id}/post [post]
func (h *LedgerHandler) PostJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid journal entry ID format")
		return
	}

	entry, err := h.ledgerService.PostJournalEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// ReverseJournalEntry godoc
// @ID           reverseJournalEntry
// @Summary      Reverse a journal entry
// @Description  Create and post a reversing entry for a posted journal entry
// @Tags         ledger
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Journal Entry ID" format(uuid)
// @Param        request body ReverseJournalEntryRequest true "Reversal date"
// @Success      200 {object} APIResponse[financeapp.JournalEntryDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/journal-entries/{id}/reverse [post]
func (h *LedgerHandler) ReverseJournalEntry(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid journal entry ID format")
		return
	}

	var req ReverseJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.ledgerService.ReverseJournalEntry(c.Request.Context(), tenantID, entryID, req.EntryDate)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// TrialBalance godoc
// @ID           getTrialBalance
// @Summary      Trial balance
// @Description  Compute the trial balance from posted journal entries as of a date
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        as_of query string false "As-of date (RFC 3339), defaults to now"
// @Success      200 {object} APIResponse[finance.TrialBalance]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/reports/trial-balance [get]
func (h *LedgerHandler) TrialBalance(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	balance, err := h.ledgerService.TrialBalance(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, balance)
}

// BalanceSheet godoc
// @ID           getBalanceSheet
// @Summary      Balance sheet
// @Description  Compute the balance sheet from posted journal entries as of a date
// @Tags         ledger
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        as_of query string false "As-of date (RFC 3339), defaults to now"
// @Success      200 {object} APIResponse[finance.BalanceSheet]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/reports/balance-sheet [get]
func (h *LedgerHandler) BalanceSheet(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	asOf, ok := h.parseAsOf(c)
	if !ok {
		return
	}

	sheet, err := h.ledgerService.BalanceSheet(c.Request.Context(), tenantID, asOf)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sheet)
}

func (h *LedgerHandler) parseAsOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), true
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected RFC 3339")
		return time.Time{}, false
	}
	return asOf, true
}
