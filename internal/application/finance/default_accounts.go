package finance

import (
	"context"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/finance"
	"github.com/peopledesk/backend/internal/domain/shared"
)

// Well-known account codes used by the automatic posting handlers.
// Tenants get these accounts created on first use.
const (
	AccountCodeCash            = "1000"
	AccountCodeSalesRevenue    = "4000"
	AccountCodeSalesTaxPayable = "2100"
	AccountCodeSalaryExpense   = "6000"
	AccountCodePayrollTaxOwed  = "2200"
)

// ensureAccount returns the tenant's account with the given code,
// creating it when missing
func ensureAccount(ctx context.Context, repo finance.AccountRepository, tenantID uuid.UUID, code, name string, accountType finance.AccountType) (*finance.Account, error) {
	account, err := repo.FindByCode(ctx, tenantID, code)
	if err == nil {
		return account, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}

	account, err = finance.NewAccount(tenantID, code, name, accountType)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
