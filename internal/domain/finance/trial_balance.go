package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trial balance status constants
const (
	TrialBalanceStatusBalanced   = "BALANCED"
	TrialBalanceStatusUnbalanced = "UNBALANCED"
)

// AccountBalance is an aggregation row summing posted journal lines
// for one account. Produced by the repository.
type AccountBalance struct {
	AccountID   uuid.UUID
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// TrialBalanceRow is one account's net position in the trial balance.
// The net balance is shown on the account's larger side, so each row
// carries a debit or a credit, never both.
type TrialBalanceRow struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists every account with activity and checks that total
// debits equal total credits across the ledger
type TrialBalance struct {
	AsOf        time.Time         `json:"as_of"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Status      string            `json:"status"`
}

// BuildTrialBalance computes the trial balance from the chart of
// accounts and per-account posted totals. Accounts with no activity
// are omitted. Rows are sorted by account code.
func BuildTrialBalance(asOf time.Time, accounts []Account, balances []AccountBalance) *TrialBalance {
	byID := make(map[uuid.UUID]*Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}

	tb := &TrialBalance{
		AsOf:        asOf,
		Rows:        make([]TrialBalanceRow, 0, len(balances)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, balance := range balances {
		account, ok := byID[balance.AccountID]
		if !ok {
			continue
		}

		net := balance.TotalDebit.Sub(balance.TotalCredit)
		if net.IsZero() {
			continue
		}

		row := TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Type:      account.Type,
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
		if net.IsPositive() {
			row.Debit = net
		} else {
			row.Credit = net.Neg()
		}

		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}

	sort.Slice(tb.Rows, func(i, j int) bool {
		return tb.Rows[i].Code < tb.Rows[j].Code
	})

	if tb.TotalDebit.Equal(tb.TotalCredit) {
		tb.Status = TrialBalanceStatusBalanced
	} else {
		tb.Status = TrialBalanceStatusUnbalanced
	}

	return tb
}

// IsBalanced reports whether total debits equal total credits
func (tb *TrialBalance) IsBalanced() bool {
	return tb.Status == TrialBalanceStatusBalanced
}

// BalanceSheetLine is one account's balance within its section
type BalanceSheetLine struct {
	AccountID uuid.UUID       `json:"account_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// BalanceSheet groups account balances into assets, liabilities and
// equity as of a reporting date. Income and expense activity is folded
// into equity as current earnings.
type BalanceSheet struct {
	AsOf             time.Time          `json:"as_of"`
	Assets           []BalanceSheetLine `json:"assets"`
	Liabilities      []BalanceSheetLine `json:"liabilities"`
	Equity           []BalanceSheetLine `json:"equity"`
	CurrentEarnings  decimal.Decimal    `json:"current_earnings"`
	TotalAssets      decimal.Decimal    `json:"total_assets"`
	TotalLiabilities decimal.Decimal    `json:"total_liabilities"`
	TotalEquity      decimal.Decimal    `json:"total_equity"`
}

// BuildBalanceSheet computes the balance sheet from the chart of
// accounts and per-account posted totals. Balances are shown positive
// on each account's normal side, so an overdrawn asset appears
// negative. Current earnings are income minus expenses and are added
// to total equity.
func BuildBalanceSheet(asOf time.Time, accounts []Account, balances []AccountBalance) *BalanceSheet {
	byID := make(map[uuid.UUID]*Account, len(accounts))
	for i := range accounts {
		byID[accounts[i].ID] = &accounts[i]
	}

	bs := &BalanceSheet{
		AsOf:             asOf,
		Assets:           []BalanceSheetLine{},
		Liabilities:      []BalanceSheetLine{},
		Equity:           []BalanceSheetLine{},
		CurrentEarnings:  decimal.Zero,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}

	for _, balance := range balances {
		account, ok := byID[balance.AccountID]
		if !ok {
			continue
		}

		// Net on the account's normal side
		var amount decimal.Decimal
		if account.Type.NormalBalanceDebit() {
			amount = balance.TotalDebit.Sub(balance.TotalCredit)
		} else {
			amount = balance.TotalCredit.Sub(balance.TotalDebit)
		}
		if amount.IsZero() {
			continue
		}

		line := BalanceSheetLine{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Amount:    amount,
		}

		switch account.Type {
		case AccountTypeAsset:
			bs.Assets = append(bs.Assets, line)
			bs.TotalAssets = bs.TotalAssets.Add(amount)
		case AccountTypeLiability:
			bs.Liabilities = append(bs.Liabilities, line)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(amount)
		case AccountTypeEquity:
			bs.Equity = append(bs.Equity, line)
			bs.TotalEquity = bs.TotalEquity.Add(amount)
		case AccountTypeIncome:
			bs.CurrentEarnings = bs.CurrentEarnings.Add(amount)
		case AccountTypeExpense:
			bs.CurrentEarnings = bs.CurrentEarnings.Sub(amount)
		}
	}

	sortLines := func(lines []BalanceSheetLine) {
		sort.Slice(lines, func(i, j int) bool {
			return lines[i].Code < lines[j].Code
		})
	}
	sortLines(bs.Assets)
	sortLines(bs.Liabilities)
	sortLines(bs.Equity)

	bs.TotalEquity = bs.TotalEquity.Add(bs.CurrentEarnings)

	return bs
}
