package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

func newDraftInvoice(t *testing.T) *Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(uuid.New(), uuid.New(), "INV-2026-0001", valueobject.CurrencyUSD, issue, issue.AddDate(0, 0, 30))
	require.NoError(t, err)
	return inv
}

func TestNewInvoiceValidation(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		customerID uuid.UUID
		number     string
		currency   valueobject.Currency
		dueDate    time.Time
		wantCode   string
	}{
		{"empty number", customerID, "", valueobject.CurrencyUSD, issue.AddDate(0, 0, 30), "INVALID_NUMBER"},
		{"nil customer", uuid.Nil, "INV-1", valueobject.CurrencyUSD, issue.AddDate(0, 0, 30), "INVALID_CUSTOMER"},
		{"bad currency", customerID, "INV-1", valueobject.Currency("US"), issue.AddDate(0, 0, 30), "INVALID_CURRENCY"},
		{"due before issue", customerID, "INV-1", valueobject.CurrencyUSD, issue.AddDate(0, 0, -1), "INVALID_DUE_DATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoice(tenantID, tt.customerID, tt.number, tt.currency, issue, tt.dueDate)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.wantCode, de.Code)
		})
	}
}

func TestInvoiceLineMath(t *testing.T) {
	inv := newDraftInvoice(t)

	// 2 x 100.00 at 18% tax
	item, err := inv.AddItem("Consulting", decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18))
	require.NoError(t, err)

	assert.True(t, item.LineTotal.Equal(decimal.RequireFromString("200.00")), "line total = %s", item.LineTotal)
	assert.True(t, item.TaxAmount.Equal(decimal.RequireFromString("36.00")), "tax = %s", item.TaxAmount)
	assert.True(t, item.Amount.Equal(decimal.RequireFromString("236.00")), "amount = %s", item.Amount)

	assert.True(t, inv.Subtotal.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, inv.TaxTotal.Equal(decimal.RequireFromString("36.00")))
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("236.00")))
	assert.True(t, inv.BalanceDue.Equal(inv.Total))
}

func TestInvoiceTotalsOrderIndependent(t *testing.T) {
	// Fractional quantities that require line-level rounding
	lines := []struct {
		qty, price, rate string
	}{
		{"1.5", "33.335", "7.25"},
		{"3", "19.995", "18"},
		{"0.25", "101.01", "0"},
	}

	addAll := func(order []int) *Invoice {
		inv := newDraftInvoice(t)
		for _, i := range order {
			_, err := inv.AddItem("Line",
				decimal.RequireFromString(lines[i].qty),
				decimal.RequireFromString(lines[i].price),
				decimal.RequireFromString(lines[i].rate))
			require.NoError(t, err)
		}
		return inv
	}

	forward := addAll([]int{0, 1, 2})
	backward := addAll([]int{2, 1, 0})

	assert.True(t, forward.Subtotal.Equal(backward.Subtotal))
	assert.True(t, forward.TaxTotal.Equal(backward.TaxTotal))
	assert.True(t, forward.Total.Equal(backward.Total))
}

func TestInvoiceItemLifecycle(t *testing.T) {
	inv := newDraftInvoice(t)

	item, err := inv.AddItem("Consulting", decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18))
	require.NoError(t, err)

	require.NoError(t, inv.UpdateItem(item.ID, "Consulting", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.NewFromInt(18)))
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("118.00")))

	require.NoError(t, inv.RemoveItem(item.ID))
	assert.True(t, inv.Total.IsZero())
	assert.Empty(t, inv.Items)

	assert.Error(t, inv.UpdateItem(uuid.New(), "X", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero))
	assert.Error(t, inv.RemoveItem(uuid.New()))

	// Invalid line inputs
	_, err = inv.AddItem("", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)
	_, err = inv.AddItem("X", decimal.Zero, decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)
	_, err = inv.AddItem("X", decimal.NewFromInt(1), decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
	_, err = inv.AddItem("X", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(101))
	assert.Error(t, err)
}

func TestInvoiceSend(t *testing.T) {
	inv := newDraftInvoice(t)

	err := inv.Send()
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "EMPTY_INVOICE", de.Code)

	_, err = inv.AddItem("Consulting", decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18))
	require.NoError(t, err)

	require.NoError(t, inv.Send())
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	require.NotNil(t, inv.SentAt)

	assert.Error(t, inv.Send())

	// Sent invoices are frozen
	_, err = inv.AddItem("Extra", decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.Zero)
	assert.Error(t, err)
}

func TestInvoicePayments(t *testing.T) {
	inv := newDraftInvoice(t)
	_, err := inv.AddItem("Consulting", decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromInt(18))
	require.NoError(t, err)

	// Draft invoices cannot take payments
	assert.Error(t, inv.RecordPayment(decimal.NewFromInt(100)))

	require.NoError(t, inv.Send())
	inv.ClearDomainEvents()

	assert.Error(t, inv.RecordPayment(decimal.Zero))
	assert.Error(t, inv.RecordPayment(decimal.NewFromInt(-5)))

	err = inv.RecordPayment(decimal.NewFromInt(300))
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "OVERPAYMENT", de.Code)

	require.NoError(t, inv.RecordPayment(decimal.NewFromInt(100)))
	assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	assert.True(t, inv.BalanceDue.Equal(decimal.RequireFromString("136.00")))

	require.NoError(t, inv.RecordPayment(decimal.RequireFromString("136.00")))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue.IsZero())
	require.NotNil(t, inv.PaidAt)

	// One payment event per payment plus the paid event
	var paidEvents int
	for _, ev := range inv.GetDomainEvents() {
		if ev.EventType() == EventTypeInvoicePaid {
			paidEvents++
		}
	}
	assert.Equal(t, 1, paidEvents)

	assert.Error(t, inv.RecordPayment(decimal.NewFromInt(1)))
}

func TestInvoiceOverdue(t *testing.T) {
	inv := newDraftInvoice(t)
	_, err := inv.AddItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, inv.Send())

	beforeDue := inv.DueDate.AddDate(0, 0, -1)
	afterDue := inv.DueDate.AddDate(0, 0, 1)

	assert.False(t, inv.IsOverdue(beforeDue))
	assert.Error(t, inv.MarkOverdue(beforeDue))

	assert.True(t, inv.IsOverdue(afterDue))
	require.NoError(t, inv.MarkOverdue(afterDue))
	assert.Equal(t, InvoiceStatusOverdue, inv.Status)

	// Overdue invoices still take payments
	require.NoError(t, inv.RecordPayment(decimal.NewFromInt(100)))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
}

func TestInvoiceCancel(t *testing.T) {
	inv := newDraftInvoice(t)
	require.NoError(t, inv.Cancel())
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.Error(t, inv.Cancel())

	paid := newDraftInvoice(t)
	_, err := paid.AddItem("Consulting", decimal.NewFromInt(1), decimal.NewFromInt(100), decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, paid.Send())
	require.NoError(t, paid.RecordPayment(decimal.NewFromInt(50)))

	// Partial payment blocks cancellation
	assert.Error(t, paid.Cancel())
}
