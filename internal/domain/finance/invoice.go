package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusSent          InvoiceStatus = "sent"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// IsValid reports whether the status is a known invoice status
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartiallyPaid,
		InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceItem is a line on an invoice. Amounts are computed from
// quantity, unit price and tax rate, each rounded half-up to cents at
// the line level so invoice totals do not depend on line order.
type InvoiceItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Description string          `gorm:"type:varchar(500);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"tax_rate"` // percentage, e.g. 18 for 18%
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"line_total"`        // quantity * unit_price, rounded
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`        // line_total * tax_rate / 100, rounded
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`            // line_total + tax_amount
	SortOrder   int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// recalculate recomputes the derived line amounts
func (it *InvoiceItem) recalculate(currency valueobject.Currency) {
	lineTotal := valueobject.MustMoney(it.Quantity.Mul(it.UnitPrice), currency).RoundCents()
	tax := lineTotal.Percent(it.TaxRate).RoundCents()
	it.LineTotal = lineTotal.Amount()
	it.TaxAmount = tax.Amount()
	it.Amount = lineTotal.MustAdd(tax).Amount()
	it.UpdatedAt = time.Now()
}

// Invoice is the aggregate root for accounts-receivable invoices.
// Invariant: BalanceDue = Total - AmountPaid at all times.
type Invoice struct {
	shared.TenantAggregateRoot
	Number     string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status     InvoiceStatus        `gorm:"type:varchar(20);not null;default:'draft';index"`
	Currency   valueobject.Currency `gorm:"type:varchar(3);not null"`
	IssueDate  time.Time            `gorm:"not null"`
	DueDate    time.Time            `gorm:"not null;index"`
	Subtotal   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	TaxTotal   decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Total      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceDue decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Notes      string               `gorm:"type:text"`
	SentAt     *time.Time
	PaidAt     *time.Time
	Items      []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a draft invoice with no lines
func NewInvoice(tenantID, customerID uuid.UUID, number string, currency valueobject.Currency, issueDate, dueDate time.Time) (*Invoice, error) {
	if err := validateInvoiceNumber(number); err != nil {
		return nil, err
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              strings.ToUpper(strings.TrimSpace(number)),
		CustomerID:          customerID,
		Status:              InvoiceStatusDraft,
		Currency:            currency,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Subtotal:            decimal.Zero,
		TaxTotal:            decimal.Zero,
		Total:               decimal.Zero,
		AmountPaid:          decimal.Zero,
		BalanceDue:          decimal.Zero,
		Items:               make([]InvoiceItem, 0),
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// AddItem appends a line to a draft invoice and recomputes totals
func (inv *Invoice) AddItem(description string, quantity, unitPrice, taxRate decimal.Decimal) (*InvoiceItem, error) {
	if inv.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVOICE_NOT_DRAFT", "Items can only be added to draft invoices")
	}
	if err := validateItemInput(description, quantity, unitPrice, taxRate); err != nil {
		return nil, err
	}

	now := time.Now()
	item := InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		TenantID:    inv.TenantID,
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TaxRate:     taxRate,
		SortOrder:   len(inv.Items),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.recalculate(inv.Currency)

	inv.Items = append(inv.Items, item)
	inv.recalculateTotals()

	return &inv.Items[len(inv.Items)-1], nil
}

// UpdateItem updates a line on a draft invoice and recomputes totals
func (inv *Invoice) UpdateItem(itemID uuid.UUID, description string, quantity, unitPrice, taxRate decimal.Decimal) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVOICE_NOT_DRAFT", "Items can only be updated on draft invoices")
	}
	if err := validateItemInput(description, quantity, unitPrice, taxRate); err != nil {
		return err
	}

	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items[i].Description = strings.TrimSpace(description)
			inv.Items[i].Quantity = quantity
			inv.Items[i].UnitPrice = unitPrice
			inv.Items[i].TaxRate = taxRate
			inv.Items[i].recalculate(inv.Currency)
			inv.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem removes a line from a draft invoice and recomputes totals
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVOICE_NOT_DRAFT", "Items can only be removed from draft invoices")
	}

	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			for j := range inv.Items {
				inv.Items[j].SortOrder = j
			}
			inv.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// recalculateTotals sums the already-rounded line amounts. Because each
// line is rounded before summation the result is order-independent.
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, it := range inv.Items {
		subtotal = subtotal.Add(it.LineTotal)
		taxTotal = taxTotal.Add(it.TaxAmount)
	}
	inv.Subtotal = subtotal
	inv.TaxTotal = taxTotal
	inv.Total = subtotal.Add(taxTotal)
	inv.BalanceDue = inv.Total.Sub(inv.AmountPaid)
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// UpdateDetails updates the header fields of a draft invoice
func (inv *Invoice) UpdateDetails(customerID uuid.UUID, issueDate, dueDate time.Time, notes string) error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVOICE_NOT_DRAFT", "Only draft invoices can be edited")
	}
	if customerID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	inv.CustomerID = customerID
	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// Send transitions a draft invoice to sent
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("EMPTY_INVOICE", "Cannot send an invoice without items")
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceSentEvent(inv))

	return nil
}

// RecordPayment records a payment against the invoice. Overpayment is
// rejected; paying the full balance transitions to paid.
func (inv *Invoice) RecordPayment(amount decimal.Decimal) error {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
	default:
		return shared.NewDomainError("INVALID_STATE", "Payments can only be recorded on sent, partially paid, or overdue invoices")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("OVERPAYMENT", "Payment exceeds balance due")
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.BalanceDue = inv.Total.Sub(inv.AmountPaid)

	now := time.Now()
	if inv.BalanceDue.IsZero() {
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
	}
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, amount))

	return nil
}

// MarkOverdue flags a sent or partially paid invoice past its due date
func (inv *Invoice) MarkOverdue(asOf time.Time) error {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid:
	default:
		return shared.NewDomainError("INVALID_STATE", "Only sent or partially paid invoices can become overdue")
	}
	if !asOf.After(inv.DueDate) {
		return shared.NewDomainError("NOT_OVERDUE", "Invoice is not past its due date")
	}

	oldStatus := inv.Status
	inv.Status = InvoiceStatusOverdue
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, oldStatus, InvoiceStatusOverdue))

	return nil
}

// Cancel cancels an invoice that has no recorded payments
func (inv *Invoice) Cancel() error {
	switch inv.Status {
	case InvoiceStatusPaid, InvoiceStatusCancelled:
		return shared.NewDomainError("INVALID_STATE", "Paid or cancelled invoices cannot be cancelled")
	}
	if inv.AmountPaid.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Invoices with recorded payments cannot be cancelled")
	}

	oldStatus := inv.Status
	inv.Status = InvoiceStatusCancelled
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, oldStatus, InvoiceStatusCancelled))

	return nil
}

// IsOverdue reports whether the invoice is past due and unpaid
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusPartiallyPaid, InvoiceStatusOverdue:
		return asOf.After(inv.DueDate)
	}
	return false
}

// FindItem returns the line with the given ID, or nil
func (inv *Invoice) FindItem(itemID uuid.UUID) *InvoiceItem {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			return &inv.Items[i]
		}
	}
	return nil
}

func validateInvoiceNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(number) > 50 {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	return nil
}

func validateItemInput(description string, quantity, unitPrice, taxRate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot exceed 500 characters")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_UNIT_PRICE", "Unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	return nil
}
