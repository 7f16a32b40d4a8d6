package hr

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// PayrollStatus represents the lifecycle status of a payroll run
type PayrollStatus string

const (
	PayrollStatusDraft      PayrollStatus = "draft"
	PayrollStatusProcessing PayrollStatus = "processing"
	PayrollStatusCompleted  PayrollStatus = "completed"
	PayrollStatusPaid       PayrollStatus = "paid"
	PayrollStatusCancelled  PayrollStatus = "cancelled"
)

// Payslip is one employee's pay within a run.
// Invariant: Net = Gross + Allowances - Deductions - Tax.
type Payslip struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PayrollRunID uuid.UUID       `gorm:"type:uuid;not null;index" json:"payroll_run_id"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	EmployeeID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"employee_id"`
	Gross        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"gross"`
	Allowances   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"allowances"`
	Deductions   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"deductions"`
	Tax          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"tax"`
	Net          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"net"`
	Note         string          `gorm:"type:varchar(500)" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TableName returns the table name for GORM
func (Payslip) TableName() string {
	return "payslips"
}

func (p *Payslip) recalculate() {
	p.Net = p.Gross.Add(p.Allowances).Sub(p.Deductions).Sub(p.Tax)
	p.UpdatedAt = time.Now()
}

// PayrollRun is the aggregate root for a pay period's payroll
type PayrollRun struct {
	shared.TenantAggregateRoot
	PeriodYear  int                  `gorm:"not null;uniqueIndex:idx_payroll_tenant_period,priority:2"`
	PeriodMonth int                  `gorm:"not null;uniqueIndex:idx_payroll_tenant_period,priority:3"`
	Status      PayrollStatus        `gorm:"type:varchar(20);not null;default:'draft';index"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	TotalGross  decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	TotalNet    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTax    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	ProcessedAt *time.Time           `gorm:""`
	PaidAt      *time.Time           `gorm:""`
	Payslips    []Payslip            `gorm:"foreignKey:PayrollRunID"`
}

// TableName returns the table name for GORM
func (PayrollRun) TableName() string {
	return "payroll_runs"
}

// PeriodLabel returns the run's period as "2026-03"
func (r *PayrollRun) PeriodLabel() string {
	return fmt.Sprintf("%04d-%02d", r.PeriodYear, r.PeriodMonth)
}

// NewPayrollRun creates a draft payroll run for a period
func NewPayrollRun(tenantID uuid.UUID, periodYear, periodMonth int, currency valueobject.Currency) (*PayrollRun, error) {
	if periodYear < 2000 || periodYear > 2100 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period year is out of range")
	}
	if periodMonth < 1 || periodMonth > 12 {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period month must be between 1 and 12")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}

	run := &PayrollRun{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		PeriodYear:          periodYear,
		PeriodMonth:         periodMonth,
		Status:              PayrollStatusDraft,
		Currency:            currency,
		TotalGross:          decimal.Zero,
		TotalNet:            decimal.Zero,
		TotalTax:            decimal.Zero,
		Payslips:            make([]Payslip, 0),
	}

	run.AddDomainEvent(NewPayrollRunCreatedEvent(run))

	return run, nil
}

// AddPayslip adds an employee's payslip to a draft run
func (r *PayrollRun) AddPayslip(employeeID uuid.UUID, gross, allowances, deductions, tax decimal.Decimal) (*Payslip, error) {
	if r.Status != PayrollStatusDraft {
		return nil, shared.NewDomainError("RUN_NOT_DRAFT", "Payslips can only be added to draft runs")
	}
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if r.FindPayslipByEmployee(employeeID) != nil {
		return nil, shared.NewDomainError("DUPLICATE_PAYSLIP", "Employee already has a payslip in this run")
	}
	if err := validatePayslipAmounts(gross, allowances, deductions, tax); err != nil {
		return nil, err
	}

	now := time.Now()
	slip := Payslip{
		ID:           uuid.New(),
		PayrollRunID: r.ID,
		TenantID:     r.TenantID,
		EmployeeID:   employeeID,
		Gross:        gross.Round(2),
		Allowances:   allowances.Round(2),
		Deductions:   deductions.Round(2),
		Tax:          tax.Round(2),
		CreatedAt:    now,
	}
	slip.recalculate()

	r.Payslips = append(r.Payslips, slip)
	r.recalculateTotals()

	return &r.Payslips[len(r.Payslips)-1], nil
}

// UpdatePayslip updates an employee's payslip on a draft run
func (r *PayrollRun) UpdatePayslip(payslipID uuid.UUID, gross, allowances, deductions, tax decimal.Decimal) error {
	if r.Status != PayrollStatusDraft {
		return shared.NewDomainError("RUN_NOT_DRAFT", "Payslips can only be updated on draft runs")
	}
	if err := validatePayslipAmounts(gross, allowances, deductions, tax); err != nil {
		return err
	}

	for i := range r.Payslips {
		if r.Payslips[i].ID == payslipID {
			r.Payslips[i].Gross = gross.Round(2)
			r.Payslips[i].Allowances = allowances.Round(2)
			r.Payslips[i].Deductions = deductions.Round(2)
			r.Payslips[i].Tax = tax.Round(2)
			r.Payslips[i].recalculate()
			r.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError("PAYSLIP_NOT_FOUND", "Payslip not found")
}

// RemovePayslip removes a payslip from a draft run
func (r *PayrollRun) RemovePayslip(payslipID uuid.UUID) error {
	if r.Status != PayrollStatusDraft {
		return shared.NewDomainError("RUN_NOT_DRAFT", "Payslips can only be removed from draft runs")
	}

	for i := range r.Payslips {
		if r.Payslips[i].ID == payslipID {
			r.Payslips = append(r.Payslips[:i], r.Payslips[i+1:]...)
			r.recalculateTotals()
			return nil
		}
	}
	return shared.NewDomainError("PAYSLIP_NOT_FOUND", "Payslip not found")
}

func (r *PayrollRun) recalculateTotals() {
	gross := decimal.Zero
	net := decimal.Zero
	tax := decimal.Zero
	for _, slip := range r.Payslips {
		gross = gross.Add(slip.Gross)
		net = net.Add(slip.Net)
		tax = tax.Add(slip.Tax)
	}
	r.TotalGross = gross
	r.TotalNet = net
	r.TotalTax = tax
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
}

// Process locks the run for calculation review
func (r *PayrollRun) Process() error {
	if r.Status != PayrollStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft runs can be processed")
	}
	if len(r.Payslips) == 0 {
		return shared.NewDomainError("EMPTY_RUN", "Cannot process a run without payslips")
	}

	now := time.Now()
	r.Status = PayrollStatusProcessing
	r.ProcessedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	return nil
}

// Complete marks the run's calculations as final
func (r *PayrollRun) Complete() error {
	if r.Status != PayrollStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", "Only processing runs can be completed")
	}

	r.Status = PayrollStatusCompleted
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewPayrollCompletedEvent(r))

	return nil
}

// MarkPaid records that salaries have been disbursed
func (r *PayrollRun) MarkPaid() error {
	if r.Status != PayrollStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Only completed runs can be marked paid")
	}

	now := time.Now()
	r.Status = PayrollStatusPaid
	r.PaidAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewPayrollPaidEvent(r))

	return nil
}

// Cancel cancels a run that has not been paid
func (r *PayrollRun) Cancel() error {
	switch r.Status {
	case PayrollStatusPaid, PayrollStatusCancelled:
		return shared.NewDomainError("INVALID_STATE", "Paid or cancelled runs cannot be cancelled")
	}

	r.Status = PayrollStatusCancelled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// FindPayslipByEmployee returns the employee's payslip in this run, or nil
func (r *PayrollRun) FindPayslipByEmployee(employeeID uuid.UUID) *Payslip {
	for i := range r.Payslips {
		if r.Payslips[i].EmployeeID == employeeID {
			return &r.Payslips[i]
		}
	}
	return nil
}

func validatePayslipAmounts(gross, allowances, deductions, tax decimal.Decimal) error {
	if gross.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross pay cannot be negative")
	}
	if allowances.IsNegative() || deductions.IsNegative() || tax.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Allowances, deductions, and tax cannot be negative")
	}
	net := gross.Add(allowances).Sub(deductions).Sub(tax)
	if net.IsNegative() {
		return shared.NewDomainError("NEGATIVE_NET", "Deductions and tax exceed gross pay and allowances")
	}
	return nil
}
