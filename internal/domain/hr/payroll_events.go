package hr

import (
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypePayrollRun = "PayrollRun"

// Event type constants
const (
	EventTypePayrollRunCreated = "PayrollRunCreated"
	EventTypePayrollCompleted  = "PayrollCompleted"
	EventTypePayrollPaid       = "PayrollPaid"
)

// PayrollRunCreatedEvent is published when a payroll run is created
type PayrollRunCreatedEvent struct {
	shared.BaseDomainEvent
	Period string `json:"period"`
}

// NewPayrollRunCreatedEvent creates a new PayrollRunCreatedEvent
func NewPayrollRunCreatedEvent(run *PayrollRun) *PayrollRunCreatedEvent {
	return &PayrollRunCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollRunCreated, AggregateTypePayrollRun, run.ID, run.TenantID),
		Period:          run.PeriodLabel(),
	}
}

// PayrollCompletedEvent is published when a run's calculations are final
type PayrollCompletedEvent struct {
	shared.BaseDomainEvent
	Period     string          `json:"period"`
	Headcount  int             `json:"headcount"`
	TotalGross decimal.Decimal `json:"total_gross"`
	TotalNet   decimal.Decimal `json:"total_net"`
}

// NewPayrollCompletedEvent creates a new PayrollCompletedEvent
func NewPayrollCompletedEvent(run *PayrollRun) *PayrollCompletedEvent {
	return &PayrollCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollCompleted, AggregateTypePayrollRun, run.ID, run.TenantID),
		Period:          run.PeriodLabel(),
		Headcount:       len(run.Payslips),
		TotalGross:      run.TotalGross,
		TotalNet:        run.TotalNet,
	}
}

// PayrollPaidEvent is published when salaries are disbursed.
// The ledger subscriber posts the salary expense entry from this event.
type PayrollPaidEvent struct {
	shared.BaseDomainEvent
	Period     string          `json:"period"`
	Currency   string          `json:"currency"`
	TotalGross decimal.Decimal `json:"total_gross"`
	TotalNet   decimal.Decimal `json:"total_net"`
	TotalTax   decimal.Decimal `json:"total_tax"`
}

// NewPayrollPaidEvent creates a new PayrollPaidEvent
func NewPayrollPaidEvent(run *PayrollRun) *PayrollPaidEvent {
	return &PayrollPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePayrollPaid, AggregateTypePayrollRun, run.ID, run.TenantID),
		Period:          run.PeriodLabel(),
		Currency:        string(run.Currency),
		TotalGross:      run.TotalGross,
		TotalNet:        run.TotalNet,
		TotalTax:        run.TotalTax,
	}
}
