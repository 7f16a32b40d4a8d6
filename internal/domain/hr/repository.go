package hr

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	// FindByID finds an employee by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)

	// FindByIDForTenant finds an employee by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error)

	// FindByStaffNumber finds an employee by staff number within a tenant
	FindByStaffNumber(ctx context.Context, tenantID uuid.UUID, staffNumber string) (*Employee, error)

	// FindAllForTenant finds employees for a tenant matching the filter.
	// Filter supports "status" and "department" keys plus a search
	// keyword over staff number, name and email.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Employee, error)

	// FindPayrollEligible finds active and on-leave employees for a tenant
	FindPayrollEligible(ctx context.Context, tenantID uuid.UUID) ([]Employee, error)

	// Save creates or updates an employee
	Save(ctx context.Context, employee *Employee) error

	// Delete deletes an employee
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts employees for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByStaffNumber checks whether a staff number is taken within a tenant
	ExistsByStaffNumber(ctx context.Context, tenantID uuid.UUID, staffNumber string) (bool, error)
}

// LeaveRequestRepository defines the interface for leave request persistence
type LeaveRequestRepository interface {
	// FindByID finds a leave request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)

	// FindByIDForTenant finds a leave request by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*LeaveRequest, error)

	// FindAllForTenant finds leave requests for a tenant matching the
	// filter. Filter supports "status", "type" and "employee_id" keys.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]LeaveRequest, error)

	// FindOverlapping finds pending or approved requests for an employee
	// whose span intersects [startDate, endDate]
	FindOverlapping(ctx context.Context, tenantID, employeeID uuid.UUID, startDate, endDate time.Time) ([]LeaveRequest, error)

	// Save creates or updates a leave request
	Save(ctx context.Context, request *LeaveRequest) error

	// Count counts leave requests for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// PayrollRunRepository defines the interface for payroll run persistence
type PayrollRunRepository interface {
	// FindByID finds a payroll run by ID with its payslips
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollRun, error)

	// FindByIDForTenant finds a payroll run by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRun, error)

	// FindByPeriod finds the run for a tenant and period, if any
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, periodYear, periodMonth int) (*PayrollRun, error)

	// FindByPayslipID finds the run containing the given payslip
	FindByPayslipID(ctx context.Context, tenantID, payslipID uuid.UUID) (*PayrollRun, error)

	// FindAllForTenant finds payroll runs for a tenant matching the
	// filter. Filter supports "status" and "period_year" keys.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]PayrollRun, error)

	// Save creates or updates a payroll run with its payslips
	Save(ctx context.Context, run *PayrollRun) error

	// Count counts payroll runs for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsForPeriod checks whether a non-cancelled run exists for the period
	ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, periodYear, periodMonth int) (bool, error)
}
