package hr

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
)

func newPayrollService(payrollRepo *MockPayrollRunRepository, employeeRepo *MockEmployeeRepository, outboxRepo *MockOutboxRepository) *PayrollService {
	return NewPayrollService(payrollRepo, employeeRepo, outboxRepo, zap.NewNop())
}

func draftRun(t *testing.T, tenantID uuid.UUID) *hr.PayrollRun {
	t.Helper()
	run, err := hr.NewPayrollRun(tenantID, 2026, 3, "USD")
	require.NoError(t, err)
	run.ClearDomainEvents()
	return run
}

func TestPayrollService_Create_DuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	payrollRepo := new(MockPayrollRunRepository)
	employeeRepo := new(MockEmployeeRepository)
	outboxRepo := new(MockOutboxRepository)

	payrollRepo.On("ExistsForPeriod", ctx, tenantID, 2026, 3).Return(true, nil)

	svc := newPayrollService(payrollRepo, employeeRepo, outboxRepo)

	_, err := svc.Create(ctx, CreatePayrollRunInput{
		TenantID:    tenantID,
		PeriodYear:  2026,
		PeriodMonth: 3,
		Currency:    "USD",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "PERIOD_EXISTS", domainErr.Code)
	payrollRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPayrollService_Create_GeneratesPayslips(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	payrollRepo := new(MockPayrollRunRepository)
	employeeRepo := new(MockEmployeeRepository)
	outboxRepo := new(MockOutboxRepository)

	paid := testEmployee(t, tenantID, "EMP-001")
	unpaid := testEmployee(t, tenantID, "EMP-002")
	unpaid.BaseSalary = decimal.Zero

	payrollRepo.On("ExistsForPeriod", ctx, tenantID, 2026, 3).Return(false, nil)
	employeeRepo.On("FindPayrollEligible", ctx, tenantID).Return([]hr.Employee{*paid, *unpaid}, nil)
	payrollRepo.On("Save", ctx, mock.Anything).Return(nil)
	outboxRepo.On("Save", ctx, mock.Anything).Return(nil)

	svc := newPayrollService(payrollRepo, employeeRepo, outboxRepo)

	dto, err := svc.Create(ctx, CreatePayrollRunInput{
		TenantID:         tenantID,
		PeriodYear:       2026,
		PeriodMonth:      3,
		Currency:         "USD",
		GeneratePayslips: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "draft", dto.Status)
	assert.Equal(t, "2026-03", dto.Period)
	require.Len(t, dto.Payslips, 1)
	assert.Equal(t, paid.ID, dto.Payslips[0].EmployeeID)
	assert.True(t, dto.TotalGross.Equal(decimal.NewFromInt(5000)))
}

func TestPayrollService_AddPayslip_Duplicate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	payrollRepo := new(MockPayrollRunRepository)
	employeeRepo := new(MockEmployeeRepository)
	outboxRepo := new(MockOutboxRepository)

	employee := testEmployee(t, tenantID, "EMP-001")
	run := draftRun(t, tenantID)
	_, err := run.AddPayslip(employee.ID, decimal.NewFromInt(5000), decimal.Zero, decimal.Zero, decimal.NewFromInt(1000))
	require.NoError(t, err)

	payrollRepo.On("FindByIDForTenant", ctx, tenantID, run.ID).Return(run, nil)
	employeeRepo.On("FindByIDForTenant", ctx, tenantID, employee.ID).Return(employee, nil)

	svc := newPayrollService(payrollRepo, employeeRepo, outboxRepo)

	_, err = svc.AddPayslip(ctx, PayslipInput{
		TenantID:   tenantID,
		RunID:      run.ID,
		EmployeeID: employee.ID,
		Gross:      decimal.NewFromInt(5000),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "DUPLICATE_PAYSLIP", domainErr.Code)
	payrollRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPayrollService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	payrollRepo := new(MockPayrollRunRepository)
	employeeRepo := new(MockEmployeeRepository)
	outboxRepo := new(MockOutboxRepository)

	run := draftRun(t, tenantID)
	_, err := run.AddPayslip(uuid.New(), decimal.NewFromInt(4000), decimal.Zero, decimal.Zero, decimal.NewFromInt(800))
	require.NoError(t, err)

	payrollRepo.On("FindByIDForTenant", ctx, tenantID, run.ID).Return(run, nil)
	payrollRepo.On("Save", ctx, mock.Anything).Return(nil)
	outboxRepo.On("Save", ctx, mock.Anything).Return(nil)

	svc := newPayrollService(payrollRepo, employeeRepo, outboxRepo)

	dto, err := svc.Process(ctx, tenantID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "processing", dto.Status)

	dto, err = svc.Complete(ctx, tenantID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", dto.Status)

	dto, err = svc.MarkPaid(ctx, tenantID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", dto.Status)
	require.NotNil(t, dto.PaidAt)
	assert.True(t, dto.TotalNet.Equal(decimal.NewFromInt(3200)))

	// Completed and paid transitions each push an event to the outbox
	outboxRepo.AssertNumberOfCalls(t, "Save", 2)
}

func TestPayrollService_Cancel_PaidRun(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	payrollRepo := new(MockPayrollRunRepository)
	employeeRepo := new(MockEmployeeRepository)
	outboxRepo := new(MockOutboxRepository)

	run := draftRun(t, tenantID)
	_, err := run.AddPayslip(uuid.New(), decimal.NewFromInt(4000), decimal.Zero, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, run.Process())
	require.NoError(t, run.Complete())
	require.NoError(t, run.MarkPaid())
	run.ClearDomainEvents()

	payrollRepo.On("FindByIDForTenant", ctx, tenantID, run.ID).Return(run, nil)

	svc := newPayrollService(payrollRepo, employeeRepo, outboxRepo)

	_, err = svc.Cancel(ctx, tenantID, run.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
	payrollRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
