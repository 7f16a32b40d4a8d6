package hr

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// PayrollService handles payroll run operations
type PayrollService struct {
	payrollRepo  hr.PayrollRunRepository
	employeeRepo hr.EmployeeRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewPayrollService creates a new payroll service
func NewPayrollService(payrollRepo hr.PayrollRunRepository, employeeRepo hr.EmployeeRepository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *PayrollService {
	return &PayrollService{
		payrollRepo:  payrollRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// CreatePayrollRunInput contains input for creating a payroll run
type CreatePayrollRunInput struct {
	TenantID    uuid.UUID
	PeriodYear  int
	PeriodMonth int
	Currency    string

	// GeneratePayslips pre-fills the draft with a payslip per
	// payroll-eligible employee using their base salary as gross.
	GeneratePayslips bool
}

// PayslipInput contains payslip amounts
type PayslipInput struct {
	TenantID   uuid.UUID
	RunID      uuid.UUID
	EmployeeID uuid.UUID
	PayslipID  uuid.UUID
	Gross      decimal.Decimal
	Allowances decimal.Decimal
	Deductions decimal.Decimal
	Tax        decimal.Decimal
}

// PayslipDTO represents a payslip in responses
type PayslipDTO struct {
	ID         uuid.UUID       `json:"id"`
	EmployeeID uuid.UUID       `json:"employee_id"`
	Gross      decimal.Decimal `json:"gross"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Tax        decimal.Decimal `json:"tax"`
	Net        decimal.Decimal `json:"net"`
	Note       string          `json:"note,omitempty"`
}

// PayrollRunDTO represents a payroll run in responses
type PayrollRunDTO struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	PeriodYear  int             `json:"period_year"`
	PeriodMonth int             `json:"period_month"`
	Period      string          `json:"period"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
	TotalGross  decimal.Decimal `json:"total_gross"`
	TotalNet    decimal.Decimal `json:"total_net"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	Payslips    []PayslipDTO    `json:"payslips"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PayrollFilter represents filter for querying payroll runs
type PayrollFilter struct {
	Page       int
	PageSize   int
	Status     string
	PeriodYear int
}

// PayrollListResult represents a paginated payroll run list
type PayrollListResult struct {
	Runs       []PayrollRunDTO `json:"runs"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Create creates a draft payroll run for a period. At most one
// non-cancelled run may exist per tenant and period.
func (s *PayrollService) Create(ctx context.Context, input CreatePayrollRunInput) (*PayrollRunDTO, error) {
	s.logger.Info("Creating payroll run",
		zap.String("tenant_id", input.TenantID.String()),
		zap.Int("period_year", input.PeriodYear),
		zap.Int("period_month", input.PeriodMonth))

	exists, err := s.payrollRepo.ExistsForPeriod(ctx, input.TenantID, input.PeriodYear, input.PeriodMonth)
	if err != nil {
		s.logger.Error("Failed to check payroll period", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check payroll period")
	}
	if exists {
		return nil, shared.NewDomainError("PERIOD_EXISTS", "A payroll run already exists for this period")
	}

	run, err := hr.NewPayrollRun(input.TenantID, input.PeriodYear, input.PeriodMonth, valueobject.Currency(input.Currency))
	if err != nil {
		return nil, err
	}

	if input.GeneratePayslips {
		if err := s.generatePayslips(ctx, run); err != nil {
			return nil, err
		}
	}

	if err := s.payrollRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to save payroll run", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save payroll run")
	}

	if err := s.publishEvents(ctx, run); err != nil {
		s.logger.Error("Failed to publish payroll events", zap.Error(err))
	}

	s.logger.Info("Payroll run created",
		zap.String("run_id", run.ID.String()),
		zap.String("period", run.PeriodLabel()),
		zap.Int("payslips", len(run.Payslips)))

	return toPayrollRunDTO(run), nil
}

// generatePayslips adds a payslip per payroll-eligible employee using the
// base salary as gross. Employees without a positive salary or with a
// salary currency different from the run's are skipped.
func (s *PayrollService) generatePayslips(ctx context.Context, run *hr.PayrollRun) error {
	employees, err := s.employeeRepo.FindPayrollEligible(ctx, run.TenantID)
	if err != nil {
		s.logger.Error("Failed to load payroll-eligible employees", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to load payroll-eligible employees")
	}

	for i := range employees {
		employee := &employees[i]
		if !employee.BaseSalary.IsPositive() {
			s.logger.Warn("Skipping employee without base salary",
				zap.String("employee_id", employee.ID.String()))
			continue
		}
		if employee.SalaryCurrency != run.Currency {
			s.logger.Warn("Skipping employee with mismatched salary currency",
				zap.String("employee_id", employee.ID.String()),
				zap.String("salary_currency", string(employee.SalaryCurrency)))
			continue
		}
		if _, err := run.AddPayslip(employee.ID, employee.BaseSalary, decimal.Zero, decimal.Zero, decimal.Zero); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a payroll run by ID within a tenant
func (s *PayrollService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRunDTO, error) {
	run, err := s.findRun(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toPayrollRunDTO(run), nil
}

// GetByPeriod retrieves the run for a period, if one exists
func (s *PayrollService) GetByPeriod(ctx context.Context, tenantID uuid.UUID, periodYear, periodMonth int) (*PayrollRunDTO, error) {
	run, err := s.payrollRepo.FindByPeriod(ctx, tenantID, periodYear, periodMonth)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("RUN_NOT_FOUND", "Payroll run not found")
		}
		s.logger.Error("Failed to find payroll run", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find payroll run")
	}
	return toPayrollRunDTO(run), nil
}

// List retrieves a paginated list of payroll runs
func (s *PayrollService) List(ctx context.Context, tenantID uuid.UUID, filter PayrollFilter) (*PayrollListResult, error) {
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
	if filter.PeriodYear > 0 {
		sharedFilter.Filters["period_year"] = filter.PeriodYear
	}

	runs, err := s.payrollRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list payroll runs", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list payroll runs")
	}

	total, err := s.payrollRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count payroll runs", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count payroll runs")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]PayrollRunDTO, len(runs))
	for i := range runs {
		dtos[i] = *toPayrollRunDTO(&runs[i])
	}

	return &PayrollListResult{
		Runs:       dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// AddPayslip adds an employee's payslip to a draft run
func (s *PayrollService) AddPayslip(ctx context.Context, input PayslipInput) (*PayrollRunDTO, error) {
	run, err := s.findRun(ctx, input.TenantID, input.RunID)
	if err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.FindByIDForTenant(ctx, input.TenantID, input.EmployeeID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	if !employee.IsPayrollEligible() {
		return nil, shared.NewDomainError("EMPLOYEE_NOT_ELIGIBLE", "Employee is not payroll eligible")
	}

	if _, err := run.AddPayslip(input.EmployeeID, input.Gross, input.Allowances, input.Deductions, input.Tax); err != nil {
		return nil, err
	}

	return s.saveRun(ctx, run)
}

// UpdatePayslip updates a payslip's amounts on a draft run
func (s *PayrollService) UpdatePayslip(ctx context.Context, input PayslipInput) (*PayrollRunDTO, error) {
	run, err := s.findRun(ctx, input.TenantID, input.RunID)
	if err != nil {
		return nil, err
	}

	if err := run.UpdatePayslip(input.PayslipID, input.Gross, input.Allowances, input.Deductions, input.Tax); err != nil {
		return nil, err
	}

	return s.saveRun(ctx, run)
}

// RemovePayslip removes a payslip from a draft run
func (s *PayrollService) RemovePayslip(ctx context.Context, tenantID, runID, payslipID uuid.UUID) (*PayrollRunDTO, error) {
	run, err := s.findRun(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	if err := run.RemovePayslip(payslipID); err != nil {
		return nil, err
	}

	return s.saveRun(ctx, run)
}

// Process locks a draft run for review
func (s *PayrollService) Process(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRunDTO, error) {
	return s.transition(ctx, tenantID, id, (*hr.PayrollRun).Process, "processed")
}

// Complete finalizes a processing run's calculations
func (s *PayrollService) Complete(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRunDTO, error) {
	return s.transition(ctx, tenantID, id, (*hr.PayrollRun).Complete, "completed")
}

// MarkPaid records salary disbursement for a completed run. The paid
// event drives the salary journal entry in the ledger.
func (s *PayrollService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRunDTO, error) {
	return s.transition(ctx, tenantID, id, (*hr.PayrollRun).MarkPaid, "marked paid")
}

// Cancel cancels an unpaid run
func (s *PayrollService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*PayrollRunDTO, error) {
	return s.transition(ctx, tenantID, id, (*hr.PayrollRun).Cancel, "cancelled")
}

func (s *PayrollService) transition(ctx context.Context, tenantID, id uuid.UUID, change func(*hr.PayrollRun) error, action string) (*PayrollRunDTO, error) {
	run, err := s.findRun(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := change(run); err != nil {
		return nil, err
	}

	dto, err := s.saveRun(ctx, run)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payroll run "+action,
		zap.String("run_id", id.String()),
		zap.String("period", run.PeriodLabel()))

	return dto, nil
}

func (s *PayrollService) saveRun(ctx context.Context, run *hr.PayrollRun) (*PayrollRunDTO, error) {
	if err := s.payrollRepo.Save(ctx, run); err != nil {
		s.logger.Error("Failed to save payroll run", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save payroll run")
	}

	if err := s.publishEvents(ctx, run); err != nil {
		s.logger.Error("Failed to publish payroll events", zap.Error(err))
	}

	return toPayrollRunDTO(run), nil
}

func (s *PayrollService) findRun(ctx context.Context, tenantID, id uuid.UUID) (*hr.PayrollRun, error) {
	run, err := s.payrollRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("RUN_NOT_FOUND", "Payroll run not found")
		}
		s.logger.Error("Failed to find payroll run", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find payroll run")
	}
	return run, nil
}

func (s *PayrollService) publishEvents(ctx context.Context, run *hr.PayrollRun) error {
	events := run.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(run.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	run.ClearDomainEvents()
	return nil
}

// toPayrollRunDTO converts a domain PayrollRun to PayrollRunDTO
func toPayrollRunDTO(run *hr.PayrollRun) *PayrollRunDTO {
	payslips := make([]PayslipDTO, len(run.Payslips))
	for i, slip := range run.Payslips {
		payslips[i] = PayslipDTO{
			ID:         slip.ID,
			EmployeeID: slip.EmployeeID,
			Gross:      slip.Gross,
			Allowances: slip.Allowances,
			Deductions: slip.Deductions,
			Tax:        slip.Tax,
			Net:        slip.Net,
			Note:       slip.Note,
		}
	}

	return &PayrollRunDTO{
		ID:          run.ID,
		TenantID:    run.TenantID,
		PeriodYear:  run.PeriodYear,
		PeriodMonth: run.PeriodMonth,
		Period:      run.PeriodLabel(),
		Status:      string(run.Status),
		Currency:    string(run.Currency),
		TotalGross:  run.TotalGross,
		TotalNet:    run.TotalNet,
		TotalTax:    run.TotalTax,
		ProcessedAt: run.ProcessedAt,
		PaidAt:      run.PaidAt,
		Payslips:    payslips,
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}
