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

// EmployeeService handles employee management operations
type EmployeeService struct {
	employeeRepo hr.EmployeeRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employeeRepo hr.EmployeeRepository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// CreateEmployeeInput contains input for creating an employee
type CreateEmployeeInput struct {
	TenantID       uuid.UUID
	StaffNumber    string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Department     string
	JobTitle       string
	HireDate       time.Time
	BaseSalary     decimal.Decimal
	SalaryCurrency string
	Address        *AddressInput
}

// UpdateEmployeeInput contains input for updating an employee
type UpdateEmployeeInput struct {
	TenantID   uuid.UUID
	ID         uuid.UUID
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Department *string
	JobTitle   *string
	Address    *AddressInput
}

// SetSalaryInput contains input for changing an employee's salary
type SetSalaryInput struct {
	TenantID uuid.UUID
	ID       uuid.UUID
	Amount   decimal.Decimal
	Currency string
}

// AddressInput contains input for a postal address
type AddressInput struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

func (a AddressInput) toAddress() (valueobject.Address, error) {
	return valueobject.NewAddress(a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
}

// EmployeeDTO represents an employee in responses
type EmployeeDTO struct {
	ID              uuid.UUID           `json:"id"`
	TenantID        uuid.UUID           `json:"tenant_id"`
	StaffNumber     string              `json:"staff_number"`
	FirstName       string              `json:"first_name"`
	LastName        string              `json:"last_name"`
	FullName        string              `json:"full_name"`
	Email           string              `json:"email"`
	Phone           string              `json:"phone,omitempty"`
	Department      string              `json:"department,omitempty"`
	JobTitle        string              `json:"job_title,omitempty"`
	Status          string              `json:"status"`
	HireDate        time.Time           `json:"hire_date"`
	TerminationDate *time.Time          `json:"termination_date,omitempty"`
	BaseSalary      decimal.Decimal     `json:"base_salary"`
	SalaryCurrency  string              `json:"salary_currency"`
	Address         valueobject.Address `json:"address"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// EmployeeFilter represents filter for querying employees
type EmployeeFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	Status     string
	Department string
}

// EmployeeListResult represents a paginated employee list
type EmployeeListResult struct {
	Employees  []EmployeeDTO `json:"employees"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// Create creates a new employee record
func (s *EmployeeService) Create(ctx context.Context, input CreateEmployeeInput) (*EmployeeDTO, error) {
	s.logger.Info("Creating employee",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("staff_number", input.StaffNumber))

	exists, err := s.employeeRepo.ExistsByStaffNumber(ctx, input.TenantID, input.StaffNumber)
	if err != nil {
		s.logger.Error("Failed to check staff number", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check staff number availability")
	}
	if exists {
		return nil, shared.NewDomainError("STAFF_NUMBER_EXISTS", "Staff number already exists")
	}

	employee, err := hr.NewEmployee(input.TenantID, input.StaffNumber, input.FirstName, input.LastName, input.Email, input.HireDate)
	if err != nil {
		return nil, err
	}

	if input.Phone != "" {
		if err := employee.UpdateProfile(employee.FirstName, employee.LastName, employee.Email, input.Phone); err != nil {
			return nil, err
		}
	}
	if input.Department != "" || input.JobTitle != "" {
		if err := employee.Assign(input.Department, input.JobTitle); err != nil {
			return nil, err
		}
	}
	if input.BaseSalary.IsPositive() {
		if err := employee.SetSalary(input.BaseSalary, valueobject.Currency(input.SalaryCurrency)); err != nil {
			return nil, err
		}
	}
	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		employee.SetAddress(address)
	}

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to save employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee created",
		zap.String("employee_id", employee.ID.String()),
		zap.String("staff_number", employee.StaffNumber))

	return toEmployeeDTO(employee), nil
}

// GetByID retrieves an employee by ID within a tenant
func (s *EmployeeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toEmployeeDTO(employee), nil
}

// GetByStaffNumber retrieves an employee by staff number
func (s *EmployeeService) GetByStaffNumber(ctx context.Context, tenantID uuid.UUID, staffNumber string) (*EmployeeDTO, error) {
	employee, err := s.employeeRepo.FindByStaffNumber(ctx, tenantID, staffNumber)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	return toEmployeeDTO(employee), nil
}

// List retrieves a paginated list of employees
func (s *EmployeeService) List(ctx context.Context, tenantID uuid.UUID, filter EmployeeFilter) (*EmployeeListResult, error) {
	sharedFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		sharedFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		sharedFilter.PageSize = filter.PageSize
	}
	sharedFilter.Search = filter.Keyword
	if filter.Status != "" {
		sharedFilter.Filters["status"] = filter.Status
	}
	if filter.Department != "" {
		sharedFilter.Filters["department"] = filter.Department
	}

	employees, err := s.employeeRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list employees", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list employees")
	}

	total, err := s.employeeRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count employees", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count employees")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i := range employees {
		dtos[i] = *toEmployeeDTO(&employees[i])
	}

	return &EmployeeListResult{
		Employees:  dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Update updates an employee's profile and assignment
func (s *EmployeeService) Update(ctx context.Context, input UpdateEmployeeInput) (*EmployeeDTO, error) {
	employee, err := s.findEmployee(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil || input.LastName != nil || input.Email != nil || input.Phone != nil {
		firstName := employee.FirstName
		lastName := employee.LastName
		email := employee.Email
		phone := employee.Phone
		if input.FirstName != nil {
			firstName = *input.FirstName
		}
		if input.LastName != nil {
			lastName = *input.LastName
		}
		if input.Email != nil {
			email = *input.Email
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		if err := employee.UpdateProfile(firstName, lastName, email, phone); err != nil {
			return nil, err
		}
	}

	if input.Department != nil || input.JobTitle != nil {
		department := employee.Department
		jobTitle := employee.JobTitle
		if input.Department != nil {
			department = *input.Department
		}
		if input.JobTitle != nil {
			jobTitle = *input.JobTitle
		}
		if err := employee.Assign(department, jobTitle); err != nil {
			return nil, err
		}
	}

	if input.Address != nil {
		address, err := input.Address.toAddress()
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		employee.SetAddress(address)
	}

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to update employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee updated", zap.String("employee_id", input.ID.String()))

	return toEmployeeDTO(employee), nil
}

// SetSalary changes an employee's base salary
func (s *EmployeeService) SetSalary(ctx context.Context, input SetSalaryInput) (*EmployeeDTO, error) {
	employee, err := s.findEmployee(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := employee.SetSalary(input.Amount, valueobject.Currency(input.Currency)); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to set employee salary", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee salary updated",
		zap.String("employee_id", input.ID.String()),
		zap.String("amount", input.Amount.String()))

	return toEmployeeDTO(employee), nil
}

// Terminate ends an employee's employment
func (s *EmployeeService) Terminate(ctx context.Context, tenantID, id uuid.UUID, terminationDate time.Time) (*EmployeeDTO, error) {
	employee, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := employee.Terminate(terminationDate); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to terminate employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee terminated",
		zap.String("employee_id", id.String()),
		zap.Time("termination_date", terminationDate))

	return toEmployeeDTO(employee), nil
}

// Reinstate reverses a termination
func (s *EmployeeService) Reinstate(ctx context.Context, tenantID, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := employee.Reinstate(); err != nil {
		return nil, err
	}

	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to reinstate employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee reinstated", zap.String("employee_id", id.String()))

	return toEmployeeDTO(employee), nil
}

// Delete removes a terminated employee record
func (s *EmployeeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	employee, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if employee.Status != hr.EmployeeStatusTerminated {
		return shared.NewDomainError("EMPLOYEE_NOT_TERMINATED", "Only terminated employees can be deleted")
	}

	employee.AddDomainEvent(hr.NewEmployeeDeletedEvent(employee))

	if err := s.employeeRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete employee", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete employee")
	}

	if err := s.publishEvents(ctx, employee); err != nil {
		s.logger.Error("Failed to publish employee events", zap.Error(err))
	}

	s.logger.Info("Employee deleted", zap.String("employee_id", id.String()))

	return nil
}

func (s *EmployeeService) publishEvents(ctx context.Context, employee *hr.Employee) error {
	events := employee.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(employee.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	employee.ClearDomainEvents()
	return nil
}

func (s *EmployeeService) findEmployee(ctx context.Context, tenantID, id uuid.UUID) (*hr.Employee, error) {
	employee, err := s.employeeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	return employee, nil
}

// toEmployeeDTO converts a domain Employee to EmployeeDTO
func toEmployeeDTO(employee *hr.Employee) *EmployeeDTO {
	return &EmployeeDTO{
		ID:              employee.ID,
		TenantID:        employee.TenantID,
		StaffNumber:     employee.StaffNumber,
		FirstName:       employee.FirstName,
		LastName:        employee.LastName,
		FullName:        employee.FullName(),
		Email:           employee.Email,
		Phone:           employee.Phone,
		Department:      employee.Department,
		JobTitle:        employee.JobTitle,
		Status:          string(employee.Status),
		HireDate:        employee.HireDate,
		TerminationDate: employee.TerminationDate,
		BaseSalary:      employee.BaseSalary,
		SalaryCurrency:  string(employee.SalaryCurrency),
		Address:         employee.Address,
		CreatedAt:       employee.CreatedAt,
		UpdatedAt:       employee.UpdatedAt,
	}
}
