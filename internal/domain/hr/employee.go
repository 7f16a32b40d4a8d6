package hr

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/peopledesk/backend/internal/domain/shared/valueobject"
)

// EmployeeStatus represents the employment status
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "active"
	EmployeeStatusOnLeave    EmployeeStatus = "on_leave"
	EmployeeStatusTerminated EmployeeStatus = "terminated"
)

// Employee is the aggregate root for staff records
type Employee struct {
	shared.TenantAggregateRoot
	StaffNumber     string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_employee_tenant_staff,priority:2"`
	FirstName       string               `gorm:"type:varchar(100);not null"`
	LastName        string               `gorm:"type:varchar(100);not null"`
	Email           string               `gorm:"type:varchar(200);not null;index"`
	Phone           string               `gorm:"type:varchar(50)"`
	Department      string               `gorm:"type:varchar(100);index"`
	JobTitle        string               `gorm:"type:varchar(100)"`
	Status          EmployeeStatus       `gorm:"type:varchar(20);not null;default:'active';index"`
	HireDate        time.Time            `gorm:"not null"`
	TerminationDate *time.Time           `gorm:""`
	BaseSalary      decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"` // per pay period
	SalaryCurrency  valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	Address         valueobject.Address  `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Employee) TableName() string {
	return "employees"
}

// NewEmployee creates an active employee
func NewEmployee(tenantID uuid.UUID, staffNumber, firstName, lastName, email string, hireDate time.Time) (*Employee, error) {
	if err := validateStaffNumber(staffNumber); err != nil {
		return nil, err
	}
	if err := validateEmployeeName(firstName, lastName); err != nil {
		return nil, err
	}
	if err := validateEmployeeEmail(email); err != nil {
		return nil, err
	}
	if hireDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_HIRE_DATE", "Hire date is required")
	}

	employee := &Employee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		StaffNumber:         strings.ToUpper(staffNumber),
		FirstName:           firstName,
		LastName:            lastName,
		Email:               strings.ToLower(email),
		Status:              EmployeeStatusActive,
		HireDate:            hireDate,
		BaseSalary:          decimal.Zero,
		SalaryCurrency:      valueobject.DefaultCurrency,
	}

	employee.AddDomainEvent(NewEmployeeCreatedEvent(employee))

	return employee, nil
}

// FullName returns the employee's display name
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// UpdateProfile updates the employee's identifying details
func (e *Employee) UpdateProfile(firstName, lastName, email, phone string) error {
	if err := validateEmployeeName(firstName, lastName); err != nil {
		return err
	}
	if err := validateEmployeeEmail(email); err != nil {
		return err
	}
	if phone != "" {
		if len(phone) > 50 || !regexp.MustCompile(`^[\d\s\-\(\)\+]+$`).MatchString(phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
		}
	}

	e.FirstName = firstName
	e.LastName = lastName
	e.Email = strings.ToLower(email)
	e.Phone = phone
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEmployeeUpdatedEvent(e))

	return nil
}

// Assign sets the employee's department and job title
func (e *Employee) Assign(department, jobTitle string) error {
	if len(department) > 100 {
		return shared.NewDomainError("INVALID_DEPARTMENT", "Department cannot exceed 100 characters")
	}
	if len(jobTitle) > 100 {
		return shared.NewDomainError("INVALID_JOB_TITLE", "Job title cannot exceed 100 characters")
	}

	e.Department = department
	e.JobTitle = jobTitle
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// SetSalary sets the employee's base salary per pay period
func (e *Employee) SetSalary(amount decimal.Decimal, currency valueobject.Currency) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_SALARY", "Salary cannot be negative")
	}
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter code")
	}

	e.BaseSalary = amount.Round(2)
	e.SalaryCurrency = currency
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// SetAddress sets the employee's home address
func (e *Employee) SetAddress(address valueobject.Address) {
	e.Address = address
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// StartLeave marks the employee as on leave
func (e *Employee) StartLeave() error {
	if e.Status != EmployeeStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active employees can start leave")
	}

	e.Status = EmployeeStatusOnLeave
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// EndLeave returns the employee to active status
func (e *Employee) EndLeave() error {
	if e.Status != EmployeeStatusOnLeave {
		return shared.NewDomainError("INVALID_STATE", "Employee is not on leave")
	}

	e.Status = EmployeeStatusActive
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Terminate ends the employment on the given date
func (e *Employee) Terminate(terminationDate time.Time) error {
	if e.Status == EmployeeStatusTerminated {
		return shared.NewDomainError("ALREADY_TERMINATED", "Employee is already terminated")
	}
	if terminationDate.Before(e.HireDate) {
		return shared.NewDomainError("INVALID_TERMINATION_DATE", "Termination date cannot be before hire date")
	}

	e.Status = EmployeeStatusTerminated
	e.TerminationDate = &terminationDate
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	e.AddDomainEvent(NewEmployeeTerminatedEvent(e))

	return nil
}

// Reinstate reverses a termination
func (e *Employee) Reinstate() error {
	if e.Status != EmployeeStatusTerminated {
		return shared.NewDomainError("INVALID_STATE", "Only terminated employees can be reinstated")
	}

	e.Status = EmployeeStatusActive
	e.TerminationDate = nil
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// IsActive reports whether the employee is actively employed
func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}

// IsPayrollEligible reports whether the employee should appear on a
// payroll run. Employees on leave stay on payroll.
func (e *Employee) IsPayrollEligible() bool {
	return e.Status == EmployeeStatusActive || e.Status == EmployeeStatusOnLeave
}

func validateStaffNumber(staffNumber string) error {
	if staffNumber == "" {
		return shared.NewDomainError("INVALID_STAFF_NUMBER", "Staff number cannot be empty")
	}
	if len(staffNumber) > 50 {
		return shared.NewDomainError("INVALID_STAFF_NUMBER", "Staff number cannot exceed 50 characters")
	}
	for _, r := range staffNumber {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_') {
			return shared.NewDomainError("INVALID_STAFF_NUMBER", "Staff number can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateEmployeeName(firstName, lastName string) error {
	if firstName == "" || len(firstName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "First name must be between 1 and 100 characters")
	}
	if lastName == "" || len(lastName) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Last name must be between 1 and 100 characters")
	}
	return nil
}

func validateEmployeeEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 || !regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`).MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
