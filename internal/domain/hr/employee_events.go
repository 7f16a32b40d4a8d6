package hr

import (
	"time"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeEmployee = "Employee"

// Event type constants
const (
	EventTypeEmployeeCreated    = "EmployeeCreated"
	EventTypeEmployeeUpdated    = "EmployeeUpdated"
	EventTypeEmployeeTerminated = "EmployeeTerminated"
	EventTypeEmployeeDeleted    = "EmployeeDeleted"
)

// EmployeeCreatedEvent is published when an employee is created
type EmployeeCreatedEvent struct {
	shared.BaseDomainEvent
	StaffNumber string `json:"staff_number"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
}

// NewEmployeeCreatedEvent creates a new EmployeeCreatedEvent
func NewEmployeeCreatedEvent(employee *Employee) *EmployeeCreatedEvent {
	return &EmployeeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeCreated, AggregateTypeEmployee, employee.ID, employee.TenantID),
		StaffNumber:     employee.StaffNumber,
		FullName:        employee.FullName(),
		Email:           employee.Email,
	}
}

// EmployeeUpdatedEvent is published when an employee's profile changes
type EmployeeUpdatedEvent struct {
	shared.BaseDomainEvent
	StaffNumber string `json:"staff_number"`
	FullName    string `json:"full_name"`
}

// NewEmployeeUpdatedEvent creates a new EmployeeUpdatedEvent
func NewEmployeeUpdatedEvent(employee *Employee) *EmployeeUpdatedEvent {
	return &EmployeeUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeUpdated, AggregateTypeEmployee, employee.ID, employee.TenantID),
		StaffNumber:     employee.StaffNumber,
		FullName:        employee.FullName(),
	}
}

// EmployeeTerminatedEvent is published when employment ends
type EmployeeTerminatedEvent struct {
	shared.BaseDomainEvent
	StaffNumber     string    `json:"staff_number"`
	TerminationDate time.Time `json:"termination_date"`
}

// NewEmployeeTerminatedEvent creates a new EmployeeTerminatedEvent
func NewEmployeeTerminatedEvent(employee *Employee) *EmployeeTerminatedEvent {
	event := &EmployeeTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeTerminated, AggregateTypeEmployee, employee.ID, employee.TenantID),
		StaffNumber:     employee.StaffNumber,
	}
	if employee.TerminationDate != nil {
		event.TerminationDate = *employee.TerminationDate
	}
	return event
}

// EmployeeDeletedEvent is published when an employee record is deleted
type EmployeeDeletedEvent struct {
	shared.BaseDomainEvent
	StaffNumber string `json:"staff_number"`
}

// NewEmployeeDeletedEvent creates a new EmployeeDeletedEvent
func NewEmployeeDeletedEvent(employee *Employee) *EmployeeDeletedEvent {
	return &EmployeeDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmployeeDeleted, AggregateTypeEmployee, employee.ID, employee.TenantID),
		StaffNumber:     employee.StaffNumber,
	}
}
