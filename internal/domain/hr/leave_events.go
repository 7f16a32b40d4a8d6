package hr

import (
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLeaveRequest = "LeaveRequest"

// Event type constants
const (
	EventTypeLeaveRequested = "LeaveRequested"
	EventTypeLeaveDecided   = "LeaveDecided"
	EventTypeLeaveCancelled = "LeaveCancelled"
)

// LeaveRequestedEvent is published when leave is requested
type LeaveRequestedEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID `json:"employee_id"`
	LeaveType  LeaveType `json:"leave_type"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Days       float64   `json:"days"`
}

// NewLeaveRequestedEvent creates a new LeaveRequestedEvent
func NewLeaveRequestedEvent(request *LeaveRequest) *LeaveRequestedEvent {
	return &LeaveRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaveRequested, AggregateTypeLeaveRequest, request.ID, request.TenantID),
		EmployeeID:      request.EmployeeID,
		LeaveType:       request.Type,
		StartDate:       request.StartDate,
		EndDate:         request.EndDate,
		Days:            request.Days,
	}
}

// LeaveDecidedEvent is published when a request is approved or rejected.
// The audit trail subscriber records the decision from this event.
type LeaveDecidedEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID   `json:"employee_id"`
	Status     LeaveStatus `json:"status"`
	DecidedBy  uuid.UUID   `json:"decided_by"`
	Days       float64     `json:"days"`
}

// NewLeaveDecidedEvent creates a new LeaveDecidedEvent
func NewLeaveDecidedEvent(request *LeaveRequest) *LeaveDecidedEvent {
	event := &LeaveDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaveDecided, AggregateTypeLeaveRequest, request.ID, request.TenantID),
		EmployeeID:      request.EmployeeID,
		Status:          request.Status,
		Days:            request.Days,
	}
	if request.DecidedBy != nil {
		event.DecidedBy = *request.DecidedBy
	}
	return event
}

// LeaveCancelledEvent is published when a request is cancelled
type LeaveCancelledEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID   `json:"employee_id"`
	OldStatus  LeaveStatus `json:"old_status"`
}

// NewLeaveCancelledEvent creates a new LeaveCancelledEvent
func NewLeaveCancelledEvent(request *LeaveRequest, oldStatus LeaveStatus) *LeaveCancelledEvent {
	return &LeaveCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaveCancelled, AggregateTypeLeaveRequest, request.ID, request.TenantID),
		EmployeeID:      request.EmployeeID,
		OldStatus:       oldStatus,
	}
}
