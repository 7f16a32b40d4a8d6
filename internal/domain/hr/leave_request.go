package hr

import (
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// LeaveType classifies a leave request
type LeaveType string

const (
	LeaveTypeAnnual      LeaveType = "annual"
	LeaveTypeSick        LeaveType = "sick"
	LeaveTypeUnpaid      LeaveType = "unpaid"
	LeaveTypeParental    LeaveType = "parental"
	LeaveTypeBereavement LeaveType = "bereavement"
)

// IsValid checks if the leave type is valid
func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeUnpaid, LeaveTypeParental, LeaveTypeBereavement:
		return true
	}
	return false
}

// DayType marks whether a boundary day is taken in full or in half
type DayType string

const (
	DayTypeFull DayType = "full"
	DayTypeHalf DayType = "half"
)

// IsValid checks if the day type is valid
func (t DayType) IsValid() bool {
	return t == DayTypeFull || t == DayTypeHalf
}

// LeaveStatus represents the approval status of a leave request
type LeaveStatus string

const (
	LeaveStatusPending   LeaveStatus = "pending"
	LeaveStatusApproved  LeaveStatus = "approved"
	LeaveStatusRejected  LeaveStatus = "rejected"
	LeaveStatusCancelled LeaveStatus = "cancelled"
)

// LeaveRequest is the aggregate root for employee leave
type LeaveRequest struct {
	shared.TenantAggregateRoot
	EmployeeID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Type         LeaveType   `gorm:"type:varchar(20);not null"`
	Status       LeaveStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	StartDate    time.Time   `gorm:"not null"`
	EndDate      time.Time   `gorm:"not null"`
	StartDayType DayType     `gorm:"type:varchar(10);not null;default:'full'"`
	EndDayType   DayType     `gorm:"type:varchar(10);not null;default:'full'"`
	Days         float64     `gorm:"type:decimal(6,1);not null"`
	Reason       string      `gorm:"type:varchar(500)"`
	DecidedBy    *uuid.UUID  `gorm:"type:uuid"`
	DecidedAt    *time.Time  `gorm:""`
	DecisionNote string      `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// CountLeaveDays computes the day span of a leave request. The span is
// the inclusive number of calendar days, minus 0.5 for each half
// boundary day. When start and end fall on the same day the end day
// type is ignored, so a single half day counts 0.5 and a single full
// day counts 1.
func CountLeaveDays(startDate, endDate time.Time, startDayType, endDayType DayType) float64 {
	start := truncateToDay(startDate)
	end := truncateToDay(endDate)

	days := float64(end.Sub(start).Hours()/24) + 1
	if startDayType == DayTypeHalf {
		days -= 0.5
	}
	if endDayType == DayTypeHalf && !start.Equal(end) {
		days -= 0.5
	}
	return days
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewLeaveRequest creates a pending leave request
func NewLeaveRequest(tenantID, employeeID uuid.UUID, leaveType LeaveType, startDate, endDate time.Time, startDayType, endDayType DayType, reason string) (*LeaveRequest, error) {
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if !leaveType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEAVE_TYPE", "Unknown leave type")
	}
	if !startDayType.IsValid() || !endDayType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DAY_TYPE", "Day type must be full or half")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATES", "Start and end dates are required")
	}
	if truncateToDay(endDate).Before(truncateToDay(startDate)) {
		return nil, shared.NewDomainError("INVALID_DATES", "End date cannot be before start date")
	}
	if len(reason) > 500 {
		return nil, shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 500 characters")
	}

	request := &LeaveRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EmployeeID:          employeeID,
		Type:                leaveType,
		Status:              LeaveStatusPending,
		StartDate:           truncateToDay(startDate),
		EndDate:             truncateToDay(endDate),
		StartDayType:        startDayType,
		EndDayType:          endDayType,
		Days:                CountLeaveDays(startDate, endDate, startDayType, endDayType),
		Reason:              reason,
	}

	request.AddDomainEvent(NewLeaveRequestedEvent(request))

	return request, nil
}

// Approve approves a pending leave request
func (r *LeaveRequest) Approve(approverID uuid.UUID, note string) error {
	if r.Status != LeaveStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can be approved")
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	r.Status = LeaveStatusApproved
	r.DecidedBy = &approverID
	r.DecidedAt = &now
	r.DecisionNote = note
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewLeaveDecidedEvent(r))

	return nil
}

// Reject rejects a pending leave request
func (r *LeaveRequest) Reject(approverID uuid.UUID, note string) error {
	if r.Status != LeaveStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending requests can be rejected")
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	r.Status = LeaveStatusRejected
	r.DecidedBy = &approverID
	r.DecidedAt = &now
	r.DecisionNote = note
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewLeaveDecidedEvent(r))

	return nil
}

// Cancel cancels a pending or approved request. Approved leave can only
// be cancelled before it starts.
func (r *LeaveRequest) Cancel(asOf time.Time) error {
	switch r.Status {
	case LeaveStatusPending:
	case LeaveStatusApproved:
		if !truncateToDay(asOf).Before(r.StartDate) {
			return shared.NewDomainError("LEAVE_STARTED", "Approved leave cannot be cancelled once it has started")
		}
	default:
		return shared.NewDomainError("INVALID_STATE", "Only pending or approved requests can be cancelled")
	}

	oldStatus := r.Status
	r.Status = LeaveStatusCancelled
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	r.AddDomainEvent(NewLeaveCancelledEvent(r, oldStatus))

	return nil
}

// Overlaps reports whether this request's date span intersects another
func (r *LeaveRequest) Overlaps(other *LeaveRequest) bool {
	return !r.StartDate.After(other.EndDate) && !other.StartDate.After(r.EndDate)
}
