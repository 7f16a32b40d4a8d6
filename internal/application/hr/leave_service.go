package hr

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
)

// LeaveService handles leave request operations
type LeaveService struct {
	leaveRepo    hr.LeaveRequestRepository
	employeeRepo hr.EmployeeRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewLeaveService creates a new leave service
func NewLeaveService(leaveRepo hr.LeaveRequestRepository, employeeRepo hr.EmployeeRepository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *LeaveService {
	return &LeaveService{
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// CreateLeaveInput contains input for requesting leave
type CreateLeaveInput struct {
	TenantID     uuid.UUID
	EmployeeID   uuid.UUID
	Type         string
	StartDate    time.Time
	EndDate      time.Time
	StartDayType string
	EndDayType   string
	Reason       string
}

// DecideLeaveInput contains input for approving or rejecting a request
type DecideLeaveInput struct {
	TenantID   uuid.UUID
	ID         uuid.UUID
	ApproverID uuid.UUID
	Note       string
}

// LeaveDTO represents a leave request in responses
type LeaveDTO struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	EmployeeID   uuid.UUID  `json:"employee_id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	StartDayType string     `json:"start_day_type"`
	EndDayType   string     `json:"end_day_type"`
	Days         float64    `json:"days"`
	Reason       string     `json:"reason,omitempty"`
	DecidedBy    *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	DecisionNote string     `json:"decision_note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LeaveFilter represents filter for querying leave requests
type LeaveFilter struct {
	Page       int
	PageSize   int
	Status     string
	Type       string
	EmployeeID *uuid.UUID
}

// LeaveListResult represents a paginated leave request list
type LeaveListResult struct {
	Requests   []LeaveDTO `json:"requests"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// DayCountInput contains input for previewing a leave day count
type DayCountInput struct {
	StartDate    time.Time
	EndDate      time.Time
	StartDayType string
	EndDayType   string
}

// DayCountDTO represents a computed leave day count
type DayCountDTO struct {
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	StartDayType string    `json:"start_day_type"`
	EndDayType   string    `json:"end_day_type"`
	Days         float64   `json:"days"`
}

// CountDays computes the days a leave span would consume without
// creating a request. Empty day types default to full.
func (s *LeaveService) CountDays(input DayCountInput) (*DayCountDTO, error) {
	startDayType := hr.DayType(input.StartDayType)
	if startDayType == "" {
		startDayType = hr.DayTypeFull
	}
	endDayType := hr.DayType(input.EndDayType)
	if endDayType == "" {
		endDayType = hr.DayTypeFull
	}
	if !startDayType.IsValid() || !endDayType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DAY_TYPE", "Day type must be full or half")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATES", "Start and end dates are required")
	}

	days := hr.CountLeaveDays(input.StartDate, input.EndDate, startDayType, endDayType)
	if days < 0.5 {
		return nil, shared.NewDomainError("INVALID_DATES", "End date cannot be before start date")
	}

	return &DayCountDTO{
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		StartDayType: string(startDayType),
		EndDayType:   string(endDayType),
		Days:         days,
	}, nil
}

// Create submits a new leave request. Requests that overlap a pending or
// approved request for the same employee are rejected.
func (s *LeaveService) Create(ctx context.Context, input CreateLeaveInput) (*LeaveDTO, error) {
	s.logger.Info("Creating leave request",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("employee_id", input.EmployeeID.String()))

	employee, err := s.employeeRepo.FindByIDForTenant(ctx, input.TenantID, input.EmployeeID)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	if employee.Status == hr.EmployeeStatusTerminated {
		return nil, shared.NewDomainError("EMPLOYEE_TERMINATED", "Terminated employees cannot request leave")
	}

	startDayType := hr.DayType(input.StartDayType)
	if startDayType == "" {
		startDayType = hr.DayTypeFull
	}
	endDayType := hr.DayType(input.EndDayType)
	if endDayType == "" {
		endDayType = hr.DayTypeFull
	}

	request, err := hr.NewLeaveRequest(input.TenantID, input.EmployeeID, hr.LeaveType(input.Type),
		input.StartDate, input.EndDate, startDayType, endDayType, input.Reason)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.leaveRepo.FindOverlapping(ctx, input.TenantID, input.EmployeeID, request.StartDate, request.EndDate)
	if err != nil {
		s.logger.Error("Failed to check overlapping leave", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check overlapping leave")
	}
	if len(overlapping) > 0 {
		return nil, shared.NewDomainError("LEAVE_OVERLAP", "The requested dates overlap an existing leave request")
	}

	if err := s.leaveRepo.Save(ctx, request); err != nil {
		s.logger.Error("Failed to save leave request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save leave request")
	}

	if err := s.publishEvents(ctx, request); err != nil {
		s.logger.Error("Failed to publish leave events", zap.Error(err))
	}

	s.logger.Info("Leave request created",
		zap.String("request_id", request.ID.String()),
		zap.Float64("days", request.Days))

	return toLeaveDTO(request), nil
}

// GetByID retrieves a leave request by ID within a tenant
func (s *LeaveService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LeaveDTO, error) {
	request, err := s.findRequest(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toLeaveDTO(request), nil
}

// List retrieves a paginated list of leave requests
func (s *LeaveService) List(ctx context.Context, tenantID uuid.UUID, filter LeaveFilter) (*LeaveListResult, error) {
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
	if filter.Type != "" {
		sharedFilter.Filters["type"] = filter.Type
	}
	if filter.EmployeeID != nil {
		sharedFilter.Filters["employee_id"] = *filter.EmployeeID
	}

	requests, err := s.leaveRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list leave requests", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list leave requests")
	}

	total, err := s.leaveRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count leave requests", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count leave requests")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]LeaveDTO, len(requests))
	for i := range requests {
		dtos[i] = *toLeaveDTO(&requests[i])
	}

	return &LeaveListResult{
		Requests:   dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Approve approves a pending leave request. When the leave covers the
// current day the employee is moved to on_leave immediately.
func (s *LeaveService) Approve(ctx context.Context, input DecideLeaveInput) (*LeaveDTO, error) {
	request, err := s.findRequest(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := request.Approve(input.ApproverID, input.Note); err != nil {
		return nil, err
	}

	if err := s.leaveRepo.Save(ctx, request); err != nil {
		s.logger.Error("Failed to save leave request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save leave request")
	}

	s.syncEmployeeOnApproval(ctx, request)

	if err := s.publishEvents(ctx, request); err != nil {
		s.logger.Error("Failed to publish leave events", zap.Error(err))
	}

	s.logger.Info("Leave request approved",
		zap.String("request_id", input.ID.String()),
		zap.String("approver_id", input.ApproverID.String()))

	return toLeaveDTO(request), nil
}

// Reject rejects a pending leave request
func (s *LeaveService) Reject(ctx context.Context, input DecideLeaveInput) (*LeaveDTO, error) {
	request, err := s.findRequest(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}

	if err := request.Reject(input.ApproverID, input.Note); err != nil {
		return nil, err
	}

	if err := s.leaveRepo.Save(ctx, request); err != nil {
		s.logger.Error("Failed to save leave request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save leave request")
	}

	if err := s.publishEvents(ctx, request); err != nil {
		s.logger.Error("Failed to publish leave events", zap.Error(err))
	}

	s.logger.Info("Leave request rejected", zap.String("request_id", input.ID.String()))

	return toLeaveDTO(request), nil
}

// Cancel cancels a pending or not-yet-started approved request
func (s *LeaveService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*LeaveDTO, error) {
	request, err := s.findRequest(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := request.Cancel(time.Now()); err != nil {
		return nil, err
	}

	if err := s.leaveRepo.Save(ctx, request); err != nil {
		s.logger.Error("Failed to save leave request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save leave request")
	}

	if err := s.publishEvents(ctx, request); err != nil {
		s.logger.Error("Failed to publish leave events", zap.Error(err))
	}

	s.logger.Info("Leave request cancelled", zap.String("request_id", id.String()))

	return toLeaveDTO(request), nil
}

// syncEmployeeOnApproval moves the employee to on_leave when the approved
// span covers today. Failures here are logged, not returned, because the
// approval itself has already been persisted.
func (s *LeaveService) syncEmployeeOnApproval(ctx context.Context, request *hr.LeaveRequest) {
	today := time.Now()
	if today.Before(request.StartDate) || today.After(request.EndDate.AddDate(0, 0, 1)) {
		return
	}

	employee, err := s.employeeRepo.FindByIDForTenant(ctx, request.TenantID, request.EmployeeID)
	if err != nil {
		s.logger.Error("Failed to load employee for leave sync", zap.Error(err))
		return
	}
	if err := employee.StartLeave(); err != nil {
		s.logger.Warn("Employee not moved to on_leave",
			zap.String("employee_id", employee.ID.String()),
			zap.Error(err))
		return
	}
	if err := s.employeeRepo.Save(ctx, employee); err != nil {
		s.logger.Error("Failed to save employee leave status", zap.Error(err))
	}
}

func (s *LeaveService) findRequest(ctx context.Context, tenantID, id uuid.UUID) (*hr.LeaveRequest, error) {
	request, err := s.leaveRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("LEAVE_NOT_FOUND", "Leave request not found")
		}
		s.logger.Error("Failed to find leave request", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find leave request")
	}
	return request, nil
}

func (s *LeaveService) publishEvents(ctx context.Context, request *hr.LeaveRequest) error {
	events := request.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(request.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	request.ClearDomainEvents()
	return nil
}

// toLeaveDTO converts a domain LeaveRequest to LeaveDTO
func toLeaveDTO(request *hr.LeaveRequest) *LeaveDTO {
	return &LeaveDTO{
		ID:           request.ID,
		TenantID:     request.TenantID,
		EmployeeID:   request.EmployeeID,
		Type:         string(request.Type),
		Status:       string(request.Status),
		StartDate:    request.StartDate,
		EndDate:      request.EndDate,
		StartDayType: string(request.StartDayType),
		EndDayType:   string(request.EndDayType),
		Days:         request.Days,
		Reason:       request.Reason,
		DecidedBy:    request.DecidedBy,
		DecidedAt:    request.DecidedAt,
		DecisionNote: request.DecisionNote,
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}
