package handler

import (
	"context"
	"time"

	hrapp "github.com/peopledesk/backend/internal/application/hr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeaveHandler handles leave request API endpoints
type LeaveHandler struct {
	BaseHandler
	leaveService *hrapp.LeaveService
}

// NewLeaveHandler creates a new LeaveHandler
func NewLeaveHandler(leaveService *hrapp.LeaveService) *LeaveHandler {
	return &LeaveHandler{
		leaveService: leaveService,
	}
}

// CreateLeaveRequest represents a request to submit a leave request
// @Description Request body for submitting a leave request
type CreateLeaveRequest struct {
	EmployeeID   string    `json:"employee_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type         string    `json:"type" binding:"required,oneof=annual sick unpaid parental bereavement" example:"annual"`
	StartDate    time.Time `json:"start_date" binding:"required" example:"2026-09-07T00:00:00Z"`
	EndDate      time.Time `json:"end_date" binding:"required" example:"2026-09-11T00:00:00Z"`
	StartDayType string    `json:"start_day_type" binding:"omitempty,oneof=full half" example:"full"`
	EndDayType   string    `json:"end_day_type" binding:"omitempty,oneof=full half" example:"half"`
	Reason       string    `json:"reason" binding:"max=500" example:"Family vacation"`
}

// DecideLeaveRequest represents an approval or rejection decision
// @Description Request body for approving or rejecting a leave request
type DecideLeaveRequest struct {
	Note string `json:"note" binding:"max=500" example:"Approved, coverage arranged"`
}

// Create godoc
// @ID           createLeaveRequest
// @Summary      Submit a leave request
// @Description  Submit a new leave request for an employee
// @Tags         leave
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateLeaveRequest true "Leave request"
// @Success      201 {object} APIResponse[hrapp.LeaveDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests [post]
func (h *LeaveHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	request, err := h.leaveService.Create(c.Request.Context(), hrapp.CreateLeaveInput{
		TenantID:     tenantID,
		EmployeeID:   employeeID,
		Type:         req.Type,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		StartDayType: req.StartDayType,
		EndDayType:   req.EndDayType,
		Reason:       req.Reason,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, request)
}

// GetByID godoc
// @ID           getLeaveRequestById
// @Summary      Get leave request by ID
// @Description  Retrieve a leave request by ID
// @Tags         leave
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Leave Request ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.LeaveDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests/{id} [get]
func (h *LeaveHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid leave request ID format")
		return
	}

	request, err := h.leaveService.GetByID(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, request)
}

// List godoc
// @ID           listLeaveRequests
// @Summary      List leave requests
// @Description  Retrieve a paginated list of leave requests with optional filtering
// @Tags         leave
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Status" Enums(pending, approved, rejected, cancelled)
// @Param        type query string false "Leave type" Enums(annual, sick, unpaid, parental, bereavement)
// @Param        employee_id query string false "Employee ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[hrapp.LeaveListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests [get]
func (h *LeaveHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := hrapp.LeaveFilter{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Status:   c.Query("status"),
		Type:     c.Query("type"),
	}
	if raw := c.Query("employee_id"); raw != "" {
		employeeID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid employee ID format")
			return
		}
		filter.EmployeeID = &employeeID
	}

	result, err := h.leaveService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Requests, result.Total, result.Page, result.PageSize)
}

// DayCount godoc
// @ID           countLeaveDays
// @Summary      Compute leave day count
// @Description  Compute the number of days a leave span would consume, honoring half-day boundaries
// @Tags         leave
// @Produce      json
// @Param        start_date query string true "Start date (RFC3339)" format(date-time)
// @Param        end_date query string true "End date (RFC3339)" format(date-time)
// @Param        start_day_type query string false "Start day type" Enums(full, half) default(full)
// @Param        end_day_type query string false "End day type" Enums(full, half) default(full)
// @Success      200 {object} APIResponse[hrapp.DayCountDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests/day-count [get]
func (h *LeaveHandler) DayCount(c *gin.Context) {
	startDate, err := time.Parse(time.RFC3339, c.Query("start_date"))
	if err != nil {
		h.BadRequest(c, "Invalid start date format")
		return
	}
	endDate, err := time.Parse(time.RFC3339, c.Query("end_date"))
	if err != nil {
		h.BadRequest(c, "Invalid end date format")
		return
	}

	result, err := h.leaveService.CountDays(hrapp.DayCountInput{
		StartDate:    startDate,
		EndDate:      endDate,
		StartDayType: c.Query("start_day_type"),
		EndDayType:   c.Query("end_day_type"),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Approve godoc
// @ID           approveLeaveRequest
// @Summary      Approve a leave request
// @Description  Approve a pending leave request
// @Tags         leave
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Leave Request ID" format(uuid)
// @Param        request body DecideLeaveRequest false "Decision note"
// @Success      200 {object} APIResponse[hrapp.LeaveDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests/{id}/approve [post]
func (h *LeaveHandler) Approve(c *gin.Context) {
	h.decide(c, h.leaveService.Approve)
}

// Reject godoc
// @ID           rejectLeaveRequest
// @Summary      Reject a leave request
// @Description  Reject a pending leave request
// @Tags         leave
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Leave Request ID" format(uuid)
// @Param        request body DecideLeaveRequest false "Decision note"
// @Success      200 {object} APIResponse[hrapp.LeaveDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests/{id}/reject [post]
func (h *LeaveHandler) Reject(c *gin.Context) {
	h.decide(c, h.leaveService.Reject)
}

// Cancel godoc
// @ID           cancelLeaveRequest
// @Summary      Cancel a leave request
// @Description  Cancel a pending or approved leave request
// @Tags         leave
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Leave Request ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.LeaveDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/leave-requests/{id}/cancel [post]
func (h *LeaveHandler) Cancel(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid leave request ID format")
		return
	}

	request, err := h.leaveService.Cancel(c.Request.Context(), tenantID, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, request)
}

func (h *LeaveHandler) decide(c *gin.Context, decision func(ctx context.Context, input hrapp.DecideLeaveInput) (*hrapp.LeaveDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid leave request ID format")
		return
	}

	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req DecideLeaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	request, err := decision(c.Request.Context(), hrapp.DecideLeaveInput{
		TenantID:   tenantID,
		ID:         requestID,
		ApproverID: approverID,
		Note:       req.Note,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, request)
}
