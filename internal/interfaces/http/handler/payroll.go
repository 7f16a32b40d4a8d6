package handler

import (
	"context"

	hrapp "github.com/peopledesk/backend/internal/application/hr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayrollHandler handles payroll run API endpoints
type PayrollHandler struct {
	BaseHandler
	payrollService *hrapp.PayrollService
}

// NewPayrollHandler creates a new PayrollHandler
func NewPayrollHandler(payrollService *hrapp.PayrollService) *PayrollHandler {
	return &PayrollHandler{
		payrollService: payrollService,
	}
}

// CreatePayrollRunRequest represents a request to create a payroll run
// @Description Request body for creating a payroll run
type CreatePayrollRunRequest struct {
	PeriodYear       int    `json:"period_year" binding:"required,min=2000,max=2100" example:"2026"`
	PeriodMonth      int    `json:"period_month" binding:"required,min=1,max=12" example:"8"`
	Currency         string `json:"currency" binding:"omitempty,len=3" example:"USD"`
	GeneratePayslips bool   `json:"generate_payslips" example:"true"`
}

// PayslipRequest represents a payslip to add or update on a run
// @Description Request body for adding or updating a payslip
type PayslipRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Gross      float64 `json:"gross" binding:"gte=0" example:"7916.67"`
	Allowances float64 `json:"allowances" binding:"gte=0" example:"500"`
	Deductions float64 `json:"deductions" binding:"gte=0" example:"250"`
	Tax        float64 `json:"tax" binding:"gte=0" example:"1583.33"`
}

// Create godoc
// @ID           createPayrollRun
// @Summary      Create a payroll run
// @Description  Create a draft payroll run for a period, optionally generating payslips for eligible employees
// @Tags         payroll
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreatePayrollRunRequest true "Payroll run creation request"
// @Success      201 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs [post]
func (h *PayrollHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePayrollRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	run, err := h.payrollService.Create(c.Request.Context(), hrapp.CreatePayrollRunInput{
		TenantID:         tenantID,
		PeriodYear:       req.PeriodYear,
		PeriodMonth:      req.PeriodMonth,
		Currency:         req.Currency,
		GeneratePayslips: req.GeneratePayslips,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, run)
}

// GetByID godoc
// @ID           getPayrollRunById
// @Summary      Get payroll run by ID
// @Description  Retrieve a payroll run with its payslips
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id} [get]
func (h *PayrollHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payroll run ID format")
		return
	}

	run, err := h.payrollService.GetByID(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// GetByPeriod godoc
// @ID           getPayrollRunByPeriod
// @Summary      Get payroll run by period
// @Description  Retrieve the payroll run for a year and month
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        year path int true "Period year"
// @Param        month path int true "Period month (1-12)"
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/period/{year}/{month} [get]
func (h *PayrollHandler) GetByPeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	year := parseIntParam(c, "year")
	month := parseIntParam(c, "month")
	if year <= 0 || month < 1 || month > 12 {
		h.BadRequest(c, "Invalid payroll period")
		return
	}

	run, err := h.payrollService.GetByPeriod(c.Request.Context(), tenantID, year, month)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// List godoc
// @ID           listPayrollRuns
// @Summary      List payroll runs
// @Description  Retrieve a paginated list of payroll runs with optional filtering
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Status" Enums(draft, processing, completed, paid, cancelled)
// @Param        period_year query int false "Period year"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[hrapp.PayrollListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs [get]
func (h *PayrollHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := hrapp.PayrollFilter{
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "page_size", 20),
		Status:     c.Query("status"),
		PeriodYear: parseIntQuery(c, "period_year", 0),
	}

	result, err := h.payrollService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Runs, result.Total, result.Page, result.PageSize)
}

// AddPayslip godoc
// @ID           addPayslip
// @Summary      Add a payslip
// @Description  Add a payslip for an employee to a draft payroll run
// @Tags         payroll
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Param        request body PayslipRequest true "Payslip"
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/payslips [post]
func (h *PayrollHandler) AddPayslip(c *gin.Context) {
	h.submitPayslip(c, uuid.Nil, h.payrollService.AddPayslip)
}

// UpdatePayslip godoc
// @ID           updatePayslip
// @Summary      Update a payslip
// @Description  Update payslip amounts on a draft payroll run
// @Tags         payroll
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Param        payslipId path string true "Payslip ID" format(uuid)
// @Param        request body PayslipRequest true "Payslip"
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/payslips/{payslipId} [put]
func (h *PayrollHandler) UpdatePayslip(c *gin.Context) {
	payslipID, err := uuid.Parse(c.Param("payslipId"))
	if err != nil {
		h.BadRequest(c, "Invalid payslip ID format")
		return
	}
	h.submitPayslip(c, payslipID, h.payrollService.UpdatePayslip)
}

// RemovePayslip godoc
// @ID           removePayslip
// @Summary      Remove a payslip
// @Description  Remove a payslip from a draft payroll run
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Param        payslipId path string true "Payslip ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/payslips/{payslipId} [delete]
func (h *PayrollHandler) RemovePayslip(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payroll run ID format")
		return
	}

	payslipID, err := uuid.Parse(c.Param("payslipId"))
	if err != nil {
		h.BadRequest(c, "Invalid payslip ID format")
		return
	}

	run, err := h.payrollService.RemovePayslip(c.Request.Context(), tenantID, runID, payslipID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

// Process godoc
// @ID           processPayrollRun
// @Summary      Process a payroll run
// @Description  Move a draft payroll run into processing
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/process [post]
func (h *PayrollHandler) Process(c *gin.Context) {
	h.transition(c, h.payrollService.Process)
}

// Complete godoc
// @ID           completePayrollRun
// @Summary      Complete a payroll run
// @Description  Mark a processing payroll run as completed
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/complete [post]
func (h *PayrollHandler) Complete(c *gin.Context) {
	h.transition(c, h.payrollService.Complete)
}

// MarkPaid godoc
// @ID           markPayrollRunPaid
// @Summary      Mark a payroll run paid
// @Description  Mark a completed payroll run as paid out
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/mark-paid [post]
func (h *PayrollHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.payrollService.MarkPaid)
}

// Cancel godoc
// @ID           cancelPayrollRun
// @Summary      Cancel a payroll run
// @Description  Cancel a payroll run that has not been paid
// @Tags         payroll
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Payroll Run ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.PayrollRunDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/payroll-runs/{id}/cancel [post]
func (h *PayrollHandler) Cancel(c *gin.Context) {
	h.transition(c, h.payrollService.Cancel)
}

func (h *PayrollHandler) submitPayslip(c *gin.Context, payslipID uuid.UUID, submit func(ctx context.Context, input hrapp.PayslipInput) (*hrapp.PayrollRunDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payroll run ID format")
		return
	}

	var req PayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	run, err := submit(c.Request.Context(), hrapp.PayslipInput{
		TenantID:   tenantID,
		RunID:      runID,
		PayslipID:  payslipID,
		EmployeeID: employeeID,
		Gross:      toDecimal(req.Gross),
		Allowances: toDecimal(req.Allowances),
		Deductions: toDecimal(req.Deductions),
		Tax:        toDecimal(req.Tax),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}

func (h *PayrollHandler) transition(c *gin.Context, change func(ctx context.Context, tenantID, id uuid.UUID) (*hrapp.PayrollRunDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payroll run ID format")
		return
	}

	run, err := change(c.Request.Context(), tenantID, runID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, run)
}
