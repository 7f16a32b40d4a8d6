package handler

import (
	"context"
	"time"

	hrapp "github.com/peopledesk/backend/internal/application/hr"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EmployeeHandler handles employee-related API endpoints
type EmployeeHandler struct {
	BaseHandler
	employeeService *hrapp.EmployeeService
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(employeeService *hrapp.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		employeeService: employeeService,
	}
}

func hrAddressInput(r *AddressRequest) *hrapp.AddressInput {
	if r == nil {
		return nil
	}
	return &hrapp.AddressInput{
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CreateEmployeeRequest represents a request to create an employee
// @Description Request body for creating an employee
type CreateEmployeeRequest struct {
	StaffNumber    string          `json:"staff_number" binding:"required,min=1,max=50" example:"EMP-0042"`
	FirstName      string          `json:"first_name" binding:"required,min=1,max=100" example:"Ada"`
	LastName       string          `json:"last_name" binding:"required,min=1,max=100" example:"Lovelace"`
	Email          string          `json:"email" binding:"required,email,max=200" example:"ada@example.com"`
	Phone          string          `json:"phone" binding:"max=50" example:"+1-503-555-0100"`
	Department     string          `json:"department" binding:"max=100" example:"Engineering"`
	JobTitle       string          `json:"job_title" binding:"max=100" example:"Staff Engineer"`
	HireDate       time.Time       `json:"hire_date" binding:"required" example:"2026-01-15T00:00:00Z"`
	BaseSalary     float64         `json:"base_salary" binding:"gte=0" example:"95000"`
	SalaryCurrency string          `json:"salary_currency" binding:"omitempty,len=3" example:"USD"`
	Address        *AddressRequest `json:"address"`
}

// UpdateEmployeeRequest represents a request to update an employee
// @Description Request body for updating an employee
type UpdateEmployeeRequest struct {
	FirstName  *string         `json:"first_name" binding:"omitempty,min=1,max=100" example:"Ada"`
	LastName   *string         `json:"last_name" binding:"omitempty,min=1,max=100" example:"Lovelace"`
	Email      *string         `json:"email" binding:"omitempty,email,max=200" example:"ada@example.com"`
	Phone      *string         `json:"phone" binding:"omitempty,max=50" example:"+1-503-555-0101"`
	Department *string         `json:"department" binding:"omitempty,max=100" example:"Platform"`
	JobTitle   *string         `json:"job_title" binding:"omitempty,max=100" example:"Principal Engineer"`
	Address    *AddressRequest `json:"address"`
}

// SetSalaryRequest represents a request to change an employee's salary
// @Description Request body for setting an employee's base salary
type SetSalaryRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"105000"`
	Currency string  `json:"currency" binding:"omitempty,len=3" example:"USD"`
}

// TerminateEmployeeRequest represents a request to terminate an employee
// @Description Request body for terminating an employee
type TerminateEmployeeRequest struct {
	TerminationDate time.Time `json:"termination_date" binding:"required" example:"2026-09-30T00:00:00Z"`
}

// Create godoc
// @ID           createEmployee
// @Summary      Create an employee
// @Description  Create a new employee record
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateEmployeeRequest true "Employee creation request"
// @Success      201 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employee, err := h.employeeService.Create(c.Request.Context(), hrapp.CreateEmployeeInput{
		TenantID:       tenantID,
		StaffNumber:    req.StaffNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Department:     req.Department,
		JobTitle:       req.JobTitle,
		HireDate:       req.HireDate,
		BaseSalary:     decimal.NewFromFloat(req.BaseSalary),
		SalaryCurrency: req.SalaryCurrency,
		Address:        hrAddressInput(req.Address),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, employee)
}

// GetByID godoc
// @ID           getEmployeeById
// @Summary      Get employee by ID
// @Description  Retrieve an employee by ID
// @Tags         employees
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id} [get]
func (h *EmployeeHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	employee, err := h.employeeService.GetByID(c.Request.Context(), tenantID, employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}

// GetByStaffNumber godoc
// @ID           getEmployeeByStaffNumber
// @Summary      Get employee by staff number
// @Description  Retrieve an employee by staff number
// @Tags         employees
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        staffNumber path string true "Staff Number"
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/staff-number/{staffNumber} [get]
func (h *EmployeeHandler) GetByStaffNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	staffNumber := c.Param("staffNumber")
	if staffNumber == "" {
		h.BadRequest(c, "Staff number is required")
		return
	}

	employee, err := h.employeeService.GetByStaffNumber(c.Request.Context(), tenantID, staffNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}

// List godoc
// @ID           listEmployees
// @Summary      List employees
// @Description  Retrieve a paginated list of employees with optional filtering
// @Tags         employees
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        keyword query string false "Search term (staff number, name, email)"
// @Param        status query string false "Employee status" Enums(active, on_leave, terminated)
// @Param        department query string false "Department"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[hrapp.EmployeeListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := hrapp.EmployeeFilter{
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "page_size", 20),
		Keyword:    c.Query("keyword"),
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}

	result, err := h.employeeService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Employees, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateEmployee
// @Summary      Update an employee
// @Description  Update an employee's contact and position details
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Param        request body UpdateEmployeeRequest true "Employee update request"
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employee, err := h.employeeService.Update(c.Request.Context(), hrapp.UpdateEmployeeInput{
		TenantID:   tenantID,
		ID:         employeeID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Department: req.Department,
		JobTitle:   req.JobTitle,
		Address:    hrAddressInput(req.Address),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}

// SetSalary godoc
// @ID           setEmployeeSalary
// @Summary      Set employee salary
// @Description  Change an employee's base salary
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Param        request body SetSalaryRequest true "New salary"
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id}/salary [put]
func (h *EmployeeHandler) SetSalary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	var req SetSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employee, err := h.employeeService.SetSalary(c.Request.Context(), hrapp.SetSalaryInput{
		TenantID: tenantID,
		ID:       employeeID,
		Amount:   decimal.NewFromFloat(req.Amount),
		Currency: req.Currency,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}

// Terminate godoc
// @ID           terminateEmployee
// @Summary      Terminate an employee
// @Description  Mark an employee as terminated on the given date
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Param        request body TerminateEmployeeRequest true "Termination date"
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id}/terminate [post]
func (h *EmployeeHandler) Terminate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	var req TerminateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employee, err := h.employeeService.Terminate(c.Request.Context(), tenantID, employeeID, req.TerminationDate)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}

// Reinstate godoc
// @ID           reinstateEmployee
// @Summary      Reinstate an employee
// @Description  Return a terminated employee to active status
// @Tags         employees
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Success      200 {object} APIResponse[hrapp.EmployeeDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id}/reinstate [post]
func (h *EmployeeHandler) Reinstate(c *gin.Context) {
	h.transition(c, h.employeeService.Reinstate)
}

// Delete godoc
// @ID           deleteEmployee
// @Summary      Delete an employee
// @Description  Delete an employee record
// @Tags         employees
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Employee ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /hr/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	if err := h.employeeService.Delete(c.Request.Context(), tenantID, employeeID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *EmployeeHandler) transition(c *gin.Context, change func(ctx context.Context, tenantID, id uuid.UUID) (*hrapp.EmployeeDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	employeeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	employee, err := change(c.Request.Context(), tenantID, employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, employee)
}
