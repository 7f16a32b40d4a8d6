package handler

import (
	"context"

	financeapp "github.com/peopledesk/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VendorHandler handles vendor API endpoints
type VendorHandler struct {
	BaseHandler
	vendorService *financeapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService *financeapp.VendorService) *VendorHandler {
	return &VendorHandler{
		vendorService: vendorService,
	}
}

func vendorAddressInput(r *AddressRequest) *financeapp.AddressInput {
	if r == nil {
		return nil
	}
	return &financeapp.AddressInput{
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// CreateVendorRequest represents a request to create a vendor
// @Description Request body for creating a vendor
type CreateVendorRequest struct {
	Code        string          `json:"code" binding:"required,min=1,max=50" example:"VEND-001"`
	Name        string          `json:"name" binding:"required,min=1,max=200" example:"Acme Office Supply"`
	ContactName string          `json:"contact_name" binding:"max=100" example:"Pat Doyle"`
	Phone       string          `json:"phone" binding:"max=50" example:"+1-503-555-0123"`
	Email       string          `json:"email" binding:"omitempty,email,max=200" example:"accounts@acme.example.com"`
	Address     *AddressRequest `json:"address"`
	TaxID       string          `json:"tax_id" binding:"max=50" example:"94-1234567"`
	BankName    string          `json:"bank_name" binding:"max=100" example:"First National"`
	BankAccount string          `json:"bank_account" binding:"max=50" example:"000123456789"`
	CreditDays  int             `json:"credit_days" binding:"gte=0,lte=365" example:"30"`
	Notes       string          `json:"notes" binding:"max=1000"`
}

// UpdateVendorRequest represents a request to update a vendor
// @Description Request body for updating a vendor
type UpdateVendorRequest struct {
	Name        *string         `json:"name" binding:"omitempty,min=1,max=200" example:"Acme Office Supply"`
	ContactName *string         `json:"contact_name" binding:"omitempty,max=100" example:"Pat Doyle"`
	Phone       *string         `json:"phone" binding:"omitempty,max=50" example:"+1-503-555-0124"`
	Email       *string         `json:"email" binding:"omitempty,email,max=200" example:"billing@acme.example.com"`
	Address     *AddressRequest `json:"address"`
	TaxID       *string         `json:"tax_id" binding:"omitempty,max=50" example:"94-1234567"`
	BankName    *string         `json:"bank_name" binding:"omitempty,max=100" example:"First National"`
	BankAccount *string         `json:"bank_account" binding:"omitempty,max=50" example:"000123456789"`
	CreditDays  *int            `json:"credit_days" binding:"omitempty,gte=0,lte=365" example:"45"`
	Notes       *string         `json:"notes" binding:"omitempty,max=1000"`
}

// Create godoc
// @ID           createVendor
// @Summary      Create a vendor
// @Description  Create a new vendor record
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body CreateVendorRequest true "Vendor creation request"
// @Success      201 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors [post]
func (h *VendorHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendorService.Create(c.Request.Context(), financeapp.CreateVendorInput{
		TenantID:    tenantID,
		Code:        req.Code,
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     vendorAddressInput(req.Address),
		TaxID:       req.TaxID,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		CreditDays:  req.CreditDays,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, vendor)
}

// GetByID godoc
// @ID           getVendorById
// @Summary      Get vendor by ID
// @Description  Retrieve a vendor by ID
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id} [get]
func (h *VendorHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	vendor, err := h.vendorService.GetByID(c.Request.Context(), tenantID, vendorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, vendor)
}

// List godoc
// @ID           listVendors
// @Summary      List vendors
// @Description  Retrieve a paginated list of vendors with optional filtering
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        keyword query string false "Search term (code, name, email)"
// @Param        status query string false "Status" Enums(active, inactive, blocked)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[financeapp.VendorListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors [get]
func (h *VendorHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := financeapp.VendorFilter{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	}

	result, err := h.vendorService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Vendors, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @ID           updateVendor
// @Summary      Update a vendor
// @Description  Update vendor contact and payment details
// @Tags         vendors
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Param        request body UpdateVendorRequest true "Vendor update request"
// @Success      200 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id} [put]
func (h *VendorHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendor, err := h.vendorService.Update(c.Request.Context(), financeapp.UpdateVendorInput{
		TenantID:    tenantID,
		ID:          vendorID,
		Name:        req.Name,
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Email:       req.Email,
		Address:     vendorAddressInput(req.Address),
		TaxID:       req.TaxID,
		BankName:    req.BankName,
		BankAccount: req.BankAccount,
		CreditDays:  req.CreditDays,
		Notes:       req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, vendor)
}

// Activate godoc
// @ID           activateVendor
// @Summary      Activate a vendor
// @Description  Return a vendor to active status
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id}/activate [post]
func (h *VendorHandler) Activate(c *gin.Context) {
	h.changeStatus(c, h.vendorService.Activate)
}

// Deactivate godoc
// @ID           deactivateVendor
// @Summary      Deactivate a vendor
// @Description  Mark a vendor as inactive
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id}/deactivate [post]
func (h *VendorHandler) Deactivate(c *gin.Context) {
	h.changeStatus(c, h.vendorService.Deactivate)
}

// Block godoc
// @ID           blockVendor
// @Summary      Block a vendor
// @Description  Block a vendor from new transactions
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      200 {object} APIResponse[financeapp.VendorDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id}/block [post]
func (h *VendorHandler) Block(c *gin.Context) {
	h.changeStatus(c, h.vendorService.Block)
}

// Delete godoc
// @ID           deleteVendor
// @Summary      Delete a vendor
// @Description  Delete a vendor record
// @Tags         vendors
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Vendor ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendors/{id} [delete]
func (h *VendorHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	if err := h.vendorService.Delete(c.Request.Context(), tenantID, vendorID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *VendorHandler) changeStatus(c *gin.Context, change func(ctx context.Context, tenantID, id uuid.UUID) (*financeapp.VendorDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor ID format")
		return
	}

	vendor, err := change(c.Request.Context(), tenantID, vendorID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, vendor)
}
