package handler

import (
	"context"

	mdmapp "github.com/peopledesk/backend/internal/application/mdm"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DeviceHandler handles managed device API endpoints
type DeviceHandler struct {
	BaseHandler
	deviceService *mdmapp.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceService *mdmapp.DeviceService) *DeviceHandler {
	return &DeviceHandler{
		deviceService: deviceService,
	}
}

// EnrollDeviceRequest represents a request to enroll a device
// @Description Request body for enrolling a device under management
type EnrollDeviceRequest struct {
	DeviceIdentifier string  `json:"device_identifier" binding:"required,min=1,max=100" example:"C02ZK1ANLVDQ"`
	Platform         string  `json:"platform" binding:"required,oneof=ios android macos windows linux" example:"macos"`
	Model            string  `json:"model" binding:"max=100" example:"MacBook Pro 14"`
	OSVersion        string  `json:"os_version" binding:"max=50" example:"14.6.1"`
	EmployeeID       *string `json:"employee_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// AssignDeviceRequest represents a request to assign a device
// @Description Request body for assigning a device to an employee
type AssignDeviceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// DeviceHeartbeatRequest represents a device check-in
// @Description Request body for a device heartbeat
type DeviceHeartbeatRequest struct {
	DeviceIdentifier string `json:"device_identifier" binding:"required,min=1,max=100" example:"C02ZK1ANLVDQ"`
	OSVersion        string `json:"os_version" binding:"max=50" example:"14.6.1"`
}

// Enroll godoc
// @ID           enrollDevice
// @Summary      Enroll a device
// @Description  Register a device under management, optionally assigning it to an employee
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body EnrollDeviceRequest true "Device enrollment request"
// @Success      201 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices [post]
func (h *DeviceHandler) Enroll(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req EnrollDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	input := mdmapp.EnrollDeviceInput{
		TenantID:         tenantID,
		DeviceIdentifier: req.DeviceIdentifier,
		Platform:         req.Platform,
		Model:            req.Model,
		OSVersion:        req.OSVersion,
	}
	if req.EmployeeID != nil {
		employeeID, err := uuid.Parse(*req.EmployeeID)
		if err != nil {
			h.BadRequest(c, "Invalid employee ID format")
			return
		}
		input.EmployeeID = &employeeID
	}

	device, err := h.deviceService.Enroll(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, device)
}

// GetByID godoc
// @ID           getDeviceById
// @Summary      Get device by ID
// @Description  Retrieve a managed device by ID
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id} [get]
func (h *DeviceHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid device ID format")
		return
	}

	device, err := h.deviceService.GetByID(c.Request.Context(), tenantID, deviceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, device)
}

// List godoc
// @ID           listDevices
// @Summary      List devices
// @Description  Retrieve a paginated list of managed devices with optional filtering
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        status query string false "Status" Enums(enrolled, active, locked, wiped, retired)
// @Param        platform query string false "Platform" Enums(ios, android, macos, windows, linux)
// @Param        employee_id query string false "Employee ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[mdmapp.DeviceListResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices [get]
func (h *DeviceHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	filter := mdmapp.DeviceFilter{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Status:   c.Query("status"),
		Platform: c.Query("platform"),
	}
	if raw := c.Query("employee_id"); raw != "" {
		employeeID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid employee ID format")
			return
		}
		filter.EmployeeID = &employeeID
	}

	result, err := h.deviceService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Devices, result.Total, result.Page, result.PageSize)
}

// Assign godoc
// @ID           assignDevice
// @Summary      Assign a device
// @Description  Assign a managed device to an employee
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Param        request body AssignDeviceRequest true "Assignment request"
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/assign [post]
func (h *DeviceHandler) Assign(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid device ID format")
		return
	}

	var req AssignDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		h.BadRequest(c, "Invalid employee ID format")
		return
	}

	device, err := h.deviceService.Assign(c.Request.Context(), tenantID, deviceID, employeeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, device)
}

// Unassign godoc
// @ID           unassignDevice
// @Summary      Unassign a device
// @Description  Remove a managed device's employee assignment
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/unassign [post]
func (h *DeviceHandler) Unassign(c *gin.Context) {
	h.changeStatus(c, h.deviceService.Unassign)
}

// Heartbeat godoc
// @ID           deviceHeartbeat
// @Summary      Device heartbeat
// @Description  Record a device check-in, updating last seen time and OS version
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        request body DeviceHeartbeatRequest true "Heartbeat"
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/heartbeat [post]
func (h *DeviceHandler) Heartbeat(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req DeviceHeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	device, err := h.deviceService.Heartbeat(c.Request.Context(), mdmapp.HeartbeatInput{
		TenantID:         tenantID,
		DeviceIdentifier: req.DeviceIdentifier,
		OSVersion:        req.OSVersion,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, device)
}

// Lock godoc
// @ID           lockDevice
// @Summary      Lock a device
// @Description  Lock a managed device
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/lock [post]
func (h *DeviceHandler) Lock(c *gin.Context) {
	h.changeStatus(c, h.deviceService.Lock)
}

// Unlock godoc
// @ID           unlockDevice
// @Summary      Unlock a device
// @Description  Return a locked device to active status
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/unlock [post]
func (h *DeviceHandler) Unlock(c *gin.Context) {
	h.changeStatus(c, h.deviceService.Unlock)
}

// Wipe godoc
// @ID           wipeDevice
// @Summary      Wipe a device
// @Description  Remotely wipe a managed device
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/wipe [post]
func (h *DeviceHandler) Wipe(c *gin.Context) {
	h.changeStatus(c, h.deviceService.Wipe)
}

// Retire godoc
// @ID           retireDevice
// @Summary      Retire a device
// @Description  Retire a managed device from service
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      200 {object} APIResponse[mdmapp.DeviceDTO]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id}/retire [post]
func (h *DeviceHandler) Retire(c *gin.Context) {
	h.changeStatus(c, h.deviceService.Retire)
}

// Delete godoc
// @ID           deleteDevice
// @Summary      Delete a device
// @Description  Delete a retired or wiped device record
// @Tags         devices
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID (optional for dev)"
// @Param        id path string true "Device ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /mdm/devices/{id} [delete]
func (h *DeviceHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid device ID format")
		return
	}

	if err := h.deviceService.Delete(c.Request.Context(), tenantID, deviceID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *DeviceHandler) changeStatus(c *gin.Context, change func(ctx context.Context, tenantID, id uuid.UUID) (*mdmapp.DeviceDTO, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid device ID format")
		return
	}

	device, err := change(c.Request.Context(), tenantID, deviceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, device)
}
