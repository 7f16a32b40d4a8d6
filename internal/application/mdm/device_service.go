package mdm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/mdm"
	"github.com/peopledesk/backend/internal/domain/shared"
)

// DeviceService handles mobile device management operations
type DeviceService struct {
	deviceRepo   mdm.MobileDeviceRepository
	employeeRepo hr.EmployeeRepository
	outboxRepo   shared.OutboxRepository
	logger       *zap.Logger
}

// NewDeviceService creates a new device service
func NewDeviceService(deviceRepo mdm.MobileDeviceRepository, employeeRepo hr.EmployeeRepository, outboxRepo shared.OutboxRepository, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		deviceRepo:   deviceRepo,
		employeeRepo: employeeRepo,
		outboxRepo:   outboxRepo,
		logger:       logger,
	}
}

// EnrollDeviceInput contains input for enrolling a device
type EnrollDeviceInput struct {
	TenantID         uuid.UUID
	DeviceIdentifier string
	Platform         string
	Model            string
	OSVersion        string
	EmployeeID       *uuid.UUID
}

// HeartbeatInput contains input for a device check-in
type HeartbeatInput struct {
	TenantID         uuid.UUID
	DeviceIdentifier string
	OSVersion        string
}

// DeviceDTO represents a managed device in responses
type DeviceDTO struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	DeviceIdentifier string     `json:"device_identifier"`
	Platform         string     `json:"platform"`
	Model            string     `json:"model,omitempty"`
	OSVersion        string     `json:"os_version,omitempty"`
	Status           string     `json:"status"`
	EmployeeID       *uuid.UUID `json:"employee_id,omitempty"`
	LastSeenAt       *time.Time `json:"last_seen_at,omitempty"`
	EnrolledAt       time.Time  `json:"enrolled_at"`
	WipedAt          *time.Time `json:"wiped_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DeviceFilter represents filter for querying devices
type DeviceFilter struct {
	Page       int
	PageSize   int
	Status     string
	Platform   string
	EmployeeID *uuid.UUID
}

// DeviceListResult represents a paginated device list
type DeviceListResult struct {
	Devices    []DeviceDTO `json:"devices"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Enroll registers a device under management, optionally assigning it
// to an employee right away.
func (s *DeviceService) Enroll(ctx context.Context, input EnrollDeviceInput) (*DeviceDTO, error) {
	s.logger.Info("Enrolling device",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("device_identifier", input.DeviceIdentifier))

	existing, err := s.deviceRepo.FindByIdentifier(ctx, input.TenantID, input.DeviceIdentifier)
	if err != nil && err != shared.ErrNotFound {
		s.logger.Error("Failed to check device identifier", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check device identifier")
	}
	if existing != nil {
		return nil, shared.NewDomainError("DEVICE_EXISTS", "Device is already enrolled")
	}

	device, err := mdm.Enroll(input.TenantID, input.DeviceIdentifier, mdm.DevicePlatform(input.Platform), input.Model, input.OSVersion)
	if err != nil {
		return nil, err
	}

	if input.EmployeeID != nil {
		if err := s.checkEmployee(ctx, input.TenantID, *input.EmployeeID); err != nil {
			return nil, err
		}
		if err := device.Assign(*input.EmployeeID); err != nil {
			return nil, err
		}
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		s.logger.Error("Failed to save device", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save device")
	}

	if err := s.publishEvents(ctx, device); err != nil {
		s.logger.Error("Failed to publish device events", zap.Error(err))
	}

	s.logger.Info("Device enrolled",
		zap.String("device_id", device.ID.String()),
		zap.String("platform", string(device.Platform)))

	return toDeviceDTO(device), nil
}

// GetByID retrieves a device by ID within a tenant
func (s *DeviceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	device, err := s.findDevice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toDeviceDTO(device), nil
}

// List retrieves a paginated list of devices
func (s *DeviceService) List(ctx context.Context, tenantID uuid.UUID, filter DeviceFilter) (*DeviceListResult, error) {
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
	if filter.Platform != "" {
		sharedFilter.Filters["platform"] = filter.Platform
	}
	if filter.EmployeeID != nil {
		sharedFilter.Filters["employee_id"] = *filter.EmployeeID
	}

	devices, err := s.deviceRepo.FindAllForTenant(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to list devices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list devices")
	}

	total, err := s.deviceRepo.Count(ctx, tenantID, sharedFilter)
	if err != nil {
		s.logger.Error("Failed to count devices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count devices")
	}

	totalPages := int(total) / sharedFilter.PageSize
	if int(total)%sharedFilter.PageSize > 0 {
		totalPages++
	}

	dtos := make([]DeviceDTO, len(devices))
	for i := range devices {
		dtos[i] = *toDeviceDTO(&devices[i])
	}

	return &DeviceListResult{
		Devices:    dtos,
		Total:      total,
		Page:       sharedFilter.Page,
		PageSize:   sharedFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Assign links a device to an employee
func (s *DeviceService) Assign(ctx context.Context, tenantID, id, employeeID uuid.UUID) (*DeviceDTO, error) {
	device, err := s.findDevice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkEmployee(ctx, tenantID, employeeID); err != nil {
		return nil, err
	}

	if err := device.Assign(employeeID); err != nil {
		return nil, err
	}

	return s.saveDevice(ctx, device, "assigned")
}

// Unassign detaches a device from its employee
func (s *DeviceService) Unassign(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	device, err := s.findDevice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	device.Unassign()

	return s.saveDevice(ctx, device, "unassigned")
}

// Heartbeat records a device check-in by device identifier
func (s *DeviceService) Heartbeat(ctx context.Context, input HeartbeatInput) (*DeviceDTO, error) {
	device, err := s.deviceRepo.FindByIdentifier(ctx, input.TenantID, input.DeviceIdentifier)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DEVICE_NOT_FOUND", "Device not found")
		}
		s.logger.Error("Failed to find device", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find device")
	}

	if err := device.Heartbeat(input.OSVersion, time.Now()); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.Save(ctx, device); err != nil {
		s.logger.Error("Failed to save device heartbeat", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save device")
	}

	return toDeviceDTO(device), nil
}

// Lock remotely locks a device
func (s *DeviceService) Lock(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*mdm.MobileDevice).Lock, "lock")
}

// Unlock releases a remote lock
func (s *DeviceService) Unlock(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*mdm.MobileDevice).Unlock, "unlock")
}

// Wipe issues a remote wipe
func (s *DeviceService) Wipe(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*mdm.MobileDevice).Wipe, "wipe")
}

// Retire removes a device from management
func (s *DeviceService) Retire(ctx context.Context, tenantID, id uuid.UUID) (*DeviceDTO, error) {
	return s.changeStatus(ctx, tenantID, id, (*mdm.MobileDevice).Retire, "retire")
}

// LockStaleDevices locks manageable devices that have not checked in
// within the window and returns how many were locked. Run by the
// scheduler.
func (s *DeviceService) LockStaleDevices(ctx context.Context, asOf time.Time, window time.Duration) (int, error) {
	devices, err := s.deviceRepo.FindStale(ctx, asOf.Add(-window))
	if err != nil {
		s.logger.Error("Failed to find stale devices", zap.Error(err))
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to find stale devices")
	}

	locked := 0
	for i := range devices {
		device := &devices[i]
		if !device.IsStale(asOf, window) {
			continue
		}
		if err := device.Lock(); err != nil {
			continue
		}
		if err := s.deviceRepo.Save(ctx, device); err != nil {
			s.logger.Error("Failed to lock stale device",
				zap.String("device_id", device.ID.String()),
				zap.Error(err))
			continue
		}
		if err := s.publishEvents(ctx, device); err != nil {
			s.logger.Error("Failed to publish device events", zap.Error(err))
		}
		locked++
	}

	if locked > 0 {
		s.logger.Info("Locked stale devices", zap.Int("count", locked))
	}

	return locked, nil
}

// Delete removes a retired device record
func (s *DeviceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	device, err := s.findDevice(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if device.Status != mdm.DeviceStatusRetired {
		return shared.NewDomainError("DEVICE_NOT_RETIRED", "Only retired devices can be deleted")
	}

	if err := s.deviceRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete device", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete device")
	}

	s.logger.Info("Device deleted", zap.String("device_id", id.String()))

	return nil
}

func (s *DeviceService) changeStatus(ctx context.Context, tenantID, id uuid.UUID, change func(*mdm.MobileDevice) error, action string) (*DeviceDTO, error) {
	device, err := s.findDevice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := change(device); err != nil {
		return nil, err
	}

	return s.saveDevice(ctx, device, action)
}

func (s *DeviceService) saveDevice(ctx context.Context, device *mdm.MobileDevice, action string) (*DeviceDTO, error) {
	if err := s.deviceRepo.Save(ctx, device); err != nil {
		s.logger.Error("Failed to save device", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save device")
	}

	if err := s.publishEvents(ctx, device); err != nil {
		s.logger.Error("Failed to publish device events", zap.Error(err))
	}

	s.logger.Info("Device "+action,
		zap.String("device_id", device.ID.String()),
		zap.String("status", string(device.Status)))

	return toDeviceDTO(device), nil
}

func (s *DeviceService) checkEmployee(ctx context.Context, tenantID, employeeID uuid.UUID) error {
	employee, err := s.employeeRepo.FindByIDForTenant(ctx, tenantID, employeeID)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee not found")
		}
		s.logger.Error("Failed to find employee", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to find employee")
	}
	if employee.Status == hr.EmployeeStatusTerminated {
		return shared.NewDomainError("EMPLOYEE_TERMINATED", "Devices cannot be assigned to terminated employees")
	}
	return nil
}

func (s *DeviceService) findDevice(ctx context.Context, tenantID, id uuid.UUID) (*mdm.MobileDevice, error) {
	device, err := s.deviceRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("DEVICE_NOT_FOUND", "Device not found")
		}
		s.logger.Error("Failed to find device", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to find device")
	}
	return device, nil
}

func (s *DeviceService) publishEvents(ctx context.Context, device *mdm.MobileDevice) error {
	events := device.GetDomainEvents()
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
		entries = append(entries, shared.NewOutboxEntry(device.TenantID, event, payload))
	}

	if len(entries) > 0 {
		if err := s.outboxRepo.Save(ctx, entries...); err != nil {
			return err
		}
	}

	device.ClearDomainEvents()
	return nil
}

// toDeviceDTO converts a domain MobileDevice to DeviceDTO
func toDeviceDTO(device *mdm.MobileDevice) *DeviceDTO {
	return &DeviceDTO{
		ID:               device.ID,
		TenantID:         device.TenantID,
		DeviceIdentifier: device.DeviceIdentifier,
		Platform:         string(device.Platform),
		Model:            device.Model,
		OSVersion:        device.OSVersion,
		Status:           string(device.Status),
		EmployeeID:       device.EmployeeID,
		LastSeenAt:       device.LastSeenAt,
		EnrolledAt:       device.EnrolledAt,
		WipedAt:          device.WipedAt,
		CreatedAt:        device.CreatedAt,
		UpdatedAt:        device.UpdatedAt,
	}
}
