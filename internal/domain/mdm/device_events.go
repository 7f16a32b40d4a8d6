package mdm

import (
	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeMobileDevice = "MobileDevice"

// Event type constants
const (
	EventTypeDeviceEnrolled      = "DeviceEnrolled"
	EventTypeDeviceAssigned      = "DeviceAssigned"
	EventTypeDeviceStatusChanged = "DeviceStatusChanged"
)

// DeviceEnrolledEvent is published when a device is enrolled
type DeviceEnrolledEvent struct {
	shared.BaseDomainEvent
	DeviceIdentifier string         `json:"device_identifier"`
	Platform         DevicePlatform `json:"platform"`
}

// NewDeviceEnrolledEvent creates a new DeviceEnrolledEvent
func NewDeviceEnrolledEvent(device *MobileDevice) *DeviceEnrolledEvent {
	return &DeviceEnrolledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDeviceEnrolled, AggregateTypeMobileDevice, device.ID, device.TenantID),
		DeviceIdentifier: device.DeviceIdentifier,
		Platform:         device.Platform,
	}
}

// DeviceAssignedEvent is published when a device is assigned to an employee
type DeviceAssignedEvent struct {
	shared.BaseDomainEvent
	DeviceIdentifier string    `json:"device_identifier"`
	EmployeeID       uuid.UUID `json:"employee_id"`
}

// NewDeviceAssignedEvent creates a new DeviceAssignedEvent
func NewDeviceAssignedEvent(device *MobileDevice, employeeID uuid.UUID) *DeviceAssignedEvent {
	return &DeviceAssignedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDeviceAssigned, AggregateTypeMobileDevice, device.ID, device.TenantID),
		DeviceIdentifier: device.DeviceIdentifier,
		EmployeeID:       employeeID,
	}
}

// DeviceStatusChangedEvent is published on lock, unlock, wipe and retire
type DeviceStatusChangedEvent struct {
	shared.BaseDomainEvent
	DeviceIdentifier string       `json:"device_identifier"`
	NewStatus        DeviceStatus `json:"new_status"`
}

// NewDeviceStatusChangedEvent creates a new DeviceStatusChangedEvent
func NewDeviceStatusChangedEvent(device *MobileDevice, newStatus DeviceStatus) *DeviceStatusChangedEvent {
	return &DeviceStatusChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDeviceStatusChanged, AggregateTypeMobileDevice, device.ID, device.TenantID),
		DeviceIdentifier: device.DeviceIdentifier,
		NewStatus:        newStatus,
	}
}
