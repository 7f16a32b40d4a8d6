package mdm

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// DevicePlatform identifies the device operating system
type DevicePlatform string

const (
	DevicePlatformIOS     DevicePlatform = "ios"
	DevicePlatformAndroid DevicePlatform = "android"
)

// IsValid checks if the platform is valid
func (p DevicePlatform) IsValid() bool {
	return p == DevicePlatformIOS || p == DevicePlatformAndroid
}

// DeviceStatus represents the management status of a device
type DeviceStatus string

const (
	DeviceStatusEnrolled DeviceStatus = "enrolled" // Registered but not yet seen
	DeviceStatusActive   DeviceStatus = "active"
	DeviceStatusLocked   DeviceStatus = "locked"
	DeviceStatusWiped    DeviceStatus = "wiped"
	DeviceStatusRetired  DeviceStatus = "retired"
)

// MobileDevice is the aggregate root for managed mobile devices
type MobileDevice struct {
	shared.TenantAggregateRoot
	DeviceIdentifier string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_device_tenant_udid,priority:2"`
	Platform         DevicePlatform `gorm:"type:varchar(20);not null"`
	Model            string         `gorm:"type:varchar(100)"`
	OSVersion        string         `gorm:"type:varchar(50)"`
	Status           DeviceStatus   `gorm:"type:varchar(20);not null;default:'enrolled';index"`
	EmployeeID       *uuid.UUID     `gorm:"type:uuid;index"`
	LastSeenAt       *time.Time     `gorm:"index"`
	EnrolledAt       time.Time      `gorm:"not null"`
	WipedAt          *time.Time     `gorm:""`
}

// TableName returns the table name for GORM
func (MobileDevice) TableName() string {
	return "mobile_devices"
}

// Enroll registers a device under management
func Enroll(tenantID uuid.UUID, deviceIdentifier string, platform DevicePlatform, model, osVersion string) (*MobileDevice, error) {
	deviceIdentifier = strings.TrimSpace(deviceIdentifier)
	if deviceIdentifier == "" || len(deviceIdentifier) > 100 {
		return nil, shared.NewDomainError("INVALID_DEVICE_ID", "Device identifier must be between 1 and 100 characters")
	}
	if !platform.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLATFORM", "Platform must be ios or android")
	}
	if len(model) > 100 {
		return nil, shared.NewDomainError("INVALID_MODEL", "Model cannot exceed 100 characters")
	}
	if len(osVersion) > 50 {
		return nil, shared.NewDomainError("INVALID_OS_VERSION", "OS version cannot exceed 50 characters")
	}

	device := &MobileDevice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DeviceIdentifier:    deviceIdentifier,
		Platform:            platform,
		Model:               model,
		OSVersion:           osVersion,
		Status:              DeviceStatusEnrolled,
		EnrolledAt:          time.Now(),
	}

	device.AddDomainEvent(NewDeviceEnrolledEvent(device))

	return device, nil
}

// Assign links the device to an employee
func (d *MobileDevice) Assign(employeeID uuid.UUID) error {
	if d.Status == DeviceStatusWiped || d.Status == DeviceStatusRetired {
		return shared.NewDomainError("INVALID_STATE", "Wiped or retired devices cannot be assigned")
	}
	if employeeID == uuid.Nil {
		return shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}

	d.EmployeeID = &employeeID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeviceAssignedEvent(d, employeeID))

	return nil
}

// Unassign detaches the device from its employee
func (d *MobileDevice) Unassign() {
	d.EmployeeID = nil
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

// Heartbeat records a check-in from the device and reports the OS
// version it is currently running. The first heartbeat activates an
// enrolled device.
func (d *MobileDevice) Heartbeat(osVersion string, at time.Time) error {
	switch d.Status {
	case DeviceStatusWiped, DeviceStatusRetired:
		return shared.NewDomainError("INVALID_STATE", "Wiped or retired devices cannot check in")
	}
	if len(osVersion) > 50 {
		return shared.NewDomainError("INVALID_OS_VERSION", "OS version cannot exceed 50 characters")
	}

	if d.Status == DeviceStatusEnrolled {
		d.Status = DeviceStatusActive
	}
	if osVersion != "" {
		d.OSVersion = osVersion
	}
	d.LastSeenAt = &at
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	return nil
}

// Lock remotely locks the device
func (d *MobileDevice) Lock() error {
	switch d.Status {
	case DeviceStatusActive, DeviceStatusEnrolled:
	default:
		return shared.NewDomainError("INVALID_STATE", "Only enrolled or active devices can be locked")
	}

	d.Status = DeviceStatusLocked
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeviceStatusChangedEvent(d, DeviceStatusLocked))

	return nil
}

// Unlock releases a remote lock
func (d *MobileDevice) Unlock() error {
	if d.Status != DeviceStatusLocked {
		return shared.NewDomainError("INVALID_STATE", "Device is not locked")
	}

	d.Status = DeviceStatusActive
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeviceStatusChangedEvent(d, DeviceStatusActive))

	return nil
}

// Wipe issues a remote wipe. Wiped devices keep their record for audit
// but accept no further commands.
func (d *MobileDevice) Wipe() error {
	switch d.Status {
	case DeviceStatusWiped, DeviceStatusRetired:
		return shared.NewDomainError("INVALID_STATE", "Device is already wiped or retired")
	}

	now := time.Now()
	d.Status = DeviceStatusWiped
	d.WipedAt = &now
	d.EmployeeID = nil
	d.UpdatedAt = now
	d.IncrementVersion()

	d.AddDomainEvent(NewDeviceStatusChangedEvent(d, DeviceStatusWiped))

	return nil
}

// Retire removes the device from management
func (d *MobileDevice) Retire() error {
	if d.Status == DeviceStatusRetired {
		return shared.NewDomainError("INVALID_STATE", "Device is already retired")
	}

	d.Status = DeviceStatusRetired
	d.EmployeeID = nil
	d.UpdatedAt = time.Now()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeviceStatusChangedEvent(d, DeviceStatusRetired))

	return nil
}

// IsStale reports whether the device has not checked in within the
// window. Devices that never checked in are measured from enrollment.
func (d *MobileDevice) IsStale(asOf time.Time, window time.Duration) bool {
	switch d.Status {
	case DeviceStatusWiped, DeviceStatusRetired:
		return false
	}
	lastSeen := d.EnrolledAt
	if d.LastSeenAt != nil {
		lastSeen = *d.LastSeenAt
	}
	return asOf.Sub(lastSeen) > window
}
