package finance

import (
	"github.com/peopledesk/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeVendor = "Vendor"

// Event type constants
const (
	EventTypeVendorCreated       = "VendorCreated"
	EventTypeVendorUpdated       = "VendorUpdated"
	EventTypeVendorStatusChanged = "VendorStatusChanged"
	EventTypeVendorDeleted       = "VendorDeleted"
)

// VendorCreatedEvent is published when a vendor is created
type VendorCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewVendorCreatedEvent creates a new VendorCreatedEvent
func NewVendorCreatedEvent(vendor *Vendor) *VendorCreatedEvent {
	return &VendorCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorCreated, AggregateTypeVendor, vendor.ID, vendor.TenantID),
		Code:            vendor.Code,
		Name:            vendor.Name,
	}
}

// VendorUpdatedEvent is published when a vendor is updated
type VendorUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewVendorUpdatedEvent creates a new VendorUpdatedEvent
func NewVendorUpdatedEvent(vendor *Vendor) *VendorUpdatedEvent {
	return &VendorUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorUpdated, AggregateTypeVendor, vendor.ID, vendor.TenantID),
		Code:            vendor.Code,
		Name:            vendor.Name,
	}
}

// VendorStatusChangedEvent is published when a vendor's status changes
type VendorStatusChangedEvent struct {
	shared.BaseDomainEvent
	Code      string       `json:"code"`
	OldStatus VendorStatus `json:"old_status"`
	NewStatus VendorStatus `json:"new_status"`
}

// NewVendorStatusChangedEvent creates a new VendorStatusChangedEvent
func NewVendorStatusChangedEvent(vendor *Vendor, oldStatus, newStatus VendorStatus) *VendorStatusChangedEvent {
	return &VendorStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorStatusChanged, AggregateTypeVendor, vendor.ID, vendor.TenantID),
		Code:            vendor.Code,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// VendorDeletedEvent is published when a vendor is deleted
type VendorDeletedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
}

// NewVendorDeletedEvent creates a new VendorDeletedEvent
func NewVendorDeletedEvent(vendor *Vendor) *VendorDeletedEvent {
	return &VendorDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorDeleted, AggregateTypeVendor, vendor.ID, vendor.TenantID),
		Code:            vendor.Code,
	}
}
