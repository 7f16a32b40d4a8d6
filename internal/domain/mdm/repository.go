package mdm

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopledesk/backend/internal/domain/shared"
)

// MobileDeviceRepository defines the interface for device persistence
type MobileDeviceRepository interface {
	// FindByID finds a device by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MobileDevice, error)

	// FindByIDForTenant finds a device by ID scoped to a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*MobileDevice, error)

	// FindByIdentifier finds a device by its device identifier within a tenant
	FindByIdentifier(ctx context.Context, tenantID uuid.UUID, deviceIdentifier string) (*MobileDevice, error)

	// FindAllForTenant finds devices for a tenant matching the filter.
	// Filter supports "status", "platform" and "employee_id" keys.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]MobileDevice, error)

	// FindStale finds enrolled, active or locked devices not seen since
	// the cutoff, across all tenants. Used by the stale-device sweep.
	FindStale(ctx context.Context, cutoff time.Time) ([]MobileDevice, error)

	// Save creates or updates a device
	Save(ctx context.Context, device *MobileDevice) error

	// Delete deletes a device record
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts devices for a tenant matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
