package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/peopledesk/backend/internal/domain/mdm"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMobileDeviceRepository implements MobileDeviceRepository using GORM
type GormMobileDeviceRepository struct {
	db *gorm.DB
}

// NewGormMobileDeviceRepository creates a new GormMobileDeviceRepository
func NewGormMobileDeviceRepository(db *gorm.DB) *GormMobileDeviceRepository {
	return &GormMobileDeviceRepository{db: db}
}

// FindByID finds a device by its ID
func (r *GormMobileDeviceRepository) FindByID(ctx context.Context, id uuid.UUID) (*mdm.MobileDevice, error) {
	var device mdm.MobileDevice
	if err := r.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindByIDForTenant finds a device by ID within a tenant
func (r *GormMobileDeviceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*mdm.MobileDevice, error) {
	var device mdm.MobileDevice
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindByIdentifier finds a device by its device identifier within a tenant
func (r *GormMobileDeviceRepository) FindByIdentifier(ctx context.Context, tenantID uuid.UUID, deviceIdentifier string) (*mdm.MobileDevice, error) {
	var device mdm.MobileDevice
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND device_identifier = ?", tenantID, deviceIdentifier).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// FindAllForTenant finds all devices for a tenant with filtering
func (r *GormMobileDeviceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]mdm.MobileDevice, error) {
	var devices []mdm.MobileDevice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&mdm.MobileDevice{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// FindStale finds enrolled, active or locked devices not seen since the cutoff.
// Runs across all tenants for the stale-device sweep.
func (r *GormMobileDeviceRepository) FindStale(ctx context.Context, cutoff time.Time) ([]mdm.MobileDevice, error) {
	var devices []mdm.MobileDevice
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []mdm.DeviceStatus{mdm.DeviceStatusEnrolled, mdm.DeviceStatusActive, mdm.DeviceStatusLocked}).
		Where("last_seen_at IS NULL OR last_seen_at < ?", cutoff).
		Where("enrolled_at < ?", cutoff).
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

// Save creates or updates a device
func (r *GormMobileDeviceRepository) Save(ctx context.Context, device *mdm.MobileDevice) error {
	return r.db.WithContext(ctx).Save(device).Error
}

// Delete deletes a device record
func (r *GormMobileDeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&mdm.MobileDevice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts devices for a tenant matching the filter
func (r *GormMobileDeviceRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&mdm.MobileDevice{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormMobileDeviceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, MobileDeviceSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormMobileDeviceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search over the device identifier and model
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("device_identifier ILIKE ? OR model ILIKE ?", searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "platform":
			query = query.Where("platform = ?", value)
		case "employee_id":
			query = query.Where("employee_id = ?", value)
		}
	}

	return query
}

// Ensure GormMobileDeviceRepository implements MobileDeviceRepository
var _ mdm.MobileDeviceRepository = (*GormMobileDeviceRepository)(nil)
