package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeaveRequestRepository implements LeaveRequestRepository using GORM
type GormLeaveRequestRepository struct {
	db *gorm.DB
}

// NewGormLeaveRequestRepository creates a new GormLeaveRequestRepository
func NewGormLeaveRequestRepository(db *gorm.DB) *GormLeaveRequestRepository {
	return &GormLeaveRequestRepository{db: db}
}

// FindByID finds a leave request by its ID
func (r *GormLeaveRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*hr.LeaveRequest, error) {
	var request hr.LeaveRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindByIDForTenant finds a leave request by ID within a tenant
func (r *GormLeaveRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*hr.LeaveRequest, error) {
	var request hr.LeaveRequest
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindAllForTenant finds all leave requests for a tenant with filtering
func (r *GormLeaveRequestRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]hr.LeaveRequest, error) {
	var requests []hr.LeaveRequest
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&hr.LeaveRequest{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// FindOverlapping finds pending or approved requests for an employee
// whose span intersects [startDate, endDate]
func (r *GormLeaveRequestRepository) FindOverlapping(ctx context.Context, tenantID, employeeID uuid.UUID, startDate, endDate time.Time) ([]hr.LeaveRequest, error) {
	var requests []hr.LeaveRequest
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND employee_id = ?", tenantID, employeeID).
		Where("status IN ?", []hr.LeaveStatus{hr.LeaveStatusPending, hr.LeaveStatusApproved}).
		Where("start_date <= ? AND end_date >= ?", endDate, startDate).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Save creates or updates a leave request
func (r *GormLeaveRequestRepository) Save(ctx context.Context, request *hr.LeaveRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// Count counts leave requests for a tenant matching the filter
func (r *GormLeaveRequestRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&hr.LeaveRequest{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormLeaveRequestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, LeaveRequestSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLeaveRequestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "employee_id":
			query = query.Where("employee_id = ?", value)
		}
	}

	return query
}

// Ensure GormLeaveRequestRepository implements LeaveRequestRepository
var _ hr.LeaveRequestRepository = (*GormLeaveRequestRepository)(nil)
