// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWorkforceMetricsProvider implements WorkforceMetricsProvider using GORM.
// It queries the employees and leave_requests tables directly for aggregated metrics.
type GormWorkforceMetricsProvider struct {
	db *gorm.DB
}

// NewGormWorkforceMetricsProvider creates a new GormWorkforceMetricsProvider.
func NewGormWorkforceMetricsProvider(db *gorm.DB) *GormWorkforceMetricsProvider {
	return &GormWorkforceMetricsProvider{db: db}
}

// GetActiveEmployeeCount returns the number of active employees for a tenant.
func (p *GormWorkforceMetricsProvider) GetActiveEmployeeCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("employees").
		Where("tenant_id = ? AND status = ?", tenantID, "active").
		Count(&count).Error

	return count, err
}

// GetPendingLeaveCount returns the number of pending leave requests for a tenant.
func (p *GormWorkforceMetricsProvider) GetPendingLeaveCount(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("leave_requests").
		Where("tenant_id = ? AND status = ?", tenantID, "pending").
		Count(&count).Error

	return count, err
}

// GormTenantProvider implements TenantProvider using GORM.
type GormTenantProvider struct {
	db *gorm.DB
}

// NewGormTenantProvider creates a new GormTenantProvider.
func NewGormTenantProvider(db *gorm.DB) *GormTenantProvider {
	return &GormTenantProvider{db: db}
}

// GetActiveTenantIDs returns all active tenant IDs.
func (p *GormTenantProvider) GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("tenants").
		Select("id").
		Where("status = ?", "active").
		Find(&ids).Error

	return ids, err
}
