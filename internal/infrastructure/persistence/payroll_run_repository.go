package persistence

import (
	"context"
	"errors"

	"github.com/peopledesk/backend/internal/domain/hr"
	"github.com/peopledesk/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayrollRunRepository implements PayrollRunRepository using GORM
type GormPayrollRunRepository struct {
	db *gorm.DB
}

// NewGormPayrollRunRepository creates a new GormPayrollRunRepository
func NewGormPayrollRunRepository(db *gorm.DB) *GormPayrollRunRepository {
	return &GormPayrollRunRepository{db: db}
}

// FindByID finds a payroll run by its ID with its payslips
func (r *GormPayrollRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*hr.PayrollRun, error) {
	var run hr.PayrollRun
	if err := r.db.WithContext(ctx).
		Preload("Payslips").
		First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByIDForTenant finds a payroll run by ID within a tenant
func (r *GormPayrollRunRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*hr.PayrollRun, error) {
	var run hr.PayrollRun
	if err := r.db.WithContext(ctx).
		Preload("Payslips").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByPeriod finds the run for a tenant and period, if any
func (r *GormPayrollRunRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, periodYear, periodMonth int) (*hr.PayrollRun, error) {
	var run hr.PayrollRun
	if err := r.db.WithContext(ctx).
		Preload("Payslips").
		Where("tenant_id = ? AND period_year = ? AND period_month = ?", tenantID, periodYear, periodMonth).
		Where("status <> ?", hr.PayrollStatusCancelled).
		First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindByPayslipID finds the run containing the given payslip
func (r *GormPayrollRunRepository) FindByPayslipID(ctx context.Context, tenantID, payslipID uuid.UUID) (*hr.PayrollRun, error) {
	var payslip hr.Payslip
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, payslipID).
		First(&payslip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByIDForTenant(ctx, tenantID, payslip.PayrollRunID)
}

// FindAllForTenant finds all payroll runs for a tenant with filtering
func (r *GormPayrollRunRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]hr.PayrollRun, error) {
	var runs []hr.PayrollRun
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&hr.PayrollRun{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Save creates or updates a payroll run with its payslips
func (r *GormPayrollRunRepository) Save(ctx context.Context, run *hr.PayrollRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Payslips").Save(run).Error; err != nil {
			return err
		}

		currentPayslipIDs := make([]uuid.UUID, len(run.Payslips))
		for i, slip := range run.Payslips {
			currentPayslipIDs[i] = slip.ID
		}

		if len(currentPayslipIDs) > 0 {
			if err := tx.Where("payroll_run_id = ? AND id NOT IN ?", run.ID, currentPayslipIDs).
				Delete(&hr.Payslip{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("payroll_run_id = ?", run.ID).
				Delete(&hr.Payslip{}).Error; err != nil {
				return err
			}
		}

		for i := range run.Payslips {
			run.Payslips[i].PayrollRunID = run.ID
			run.Payslips[i].TenantID = run.TenantID
			if err := tx.Save(&run.Payslips[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Count counts payroll runs for a tenant matching the filter
func (r *GormPayrollRunRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&hr.PayrollRun{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForPeriod checks whether a non-cancelled run exists for the period
func (r *GormPayrollRunRepository) ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, periodYear, periodMonth int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&hr.PayrollRun{}).
		Where("tenant_id = ? AND period_year = ? AND period_month = ?", tenantID, periodYear, periodMonth).
		Where("status <> ?", hr.PayrollStatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormPayrollRunRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, PayrollRunSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPayrollRunRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "period_year":
			query = query.Where("period_year = ?", value)
		}
	}

	return query
}

// Ensure GormPayrollRunRepository implements PayrollRunRepository
var _ hr.PayrollRunRepository = (*GormPayrollRunRepository)(nil)
