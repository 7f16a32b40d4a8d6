package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceSweeper flags overdue invoices. Implemented by the finance
// invoice service.
type InvoiceSweeper interface {
	MarkOverdueInvoices(ctx context.Context, asOf time.Time) (int, error)
}

// DeviceSweeper locks devices with no recent heartbeat. Implemented by
// the MDM device service.
type DeviceSweeper interface {
	LockStaleDevices(ctx context.Context, asOf time.Time, window time.Duration) (int, error)
}

// PrintJobCleaner purges rendered print jobs past their retention.
// Implemented by the print job repository.
type PrintJobCleaner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// PayrollDrafter drafts the monthly payroll run for a tenant
type PayrollDrafter interface {
	DraftMonthlyRun(ctx context.Context, tenantID uuid.UUID, year, month int) error
}

// MaintenanceExecutorConfig holds tunables for the maintenance tasks
type MaintenanceExecutorConfig struct {
	// StaleDeviceWindow is how long a device may go without a heartbeat
	// before the sweep locks it
	StaleDeviceWindow time.Duration
	// PrintJobRetentionDays is how many days rendered print jobs are kept
	PrintJobRetentionDays int
}

// DefaultMaintenanceExecutorConfig returns default maintenance tunables
func DefaultMaintenanceExecutorConfig() MaintenanceExecutorConfig {
	return MaintenanceExecutorConfig{
		StaleDeviceWindow:     30 * 24 * time.Hour,
		PrintJobRetentionDays: 30,
	}
}

// MaintenanceExecutor dispatches scheduled jobs to the owning service.
// Any sweeper left nil makes its task type fail with
// ErrExecutorNotConfigured, so partial wiring is allowed in tests and
// trimmed deployments.
type MaintenanceExecutor struct {
	config         MaintenanceExecutorConfig
	invoiceSweeper InvoiceSweeper
	deviceSweeper  DeviceSweeper
	printCleaner   PrintJobCleaner
	payrollDrafter PayrollDrafter
	logger         *zap.Logger
}

// NewMaintenanceExecutor creates a new maintenance executor
func NewMaintenanceExecutor(
	config MaintenanceExecutorConfig,
	invoiceSweeper InvoiceSweeper,
	deviceSweeper DeviceSweeper,
	printCleaner PrintJobCleaner,
	payrollDrafter PayrollDrafter,
	logger *zap.Logger,
) *MaintenanceExecutor {
	return &MaintenanceExecutor{
		config:         config,
		invoiceSweeper: invoiceSweeper,
		deviceSweeper:  deviceSweeper,
		printCleaner:   printCleaner,
		payrollDrafter: payrollDrafter,
		logger:         logger,
	}
}

// Execute runs a single maintenance job
func (e *MaintenanceExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.TaskType {
	case TaskInvoiceOverdueSweep:
		return e.sweepOverdueInvoices(ctx, job)
	case TaskStaleDeviceSweep:
		return e.sweepStaleDevices(ctx, job)
	case TaskPrintJobCleanup:
		return e.cleanupPrintJobs(ctx, job)
	case TaskPayrollDraft:
		return e.draftPayrollRun(ctx, job)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTaskType, job.TaskType)
	}
}

func (e *MaintenanceExecutor) sweepOverdueInvoices(ctx context.Context, job *Job) error {
	if e.invoiceSweeper == nil {
		return fmt.Errorf("%w: %s", ErrExecutorNotConfigured, job.TaskType)
	}

	flagged, err := e.invoiceSweeper.MarkOverdueInvoices(ctx, job.AsOf)
	if err != nil {
		return err
	}

	e.logger.Info("Invoice overdue sweep finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("flagged", flagged),
	)
	return nil
}

func (e *MaintenanceExecutor) sweepStaleDevices(ctx context.Context, job *Job) error {
	if e.deviceSweeper == nil {
		return fmt.Errorf("%w: %s", ErrExecutorNotConfigured, job.TaskType)
	}

	locked, err := e.deviceSweeper.LockStaleDevices(ctx, job.AsOf, e.config.StaleDeviceWindow)
	if err != nil {
		return err
	}

	e.logger.Info("Stale device sweep finished",
		zap.String("job_id", job.ID.String()),
		zap.Duration("window", e.config.StaleDeviceWindow),
		zap.Int("locked", locked),
	)
	return nil
}

func (e *MaintenanceExecutor) cleanupPrintJobs(ctx context.Context, job *Job) error {
	if e.printCleaner == nil {
		return fmt.Errorf("%w: %s", ErrExecutorNotConfigured, job.TaskType)
	}

	purged, err := e.printCleaner.DeleteOlderThan(ctx, e.config.PrintJobRetentionDays)
	if err != nil {
		return err
	}

	e.logger.Info("Print job cleanup finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("retention_days", e.config.PrintJobRetentionDays),
		zap.Int64("purged", purged),
	)
	return nil
}

func (e *MaintenanceExecutor) draftPayrollRun(ctx context.Context, job *Job) error {
	if e.payrollDrafter == nil {
		return fmt.Errorf("%w: %s", ErrExecutorNotConfigured, job.TaskType)
	}
	if job.TenantID == nil {
		return fmt.Errorf("%w: %s", ErrMissingTenantID, job.TaskType)
	}

	year, month := job.AsOf.Year(), int(job.AsOf.Month())
	if err := e.payrollDrafter.DraftMonthlyRun(ctx, *job.TenantID, year, month); err != nil {
		return err
	}

	e.logger.Info("Payroll run drafted",
		zap.String("job_id", job.ID.String()),
		zap.String("tenant_id", job.TenantID.String()),
		zap.Int("period_year", year),
		zap.Int("period_month", month),
	)
	return nil
}

// Ensure MaintenanceExecutor implements JobExecutor
var _ JobExecutor = (*MaintenanceExecutor)(nil)
