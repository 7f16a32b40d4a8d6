// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the back office.
// It tracks invoicing, payment activity, and workforce health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	invoiceIssuedTotal   *Counter
	invoiceAmountTotal   *Counter
	paymentTotal         *Counter
	payrollRunTotal      *Counter

	// Gauge metrics (point-in-time values)
	activeEmployees      *Gauge
	pendingLeaveRequests *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	workforceProvider WorkforceMetricsProvider
}

// WorkforceMetricsProvider provides HR data for periodic metrics collection.
// This interface allows the telemetry layer to query workforce state without
// depending on the HR domain directly.
type WorkforceMetricsProvider interface {
	// GetActiveEmployeeCount returns the number of active employees for a tenant
	GetActiveEmployeeCount(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// GetPendingLeaveCount returns the number of pending leave requests for a tenant
	GetPendingLeaveCount(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter             metric.Meter
	Logger            *zap.Logger
	CollectInterval   time.Duration // Default: 5 minutes
	WorkforceProvider WorkforceMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:             cfg.Meter,
		logger:            logger,
		stopChan:          make(chan struct{}),
		workforceProvider: cfg.WorkforceProvider,
	}

	// Initialize counter metrics
	var err error

	// Invoice metrics
	bm.invoiceIssuedTotal, err = NewCounter(
		cfg.Meter,
		"peopledesk_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(
		cfg.Meter,
		"peopledesk_invoice_amount_total",
		"Total invoiced amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"peopledesk_payment_total",
		"Total number of recorded invoice payments",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Payroll metrics
	bm.payrollRunTotal, err = NewCounter(
		cfg.Meter,
		"peopledesk_payroll_run_total",
		"Total number of processed payroll runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	// Workforce gauge metrics
	bm.activeEmployees, err = NewGauge(
		cfg.Meter,
		"peopledesk_hr_active_employees",
		"Current number of active employees",
		"{employees}",
	)
	if err != nil {
		return nil, err
	}

	bm.pendingLeaveRequests, err = NewGauge(
		cfg.Meter,
		"peopledesk_hr_pending_leave_requests",
		"Number of leave requests awaiting a decision",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Invoice Metrics
// =============================================================================

// RecordInvoiceIssued records an invoice being sent to the customer.
// This should be called from the application layer when an invoice is sent.
func (bm *BusinessMetrics) RecordInvoiceIssued(ctx context.Context, tenantID uuid.UUID, currency string) {
	bm.invoiceIssuedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordInvoiceAmount records the invoiced amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordInvoiceAmount(ctx context.Context, tenantID uuid.UUID, currency string, amountCents int64) {
	bm.invoiceAmountTotal.Add(ctx, amountCents,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// RecordInvoiceWithAmount is a convenience method that records both invoice count and amount.
func (bm *BusinessMetrics) RecordInvoiceWithAmount(ctx context.Context, tenantID uuid.UUID, currency string, amount decimal.Decimal) {
	bm.RecordInvoiceIssued(ctx, tenantID, currency)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordInvoiceAmount(ctx, tenantID, currency, amountCents)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentStatus represents the outcome of a payment for metrics labeling.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// RecordPayment records a payment against an invoice.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// =============================================================================
// Payroll Metrics
// =============================================================================

// RecordPayrollRunProcessed records a payroll run moving past draft.
func (bm *BusinessMetrics) RecordPayrollRunProcessed(ctx context.Context, tenantID uuid.UUID, currency string) {
	bm.payrollRunTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrCurrency.String(currency),
	)
}

// =============================================================================
// Workforce Metrics
// =============================================================================

// RecordActiveEmployees records the current active headcount for a tenant.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordActiveEmployees(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.activeEmployees.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordPendingLeaveRequests records the number of undecided leave requests.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordPendingLeaveRequests(ctx context.Context, tenantID uuid.UUID, count int64) {
	bm.pendingLeaveRequests.Record(ctx, count,
		AttrTenantID.String(tenantID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// TenantProvider provides tenant IDs for periodic metrics collection.
type TenantProvider interface {
	GetActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects workforce metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, tenantProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, tenantProvider TenantProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectWorkforceMetrics(ctx, tenantProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectWorkforceMetrics(ctx, tenantProvider)
		}
	}
}

// collectWorkforceMetrics collects workforce gauge metrics for all tenants.
func (bm *BusinessMetrics) collectWorkforceMetrics(ctx context.Context, tenantProvider TenantProvider) {
	if bm.workforceProvider == nil {
		bm.logger.Debug("No workforce provider configured, skipping workforce metrics collection")
		return
	}

	tenantIDs, err := tenantProvider.GetActiveTenantIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get tenant IDs for metrics collection", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		bm.collectTenantWorkforceMetrics(ctx, tenantID)
	}
}

// collectTenantWorkforceMetrics collects workforce metrics for a single tenant.
func (bm *BusinessMetrics) collectTenantWorkforceMetrics(ctx context.Context, tenantID uuid.UUID) {
	// Collect active headcount
	headcount, err := bm.workforceProvider.GetActiveEmployeeCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get active employee count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordActiveEmployees(ctx, tenantID, headcount)
	}

	// Collect pending leave requests
	pendingLeave, err := bm.workforceProvider.GetPendingLeaveCount(ctx, tenantID)
	if err != nil {
		bm.logger.Warn("Failed to get pending leave count for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordPendingLeaveRequests(ctx, tenantID, pendingLeave)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	// Additional business attributes can be added here
	AttrPayrollPeriod = attribute.Key("payroll_period")
)
