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

// BusinessMetrics provides business metrics for the POS engine. It tracks
// bill lifecycle, payment activity, and the depth of the print queues.
type BusinessMetrics struct {
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	billOpenedTotal  *Counter
	billClosedTotal  *Counter
	billAmountTotal  *Counter
	paymentTotal     *Counter
	refundTotal      *Counter
	printFailedTotal *Counter

	// Gauge metrics (point-in-time values)
	printJobsPending     *Gauge
	kitchenTicketsActive *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	queueProvider QueueMetricsProvider
}

// QueueMetricsProvider provides print queue depths for periodic metrics
// collection. The interface keeps the telemetry layer off the printing and
// kitchen domains.
type QueueMetricsProvider interface {
	// GetPendingPrintJobs returns the number of queued receipt jobs per store
	GetPendingPrintJobs(ctx context.Context) (map[uuid.UUID]int64, error)

	// GetActiveKitchenTickets returns the number of new or printing tickets per store
	GetActiveKitchenTickets(ctx context.Context) (map[uuid.UUID]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 1 minute
	QueueProvider   QueueMetricsProvider
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
		logger:        logger,
		stopChan:      make(chan struct{}),
		queueProvider: cfg.QueueProvider,
	}

	var err error

	bm.billOpenedTotal, err = NewCounter(
		cfg.Meter,
		"pos_bill_opened_total",
		"Total number of bills opened",
		"{bills}",
	)
	if err != nil {
		return nil, err
	}

	bm.billClosedTotal, err = NewCounter(
		cfg.Meter,
		"pos_bill_closed_total",
		"Total number of bills closed",
		"{bills}",
	)
	if err != nil {
		return nil, err
	}

	bm.billAmountTotal, err = NewCounter(
		cfg.Meter,
		"pos_bill_amount_total",
		"Total closed bill amount in minor currency units",
		"{minor_units}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentTotal, err = NewCounter(
		cfg.Meter,
		"pos_payment_total",
		"Total number of payment transactions",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.refundTotal, err = NewCounter(
		cfg.Meter,
		"pos_refund_total",
		"Total number of completed refunds",
		"{refunds}",
	)
	if err != nil {
		return nil, err
	}

	bm.printFailedTotal, err = NewCounter(
		cfg.Meter,
		"pos_print_failed_total",
		"Total number of failed print attempts",
		"{attempts}",
	)
	if err != nil {
		return nil, err
	}

	bm.printJobsPending, err = NewGauge(
		cfg.Meter,
		"pos_print_jobs_pending",
		"Receipt print jobs waiting for an agent fetch",
		"{jobs}",
	)
	if err != nil {
		return nil, err
	}

	bm.kitchenTicketsActive, err = NewGauge(
		cfg.Meter,
		"pos_kitchen_tickets_active",
		"Kitchen tickets not yet printed",
		"{tickets}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Bill Metrics
// =============================================================================

// RecordBillOpened records a bill open event.
func (bm *BusinessMetrics) RecordBillOpened(ctx context.Context, storeID uuid.UUID, billType string) {
	bm.billOpenedTotal.Inc(ctx,
		AttrStoreID.String(storeID.String()),
		AttrBillType.String(billType),
	)
}

// RecordBillClosed records a bill close together with its grand total.
// The amount is converted to minor currency units for the counter.
func (bm *BusinessMetrics) RecordBillClosed(ctx context.Context, storeID uuid.UUID, billType string, grandTotal decimal.Decimal) {
	attrs := []attribute.KeyValue{
		AttrStoreID.String(storeID.String()),
		AttrBillType.String(billType),
	}
	bm.billClosedTotal.Inc(ctx, attrs...)
	bm.billAmountTotal.Add(ctx, grandTotal.Mul(decimal.NewFromInt(100)).IntPart(), attrs...)
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

// RecordPayment records a payment transaction.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, storeID uuid.UUID, paymentMethod string, status PaymentStatus) {
	bm.paymentTotal.Inc(ctx,
		AttrStoreID.String(storeID.String()),
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentStatus.String(string(status)),
	)
}

// RecordRefundCompleted records a completed refund.
func (bm *BusinessMetrics) RecordRefundCompleted(ctx context.Context, storeID uuid.UUID) {
	bm.refundTotal.Inc(ctx, AttrStoreID.String(storeID.String()))
}

// =============================================================================
// Print Metrics
// =============================================================================

// RecordPrintFailure records one failed print attempt for a job type
// ("receipt" or "kitchen_ticket").
func (bm *BusinessMetrics) RecordPrintFailure(ctx context.Context, storeID uuid.UUID, jobType string) {
	bm.printFailedTotal.Inc(ctx,
		AttrStoreID.String(storeID.String()),
		AttrJobType.String(jobType),
	)
}

// RecordPendingPrintJobs records the current pending print job count for a store.
func (bm *BusinessMetrics) RecordPendingPrintJobs(ctx context.Context, storeID uuid.UUID, count int64) {
	bm.printJobsPending.Record(ctx, count,
		AttrStoreID.String(storeID.String()),
	)
}

// RecordActiveKitchenTickets records the current unprinted ticket count for a store.
func (bm *BusinessMetrics) RecordActiveKitchenTickets(ctx context.Context, storeID uuid.UUID, count int64) {
	bm.kitchenTicketsActive.Record(ctx, count,
		AttrStoreID.String(storeID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of the queue gauges.
// Non-blocking; use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectQueueMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectQueueMetrics(ctx)
		}
	}
}

// collectQueueMetrics collects queue depth gauges for every store with work.
func (bm *BusinessMetrics) collectQueueMetrics(ctx context.Context) {
	if bm.queueProvider == nil {
		bm.logger.Debug("No queue provider configured, skipping queue metrics collection")
		return
	}

	pendingJobs, err := bm.queueProvider.GetPendingPrintJobs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get pending print job counts", zap.Error(err))
	} else {
		for storeID, count := range pendingJobs {
			bm.RecordPendingPrintJobs(ctx, storeID, count)
		}
	}

	activeTickets, err := bm.queueProvider.GetActiveKitchenTickets(ctx)
	if err != nil {
		bm.logger.Error("Failed to get active kitchen ticket counts", zap.Error(err))
	} else {
		for storeID, count := range activeTickets {
			bm.RecordActiveKitchenTickets(ctx, storeID, count)
		}
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
