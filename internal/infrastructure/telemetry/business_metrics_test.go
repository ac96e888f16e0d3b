package telemetry_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/infrastructure/telemetry"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})

	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestBusinessMetrics_RecordBillLifecycle(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	storeID := uuid.New()

	// Recording against a noop meter must not panic
	bm.RecordBillOpened(ctx, storeID, "dine_in")
	bm.RecordBillClosed(ctx, storeID, "dine_in", decimal.NewFromInt(250000))
	bm.RecordPayment(ctx, storeID, "cash", telemetry.PaymentStatusSuccess)
	bm.RecordRefundCompleted(ctx, storeID)
	bm.RecordPrintFailure(ctx, storeID, "receipt")
	bm.RecordPendingPrintJobs(ctx, storeID, 4)
	bm.RecordActiveKitchenTickets(ctx, storeID, 2)
}

// stubQueueProvider returns canned queue depths and records calls
type stubQueueProvider struct {
	mu    sync.Mutex
	calls int
	jobs  map[uuid.UUID]int64
	err   error
}

func (p *stubQueueProvider) GetPendingPrintJobs(_ context.Context) (map[uuid.UUID]int64, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.jobs, p.err
}

func (p *stubQueueProvider) GetActiveKitchenTickets(_ context.Context) (map[uuid.UUID]int64, error) {
	return p.jobs, p.err
}

func (p *stubQueueProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubQueueProvider{
		jobs: map[uuid.UUID]int64{uuid.New(): 3},
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         meter,
		QueueProvider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, 10*time.Millisecond)
	defer bm.Stop()

	assert.Eventually(t, func() bool {
		return provider.callCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_PeriodicCollection_ProviderError(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	provider := &stubQueueProvider{err: errors.New("database unavailable")}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         meter,
		QueueProvider: provider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, 10*time.Millisecond)
	defer bm.Stop()

	// Errors are logged, not fatal; collection keeps ticking
	assert.Eventually(t, func() bool {
		return provider.callCount() >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBusinessMetrics_StopIsIdempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter})
	require.NoError(t, err)

	bm.Stop()
	bm.Stop()
}
