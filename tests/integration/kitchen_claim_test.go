package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kitchenapp "github.com/edgepos/backend/internal/application/kitchen"
	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/infrastructure/persistence"
)

// TestDispatchClaim_Concurrent verifies that parallel agent polls never
// hand the same ticket to two agents. The claim query locks rows with
// FOR UPDATE SKIP LOCKED, so concurrent transactions must partition the
// queue instead of colliding on it.
func TestDispatchClaim_Concurrent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	ctx := context.Background()
	log := zap.NewNop()

	ticketRepo := persistence.NewGormKitchenTicketRepository(testDB.DB)
	ticketLogRepo := persistence.NewGormTicketLogRepository(testDB.DB)
	printerRepo := persistence.NewGormStationPrinterRepository(testDB.DB)
	alertRepo := persistence.NewGormAlertRepository(testDB.DB)
	txManager := persistence.NewGormTransactionManager(testDB.DB)

	dispatch := kitchenapp.NewDispatchService(ticketRepo, printerRepo, ticketLogRepo, alertRepo, txManager, log)

	storeID := uuid.New()
	brandID := uuid.New()

	printer, err := kitchen.NewStationPrinter(storeID, brandID, "grill", "Grill 1", "tcp://10.0.0.30:9100", 1)
	require.NoError(t, err)
	require.NoError(t, printerRepo.Save(ctx, printer))

	const ticketCount = 12
	for i := 0; i < ticketCount; i++ {
		ticket, err := kitchen.NewKitchenTicket(storeID, brandID, uuid.New(), "JKT01-20260901-0001", nil, nil, "grill", []kitchen.TicketLine{
			{
				BillItemID:  uuid.New(),
				ProductID:   uuid.New(),
				ProductName: "Sate Ayam",
				Station:     "grill",
				Quantity:    1,
			},
		})
		require.NoError(t, err)
		ticket.ClearDomainEvents()
		require.NoError(t, ticketRepo.Save(ctx, ticket))
	}

	const workers = 4
	var (
		mu      sync.Mutex
		claimed []uuid.UUID
		wg      sync.WaitGroup
	)
	errs := make([]error, workers)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				batch, err := dispatch.Claim(context.Background(), 3)
				if err != nil {
					errs[w] = err
					return
				}
				if len(batch) == 0 {
					return
				}
				mu.Lock()
				for _, resp := range batch {
					claimed = append(claimed, resp.ID)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	for w, err := range errs {
		require.NoError(t, err, "worker %d", w)
	}

	// Every ticket claimed exactly once
	require.Len(t, claimed, ticketCount)
	seen := make(map[uuid.UUID]bool, len(claimed))
	for _, id := range claimed {
		assert.False(t, seen[id], "ticket %s claimed twice", id)
		seen[id] = true
	}

	// Nothing left in the queue
	remaining, err := ticketRepo.FindNewForClaim(ctx, ticketCount)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	var printing int64
	err = testDB.DB.Model(&kitchen.KitchenTicket{}).
		Where("store_id = ? AND status = ?", storeID, kitchen.TicketStatusPrinting).
		Count(&printing).Error
	require.NoError(t, err)
	assert.Equal(t, int64(ticketCount), printing)
}
