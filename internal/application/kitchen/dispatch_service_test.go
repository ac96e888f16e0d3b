package kitchen

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// MockTicketRepository is a mock implementation of kitchen.KitchenTicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*kitchen.KitchenTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kitchen.KitchenTicket), args.Error(1)
}

func (m *MockTicketRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]kitchen.KitchenTicket, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.KitchenTicket), args.Error(1)
}

func (m *MockTicketRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status kitchen.TicketStatus, filter shared.Filter) ([]kitchen.KitchenTicket, error) {
	args := m.Called(ctx, storeID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.KitchenTicket), args.Error(1)
}

func (m *MockTicketRepository) FindNewForClaim(ctx context.Context, limit int) ([]kitchen.KitchenTicket, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.KitchenTicket), args.Error(1)
}

func (m *MockTicketRepository) FindStuckPrinting(ctx context.Context, cutoff time.Time) ([]kitchen.KitchenTicket, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.KitchenTicket), args.Error(1)
}

func (m *MockTicketRepository) CountPending(ctx context.Context, storeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, storeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTicketRepository) Save(ctx context.Context, ticket *kitchen.KitchenTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) SaveAll(ctx context.Context, tickets []*kitchen.KitchenTicket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

// MockPrinterRepository is a mock implementation of kitchen.StationPrinterRepository
type MockPrinterRepository struct {
	mock.Mock
}

func (m *MockPrinterRepository) FindByID(ctx context.Context, id uuid.UUID) (*kitchen.StationPrinter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kitchen.StationPrinter), args.Error(1)
}

func (m *MockPrinterRepository) FindByStation(ctx context.Context, storeID, brandID uuid.UUID, station string) ([]kitchen.StationPrinter, error) {
	args := m.Called(ctx, storeID, brandID, station)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.StationPrinter), args.Error(1)
}

func (m *MockPrinterRepository) FindAllForStore(ctx context.Context, storeID uuid.UUID) ([]kitchen.StationPrinter, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.StationPrinter), args.Error(1)
}

func (m *MockPrinterRepository) Save(ctx context.Context, printer *kitchen.StationPrinter) error {
	args := m.Called(ctx, printer)
	return args.Error(0)
}

func (m *MockPrinterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketLogRepository is a mock implementation of kitchen.TicketLogRepository
type MockTicketLogRepository struct {
	mock.Mock
}

func (m *MockTicketLogRepository) Append(ctx context.Context, logs ...*kitchen.KitchenTicketLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

func (m *MockTicketLogRepository) FindByTicket(ctx context.Context, ticketID uuid.UUID) ([]kitchen.KitchenTicketLog, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kitchen.KitchenTicketLog), args.Error(1)
}

// MockAlertRepository is a mock implementation of session.AlertRepository
type MockAlertRepository struct {
	mock.Mock
}

func (m *MockAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.SessionAlert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.SessionAlert), args.Error(1)
}

func (m *MockAlertRepository) FindUnacknowledged(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]session.SessionAlert, error) {
	args := m.Called(ctx, storeID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.SessionAlert), args.Error(1)
}

func (m *MockAlertRepository) Save(ctx context.Context, alert *session.SessionAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// passthroughTxManager runs the callback directly without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Test helpers
var (
	testStoreID = uuid.New()
	testBrandID = uuid.New()
)

type dispatchFixture struct {
	ticketRepo  *MockTicketRepository
	printerRepo *MockPrinterRepository
	logRepo     *MockTicketLogRepository
	alertRepo   *MockAlertRepository
	service     *DispatchService
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		ticketRepo:  new(MockTicketRepository),
		printerRepo: new(MockPrinterRepository),
		logRepo:     new(MockTicketLogRepository),
		alertRepo:   new(MockAlertRepository),
	}
	f.service = NewDispatchService(f.ticketRepo, f.printerRepo, f.logRepo, f.alertRepo, passthroughTxManager{}, zap.NewNop())
	return f
}

func newTestTicket(t *testing.T, station string) *kitchen.KitchenTicket {
	t.Helper()
	lines := []kitchen.TicketLine{{
		BillItemID:  uuid.New(),
		ProductID:   uuid.New(),
		ProductName: "Nasi Goreng",
		Station:     station,
		Quantity:    2,
	}}
	ticket, err := kitchen.NewKitchenTicket(testStoreID, testBrandID, uuid.New(), "JKT01-20260901-0001", nil, nil, station, lines)
	assert.NoError(t, err)
	ticket.ClearDomainEvents()
	return ticket
}

func newTestPrinter(t *testing.T, station string, priority int) kitchen.StationPrinter {
	t.Helper()
	printer, err := kitchen.NewStationPrinter(testStoreID, testBrandID, station, "printer-"+station, "tcp://10.0.0.5:9100", priority)
	assert.NoError(t, err)
	return *printer
}

func TestDispatchService_Claim_AssignsLowestPriorityPrinter(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	backup := newTestPrinter(t, "hot_kitchen", 2)
	primary := newTestPrinter(t, "hot_kitchen", 1)

	f.ticketRepo.On("FindNewForClaim", mock.Anything, 10).Return([]kitchen.KitchenTicket{*ticket}, nil)
	f.printerRepo.On("FindByStation", mock.Anything, testStoreID, testBrandID, "hot_kitchen").
		Return([]kitchen.StationPrinter{backup, primary}, nil)
	f.ticketRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	responses, err := f.service.Claim(context.Background(), 0)

	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, "printing", responses[0].Status)
	assert.Equal(t, primary.Name, responses[0].PrinterName)
	assert.Equal(t, primary.Address, responses[0].PrinterAddr)
	assert.Equal(t, 1, responses[0].Attempts)
}

func TestDispatchService_Claim_UnconfiguredStationStaysNew(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "sushi_bar")

	var savedTickets []*kitchen.KitchenTicket
	f.ticketRepo.On("FindNewForClaim", mock.Anything, 5).Return([]kitchen.KitchenTicket{*ticket}, nil)
	f.printerRepo.On("FindByStation", mock.Anything, testStoreID, testBrandID, "sushi_bar").
		Return([]kitchen.StationPrinter{}, nil)
	f.alertRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.SessionAlert")).Return(nil)
	f.ticketRepo.On("SaveAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		savedTickets = args.Get(1).([]*kitchen.KitchenTicket)
	}).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	responses, err := f.service.Claim(context.Background(), 5)

	// The ticket must stay claimable and keep its full attempt budget; only
	// the gap is recorded and alerted.
	assert.NoError(t, err)
	assert.Empty(t, responses)
	assert.Len(t, savedTickets, 1)
	assert.Equal(t, kitchen.TicketStatusNew, savedTickets[0].Status)
	assert.Equal(t, 0, savedTickets[0].Attempts)
	assert.Equal(t, "no active printer for station", savedTickets[0].ErrorMessage)
	f.alertRepo.AssertExpectations(t)
}

func TestDispatchService_Claim_PrinterGapAlertsOnceThenClaims(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "sushi_bar")

	f.ticketRepo.On("FindNewForClaim", mock.Anything, 5).Return([]kitchen.KitchenTicket{*ticket}, nil).Once()
	f.printerRepo.On("FindByStation", mock.Anything, testStoreID, testBrandID, "sushi_bar").
		Return([]kitchen.StationPrinter{}, nil).Twice()
	f.alertRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.SessionAlert")).Return(nil).Once()
	// Copy saved state back so later polls see what persistence would return.
	f.ticketRepo.On("SaveAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved := args.Get(1).([]*kitchen.KitchenTicket)
		*ticket = *saved[0]
	}).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Claim(context.Background(), 5)
	assert.NoError(t, err)

	// Second poll sees the recorded gap and does not repeat the alert.
	f.ticketRepo.On("FindNewForClaim", mock.Anything, 5).Return([]kitchen.KitchenTicket{*ticket}, nil).Once()
	_, err = f.service.Claim(context.Background(), 5)
	assert.NoError(t, err)
	f.alertRepo.AssertNumberOfCalls(t, "Save", 1)

	// Once a printer is configured the ticket claims with its budget intact.
	printer := newTestPrinter(t, "sushi_bar", 1)
	f.ticketRepo.On("FindNewForClaim", mock.Anything, 5).Return([]kitchen.KitchenTicket{*ticket}, nil).Once()
	f.printerRepo.On("FindByStation", mock.Anything, testStoreID, testBrandID, "sushi_bar").
		Return([]kitchen.StationPrinter{printer}, nil).Once()

	responses, err := f.service.Claim(context.Background(), 5)
	assert.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, "printing", responses[0].Status)
	assert.Equal(t, 1, responses[0].Attempts)
}

func TestDispatchService_Claim_InactivePrinterIgnored(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	printer.Deactivate()

	f.ticketRepo.On("FindNewForClaim", mock.Anything, 5).Return([]kitchen.KitchenTicket{*ticket}, nil)
	f.printerRepo.On("FindByStation", mock.Anything, testStoreID, testBrandID, "hot_kitchen").
		Return([]kitchen.StationPrinter{printer}, nil)
	f.alertRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.SessionAlert")).Return(nil)
	f.ticketRepo.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	responses, err := f.service.Claim(context.Background(), 5)

	assert.NoError(t, err)
	assert.Empty(t, responses)
}

func TestDispatchService_Claim_EmptyQueue(t *testing.T) {
	f := newDispatchFixture()
	f.ticketRepo.On("FindNewForClaim", mock.Anything, 10).Return([]kitchen.KitchenTicket{}, nil)

	responses, err := f.service.Claim(context.Background(), 10)

	assert.NoError(t, err)
	assert.Empty(t, responses)
	f.ticketRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
}

func TestDispatchService_Complete_MarksPrinted(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	assert.NoError(t, ticket.Claim(printer.ID, printer.Name))

	duration := int64(850)
	f.ticketRepo.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)
	f.ticketRepo.On("Save", mock.Anything, ticket).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Complete(context.Background(), ticket.ID, CompleteTicketRequest{DurationMs: &duration})

	assert.NoError(t, err)
	assert.Equal(t, "printed", resp.Status)
	assert.True(t, ticket.IsPrinted())
}

func TestDispatchService_Fail_RecordsAgentError(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	assert.NoError(t, ticket.Claim(printer.ID, printer.Name))

	f.ticketRepo.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)
	f.ticketRepo.On("Save", mock.Anything, ticket).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Fail(context.Background(), ticket.ID, FailTicketRequest{ErrorMessage: "paper jam"})

	assert.NoError(t, err)
	assert.Equal(t, "failed", resp.Status)
	assert.Equal(t, "paper jam", resp.ErrorMessage)
}

func TestDispatchService_Retry_RequeuesFailedTicket(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	assert.NoError(t, ticket.Claim(printer.ID, printer.Name))
	assert.NoError(t, ticket.MarkFailed("paper jam"))
	ticket.ClearDomainEvents()

	f.ticketRepo.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)
	f.ticketRepo.On("Save", mock.Anything, ticket).Return(nil)
	f.logRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Retry(context.Background(), ticket.ID, uuid.New())

	assert.NoError(t, err)
	assert.Equal(t, "new", resp.Status)
	assert.Equal(t, 1, resp.Attempts)
}

func TestDispatchService_Retry_ExhaustedBudgetRejected(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	for i := 0; i < 3; i++ {
		assert.NoError(t, ticket.Claim(printer.ID, printer.Name))
		assert.NoError(t, ticket.MarkFailed("paper jam"))
		if ticket.CanRetry() {
			assert.NoError(t, ticket.Retry())
		}
	}
	ticket.ClearDomainEvents()
	assert.False(t, ticket.CanRetry())

	f.ticketRepo.On("FindByID", mock.Anything, ticket.ID).Return(ticket, nil)

	_, err := f.service.Retry(context.Background(), ticket.ID, uuid.New())

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RETRY_EXHAUSTED", domainErr.Code)
	f.ticketRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDispatchService_SweepStuck_RaisesAlerts(t *testing.T) {
	f := newDispatchFixture()
	ticket := newTestTicket(t, "hot_kitchen")
	printer := newTestPrinter(t, "hot_kitchen", 1)
	assert.NoError(t, ticket.Claim(printer.ID, printer.Name))

	f.ticketRepo.On("FindStuckPrinting", mock.Anything, mock.Anything).Return([]kitchen.KitchenTicket{*ticket}, nil)
	f.alertRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.SessionAlert")).Return(nil)

	count, err := f.service.SweepStuck(context.Background(), 5*time.Minute)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	f.alertRepo.AssertExpectations(t)
}
