package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// MockSessionRepository is a mock implementation of session.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.StoreSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.StoreSession), args.Error(1)
}

func (m *MockSessionRepository) FindCurrent(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.StoreSession), args.Error(1)
}

func (m *MockSessionRepository) FindCurrentForUpdate(ctx context.Context, storeID uuid.UUID) (*session.StoreSession, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.StoreSession), args.Error(1)
}

func (m *MockSessionRepository) FindByBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (*session.StoreSession, error) {
	args := m.Called(ctx, storeID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.StoreSession), args.Error(1)
}

func (m *MockSessionRepository) FindOpenOlderThan(ctx context.Context, cutoff time.Time) ([]session.StoreSession, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.StoreSession), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, sess *session.StoreSession) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

// MockShiftRepository is a mock implementation of session.ShiftRepository
type MockShiftRepository struct {
	mock.Mock
}

func (m *MockShiftRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.CashierShift, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.CashierShift), args.Error(1)
}

func (m *MockShiftRepository) FindOpenByCashier(ctx context.Context, cashierID uuid.UUID) (*session.CashierShift, error) {
	args := m.Called(ctx, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.CashierShift), args.Error(1)
}

func (m *MockShiftRepository) FindOpenByCashierForUpdate(ctx context.Context, cashierID uuid.UUID) (*session.CashierShift, error) {
	args := m.Called(ctx, cashierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.CashierShift), args.Error(1)
}

func (m *MockShiftRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]session.CashierShift, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.CashierShift), args.Error(1)
}

func (m *MockShiftRepository) CountOpenBySession(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShiftRepository) Save(ctx context.Context, shift *session.CashierShift) error {
	args := m.Called(ctx, shift)
	return args.Error(0)
}

// MockChecklistRepository is a mock implementation of session.ChecklistRepository
type MockChecklistRepository struct {
	mock.Mock
}

func (m *MockChecklistRepository) FindBySession(ctx context.Context, sessionID uuid.UUID) ([]session.EODChecklistItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]session.EODChecklistItem), args.Error(1)
}

func (m *MockChecklistRepository) FindByID(ctx context.Context, id uuid.UUID) (*session.EODChecklistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.EODChecklistItem), args.Error(1)
}

func (m *MockChecklistRepository) SaveAll(ctx context.Context, items []session.EODChecklistItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockChecklistRepository) Save(ctx context.Context, item *session.EODChecklistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockChecklistRepository) CountIncomplete(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(int64), args.Error(1)
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

// MockBillRepository is a mock implementation of ordering.BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ordering.Bill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByNumber(ctx context.Context, storeID uuid.UUID, billNumber string) (*ordering.Bill, error) {
	args := m.Called(ctx, storeID, billNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindOpenByTable(ctx context.Context, storeID, tableID uuid.UUID) (*ordering.Bill, error) {
	args := m.Called(ctx, storeID, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status ordering.BillStatus, filter shared.Filter) ([]ordering.Bill, error) {
	args := m.Called(ctx, storeID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) FindForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, filter shared.Filter) ([]ordering.Bill, error) {
	args := m.Called(ctx, storeID, businessDate, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.Bill), args.Error(1)
}

func (m *MockBillRepository) CountByStatusForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time, status ordering.BillStatus) (int64, error) {
	args := m.Called(ctx, storeID, businessDate, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) SumPaidTotalForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, storeID, businessDate)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *ordering.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBillRepository) GenerateBillNumber(ctx context.Context, brandID uuid.UUID, outletCode string, businessDate time.Time) (string, error) {
	args := m.Called(ctx, brandID, outletCode, businessDate)
	return args.String(0), args.Error(1)
}

func (m *MockBillRepository) NextQueueNumber(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (int, error) {
	args := m.Called(ctx, storeID, businessDate)
	return args.Int(0), args.Error(1)
}

// MockBillLogRepository is a mock implementation of ordering.BillLogRepository
type MockBillLogRepository struct {
	mock.Mock
}

func (m *MockBillLogRepository) Append(ctx context.Context, logs ...*ordering.BillLog) error {
	args := m.Called(ctx, logs)
	return args.Error(0)
}

func (m *MockBillLogRepository) FindByBill(ctx context.Context, billID uuid.UUID, filter shared.Filter) ([]ordering.BillLog, error) {
	args := m.Called(ctx, billID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ordering.BillLog), args.Error(1)
}

// MockPaymentRepository is a mock implementation of payment.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]payment.Payment, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SumCashByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, shiftID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) SummarizeByShift(ctx context.Context, shiftID uuid.UUID) ([]payment.MethodSummary, error) {
	args := m.Called(ctx, shiftID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.MethodSummary), args.Error(1)
}

func (m *MockPaymentRepository) SumByMethodForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (map[payment.PaymentMethod]decimal.Decimal, error) {
	args := m.Called(ctx, storeID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[payment.PaymentMethod]decimal.Decimal), args.Error(1)
}

// MockRefundRepository is a mock implementation of payment.RefundRepository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.BillRefund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.BillRefund), args.Error(1)
}

func (m *MockRefundRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]payment.BillRefund, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.BillRefund), args.Error(1)
}

func (m *MockRefundRepository) FindByStatus(ctx context.Context, storeID uuid.UUID, status payment.RefundStatus, filter shared.Filter) ([]payment.BillRefund, error) {
	args := m.Called(ctx, storeID, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.BillRefund), args.Error(1)
}

func (m *MockRefundRepository) Save(ctx context.Context, refund *payment.BillRefund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockRefundRepository) RefundedQuantities(ctx context.Context, billID uuid.UUID) (map[uuid.UUID]int, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]int), args.Error(1)
}

func (m *MockRefundRepository) RefundedTotal(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, billID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRefundRepository) SumCashReversalsByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, shiftID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRefundRepository) SumCompletedForBusinessDate(ctx context.Context, storeID uuid.UUID, businessDate time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, storeID, businessDate)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRefundRepository) GenerateRefundNumber(ctx context.Context, brandID uuid.UUID, brandCode string, businessDate time.Time) (string, error) {
	args := m.Called(ctx, brandID, brandCode, businessDate)
	return args.String(0), args.Error(1)
}

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

// MockApprovalVerifier is a mock implementation of ApprovalVerifier
type MockApprovalVerifier struct {
	mock.Mock
}

func (m *MockApprovalVerifier) VerifyApprover(ctx context.Context, storeID uuid.UUID, code, capability string) (uuid.UUID, string, error) {
	args := m.Called(ctx, storeID, code, capability)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

// passthroughTxManager runs the unit of work without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	testStoreID  = uuid.New()
	testActorID  = uuid.New()
	businessDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
)

type sessionServiceFixture struct {
	service       *SessionService
	sessionRepo   *MockSessionRepository
	shiftRepo     *MockShiftRepository
	checklistRepo *MockChecklistRepository
	alertRepo     *MockAlertRepository
	billRepo      *MockBillRepository
	billLogRepo   *MockBillLogRepository
	paymentRepo   *MockPaymentRepository
	refundRepo    *MockRefundRepository
	ticketRepo    *MockTicketRepository
	verifier      *MockApprovalVerifier
}

func newSessionServiceFixture() *sessionServiceFixture {
	f := &sessionServiceFixture{
		sessionRepo:   new(MockSessionRepository),
		shiftRepo:     new(MockShiftRepository),
		checklistRepo: new(MockChecklistRepository),
		alertRepo:     new(MockAlertRepository),
		billRepo:      new(MockBillRepository),
		billLogRepo:   new(MockBillLogRepository),
		paymentRepo:   new(MockPaymentRepository),
		refundRepo:    new(MockRefundRepository),
		ticketRepo:    new(MockTicketRepository),
		verifier:      new(MockApprovalVerifier),
	}
	f.service = NewSessionService(
		f.sessionRepo, f.shiftRepo, f.checklistRepo, f.alertRepo,
		f.billRepo, f.billLogRepo, f.paymentRepo, f.refundRepo, f.ticketRepo,
		passthroughTxManager{}, f.verifier, zap.NewNop(),
	)
	return f
}

func openTestSession(t *testing.T) *session.StoreSession {
	t.Helper()
	sess, err := session.NewStoreSession(testStoreID, businessDate, testActorID)
	assert.NoError(t, err)
	sess.ClearDomainEvents()
	return sess
}

// expectBillCounts wires the per-status bill counts the readiness check and
// EOD report read
func (f *sessionServiceFixture) expectBillCounts(open, hold, paid, cancelled, void int64) {
	f.billRepo.On("CountByStatusForBusinessDate", mock.Anything, testStoreID, businessDate, ordering.BillStatusOpen).Return(open, nil)
	f.billRepo.On("CountByStatusForBusinessDate", mock.Anything, testStoreID, businessDate, ordering.BillStatusHold).Return(hold, nil)
	f.billRepo.On("CountByStatusForBusinessDate", mock.Anything, testStoreID, businessDate, ordering.BillStatusPaid).Return(paid, nil)
	f.billRepo.On("CountByStatusForBusinessDate", mock.Anything, testStoreID, businessDate, ordering.BillStatusCancelled).Return(cancelled, nil)
	f.billRepo.On("CountByStatusForBusinessDate", mock.Anything, testStoreID, businessDate, ordering.BillStatusVoid).Return(void, nil)
}

func TestSessionService_Open_Success(t *testing.T) {
	f := newSessionServiceFixture()

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(nil, shared.ErrNotFound)
	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.StoreSession")).Return(nil)
	var seeded []session.EODChecklistItem
	f.checklistRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]session.EODChecklistItem")).
		Run(func(args mock.Arguments) {
			seeded = args.Get(1).([]session.EODChecklistItem)
		}).Return(nil)

	resp, err := f.service.Open(context.Background(), testStoreID, testActorID, OpenSessionRequest{BusinessDate: "2026-09-01"})

	assert.NoError(t, err)
	assert.Equal(t, "2026-09-01", resp.BusinessDate)
	assert.Equal(t, "open", resp.Status)
	assert.True(t, resp.IsCurrent)
	assert.Equal(t, "ok", resp.Health)
	assert.Len(t, seeded, len(session.DefaultChecklistNames))
	f.sessionRepo.AssertExpectations(t)
	f.checklistRepo.AssertExpectations(t)
}

func TestSessionService_Open_RejectsSecondCurrentSession(t *testing.T) {
	f := newSessionServiceFixture()
	current := openTestSession(t)

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(current, nil)

	_, err := f.service.Open(context.Background(), testStoreID, testActorID, OpenSessionRequest{BusinessDate: "2026-09-02"})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SESSION_ALREADY_OPEN", domainErr.Code)
	f.sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionService_Open_RejectsMalformedDate(t *testing.T) {
	f := newSessionServiceFixture()

	_, err := f.service.Open(context.Background(), testStoreID, testActorID, OpenSessionRequest{BusinessDate: "01/09/2026"})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_BUSINESS_DATE", domainErr.Code)
}

func TestSessionService_Current_GradesOverdueSession(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)
	sess.OpenedAt = time.Now().Add(-13 * time.Hour)

	f.sessionRepo.On("FindCurrent", mock.Anything, testStoreID).Return(sess, nil)

	resp, err := f.service.Current(context.Background(), testStoreID)

	assert.NoError(t, err)
	assert.Equal(t, "warning", resp.Health)
	assert.InDelta(t, 13, resp.AgeHours, 0.1)
}

func TestSessionService_Readiness_CleanDay(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)

	f.sessionRepo.On("FindCurrent", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(0, 0, 12, 1, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(0), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)

	resp, err := f.service.Readiness(context.Background(), testStoreID)

	assert.NoError(t, err)
	assert.True(t, resp.CanClose)
	assert.Empty(t, resp.Blocking)
	assert.Empty(t, resp.Warnings)
}

func TestSessionService_Readiness_ReportsBlockersAndWarnings(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)

	f.sessionRepo.On("FindCurrent", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(2, 1, 9, 0, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(1), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(3), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(2), nil)

	resp, err := f.service.Readiness(context.Background(), testStoreID)

	assert.NoError(t, err)
	assert.False(t, resp.CanClose)
	assert.Len(t, resp.Blocking, 2)
	assert.Equal(t, "OPEN_BILLS", resp.Blocking[0].Code)
	assert.Equal(t, int64(2), resp.Blocking[0].Count)
	assert.Equal(t, "OPEN_SHIFTS", resp.Blocking[1].Code)
	assert.Len(t, resp.Warnings, 3)
	assert.Equal(t, "HELD_BILLS", resp.Warnings[0].Code)
	assert.Equal(t, "PENDING_TICKETS", resp.Warnings[1].Code)
	assert.Equal(t, "CHECKLIST_INCOMPLETE", resp.Warnings[2].Code)
}

func TestSessionService_Close_RefusesWithBlockingIssues(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(2, 0, 9, 0, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(0), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)

	_, err := f.service.Close(context.Background(), testStoreID, testActorID, CloseSessionRequest{})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SESSION_NOT_READY", domainErr.Code)
	assert.True(t, sess.IsOpen())
	f.sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionService_Close_GeneratesReportAndRollsOver(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(0, 0, 12, 1, 1)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(0), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)

	f.billRepo.On("SumPaidTotalForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.NewFromInt(1250000), nil)
	f.refundRepo.On("SumCompletedForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.NewFromInt(22000), nil)
	f.paymentRepo.On("SumByMethodForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(map[payment.PaymentMethod]decimal.Decimal{
			payment.MethodCash: decimal.NewFromInt(750000),
			payment.MethodQRIS: decimal.NewFromInt(500000),
		}, nil)

	shiftA := session.CashierShift{Variance: decimal.NewFromInt(-5000)}
	shiftB := session.CashierShift{Variance: decimal.NewFromInt(2000)}
	f.shiftRepo.On("FindBySession", mock.Anything, sess.ID).Return([]session.CashierShift{shiftA, shiftB}, nil)

	var saved []*session.StoreSession
	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.StoreSession")).
		Run(func(args mock.Arguments) {
			saved = append(saved, args.Get(1).(*session.StoreSession))
		}).Return(nil)
	f.checklistRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]session.EODChecklistItem")).Return(nil)

	var logged []*ordering.BillLog
	f.billLogRepo.On("Append", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			logged = args.Get(1).([]*ordering.BillLog)
		}).Return(nil)

	resp, err := f.service.Close(context.Background(), testStoreID, testActorID, CloseSessionRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "closed", resp.Status)
	assert.False(t, resp.IsCurrent)
	assert.NotNil(t, resp.Report)
	assert.Equal(t, int64(14), resp.Report.BillCount)
	assert.Equal(t, int64(12), resp.Report.PaidBillCount)
	assert.Equal(t, "1250000", resp.Report.GrossSales.String())
	assert.Equal(t, "22000", resp.Report.RefundTotal.String())
	assert.Equal(t, "750000", resp.Report.PaymentTotals["cash"].String())
	assert.Equal(t, int64(2), resp.Report.ShiftCount)
	assert.Equal(t, "-3000", resp.Report.VarianceTotal.String())

	// closed session and its follow-on both persist in the same unit of work
	assert.Len(t, saved, 2)
	next := saved[1]
	assert.True(t, next.IsOpen())
	assert.True(t, next.IsCurrent)
	assert.Equal(t, "2026-09-02", next.BusinessDate.Format("2006-01-02"))
	f.checklistRepo.AssertNumberOfCalls(t, "SaveAll", 1)

	assert.Len(t, logged, 1)
	assert.Equal(t, ordering.ActionEODCompleted, logged[0].Action)
	assert.Nil(t, logged[0].BillID)
	assert.Equal(t, "2026-09-01", logged[0].Details["business_date"])
}

func TestSessionService_Close_ForceRequiresApprovalCode(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(1, 0, 9, 0, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(0), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)
	f.verifier.On("VerifyApprover", mock.Anything, testStoreID, "0000", CapabilityForceClose).
		Return(uuid.Nil, "", shared.NewAuthorizationError("INVALID_APPROVAL_CODE", "Approval code not recognized"))

	_, err := f.service.Close(context.Background(), testStoreID, testActorID, CloseSessionRequest{Force: true, ApprovalCode: "0000"})

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_APPROVAL_CODE", domainErr.Code)
	assert.True(t, sess.IsOpen())
}

func TestSessionService_Close_ForcedPastBlockers(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)
	approverID := uuid.New()

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(1, 0, 9, 0, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(0), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)
	f.verifier.On("VerifyApprover", mock.Anything, testStoreID, "9999", CapabilityForceClose).
		Return(approverID, "**99", nil)

	f.billRepo.On("SumPaidTotalForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.NewFromInt(900000), nil)
	f.refundRepo.On("SumCompletedForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.Zero, nil)
	f.paymentRepo.On("SumByMethodForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(map[payment.PaymentMethod]decimal.Decimal{}, nil)
	f.shiftRepo.On("FindBySession", mock.Anything, sess.ID).Return([]session.CashierShift{}, nil)
	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.StoreSession")).Return(nil)
	f.checklistRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]session.EODChecklistItem")).Return(nil)
	f.billLogRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Close(context.Background(), testStoreID, testActorID, CloseSessionRequest{Force: true, ApprovalCode: "9999"})

	assert.NoError(t, err)
	assert.Equal(t, "force_closed", resp.Status)
	assert.True(t, resp.Report.ForcedPastIssue)
}

func TestSessionService_Close_ForcedAbandonsOpenShifts(t *testing.T) {
	f := newSessionServiceFixture()
	sess := openTestSession(t)
	approverID := uuid.New()
	orphan := openTestShift(t, sess.ID, 500000)
	settled := openTestShift(t, sess.ID, 300000)
	assert.NoError(t, settled.Close(testActorID, session.CashCount{ActualCash: decimal.NewFromInt(300000)}, decimal.NewFromInt(50000), nil))
	settled.ClearDomainEvents()

	f.sessionRepo.On("FindCurrentForUpdate", mock.Anything, testStoreID).Return(sess, nil)
	f.expectBillCounts(0, 0, 9, 0, 0)
	f.shiftRepo.On("CountOpenBySession", mock.Anything, sess.ID).Return(int64(1), nil)
	f.ticketRepo.On("CountPending", mock.Anything, testStoreID).Return(int64(0), nil)
	f.checklistRepo.On("CountIncomplete", mock.Anything, sess.ID).Return(int64(0), nil)
	f.verifier.On("VerifyApprover", mock.Anything, testStoreID, "9999", CapabilityForceClose).
		Return(approverID, "**99", nil)

	f.billRepo.On("SumPaidTotalForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.NewFromInt(900000), nil)
	f.refundRepo.On("SumCompletedForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(decimal.Zero, nil)
	f.paymentRepo.On("SumByMethodForBusinessDate", mock.Anything, testStoreID, businessDate).
		Return(map[payment.PaymentMethod]decimal.Decimal{}, nil)
	f.shiftRepo.On("FindBySession", mock.Anything, sess.ID).Return([]session.CashierShift{*orphan, *settled}, nil)

	var savedShifts []*session.CashierShift
	f.shiftRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.CashierShift")).
		Run(func(args mock.Arguments) {
			savedShifts = append(savedShifts, args.Get(1).(*session.CashierShift))
		}).Return(nil)
	f.sessionRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.StoreSession")).Return(nil)
	f.checklistRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]session.EODChecklistItem")).Return(nil)
	f.billLogRepo.On("Append", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.service.Close(context.Background(), testStoreID, testActorID, CloseSessionRequest{Force: true, ApprovalCode: "9999"})

	assert.NoError(t, err)
	assert.Equal(t, "force_closed", resp.Status)

	// only the still-open drawer is touched
	assert.Len(t, savedShifts, 1)
	assert.Equal(t, orphan.ID, savedShifts[0].ID)
	assert.Equal(t, session.ShiftStatusAbandoned, savedShifts[0].Status)
	assert.True(t, savedShifts[0].RequiresApproval)
	assert.Equal(t, &testActorID, savedShifts[0].ClosedBy)
}

func TestSessionService_SweepOverdue_RaisesAlerts(t *testing.T) {
	f := newSessionServiceFixture()

	warning := openTestSession(t)
	warning.OpenedAt = time.Now().Add(-13 * time.Hour)
	critical := openTestSession(t)
	critical.OpenedAt = time.Now().Add(-26 * time.Hour)

	f.sessionRepo.On("FindOpenOlderThan", mock.Anything, mock.AnythingOfType("time.Time")).
		Return([]session.StoreSession{*warning, *critical}, nil)

	var raised []*session.SessionAlert
	f.alertRepo.On("Save", mock.Anything, mock.AnythingOfType("*session.SessionAlert")).
		Run(func(args mock.Arguments) {
			raised = append(raised, args.Get(1).(*session.SessionAlert))
		}).Return(nil)

	count, err := f.service.SweepOverdue(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, raised, 2)
	assert.Equal(t, session.AlertSessionOverdue, raised[0].Type)
	assert.Equal(t, session.AlertSeverityWarning, raised[0].Severity)
	assert.Equal(t, session.AlertSeverityCritical, raised[1].Severity)
}

func TestSessionService_CompleteChecklistItem(t *testing.T) {
	f := newSessionServiceFixture()
	items := session.SeedChecklist(uuid.New())
	item := &items[0]

	f.checklistRepo.On("FindByID", mock.Anything, item.ID).Return(item, nil)
	f.checklistRepo.On("Save", mock.Anything, item).Return(nil)

	resp, err := f.service.CompleteChecklistItem(context.Background(), item.ID, testActorID)

	assert.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.Equal(t, testActorID, *resp.CompletedBy)
}

func TestSessionService_AcknowledgeAlert(t *testing.T) {
	f := newSessionServiceFixture()
	alert := session.NewSessionAlert(testStoreID, nil, nil, session.AlertTicketStuck, session.AlertSeverityWarning, "Ticket stuck in printing")

	f.alertRepo.On("FindByID", mock.Anything, alert.ID).Return(alert, nil)
	f.alertRepo.On("Save", mock.Anything, alert).Return(nil)

	resp, err := f.service.AcknowledgeAlert(context.Background(), alert.ID, testActorID)

	assert.NoError(t, err)
	assert.True(t, resp.Acknowledged)

	_, err = f.service.AcknowledgeAlert(context.Background(), alert.ID, testActorID)
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_ACKNOWLEDGED", domainErr.Code)
}
