package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// PaymentService records settlements against bills. The remaining balance is
// recomputed from persisted payment rows on every call, and a bill whose
// balance reaches zero closes in the same transaction as the payment row.
type PaymentService struct {
	paymentRepo payment.PaymentRepository
	billRepo    ordering.BillRepository
	billLogRepo ordering.BillLogRepository
	shiftRepo   session.ShiftRepository
	txManager   shared.TransactionManager
	guard       SessionGuard
	tables      TableReleaser
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo payment.PaymentRepository,
	billRepo ordering.BillRepository,
	billLogRepo ordering.BillLogRepository,
	shiftRepo session.ShiftRepository,
	txManager shared.TransactionManager,
	guard SessionGuard,
	tables TableReleaser,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		billLogRepo: billLogRepo,
		shiftRepo:   shiftRepo,
		txManager:   txManager,
		guard:       guard,
		tables:      tables,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Record applies one settlement to a bill. Cash payments require the actor
// to hold an open shift; the payment row is attributed to that shift so the
// drawer reconciles at close. When the payment covers the remaining balance
// the bill closes as paid and the surplus comes back as change.
func (s *PaymentService) Record(ctx context.Context, billID, actorID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	method := payment.PaymentMethod(req.Method)

	var (
		pay       *payment.Payment
		bill      *ordering.Bill
		remaining decimal.Decimal
		change    decimal.Decimal
	)
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.billRepo.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if err := s.guard.EnsureTransactionsAllowed(ctx, bill.StoreID); err != nil {
			return err
		}
		if !bill.IsOpen() {
			return shared.NewConflictError("INVALID_STATE", "Payments can only be taken on an open bill",
				string(ordering.BillStatusOpen), string(bill.Status))
		}
		if bill.IsEmpty() {
			return shared.NewValidationError("EMPTY_BILL", "An empty bill cannot be paid")
		}

		var shiftID *uuid.UUID
		shift, err := s.shiftRepo.FindOpenByCashier(ctx, actorID)
		switch {
		case err == nil:
			shiftID = &shift.ID
		case !errors.Is(err, shared.ErrNotFound):
			return err
		case method == payment.MethodCash:
			return shared.NewConflictError("NO_OPEN_SHIFT", "Cash payments require an open cashier shift",
				string(session.ShiftStatusOpen), "none")
		}

		pay, err = payment.NewPayment(bill.StoreID, bill.ID, shiftID, method, req.Amount, req.Reference, actorID)
		if err != nil {
			return err
		}
		if err := s.paymentRepo.Save(ctx, pay); err != nil {
			return err
		}

		paid, err := s.paymentRepo.SumByBill(ctx, bill.ID)
		if err != nil {
			return err
		}
		remaining = bill.Total.Sub(paid)

		logs := []*ordering.BillLog{
			ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionPayment, &actorID, map[string]any{
				"method":    req.Method,
				"amount":    req.Amount.String(),
				"remaining": remaining.String(),
			}),
		}

		if remaining.LessThanOrEqual(decimal.Zero) {
			change, err = bill.CloseAsPaid(actorID, paid)
			if err != nil {
				return err
			}
			if err := s.billRepo.Save(ctx, bill); err != nil {
				return err
			}
			logs = append(logs, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionClose, &actorID, map[string]any{
				"paid":   paid.String(),
				"change": change.String(),
			}))
			if bill.TableID != nil {
				if err := s.tables.ReleaseClean(ctx, bill.StoreID, *bill.TableID); err != nil {
					return err
				}
			}
			remaining = decimal.Zero
		}

		return s.billLogRepo.Append(ctx, logs...)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, payment.NewPaymentRecordedEvent(pay, remaining))
	for _, event := range bill.GetDomainEvents() {
		s.publish(ctx, event)
	}
	bill.ClearDomainEvents()

	resp := ToPaymentResponse(pay, remaining, change, string(bill.Status))
	return &resp, nil
}

// ListByBill returns the payments recorded against a bill
func (s *PaymentService) ListByBill(ctx context.Context, billID uuid.UUID) ([]PaymentResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	running := decimal.Zero
	for i := range payments {
		running = running.Add(payments[i].Amount)
		remaining := bill.Total.Sub(running)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		responses[i] = ToPaymentResponse(&payments[i], remaining, decimal.Zero, string(bill.Status))
	}
	return responses, nil
}

func (s *PaymentService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}
