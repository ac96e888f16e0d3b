package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// ShiftService manages cashier drawers. Expected cash at close is computed
// from persisted payment and reversal rows, never from a running counter.
type ShiftService struct {
	shiftRepo         session.ShiftRepository
	sessionRepo       session.SessionRepository
	paymentRepo       payment.PaymentRepository
	refundRepo        payment.RefundRepository
	alertRepo         session.AlertRepository
	txManager         shared.TransactionManager
	verifier          ApprovalVerifier
	varianceThreshold decimal.Decimal
	publisher         shared.EventPublisher
	logger            *zap.Logger
}

// NewShiftService creates a new ShiftService
func NewShiftService(
	shiftRepo session.ShiftRepository,
	sessionRepo session.SessionRepository,
	paymentRepo payment.PaymentRepository,
	refundRepo payment.RefundRepository,
	alertRepo session.AlertRepository,
	txManager shared.TransactionManager,
	verifier ApprovalVerifier,
	varianceThreshold decimal.Decimal,
	logger *zap.Logger,
) *ShiftService {
	return &ShiftService{
		shiftRepo:         shiftRepo,
		sessionRepo:       sessionRepo,
		paymentRepo:       paymentRepo,
		refundRepo:        refundRepo,
		alertRepo:         alertRepo,
		txManager:         txManager,
		verifier:          verifier,
		varianceThreshold: varianceThreshold,
		logger:            logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ShiftService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Open starts a drawer under the current session. A cashier holds at most
// one open shift; the check runs under a row lock so two terminals cannot
// open drawers for the same cashier concurrently.
func (s *ShiftService) Open(ctx context.Context, storeID, cashierID uuid.UUID, req OpenShiftRequest) (*ShiftResponse, error) {
	var shift *session.CashierShift
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		sess, err := s.sessionRepo.FindCurrent(ctx, storeID)
		if err != nil {
			return shared.NewDomainError("NO_SESSION", "Open a business day session before opening a shift")
		}
		if sess.BlocksTransactions(time.Now()) {
			return shared.NewDomainError("SESSION_CRITICAL",
				fmt.Sprintf("Session for %s is critically overdue; run end of day first", sess.BusinessDate.Format("2006-01-02")))
		}

		existing, err := s.shiftRepo.FindOpenByCashierForUpdate(ctx, cashierID)
		if err == nil && existing != nil {
			return shared.NewConflictError("SHIFT_ALREADY_OPEN", "Cashier already has an open shift",
				string(session.ShiftStatusClosed), string(existing.Status))
		}

		shift, err = session.NewCashierShift(storeID, sess.ID, cashierID, req.TerminalID, req.OpeningCash)
		if err != nil {
			return err
		}
		return s.shiftRepo.Save(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, shift)
	resp := ToShiftResponse(shift)
	return &resp, nil
}

// GetByID returns one shift
func (s *ShiftService) GetByID(ctx context.Context, shiftID uuid.UUID) (*ShiftResponse, error) {
	shift, err := s.shiftRepo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	resp := ToShiftResponse(shift)
	return &resp, nil
}

// ListBySession returns all shifts opened under a session
func (s *ShiftService) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]ShiftResponse, error) {
	shifts, err := s.shiftRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	responses := make([]ShiftResponse, len(shifts))
	for i := range shifts {
		responses[i] = ToShiftResponse(&shifts[i])
	}
	return responses, nil
}

// Close reconciles the drawer against the shift's persisted payments and
// reversals. A variance beyond the store threshold flags the shift for
// supervisor approval and raises an alert in the same transaction.
func (s *ShiftService) Close(ctx context.Context, shiftID, actorID uuid.UUID, req CloseShiftRequest) (*ShiftResponse, error) {
	var shift *session.CashierShift
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.shiftRepo.FindByID(ctx, shiftID)
		if err != nil {
			return err
		}

		cashPayments, err := s.paymentRepo.SumCashByShift(ctx, shift.ID)
		if err != nil {
			return err
		}
		cashReversals, err := s.refundRepo.SumCashReversalsByShift(ctx, shift.ID)
		if err != nil {
			return err
		}
		methodSummaries, err := s.paymentRepo.SummarizeByShift(ctx, shift.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		summaries := make([]session.ShiftPaymentSummary, len(methodSummaries))
		for i, row := range methodSummaries {
			summaries[i] = session.ShiftPaymentSummary{
				ID:        uuid.New(),
				ShiftID:   shift.ID,
				Method:    string(row.Method),
				Amount:    row.Amount,
				TxnCount:  row.TxnCount,
				CreatedAt: now,
			}
		}

		count := session.CashCount{
			ActualCash:    req.ActualCash,
			CashPayments:  cashPayments,
			CashReversals: cashReversals,
		}
		if err := shift.Close(actorID, count, s.varianceThreshold, summaries); err != nil {
			return err
		}
		shift.Notes = req.Notes

		if err := s.shiftRepo.Save(ctx, shift); err != nil {
			return err
		}

		if shift.RequiresApproval {
			severity := session.AlertSeverityWarning
			if shift.VarianceSeverity == session.VarianceCritical {
				severity = session.AlertSeverityCritical
			}
			alert := session.NewSessionAlert(shift.StoreID, &shift.SessionID, &shift.ID,
				session.AlertCashVariance, severity,
				fmt.Sprintf("Shift closed with cash variance %s against expected %s",
					shift.Variance.String(), shift.ExpectedCash.String()))
			if err := s.alertRepo.Save(ctx, alert); err != nil {
				return err
			}

			s.logger.Warn("cash variance beyond threshold",
				zap.String("shift_id", shift.ID.String()),
				zap.String("cashier_id", shift.CashierID.String()),
				zap.String("variance", shift.Variance.String()),
				zap.String("severity", string(shift.VarianceSeverity)),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, shift)
	resp := ToShiftResponse(shift)
	return &resp, nil
}

// ApproveVariance settles a flagged shift. The approval code must belong to
// someone other than the shift's cashier, holding the variance capability.
func (s *ShiftService) ApproveVariance(ctx context.Context, shiftID uuid.UUID, req ApproveVarianceRequest) (*ShiftResponse, error) {
	var shift *session.CashierShift
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		shift, err = s.shiftRepo.FindByID(ctx, shiftID)
		if err != nil {
			return err
		}

		approverID, _, err := s.verifier.VerifyApprover(ctx, shift.StoreID, req.ApprovalCode, CapabilityApproveVariance)
		if err != nil {
			return err
		}
		if err := shift.ApproveVariance(approverID); err != nil {
			return err
		}
		return s.shiftRepo.Save(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	resp := ToShiftResponse(shift)
	return &resp, nil
}

func (s *ShiftService) publishEvents(ctx context.Context, shift *session.CashierShift) {
	if s.publisher == nil || shift == nil {
		return
	}
	for _, event := range shift.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	shift.ClearDomainEvents()
}
