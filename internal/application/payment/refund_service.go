package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// RefundService drives the reverse flow of paid bills. A refund never
// mutates the bill it draws against; quantity and amount headroom are
// recomputed from persisted refund rows on every request.
type RefundService struct {
	refundRepo  payment.RefundRepository
	paymentRepo payment.PaymentRepository
	billRepo    ordering.BillRepository
	shiftRepo   session.ShiftRepository
	txManager   shared.TransactionManager
	verifier    ApprovalVerifier
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewRefundService creates a new RefundService
func NewRefundService(
	refundRepo payment.RefundRepository,
	paymentRepo payment.PaymentRepository,
	billRepo ordering.BillRepository,
	shiftRepo session.ShiftRepository,
	txManager shared.TransactionManager,
	verifier ApprovalVerifier,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		refundRepo:  refundRepo,
		paymentRepo: paymentRepo,
		billRepo:    billRepo,
		shiftRepo:   shiftRepo,
		txManager:   txManager,
		verifier:    verifier,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *RefundService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create opens a pending refund against a paid bill
func (s *RefundService) Create(ctx context.Context, actorID uuid.UUID, req CreateRefundRequest) (*RefundResponse, error) {
	var refund *payment.BillRefund
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		bill, err := s.billRepo.FindByID(ctx, req.BillID)
		if err != nil {
			return err
		}
		if !bill.IsPaid() {
			return shared.NewConflictError("INVALID_STATE", "Only paid bills can be refunded",
				string(ordering.BillStatusPaid), string(bill.Status))
		}

		paidTotal, err := s.paymentRepo.SumByBill(ctx, bill.ID)
		if err != nil {
			return err
		}
		refundedQty, err := s.refundRepo.RefundedQuantities(ctx, bill.ID)
		if err != nil {
			return err
		}
		priorTotal, err := s.refundRepo.RefundedTotal(ctx, bill.ID)
		if err != nil {
			return err
		}

		lines := make([]payment.RefundLine, 0, len(req.Lines))
		for _, lr := range req.Lines {
			item := bill.GetItem(lr.BillItemID)
			if item == nil {
				return shared.ErrNotFound
			}
			if item.IsVoid {
				return shared.NewValidationError("ITEM_VOID", "Voided items cannot be refunded")
			}
			// The refundable price per unit includes the modifier snapshot,
			// matching how the line contributed to the bill subtotal.
			lines = append(lines, payment.RefundLine{
				BillItemID:        item.ID,
				ProductID:         item.ProductID,
				ProductName:       item.ProductName,
				Quantity:          lr.Quantity,
				AvailableQuantity: item.Quantity - refundedQty[item.ID],
				UnitPrice:         item.UnitPrice.Add(item.ModifierPrice),
			})
		}

		refundNumber, err := s.refundRepo.GenerateRefundNumber(ctx, bill.BrandID, brandCodeOf(bill.BillNumber), bill.BusinessDate)
		if err != nil {
			return err
		}

		original := payment.OriginalBill{
			BillID:        bill.ID,
			BillNumber:    bill.BillNumber,
			Subtotal:      bill.Subtotal,
			DiscountTotal: bill.LineDiscountTotal.Add(bill.DiscountAmount),
			TaxAmount:     bill.TaxAmount,
			ServiceCharge: bill.ServiceCharge,
			Total:         bill.Total,
			PaidTotal:     paidTotal,
		}
		refund, err = payment.NewBillRefund(bill.StoreID, refundNumber, original, lines, req.Reason, actorID, priorTotal)
		if err != nil {
			return err
		}
		return s.refundRepo.Save(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)
	resp := ToRefundResponse(refund)
	return &resp, nil
}

// GetByID retrieves a refund
func (s *RefundService) GetByID(ctx context.Context, refundID uuid.UUID) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindByID(ctx, refundID)
	if err != nil {
		return nil, err
	}
	resp := ToRefundResponse(refund)
	return &resp, nil
}

// ListByBill returns all refunds drawn against a bill
func (s *RefundService) ListByBill(ctx context.Context, billID uuid.UUID) ([]RefundResponse, error) {
	refunds, err := s.refundRepo.FindByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	responses := make([]RefundResponse, len(refunds))
	for i := range refunds {
		responses[i] = ToRefundResponse(&refunds[i])
	}
	return responses, nil
}

// ListByStatus returns a store's refunds in a given status
func (s *RefundService) ListByStatus(ctx context.Context, storeID uuid.UUID, filter RefundListFilter) ([]RefundResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	status := payment.RefundStatus(filter.Status)
	if filter.Status == "" {
		status = payment.RefundStatusPending
	}

	refunds, err := s.refundRepo.FindByStatus(ctx, storeID, status, f)
	if err != nil {
		return nil, err
	}
	responses := make([]RefundResponse, len(refunds))
	for i := range refunds {
		responses[i] = ToRefundResponse(&refunds[i])
	}
	return responses, nil
}

// Approve verifies the elevated approval code and approves the refund.
// Self-approval is rejected by the aggregate even when the code is valid.
func (s *RefundService) Approve(ctx context.Context, refundID uuid.UUID, req ApproveRefundRequest) (*RefundResponse, error) {
	var refund *payment.BillRefund
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		refund, err = s.refundRepo.FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		approverID, maskedCode, err := s.verifier.VerifyApprover(ctx, refund.StoreID, req.ApprovalCode, CapabilityApproveRefund)
		if err != nil {
			return err
		}
		if err := refund.Approve(approverID, maskedCode); err != nil {
			return err
		}
		return s.refundRepo.Save(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)
	resp := ToRefundResponse(refund)
	return &resp, nil
}

// Reject rejects a pending refund with the approver's reason
func (s *RefundService) Reject(ctx context.Context, refundID uuid.UUID, req RejectRefundRequest) (*RefundResponse, error) {
	var refund *payment.BillRefund
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		refund, err = s.refundRepo.FindByID(ctx, refundID)
		if err != nil {
			return err
		}
		approverID, _, err := s.verifier.VerifyApprover(ctx, refund.StoreID, req.ApprovalCode, CapabilityApproveRefund)
		if err != nil {
			return err
		}
		if err := refund.Reject(approverID, req.Reason); err != nil {
			return err
		}
		return s.refundRepo.Save(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)
	resp := ToRefundResponse(refund)
	return &resp, nil
}

// Complete records the payment reversals and closes the refund. Cash
// reversals land in the completer's open shift so the drawer reconciles.
func (s *RefundService) Complete(ctx context.Context, refundID, actorID uuid.UUID, req CompleteRefundRequest) (*RefundResponse, error) {
	var refund *payment.BillRefund
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		refund, err = s.refundRepo.FindByID(ctx, refundID)
		if err != nil {
			return err
		}

		reversals := make([]payment.ReversalInput, len(req.Reversals))
		hasCash := false
		for i, rev := range req.Reversals {
			method := payment.PaymentMethod(rev.Method)
			if method == payment.MethodCash {
				hasCash = true
			}
			reversals[i] = payment.ReversalInput{
				PaymentID: rev.PaymentID,
				Method:    method,
				Amount:    rev.Amount,
				Reference: rev.Reference,
			}
		}

		var shiftID *uuid.UUID
		shift, err := s.shiftRepo.FindOpenByCashier(ctx, actorID)
		switch {
		case err == nil:
			shiftID = &shift.ID
		case !errors.Is(err, shared.ErrNotFound):
			return err
		case hasCash:
			return shared.NewConflictError("NO_OPEN_SHIFT", "Cash reversals require an open cashier shift",
				string(session.ShiftStatusOpen), "none")
		}

		if err := refund.Complete(reversals, actorID, shiftID); err != nil {
			return err
		}
		return s.refundRepo.Save(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, refund)
	resp := ToRefundResponse(refund)
	return &resp, nil
}

func (s *RefundService) publishEvents(ctx context.Context, refund *payment.BillRefund) {
	if s.publisher == nil {
		return
	}
	for _, event := range refund.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	refund.ClearDomainEvents()
}

// brandCodeOf extracts the outlet prefix of a bill number
func brandCodeOf(billNumber string) string {
	if idx := strings.IndexByte(billNumber, '-'); idx > 0 {
		return billNumber[:idx]
	}
	return billNumber
}
