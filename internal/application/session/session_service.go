package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/payment"
	"github.com/edgepos/backend/internal/domain/session"
	"github.com/edgepos/backend/internal/domain/shared"
)

// SessionService owns the business-day boundary: opening sessions, the
// pre-close readiness check, EOD report generation, close and rollover.
// Close and rollover commit in one transaction, so the store is never left
// without a current session.
type SessionService struct {
	sessionRepo   session.SessionRepository
	shiftRepo     session.ShiftRepository
	checklistRepo session.ChecklistRepository
	alertRepo     session.AlertRepository
	billRepo      ordering.BillRepository
	billLogRepo   ordering.BillLogRepository
	paymentRepo   payment.PaymentRepository
	refundRepo    payment.RefundRepository
	ticketRepo    kitchen.KitchenTicketRepository
	txManager     shared.TransactionManager
	verifier      ApprovalVerifier
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessionRepo session.SessionRepository,
	shiftRepo session.ShiftRepository,
	checklistRepo session.ChecklistRepository,
	alertRepo session.AlertRepository,
	billRepo ordering.BillRepository,
	billLogRepo ordering.BillLogRepository,
	paymentRepo payment.PaymentRepository,
	refundRepo payment.RefundRepository,
	ticketRepo kitchen.KitchenTicketRepository,
	txManager shared.TransactionManager,
	verifier ApprovalVerifier,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		shiftRepo:     shiftRepo,
		checklistRepo: checklistRepo,
		alertRepo:     alertRepo,
		billRepo:      billRepo,
		billLogRepo:   billLogRepo,
		paymentRepo:   paymentRepo,
		refundRepo:    refundRepo,
		ticketRepo:    ticketRepo,
		txManager:     txManager,
		verifier:      verifier,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SessionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Open starts a business day. Exactly one current session may exist per
// store; the check runs under a row lock in the opening transaction.
func (s *SessionService) Open(ctx context.Context, storeID, actorID uuid.UUID, req OpenSessionRequest) (*SessionResponse, error) {
	businessDate, err := time.Parse("2006-01-02", req.BusinessDate)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_BUSINESS_DATE", "Business date must be yyyy-mm-dd")
	}

	var sess *session.StoreSession
	err = s.txManager.Execute(ctx, func(ctx context.Context) error {
		current, err := s.sessionRepo.FindCurrentForUpdate(ctx, storeID)
		if err == nil && current != nil {
			return shared.NewConflictError("SESSION_ALREADY_OPEN",
				fmt.Sprintf("Session for %s is still open", current.BusinessDate.Format("2006-01-02")),
				string(session.SessionStatusClosed), string(current.Status))
		}

		sess, err = session.NewStoreSession(storeID, businessDate, actorID)
		if err != nil {
			return err
		}
		if err := s.sessionRepo.Save(ctx, sess); err != nil {
			return err
		}
		return s.checklistRepo.SaveAll(ctx, session.SeedChecklist(sess.ID))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sess)
	resp := ToSessionResponse(sess, time.Now())
	return &resp, nil
}

// Current returns the store's current session with its health grade
func (s *SessionService) Current(ctx context.Context, storeID uuid.UUID) (*SessionResponse, error) {
	sess, err := s.sessionRepo.FindCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(sess, time.Now())
	return &resp, nil
}

// Readiness runs the pre-close validation. Open bills and open shifts block
// a normal close; held bills, pending kitchen tickets and unfinished
// checklist tasks are warnings only.
func (s *SessionService) Readiness(ctx context.Context, storeID uuid.UUID) (*ReadinessResponse, error) {
	sess, err := s.sessionRepo.FindCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}
	report, err := s.buildReadiness(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &ReadinessResponse{
		CanClose: report.CanClose(),
		Blocking: report.Blocking,
		Warnings: report.Warnings,
	}, nil
}

func (s *SessionService) buildReadiness(ctx context.Context, sess *session.StoreSession) (*session.ReadinessReport, error) {
	report := &session.ReadinessReport{
		Blocking: []session.ReadinessIssue{},
		Warnings: []session.ReadinessIssue{},
	}

	openBills, err := s.billRepo.CountByStatusForBusinessDate(ctx, sess.StoreID, sess.BusinessDate, ordering.BillStatusOpen)
	if err != nil {
		return nil, err
	}
	if openBills > 0 {
		report.Blocking = append(report.Blocking, session.ReadinessIssue{
			Code: "OPEN_BILLS", Message: "Bills are still open; pay, cancel or void them", Count: openBills,
		})
	}

	heldBills, err := s.billRepo.CountByStatusForBusinessDate(ctx, sess.StoreID, sess.BusinessDate, ordering.BillStatusHold)
	if err != nil {
		return nil, err
	}
	if heldBills > 0 {
		report.Warnings = append(report.Warnings, session.ReadinessIssue{
			Code: "HELD_BILLS", Message: "Bills are still on hold; resume and settle them", Count: heldBills,
		})
	}

	openShifts, err := s.shiftRepo.CountOpenBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if openShifts > 0 {
		report.Blocking = append(report.Blocking, session.ReadinessIssue{
			Code: "OPEN_SHIFTS", Message: "Cashier shifts are still open; close the drawers", Count: openShifts,
		})
	}

	pendingTickets, err := s.ticketRepo.CountPending(ctx, sess.StoreID)
	if err != nil {
		return nil, err
	}
	if pendingTickets > 0 {
		report.Warnings = append(report.Warnings, session.ReadinessIssue{
			Code: "PENDING_TICKETS", Message: "Kitchen tickets are still queued or failed", Count: pendingTickets,
		})
	}

	incomplete, err := s.checklistRepo.CountIncomplete(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if incomplete > 0 {
		report.Warnings = append(report.Warnings, session.ReadinessIssue{
			Code: "CHECKLIST_INCOMPLETE", Message: "EOD checklist tasks remain unfinished", Count: incomplete,
		})
	}

	return report, nil
}

// buildEODReport aggregates the closing day's figures. It reads the day
// being closed, before any rollover happens.
func (s *SessionService) buildEODReport(ctx context.Context, sess *session.StoreSession, forced bool) (*session.EODReport, error) {
	counts := map[ordering.BillStatus]int64{}
	for _, status := range []ordering.BillStatus{
		ordering.BillStatusOpen, ordering.BillStatusHold, ordering.BillStatusPaid,
		ordering.BillStatusCancelled, ordering.BillStatusVoid,
	} {
		n, err := s.billRepo.CountByStatusForBusinessDate(ctx, sess.StoreID, sess.BusinessDate, status)
		if err != nil {
			return nil, err
		}
		counts[status] = n
	}

	grossSales, err := s.billRepo.SumPaidTotalForBusinessDate(ctx, sess.StoreID, sess.BusinessDate)
	if err != nil {
		return nil, err
	}
	refundTotal, err := s.refundRepo.SumCompletedForBusinessDate(ctx, sess.StoreID, sess.BusinessDate)
	if err != nil {
		return nil, err
	}
	byMethod, err := s.paymentRepo.SumByMethodForBusinessDate(ctx, sess.StoreID, sess.BusinessDate)
	if err != nil {
		return nil, err
	}

	report := &session.EODReport{
		BusinessDate:    sess.BusinessDate,
		BillCount:       counts[ordering.BillStatusOpen] + counts[ordering.BillStatusHold] + counts[ordering.BillStatusPaid] + counts[ordering.BillStatusCancelled] + counts[ordering.BillStatusVoid],
		PaidBillCount:   counts[ordering.BillStatusPaid],
		CancelledCount:  counts[ordering.BillStatusCancelled],
		VoidCount:       counts[ordering.BillStatusVoid],
		GrossSales:      grossSales,
		RefundTotal:     refundTotal,
		PaymentTotals:   map[string]decimal.Decimal{},
		GeneratedAt:     time.Now(),
		ForcedPastIssue: forced,
	}
	for method, amount := range byMethod {
		report.PaymentTotals[string(method)] = amount
	}

	shifts, err := s.shiftRepo.FindBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	report.ShiftCount = int64(len(shifts))
	varianceTotal := decimal.Zero
	for i := range shifts {
		varianceTotal = varianceTotal.Add(shifts[i].Variance)
	}
	report.VarianceTotal = varianceTotal

	return report, nil
}

// Close ends the business day and rolls the next session over in the same
// transaction. A normal close refuses while blocking readiness issues
// remain; force overrides them with an elevated approval code.
func (s *SessionService) Close(ctx context.Context, storeID, actorID uuid.UUID, req CloseSessionRequest) (*SessionResponse, error) {
	var sess, next *session.StoreSession
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		sess, err = s.sessionRepo.FindCurrentForUpdate(ctx, storeID)
		if err != nil {
			return err
		}

		readiness, err := s.buildReadiness(ctx, sess)
		if err != nil {
			return err
		}
		if !readiness.CanClose() {
			if !req.Force {
				return shared.NewConflictError("SESSION_NOT_READY",
					fmt.Sprintf("%d blocking issues prevent closing; resolve them or force-close", len(readiness.Blocking)),
					"0 blocking issues", fmt.Sprintf("%d blocking issues", len(readiness.Blocking)))
			}
			if _, _, err := s.verifier.VerifyApprover(ctx, storeID, req.ApprovalCode, CapabilityForceClose); err != nil {
				return err
			}
		}
		forced := req.Force && !readiness.CanClose()

		report, err := s.buildEODReport(ctx, sess, forced)
		if err != nil {
			return err
		}

		s.logger.Info("end of day report generated",
			zap.String("store_id", storeID.String()),
			zap.String("business_date", sess.BusinessDate.Format("2006-01-02")),
			zap.Int64("bills", report.BillCount),
			zap.String("gross_sales", report.GrossSales.String()),
			zap.Bool("forced", forced),
		)

		if err := sess.Close(actorID, report, forced); err != nil {
			return err
		}
		if err := s.sessionRepo.Save(ctx, sess); err != nil {
			return err
		}

		// A forced close overrides the open-shift blocker; the orphaned
		// drawers become abandoned so they stay visible for supervisor
		// reconciliation instead of lingering as open rows.
		if forced {
			shifts, err := s.shiftRepo.FindBySession(ctx, sess.ID)
			if err != nil {
				return err
			}
			for i := range shifts {
				if !shifts[i].IsOpen() {
					continue
				}
				if err := shifts[i].Abandon(actorID, "session force-closed with the drawer uncounted"); err != nil {
					return err
				}
				if err := s.shiftRepo.Save(ctx, &shifts[i]); err != nil {
					return err
				}
				s.logger.Warn("open shift abandoned by forced session close",
					zap.String("shift_id", shifts[i].ID.String()),
					zap.String("cashier_id", shifts[i].CashierID.String()),
				)
			}
		}

		entry := ordering.NewBillLog(storeID, nil, ordering.ActionEODCompleted, &actorID, map[string]any{
			"session_id":    sess.ID.String(),
			"business_date": sess.BusinessDate.Format("2006-01-02"),
			"gross_sales":   report.GrossSales.String(),
			"forced":        forced,
		})
		if err := s.billLogRepo.Append(ctx, entry); err != nil {
			return err
		}

		nextDate := sess.BusinessDate.AddDate(0, 0, 1)
		if req.NextBusinessDate != "" {
			nextDate, err = time.Parse("2006-01-02", req.NextBusinessDate)
			if err != nil {
				return shared.NewValidationError("INVALID_BUSINESS_DATE", "Next business date must be yyyy-mm-dd")
			}
		}
		next, err = sess.NextSession(nextDate, actorID)
		if err != nil {
			return err
		}
		if err := s.sessionRepo.Save(ctx, next); err != nil {
			return err
		}
		return s.checklistRepo.SaveAll(ctx, session.SeedChecklist(next.ID))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sess)
	s.publishEvents(ctx, next)

	resp := ToSessionResponse(sess, time.Now())
	return &resp, nil
}

// Checklist returns the current session's EOD task list
func (s *SessionService) Checklist(ctx context.Context, storeID uuid.UUID) ([]ChecklistItemResponse, error) {
	sess, err := s.sessionRepo.FindCurrent(ctx, storeID)
	if err != nil {
		return nil, err
	}
	items, err := s.checklistRepo.FindBySession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]ChecklistItemResponse, len(items))
	for i := range items {
		responses[i] = ToChecklistItemResponse(&items[i])
	}
	return responses, nil
}

// CompleteChecklistItem marks one EOD task done
func (s *SessionService) CompleteChecklistItem(ctx context.Context, itemID, actorID uuid.UUID) (*ChecklistItemResponse, error) {
	item, err := s.checklistRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := item.Complete(actorID); err != nil {
		return nil, err
	}
	if err := s.checklistRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToChecklistItemResponse(item)
	return &resp, nil
}

// Alerts returns the store's unacknowledged alerts
func (s *SessionService) Alerts(ctx context.Context, storeID uuid.UUID) ([]AlertResponse, error) {
	alerts, err := s.alertRepo.FindUnacknowledged(ctx, storeID, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	responses := make([]AlertResponse, len(alerts))
	for i := range alerts {
		responses[i] = ToAlertResponse(&alerts[i])
	}
	return responses, nil
}

// AcknowledgeAlert marks an alert handled
func (s *SessionService) AcknowledgeAlert(ctx context.Context, alertID, actorID uuid.UUID) (*AlertResponse, error) {
	alert, err := s.alertRepo.FindByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if err := alert.Acknowledge(actorID); err != nil {
		return nil, err
	}
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return nil, err
	}
	resp := ToAlertResponse(alert)
	return &resp, nil
}

// SweepOverdue raises alerts for sessions left open past the warning age.
// The scheduler calls it hourly; alerts repeat until the session closes.
func (s *SessionService) SweepOverdue(ctx context.Context) (int, error) {
	now := time.Now()
	stale, err := s.sessionRepo.FindOpenOlderThan(ctx, now.Add(-session.WarningAge))
	if err != nil {
		return 0, err
	}

	for i := range stale {
		sess := &stale[i]
		severity := session.AlertSeverityWarning
		if sess.Health(now) == session.HealthCritical {
			severity = session.AlertSeverityCritical
		}
		message := fmt.Sprintf("Session for %s has been open %.0f hours; run end of day",
			sess.BusinessDate.Format("2006-01-02"), sess.Age(now).Hours())
		alert := session.NewSessionAlert(sess.StoreID, &sess.ID, nil, session.AlertSessionOverdue, severity, message)
		if err := s.alertRepo.Save(ctx, alert); err != nil {
			return 0, err
		}
	}

	if len(stale) > 0 {
		s.logger.Warn("overdue sessions detected", zap.Int("count", len(stale)))
	}
	return len(stale), nil
}

func (s *SessionService) publishEvents(ctx context.Context, sess *session.StoreSession) {
	if s.publisher == nil || sess == nil {
		return
	}
	for _, event := range sess.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	sess.ClearDomainEvents()
}
