package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edgepos/backend/internal/domain/kitchen"
	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/shared"
)

// BillService handles bill lifecycle operations. Every mutation loads the
// bill under a row lock inside one transaction, so concurrent terminals
// serialize on the same bill.
type BillService struct {
	billRepo   ordering.BillRepository
	logRepo    ordering.BillLogRepository
	ticketRepo kitchen.KitchenTicketRepository
	txManager  shared.TransactionManager
	guard      SessionGuard
	promotions ordering.PromotionEvaluator
	verifier   ApprovalVerifier
	tables     TableReleaser
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(
	billRepo ordering.BillRepository,
	logRepo ordering.BillLogRepository,
	ticketRepo kitchen.KitchenTicketRepository,
	txManager shared.TransactionManager,
	guard SessionGuard,
	verifier ApprovalVerifier,
	tables TableReleaser,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		billRepo:   billRepo,
		logRepo:    logRepo,
		ticketRepo: ticketRepo,
		txManager:  txManager,
		guard:      guard,
		verifier:   verifier,
		tables:     tables,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetPromotionEvaluator sets the discount-rule engine
func (s *BillService) SetPromotionEvaluator(evaluator ordering.PromotionEvaluator) {
	s.promotions = evaluator
}

// Open opens a new bill on a terminal
func (s *BillService) Open(ctx context.Context, storeID, terminalID, actorID uuid.UUID, req OpenBillRequest) (*BillResponse, error) {
	if err := s.guard.EnsureTransactionsAllowed(ctx, storeID); err != nil {
		return nil, err
	}

	businessDate := time.Now().Truncate(24 * time.Hour)
	var bill *ordering.Bill

	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		billNumber, err := s.billRepo.GenerateBillNumber(ctx, req.BrandID, req.OutletCode, businessDate)
		if err != nil {
			return err
		}

		rates := ordering.ChargeRates{TaxPercent: req.TaxPercent, ServicePercent: req.ServicePercent}
		bill, err = ordering.NewBill(storeID, req.BrandID, billNumber, ordering.BillType(req.BillType), terminalID, actorID, req.GuestCount, businessDate, rates)
		if err != nil {
			return err
		}
		bill.CustomerName = req.CustomerName

		if req.TableID != nil {
			if existing, err := s.billRepo.FindOpenByTable(ctx, storeID, *req.TableID); err == nil && existing != nil {
				return shared.NewConflictError("TABLE_OCCUPIED", "Table already has an open bill",
					"", string(existing.Status))
			}
			if err := bill.AssignTable(*req.TableID); err != nil {
				return err
			}
		}
		if bill.BillType == ordering.BillTypeTakeaway {
			n, err := s.billRepo.NextQueueNumber(ctx, storeID, businessDate)
			if err != nil {
				return err
			}
			if err := bill.SetQueueNumber(n); err != nil {
				return err
			}
		}

		if err := s.billRepo.Save(ctx, bill); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(storeID, &bill.ID, ordering.ActionOpen, &actorID, map[string]any{
			"bill_number": bill.BillNumber,
			"bill_type":   string(bill.BillType),
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, bill)
	resp := ToBillResponse(bill)
	return &resp, nil
}

// GetByID retrieves a bill
func (s *BillService) GetByID(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// List retrieves bills for a store with filtering
func (s *BillService) List(ctx context.Context, storeID uuid.UUID, filter BillListFilter) ([]BillResponse, error) {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	var bills []ordering.Bill
	var err error
	switch {
	case filter.Status != "":
		bills, err = s.billRepo.FindByStatus(ctx, storeID, ordering.BillStatus(filter.Status), f)
	case filter.BusinessDate != nil:
		bills, err = s.billRepo.FindForBusinessDate(ctx, storeID, *filter.BusinessDate, f)
	default:
		bills, err = s.billRepo.FindForBusinessDate(ctx, storeID, time.Now().Truncate(24*time.Hour), f)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = ToBillResponse(&bills[i])
	}
	return responses, nil
}

// mutate runs fn against the row-locked bill inside one transaction and
// publishes the bill's events after commit.
func (s *BillService) mutate(ctx context.Context, billID uuid.UUID, fn func(ctx context.Context, bill *ordering.Bill) error) (*ordering.Bill, error) {
	var bill *ordering.Bill
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.billRepo.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if err := fn(ctx, bill); err != nil {
			return err
		}
		return s.billRepo.Save(ctx, bill)
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, bill)
	return bill, nil
}

// AddItem adds a product selection to an open bill
func (s *BillService) AddItem(ctx context.Context, billID, actorID uuid.UUID, req AddItemRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if err := s.guard.EnsureTransactionsAllowed(ctx, bill.StoreID); err != nil {
			return err
		}
		item, err := bill.AddItem(req.ProductID, req.ProductName, req.Station, req.Quantity, req.UnitPrice, toModifiers(req.Modifiers), req.Notes, actorID)
		if err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionAddItem, &actorID, map[string]any{
			"item_id":  item.ID.String(),
			"product":  req.ProductName,
			"quantity": req.Quantity,
		}))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// UpdateItemQuantity changes a line's quantity. Quantity zero removes a
// pending line outright; a sent line needs a void reason instead.
func (s *BillService) UpdateItemQuantity(ctx context.Context, billID, itemID, actorID uuid.UUID, req UpdateItemQuantityRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		item := bill.GetItem(itemID)
		if item == nil {
			return shared.ErrNotFound
		}

		var action ordering.BillAction
		details := map[string]any{"item_id": itemID.String()}
		switch {
		case req.Quantity > 0:
			if err := bill.UpdateItemQuantity(itemID, req.Quantity); err != nil {
				return err
			}
			action = ordering.ActionUpdateQty
			details["quantity"] = req.Quantity
		case item.IsPending():
			if err := bill.RemoveItem(itemID); err != nil {
				return err
			}
			action = ordering.ActionUpdateQty
			details["removed"] = true
		default:
			if req.VoidReason == "" {
				return shared.NewValidationError("REASON_REQUIRED", "Voiding a sent item requires a reason")
			}
			if err := bill.VoidItem(itemID, req.VoidReason, actorID); err != nil {
				return err
			}
			action = ordering.ActionVoidItem
			details["reason"] = req.VoidReason
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, action, &actorID, details))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// VoidItem voids a line with a reason
func (s *BillService) VoidItem(ctx context.Context, billID, itemID, actorID uuid.UUID, req VoidItemRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if err := bill.VoidItem(itemID, req.Reason, actorID); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionVoidItem, &actorID, map[string]any{
			"item_id": itemID.String(),
			"reason":  req.Reason,
		}))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// ApplyDiscount applies a manual discount amount or percentage
func (s *BillService) ApplyDiscount(ctx context.Context, billID, actorID uuid.UUID, req DiscountRequest) (*BillResponse, error) {
	if req.Amount == nil && req.Percent == nil {
		return nil, shared.NewValidationError("INVALID_DISCOUNT", "Provide a discount amount or percentage")
	}

	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		details := map[string]any{}
		if req.Percent != nil {
			if err := bill.ApplyDiscountPercent(*req.Percent); err != nil {
				return err
			}
			details["percent"] = req.Percent.String()
		} else {
			if err := bill.ApplyDiscount(*req.Amount, nil); err != nil {
				return err
			}
			details["amount"] = req.Amount.String()
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionDiscount, &actorID, details))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// ApplyPromotions runs the discount-rule engine against the bill and
// applies its verdict verbatim
func (s *BillService) ApplyPromotions(ctx context.Context, billID, actorID uuid.UUID) (*BillResponse, error) {
	if s.promotions == nil {
		return nil, shared.NewValidationError("NO_PROMOTION_ENGINE", "Promotion evaluation is not configured")
	}

	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		result, err := s.promotions.Evaluate(ctx, ordering.CartFromBill(bill))
		if err != nil {
			return err
		}
		if err := bill.ApplyDiscount(result.DiscountAmount, result.AppliedPromotionIDs); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionDiscount, &actorID, map[string]any{
			"amount":     result.DiscountAmount.String(),
			"promotions": len(result.AppliedPromotionIDs),
		}))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// Hold parks an open bill
func (s *BillService) Hold(ctx context.Context, billID, actorID uuid.UUID, req HoldBillRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if err := bill.Hold(req.Reason); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionHold, &actorID, map[string]any{"reason": req.Reason}))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// Resume reopens a held bill
func (s *BillService) Resume(ctx context.Context, billID, actorID uuid.UUID) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if err := bill.Resume(); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionResume, &actorID, nil))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// Cancel abandons a bill that never reached the kitchen. The bill and its
// items are hard-deleted; the audit log row carries the identifiers so the
// cancellation stays traceable without the row. Cancelled rows survive only
// as merge sources, which go through Merge instead.
func (s *BillService) Cancel(ctx context.Context, billID, actorID uuid.UUID, req CancelBillRequest) (*BillResponse, error) {
	var bill *ordering.Bill
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		bill, err = s.billRepo.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		if err := bill.Cancel(req.Reason); err != nil {
			return err
		}
		if err := s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, nil, ordering.ActionCancel, &actorID, map[string]any{
			"bill_id":     bill.ID.String(),
			"bill_number": bill.BillNumber,
			"reason":      req.Reason,
		})); err != nil {
			return err
		}
		if err := s.billRepo.Delete(ctx, bill.ID); err != nil {
			return err
		}
		if bill.TableID != nil {
			return s.tables.ReleaseClean(ctx, bill.StoreID, *bill.TableID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, bill)
	resp := ToBillResponse(bill)
	return &resp, nil
}

// Void voids a bill after verifying the elevated approval code. Authority
// follows the approver's role, not the requesting cashier's.
func (s *BillService) Void(ctx context.Context, billID, actorID uuid.UUID, req VoidBillRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		approverID, maskedCode, err := s.verifier.VerifyApprover(ctx, bill.StoreID, req.ApprovalCode, CapabilityVoidBill)
		if err != nil {
			return err
		}
		if err := bill.Void(req.Reason, approverID, maskedCode); err != nil {
			return err
		}
		if err := s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionVoid, &actorID, map[string]any{
			"reason":      req.Reason,
			"approved_by": approverID.String(),
		})); err != nil {
			return err
		}
		// A voided table saw service, so it comes back needing bussing.
		if bill.TableID != nil {
			return s.tables.ReleaseDirty(ctx, bill.StoreID, *bill.TableID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// SendToKitchen flips the bill's pending items to sent and creates one
// kitchen ticket per station, all in one transaction: either the flip and
// the tickets both commit, or neither does.
func (s *BillService) SendToKitchen(ctx context.Context, billID, actorID uuid.UUID) (*BillResponse, error) {
	var tickets []*kitchen.KitchenTicket
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if err := s.guard.EnsureTransactionsAllowed(ctx, bill.StoreID); err != nil {
			return err
		}

		sent, err := bill.SendPendingItems()
		if err != nil {
			return err
		}

		lines := make([]kitchen.TicketLine, len(sent))
		for i, item := range sent {
			mods := make([]string, len(item.Modifiers))
			for j, m := range item.Modifiers {
				mods[j] = m.Name
			}
			lines[i] = kitchen.TicketLine{
				BillItemID:  item.ID,
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Station:     item.Station,
				Quantity:    item.Quantity,
				Notes:       item.Notes,
				Modifiers:   mods,
			}
		}

		tickets, err = kitchen.BuildTicketBatch(bill.StoreID, bill.BrandID, bill.ID, bill.BillNumber, bill.TableID, bill.QueueNumber, lines)
		if err != nil {
			return err
		}
		if err := s.ticketRepo.SaveAll(ctx, tickets); err != nil {
			return err
		}

		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionSendKitchen, &actorID, map[string]any{
			"items":   len(sent),
			"tickets": len(tickets),
		}))
	})
	if err != nil {
		return nil, err
	}

	for _, ticket := range tickets {
		s.publishAggregate(ctx, ticket)
	}
	s.logger.Info("sent items to kitchen",
		zap.String("bill_id", billID.String()),
		zap.Int("tickets", len(tickets)),
	)

	resp := ToBillResponse(bill)
	return &resp, nil
}

// Split moves selected quantities off the bill onto a new one
func (s *BillService) Split(ctx context.Context, billID, actorID uuid.UUID, req SplitBillRequest) (*SplitBillResponse, error) {
	var source, target *ordering.Bill
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		source, err = s.billRepo.FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}

		billNumber, err := s.billRepo.GenerateBillNumber(ctx, source.BrandID, outletCodeOf(source.BillNumber), source.BusinessDate)
		if err != nil {
			return err
		}
		guestCount := req.GuestCount
		if guestCount < 1 {
			guestCount = 1
		}
		rates := ordering.ChargeRates{TaxPercent: source.TaxPercent, ServicePercent: source.ServicePercent}
		target, err = ordering.NewBill(source.StoreID, source.BrandID, billNumber, source.BillType, source.TerminalID, actorID, guestCount, source.BusinessDate, rates)
		if err != nil {
			return err
		}

		selections := make([]ordering.SplitSelection, len(req.Selections))
		for i, sel := range req.Selections {
			selections[i] = ordering.SplitSelection{ItemID: sel.ItemID, Quantity: sel.Quantity}
		}
		if err := source.SplitTo(target, selections); err != nil {
			return err
		}

		if err := s.billRepo.Save(ctx, target); err != nil {
			return err
		}
		if err := s.billRepo.Save(ctx, source); err != nil {
			return err
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(source.StoreID, &source.ID, ordering.ActionSplitBill, &actorID, map[string]any{
			"target_bill": target.BillNumber,
			"selections":  len(selections),
		}))
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, source)
	s.publishEvents(ctx, target)
	return &SplitBillResponse{Source: ToBillResponse(source), Target: ToBillResponse(target)}, nil
}

// Merge folds the source bill into the target bill
func (s *BillService) Merge(ctx context.Context, targetBillID, actorID uuid.UUID, req MergeBillsRequest) (*BillResponse, error) {
	if targetBillID == req.SourceBillID {
		return nil, shared.NewValidationError("MERGE_SELF", "A bill cannot be merged into itself")
	}

	var target *ordering.Bill
	err := s.txManager.Execute(ctx, func(ctx context.Context) error {
		var err error
		// lock in a fixed order to avoid deadlock between crossed merges
		firstID, secondID := targetBillID, req.SourceBillID
		if firstID.String() > secondID.String() {
			firstID, secondID = secondID, firstID
		}
		first, err := s.billRepo.FindByIDForUpdate(ctx, firstID)
		if err != nil {
			return err
		}
		second, err := s.billRepo.FindByIDForUpdate(ctx, secondID)
		if err != nil {
			return err
		}

		source := second
		target = first
		if first.ID == req.SourceBillID {
			source = first
			target = second
		}

		if err := target.MergeFrom(source); err != nil {
			return err
		}
		if err := s.billRepo.Save(ctx, source); err != nil {
			return err
		}
		if err := s.billRepo.Save(ctx, target); err != nil {
			return err
		}
		if err := s.logRepo.Append(ctx, ordering.NewBillLog(target.StoreID, &target.ID, ordering.ActionMergeBill, &actorID, map[string]any{
			"source_bill": source.BillNumber,
		})); err != nil {
			return err
		}
		// The merge vacates the source's table unless both bills sat at
		// the same one.
		if source.TableID != nil && (target.TableID == nil || *source.TableID != *target.TableID) {
			return s.tables.ReleaseClean(ctx, target.StoreID, *source.TableID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, target)
	resp := ToBillResponse(target)
	return &resp, nil
}

// MoveTable reseats a bill
func (s *BillService) MoveTable(ctx context.Context, billID, actorID uuid.UUID, req MoveTableRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		if existing, err := s.billRepo.FindOpenByTable(ctx, bill.StoreID, req.TableID); err == nil && existing != nil && existing.ID != bill.ID {
			return shared.NewConflictError("TABLE_OCCUPIED", "Table already has an open bill", "", string(existing.Status))
		}
		previous, err := bill.MoveTable(req.TableID)
		if err != nil {
			return err
		}
		details := map[string]any{"to_table": req.TableID.String()}
		if previous != nil {
			details["from_table"] = previous.String()
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionMoveTable, &actorID, details))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// TransferCashier hands a bill to another cashier
func (s *BillService) TransferCashier(ctx context.Context, billID, actorID uuid.UUID, req TransferCashierRequest) (*BillResponse, error) {
	bill, err := s.mutate(ctx, billID, func(ctx context.Context, bill *ordering.Bill) error {
		previous, err := bill.TransferCashier(req.CashierID)
		if err != nil {
			return err
		}
		details := map[string]any{"to_cashier": req.CashierID.String()}
		if previous != nil {
			details["from_cashier"] = previous.String()
		}
		return s.logRepo.Append(ctx, ordering.NewBillLog(bill.StoreID, &bill.ID, ordering.ActionTransfer, &actorID, details))
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill)
	return &resp, nil
}

// publishEvents drains a bill's domain events to the publisher
func (s *BillService) publishEvents(ctx context.Context, bill *ordering.Bill) {
	s.publishAggregate(ctx, bill)
}

type eventCarrier interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

func (s *BillService) publishAggregate(ctx context.Context, agg eventCarrier) {
	if s.publisher == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err),
			)
		}
	}
	agg.ClearDomainEvents()
}

// outletCodeOf extracts the outlet prefix of a bill number
func outletCodeOf(billNumber string) string {
	for i := 0; i < len(billNumber); i++ {
		if billNumber[i] == '-' {
			return billNumber[:i]
		}
	}
	return billNumber
}
