package ordering

import (
	"fmt"
	"time"

	"github.com/edgepos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the status of a bill
type BillStatus string

const (
	BillStatusOpen      BillStatus = "open"
	BillStatusHold      BillStatus = "hold"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
	BillStatusVoid      BillStatus = "void"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusOpen, BillStatusHold, BillStatusPaid, BillStatusCancelled, BillStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true for permanent states
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled || s == BillStatusVoid
}

// CanTransitionTo checks if the status can transition to the target status
func (s BillStatus) CanTransitionTo(target BillStatus) bool {
	switch s {
	case BillStatusOpen:
		return target == BillStatusHold || target == BillStatusPaid ||
			target == BillStatusCancelled || target == BillStatusVoid
	case BillStatusHold:
		return target == BillStatusOpen || target == BillStatusCancelled || target == BillStatusVoid
	case BillStatusPaid, BillStatusCancelled, BillStatusVoid:
		return false // Terminal states
	}
	return false
}

// BillType represents how the order is fulfilled
type BillType string

const (
	BillTypeDineIn   BillType = "dine_in"
	BillTypeTakeaway BillType = "takeaway"
	BillTypeDelivery BillType = "delivery"
)

// IsValid checks if the type is a valid BillType
func (t BillType) IsValid() bool {
	switch t {
	case BillTypeDineIn, BillTypeTakeaway, BillTypeDelivery:
		return true
	}
	return false
}

// ChargeRates carries the tax and service-charge percentages snapshotted onto
// a bill when it opens. Totals recomputation fails closed when rates are
// missing, so the snapshot is validated at construction.
type ChargeRates struct {
	TaxPercent     decimal.Decimal
	ServicePercent decimal.Decimal
}

// Validate rejects negative or absurd rate snapshots
func (r ChargeRates) Validate() error {
	if r.TaxPercent.IsNegative() || r.ServicePercent.IsNegative() {
		return shared.NewValidationError("INVALID_RATES", "Tax and service rates cannot be negative")
	}
	if r.TaxPercent.GreaterThan(decimal.NewFromInt(100)) || r.ServicePercent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("INVALID_RATES", "Tax and service rates cannot exceed 100 percent")
	}
	return nil
}

// Bill represents one customer order as an aggregate root. All mutations
// recompute totals before returning; a persisted total is never stale.
type Bill struct {
	shared.StoreAggregateRoot
	BrandID      uuid.UUID
	BillNumber   string // {outlet}-{yyyymmdd}-{seq:04d}, scoped per brand and day
	BillType     BillType
	Status       BillStatus
	BusinessDate time.Time `gorm:"type:date"`
	TableID      *uuid.UUID
	TerminalID   uuid.UUID
	GuestCount   int
	QueueNumber  *int // takeaway only
	CustomerName string

	Items []BillItem `gorm:"foreignKey:BillID;references:ID"`

	TaxPercent     decimal.Decimal
	ServicePercent decimal.Decimal

	Subtotal          decimal.Decimal
	LineDiscountTotal decimal.Decimal
	DiscountAmount    decimal.Decimal
	DiscountPercent   decimal.Decimal
	TaxAmount         decimal.Decimal
	ServiceCharge     decimal.Decimal
	Total             decimal.Decimal

	AppliedPromotionIDs []uuid.UUID `gorm:"type:jsonb;serializer:json"`

	SplitFromBillID *uuid.UUID // set on bills spun off by a split

	HoldReason   string
	CancelReason string
	VoidReason   string
	// VoidApprovedBy identifies the elevated approver; VoidApproverCode keeps
	// only the masked tail of the approval code for audit.
	VoidApprovedBy   *uuid.UUID
	VoidApproverCode string

	ClosedBy *uuid.UUID
	ClosedAt *time.Time
}

// TableName returns the table name for GORM
func (Bill) TableName() string {
	return "bills"
}

// NewBill opens a bill for a terminal action
func NewBill(storeID, brandID uuid.UUID, billNumber string, billType BillType, terminalID, createdBy uuid.UUID, guestCount int, businessDate time.Time, rates ChargeRates) (*Bill, error) {
	if billNumber == "" {
		return nil, shared.NewValidationError("INVALID_BILL_NUMBER", "Bill number cannot be empty")
	}
	if !billType.IsValid() {
		return nil, shared.NewValidationError("INVALID_BILL_TYPE", fmt.Sprintf("Unknown bill type %q", billType))
	}
	if terminalID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TERMINAL", "Terminal ID is required")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Creator is required")
	}
	if guestCount < 1 {
		guestCount = 1
	}
	if err := rates.Validate(); err != nil {
		return nil, err
	}

	bill := &Bill{
		StoreAggregateRoot: shared.NewStoreAggregateRootWithCreator(storeID, createdBy),
		BrandID:            brandID,
		BillNumber:         billNumber,
		BillType:           billType,
		Status:             BillStatusOpen,
		BusinessDate:       businessDate,
		TerminalID:         terminalID,
		GuestCount:         guestCount,
		TaxPercent:         rates.TaxPercent,
		ServicePercent:     rates.ServicePercent,
		Items:              make([]BillItem, 0),
		Subtotal:           decimal.Zero,
		LineDiscountTotal:  decimal.Zero,
		DiscountAmount:     decimal.Zero,
		DiscountPercent:    decimal.Zero,
		TaxAmount:          decimal.Zero,
		ServiceCharge:      decimal.Zero,
		Total:              decimal.Zero,
	}

	bill.AddDomainEvent(NewBillOpenedEvent(bill))

	return bill, nil
}

// mutableState rejects operations on bills outside the open state
func (b *Bill) mutableState() error {
	if b.Status != BillStatusOpen {
		return shared.NewConflictError("BILL_NOT_OPEN", "Bill cannot be modified in its current status",
			string(BillStatusOpen), string(b.Status))
	}
	return nil
}

// AddItem adds a product selection to the bill. A selection identical to an
// existing still-pending line (same product, notes and modifiers) increments
// that line's quantity instead of creating a duplicate.
func (b *Bill) AddItem(productID uuid.UUID, productName, station string, quantity int, unitPrice decimal.Decimal, modifiers ModifierSelections, notes string, createdBy uuid.UUID) (*BillItem, error) {
	if err := b.mutableState(); err != nil {
		return nil, err
	}

	for idx := range b.Items {
		if b.Items[idx].SameLine(productID, notes, modifiers) {
			if err := b.Items[idx].SetQuantity(b.Items[idx].Quantity + quantity); err != nil {
				return nil, err
			}
			b.recomputeTotals()
			b.UpdatedAt = time.Now()
			return &b.Items[idx], nil
		}
	}

	item, err := NewBillItem(b.ID, productID, productName, station, quantity, unitPrice, modifiers, notes, createdBy)
	if err != nil {
		return nil, err
	}

	b.Items = append(b.Items, *item)
	b.recomputeTotals()
	b.UpdatedAt = time.Now()

	return &b.Items[len(b.Items)-1], nil
}

// UpdateItemQuantity changes a line's quantity. Quantity is bounded to at
// least 1; the caller maps zero to RemoveItem (pending) or VoidItem (sent).
func (b *Bill) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if err := b.mutableState(); err != nil {
		return err
	}

	item := b.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Bill item not found")
	}
	if err := item.SetQuantity(quantity); err != nil {
		return err
	}
	b.recomputeTotals()
	b.UpdatedAt = time.Now()
	return nil
}

// RemoveItem physically deletes a line. Only allowed while the line is still
// pending; anything that has reached a station must be voided instead.
func (b *Bill) RemoveItem(itemID uuid.UUID) error {
	if err := b.mutableState(); err != nil {
		return err
	}

	for idx := range b.Items {
		if b.Items[idx].ID == itemID {
			if !b.Items[idx].IsPending() {
				return shared.NewConflictError("ITEM_ALREADY_SENT", "Sent items cannot be deleted; void them instead",
					string(ItemStatusPending), string(b.Items[idx].Status))
			}
			b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
			b.recomputeTotals()
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Bill item not found")
}

// VoidItem logically deletes a line. Elevated authorization for sent items is
// checked by the application service before this is called.
func (b *Bill) VoidItem(itemID uuid.UUID, reason string, voidedBy uuid.UUID) error {
	if err := b.mutableState(); err != nil {
		return err
	}

	item := b.GetItem(itemID)
	if item == nil {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Bill item not found")
	}
	if err := item.Void(reason, voidedBy); err != nil {
		return err
	}
	b.recomputeTotals()
	b.UpdatedAt = time.Now()
	return nil
}

// ApplyDiscount records a bill-level discount amount, as returned by the
// promotion evaluator, along with the promotions that produced it.
func (b *Bill) ApplyDiscount(amount decimal.Decimal, promotionIDs []uuid.UUID) error {
	if err := b.mutableState(); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if amount.GreaterThan(b.Subtotal.Sub(b.LineDiscountTotal)) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot exceed discountable amount")
	}

	b.DiscountAmount = amount
	b.DiscountPercent = decimal.Zero
	b.AppliedPromotionIDs = promotionIDs
	b.recomputeTotals()
	b.UpdatedAt = time.Now()
	return nil
}

// ApplyDiscountPercent records a percentage discount on the bill
func (b *Bill) ApplyDiscountPercent(percent decimal.Decimal) error {
	if err := b.mutableState(); err != nil {
		return err
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Discount percent must be between 0 and 100")
	}
	b.DiscountPercent = percent
	b.recomputeTotals()
	b.UpdatedAt = time.Now()
	return nil
}

// Hold parks the bill; the table stays assigned
func (b *Bill) Hold(reason string) error {
	if !b.Status.CanTransitionTo(BillStatusHold) {
		return shared.NewConflictError("BILL_NOT_OPEN", "Only open bills can be held",
			string(BillStatusOpen), string(b.Status))
	}
	b.Status = BillStatusHold
	b.HoldReason = reason
	b.UpdatedAt = time.Now()
	return nil
}

// Resume reopens a held bill
func (b *Bill) Resume() error {
	if b.Status != BillStatusHold {
		return shared.NewConflictError("BILL_NOT_HELD", "Only held bills can be resumed",
			string(BillStatusHold), string(b.Status))
	}
	b.Status = BillStatusOpen
	b.HoldReason = ""
	b.UpdatedAt = time.Now()
	return nil
}

// HasSentItems reports whether any non-void line has reached a station
func (b *Bill) HasSentItems() bool {
	for idx := range b.Items {
		if !b.Items[idx].IsVoid && b.Items[idx].Status != ItemStatusPending {
			return true
		}
	}
	return false
}

// Cancel marks a never-sent bill cancelled. The repository hard-deletes the
// row afterwards; bills with sent items must go through Void.
func (b *Bill) Cancel(reason string) error {
	if !b.Status.CanTransitionTo(BillStatusCancelled) {
		return shared.NewConflictError("INVALID_STATE", "Bill cannot be cancelled in its current status",
			string(BillStatusOpen), string(b.Status))
	}
	if b.HasSentItems() {
		return shared.NewConflictError("BILL_HAS_SENT_ITEMS", "Bills with sent items must be voided, not cancelled",
			string(ItemStatusPending), string(ItemStatusSent))
	}
	b.Status = BillStatusCancelled
	b.CancelReason = reason
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewBillCancelledEvent(b))
	return nil
}

// Void cancels a bill whose items have already been sent. Requires an
// elevated approver; only the masked tail of the approval code is retained.
func (b *Bill) Void(reason string, approvedBy uuid.UUID, maskedApproverCode string) error {
	if !b.Status.CanTransitionTo(BillStatusVoid) {
		return shared.NewConflictError("INVALID_STATE", "Bill cannot be voided in its current status",
			string(BillStatusOpen), string(b.Status))
	}
	if reason == "" {
		return shared.NewValidationError("VOID_REASON_REQUIRED", "Void reason is required")
	}
	if approvedBy == uuid.Nil {
		return shared.NewAuthorizationError("VOID_APPROVAL_REQUIRED", "Voiding a bill requires an authorized approver")
	}
	b.Status = BillStatusVoid
	b.VoidReason = reason
	b.VoidApprovedBy = &approvedBy
	b.VoidApproverCode = maskedApproverCode
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewBillVoidedEvent(b))
	return nil
}

// SendPendingItems flips every pending non-void line to sent and returns the
// flipped lines. The flip happens before tickets are cut from the returned
// set, so a concurrently added item can never be swept into this batch.
func (b *Bill) SendPendingItems() ([]BillItem, error) {
	if err := b.mutableState(); err != nil {
		return nil, err
	}

	sent := make([]BillItem, 0)
	for idx := range b.Items {
		if b.Items[idx].IsVoid || !b.Items[idx].IsPending() {
			continue
		}
		if err := b.Items[idx].MarkSent(); err != nil {
			return nil, err
		}
		sent = append(sent, b.Items[idx])
	}
	if len(sent) == 0 {
		return nil, shared.NewValidationError("NO_PENDING_ITEMS", "No pending items to send")
	}

	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewBillItemsSentEvent(b, sent))
	return sent, nil
}

// CloseAsPaid transitions the bill to paid. The caller has already verified
// that payments cover the total; change is the surplus to hand back.
func (b *Bill) CloseAsPaid(closedBy uuid.UUID, paidTotal decimal.Decimal) (decimal.Decimal, error) {
	if !b.Status.CanTransitionTo(BillStatusPaid) {
		return decimal.Zero, shared.NewConflictError("INVALID_STATE", "Bill cannot be closed in its current status",
			string(BillStatusOpen), string(b.Status))
	}
	if paidTotal.LessThan(b.Total) {
		return decimal.Zero, shared.NewConflictError("INSUFFICIENT_PAYMENT",
			fmt.Sprintf("Payments %s do not cover total %s", paidTotal.StringFixed(2), b.Total.StringFixed(2)),
			string(BillStatusOpen), string(b.Status))
	}

	now := time.Now()
	b.Status = BillStatusPaid
	b.ClosedBy = &closedBy
	b.ClosedAt = &now
	b.UpdatedAt = now

	change := paidTotal.Sub(b.Total)
	b.AddDomainEvent(NewBillClosedEvent(b, change))
	return change, nil
}

// SplitSelection names an item and the quantity to carve off it
type SplitSelection struct {
	ItemID   uuid.UUID
	Quantity int
}

// SplitTo moves the selected item quantities onto target, a freshly created
// bill. Whole lines move as-is; partial quantities clone the line. Both bills
// stay open so either can be paid independently, and target remembers the
// originating bill.
func (b *Bill) SplitTo(target *Bill, selections []SplitSelection) error {
	if err := b.mutableState(); err != nil {
		return err
	}
	if err := target.mutableState(); err != nil {
		return err
	}
	if len(selections) == 0 {
		return shared.NewValidationError("EMPTY_SPLIT", "Select at least one item to split")
	}

	for _, sel := range selections {
		idx := b.itemIndex(sel.ItemID)
		if idx < 0 {
			return shared.NewDomainError("ITEM_NOT_FOUND", "Bill item not found")
		}
		item := &b.Items[idx]
		if item.IsVoid {
			return shared.NewConflictError("ITEM_VOID", "Voided items cannot be split", string(item.Status), "void")
		}
		if sel.Quantity < 1 || sel.Quantity > item.Quantity {
			return shared.NewValidationError("INVALID_SPLIT_QUANTITY",
				fmt.Sprintf("Split quantity must be between 1 and %d", item.Quantity))
		}

		if sel.Quantity == item.Quantity {
			moved := *item
			moved.BillID = target.ID
			moved.UpdatedAt = time.Now()
			target.Items = append(target.Items, moved)
			b.Items = append(b.Items[:idx], b.Items[idx+1:]...)
		} else {
			clone := *item
			clone.ID = uuid.New()
			clone.BillID = target.ID
			clone.Quantity = sel.Quantity
			clone.LineDiscount = decimal.Zero
			clone.recalculate()
			clone.UpdatedAt = time.Now()
			target.Items = append(target.Items, clone)

			item.Quantity -= sel.Quantity
			item.recalculate()
			item.UpdatedAt = time.Now()
		}
	}

	target.SplitFromBillID = &b.ID

	b.recomputeTotals()
	target.recomputeTotals()
	now := time.Now()
	b.UpdatedAt = now
	target.UpdatedAt = now

	b.AddDomainEvent(NewBillSplitEvent(b, target))
	return nil
}

// MergeFrom moves every non-void item from source onto this bill, preserving
// each item's kitchen status, then cancels the source. Guest counts sum.
func (b *Bill) MergeFrom(source *Bill) error {
	if err := b.mutableState(); err != nil {
		return err
	}
	if source.Status != BillStatusOpen && source.Status != BillStatusHold {
		return shared.NewConflictError("INVALID_STATE", "Source bill cannot be merged in its current status",
			string(BillStatusOpen), string(source.Status))
	}
	if source.ID == b.ID {
		return shared.NewValidationError("MERGE_SELF", "A bill cannot be merged into itself")
	}

	now := time.Now()
	for idx := range source.Items {
		if source.Items[idx].IsVoid {
			continue
		}
		moved := source.Items[idx]
		moved.BillID = b.ID
		moved.UpdatedAt = now
		b.Items = append(b.Items, moved)
	}
	source.Items = nil

	b.GuestCount += source.GuestCount

	source.Status = BillStatusCancelled
	source.CancelReason = fmt.Sprintf("Merged into %s", b.BillNumber)
	source.UpdatedAt = now

	b.recomputeTotals()
	b.UpdatedAt = now
	b.AddDomainEvent(NewBillsMergedEvent(b, source))
	return nil
}

// MoveTable reassigns the bill to another table
func (b *Bill) MoveTable(tableID uuid.UUID) (*uuid.UUID, error) {
	if b.Status != BillStatusOpen && b.Status != BillStatusHold {
		return nil, shared.NewConflictError("INVALID_STATE", "Bill cannot change tables in its current status",
			string(BillStatusOpen), string(b.Status))
	}
	if tableID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TABLE", "Table ID is required")
	}
	previous := b.TableID
	b.TableID = &tableID
	b.UpdatedAt = time.Now()
	return previous, nil
}

// TransferCashier reassigns the bill's owning cashier
func (b *Bill) TransferCashier(newCashier uuid.UUID) (*uuid.UUID, error) {
	if b.Status.IsTerminal() {
		return nil, shared.NewConflictError("INVALID_STATE", "Closed bills cannot be transferred",
			string(BillStatusOpen), string(b.Status))
	}
	if newCashier == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Cashier ID is required")
	}
	previous := b.CreatedBy
	b.CreatedBy = &newCashier
	b.UpdatedAt = time.Now()
	return previous, nil
}

// AssignTable seats the bill at a table
func (b *Bill) AssignTable(tableID uuid.UUID) error {
	if b.Status.IsTerminal() {
		return shared.NewConflictError("INVALID_STATE", "Closed bills cannot be seated",
			string(BillStatusOpen), string(b.Status))
	}
	b.TableID = &tableID
	b.UpdatedAt = time.Now()
	return nil
}

// SetQueueNumber records a takeaway queue number
func (b *Bill) SetQueueNumber(n int) error {
	if b.BillType != BillTypeTakeaway {
		return shared.NewValidationError("INVALID_BILL_TYPE", "Queue numbers apply to takeaway bills only")
	}
	b.QueueNumber = &n
	b.UpdatedAt = time.Now()
	return nil
}

// recomputeTotals derives every stored total from the item rows. It is the
// single place the money math lives; every mutator calls it.
//
//	total = (subtotal - line_discounts - bill_discount) * (1 + tax) * (1 + service)
func (b *Bill) recomputeTotals() {
	subtotal := decimal.Zero
	lineDiscounts := decimal.Zero
	for idx := range b.Items {
		if b.Items[idx].IsVoid {
			continue
		}
		subtotal = subtotal.Add(b.Items[idx].Total)
		lineDiscounts = lineDiscounts.Add(b.Items[idx].LineDiscount)
	}
	b.Subtotal = subtotal
	b.LineDiscountTotal = lineDiscounts

	discountable := subtotal.Sub(lineDiscounts)
	if b.DiscountPercent.IsPositive() {
		b.DiscountAmount = discountable.Mul(b.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
	}
	if b.DiscountAmount.GreaterThan(discountable) {
		b.DiscountAmount = discountable
	}

	afterDiscount := discountable.Sub(b.DiscountAmount)
	hundred := decimal.NewFromInt(100)
	b.TaxAmount = afterDiscount.Mul(b.TaxPercent).Div(hundred).Round(2)
	b.ServiceCharge = afterDiscount.Add(b.TaxAmount).Mul(b.ServicePercent).Div(hundred).Round(2)
	b.Total = afterDiscount.Add(b.TaxAmount).Add(b.ServiceCharge)
}

// RecomputeTotals re-derives totals from scratch, for callers that load the
// aggregate from storage and need to verify the stored values.
func (b *Bill) RecomputeTotals() {
	b.recomputeTotals()
}

func (b *Bill) itemIndex(itemID uuid.UUID) int {
	for idx := range b.Items {
		if b.Items[idx].ID == itemID {
			return idx
		}
	}
	return -1
}

// GetItem returns an item by its ID
func (b *Bill) GetItem(itemID uuid.UUID) *BillItem {
	if idx := b.itemIndex(itemID); idx >= 0 {
		return &b.Items[idx]
	}
	return nil
}

// ActiveItems returns the non-void lines
func (b *Bill) ActiveItems() []BillItem {
	items := make([]BillItem, 0, len(b.Items))
	for idx := range b.Items {
		if !b.Items[idx].IsVoid {
			items = append(items, b.Items[idx])
		}
	}
	return items
}

// PendingItems returns the non-void lines that have not been sent
func (b *Bill) PendingItems() []BillItem {
	items := make([]BillItem, 0)
	for idx := range b.Items {
		if !b.Items[idx].IsVoid && b.Items[idx].IsPending() {
			items = append(items, b.Items[idx])
		}
	}
	return items
}

// IsEmpty reports whether the bill has no active lines
func (b *Bill) IsEmpty() bool {
	return len(b.ActiveItems()) == 0
}

// IsOpen returns true if the bill is open
func (b *Bill) IsOpen() bool {
	return b.Status == BillStatusOpen
}

// IsPaid returns true if the bill is paid
func (b *Bill) IsPaid() bool {
	return b.Status == BillStatusPaid
}

// IsHeld returns true if the bill is on hold
func (b *Bill) IsHeld() bool {
	return b.Status == BillStatusHold
}
