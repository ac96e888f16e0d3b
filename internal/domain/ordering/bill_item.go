package ordering

import (
	"time"

	"github.com/edgepos/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the kitchen lifecycle of a bill line
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusSent      ItemStatus = "sent"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
)

// IsValid checks if the status is a valid ItemStatus
func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusSent, ItemStatusPreparing, ItemStatusReady, ItemStatusServed:
		return true
	}
	return false
}

// String returns the string representation of ItemStatus
func (s ItemStatus) String() string {
	return string(s)
}

// ModifierSelection is a resolved modifier snapshot. Name and price are
// copied at order time so later catalog changes never corrupt history.
type ModifierSelection struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ModifierSelections is the JSON column type for a line's modifiers
type ModifierSelections []ModifierSelection

// Equal compares two modifier sets by name and price, order sensitive,
// which is how the terminal submits them.
func (m ModifierSelections) Equal(other ModifierSelections) bool {
	if len(m) != len(other) {
		return false
	}
	for i := range m {
		if m[i].Name != other[i].Name || !m[i].Price.Equal(other[i].Price) {
			return false
		}
	}
	return true
}

// TotalPrice returns the summed price adjustment of all selections
func (m ModifierSelections) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, sel := range m {
		total = total.Add(sel.Price)
	}
	return total
}

// BillItem represents one ordered line on a bill. Unit price and modifiers
// are snapshots: later price changes never affect existing items.
type BillItem struct {
	ID            uuid.UUID
	BillID        uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	Station       string // printer station target snapshot from the product
	Quantity      int
	UnitPrice     decimal.Decimal
	ModifierPrice decimal.Decimal
	LineDiscount  decimal.Decimal
	Total         decimal.Decimal // (UnitPrice + ModifierPrice) * Quantity
	Notes         string
	Modifiers     ModifierSelections `gorm:"type:jsonb;serializer:json"`
	Status        ItemStatus
	IsVoid        bool
	VoidReason    string
	VoidBy        *uuid.UUID
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (BillItem) TableName() string {
	return "bill_items"
}

// NewBillItem creates a new bill line with a price snapshot
func NewBillItem(billID, productID uuid.UUID, productName, station string, quantity int, unitPrice decimal.Decimal, modifiers ModifierSelections, notes string, createdBy uuid.UUID) (*BillItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if createdBy == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ACTOR", "Creator is required")
	}

	now := time.Now()
	item := &BillItem{
		ID:            uuid.New(),
		BillID:        billID,
		ProductID:     productID,
		ProductName:   productName,
		Station:       station,
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		ModifierPrice: modifiers.TotalPrice(),
		LineDiscount:  decimal.Zero,
		Notes:         notes,
		Modifiers:     modifiers,
		Status:        ItemStatusPending,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.recalculate()
	return item, nil
}

// recalculate refreshes the line total from quantity and prices
func (i *BillItem) recalculate() {
	unit := i.UnitPrice.Add(i.ModifierPrice)
	i.Total = unit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SetQuantity updates the line quantity. Quantity is bounded to at least 1;
// callers map zero to the void flow once a line has left pending.
func (i *BillItem) SetQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if i.IsVoid {
		return shared.NewConflictError("ITEM_VOID", "Cannot change quantity of a voided item", string(ItemStatusPending), "void")
	}
	i.Quantity = quantity
	i.recalculate()
	i.UpdatedAt = time.Now()
	return nil
}

// ApplyLineDiscount records a promotion discount against this line
func (i *BillItem) ApplyLineDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return shared.NewValidationError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}
	if discount.GreaterThan(i.Total) {
		return shared.NewValidationError("INVALID_DISCOUNT", "Line discount cannot exceed line total")
	}
	i.LineDiscount = discount
	i.UpdatedAt = time.Now()
	return nil
}

// MarkSent flips the line from pending to sent
func (i *BillItem) MarkSent() error {
	if i.IsVoid {
		return shared.NewConflictError("ITEM_VOID", "Cannot send a voided item", string(ItemStatusPending), "void")
	}
	if i.Status != ItemStatusPending {
		return shared.NewConflictError("ITEM_NOT_PENDING", "Item has already been sent", string(ItemStatusPending), string(i.Status))
	}
	i.Status = ItemStatusSent
	i.UpdatedAt = time.Now()
	return nil
}

// Void marks the line as logically deleted. Authorization for sent items is
// the caller's concern; the aggregate only records the outcome.
func (i *BillItem) Void(reason string, voidedBy uuid.UUID) error {
	if i.IsVoid {
		return shared.NewConflictError("ITEM_VOID", "Item is already voided", string(i.Status), "void")
	}
	if reason == "" {
		return shared.NewValidationError("VOID_REASON_REQUIRED", "Void reason is required")
	}
	i.IsVoid = true
	i.VoidReason = reason
	i.VoidBy = &voidedBy
	i.UpdatedAt = time.Now()
	return nil
}

// IsPending returns true if the line has never been sent to a station
func (i *BillItem) IsPending() bool {
	return i.Status == ItemStatusPending
}

// Active returns true if the line counts towards the bill totals
func (i *BillItem) Active() bool {
	return !i.IsVoid
}

// SameLine reports whether a new selection should merge into this line:
// identical product, notes and modifier set, still pending and not void.
func (i *BillItem) SameLine(productID uuid.UUID, notes string, modifiers ModifierSelections) bool {
	return !i.IsVoid &&
		i.Status == ItemStatusPending &&
		i.ProductID == productID &&
		i.Notes == notes &&
		i.Modifiers.Equal(modifiers)
}
