package ordering

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edgepos/backend/internal/domain/ordering"
)

// ==================== Bill DTOs ====================

// OpenBillRequest opens a new bill on a terminal
type OpenBillRequest struct {
	BrandID        uuid.UUID       `json:"brand_id" binding:"required"`
	OutletCode     string          `json:"outlet_code" binding:"required,min=1,max=10"`
	BillType       string          `json:"bill_type" binding:"required,oneof=dine_in takeaway delivery"`
	TableID        *uuid.UUID      `json:"table_id"`
	GuestCount     int             `json:"guest_count"`
	CustomerName   string          `json:"customer_name"`
	TaxPercent     decimal.Decimal `json:"tax_percent"`
	ServicePercent decimal.Decimal `json:"service_percent"`
}

// AddItemRequest adds one product selection to a bill
type AddItemRequest struct {
	ProductID   uuid.UUID              `json:"product_id" binding:"required"`
	ProductName string                 `json:"product_name" binding:"required,min=1,max=200"`
	Station     string                 `json:"station" binding:"required,min=1,max=50"`
	Quantity    int                    `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal        `json:"unit_price" binding:"required"`
	Notes       string                 `json:"notes"`
	Modifiers   []ModifierSelectionDTO `json:"modifiers"`
}

// ModifierSelectionDTO is one chosen modifier on an item
type ModifierSelectionDTO struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
}

// UpdateItemQuantityRequest changes a line's quantity. Quantity zero removes
// a pending line; for a sent line it requires a void reason.
type UpdateItemQuantityRequest struct {
	Quantity   int    `json:"quantity" binding:"min=0"`
	VoidReason string `json:"void_reason"`
}

// VoidItemRequest voids one line with a reason
type VoidItemRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=200"`
}

// DiscountRequest applies a manual discount to a bill
type DiscountRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	Percent *decimal.Decimal `json:"percent"`
}

// HoldBillRequest parks a bill
type HoldBillRequest struct {
	Reason string `json:"reason"`
}

// CancelBillRequest abandons a never-sent bill
type CancelBillRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=200"`
}

// VoidBillRequest voids a bill with elevated approval
type VoidBillRequest struct {
	Reason       string `json:"reason" binding:"required,min=1,max=200"`
	ApprovalCode string `json:"approval_code" binding:"required"`
}

// SplitBillRequest moves selected quantities onto a new bill
type SplitBillRequest struct {
	Selections []SplitSelectionDTO `json:"selections" binding:"required,min=1"`
	GuestCount int                 `json:"guest_count"`
}

// SplitSelectionDTO selects a quantity of one line to split off
type SplitSelectionDTO struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

// MergeBillsRequest merges a source bill into the target
type MergeBillsRequest struct {
	SourceBillID uuid.UUID `json:"source_bill_id" binding:"required"`
}

// MoveTableRequest reseats a bill
type MoveTableRequest struct {
	TableID uuid.UUID `json:"table_id" binding:"required"`
}

// TransferCashierRequest hands a bill to another cashier
type TransferCashierRequest struct {
	CashierID uuid.UUID `json:"cashier_id" binding:"required"`
}

// BillListFilter filters bill listings
type BillListFilter struct {
	Status       string     `form:"status"`
	BusinessDate *time.Time `form:"business_date" time_format:"2006-01-02"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// ==================== Responses ====================

// BillItemResponse is one bill line in API responses
type BillItemResponse struct {
	ID            uuid.UUID              `json:"id"`
	ProductID     uuid.UUID              `json:"product_id"`
	ProductName   string                 `json:"product_name"`
	Station       string                 `json:"station"`
	Quantity      int                    `json:"quantity"`
	UnitPrice     decimal.Decimal        `json:"unit_price"`
	ModifierPrice decimal.Decimal        `json:"modifier_price"`
	LineDiscount  decimal.Decimal        `json:"line_discount"`
	Total         decimal.Decimal        `json:"total"`
	Notes         string                 `json:"notes,omitempty"`
	Modifiers     []ModifierSelectionDTO `json:"modifiers,omitempty"`
	Status        string                 `json:"status"`
	IsVoid        bool                   `json:"is_void"`
	VoidReason    string                 `json:"void_reason,omitempty"`
}

// BillResponse is the full bill in API responses
type BillResponse struct {
	ID              uuid.UUID          `json:"id"`
	BillNumber      string             `json:"bill_number"`
	BillType        string             `json:"bill_type"`
	Status          string             `json:"status"`
	BusinessDate    string             `json:"business_date"`
	TableID         *uuid.UUID         `json:"table_id,omitempty"`
	TerminalID      uuid.UUID          `json:"terminal_id"`
	CashierID       *uuid.UUID         `json:"cashier_id,omitempty"`
	GuestCount      int                `json:"guest_count"`
	QueueNumber     *int               `json:"queue_number,omitempty"`
	CustomerName    string             `json:"customer_name,omitempty"`
	Items           []BillItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	ServiceCharge   decimal.Decimal    `json:"service_charge"`
	Total           decimal.Decimal    `json:"total"`
	SplitFromBillID *uuid.UUID         `json:"split_from_bill_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SplitBillResponse returns both sides of a split
type SplitBillResponse struct {
	Source BillResponse `json:"source"`
	Target BillResponse `json:"target"`
}

// ToBillItemResponse converts a domain bill item to a response
func ToBillItemResponse(item *ordering.BillItem) BillItemResponse {
	mods := make([]ModifierSelectionDTO, len(item.Modifiers))
	for i, m := range item.Modifiers {
		mods[i] = ModifierSelectionDTO{Name: m.Name, Price: m.Price}
	}
	return BillItemResponse{
		ID:            item.ID,
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		Station:       item.Station,
		Quantity:      item.Quantity,
		UnitPrice:     item.UnitPrice,
		ModifierPrice: item.ModifierPrice,
		LineDiscount:  item.LineDiscount,
		Total:         item.Total,
		Notes:         item.Notes,
		Modifiers:     mods,
		Status:        string(item.Status),
		IsVoid:        item.IsVoid,
		VoidReason:    item.VoidReason,
	}
}

// ToBillResponse converts a domain bill to a response
func ToBillResponse(bill *ordering.Bill) BillResponse {
	items := make([]BillItemResponse, len(bill.Items))
	for i := range bill.Items {
		items[i] = ToBillItemResponse(&bill.Items[i])
	}
	return BillResponse{
		ID:              bill.ID,
		BillNumber:      bill.BillNumber,
		BillType:        string(bill.BillType),
		Status:          string(bill.Status),
		BusinessDate:    bill.BusinessDate.Format("2006-01-02"),
		TableID:         bill.TableID,
		TerminalID:      bill.TerminalID,
		CashierID:       bill.CreatedBy,
		GuestCount:      bill.GuestCount,
		QueueNumber:     bill.QueueNumber,
		CustomerName:    bill.CustomerName,
		Items:           items,
		Subtotal:        bill.Subtotal,
		DiscountAmount:  bill.DiscountAmount,
		TaxAmount:       bill.TaxAmount,
		ServiceCharge:   bill.ServiceCharge,
		Total:           bill.Total,
		SplitFromBillID: bill.SplitFromBillID,
		CreatedAt:       bill.CreatedAt,
		UpdatedAt:       bill.UpdatedAt,
	}
}

// toModifiers converts modifier DTOs to the domain value
func toModifiers(dtos []ModifierSelectionDTO) ordering.ModifierSelections {
	if len(dtos) == 0 {
		return nil
	}
	mods := make(ordering.ModifierSelections, len(dtos))
	for i, d := range dtos {
		mods[i] = ordering.ModifierSelection{Name: d.Name, Price: d.Price}
	}
	return mods
}
