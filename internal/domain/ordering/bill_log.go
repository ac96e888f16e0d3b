package ordering

import (
	"time"

	"github.com/google/uuid"
)

// BillAction identifies an audited bill activity
type BillAction string

const (
	ActionOpen           BillAction = "open"
	ActionAddItem        BillAction = "add_item"
	ActionVoidItem       BillAction = "void_item"
	ActionUpdateQty      BillAction = "update_qty"
	ActionHold           BillAction = "hold"
	ActionResume         BillAction = "resume"
	ActionSendKitchen    BillAction = "send_kitchen"
	ActionPayment        BillAction = "payment"
	ActionClose          BillAction = "close"
	ActionCancel         BillAction = "cancel"
	ActionVoid           BillAction = "void"
	ActionDiscount       BillAction = "discount"
	ActionSplitBill      BillAction = "split_bill"
	ActionMergeBill      BillAction = "merge_bill"
	ActionMoveTable      BillAction = "move_table"
	ActionTransfer       BillAction = "transfer_cashier"
	ActionReprintReceipt BillAction = "reprint_receipt"
	ActionReprintKitchen BillAction = "reprint_kitchen"
	ActionEODCompleted   BillAction = "eod_completed"
)

// BillLog is an append-only audit row for bill activities
type BillLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BillID    *uuid.UUID `gorm:"type:uuid;index"` // nil for store-level entries like EOD
	StoreID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action    BillAction `gorm:"type:varchar(30);not null"`
	Details   map[string]any `gorm:"type:jsonb;serializer:json"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (BillLog) TableName() string {
	return "bill_logs"
}

// NewBillLog creates an audit entry for a bill action
func NewBillLog(storeID uuid.UUID, billID *uuid.UUID, action BillAction, userID *uuid.UUID, details map[string]any) *BillLog {
	return &BillLog{
		ID:        uuid.New(),
		BillID:    billID,
		StoreID:   storeID,
		Action:    action,
		Details:   details,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
}
