package kitchen

import (
	"time"

	"github.com/google/uuid"
)

// KitchenTicketLog is one immutable row per ticket status transition. Rows
// are append-only; stuck tickets are diagnosed from this trail.
type KitchenTicketLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketID     uuid.UUID `gorm:"type:uuid;index"`
	OldStatus    TicketStatus
	NewStatus    TicketStatus
	Actor        string // user id or "print-agent"
	PrinterName  string
	ErrorMessage string
	DurationMs   *int64 // claim-to-outcome duration, outcome rows only
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (KitchenTicketLog) TableName() string {
	return "kitchen_ticket_logs"
}

// NewKitchenTicketLog records one transition
func NewKitchenTicketLog(ticketID uuid.UUID, oldStatus, newStatus TicketStatus, actor, printerName, errorMessage string, durationMs *int64) *KitchenTicketLog {
	return &KitchenTicketLog{
		ID:           uuid.New(),
		TicketID:     ticketID,
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
		Actor:        actor,
		PrinterName:  printerName,
		ErrorMessage: errorMessage,
		DurationMs:   durationMs,
		CreatedAt:    time.Now(),
	}
}
