package ordering

import (
	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeTable = "Table"

// Event type constant
const EventTypeTableReleased = "TableReleased"

// TableCondition is the floor-plan disposition a table reaches once a bill
// stops occupying it.
type TableCondition string

const (
	// TableConditionClean frees the table for the next party.
	TableConditionClean TableCondition = "clean"
	// TableConditionDirty holds the table for bussing before reuse.
	TableConditionDirty TableCondition = "dirty"
)

// TableReleasedEvent asks the floor-plan context to release a table. The
// floor plan owns table rows and join-groups; a dirty release of a joined
// table dissolves its whole group.
type TableReleasedEvent struct {
	shared.BaseDomainEvent
	TableID   uuid.UUID      `json:"table_id"`
	Condition TableCondition `json:"condition"`
}

// NewTableReleasedEvent creates a new TableReleasedEvent
func NewTableReleasedEvent(storeID, tableID uuid.UUID, condition TableCondition) *TableReleasedEvent {
	return &TableReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTableReleased, AggregateTypeTable, tableID, storeID),
		TableID:         tableID,
		Condition:       condition,
	}
}

// EventType returns the event type name
func (e *TableReleasedEvent) EventType() string {
	return EventTypeTableReleased
}
