package event

import (
	"context"

	"github.com/google/uuid"

	"github.com/edgepos/backend/internal/domain/ordering"
	"github.com/edgepos/backend/internal/domain/shared"
)

// EventTableReleaser forwards table releases to the floor-plan context as
// integration events. The floor plan applies the status change (and any
// join-group dissolution) when it consumes the event.
type EventTableReleaser struct {
	publisher shared.EventPublisher
}

// NewEventTableReleaser creates a new EventTableReleaser
func NewEventTableReleaser(publisher shared.EventPublisher) *EventTableReleaser {
	return &EventTableReleaser{publisher: publisher}
}

// ReleaseClean requests the table be freed for the next party
func (r *EventTableReleaser) ReleaseClean(ctx context.Context, storeID, tableID uuid.UUID) error {
	return r.publisher.Publish(ctx, ordering.NewTableReleasedEvent(storeID, tableID, ordering.TableConditionClean))
}

// ReleaseDirty requests the table be held for bussing before reuse
func (r *EventTableReleaser) ReleaseDirty(ctx context.Context, storeID, tableID uuid.UUID) error {
	return r.publisher.Publish(ctx, ordering.NewTableReleasedEvent(storeID, tableID, ordering.TableConditionDirty))
}
