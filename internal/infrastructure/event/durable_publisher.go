package event

import (
	"context"

	"github.com/edgepos/backend/internal/domain/shared"
)

// DurablePublisher persists domain events to the outbox instead of
// dispatching them in process. The outbox processor delivers them to the
// event bus afterwards, so a crash between the write and the dispatch
// loses nothing that was persisted.
type DurablePublisher struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
}

// NewDurablePublisher creates an outbox-backed event publisher
func NewDurablePublisher(repo shared.OutboxRepository, serializer *EventSerializer) *DurablePublisher {
	return &DurablePublisher{
		repo:       repo,
		serializer: serializer,
	}
}

// Publish serializes the events and saves them as pending outbox entries
func (p *DurablePublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entries = append(entries, shared.NewOutboxEntry(event.StoreID(), event, payload))
	}
	return p.repo.Save(ctx, entries...)
}

// Ensure DurablePublisher implements EventPublisher
var _ shared.EventPublisher = (*DurablePublisher)(nil)
