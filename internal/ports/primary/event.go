package primary

import (
	"context"

	"github.com/example/tempo/internal/models"
)

// EventPublisher defines the primary port for publishing lifecycle events.
// Callers publish after the mutation commits; Publish returns once the
// event has been durably queued on its entity stream, never because rule
// evaluation finished or failed.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

// EventSubscriber is a bus subscriber. Subscribers run independently; one
// subscriber's failure does not affect the publisher or other subscribers.
type EventSubscriber interface {
	// Name identifies the subscriber in logs.
	Name() string

	// OnEvent processes one event. Events for the same entity arrive in
	// publish order; events for different entities may run concurrently.
	OnEvent(ctx context.Context, event models.Event) error
}
