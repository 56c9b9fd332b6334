// Package app contains the application layer - service implementations,
// the event bus, and the rule engine.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log"
	"sync"

	"github.com/example/tempo/internal/ctxutil"
	"github.com/example/tempo/internal/models"
	"github.com/example/tempo/internal/ports/primary"
	"github.com/example/tempo/internal/ports/secondary"
)

// actorFrom extracts the acting user from context for event attribution.
func actorFrom(ctx context.Context) string {
	return ctxutil.ActorFromContext(ctx)
}

// EventBus is the in-process event spine. Events are persisted to the
// event log, then fanned out to subscribers on a fixed set of worker
// shards. An entity's events always hash to the same shard, so per-entity
// order is preserved while different entities run concurrently.
type EventBus struct {
	eventRepo   secondary.EventRepository
	subscribers []primary.EventSubscriber

	shards []chan models.Event
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewEventBus creates a bus with the given shard count and per-shard
// queue depth. Subscribers must be registered before Start.
func NewEventBus(eventRepo secondary.EventRepository, workerCount, queueDepth int) *EventBus {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueDepth < 1 {
		queueDepth = 1
	}
	shards := make([]chan models.Event, workerCount)
	for i := range shards {
		shards[i] = make(chan models.Event, queueDepth)
	}
	return &EventBus{
		eventRepo: eventRepo,
		shards:    shards,
	}
}

// Subscribe registers a subscriber. Must be called before Start.
func (b *EventBus) Subscribe(sub primary.EventSubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		panic("event bus: Subscribe after Start")
	}
	b.subscribers = append(b.subscribers, sub)
}

// Start launches the shard workers.
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return
	}
	b.started = true

	for _, shard := range b.shards {
		b.wg.Add(1)
		go b.run(shard)
	}
}

// Stop drains the queues and waits for in-flight subscribers to finish.
// Publish must not be called after Stop.
func (b *EventBus) Stop() {
	b.mu.Lock()
	if !b.started || b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	b.mu.Unlock()

	for _, shard := range b.shards {
		close(shard)
	}
	b.wg.Wait()
}

// Publish persists the event and enqueues it on its entity's shard. It
// returns once the event is durably queued; it never waits for rule
// evaluation and never surfaces subscriber failures.
func (b *EventBus) Publish(ctx context.Context, event models.Event) error {
	snapshot, err := json.Marshal(event.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode event snapshot: %w", err)
	}

	record := &secondary.EventRecord{
		ID:           event.ID,
		Type:         event.Type,
		EntityKind:   event.Entity.Kind,
		EntityID:     event.Entity.ID,
		ProjectID:    event.ProjectID,
		ActorID:      event.ActorID,
		SnapshotJSON: string(snapshot),
	}
	if err := b.eventRepo.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to persist event: %w", err)
	}

	shard := b.shards[shardIndex(event.Entity, len(b.shards))]
	select {
	case shard <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to enqueue event %s: %w", event.ID, ctx.Err())
	}
}

func (b *EventBus) run(shard <-chan models.Event) {
	defer b.wg.Done()
	for event := range shard {
		b.dispatch(event)
	}
}

// dispatch delivers one event to every subscriber. A subscriber failure
// is logged and isolated; remaining subscribers still see the event.
func (b *EventBus) dispatch(event models.Event) {
	for _, sub := range b.subscribers {
		if err := sub.OnEvent(context.Background(), event); err != nil {
			log.Printf("event bus: subscriber %s failed on %s %s: %v",
				sub.Name(), event.Type, event.ID, err)
		}
	}
}

func shardIndex(ref models.EntityRef, shards int) int {
	h := fnv.New32a()
	h.Write([]byte(ref.String()))
	return int(h.Sum32() % uint32(shards))
}

// Ensure EventBus implements the interface
var _ primary.EventPublisher = (*EventBus)(nil)
