package worker

import (
	"context"
	"log/slog"
	"time"

	"pricing-service/internal/event"
)

// InvalidationSink is the outbound channel invalidation events go to.
// Implemented by event.InvalidationPublisher.
type InvalidationSink interface {
	PublishPricingInvalidated(ctx context.Context, ev event.PricingInvalidatedEvent) error
}

// InvalidationDispatcher hands pricing invalidation events to the worker
// pool. Publish failures are logged, never surfaced to the pricing write:
// the notification is best-effort and the write itself stays retryable.
type InvalidationDispatcher struct {
	pool *WorkingPool
	sink InvalidationSink
}

func NewInvalidationDispatcher(pool *WorkingPool, sink InvalidationSink) *InvalidationDispatcher {
	return &InvalidationDispatcher{pool: pool, sink: sink}
}

// Dispatch queues one event for asynchronous publishing.
func (d *InvalidationDispatcher) Dispatch(ev event.PricingInvalidatedEvent) {
	if d == nil || d.sink == nil {
		slog.Warn("invalidation dispatch skipped, no event sink configured",
			"level", ev.Level, "node_id", ev.NodeID)
		return
	}
	d.pool.Submit(func(ctx context.Context) error {
		publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return d.sink.PublishPricingInvalidated(publishCtx, ev)
	})
}
