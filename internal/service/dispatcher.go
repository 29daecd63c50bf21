package queue_publisher

import (
	"context"
	"time"

	"github.com/stayora/hotel-booking-backend/internal/observability"
	q "github.com/stayora/hotel-booking-backend/internal/queue"
)

// AsyncDispatcher publishes lifecycle events from a goroutine so the
// HTTP handler returns without waiting on the broker. It is called only
// after the triggering transaction has committed.
type AsyncDispatcher struct {
	// Timeout bounds a single publish attempt. Zero means 5s.
	Timeout time.Duration
}

func (d AsyncDispatcher) Dispatch(event q.Event) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := PublishLifecycle(ctx, event); err != nil {
			observability.LifecycleEvents.WithLabelValues(event.Kind, "dropped").Inc()
			return
		}
		observability.LifecycleEvents.WithLabelValues(event.Kind, "published").Inc()
	}()
}
