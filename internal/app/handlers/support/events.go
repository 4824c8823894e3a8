package support

import (
	"context"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/outbox"
	"staybook/internal/domain/shared/events"
)

// EventSource is an aggregate with recorded domain events.
type EventSource interface {
	PullEvents() []events.DomainEvent
}

// RecordEvents drains sources into the outbox of the current unit of work.
func RecordEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, sources ...EventSource) error {
	for _, src := range sources {
		if src == nil {
			continue
		}
		if err := outbox.RecordDomainEvents(ctx, box, encoder, src.PullEvents()); err != nil {
			return err
		}
	}
	return nil
}

// Now reads clock, defaulting to the wall clock in UTC.
func Now(clock func() time.Time) time.Time {
	if clock != nil {
		return clock().UTC()
	}
	return time.Now().UTC()
}

// NewID reads gen, defaulting to a random uuid.
func NewID(gen func() string) string {
	if gen != nil {
		return gen()
	}
	return uuid.NewString()
}
