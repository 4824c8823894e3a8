package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/outbox"
)

// Discarder is implemented by outboxes that stage records until Flush.
type Discarder interface {
	Discard(ctx context.Context) error
}

// Scoper is implemented by outboxes that keep a separate staging buffer per
// command. Add, Flush and Discard called with the returned context only touch
// that buffer.
type Scoper interface {
	Scope(ctx context.Context) context.Context
}

// OutboxFlush publishes staged records after a successful command and drops
// them after a failed one.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if s, ok := box.(Scoper); ok {
				ctx = s.Scope(ctx)
			}
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(Discarder); ok {
					_ = d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
