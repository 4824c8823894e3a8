package outbox

import (
	"context"
	"log/slog"
)

// LogProducer writes events to the log. It drains the outbox when no broker
// is configured.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic, key string, payload []byte, _ map[string]string) error {
	if p.Logger != nil {
		p.Logger.LogAttrs(ctx, slog.LevelDebug, "event published",
			slog.String("topic", topic),
			slog.String("key", key),
			slog.Int("bytes", len(payload)),
		)
	}
	return nil
}

var _ Producer = LogProducer{}
