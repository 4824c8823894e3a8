package middleware

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/pkg/apperror"
)

// Logging writes one line per command. Rule violations are warnings, other
// failures are errors.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			started := time.Now()
			res, err := next.Dispatch(ctx, cmd)
			attrs := []any{"command", cmd.Key(), "duration", time.Since(started)}
			switch {
			case err == nil:
				logger.DebugContext(ctx, "command handled", attrs...)
			case isRuleViolation(err):
				logger.WarnContext(ctx, "command rejected", append(attrs, "error", err)...)
			default:
				logger.ErrorContext(ctx, "command failed", append(attrs, "error", err)...)
			}
			return res, err
		})
	}
}

func isRuleViolation(err error) bool {
	_, ok := apperror.As(err)
	return ok
}
