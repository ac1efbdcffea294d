package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const defaultRetries = 5

var retryStep = 200 * time.Millisecond

// waitFor calls ping up to attempts times with a linearly growing pause,
// giving up early when ctx ends.
func waitFor(ctx context.Context, logger *slog.Logger, backend string, attempts int, ping func(context.Context) error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx); err == nil {
			logger.InfoContext(ctx, "Storage reachable", slog.String("backend", backend), slog.Int("attempt", i))
			return nil
		}
		if i == attempts {
			break
		}

		pause := time.Duration(i) * retryStep
		logger.WarnContext(ctx, "Storage ping failed",
			slog.String("backend", backend),
			slog.Int("attempt", i),
			slog.Duration("retry_in", pause),
			slog.Any("error", err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", backend, ctx.Err())
		case <-time.After(pause):
		}
	}
	return fmt.Errorf("%s unreachable after %d attempts: %w", backend, attempts, err)
}
