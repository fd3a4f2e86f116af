package agent

import (
	"context"
	"log/slog"
	"time"
)

// Watch calls fn immediately and then every interval until ctx is done.
// Errors from fn are logged and do not stop the loop.
func Watch(ctx context.Context, interval time.Duration, log *slog.Logger, fn func(ctx context.Context) error) error {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := fn(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Error("Run failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
