package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/clubdesk/clubdesk/internal/api"
	"github.com/clubdesk/clubdesk/internal/cache"
	"github.com/clubdesk/clubdesk/internal/form"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// Lister fetches the full collection.
type Lister interface {
	List(ctx context.Context) ([]api.Resource, error)
}

var (
	_ Lister              = (*api.Client)(nil)
	_ form.ResourceClient = (*api.Client)(nil)
	_ form.ResourceClient = (*cachedClient)(nil)
)

// StartPoller launches a background goroutine that refreshes the store's
// list. It polls every interval, backs off while the API keeps failing and
// refreshes immediately when the store is invalidated. It returns immediately.
func StartPoller(ctx context.Context, store *cache.Store, client Lister, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "poller", "resource", store.Resource())

	go func() {
		for {
			failures := refresh(ctx, store, client, logger)

			wait := interval
			if failures > 0 {
				wait = calculateBackoff(failures, interval)
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-store.Changed():
				timer.Stop()
				logger.Debug("list invalidated, refreshing")
			case <-timer.C:
			}
		}
	}()
}

// refresh runs one list fetch and returns the consecutive failure count.
func refresh(ctx context.Context, store *cache.Store, client Lister, logger *slog.Logger) int {
	items, err := client.List(ctx)
	if ctx.Err() != nil {
		return 0
	}
	store.UpdateList(items, err)
	failures := store.Snapshot().ConsecutiveFailures
	if err != nil {
		logger.Warn("list poll failed", "error", err, "failures", failures)
	}
	return failures
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures < 0 {
		failures = 0
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return min(wait, maxBackoff)
}
