// Package worker runs the periodic snapshot publisher.
package worker

import (
	"context"
	"log/slog"
	"time"

	"gastobot/internal/analytics"
	"gastobot/internal/core"
)

// SnapshotPublisher receives the periodic snapshots. Implemented by
// *amqp.Client.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snapshot core.DashboardSnapshot) error
}

// SnapshotWorker recomputes the dashboard on an interval and publishes
// it. A failed tick is logged and the next tick tries again.
type SnapshotWorker struct {
	engine    *analytics.Engine
	publisher SnapshotPublisher
	interval  time.Duration

	// now is injectable for tests.
	now func() time.Time
}

func NewSnapshotWorker(engine *analytics.Engine, publisher SnapshotPublisher, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		engine:    engine,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Snapshot worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Snapshot worker stopped", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context) {
	snapshot, err := w.engine.Snapshot(ctx, w.now())
	if err != nil {
		slog.ErrorContext(ctx, "Failed to compute snapshot", "error", err)
		return
	}

	if err := w.publisher.PublishSnapshot(ctx, snapshot); err != nil {
		slog.ErrorContext(ctx, "Failed to publish snapshot", "error", err)
		return
	}
}
