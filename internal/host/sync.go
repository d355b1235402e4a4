package host

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"openplay-app/internal/model"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const syncConcurrency = 4

func (h *Host) startRetryJob(interval time.Duration) error {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(h.clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(h.retryPending),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule sync retries: %w", err)
	}
	scheduler.Start()
	h.scheduler = scheduler
	return nil
}

func (h *Host) retryPending() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()
	synced, err := h.RetryPendingSyncs(ctx)
	if err != nil {
		h.log.Warn("retry pending syncs", zap.Int("synced", synced), zap.Error(err))
		return
	}
	if synced > 0 {
		h.log.Info("pending syncs uploaded", zap.Int("synced", synced))
	}
}

// RetryPendingSyncs uploads queued summaries concurrently. Successful items
// leave the queue; failed ones stay with their attempt count bumped.
func (h *Host) RetryPendingSyncs(ctx context.Context) (int, error) {
	if h.syncer == nil {
		return 0, nil
	}
	h.retryMu.Lock()
	defer h.retryMu.Unlock()

	items := h.store.ListPendingSyncs()
	var synced atomic.Int32
	var g errgroup.Group
	g.SetLimit(syncConcurrency)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return h.retryOne(ctx, item, &synced)
		})
	}
	err := g.Wait()
	return int(synced.Load()), err
}

func (h *Host) retryOne(ctx context.Context, item model.PendingSync, synced *atomic.Int32) error {
	if _, err := h.syncer.Sync(ctx, item.Summary); err != nil {
		h.metrics.syncFailures.Inc()
		item.Attempts++
		item.LastError = err.Error()
		if uerr := h.store.UpdatePendingSync(item); uerr != nil {
			return errors.Join(err, uerr)
		}
		return nil
	}
	synced.Add(1)
	return h.store.RemovePendingSync(item.ID)
}
