package worker

import (
	"context"
	"time"

	"fxconvert/internal/application"
	"fxconvert/internal/domain"
	"fxconvert/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

var _ application.Worker = (*SnapshotWorker)(nil)

// SnapshotWorker periodically fetches the latest rate of each watched pair,
// archives it and warms the shared rate cache.
type SnapshotWorker struct {
	Provider application.RateProvider
	Archive  application.RateArchive
	Cache    application.RateCache
	Pairs    []domain.Pair
	Metrics  *metrics.Metrics

	PollEvery time.Duration
	Timeout   time.Duration
	Now       func() time.Time
	Log       *zap.Logger
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.PollEvery <= 0 {
		w.PollEvery = time.Minute
	}
	if w.Timeout <= 0 {
		w.Timeout = 5 * time.Second
	}
	if w.Now == nil {
		w.Now = func() time.Time { return time.Now().UTC() }
	}

	t := time.NewTicker(w.PollEvery)
	defer t.Stop()

	log.Info("snapshot_worker_started", zap.Duration("poll_every", w.PollEvery), zap.Int("pairs", len(w.Pairs)))
	w.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("snapshot_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *SnapshotWorker) tick(ctx context.Context, log *zap.Logger) {
	for _, p := range w.Pairs {
		if ctx.Err() != nil {
			return
		}
		err := w.processOne(ctx, log, p)
		w.Metrics.Snapshot(err)
	}
}

func (w *SnapshotWorker) processOne(ctx context.Context, log *zap.Logger, pair domain.Pair) error {
	c, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	rate, err := w.Provider.Latest(c, pair)
	if err == nil && rate <= 0 {
		err = domain.ErrInvalidRate
	}
	if err != nil {
		log.Warn("snapshot_failed", zap.String("pair", pair.String()), zap.Error(err))
		return err
	}

	if w.Archive != nil {
		if err := w.Archive.Append(c, domain.RateSnapshot{
			Pair:       pair,
			Rate:       rate,
			ObservedAt: w.Now(),
			Origin:     "worker",
		}); err != nil {
			log.Warn("snapshot_archive_failed", zap.String("pair", pair.String()), zap.Error(err))
			return err
		}
	}
	if w.Cache != nil {
		_ = w.Cache.Set(c, pair.Key(), rate)
		_ = w.Cache.Set(c, pair.Reversed().Key(), 1/rate)
	}

	log.Info("snapshot_done", zap.String("pair", pair.String()), zap.Float64("rate", rate))
	return nil
}
