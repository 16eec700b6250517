package metadata

import (
	"context"
	"time"

	"lendex/core"
	"lendex/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Warmer keeps the deal metadata cache primed
type Warmer struct {
	worker.BaseJob
	schedule string
	metadata core.MetadataService
}

// New new metadata warm job
func New(schedule string, metadata core.MetadataService) *Warmer {
	if schedule == "" {
		schedule = "@every 5m"
	}

	return &Warmer{
		schedule: schedule,
		metadata: metadata,
	}
}

// Run run the cron job until ctx is done
func (w *Warmer) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "metadata")
	ctx = logger.WithContext(ctx, log)

	w.Cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := w.Cron.AddFunc(w.schedule, w.BaseJob.Run); err != nil {
		return err
	}

	w.OnWork = func() error {
		return w.warm(ctx)
	}

	_ = w.Start()
	w.BaseJob.Run()

	<-ctx.Done()
	_ = w.Stop()
	return ctx.Err()
}

func (w *Warmer) warm(ctx context.Context) error {
	deals, err := w.metadata.List(ctx)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warnln("metadata.List")
		return err
	}

	logger.FromContext(ctx).Debugf("warmed %d deals", len(deals))
	return nil
}
