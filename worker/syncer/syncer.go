package syncer

import (
	"context"
	"errors"
	"time"

	"lendex/core"
	"lendex/pkg/metrics"
	"lendex/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/robfig/cron/v3"
)

const checkpointKey = "sync_checkpoint"

// Checkpoint last synced block
type Checkpoint interface {
	Load(ctx context.Context) (uint64, error)
	Save(ctx context.Context, block uint64) error
}

type propertyCheckpoint struct {
	property property.Store
}

// PropertyCheckpoint checkpoint kept in the property store
func PropertyCheckpoint(property property.Store) Checkpoint {
	return &propertyCheckpoint{property: property}
}

func (c *propertyCheckpoint) Load(ctx context.Context) (uint64, error) {
	v, err := c.property.Get(ctx, checkpointKey)
	if err != nil {
		return 0, err
	}

	if n := v.Int64(); n > 0 {
		return uint64(n), nil
	}

	return 0, nil
}

func (c *propertyCheckpoint) Save(ctx context.Context, block uint64) error {
	return c.property.Save(ctx, checkpointKey, int64(block))
}

// Config syncer config
type Config struct {
	Schedule      string
	StartBlock    uint64
	Confirmations uint64
	BatchSize     uint64
}

// Syncer pulls decoded logs from the chain into the event store
type Syncer struct {
	worker.BaseJob
	cfg        Config
	source     core.LogSource
	events     core.EventStore
	checkpoint Checkpoint
	tracking   bool
}

// New new sync worker
func New(
	cfg Config,
	source core.LogSource,
	events core.EventStore,
	checkpoint Checkpoint,
) *Syncer {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 2s"
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 1000
	}

	return &Syncer{
		cfg:        cfg,
		source:     source,
		events:     events,
		checkpoint: checkpoint,
	}
}

// Run run the cron job until ctx is done
func (w *Syncer) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "syncer")
	ctx = logger.WithContext(ctx, log)

	w.Cron = cron.New(cron.WithLocation(time.UTC))
	if _, err := w.Cron.AddFunc(w.cfg.Schedule, w.BaseJob.Run); err != nil {
		return err
	}

	w.OnWork = func() error {
		_, err := w.Sync(ctx)
		return err
	}

	_ = w.Start()
	<-ctx.Done()
	_ = w.Stop()
	return ctx.Err()
}

// loanCreations factory events whose loan address is tracked by the source
var loanCreations = map[string]string{
	"PoolCreated":         "pool",
	"CallableLoanCreated": "loan",
}

// track hand the loans created by already synced factory events to the source
func (w *Syncer) track(ctx context.Context) error {
	names := make([]string, 0, len(loanCreations))
	for name := range loanCreations {
		names = append(names, name)
	}

	events, err := w.events.ListByName(ctx, core.ContractFactory, names...)
	if err != nil {
		return err
	}

	addresses := make([]string, 0, len(events))
	for _, e := range events {
		addresses = append(addresses, e.Reader().Address(loanCreations[e.Name]))
	}

	w.source.Track(addresses...)
	w.tracking = true
	return nil
}

// Sync pull the next range of confirmed blocks, returns the new checkpoint
func (w *Syncer) Sync(ctx context.Context) (uint64, error) {
	log := logger.FromContext(ctx)

	if !w.tracking {
		if err := w.track(ctx); err != nil {
			log.WithError(err).Errorln("events.ListByName")
			return 0, err
		}
	}

	checkpoint, err := w.checkpoint.Load(ctx)
	if err != nil {
		log.WithError(err).Errorln("checkpoint.Load", checkpointKey)
		return 0, err
	}

	from := checkpoint + 1
	if from < w.cfg.StartBlock {
		from = w.cfg.StartBlock
	}

	head, err := w.source.HeadBlock(ctx)
	if err != nil {
		log.WithError(err).Errorln("source.HeadBlock")
		return checkpoint, err
	}

	if head < w.cfg.Confirmations || from > head-w.cfg.Confirmations {
		return checkpoint, errors.New("no confirmed blocks")
	}

	to := head - w.cfg.Confirmations
	if to-from+1 > w.cfg.BatchSize {
		to = from + w.cfg.BatchSize - 1
	}

	events, err := w.source.PullEvents(ctx, from, to)
	if err != nil {
		log.WithError(err).Errorln("source.PullEvents", from, to)
		return checkpoint, err
	}

	if len(events) > 0 {
		if err := w.events.Save(ctx, events); err != nil {
			log.WithError(err).Errorln("events.Save")
			return checkpoint, err
		}
	}

	if err := w.checkpoint.Save(ctx, to); err != nil {
		log.WithError(err).Errorln("checkpoint.Save", checkpointKey)
		return checkpoint, err
	}

	log.Debugf("synced blocks %d-%d, %d events", from, to, len(events))
	metrics.ObserveSynced(to)
	return to, nil
}
