package worker

import (
	"context"
	"sync"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}

// IJob cron job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob cron job skipping ticks while the previous run is in progress
type BaseJob struct {
	Cron   *cron.Cron
	OnWork OnWork

	mux     sync.Mutex
	running bool
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	job.mux.Lock()
	if job.running {
		job.mux.Unlock()
		return
	}
	job.running = true
	job.mux.Unlock()

	defer func() {
		job.mux.Lock()
		job.running = false
		job.mux.Unlock()
	}()

	_ = job.OnWork()
}

// Loop call fn until ctx is done, waiting idle after a failed or empty round
func Loop(ctx context.Context, name string, busy, idle time.Duration, fn func(ctx context.Context) error) error {
	log := logger.FromContext(ctx).WithField("worker", name)
	ctx = logger.WithContext(ctx, log)

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := fn(ctx); err == nil {
				dur = busy
			} else {
				dur = idle
			}
		}
	}
}
