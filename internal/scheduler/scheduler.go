// Package scheduler re-runs analysis batches on a cron schedule.
package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"go.uber.org/zap"
)

// BatchHandler receives the result of every scheduled run.
type BatchHandler func(batch *pipeline.BatchResult)

// Watch is a scheduled batch over a fixed symbol list.
type Watch struct {
	Schedule string
	Symbols  []string
	Period   marketdata.Period
}

// Scheduler manages the cron entries.
type Scheduler struct {
	cron    *cron.Cron
	runner  *pipeline.Runner
	logger  *logger.Logger
	handler BatchHandler

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a Scheduler. Overlapping runs of the same entry are skipped.
func NewScheduler(runner *pipeline.Runner, log *logger.Logger, handler BatchHandler) *Scheduler {
	if log == nil {
		log = logger.NewNopLogger()
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(log.Logger))
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		runner:  runner,
		logger:  log,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register adds a watch. The schedule accepts five-field cron expressions and
// descriptors such as @hourly or @every 15m.
func (s *Scheduler) Register(watch Watch) (cron.EntryID, error) {
	symbols, err := pipeline.NormalizeTickers(watch.Symbols)
	if err != nil {
		return 0, err
	}

	watch.Symbols = symbols

	id, err := s.cron.AddFunc(watch.Schedule, func() { s.RunNow(watch) })
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid schedule %q", watch.Schedule)
	}

	s.logger.Info("Registered watch",
		zap.String("schedule", watch.Schedule),
		zap.Strings("symbols", symbols),
		zap.String("period", string(watch.Period)),
	)

	return id, nil
}

// RunNow executes watch immediately on the calling goroutine.
func (s *Scheduler) RunNow(watch Watch) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	batch, err := s.runner.Run(ctx, watch.Symbols, watch.Period)
	if err != nil {
		s.logger.Error("Scheduled run failed", zap.Strings("symbols", watch.Symbols), zap.Error(err))

		if batch == nil {
			return
		}
	}

	if s.handler != nil {
		s.handler(batch)
	}
}

// Entries returns the number of registered watches.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop cancels running batches and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	stopped := s.cron.Stop()

	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}

	s.logger.Info("Scheduler stopped")
}
