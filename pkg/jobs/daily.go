package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task is a named unit of recurring work.
type Task func(ctx context.Context) error

// DailyRunner runs named tasks on cron schedules (e.g. "0 7 * * *" for 07:00 server time).
type DailyRunner struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewDailyRunner constructs a runner bound to the server's local time zone.
func NewDailyRunner(logger *zap.Logger) *DailyRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyRunner{
		cron:    cron.New(cron.WithLocation(time.Local)),
		logger:  logger,
		running: make(map[string]bool),
	}
}

// Register schedules task under name. Overlapping runs of the same task are skipped.
func (r *DailyRunner) Register(name, spec string, task Task) error {
	if task == nil {
		return fmt.Errorf("task %s is nil", name)
	}
	_, err := r.cron.AddFunc(spec, func() {
		r.run(name, task)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%s): %w", name, spec, err)
	}
	r.logger.Sugar().Infow("task scheduled", "task", name, "spec", spec)
	return nil
}

// Start begins firing scheduled tasks until ctx is done or Stop is called.
func (r *DailyRunner) Start(ctx context.Context) {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()
	r.cron.Start()
}

// Stop halts the scheduler and waits for running tasks.
func (r *DailyRunner) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	<-r.cron.Stop().Done()
}

func (r *DailyRunner) run(name string, task Task) {
	r.mu.Lock()
	if r.running[name] {
		r.mu.Unlock()
		r.logger.Sugar().Warnw("task still running, skipping tick", "task", name)
		return
	}
	r.running[name] = true
	ctx := r.ctx
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.running, name)
		r.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	if err := task(ctx); err != nil {
		r.logger.Sugar().Errorw("task failed", "task", name, "error", err, "duration", time.Since(start))
		return
	}
	r.logger.Sugar().Infow("task finished", "task", name, "duration", time.Since(start))
}
