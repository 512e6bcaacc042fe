package background

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const poolJanitorJob = "tenant-pool-janitor"

// PoolReaper closes tenant pools left idle for longer than maxIdle.
type PoolReaper interface {
	ReapIdle(maxIdle time.Duration) int
}

// JobScheduler runs the in-process maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	reaper    PoolReaper
	interval  time.Duration
	maxIdle   time.Duration
	logger    *zap.Logger

	mu   sync.RWMutex
	jobs map[string]gocron.Job
}

// NewJobScheduler schedules the pool janitor every interval.
func NewJobScheduler(reaper PoolReaper, interval, maxIdle time.Duration, logger *zap.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		reaper:    reaper,
		interval:  interval,
		maxIdle:   maxIdle,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}
	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Strings("jobs", js.JobNames()))
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(js.interval),
		gocron.NewTask(js.reapIdlePools),
		gocron.WithName(poolJanitorJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", poolJanitorJob, err)
	}
	js.jobs[poolJanitorJob] = job
	return nil
}

func (js *JobScheduler) reapIdlePools() {
	if closed := js.reaper.ReapIdle(js.maxIdle); closed > 0 {
		js.logger.Info("idle tenant pools closed", zap.Int("closed", closed))
	}
}

// JobNames lists the registered jobs.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
