// Package janitor runs scheduled cleanup of old terminal tasks. The
// schedule is a standard 5-field cron expression; a ticker loop checks
// whether a run is due and invokes the task store's cleanup.
package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	cronlib "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/quorum-ai/quorum/internal/store"
)

// cronParser parses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// Config holds the dependencies and schedule for the janitor.
type Config struct {
	Tasks     *store.TaskStore
	Schedule  string        // 5-field cron expression
	Retention time.Duration // terminal tasks older than this are deleted
	Interval  time.Duration // tick interval; defaults to 30 seconds if zero
	Logger    *logrus.Logger
}

// Janitor deletes terminal tasks past the retention window whenever
// the cron schedule comes due.
type Janitor struct {
	tasks     *store.TaskStore
	schedule  cronlib.Schedule
	retention time.Duration
	interval  time.Duration
	log       *logrus.Logger

	mu      sync.Mutex
	nextRun time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates the cron expression and builds a janitor.
func New(cfg Config) (*Janitor, error) {
	sched, err := cronParser.Parse(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parsing cleanup schedule %q: %w", cfg.Schedule, err)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Janitor{
		tasks:     cfg.Tasks,
		schedule:  sched,
		retention: cfg.Retention,
		interval:  interval,
		log:       log,
		nextRun:   sched.Next(time.Now()),
	}, nil
}

// Start begins the janitor loop in a background goroutine. The loop
// respects the provided context for shutdown.
func (j *Janitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.wg.Add(1)
	go j.loop(ctx)
	j.log.WithField("next_run", j.NextRun()).Info("janitor started")
}

// Stop cancels the loop and waits for it to exit.
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
	j.log.Info("janitor stopped")
}

// NextRun reports when the next cleanup is due.
func (j *Janitor) NextRun() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.nextRun
}

func (j *Janitor) loop(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(time.Now())
		}
	}
}

// tick runs a cleanup if the schedule has come due, then advances the
// due time past now so one due point fires exactly once.
func (j *Janitor) tick(now time.Time) {
	j.mu.Lock()
	due := !now.Before(j.nextRun)
	if due {
		j.nextRun = j.schedule.Next(now)
	}
	j.mu.Unlock()

	if !due {
		return
	}
	j.RunOnce()
}

// RunOnce performs one cleanup pass immediately, regardless of the
// schedule.
func (j *Janitor) RunOnce() {
	count, err := j.tasks.Cleanup(j.retention)
	if err != nil {
		j.log.Errorf("task cleanup failed: %v", err)
		return
	}
	if count > 0 {
		j.log.WithField("deleted", count).Info("cleaned up old tasks")
	}
}
