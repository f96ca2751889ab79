package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/coronaboard-data/internal/logger"
	"github.com/i474232898/coronaboard-data/internal/stats"
)

const runTimeout = 2 * time.Minute

// Refresher is the part of stats.Service the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context, anchor time.Time) (*stats.RefreshResult, error)
}

// AnchorFunc maps the job start time to the reference instant.
type AnchorFunc func(now time.Time) (time.Time, error)

// Scheduler periodically refreshes dashboard data.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	service    Refresher
	anchor     AnchorFunc
	cronExpr   string
	interval   time.Duration
	runOnStart bool
}

// New creates a new Scheduler. A non-empty cronExpr takes precedence over interval.
func New(service Refresher, anchor AnchorFunc, cronExpr string, interval time.Duration, runOnStart bool) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		service:    service,
		anchor:     anchor,
		cronExpr:   cronExpr,
		interval:   interval,
		runOnStart: runOnStart,
	}
}

// Start schedules the refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	var job *gocron.Scheduler
	if s.cronExpr != "" {
		job = s.scheduler.Cron(s.cronExpr)
		logger.Info("scheduler: refreshing on cron %q", s.cronExpr)
	} else {
		interval := s.interval
		if interval <= 0 {
			interval = time.Hour
		}
		job = s.scheduler.Every(interval)
		logger.Info("scheduler: refreshing every %s", interval)
	}
	if !s.runOnStart {
		job = job.WaitForSchedule()
	}

	if _, err := job.Do(s.RunOnce); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce performs a single refresh; failures are logged and swallowed.
func (s *Scheduler) RunOnce() {
	now := time.Now()
	anchor, err := s.anchor(now)
	if err != nil {
		logger.Error("scheduler: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	logger.Info("scheduler: running refresh job")
	result, err := s.service.Refresh(ctx, anchor)
	if err != nil {
		logger.Error("scheduler: refresh failed: %v", err)
		return
	}
	logger.Info("scheduler: completed refresh %s in %s (%d write failures)",
		result.Dashboard.RunID, time.Since(now).Round(time.Millisecond), len(result.WriteFailures))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
