// Package scheduler runs the periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cron "gopkg.in/robfig/cron.v2"
)

const (
	RefreshSchedule = "@every 10m"
	PurgeSchedule   = "@daily"

	jobTimeout = 2 * time.Minute
)

// Refresher reloads cached analytics.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Purger forgets processed webhook deliveries older than the retention.
type Purger interface {
	PurgeProcessed(ctx context.Context, retention time.Duration) (int64, error)
}

type Scheduler struct {
	Refresher Refresher
	Purger    Purger
	Retention time.Duration
	Logger    *slog.Logger

	cron *cron.Cron
}

// New registers the jobs. They run once Start is called.
func New(refresher Refresher, purger Purger, retention time.Duration, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		Refresher: refresher,
		Purger:    purger,
		Retention: retention,
		Logger:    logger,
		cron:      cron.New(),
	}
	if _, err := s.cron.AddFunc(RefreshSchedule, s.refresh); err != nil {
		return nil, fmt.Errorf("scheduling analytics refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(PurgeSchedule, s.purge); err != nil {
		return nil, fmt.Errorf("scheduling webhook purge: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.Logger.Info("[cron] started", "jobs", len(s.cron.Entries()))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.Logger.Info("[cron] stopped")
}

// RunNow runs every job once, outside the schedule.
func (s *Scheduler) RunNow() {
	s.refresh()
	s.purge()
}

func (s *Scheduler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.Refresher.Refresh(ctx); err != nil {
		s.Logger.Error("[cron] analytics refresh failed", "error", err)
	}
}

func (s *Scheduler) purge() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := s.Purger.PurgeProcessed(ctx, s.Retention)
	if err != nil {
		s.Logger.Error("[cron] webhook purge failed", "error", err)
		return
	}
	s.Logger.Info("[cron] purged processed webhooks", "count", n)
}
