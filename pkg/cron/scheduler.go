// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// PreviewPurger is the slice of the import service the scheduler drives.
type PreviewPurger interface {
	PurgeExpiredPreviews()
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	purger    PreviewPurger
	purgeSpec string
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler. purgeSpec is a standard 5-field
// cron expression.
func NewScheduler(purger PreviewPurger, purgeSpec string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		purger:    purger,
		purgeSpec: purgeSpec,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.purgeSpec, s.purger.PurgeExpiredPreviews); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("purge_spec", s.purgeSpec),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the preview purge (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.purger.PurgeExpiredPreviews()
}
