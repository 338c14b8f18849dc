// Package scheduler runs full syncs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"LeagueSync/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// FullSyncer is the part of the sync service the scheduler drives.
type FullSyncer interface {
	RunFullSync(ctx context.Context) *service.SyncResult
}

type Scheduler struct {
	cron   *cron.Cron
	syncer FullSyncer
	guard  *service.RunGuard
	logger *logrus.Logger
}

// New registers a full sync on spec (standard 5-field cron). A tick that finds another
// sync holding guard is skipped.
func New(spec string, syncer FullSyncer, guard *service.RunGuard, logger *logrus.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(logger)
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger))),
		syncer: syncer,
		guard:  guard,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.WithField("next_run", e.Next).Info("sync scheduler started")
	}
}

// Stop prevents further ticks and waits for a running one to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	if !s.guard.TryAcquire() {
		s.logger.Warn("scheduled sync skipped: a sync is already in progress")
		return
	}
	defer s.guard.Release()

	result := s.syncer.RunFullSync(context.Background())
	entry := s.logger.WithFields(logrus.Fields{
		"run_id":  result.RunID,
		"success": result.Success,
		"errors":  len(result.Errors),
	})
	if result.Success {
		entry.Info("scheduled sync completed")
	} else {
		entry.Warn("scheduled sync completed with errors")
	}
}
