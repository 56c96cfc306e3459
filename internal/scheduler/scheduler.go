package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SyncFunc runs one sync pass
type SyncFunc func(ctx context.Context) error

// Scheduler runs the sync on a cron schedule until the context is cancelled
type Scheduler struct {
	cron *cron.Cron
	spec string
	run  SyncFunc
}

func New(spec string, tz *time.Location, run SyncFunc) *Scheduler {
	if tz == nil {
		tz = time.Local
	}
	return &Scheduler{
		cron: cron.New(cron.WithLocation(tz)),
		spec: spec,
		run:  run,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.run(ctx); err != nil {
			log.Printf("Scheduled sync failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("add sync job: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (spec: %q)", s.spec)

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}
