package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manuelrech/clocksync/config"
	"github.com/manuelrech/clocksync/internal/clients/caldav"
	"github.com/manuelrech/clocksync/internal/clients/clockify"
	"github.com/manuelrech/clocksync/internal/scheduler"
	"github.com/manuelrech/clocksync/internal/service"
	"github.com/manuelrech/clocksync/internal/storage"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Append to the run log alongside stderr
	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stderr, logFile))

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	clockifyClient := clockify.NewClient(cfg.BaseURL, cfg.WorkspaceID, cfg.UserID, cfg.APIKey)
	caldavClient := caldav.NewClient(cfg.CalDAVURL, cfg.Username, cfg.Password)

	syncSvc := service.NewSyncService(clockifyClient, caldavClient, store, cfg.CalendarName, cfg.Timezone)

	runOnce := func(ctx context.Context) error {
		from := cfg.SyncStart
		to := time.Now().UTC()

		result, err := syncSvc.Run(ctx, from, to)
		if err != nil {
			if errors.Is(err, caldav.ErrCalendarNotFound) {
				log.Printf("ERROR: %q calendar not found.", cfg.CalendarName)
				return nil
			}
			return err
		}

		log.Printf("Entries for dates: %s to %s added to the %q calendar (%d added, %d skipped, %s tracked).",
			from.Format("2006-01-02"), to.Format("2006-01-02"), cfg.CalendarName,
			result.Added, result.Skipped, result.Tracked)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.SyncSchedule == "" {
		if err := runOnce(ctx); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		return
	}

	// Scheduled mode: keep syncing until interrupted
	sched := scheduler.New(cfg.SyncSchedule, cfg.Timezone, runOnce)

	go func() {
		if err := sched.Start(ctx); err != nil {
			log.Printf("Scheduler error: %v", err)
		}
	}()

	log.Println("clocksync started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
}
