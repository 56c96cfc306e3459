package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/manuelrech/clocksync/internal/clients/caldav"
	"github.com/manuelrech/clocksync/internal/domain"
)

// EntrySource fetches time entries in a date range.
type EntrySource interface {
	TimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error)
}

// CalendarClient locates calendars and writes events.
type CalendarClient interface {
	FindCalendarByName(ctx context.Context, name string) (*caldav.Calendar, error)
	CreateEvent(ctx context.Context, calendarPath string, event *caldav.Event) error
}

// EntryLedger remembers which entries were already written.
type EntryLedger interface {
	IsSynced(entryID string) (bool, error)
	MarkSynced(entry *domain.TimeEntry) error
}

// SyncService copies time entries into a CalDAV calendar
type SyncService struct {
	entries      EntrySource
	calendar     CalendarClient
	ledger       EntryLedger // optional; nil disables duplicate tracking
	calendarName string
	timezone     *time.Location
}

// NewSyncService creates a new sync service
func NewSyncService(entries EntrySource, calendar CalendarClient, ledger EntryLedger, calendarName string, tz *time.Location) *SyncService {
	if tz == nil {
		tz = time.UTC
	}
	return &SyncService{
		entries:      entries,
		calendar:     calendar,
		ledger:       ledger,
		calendarName: calendarName,
		timezone:     tz,
	}
}

// SyncResult contains sync run results
type SyncResult struct {
	Added   int
	Skipped int
	Tracked time.Duration
}

// Run fetches entries between from and to and writes one event per entry.
// A missing calendar surfaces as caldav.ErrCalendarNotFound with no events
// written; any other failure aborts the remaining entries.
func (s *SyncService) Run(ctx context.Context, from, to time.Time) (*SyncResult, error) {
	entries, err := s.entries.TimeEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch time entries: %w", err)
	}
	log.Printf("Fetched %d time entries from %s to %s",
		len(entries), from.Format("2006-01-02"), to.Format("2006-01-02"))

	cal, err := s.calendar.FindCalendarByName(ctx, s.calendarName)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	for i := range entries {
		entry := &entries[i]

		if s.ledger != nil {
			synced, err := s.ledger.IsSynced(entry.ID)
			if err != nil {
				return result, fmt.Errorf("check ledger for %s: %w", entry.ID, err)
			}
			if synced {
				result.Skipped++
				continue
			}
		}

		event := s.entryToEvent(entry)
		if err := s.calendar.CreateEvent(ctx, cal.Path, event); err != nil {
			return result, fmt.Errorf("write entry %s: %w", entry.ID, err)
		}

		if s.ledger != nil {
			if err := s.ledger.MarkSynced(entry); err != nil {
				return result, fmt.Errorf("record entry %s: %w", entry.ID, err)
			}
		}

		result.Added++
		result.Tracked += entry.Duration
		log.Printf("Added entry: %s - Date: %s - Calendar: %s",
			event.Summary, entry.FormatDate(), cal.Name)
	}

	return result, nil
}

// entryToEvent builds the calendar event for an entry, converting its UTC
// interval into the configured timezone.
func (s *SyncService) entryToEvent(entry *domain.TimeEntry) *caldav.Event {
	return &caldav.Event{
		UID:       entry.ID,
		Summary:   entry.Summary(),
		StartTime: entry.Start.In(s.timezone),
		EndTime:   entry.End.In(s.timezone),
	}
}
