package domain

import "time"

// DefaultSummary is used for entries tracked without a description.
const DefaultSummary = "Work Entry"

// TimeEntry represents a validated time-tracking entry
type TimeEntry struct {
	ID          string // Unique ID from the time-tracking service
	Description string
	Start       time.Time // UTC
	End         time.Time // UTC
	Duration    time.Duration
}

// Summary returns the event summary for this entry
func (e *TimeEntry) Summary() string {
	if e.Description == "" {
		return DefaultSummary
	}
	return e.Description
}

// FormatDate returns the entry date for display
func (e *TimeEntry) FormatDate() string {
	return e.Start.Format("02-01-2006")
}
