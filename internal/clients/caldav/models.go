package caldav

import "time"

// Calendar is a transient handle to a calendar discovered on the server
type Calendar struct {
	Path        string // Calendar collection path
	Name        string // Display name
	Description string
}

// Event represents a calendar event to be written
type Event struct {
	UID         string // Unique ID in CalDAV
	Summary     string // Title
	Description string
	StartTime   time.Time
	EndTime     time.Time
}
