package clockify

// TimeEntry is a time entry as returned by the Clockify REST API.
// Timestamps stay strings on the wire; ToDomain parses and validates them.
type TimeEntry struct {
	ID           string       `json:"id"`
	Description  string       `json:"description,omitempty"`
	ProjectID    string       `json:"projectId,omitempty"`
	WorkspaceID  string       `json:"workspaceId,omitempty"`
	Billable     bool         `json:"billable,omitempty"`
	TimeInterval TimeInterval `json:"timeInterval"`
}

// TimeInterval holds the tracked interval of an entry.
type TimeInterval struct {
	Start    string `json:"start"`              // ISO 8601 UTC, e.g. 2024-03-01T09:00:00Z
	End      string `json:"end"`                // same format; empty for a running entry
	Duration string `json:"duration,omitempty"` // ISO 8601 duration, e.g. PT1H30M
}

// timeEntriesEnvelope covers deployments that wrap the entry list in an
// object instead of returning a bare array.
type timeEntriesEnvelope struct {
	TimeEntries []TimeEntry `json:"timeEntries"`
}
