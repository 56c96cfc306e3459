package config

import (
	"fmt"
	"os"
	"time"
)

const syncStartFormat = "2006-01-02T15:04:05Z"

type Config struct {
	// Time-tracking API
	BaseURL     string
	WorkspaceID string
	UserID      string
	APIKey      string

	// CalDAV
	CalDAVURL string
	Username  string
	Password  string

	CalendarName string
	Timezone     *time.Location
	SyncStart    time.Time
	DatabasePath string
	LogFile      string
	SyncSchedule string // cron spec; empty means run once
}

func Load() (*Config, error) {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("BASE_URL is required")
	}

	workspaceID := os.Getenv("WORKSPACE_ID")
	if workspaceID == "" {
		return nil, fmt.Errorf("WORKSPACE_ID is required")
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		return nil, fmt.Errorf("USER_ID is required")
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("API_KEY is required")
	}

	username := os.Getenv("ICLOUD_USERNAME")
	if username == "" {
		return nil, fmt.Errorf("ICLOUD_USERNAME is required")
	}

	password := os.Getenv("ICLOUD_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("ICLOUD_PASSWORD is required")
	}

	calendarName := os.Getenv("CALENDAR_NAME")
	if calendarName == "" {
		calendarName = "work"
	}

	tzName := os.Getenv("TIMEZONE")
	if tzName == "" {
		tzName = "Europe/Rome"
	}
	tz, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	syncStartStr := os.Getenv("SYNC_START_DATE")
	if syncStartStr == "" {
		syncStartStr = "2024-01-01T00:00:00Z"
	}
	syncStart, err := time.Parse(syncStartFormat, syncStartStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_START_DATE: %w", err)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./data/clocksync.db"
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "clocksync.log"
	}

	return &Config{
		BaseURL:      baseURL,
		WorkspaceID:  workspaceID,
		UserID:       userID,
		APIKey:       apiKey,
		CalDAVURL:    os.Getenv("ICLOUD_CALDAV_URL"),
		Username:     username,
		Password:     password,
		CalendarName: calendarName,
		Timezone:     tz,
		SyncStart:    syncStart,
		DatabasePath: dbPath,
		LogFile:      logFile,
		SyncSchedule: os.Getenv("SYNC_SCHEDULE"),
	}, nil
}
