package caldav

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
)

const (
	// Apple iCloud CalDAV endpoint
	DefaultiCloudURL = "https://caldav.icloud.com"
)

// ErrCalendarNotFound is returned by FindCalendarByName when no calendar on
// the server matches the requested name.
var ErrCalendarNotFound = errors.New("caldav: calendar not found")

// Client is a CalDAV client for Apple iCloud Calendar
type Client struct {
	baseURL  string
	username string
	password string
	client   *caldav.Client
}

// NewClient creates a new CalDAV client
func NewClient(baseURL, username, password string) *Client {
	if baseURL == "" {
		baseURL = DefaultiCloudURL
	}
	return &Client{
		baseURL:  baseURL,
		username: username,
		password: password,
	}
}

// IsConfigured returns true if the client has credentials
func (c *Client) IsConfigured() bool {
	return c.username != "" && c.password != ""
}

// connect establishes connection to CalDAV server
func (c *Client) connect() (*caldav.Client, error) {
	if c.client != nil {
		return c.client, nil
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: c.username,
			password: c.password,
		},
		Timeout: 30 * time.Second,
	}

	client, err := caldav.NewClient(httpClient, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	c.client = client
	return client, nil
}

// basicAuthTransport adds Basic Auth to HTTP requests
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return http.DefaultTransport.RoundTrip(req)
}

// DiscoverCalendars returns all calendars owned by the authenticated principal
func (c *Client) DiscoverCalendars(ctx context.Context) ([]Calendar, error) {
	client, err := c.connect()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	var result []Calendar
	for _, cal := range cals {
		result = append(result, Calendar{
			Path:        cal.Path,
			Name:        cal.Name,
			Description: cal.Description,
		})
	}

	return result, nil
}

// FindCalendarByName returns the first calendar whose display name matches
// name case-insensitively, or ErrCalendarNotFound.
func (c *Client) FindCalendarByName(ctx context.Context, name string) (*Calendar, error) {
	calendars, err := c.DiscoverCalendars(ctx)
	if err != nil {
		return nil, err
	}

	for _, cal := range calendars {
		if strings.EqualFold(cal.Name, name) {
			found := cal
			return &found, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrCalendarNotFound, name)
}

// CreateEvent writes a new event to the calendar at calendarPath. The event
// resource is named after its UID, so rewriting the same UID replaces the
// previous resource instead of duplicating it.
func (c *Client) CreateEvent(ctx context.Context, calendarPath string, event *Event) error {
	client, err := c.connect()
	if err != nil {
		return err
	}

	if calendarPath == "" {
		return fmt.Errorf("calendar path not specified")
	}
	if event.UID == "" {
		return fmt.Errorf("event UID not specified")
	}

	cal := eventToICS(event)

	eventPath := calendarPath
	if !strings.HasSuffix(eventPath, "/") {
		eventPath += "/"
	}
	eventPath += event.UID + ".ics"

	_, err = client.PutCalendarObject(ctx, eventPath, cal)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

// eventToICS converts an Event to iCalendar format. Times are written in
// the location they carry; non-UTC locations get a TZID parameter.
func eventToICS(event *Event) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//clocksync//CalDAV//EN")

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.UID)
	vevent.Props.SetText(ical.PropSummary, event.Summary)

	if event.Description != "" {
		vevent.Props.SetText(ical.PropDescription, event.Description)
	}

	vevent.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime)
	if !event.EndTime.IsZero() {
		vevent.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime)
	}

	vevent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().In(event.StartTime.Location()))

	cal.Children = append(cal.Children, vevent.Component)
	return cal
}
