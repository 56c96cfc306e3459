package caldav

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
)

func mustLoadLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func encodeICS(t *testing.T, cal *ical.Calendar) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		t.Fatalf("encode calendar: %v", err)
	}
	return buf.String()
}

func TestEventToICS(t *testing.T) {
	rome := mustLoadLocation(t, "Europe/Rome")

	event := &Event{
		UID:       "abc123",
		Summary:   "Coding",
		StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC).In(rome),
		EndTime:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC).In(rome),
	}

	ics := encodeICS(t, eventToICS(event))

	for _, want := range []string{
		"BEGIN:VEVENT",
		"UID:abc123",
		"SUMMARY:Coding",
		"DTSTART;TZID=Europe/Rome:20240301T100000",
		"DTEND;TZID=Europe/Rome:20240301T113000",
		"DTSTAMP",
	} {
		if !strings.Contains(ics, want) {
			t.Errorf("serialized event missing %q:\n%s", want, ics)
		}
	}
}

func TestEventToICS_UTCTimes(t *testing.T) {
	event := &Event{
		UID:       "abc123",
		Summary:   "Coding",
		StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	ics := encodeICS(t, eventToICS(event))

	if !strings.Contains(ics, "DTSTART:20240301T090000Z") {
		t.Errorf("expected UTC DTSTART with Z suffix:\n%s", ics)
	}
}

func TestCreateEvent(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	var gotAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _, gotAuth = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@icloud.com", "app-specific")
	event := &Event{
		UID:       "abc123",
		Summary:   "Coding",
		StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	if err := client.CreateEvent(context.Background(), "/calendars/work", event); err != nil {
		t.Fatalf("CreateEvent() returned an error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotPath != "/calendars/work/abc123.ics" {
		t.Errorf("path = %q", gotPath)
	}
	if !gotAuth {
		t.Error("request was sent without basic auth")
	}
	if !strings.Contains(gotBody, "UID:abc123") || !strings.Contains(gotBody, "SUMMARY:Coding") {
		t.Errorf("body missing event fields:\n%s", gotBody)
	}
}

func TestCreateEvent_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, "user@icloud.com", "wrong")
	event := &Event{
		UID:       "abc123",
		Summary:   "Coding",
		StartTime: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
	}

	if err := client.CreateEvent(context.Background(), "/calendars/work", event); err == nil {
		t.Fatal("CreateEvent() succeeded on a 403 response")
	}
}

func TestCreateEvent_MissingUID(t *testing.T) {
	client := NewClient("https://caldav.example.com", "u", "p")

	err := client.CreateEvent(context.Background(), "/calendars/work", &Event{Summary: "Coding"})
	if err == nil {
		t.Fatal("CreateEvent() succeeded without a UID")
	}
}
