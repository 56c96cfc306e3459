package clockify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dylanmei/iso8601"

	"github.com/manuelrech/clocksync/internal/domain"
)

const (
	// PageSize is the number of entries requested per page.
	PageSize = 800

	timeFormat = "2006-01-02T15:04:05Z"
)

// ErrMalformedResponse marks API responses that could not be converted into
// time entries: unexpected body shape, missing ids, unparseable timestamps.
var ErrMalformedResponse = errors.New("clockify: malformed response")

// Client is a Clockify API client scoped to one workspace and user.
type Client struct {
	baseURL     string
	workspaceID string
	userID      string
	apiKey      string
	httpClient  *http.Client
}

// NewClient creates a new Clockify client.
func NewClient(baseURL, workspaceID, userID, apiKey string) *Client {
	return &Client{
		baseURL:     baseURL,
		workspaceID: workspaceID,
		userID:      userID,
		apiKey:      apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// doRequest performs an authenticated GET and returns the raw body.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// TimeEntries returns all entries tracked between from and to, oldest page
// first. It keeps requesting pages while they come back full, so ranges with
// more than PageSize entries are not truncated.
func (c *Client) TimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	path := fmt.Sprintf("/workspaces/%s/user/%s/time-entries", c.workspaceID, c.userID)

	var all []domain.TimeEntry
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("start", from.UTC().Format(timeFormat))
		query.Set("end", to.UTC().Format(timeFormat))
		query.Set("page-size", strconv.Itoa(PageSize))
		query.Set("page", strconv.Itoa(page))

		body, err := c.doRequest(ctx, path, query)
		if err != nil {
			return nil, err
		}

		raw, err := parseTimeEntries(body)
		if err != nil {
			return nil, err
		}

		for _, e := range raw {
			entry, err := e.ToDomain()
			if err != nil {
				return nil, err
			}
			all = append(all, entry)
		}

		if len(raw) < PageSize {
			return all, nil
		}
	}
}

// parseTimeEntries decodes a response body that is either a bare array of
// entries or an envelope object wrapping one.
func parseTimeEntries(body []byte) ([]TimeEntry, error) {
	var entries []TimeEntry
	if err := json.Unmarshal(body, &entries); err == nil {
		return entries, nil
	}

	var envelope timeEntriesEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.TimeEntries != nil {
		return envelope.TimeEntries, nil
	}

	return nil, fmt.Errorf("%w: expected entry array or envelope, got: %.100s", ErrMalformedResponse, string(body))
}

// ToDomain validates a wire entry and converts it into a domain entry with
// parsed UTC timestamps.
func (e *TimeEntry) ToDomain() (domain.TimeEntry, error) {
	if e.ID == "" {
		return domain.TimeEntry{}, fmt.Errorf("%w: entry without id", ErrMalformedResponse)
	}

	start, err := time.Parse(time.RFC3339, e.TimeInterval.Start)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("%w: entry %s: invalid start %q", ErrMalformedResponse, e.ID, e.TimeInterval.Start)
	}
	end, err := time.Parse(time.RFC3339, e.TimeInterval.End)
	if err != nil {
		return domain.TimeEntry{}, fmt.Errorf("%w: entry %s: invalid end %q", ErrMalformedResponse, e.ID, e.TimeInterval.End)
	}

	// Duration is derived data; fall back to end-start when absent or odd.
	duration := end.Sub(start)
	if e.TimeInterval.Duration != "" {
		if d, err := iso8601.ParseDuration(e.TimeInterval.Duration); err == nil {
			duration = d
		}
	}

	return domain.TimeEntry{
		ID:          e.ID,
		Description: e.Description,
		Start:       start.UTC(),
		End:         end.UTC(),
		Duration:    duration,
	}, nil
}
