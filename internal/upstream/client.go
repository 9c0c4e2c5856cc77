// Package upstream retrieves raw project records from the backend that
// serves the original project graph.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/specialistvlad/galaxygraph/internal/ctxlog"
	"github.com/specialistvlad/galaxygraph/internal/graph"
	"resty.dev/v3"
)

// projectDataPath is the endpoint that backs the original graph widget.
const projectDataPath = "/project_data.json"

// Config holds the connection settings for the upstream backend.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RetryCount    int
	RetryWait     time.Duration
	RetryMaxWait  time.Duration
	SessionCookie string
	UserAgent     string
}

// TransportError reports a failed upstream exchange after retries.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("upstream request to %s failed with status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client fetches project data over HTTP.
type Client struct {
	http *resty.Client
}

// New builds a client with pooled connections and retries.
func New(cfg Config) *Client {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetRetryCount(cfg.RetryCount).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryWait > 0 {
		c.SetRetryWaitTime(cfg.RetryWait)
	}
	if cfg.RetryMaxWait > 0 {
		c.SetRetryMaxWaitTime(cfg.RetryMaxWait)
	}
	if cfg.SessionCookie != "" {
		c.SetHeader("Cookie", cfg.SessionCookie)
	}
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{http: c}
}

// ProjectData fetches the raw records for key. Cancelling ctx aborts the
// request in flight.
func (c *Client) ProjectData(ctx context.Context, key graph.RequestKey) ([]graph.RawProjectRecord, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Making upstream request", "path", projectDataPath, "key", key.String())

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"cursus_id": strconv.Itoa(key.CursusID),
			"campus_id": strconv.Itoa(key.CampusID),
			"login":     key.Login,
		}).
		Get(projectDataPath)
	if err != nil {
		return nil, &TransportError{URL: projectDataPath, Err: err}
	}
	if resp.IsError() {
		return nil, &TransportError{URL: projectDataPath, StatusCode: resp.StatusCode()}
	}

	logger.Debug("Received upstream response", "status", resp.Status())

	// Only the envelope has to be a JSON array. Entries are decoded one by
	// one so that a malformed entry fails alone, during translation.
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(resp.String()), &entries); err != nil {
		return nil, &TransportError{URL: projectDataPath, StatusCode: resp.StatusCode(), Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	records := make([]graph.RawProjectRecord, len(entries))
	for i, entry := range entries {
		records[i] = graph.DecodeRecord(entry)
	}
	return records, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}
