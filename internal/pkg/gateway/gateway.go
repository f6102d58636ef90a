// Package gateway talks to the HTTP bridge in front of the fingerprint terminals.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/device"
)

// TimestampLayout is the local wall-clock layout the bridge reads and writes.
const TimestampLayout = "2006-01-02 15:04:05"

const logsPath = "/attendance/logs"

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

type Client struct {
	http *http.Client
	loc  *time.Location
}

// NewClient returns a client whose requests time out after timeout. Timestamps
// sent as the since cursor are rendered in loc.
func NewClient(timeout time.Duration, loc *time.Location) *Client {
	return &Client{
		http: &http.Client{Timeout: timeout},
		loc:  loc,
	}
}

var _ device.Client = (*Client)(nil)

// FetchEvents implements device.Client with GET {address}/attendance/logs?since=...
func (c *Client) FetchEvents(ctx context.Context, d device.Device, since *time.Time) ([]attendance.DeviceEvent, error) {
	u, err := url.Parse(strings.TrimRight(d.Address, "/") + logsPath)
	if err != nil {
		return nil, fmt.Errorf("invalid device address %q: %w", d.Address, err)
	}
	if since != nil {
		q := u.Query()
		q.Set("since", since.In(c.loc).Format(TimestampLayout))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach device %s: %w", d.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read device response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device %s answered %d: %s", d.Name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var events []attendance.DeviceEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("failed to decode device events: %w", err)
	}
	return events, nil
}
