package vatsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yegors/flightboard/pkg/logger"
)

// DefaultFeedURL is the public v3 data feed
const DefaultFeedURL = "https://data.vatsim.net/v3/vatsim-data.json"

// ErrUnexpectedStatus is returned when the server answers with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client is responsible for fetching network data over HTTP
type Client struct {
	httpClient *http.Client
	feedURL    string
	userAgent  string
	logger     *logger.Logger
}

// NewClient creates a new feed client
func NewClient(feedURL string, timeout time.Duration, userAgent string, loggerObj *logger.Logger) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		feedURL:   feedURL,
		userAgent: userAgent,
		logger:    loggerObj.Named("feed-cli"),
	}
}

// FetchSnapshot fetches and decodes the current traffic snapshot
func (c *Client) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	body, err := c.Fetch(ctx, c.feedURL)
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	c.logger.Debug("Successfully fetched traffic snapshot",
		logger.Int("pilot_count", len(snap.Pilots)),
		logger.Time("update_timestamp", snap.General.UpdateTimestamp),
	)

	return &snap, nil
}

// Fetch performs a GET request and returns the response body
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("Fetching", logger.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
