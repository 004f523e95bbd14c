// Package swpc fetches real-time space-weather feeds from the NOAA Space
// Weather Prediction Center (services.swpc.noaa.gov). Feeds are JSON tables:
// an array of rows where the first row holds column names and every cell is
// a string.
package swpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	kpFeedPath        = "/products/noaa-planetary-k-index.json"
	solarWindFeedPath = "/products/solar-wind/plasma-7-day.json"
)

// KpReading is one row of the planetary K-index feed.
type KpReading struct {
	TimeTag time.Time `json:"time_tag"`
	Kp      float64   `json:"kp_index"`
}

// SolarWindReading is one row of the solar wind plasma feed.
type SolarWindReading struct {
	TimeTag time.Time `json:"time_tag"`
	Density float64   `json:"density"`
	Speed   float64   `json:"speed"`
}

// Client fetches SWPC feeds with rate limiting and exponential-backoff
// retries. SWPC asks automated clients to stay under a few requests per
// second; the limiter enforces that regardless of caller behavior.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a SWPC feed client.
func NewClient(baseURL string, timeout time.Duration, requestsPerSec int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), requestsPerSec),
		logger:     logger,
	}
}

// FetchKpIndex returns the planetary K-index table, oldest row first.
func (c *Client) FetchKpIndex(ctx context.Context) ([]KpReading, error) {
	rows, err := c.fetchTable(ctx, kpFeedPath)
	if err != nil {
		return nil, fmt.Errorf("fetch kp index: %w", err)
	}

	readings := make([]KpReading, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("kp feed row %d: want at least 2 columns, got %d", i, len(row))
		}
		ts, err := parseTimeTag(row[0])
		if err != nil {
			return nil, fmt.Errorf("kp feed row %d: %w", i, err)
		}
		kp, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("kp feed row %d: parse kp %q: %w", i, row[1], err)
		}
		readings = append(readings, KpReading{TimeTag: ts, Kp: kp})
	}
	return readings, nil
}

// FetchSolarWind returns the solar wind plasma table, oldest row first.
// Rows with missing density or speed cells (empty strings) are skipped;
// the instrument drops out routinely.
func (c *Client) FetchSolarWind(ctx context.Context) ([]SolarWindReading, error) {
	rows, err := c.fetchTable(ctx, solarWindFeedPath)
	if err != nil {
		return nil, fmt.Errorf("fetch solar wind: %w", err)
	}

	readings := make([]SolarWindReading, 0, len(rows))
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("solar wind feed row %d: want at least 3 columns, got %d", i, len(row))
		}
		if row[1] == "" || row[2] == "" {
			continue
		}
		ts, err := parseTimeTag(row[0])
		if err != nil {
			return nil, fmt.Errorf("solar wind feed row %d: %w", i, err)
		}
		density, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("solar wind feed row %d: parse density %q: %w", i, row[1], err)
		}
		speed, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("solar wind feed row %d: parse speed %q: %w", i, row[2], err)
		}
		readings = append(readings, SolarWindReading{TimeTag: ts, Density: density, Speed: speed})
	}
	return readings, nil
}

// fetchTable retrieves a feed and strips the header row.
func (c *Client) fetchTable(ctx context.Context, path string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
			return fmt.Errorf("swpc %s: status %d", path, resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(30*time.Second)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	var table [][]string
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, nil
	}
	return table[1:], nil // drop header row
}

// parseTimeTag parses the "2024-05-10 17:00:00.000" style timestamps SWPC
// uses, with or without fractional seconds, always UTC.
func parseTimeTag(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05.000", "2006-01-02 15:04:05"} {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time tag %q", s)
}
