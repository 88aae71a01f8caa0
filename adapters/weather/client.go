// Package weather provides an HTTP client for the Open-Meteo forecast API
// and maps forecast conditions to the integer weather severity score
// attached to outdoor games.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client fetches hourly forecasts for stadium coordinates
type Client struct {
	baseURL    string
	httpClient *http.Client
	enabled    bool
}

// Config holds configuration for the weather client
type Config struct {
	BaseURL string // e.g., "https://api.open-meteo.com"
	Enabled bool   // Whether severity enrichment is enabled
	Timeout time.Duration
}

// Conditions holds the forecast values used for severity scoring
type Conditions struct {
	TemperatureF  float64 // air temperature, Fahrenheit
	WindSpeedMph  float64 // 10m wind speed, mph
	Precipitation float64 // liquid equivalent, mm per hour
}

// NewClient creates a new weather client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		enabled: cfg.Enabled,
	}
}

// IsEnabled returns whether severity enrichment is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled && c.baseURL != ""
}

// Forecast returns the conditions for the forecast hour closest to at.
// Open-Meteo serves up to 16 days ahead; kickoffs beyond that fail.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, at time.Time) (*Conditions, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("hourly", "temperature_2m,precipitation,wind_speed_10m")
	params.Set("temperature_unit", "fahrenheit")
	params.Set("wind_speed_unit", "mph")
	params.Set("timeformat", "unixtime")

	fullURL := fmt.Sprintf("%s/v1/forecast?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request failed: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var fr forecastResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, fmt.Errorf("parse forecast response: %w", err)
	}

	return fr.conditionsAt(at)
}

// SeverityFor returns the severity score for a kickoff at the given
// coordinates, or 0 when the client is disabled or the forecast fails.
// Weather enrichment is best-effort: a missing forecast must never block
// game ingestion.
func (c *Client) SeverityFor(ctx context.Context, lat, lon float64, kickoff time.Time) int {
	if !c.IsEnabled() {
		return 0
	}

	cond, err := c.Forecast(ctx, lat, lon, kickoff)
	if err != nil {
		slog.Warn("weather forecast unavailable", "error", err)
		return 0
	}

	return SeverityScore(*cond)
}

// SeverityScore maps forecast conditions to the integer severity score.
// 0 = clear; each harsh component adds points, so a windy snow game in
// freezing temperatures scores higher than any single factor alone.
func SeverityScore(c Conditions) int {
	score := 0

	switch {
	case c.WindSpeedMph >= 20:
		score += 2
	case c.WindSpeedMph >= 12:
		score++
	}

	switch {
	case c.Precipitation >= 2.5:
		score += 2
	case c.Precipitation >= 0.2:
		score++
	}

	if c.TemperatureF <= 20 || c.TemperatureF >= 95 {
		score++
	}
	if c.TemperatureF <= 0 {
		score++
	}

	return score
}

// forecastResponse matches the Open-Meteo hourly forecast JSON
type forecastResponse struct {
	Hourly struct {
		Time          []int64   `json:"time"`
		Temperature   []float64 `json:"temperature_2m"`
		Precipitation []float64 `json:"precipitation"`
		WindSpeed     []float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
}

// conditionsAt picks the hourly slot closest to at
func (fr *forecastResponse) conditionsAt(at time.Time) (*Conditions, error) {
	h := fr.Hourly
	if len(h.Time) == 0 {
		return nil, fmt.Errorf("forecast response contains no hourly data")
	}
	if len(h.Temperature) != len(h.Time) || len(h.Precipitation) != len(h.Time) || len(h.WindSpeed) != len(h.Time) {
		return nil, fmt.Errorf("forecast response has mismatched hourly series")
	}

	target := at.Unix()
	best := 0
	bestDiff := int64(1<<63 - 1)
	for i, ts := range h.Time {
		diff := ts - target
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}

	// A forecast more than 24h from kickoff means the window isn't covered
	if bestDiff > int64(24*time.Hour/time.Second) {
		return nil, fmt.Errorf("no forecast slot near %s", at.Format(time.RFC3339))
	}

	return &Conditions{
		TemperatureF:  h.Temperature[best],
		WindSpeedMph:  h.WindSpeed[best],
		Precipitation: h.Precipitation[best],
	}, nil
}
