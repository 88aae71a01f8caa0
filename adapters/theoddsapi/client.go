package theoddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tgurley/smartline/pkg/contracts"
	"github.com/tgurley/smartline/pkg/models"
)

const (
	baseURL    = "https://api.the-odds-api.com"
	apiVersion = "v4"
	userAgent  = "SmartLine/1.0 (NFL Betting Analytics)"
	timeout    = 10 * time.Second
	maxRetries = 3
	retryDelay = 2 * time.Second
)

// Client implements the VendorAdapter interface for The Odds API
type Client struct {
	apiKey     string
	httpClient *http.Client
	rateLimits *models.RateLimits
	mu         sync.RWMutex
}

// Ensure Client implements VendorAdapter
var _ contracts.VendorAdapter = (*Client)(nil)

// NewClient creates a new The Odds API client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimits: &models.RateLimits{
			RequestsRemaining: 500, // Default quota
			RequestsUsed:      0,
		},
	}
}

// FetchOdds retrieves featured market odds (h2h, spreads, totals)
func (c *Client) FetchOdds(ctx context.Context, opts *models.FetchOddsOptions) (*models.FetchResult, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/odds", baseURL, apiVersion, opts.Sport)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", strings.Join(opts.Regions, ","))
	params.Set("markets", strings.Join(opts.Markets, ","))
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch odds failed: %w", err)
	}

	var apiResp []oddsResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse odds response: %w", err)
	}

	return c.parseOddsResponse(apiResp, time.Now()), nil
}

// FetchGames retrieves upcoming games without odds (for discovery)
func (c *Client) FetchGames(ctx context.Context, sport string) ([]models.Game, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/events", baseURL, apiVersion, sport)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch games failed: %w", err)
	}

	var apiResp []eventResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse games response: %w", err)
	}

	return c.parseGamesResponse(apiResp), nil
}

// FetchScores retrieves scores for recent and live games
func (c *Client) FetchScores(ctx context.Context, sport string, daysFrom int) ([]models.GameScore, error) {
	endpoint := fmt.Sprintf("%s/%s/sports/%s/scores", baseURL, apiVersion, sport)

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("daysFrom", strconv.Itoa(daysFrom))
	params.Set("dateFormat", "iso")

	fullURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	body, err := c.doRequestWithRetry(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch scores failed: %w", err)
	}

	var apiResp []scoreResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse scores response: %w", err)
	}

	return parseScoresResponse(apiResp), nil
}

// SupportsMarket checks if this adapter supports a given market
func (c *Client) SupportsMarket(market string) bool {
	supportedMarkets := map[string]bool{
		"h2h":     true,
		"spreads": true,
		"totals":  true,
	}
	return supportedMarkets[market]
}

// GetRateLimits returns current rate limit information
func (c *Client) GetRateLimits() *models.RateLimits {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimits
}

// doRequestWithRetry performs HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			backoff := retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := c.doRequest(ctx, fullURL)
		if err == nil {
			return body, nil
		}

		lastErr = err

		// Don't retry on client errors (4xx except 429)
		if httpErr, ok := err.(*httpError); ok {
			if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 && httpErr.StatusCode != 429 {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs a single HTTP request
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	// Update rate limits from headers
	c.updateRateLimits(resp.Header)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	return body, nil
}

// updateRateLimits extracts rate limit info from response headers
func (c *Client) updateRateLimits(headers http.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remaining := headers.Get("x-requests-remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimits.RequestsRemaining = val
		}
	}

	if used := headers.Get("x-requests-used"); used != "" {
		if val, err := strconv.Atoi(used); err == nil {
			c.rateLimits.RequestsUsed = val
		}
	}
}

// parseOddsResponse converts API response to internal FetchResult with games and odds
func (c *Client) parseOddsResponse(apiResp []oddsResponse, receivedAt time.Time) *models.FetchResult {
	var allOdds []models.RawOdds
	var allGames []models.Game
	seenGames := make(map[string]bool)

	for _, event := range apiResp {
		// Parse kickoff time once per game
		kickoff, err := time.Parse(time.RFC3339, event.CommenceTime)
		if err != nil {
			kickoff = receivedAt // Fallback
		}

		// Extract game (deduplicate by ID)
		if !seenGames[event.ID] {
			status := models.GameStatusUpcoming
			if time.Now().After(kickoff) {
				status = models.GameStatusLive
			}

			allGames = append(allGames, models.Game{
				GameID:   event.ID,
				SportKey: event.SportKey,
				HomeTeam: event.HomeTeam,
				AwayTeam: event.AwayTeam,
				Kickoff:  kickoff,
				Status:   status,
			})
			seenGames[event.ID] = true
		}

		// Extract odds
		for _, bookmaker := range event.Bookmakers {
			vendorUpdate, err := time.Parse(time.RFC3339, bookmaker.LastUpdate)
			if err != nil {
				vendorUpdate = receivedAt
			}

			for _, market := range bookmaker.Markets {
				for _, outcome := range market.Outcomes {
					odd := models.RawOdds{
						GameID:           event.ID,
						SportKey:         event.SportKey,
						MarketKey:        market.Key,
						BookKey:          bookmaker.Key,
						OutcomeName:      outcome.Name,
						Price:            outcome.Price,
						VendorLastUpdate: vendorUpdate,
						ReceivedAt:       receivedAt,
					}

					// Add point for spreads/totals
					if outcome.Point != nil {
						point := *outcome.Point
						odd.Point = &point
					}

					allOdds = append(allOdds, odd)
				}
			}
		}
	}

	return &models.FetchResult{
		Games: allGames,
		Odds:  allOdds,
	}
}

// parseGamesResponse converts API response to internal Game format
func (c *Client) parseGamesResponse(apiResp []eventResponse) []models.Game {
	games := make([]models.Game, 0, len(apiResp))

	for _, evt := range apiResp {
		kickoff, err := time.Parse(time.RFC3339, evt.CommenceTime)
		if err != nil {
			continue // Skip invalid games
		}

		status := models.GameStatusUpcoming
		if time.Now().After(kickoff) {
			status = models.GameStatusLive
		}

		games = append(games, models.Game{
			GameID:   evt.ID,
			SportKey: evt.SportKey,
			HomeTeam: evt.HomeTeam,
			AwayTeam: evt.AwayTeam,
			Kickoff:  kickoff,
			Status:   status,
		})
	}

	return games
}

// parseScoresResponse converts the scores payload, skipping games with no
// score posted yet
func parseScoresResponse(apiResp []scoreResponse) []models.GameScore {
	scores := make([]models.GameScore, 0, len(apiResp))

	for _, s := range apiResp {
		var home, away *int
		for _, sc := range s.Scores {
			val, err := strconv.Atoi(sc.Score)
			if err != nil {
				continue
			}
			v := val
			switch sc.Name {
			case s.HomeTeam:
				home = &v
			case s.AwayTeam:
				away = &v
			}
		}

		if home == nil || away == nil {
			continue
		}

		scores = append(scores, models.GameScore{
			GameID:    s.ID,
			HomeScore: *home,
			AwayScore: *away,
			Completed: s.Completed,
		})
	}

	return scores
}

// httpError represents an HTTP error with status code
type httpError struct {
	StatusCode int
	Message    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// API response structures matching The Odds API JSON format

type oddsResponse struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []bookmaker `json:"bookmakers"`
}

type bookmaker struct {
	Key        string   `json:"key"`
	Title      string   `json:"title"`
	LastUpdate string   `json:"last_update"`
	Markets    []market `json:"markets"`
}

type market struct {
	Key        string    `json:"key"`
	LastUpdate string    `json:"last_update"`
	Outcomes   []outcome `json:"outcomes"`
}

type outcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

type eventResponse struct {
	ID           string `json:"id"`
	SportKey     string `json:"sport_key"`
	SportTitle   string `json:"sport_title"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}

type scoreResponse struct {
	ID        string       `json:"id"`
	SportKey  string       `json:"sport_key"`
	HomeTeam  string       `json:"home_team"`
	AwayTeam  string       `json:"away_team"`
	Completed bool         `json:"completed"`
	Scores    []scoreEntry `json:"scores"`
}

type scoreEntry struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}
