package models

import "time"

// Game statuses as stored in the games table.
const (
	GameStatusUpcoming = "upcoming"
	GameStatusLive     = "live"
	GameStatusFinal    = "final"
)

// RawOdds represents one priced outcome from a vendor before normalization
type RawOdds struct {
	GameID           string
	SportKey         string
	MarketKey        string
	BookKey          string
	OutcomeName      string
	Price            int      // American odds
	Point            *float64 // For spreads/totals
	VendorLastUpdate time.Time
	ReceivedAt       time.Time
}

// Game represents an NFL game
type Game struct {
	GameID    string
	SportKey  string
	Season    int
	Week      int
	HomeTeam  string
	AwayTeam  string
	Kickoff   time.Time
	Venue     string
	Dome      bool
	Severity  int  // weather harshness, 0 = clear; always 0 for dome games
	HomeScore *int // nil until final
	AwayScore *int
	Status    string // upcoming, live, final
}

// TotalPoints returns the combined final score, or false when the game
// has no score yet.
func (g Game) TotalPoints() (int, bool) {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0, false
	}
	return *g.HomeScore + *g.AwayScore, true
}

// FetchOddsOptions contains parameters for fetching odds
type FetchOddsOptions struct {
	Sport   string
	Regions []string
	Markets []string
}

// FetchResult contains both games and odds from a fetch operation
type FetchResult struct {
	Games []Game
	Odds  []RawOdds
}

// GameScore is a final or in-progress score from the vendor scores endpoint
type GameScore struct {
	GameID    string
	HomeScore int
	AwayScore int
	Completed bool
}

// RateLimits contains vendor rate limiting information
type RateLimits struct {
	RequestsRemaining int
	RequestsUsed      int
	ResetTime         time.Time
}
