package football_nfl

import (
	"fmt"
	"time"

	"github.com/tgurley/smartline/pkg/models"
)

// Module implements the SportModule interface for NFL Football
type Module struct {
	config *Config
}

// NewModule creates a new NFL sport module
func NewModule() *Module {
	return &Module{
		config: DefaultConfig(),
	}
}

// GetSportKey returns the sport identifier
func (m *Module) GetSportKey() string {
	return m.config.SportKey
}

// GetDisplayName returns the human-readable name
func (m *Module) GetDisplayName() string {
	return m.config.DisplayName
}

// GetFeaturedMarkets returns the featured markets to poll
func (m *Module) GetFeaturedMarkets() []string {
	return FeaturedMarkets()
}

// GetRegions returns the regions to poll
func (m *Module) GetRegions() []string {
	return m.config.Regions
}

// GetFeaturedPollInterval returns the poll interval for featured markets
func (m *Module) GetFeaturedPollInterval() time.Duration {
	return m.config.Featured.PollInterval
}

// GetScoresPollInterval returns the poll interval for scores
func (m *Module) GetScoresPollInterval() time.Duration {
	return m.config.Scores.PollInterval
}

// GetScoresDaysFrom returns how many days back to request scores
func (m *Module) GetScoresDaysFrom() int {
	return m.config.Scores.DaysFrom
}

// SeasonWeek derives (season, week) from a kickoff time
func (m *Module) SeasonWeek(kickoff time.Time) (int, int) {
	return SeasonWeek(kickoff)
}

// ClassifyVenue reports the stadium and dome flag for a home team
func (m *Module) ClassifyVenue(homeTeam string) (string, bool) {
	return VenueFor(homeTeam)
}

// VenueCoords reports the stadium coordinates for a home team
func (m *Module) VenueCoords(homeTeam string) (float64, float64, bool) {
	return VenueCoords(homeTeam)
}

// ValidateOdds performs NFL-specific validation
func (m *Module) ValidateOdds(odds models.RawOdds) error {
	// Validate sport key
	if odds.SportKey != m.config.SportKey {
		return fmt.Errorf("invalid sport_key: expected %s, got %s", m.config.SportKey, odds.SportKey)
	}

	if !IsFeaturedMarket(odds.MarketKey) {
		return fmt.Errorf("invalid market_key for NFL: %s", odds.MarketKey)
	}

	// Validate American odds format (should be non-zero integer)
	if odds.Price == 0 {
		return fmt.Errorf("invalid price: cannot be 0")
	}
	if odds.Price > -100 && odds.Price < 100 {
		return fmt.Errorf("invalid American price: %d", odds.Price)
	}

	// Validate spreads/totals have point values
	if (odds.MarketKey == "spreads" || odds.MarketKey == "totals") && odds.Point == nil {
		return fmt.Errorf("market %s requires point value", odds.MarketKey)
	}

	// NFL totals land in a narrow band; anything outside is a feed glitch
	if odds.MarketKey == "totals" && odds.Point != nil {
		if *odds.Point < 20 || *odds.Point > 80 {
			return fmt.Errorf("implausible NFL total: %.1f", *odds.Point)
		}
	}

	return nil
}
