package contracts

import (
	"time"

	"github.com/tgurley/smartline/pkg/models"
)

// SportModule defines the interface for sport-specific polling and
// validation logic. SmartLine ships with NFL only, but nothing below is
// football-specific.
type SportModule interface {
	// GetSportKey returns the unique identifier for this sport (e.g., "americanfootball_nfl")
	GetSportKey() string

	// GetDisplayName returns the human-readable name (e.g., "NFL Football")
	GetDisplayName() string

	// GetFeaturedMarkets returns the markets to poll at high frequency
	GetFeaturedMarkets() []string

	// GetRegions returns the regions to poll (e.g., ["us", "us2"])
	GetRegions() []string

	// GetFeaturedPollInterval returns how often to poll featured markets
	GetFeaturedPollInterval() time.Duration

	// GetScoresPollInterval returns how often to poll the scores endpoint
	GetScoresPollInterval() time.Duration

	// GetScoresDaysFrom returns how many days back to request scores
	GetScoresDaysFrom() int

	// SeasonWeek derives (season, week) from a kickoff time
	SeasonWeek(kickoff time.Time) (int, int)

	// ValidateOdds performs sport-specific validation on raw odds
	ValidateOdds(odds models.RawOdds) error

	// ClassifyVenue reports the stadium name and whether it is a dome
	// for the given home team
	ClassifyVenue(homeTeam string) (venue string, dome bool)

	// VenueCoords reports stadium coordinates for weather lookups;
	// ok is false for unknown or neutral-site venues
	VenueCoords(homeTeam string) (lat, lon float64, ok bool)
}
