package football_nfl

import (
	"time"
)

// Config contains NFL-specific polling configuration
type Config struct {
	// Sport identification
	SportKey    string
	DisplayName string

	// Regions to poll
	Regions []string

	// Featured markets configuration (h2h, spreads, totals)
	Featured FeaturedConfig

	// Scores endpoint polling
	Scores ScoresConfig
}

// FeaturedConfig defines polling for mainline markets
type FeaturedConfig struct {
	// Default polling interval (used by the ingest scheduler)
	PollInterval time.Duration

	// Pre-match polling interval (>6hr from kickoff)
	PreMatchInterval time.Duration

	// How many hours before kickoff to begin ramping
	RampWithinHours float64

	// Target interval near kickoff
	RampTargetInterval time.Duration

	// In-play polling interval
	InPlayInterval time.Duration
}

// ScoresConfig defines polling for final scores
type ScoresConfig struct {
	PollInterval time.Duration

	// How many days back to ask the vendor for scores
	DaysFrom int
}

// DefaultConfig returns the NFL polling configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:    "americanfootball_nfl",
		DisplayName: "NFL Football",
		Regions:     []string{"us", "us2"},

		Featured: FeaturedConfig{
			PollInterval:       5 * time.Minute, // NFL lines move slower than hoops
			PreMatchInterval:   5 * time.Minute,
			RampWithinHours:    6.0,
			RampTargetInterval: 60 * time.Second,
			InPlayInterval:     60 * time.Second,
		},

		Scores: ScoresConfig{
			PollInterval: 10 * time.Minute,
			DaysFrom:     3,
		},
	}
}

// GetFeaturedInterval returns the appropriate polling interval for featured
// markets based on hours until kickoff
func (c *Config) GetFeaturedInterval(hoursUntilKickoff float64, isLive bool) time.Duration {
	if isLive {
		return c.Featured.InPlayInterval
	}

	if hoursUntilKickoff > c.Featured.RampWithinHours {
		return c.Featured.PreMatchInterval
	}

	// Linear ramp from PreMatchInterval to RampTargetInterval
	rampFactor := hoursUntilKickoff / c.Featured.RampWithinHours
	diff := c.Featured.PreMatchInterval - c.Featured.RampTargetInterval
	return c.Featured.RampTargetInterval + time.Duration(float64(diff)*rampFactor)
}
