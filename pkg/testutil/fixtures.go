// Package testutil holds fixtures shared by unit and integration tests.
package testutil

import (
	"time"

	"github.com/tgurley/smartline/pkg/models"
)

// NewTestGame builds a final outdoor game with the given score
func NewTestGame(id string, severity, homeScore, awayScore int) models.Game {
	home, away := homeScore, awayScore
	return models.Game{
		GameID:    id,
		SportKey:  "americanfootball_nfl",
		Season:    2025,
		Week:      1,
		HomeTeam:  "Buffalo Bills",
		AwayTeam:  "Miami Dolphins",
		Kickoff:   time.Date(2025, 9, 7, 18, 0, 0, 0, time.UTC),
		Venue:     "Highmark Stadium",
		Severity:  severity,
		HomeScore: &home,
		AwayScore: &away,
		Status:    models.GameStatusFinal,
	}
}

// NewTestOdd builds one priced outcome
func NewTestOdd(gameID, market, book, outcome string, price int, point *float64) models.RawOdds {
	now := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	return models.RawOdds{
		GameID:           gameID,
		SportKey:         "americanfootball_nfl",
		MarketKey:        market,
		BookKey:          book,
		OutcomeName:      outcome,
		Price:            price,
		Point:            point,
		VendorLastUpdate: now,
		ReceivedAt:       now,
	}
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}
