package football_nfl

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgurley/smartline/pkg/models"
)

// ValidateGame checks if an NFL game record is valid
func ValidateGame(game *models.Game) error {
	if game.SportKey != "americanfootball_nfl" {
		return fmt.Errorf("invalid sport key: expected americanfootball_nfl, got %s", game.SportKey)
	}

	if game.HomeTeam == "" {
		return fmt.Errorf("home team cannot be empty")
	}

	if game.AwayTeam == "" {
		return fmt.Errorf("away team cannot be empty")
	}

	if game.HomeTeam == game.AwayTeam {
		return fmt.Errorf("home and away teams cannot be the same")
	}

	if game.Severity < 0 {
		return fmt.Errorf("severity cannot be negative")
	}

	if game.Dome && game.Severity != 0 {
		return fmt.Errorf("dome game cannot carry weather severity")
	}

	return nil
}

// NormalizeTeamName standardizes team names from vendor feeds
// Handles variations like "LA Rams" vs "Los Angeles Rams"
func NormalizeTeamName(name string) string {
	name = strings.TrimSpace(name)

	replacements := map[string]string{
		"LA Rams":       "Los Angeles Rams",
		"LA Chargers":   "Los Angeles Chargers",
		"NY Giants":     "New York Giants",
		"NY Jets":       "New York Jets",
		"NE Patriots":   "New England Patriots",
		"TB Buccaneers": "Tampa Bay Buccaneers",
		"KC Chiefs":     "Kansas City Chiefs",
		"GB Packers":    "Green Bay Packers",
		"NO Saints":     "New Orleans Saints",
		"SF 49ers":      "San Francisco 49ers",
		"Washington Football Team": "Washington Commanders",
		"Washington Redskins":      "Washington Commanders",
		"Oakland Raiders":          "Las Vegas Raiders",
	}

	if normalized, ok := replacements[name]; ok {
		return normalized
	}

	return name
}

// SeasonWeek derives (season, week) from kickoff time.
// The NFL season label is the calendar year it starts in; games in
// January and February belong to the prior season. Week numbering is
// approximate: counted in 7-day steps from the Thursday after Labor Day,
// clamped to [1, 23] to cover preseason spillover and the postseason.
func SeasonWeek(kickoff time.Time) (int, int) {
	kickoff = kickoff.UTC()
	season := kickoff.Year()
	if kickoff.Month() < time.August {
		season--
	}

	start := seasonStart(season)
	days := int(kickoff.Sub(start).Hours() / 24)
	week := days/7 + 1
	if week < 1 {
		week = 1
	}
	if week > 23 {
		week = 23
	}
	return season, week
}

// seasonStart returns the Thursday after the first Monday of September.
func seasonStart(season int) time.Time {
	d := time.Date(season, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	// Labor Day + 3 days = kickoff Thursday
	return d.AddDate(0, 0, 3)
}

// IsRegularSeason determines if a date falls within the NFL regular season
// This is a simplified version - real impl would query a calendar
func IsRegularSeason(t time.Time) bool {
	month := t.Month()
	// NFL regular season roughly Sep-early Jan
	return month >= time.September || month == time.January
}
