// Package settle owns the game result lifecycle: status transitions,
// closing line capture, and grading/settling bets once scores are final.
package settle

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/odds"
	"github.com/tgurley/smartline/pkg/models"
)

// Selection is the subset of a bet needed to grade it
type Selection struct {
	MarketKey   string
	OutcomeName string
	Point       *float64
}

// GradeSelection grades one selection against a final score.
// Rules per market:
//   - h2h: outcome names a team; that team must win. A tied game pushes.
//   - spreads: outcome names a team; team score plus the point must beat
//     the opponent. Landing exactly on the number pushes.
//   - totals: outcome is Over/Under against the point. Exact total pushes.
func GradeSelection(sel Selection, g models.Game) (string, error) {
	total, ok := g.TotalPoints()
	if !ok {
		return "", fmt.Errorf("game %s has no final score", g.GameID)
	}

	home := *g.HomeScore
	away := *g.AwayScore

	switch sel.MarketKey {
	case "h2h":
		if home == away {
			return models.ResultPush, nil
		}
		winner := g.HomeTeam
		if away > home {
			winner = g.AwayTeam
		}
		if teamMatches(sel.OutcomeName, winner) {
			return models.ResultWon, nil
		}
		return models.ResultLost, nil

	case "spreads":
		if sel.Point == nil {
			return "", fmt.Errorf("spread selection missing point")
		}
		var teamScore, oppScore int
		switch {
		case teamMatches(sel.OutcomeName, g.HomeTeam):
			teamScore, oppScore = home, away
		case teamMatches(sel.OutcomeName, g.AwayTeam):
			teamScore, oppScore = away, home
		default:
			return "", fmt.Errorf("spread outcome %q matches neither team", sel.OutcomeName)
		}

		margin := float64(teamScore) + *sel.Point - float64(oppScore)
		switch {
		case margin > 0:
			return models.ResultWon, nil
		case margin < 0:
			return models.ResultLost, nil
		default:
			return models.ResultPush, nil
		}

	case "totals":
		if sel.Point == nil {
			return "", fmt.Errorf("total selection missing point")
		}
		diff := float64(total) - *sel.Point
		over := strings.EqualFold(strings.TrimSpace(sel.OutcomeName), "Over")
		under := strings.EqualFold(strings.TrimSpace(sel.OutcomeName), "Under")
		if !over && !under {
			return "", fmt.Errorf("total outcome %q is neither Over nor Under", sel.OutcomeName)
		}
		switch {
		case diff == 0:
			return models.ResultPush, nil
		case (diff > 0) == over:
			return models.ResultWon, nil
		default:
			return models.ResultLost, nil
		}

	default:
		return "", fmt.Errorf("cannot grade market %q", sel.MarketKey)
	}
}

// SinglePayout computes the return for a settled single bet: full payout
// (stake included) for a win, stake back on a push, zero on a loss.
func SinglePayout(stake decimal.Decimal, price int, result string) (decimal.Decimal, error) {
	switch result {
	case models.ResultWon:
		dec, err := odds.AmericanToDecimal(price)
		if err != nil {
			return decimal.Zero, err
		}
		return stake.Mul(decimal.NewFromFloat(dec)).Round(2), nil
	case models.ResultPush:
		return stake, nil
	case models.ResultLost:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("cannot compute payout for result %q", result)
	}
}

// SettleParlay resolves a parlay ticket from its graded legs.
// One lost leg loses the ticket even while other legs are pending. The
// ticket stays pending until every non-lost leg is determined. Push legs
// drop off the ticket; if every leg pushes the ticket pushes.
func SettleParlay(stake decimal.Decimal, legs []models.ParlayLeg) (result string, payout decimal.Decimal, err error) {
	pendingLegs := 0
	var livePrices []int

	for _, leg := range legs {
		switch leg.Result {
		case models.ResultLost:
			return models.ResultLost, decimal.Zero, nil
		case models.ResultPending:
			pendingLegs++
		case models.ResultWon:
			livePrices = append(livePrices, leg.Price)
		case models.ResultPush:
			// leg drops out of the combined price
		default:
			return "", decimal.Zero, fmt.Errorf("unknown leg result %q", leg.Result)
		}
	}

	if pendingLegs > 0 {
		return models.ResultPending, decimal.Zero, nil
	}

	if len(livePrices) == 0 {
		return models.ResultPush, stake, nil
	}

	combined, err := odds.ParlayDecimal(livePrices)
	if err != nil {
		return "", decimal.Zero, err
	}

	return models.ResultWon, stake.Mul(decimal.NewFromFloat(combined)).Round(2), nil
}

// teamMatches compares a vendor outcome name against a team name,
// tolerating surrounding whitespace and case differences
func teamMatches(outcome, team string) bool {
	return strings.EqualFold(strings.TrimSpace(outcome), strings.TrimSpace(team))
}
