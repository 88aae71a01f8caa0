package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// ProfitPoint is one settled wager on the running-profit series
type ProfitPoint struct {
	SettledAt time.Time       `json:"settled_at"`
	Net       decimal.Decimal `json:"net"`
	Running   decimal.Decimal `json:"running_profit"`
}

// TrendReport carries the running-profit series and the endpoints of the
// least-squares line fitted over it, ready to draw as a chart overlay.
// Trend fields are nil with fewer than two settled wagers.
type TrendReport struct {
	Points     []ProfitPoint `json:"points"`
	Slope      *float64      `json:"slope"`
	TrendStart *float64      `json:"trend_start"`
	TrendEnd   *float64      `json:"trend_end"`
}

// ProfitTrend orders settled wagers by settlement time, accumulates running
// profit and fits a trend line over the series. Pending wagers are skipped.
func ProfitTrend(bets []models.Bet, parlays []models.Parlay) *TrendReport {
	type wager struct {
		at  time.Time
		net decimal.Decimal
	}

	var wagers []wager
	for _, b := range bets {
		if b.Result == models.ResultPending || b.SettledAt == nil {
			continue
		}
		wagers = append(wagers, wager{at: *b.SettledAt, net: b.Payout.Sub(b.Stake)})
	}
	for _, p := range parlays {
		if p.Result == models.ResultPending || p.SettledAt == nil {
			continue
		}
		wagers = append(wagers, wager{at: *p.SettledAt, net: p.Payout.Sub(p.Stake)})
	}

	sort.Slice(wagers, func(i, j int) bool { return wagers[i].at.Before(wagers[j].at) })

	report := &TrendReport{Points: make([]ProfitPoint, 0, len(wagers))}

	running := decimal.Zero
	xs := make([]float64, 0, len(wagers))
	ys := make([]float64, 0, len(wagers))
	for i, wg := range wagers {
		running = running.Add(wg.net)
		report.Points = append(report.Points, ProfitPoint{
			SettledAt: wg.at,
			Net:       wg.net,
			Running:   running,
		})
		y, _ := running.Float64()
		xs = append(xs, float64(i))
		ys = append(ys, y)
	}

	if len(wagers) < 2 {
		return report
	}

	slope, intercept, _ := leastSquares(xs, ys)
	start := intercept
	end := intercept + slope*float64(len(wagers)-1)
	report.Slope = &slope
	report.TrendStart = &start
	report.TrendEnd = &end
	return report
}
