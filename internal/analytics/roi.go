package analytics

import (
	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// ROISummary aggregates settled wager performance. Pushes count toward
// staked and returned but are excluded from the win rate denominator.
type ROISummary struct {
	Staked         decimal.Decimal `json:"staked"`
	Returned       decimal.Decimal `json:"returned"`
	Net            decimal.Decimal `json:"net"`
	ROIPercent     decimal.Decimal `json:"roi_percent"`
	WinRatePercent decimal.Decimal `json:"win_rate_percent"`
	Settled        int             `json:"settled"`
	Won            int             `json:"won"`
	Lost           int             `json:"lost"`
	Pushed         int             `json:"pushed"`
}

var hundred = decimal.NewFromInt(100)

// ComputeROI summarizes settled singles and parlays together. Pending
// wagers are ignored.
func ComputeROI(bets []models.Bet, parlays []models.Parlay) ROISummary {
	var sum ROISummary

	for _, b := range bets {
		sum.add(b.Result, b.Stake, b.Payout)
	}
	for _, p := range parlays {
		sum.add(p.Result, p.Stake, p.Payout)
	}

	sum.Net = sum.Returned.Sub(sum.Staked)
	if sum.Staked.IsPositive() {
		sum.ROIPercent = sum.Net.Div(sum.Staked).Mul(hundred).Round(2)
	}
	if decided := sum.Won + sum.Lost; decided > 0 {
		sum.WinRatePercent = decimal.NewFromInt(int64(sum.Won)).
			Div(decimal.NewFromInt(int64(decided))).Mul(hundred).Round(2)
	}

	return sum
}

func (r *ROISummary) add(result string, stake, payout decimal.Decimal) {
	switch result {
	case models.ResultWon:
		r.Won++
	case models.ResultLost:
		r.Lost++
	case models.ResultPush:
		r.Pushed++
	default:
		return
	}
	r.Settled++
	r.Staked = r.Staked.Add(stake)
	r.Returned = r.Returned.Add(payout)
}
