package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// WeekOutcome is one settled wager tagged with its game week
type WeekOutcome struct {
	Week   int
	Result string
	Stake  decimal.Decimal
	Payout decimal.Decimal
}

// WeeklyRecord is one week of aggregated performance. DeltaProfit
// compares against the previous week that had any settled action.
type WeeklyRecord struct {
	Week        int             `json:"week"`
	Settled     int             `json:"settled"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Pushed      int             `json:"pushed"`
	Staked      decimal.Decimal `json:"staked"`
	Profit      decimal.Decimal `json:"profit"`
	ROIPercent  decimal.Decimal `json:"roi_percent"`
	DeltaProfit decimal.Decimal `json:"delta_profit"`
}

// WeeklyBreakdown groups settled outcomes by week, ordered ascending
func WeeklyBreakdown(outcomes []WeekOutcome) []WeeklyRecord {
	byWeek := make(map[int]*WeeklyRecord)

	for _, o := range outcomes {
		rec, ok := byWeek[o.Week]
		if !ok {
			rec = &WeeklyRecord{Week: o.Week}
			byWeek[o.Week] = rec
		}
		rec.Settled++
		switch o.Result {
		case models.ResultWon:
			rec.Won++
		case models.ResultLost:
			rec.Lost++
		case models.ResultPush:
			rec.Pushed++
		}
		rec.Staked = rec.Staked.Add(o.Stake)
		rec.Profit = rec.Profit.Add(o.Payout).Sub(o.Stake)
	}

	records := make([]WeeklyRecord, 0, len(byWeek))
	for _, rec := range byWeek {
		if rec.Staked.IsPositive() {
			rec.ROIPercent = rec.Profit.Div(rec.Staked).Mul(hundred).Round(2)
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Week < records[j].Week })

	for i := 1; i < len(records); i++ {
		records[i].DeltaProfit = records[i].Profit.Sub(records[i-1].Profit)
	}

	return records
}
