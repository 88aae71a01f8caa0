package analytics

import (
	"math"

	"github.com/tgurley/smartline/pkg/models"
)

// SeverityBucket aggregates total points for one severity band
type SeverityBucket struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	AvgTotal float64 `json:"avg_total"`
	MinSev   int     `json:"-"`
	MaxSev   int     `json:"-"` // -1 means unbounded
}

// WeatherReport is the weather-impact analysis over outdoor finals. The
// trend fields are nil when fewer than two scored games are available.
type WeatherReport struct {
	Slope      *float64         `json:"slope"`
	Intercept  *float64         `json:"intercept"`
	RSquared   *float64         `json:"r_squared"`
	SampleSize int              `json:"sample_size"`
	Buckets    []SeverityBucket `json:"buckets"`
}

// WeatherImpact fits total points against weather severity with ordinary
// least squares and summarizes the severity bands 0, 1-2 and 3+. Games
// without a final score are skipped; dome games should not be passed in.
func WeatherImpact(games []models.Game) *WeatherReport {
	type obs struct {
		sev   int
		total int
	}

	var sample []obs
	for _, g := range games {
		total, ok := g.TotalPoints()
		if !ok {
			continue
		}
		sample = append(sample, obs{sev: g.Severity, total: total})
	}

	report := &WeatherReport{
		SampleSize: len(sample),
		Buckets: []SeverityBucket{
			{Label: "0", MinSev: 0, MaxSev: 0},
			{Label: "1-2", MinSev: 1, MaxSev: 2},
			{Label: "3+", MinSev: 3, MaxSev: -1},
		},
	}

	sums := make([]int, len(report.Buckets))
	for _, o := range sample {
		for i := range report.Buckets {
			if o.sev < report.Buckets[i].MinSev {
				continue
			}
			if report.Buckets[i].MaxSev >= 0 && o.sev > report.Buckets[i].MaxSev {
				continue
			}
			report.Buckets[i].Count++
			sums[i] += o.total
			break
		}
	}
	for i := range report.Buckets {
		if report.Buckets[i].Count > 0 {
			report.Buckets[i].AvgTotal = float64(sums[i]) / float64(report.Buckets[i].Count)
		}
	}

	if len(sample) < 2 {
		return report
	}

	xs := make([]float64, len(sample))
	ys := make([]float64, len(sample))
	for i, o := range sample {
		xs[i] = float64(o.sev)
		ys[i] = float64(o.total)
	}

	slope, intercept, rsq := leastSquares(xs, ys)
	report.Slope = &slope
	report.Intercept = &intercept
	report.RSquared = &rsq
	return report
}

// leastSquares fits y = slope*x + intercept over equal-length series.
// A flat x column has no defined slope; the fit degrades to the mean line
// (slope 0, intercept mean of y). Callers guarantee len >= 2.
func leastSquares(xs, ys []float64) (slope, intercept, rsq float64) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var ssXX, ssXY, ssYY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		ssXX += dx * dx
		ssXY += dx * dy
		ssYY += dy * dy
	}

	if ssXX == 0 {
		return 0, meanY, 0
	}

	slope = ssXY / ssXX
	intercept = meanY - slope*meanX
	if ssYY > 0 {
		r := ssXY / math.Sqrt(ssXX*ssYY)
		rsq = r * r
	}
	return slope, intercept, rsq
}
