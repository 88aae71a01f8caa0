package settle_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/settle"
	"github.com/tgurley/smartline/pkg/models"
	"github.com/tgurley/smartline/pkg/testutil"
)

func TestGradeSelection_H2H(t *testing.T) {
	tests := []struct {
		name     string
		outcome  string
		home     int
		away     int
		expected string
	}{
		{"home win", "Buffalo Bills", 27, 20, models.ResultWon},
		{"away win", "Buffalo Bills", 20, 27, models.ResultLost},
		{"away side wins", "Miami Dolphins", 20, 27, models.ResultWon},
		{"tie pushes", "Buffalo Bills", 21, 21, models.ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewTestGame("g1", 0, tt.home, tt.away)
			result, err := settle.GradeSelection(settle.Selection{
				MarketKey:   "h2h",
				OutcomeName: tt.outcome,
			}, g)
			if err != nil {
				t.Fatalf("GradeSelection failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestGradeSelection_Spreads(t *testing.T) {
	tests := []struct {
		name     string
		outcome  string
		point    float64
		home     int
		away     int
		expected string
	}{
		{"favorite covers", "Buffalo Bills", -6.5, 30, 20, models.ResultWon},
		{"favorite fails to cover", "Buffalo Bills", -6.5, 24, 20, models.ResultLost},
		{"dog covers in a loss", "Miami Dolphins", 6.5, 24, 20, models.ResultWon},
		{"lands on the number", "Buffalo Bills", -7.0, 27, 20, models.ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewTestGame("g1", 0, tt.home, tt.away)
			point := tt.point
			result, err := settle.GradeSelection(settle.Selection{
				MarketKey:   "spreads",
				OutcomeName: tt.outcome,
				Point:       &point,
			}, g)
			if err != nil {
				t.Fatalf("GradeSelection failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestGradeSelection_Totals(t *testing.T) {
	tests := []struct {
		name     string
		outcome  string
		point    float64
		home     int
		away     int
		expected string
	}{
		{"over hits", "Over", 44.5, 27, 20, models.ResultWon},
		{"over misses", "Over", 48.5, 27, 20, models.ResultLost},
		{"under hits", "Under", 48.5, 27, 20, models.ResultWon},
		{"exact total pushes", "Over", 47.0, 27, 20, models.ResultPush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewTestGame("g1", 0, tt.home, tt.away)
			point := tt.point
			result, err := settle.GradeSelection(settle.Selection{
				MarketKey:   "totals",
				OutcomeName: tt.outcome,
				Point:       &point,
			}, g)
			if err != nil {
				t.Fatalf("GradeSelection failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestGradeSelection_Errors(t *testing.T) {
	g := testutil.NewTestGame("g1", 0, 27, 20)

	if _, err := settle.GradeSelection(settle.Selection{MarketKey: "spreads", OutcomeName: "Buffalo Bills"}, g); err == nil {
		t.Error("expected error for spread without point")
	}

	point := 44.5
	if _, err := settle.GradeSelection(settle.Selection{MarketKey: "totals", OutcomeName: "Sideways", Point: &point}, g); err == nil {
		t.Error("expected error for unknown totals outcome")
	}

	pending := testutil.NewTestGame("g1", 0, 0, 0)
	pending.HomeScore = nil
	pending.AwayScore = nil
	if _, err := settle.GradeSelection(settle.Selection{MarketKey: "h2h", OutcomeName: "Buffalo Bills"}, pending); err == nil {
		t.Error("expected error for game without a final score")
	}
}

func TestSinglePayout(t *testing.T) {
	stake := decimal.NewFromInt(100)

	won, err := settle.SinglePayout(stake, -110, models.ResultWon)
	if err != nil {
		t.Fatalf("SinglePayout failed: %v", err)
	}
	if !won.Equal(decimal.NewFromFloat(190.91)) {
		t.Errorf("expected 190.91 for -110 win, got %s", won)
	}

	push, err := settle.SinglePayout(stake, -110, models.ResultPush)
	if err != nil {
		t.Fatalf("SinglePayout failed: %v", err)
	}
	if !push.Equal(stake) {
		t.Errorf("expected stake back on push, got %s", push)
	}

	lost, err := settle.SinglePayout(stake, -110, models.ResultLost)
	if err != nil {
		t.Fatalf("SinglePayout failed: %v", err)
	}
	if !lost.IsZero() {
		t.Errorf("expected zero on loss, got %s", lost)
	}
}

func TestSettleParlay(t *testing.T) {
	stake := decimal.NewFromInt(50)

	leg := func(result string, price int) models.ParlayLeg {
		return models.ParlayLeg{Result: result, Price: price}
	}

	t.Run("lost leg loses the ticket immediately", func(t *testing.T) {
		result, payout, err := settle.SettleParlay(stake, []models.ParlayLeg{
			leg(models.ResultLost, -110),
			leg(models.ResultPending, -110),
		})
		if err != nil {
			t.Fatalf("SettleParlay failed: %v", err)
		}
		if result != models.ResultLost || !payout.IsZero() {
			t.Errorf("expected lost with zero payout, got %s %s", result, payout)
		}
	})

	t.Run("pending leg keeps the ticket open", func(t *testing.T) {
		result, _, err := settle.SettleParlay(stake, []models.ParlayLeg{
			leg(models.ResultWon, -110),
			leg(models.ResultPending, +150),
		})
		if err != nil {
			t.Fatalf("SettleParlay failed: %v", err)
		}
		if result != models.ResultPending {
			t.Errorf("expected pending, got %s", result)
		}
	})

	t.Run("push legs drop out of the price", func(t *testing.T) {
		result, payout, err := settle.SettleParlay(stake, []models.ParlayLeg{
			leg(models.ResultWon, 100), // 2.0
			leg(models.ResultPush, -110),
		})
		if err != nil {
			t.Fatalf("SettleParlay failed: %v", err)
		}
		if result != models.ResultWon {
			t.Fatalf("expected won, got %s", result)
		}
		if !payout.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected payout 100 at even money, got %s", payout)
		}
	})

	t.Run("all pushes push the ticket", func(t *testing.T) {
		result, payout, err := settle.SettleParlay(stake, []models.ParlayLeg{
			leg(models.ResultPush, -110),
			leg(models.ResultPush, +120),
		})
		if err != nil {
			t.Fatalf("SettleParlay failed: %v", err)
		}
		if result != models.ResultPush || !payout.Equal(stake) {
			t.Errorf("expected push with stake back, got %s %s", result, payout)
		}
	})

	t.Run("all wins multiply", func(t *testing.T) {
		result, payout, err := settle.SettleParlay(stake, []models.ParlayLeg{
			leg(models.ResultWon, 100), // 2.0
			leg(models.ResultWon, 150), // 2.5
		})
		if err != nil {
			t.Fatalf("SettleParlay failed: %v", err)
		}
		if result != models.ResultWon {
			t.Fatalf("expected won, got %s", result)
		}
		if !payout.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected payout 250, got %s", payout)
		}
	})
}
