package api

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
	"github.com/tgurley/smartline/pkg/testutil"
)

func TestBuildLinesResponse_TwoWayMarket(t *testing.T) {
	lines := []models.RawOdds{
		testutil.NewTestOdd("g1", "h2h", "draftkings", "Buffalo Bills", -120, nil),
		testutil.NewTestOdd("g1", "h2h", "fanduel", "Buffalo Bills", -110, nil),
		testutil.NewTestOdd("g1", "h2h", "draftkings", "Miami Dolphins", 100, nil),
		testutil.NewTestOdd("g1", "h2h", "fanduel", "Miami Dolphins", -105, nil),
	}

	resp := buildLinesResponse("g1", "h2h", lines)

	if len(resp.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(resp.Outcomes))
	}

	bills := resp.Outcomes[0]
	if bills.OutcomeName != "Buffalo Bills" {
		t.Fatalf("expected Bills first, got %s", bills.OutcomeName)
	}
	// -110 pays better than -120, so fanduel should rank first and be best
	if bills.Quotes[0].BookKey != "fanduel" || !bills.Quotes[0].Best {
		t.Errorf("expected fanduel best for Bills, got %+v", bills.Quotes[0])
	}
	if bills.Quotes[1].Best {
		t.Error("draftkings should not be flagged best for Bills")
	}

	dolphins := resp.Outcomes[1]
	if dolphins.Quotes[0].BookKey != "draftkings" || dolphins.Quotes[0].Price != 100 {
		t.Errorf("expected +100 draftkings best for Dolphins, got %+v", dolphins.Quotes[0])
	}

	// Fair probabilities strip the vig and sum to 1
	if sum := bills.FairProb + dolphins.FairProb; math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("fair probabilities should sum to 1, got %f", sum)
	}
	if bills.FairProb <= dolphins.FairProb {
		t.Errorf("the favorite should carry the higher fair probability: %f vs %f",
			bills.FairProb, dolphins.FairProb)
	}
}

func TestBuildLinesResponse_Empty(t *testing.T) {
	resp := buildLinesResponse("g1", "spreads", nil)
	if resp.Outcomes == nil {
		t.Error("outcomes should encode as an empty array, not null")
	}
	if len(resp.Outcomes) != 0 {
		t.Errorf("expected no outcomes, got %d", len(resp.Outcomes))
	}
}

func TestBuildLinesResponse_SkipsUnparseablePrices(t *testing.T) {
	lines := []models.RawOdds{
		testutil.NewTestOdd("g1", "h2h", "draftkings", "Buffalo Bills", 0, nil),
		testutil.NewTestOdd("g1", "h2h", "fanduel", "Buffalo Bills", -110, nil),
	}

	resp := buildLinesResponse("g1", "h2h", lines)
	if len(resp.Outcomes) != 1 || len(resp.Outcomes[0].Quotes) != 1 {
		t.Fatalf("invalid price should be dropped: %+v", resp.Outcomes)
	}
}

func TestValidateSelection(t *testing.T) {
	point := 44.5

	tests := []struct {
		name    string
		gameID  string
		market  string
		outcome string
		price   int
		point   *float64
		wantErr bool
	}{
		{"valid h2h", "g1", "h2h", "Buffalo Bills", -110, nil, false},
		{"valid total", "g1", "totals", "Over", -110, &point, false},
		{"missing game", "", "h2h", "Buffalo Bills", -110, nil, true},
		{"unknown market", "g1", "player_props", "Josh Allen", -110, nil, true},
		{"missing outcome", "g1", "h2h", "", -110, nil, true},
		{"bad price", "g1", "h2h", "Buffalo Bills", 50, nil, true},
		{"spread without point", "g1", "spreads", "Buffalo Bills", -110, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validateSelection(tt.gameID, tt.market, tt.outcome, tt.price, tt.point)
			if (msg != "") != tt.wantErr {
				t.Errorf("validateSelection = %q, wantErr %v", msg, tt.wantErr)
			}
		})
	}
}

func TestGoalRequestValidate(t *testing.T) {
	base := goalRequest{
		Name:         "December run",
		TargetAmount: decimal.NewFromInt(500),
		StartDate:    time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if msg := base.validate(); msg != "" {
		t.Errorf("valid goal rejected: %s", msg)
	}

	noName := base
	noName.Name = ""
	if noName.validate() == "" {
		t.Error("expected error for empty name")
	}

	badTarget := base
	badTarget.TargetAmount = decimal.Zero
	if badTarget.validate() == "" {
		t.Error("expected error for non-positive target")
	}

	inverted := base
	inverted.EndDate = base.StartDate.AddDate(0, 0, -1)
	if inverted.validate() == "" {
		t.Error("expected error when the window ends before it starts")
	}
}

func TestProgressPercent(t *testing.T) {
	d := decimal.NewFromInt

	tests := []struct {
		name   string
		profit decimal.Decimal
		target decimal.Decimal
		want   decimal.Decimal
	}{
		{"halfway", d(250), d(500), d(50)},
		{"negative profit clamps to zero", d(-120), d(500), d(0)},
		{"overshoot clamps to hundred", d(900), d(500), d(100)},
		{"exact target", d(500), d(500), d(100)},
		{"zero target", d(100), d(0), d(0)},
		{"rounds to cents", decimal.NewFromFloat(33.333), d(100), decimal.NewFromFloat(33.33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progressPercent(tt.profit, tt.target)
			if !got.Equal(tt.want) {
				t.Errorf("progressPercent(%s, %s) = %s, want %s", tt.profit, tt.target, got, tt.want)
			}
		})
	}
}
