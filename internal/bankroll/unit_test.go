package bankroll_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/internal/bankroll"
	"github.com/tgurley/smartline/pkg/models"
)

func TestUnitSize_Fixed(t *testing.T) {
	settings := &models.Settings{
		UnitMode:  models.UnitFixed,
		UnitValue: decimal.NewFromInt(25),
	}

	unit := bankroll.UnitSize(settings, decimal.NewFromInt(10000))
	if !unit.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected fixed unit 25, got %s", unit)
	}

	// Balance has no bearing on a fixed unit
	unit = bankroll.UnitSize(settings, decimal.Zero)
	if !unit.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected fixed unit 25 at zero balance, got %s", unit)
	}
}

func TestUnitSize_Percent(t *testing.T) {
	settings := &models.Settings{
		UnitMode:  models.UnitPercent,
		UnitValue: decimal.NewFromInt(2),
	}

	unit := bankroll.UnitSize(settings, decimal.NewFromInt(1500))
	if !unit.Equal(decimal.NewFromInt(30)) {
		t.Errorf("expected 2%% of 1500 = 30, got %s", unit)
	}

	unit = bankroll.UnitSize(settings, decimal.NewFromInt(-200))
	if !unit.IsZero() {
		t.Errorf("expected zero unit on negative balance, got %s", unit)
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "$0.00"},
		{"12", "$12.00"},
		{"1234.5", "$1,234.50"},
		{"1234567.89", "$1,234,567.89"},
		{"-12", "-$12.00"},
		{"-1234.5", "-$1,234.50"},
		{"999.999", "$1,000.00"},
	}

	for _, tt := range tests {
		amount, err := decimal.NewFromString(tt.amount)
		if err != nil {
			t.Fatalf("bad fixture %s: %v", tt.amount, err)
		}
		if got := bankroll.FormatUSD(amount); got != tt.expected {
			t.Errorf("FormatUSD(%s) = %s, want %s", tt.amount, got, tt.expected)
		}
	}
}
