package bankroll

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tgurley/smartline/pkg/models"
)

// UnitSize resolves the current betting unit from settings. Fixed mode
// returns the configured dollar amount; percent mode sizes against the
// live balance, so the unit shrinks and grows with the bankroll. A
// non-positive balance in percent mode yields a zero unit.
func UnitSize(st *models.Settings, balance decimal.Decimal) decimal.Decimal {
	switch st.UnitMode {
	case models.UnitPercent:
		if !balance.IsPositive() {
			return decimal.Zero
		}
		return balance.Mul(st.UnitValue).Div(decimal.NewFromInt(100)).Round(2)
	default:
		return st.UnitValue.Round(2)
	}
}

// FormatUSD renders an amount as "$1,234.50"; negatives as "-$12.00"
func FormatUSD(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	dot := strings.IndexByte(fixed, '.')
	whole, frac := fixed[:dot], fixed[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
		if len(whole) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(whole); i += 3 {
		b.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			b.WriteByte(',')
		}
	}

	b.WriteString(frac)
	return b.String()
}
