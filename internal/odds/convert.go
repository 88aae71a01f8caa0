// Package odds holds pure price conversions shared by the line shopping
// comparison, delta detection and bet settlement.
package odds

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts an American price to decimal odds.
// -110 -> 1.909, +150 -> 2.50. Zero and prices inside (-100, 100) are
// not valid American odds.
func AmericanToDecimal(price int) (float64, error) {
	switch {
	case price >= 100:
		return 1.0 + float64(price)/100.0, nil
	case price <= -100:
		return 1.0 + 100.0/float64(-price), nil
	default:
		return 0, fmt.Errorf("invalid American price: %d", price)
	}
}

// DecimalToAmerican converts decimal odds to the nearest American price.
func DecimalToAmerican(dec float64) (int, error) {
	if dec <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: %.4f", dec)
	}
	if dec >= 2.0 {
		return int(math.Round((dec - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (dec - 1.0))), nil
}

// ImpliedProbability returns the bookmaker's implied win probability for
// an American price, vig included.
func ImpliedProbability(price int) (float64, error) {
	dec, err := AmericanToDecimal(price)
	if err != nil {
		return 0, err
	}
	return 1.0 / dec, nil
}

// RemoveVig2 converts two implied probabilities to fair probabilities by
// stripping the bookmaker's overround.
func RemoveVig2(a, b float64) (float64, float64) {
	total := a + b
	if total <= 0 {
		return 0, 0
	}
	return a / total, b / total
}

// EdgePercent is the percentage edge of taking priced odds against a fair
// probability: positive when the price pays better than fair.
func EdgePercent(price int, fairProb float64) (float64, error) {
	if fairProb <= 0 || fairProb >= 1 {
		return 0, fmt.Errorf("fair probability out of range: %.4f", fairProb)
	}
	dec, err := AmericanToDecimal(price)
	if err != nil {
		return 0, err
	}
	return (dec*fairProb - 1.0) * 100.0, nil
}

// MovementPercent is the relative move between two American prices,
// measured in decimal-odds space so a 1.9 -> 1.5 drop registers as a much
// larger move than 9.5 -> 9.1.
func MovementPercent(oldPrice, newPrice int) float64 {
	oldDec, err1 := AmericanToDecimal(oldPrice)
	newDec, err2 := AmericanToDecimal(newPrice)
	if err1 != nil || err2 != nil || oldDec == 0 {
		return 0
	}
	return math.Abs(newDec-oldDec) / oldDec * 100.0
}

// ParlayDecimal multiplies leg decimal odds into the combined parlay
// price. Legs priced at exactly 1.0 (pushes dropped from the ticket)
// contribute nothing.
func ParlayDecimal(legPrices []int) (float64, error) {
	combined := 1.0
	for _, p := range legPrices {
		dec, err := AmericanToDecimal(p)
		if err != nil {
			return 0, err
		}
		combined *= dec
	}
	return combined, nil
}
