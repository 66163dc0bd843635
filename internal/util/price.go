package util

import (
	"math"
	"regexp"
	"strconv"
)

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice extracts the numeric portion of a price cell value. Currency
// symbols, thousands separators and surrounding text are stripped; whatever
// digits and dots remain must parse as a single number.
func ParsePrice(value string) (float64, bool) {
	cleaned := nonPriceChars.ReplaceAllString(value, "")
	if cleaned == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// Round2 rounds to two decimal places, the precision used throughout the
// price summary.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
