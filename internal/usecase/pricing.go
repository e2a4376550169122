package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	// 8+ consecutive digits and nothing else: an identifier, not a price
	digitIDRegex = regexp.MustCompile(`^\d{8,}$`)

	// first numeric token in a price string
	numberTokenRegex = regexp.MustCompile(`\d+(\.\d+)?`)

	// currency markers accepted by the price-looking fallback scan
	currencyMarkRegex = regexp.MustCompile(`\$|£|€|US\s?\$|GBP|EUR`)

	// decimal amount like "12.99" or "12,99"
	decimalAmountRegex = regexp.MustCompile(`\d+[.,]\d{1,2}\b`)

	anyDigitRegex = regexp.MustCompile(`\d`)
)

// PriceBounds holds the sanity bounds for price normalization. Structured
// fields get the tighter bound because a value that survived key matching
// is already likelier to be a price; free-text fallbacks get a looser one.
type PriceBounds struct {
	CentsMin      int64
	CentsMax      int64
	StructuredMax float64
	StringMax     float64
}

// DefaultPriceBounds returns the bounds tuned for consumer-gadget catalogs
func DefaultPriceBounds() PriceBounds {
	return PriceBounds{
		CentsMin:      1000,
		CentsMax:      500000,
		StructuredMax: 5000,
		StringMax:     10000,
	}
}

// NormalizeNumeric applies the numeric tiers to a raw number:
// a whole number inside the cents window is integer cents and is divided
// by 100; otherwise the value is accepted as-is when inside the structured
// bound. Anything else is unusable.
func (b PriceBounds) NormalizeNumeric(n float64) float64 {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		whole := int64(n)
		if whole >= b.CentsMin && whole <= b.CentsMax {
			return n / 100
		}
	}
	if n > 0 && n < b.StructuredMax {
		return n
	}
	return 0
}

// ParsePriceString applies the string tier: reject identifier-shaped
// strings, normalize a comma decimal separator, extract the first numeric
// token, and bound the result.
func (b PriceBounds) ParsePriceString(s string) float64 {
	str := strings.TrimSpace(s)
	if str == "" {
		return 0
	}

	if digitIDRegex.MatchString(str) {
		return 0
	}

	// Localized decimal separator; only the first comma matters
	norm := strings.Replace(str, ",", ".", 1)

	token := numberTokenRegex.FindString(norm)
	if token == "" {
		return 0
	}

	n, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return 0
	}
	if n <= 0 || n > b.StringMax {
		return 0
	}
	return n
}

// LooksLikePrice reports whether a free-form string plausibly denotes a
// price: short, carries a digit, and shows either a currency marker or a
// decimal amount. All-digit identifier strings never qualify.
func (b PriceBounds) LooksLikePrice(s string) bool {
	str := strings.TrimSpace(s)
	if len(str) < 2 || len(str) > 40 {
		return false
	}
	if digitIDRegex.MatchString(str) {
		return false
	}
	if !anyDigitRegex.MatchString(str) {
		return false
	}
	return currencyMarkRegex.MatchString(str) || decimalAmountRegex.MatchString(str)
}
