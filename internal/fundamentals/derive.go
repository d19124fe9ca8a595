package fundamentals

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/seenimoa/newsdesk/pkg/models"
	"github.com/seenimoa/newsdesk/pkg/utils"
)

// Metric aliases, in preference order.
var (
	dividendPerShareKeys = []string{
		"dividendPerShareTTM",
		"dividendPerShareAnnual",
		"dividendTTM",
		"dividendPerShareTrailing12Months",
	}
	dividendYieldKeys = []string{
		"dividendYieldTTM",
		"dividendYieldIndicatedAnnual",
		"dividendYieldAnnual",
	}
	yearLowKeys  = []string{"52WeekLow", "fiftyTwoWeekLow"}
	yearHighKeys = []string{"52WeekHigh", "fiftyTwoWeekHigh"}
	peKeys       = []string{"peBasicExclExtraTTM", "peNormalizedAnnual"}
	epsKeys      = []string{"epsExclExtraItemsTTM", "epsBasicExclExtraItemsTTM"}
)

// marketCapMillionsBelow: Finnhub reports market cap in millions; values
// below this are scaled up by 1e6.
const marketCapMillionsBelow = 1e12

// number converts a decoded JSON value to float64. Numeric strings are
// accepted; null and anything else are not.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// firstNumber returns the first key whose value converts to a number.
func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

// firstNonZero returns the first non-zero numeric value. Zero counts as
// missing, so all-zero aliases report no value.
func firstNonZero(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := number(m[k]); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

func optional(f float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return models.Float(f)
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// MarketCap converts a profile market capitalization to absolute units.
func MarketCap(raw float64) float64 {
	if raw < marketCapMillionsBelow {
		return raw * 1e6
	}
	return raw
}

// DividendYield prefers dividend-per-share over price. Without it, a raw
// yield in (0, 1] is read as a ratio and one in (1, 20) as a percentage;
// anything else is discarded as implausible.
func DividendYield(metrics map[string]any, price float64) *float64 {
	if price != 0 {
		if dps, ok := firstNumber(metrics, dividendPerShareKeys...); ok {
			return models.Float(dps / price * 100)
		}
	}
	raw, ok := firstNumber(metrics, dividendYieldKeys...)
	if !ok {
		return nil
	}
	switch {
	case raw > 0 && raw <= 1:
		return models.Float(raw * 100)
	case raw > 1 && raw < 20:
		return models.Float(raw)
	default:
		return nil
	}
}

// Margin reads a margin metric as a percentage.
func Margin(metrics map[string]any, key string) *float64 {
	f, ok := number(metrics[key])
	if !ok {
		return nil
	}
	return models.Float(utils.RatioToPercent(f))
}
