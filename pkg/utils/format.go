// Package utils provides formatting helpers shared by the newsdesk renderers.
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HumanNumber abbreviates a magnitude with T/B/M/K suffixes.
// e.g., 2.5e12 → "2.50T", 5e9 → "5.00B", 950 → "950.00"
func HumanNumber(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", n/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", n/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", n/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", n/1e3)
	default:
		return fmt.Sprintf("%.2f", n)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatChange renders the move from past to current as "+1.23 (+0.45%)".
// It returns "" when past is zero.
func FormatChange(current, past float64) string {
	if past == 0 {
		return ""
	}
	diff := current - past
	pct := diff / past * 100
	sign := ""
	if diff >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f (%s%.2f%%)", sign, diff, sign, pct)
}

// RatioToPercent scales values in [-1, 1] to a percentage; larger
// magnitudes are assumed to already be percentages.
func RatioToPercent(v float64) float64 {
	if math.Abs(v) <= 1 {
		return v * 100
	}
	return v
}

// FormatPrice formats with two decimals, or "n/a" for an unknown value.
func FormatPrice(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SplitSymbols parses a comma or whitespace separated symbol list,
// dropping blanks and duplicates while keeping order.
func SplitSymbols(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		sym := NormalizeSymbol(f)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// FormatNumber prints v with the shortest exact decimal representation.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
