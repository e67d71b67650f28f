// Package utils provides formatting and ticker helpers shared by the CLI,
// the API and the report renderers.
package utils

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NA is shown in place of a missing figure.
const NA = "N/A"

// FormatCurrency formats a dollar amount with a T/B/M/K suffix.
// e.g., 8e11 → "$800.00B", 248.5 → "$248.50"
func FormatCurrency(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = math.Abs(v)
	}
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%s$%.2fT", sign, v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.2fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// FormatPrice formats a per-share amount, e.g. 248.5 → "$248.50".
// Zero is treated as missing.
func FormatPrice(v float64) string {
	if v == 0 {
		return NA
	}
	return fmt.Sprintf("$%.2f", v)
}

// FormatPercent formats a ratio as a percentage: 0.1234 → "12.34%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatChange formats an already-scaled percentage change with sign.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRatio formats a multiple with one decimal. Zero is treated as missing.
func FormatRatio(v float64) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return fmt.Sprintf("%.1f", v)
}

// FormatVolume formats share volume in millions: 98_760_000 → "98.8M".
func FormatVolume(volume int64) string {
	return fmt.Sprintf("%.1fM", float64(volume)/1e6)
}

// FormatInteger formats n with US digit grouping: 140473 → "140,473".
func FormatInteger(n int64) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("%d", n)
}

// CAGR returns the compound annual growth rate between two values as a ratio.
// It returns 0 when any input is not positive.
func CAGR(start, end float64, years float64) float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(end/start, 1/years) - 1
}

// GrowthRate returns (current-previous)/previous, or 0 when previous is 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous
}

// TruncateSentences keeps the first n ". "-separated sentences of text.
// Text with n or fewer sentences is returned unchanged.
func TruncateSentences(text string, n int) string {
	sentences := strings.Split(text, ". ")
	if len(sentences) <= n {
		return text
	}
	return strings.Join(sentences[:n], ". ") + "."
}

// NeedsExpansion reports whether TruncateSentences(text, n) would shorten text.
func NeedsExpansion(text string, n int) bool {
	return len(strings.Split(text, ". ")) > n
}

// StripScheme removes a leading http:// or https:// for display.
func StripScheme(url string) string {
	url = strings.TrimPrefix(url, "https://")
	return strings.TrimPrefix(url, "http://")
}
