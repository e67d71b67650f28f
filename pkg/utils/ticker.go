package utils

import (
	"strings"
)

// Common company-name aliases users type instead of the listed symbol.
var tickerAliases = map[string]string{
	"GOOGLE":    "GOOGL",
	"ALPHABET":  "GOOGL",
	"FACEBOOK":  "META",
	"APPLE":     "AAPL",
	"MICROSOFT": "MSFT",
	"TESLA":     "TSLA",
	"AMAZON":    "AMZN",
	"NVIDIA":    "NVDA",
	"NETFLIX":   "NFLX",
	"BERKSHIRE": "BRK-B",
	"BRK.B":     "BRK-B",
	"BRK.A":     "BRK-A",
}

// FMP reports venue names ("NasdaqGS", "New York Stock Exchange"); TradingView
// wants its own exchange prefixes.
var exchangeAliases = map[string]string{
	"NASDAQ":                  "NASDAQ",
	"NASDAQGS":                "NASDAQ",
	"NASDAQGM":                "NASDAQ",
	"NASDAQCM":                "NASDAQ",
	"NASDAQ GLOBAL SELECT":    "NASDAQ",
	"NYSE":                    "NYSE",
	"NEW YORK STOCK EXCHANGE": "NYSE",
	"NYSEARCA":                "AMEX",
	"NYSE ARCA":               "AMEX",
	"AMEX":                    "AMEX",
	"NYSEAMERICAN":            "AMEX",
	"OTC":                     "OTC",
	"LSE":                     "LSE",
	"TSX":                     "TSX",
}

// DefaultExchange is used when the listing venue is unknown.
const DefaultExchange = "NASDAQ"

// NormalizeTicker normalizes a user-input ticker: trims, upper-cases, drops a
// leading "$" and an "EXCHANGE:" prefix, and resolves common aliases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	if i := strings.LastIndex(ticker, ":"); i >= 0 {
		ticker = ticker[i+1:]
	}

	if canonical, ok := tickerAliases[ticker]; ok {
		return canonical
	}
	return ticker
}

// NormalizeExchange maps a data-provider exchange name to a TradingView prefix.
// Unknown names are upper-cased and passed through; empty falls back to NASDAQ.
func NormalizeExchange(exchange string) string {
	e := strings.TrimSpace(strings.ToUpper(exchange))
	if e == "" {
		return DefaultExchange
	}
	if mapped, ok := exchangeAliases[e]; ok {
		return mapped
	}
	return e
}

// TradingViewSymbol builds the "EXCHANGE:SYMBOL" form used by chart widgets.
func TradingViewSymbol(exchange, symbol string) string {
	return NormalizeExchange(exchange) + ":" + NormalizeTicker(symbol)
}
