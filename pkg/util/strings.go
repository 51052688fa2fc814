package util

import (
	"math"
	"strconv"
	"strings"
)

const tradePageBase = "https://www.binance.com/vi/trade/"

// TradePageSymbol normalizes a feed symbol into the venue trade-page
// identifier: separators become underscores, and a bare "<BASE>USDT"
// gains one between base and quote. "BTC/USDT", "BTC-USDT" and
// "BTCUSDT" all map to "BTC_USDT".
func TradePageSymbol(symbol string) string {
	if !strings.ContainsAny(symbol, "/_-") && strings.HasSuffix(symbol, "USDT") {
		return symbol[:len(symbol)-4] + "_USDT"
	}
	symbol = strings.ReplaceAll(symbol, "/", "_")
	return strings.ReplaceAll(symbol, "-", "_")
}

// TradePageURL builds the spot trade-page link for a symbol.
func TradePageURL(symbol string) string {
	return tradePageBase + TradePageSymbol(symbol) + "?type=spot"
}

// FormatFixed renders v with at most digits decimals, trailing zeros
// trimmed. Non-finite values render as the "--" placeholder.
func FormatFixed(v float64, digits int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	if digits <= 0 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	s := strconv.FormatFloat(v, 'f', digits, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

// FormatVolume abbreviates a volume with K/M/B suffixes.
func FormatVolume(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "--"
	}
	switch {
	case v >= 1e9:
		return FormatFixed(v/1e9, 2) + "B"
	case v >= 1e6:
		return FormatFixed(v/1e6, 2) + "M"
	case v >= 1e3:
		return FormatFixed(v/1e3, 2) + "K"
	default:
		return FormatFixed(v, 2)
	}
}

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
