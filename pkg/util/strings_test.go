package util

import (
	"math"
	"testing"
)

func TestTradePageSymbol(t *testing.T) {
	cases := map[string]string{
		"BTC/USDT": "BTC_USDT",
		"BTC-USDT": "BTC_USDT",
		"BTCUSDT":  "BTC_USDT",
		"BTC_USDT": "BTC_USDT",
		"ETHBTC":   "ETHBTC",
	}
	for in, want := range cases {
		if got := TradePageSymbol(in); got != want {
			t.Fatalf("TradePageSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTradePageURL(t *testing.T) {
	want := "https://www.binance.com/vi/trade/BTC_USDT?type=spot"
	if got := TradePageURL("BTCUSDT"); got != want {
		t.Fatalf("url = %q", got)
	}
}

func TestFormatFixed(t *testing.T) {
	if got := FormatFixed(1.500, 2); got != "1.5" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFixed(2.0, 2); got != "2" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFixed(math.NaN(), 2); got != "--" {
		t.Fatalf("got %q", got)
	}
	if got := FormatFixed(math.Inf(1), 2); got != "--" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatVolume(t *testing.T) {
	cases := map[float64]string{
		999:     "999",
		1500:    "1.5K",
		2500000: "2.5M",
		3.2e9:   "3.2B",
	}
	for in, want := range cases {
		if got := FormatVolume(in); got != want {
			t.Fatalf("FormatVolume(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Fatalf("got %d", got)
	}
}
