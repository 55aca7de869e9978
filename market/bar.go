package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Bar is one interval of OHLCV history. Timestamp is the bar's open time in
// Unix epoch milliseconds. Within one (symbol, timeframe) series timestamps
// are strictly increasing and evenly spaced by the timeframe duration.
type Bar struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Time returns the bar's open time as a time.Time in UTC.
func (b Bar) Time() time.Time {
	return time.UnixMilli(b.Timestamp).UTC()
}

// Ticker is a point-in-time last-price quote for a symbol.
type Ticker struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	Timestamp int64   `json:"timestamp"`
}

// ParseTimeframe converts a ccxt-style timeframe label ("1m", "15m", "1h",
// "4h", "1d", "1w") into a duration.
func ParseTimeframe(tf string) (time.Duration, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("bad timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("bad timeframe %q", tf)
	}
	var unit time.Duration
	switch tf[len(tf)-1] {
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("bad timeframe %q", tf)
	}
	return time.Duration(n) * unit, nil
}

// SymbolKey strips pair separators for use in filenames:
// "BTC/USDT" -> "BTCUSDT".
func SymbolKey(symbol string) string {
	return strings.NewReplacer("/", "", "-", "", ":", "").Replace(symbol)
}
