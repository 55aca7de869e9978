package exchange

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/market"
)

func TestParseKline(t *testing.T) {
	t.Parallel()

	var ev klineEvent
	err := json.Unmarshal([]byte(`{
		"e": "kline", "E": 1577836805000, "s": "BTCUSDT",
		"k": {
			"t": 1577836800000, "T": 1577840399999, "s": "BTCUSDT", "i": "1h",
			"o": "100.5", "h": "105.0", "l": "95.5", "c": "101.0", "v": "12.3",
			"x": true
		}
	}`), &ev)
	assert.NoError(t, err)
	assert.True(t, ev.Kline.Closed)

	bar, ok := parseKline(ev)
	assert.True(t, ok)
	assert.Equal(t, market.Bar{
		Timestamp: 1577836800000,
		Open:      100.5,
		High:      105,
		Low:       95.5,
		Close:     101,
		Volume:    12.3,
	}, bar)
}

func TestParseKlineBadField(t *testing.T) {
	t.Parallel()

	var ev klineEvent
	ev.Kline.Open = "garbage"
	_, ok := parseKline(ev)
	assert.False(t, ok)
}
