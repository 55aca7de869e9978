package market

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ulikunitz/xz"
)

const hourMs = int64(3600_000)

// testSeries generates n hourly bars starting at base with open = 100+i.
func testSeries(base int64, n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		o := 100 + float64(i)
		bars[i] = Bar{
			Timestamp: base + int64(i)*hourMs,
			Open:      o,
			High:      o + 5,
			Low:       o - 5,
			Close:     o + 1,
			Volume:    10,
		}
	}
	return bars
}

func writeHistory(t *testing.T, dir, symbol, timeframe string, bars []Bar) {
	t.Helper()
	assert.NoError(t, WriteBars(HistoryPath(dir, symbol, timeframe), bars))
}

func TestStoreLoadAndLocate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	writeHistory(t, dir, "BTC/USDT", "1h", testSeries(base, 10))

	s := NewStore(dir)
	bars, err := s.Load("BTC/USDT", "1h")
	assert.NoError(t, err)
	assert.Len(t, bars, 10)

	tests := []struct {
		name string
		asOf int64
		idx  int
	}{
		{name: "exact_first", asOf: base, idx: 0},
		{name: "mid_bar", asOf: base + hourMs/2, idx: 0},
		{name: "exact_third", asOf: base + 2*hourMs, idx: 2},
		{name: "past_end", asOf: base + 100*hourMs, idx: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, idx, err := s.Locate("BTC/USDT", "1h", tt.asOf)
			assert.NoError(t, err)
			assert.Equal(t, tt.idx, idx)
		})
	}
}

func TestStoreLocateBeforeSeries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := int64(1_600_000_000_000)
	writeHistory(t, dir, "BTC/USDT", "1h", testSeries(base, 3))

	s := NewStore(dir)
	_, _, err := s.Locate("BTC/USDT", "1h", base-1)
	assert.ErrorIs(t, err, ErrDataGap)
}

func TestStoreMissingHistory(t *testing.T) {
	t.Parallel()

	s := NewStore(t.TempDir())
	_, err := s.Load("ETH/USDT", "1h")
	assert.ErrorIs(t, err, ErrDataMissing)
}

func TestStoreEmptySeries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeHistory(t, dir, "BTC/USDT", "1h", nil)

	s := NewStore(dir)
	_, err := s.Load("BTC/USDT", "1h")
	assert.ErrorIs(t, err, ErrDataMissing)
}

func TestStoreRejectsUnsortedSeries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bars := testSeries(1_600_000_000_000, 3)
	bars[2].Timestamp = bars[0].Timestamp
	writeHistory(t, dir, "BTC/USDT", "1h", bars)

	s := NewStore(dir)
	_, err := s.Load("BTC/USDT", "1h")
	assert.ErrorIs(t, err, ErrDataMissing)
}

func TestStoreWindow(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := int64(1_600_000_000_000)
	series := testSeries(base, 10)
	writeHistory(t, dir, "BTC/USDT", "1h", series)

	s := NewStore(dir)
	asOf := base + 6*hourMs // cursor on bar index 6

	plain, err := s.Window("BTC/USDT", "1h", asOf, 3, false)
	assert.NoError(t, err)
	assert.Equal(t, series[3:6], plain)

	// The live-style view shifts by one and repeats the last complete bar in
	// place of the still-forming one.
	dup, err := s.Window("BTC/USDT", "1h", asOf, 3, true)
	assert.NoError(t, err)
	assert.Equal(t, []Bar{series[4], series[5], series[5]}, dup)
}

func TestStoreWindowInsufficientHistory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := int64(1_600_000_000_000)
	writeHistory(t, dir, "BTC/USDT", "1h", testSeries(base, 5))

	s := NewStore(dir)
	_, err := s.Window("BTC/USDT", "1h", base+2*hourMs, 10, true)
	assert.ErrorIs(t, err, ErrDataGap)
}

func TestReadBarsXZ(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := int64(1_600_000_000_000)
	series := testSeries(base, 4)

	plain := filepath.Join(dir, "plain.csv")
	assert.NoError(t, WriteBars(plain, series))
	data, err := os.ReadFile(plain)
	assert.NoError(t, err)

	packed := HistoryPath(dir, "BTC/USDT", "1h") + ".xz"
	f, err := os.Create(packed)
	assert.NoError(t, err)
	w, err := xz.NewWriter(f)
	assert.NoError(t, err)
	_, err = w.Write(data)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, f.Close())

	// The store falls back to the .xz variant when no plain file exists.
	s := NewStore(dir)
	bars, err := s.Load("BTC/USDT", "1h")
	assert.NoError(t, err)
	assert.Equal(t, series, bars)
}

func TestParseTimeframe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tf       string
		expected time.Duration
		wantErr  bool
	}{
		{tf: "1m", expected: time.Minute},
		{tf: "15m", expected: 15 * time.Minute},
		{tf: "1h", expected: time.Hour},
		{tf: "4h", expected: 4 * time.Hour},
		{tf: "1d", expected: 24 * time.Hour},
		{tf: "1w", expected: 7 * 24 * time.Hour},
		{tf: "", wantErr: true},
		{tf: "h", wantErr: true},
		{tf: "0m", wantErr: true},
		{tf: "15x", wantErr: true},
	}
	for _, tt := range tests {
		d, err := ParseTimeframe(tt.tf)
		if tt.wantErr {
			assert.Error(t, err, tt.tf)
			continue
		}
		assert.NoError(t, err, tt.tf)
		assert.Equal(t, tt.expected, d, tt.tf)
	}
}

func TestSymbolKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BTCUSDT", SymbolKey("BTC/USDT"))
	assert.Equal(t, "ETHUSD", SymbolKey("ETH-USD"))
	assert.Equal(t, "BTCUSDT", SymbolKey("BTCUSDT"))
}
