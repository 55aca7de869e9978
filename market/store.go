package market

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	// ErrDataMissing means no history could be loaded for a symbol/timeframe.
	// A backtest cannot proceed without its input.
	ErrDataMissing = errors.New("market: no history loaded")

	// ErrDataGap means no bar exists at or before the requested timestamp.
	// It indicates a misconfigured start time or corrupted history.
	ErrDataGap = errors.New("market: no bar at or before timestamp")
)

// Store loads and indexes OHLCV history per (symbol, timeframe). Series are
// memoized for the process lifetime; backtests touch a small, bounded set.
type Store struct {
	dir string

	mu     sync.Mutex
	series map[string][]Bar
}

func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		series: make(map[string][]Bar),
	}
}

// HistoryPath is the file naming convention for stored history:
// {dir}/{SYMBOL}_{timeframe}.csv with pair separators stripped.
func HistoryPath(dir, symbol, timeframe string) string {
	return filepath.Join(dir, SymbolKey(symbol)+"_"+timeframe+".csv")
}

// Load returns the sorted bar series for symbol/timeframe, reading it from
// disk on first use. Plain .csv is tried first, then .csv.xz.
func (s *Store) Load(symbol, timeframe string) ([]Bar, error) {
	key := SymbolKey(symbol) + "_" + timeframe

	s.mu.Lock()
	defer s.mu.Unlock()

	if bars, ok := s.series[key]; ok {
		return bars, nil
	}

	path := HistoryPath(s.dir, symbol, timeframe)
	if _, err := os.Stat(path); err != nil {
		path += ".xz"
	}
	bars, err := ReadBars(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDataMissing, symbol, timeframe, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s %s: empty series", ErrDataMissing, symbol, timeframe)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Timestamp <= bars[i-1].Timestamp {
			return nil, fmt.Errorf("%w: %s %s: timestamps not strictly increasing at row %d",
				ErrDataMissing, symbol, timeframe, i)
		}
	}

	s.series[key] = bars
	return bars, nil
}

// Locate loads the series and returns it along with the index of the last
// bar whose timestamp is <= asOf.
func (s *Store) Locate(symbol, timeframe string, asOf int64) ([]Bar, int, error) {
	bars, err := s.Load(symbol, timeframe)
	if err != nil {
		return nil, 0, err
	}
	// First bar with timestamp > asOf; the bar before it is current.
	n := sort.Search(len(bars), func(i int) bool { return bars[i].Timestamp > asOf })
	if n == 0 {
		return nil, 0, fmt.Errorf("%w: %s %s as of %d", ErrDataGap, symbol, timeframe, asOf)
	}
	return bars, n - 1, nil
}

// Window returns the limit most recent bars strictly before the bar at idx.
// With duplicateLast set, the window is shifted by one and the final element
// repeats the last complete bar, standing in for the still-forming candle a
// live feed would report.
func (s *Store) Window(symbol, timeframe string, asOf int64, limit int, duplicateLast bool) ([]Bar, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("market: window limit must be positive, got %d", limit)
	}
	bars, idx, err := s.Locate(symbol, timeframe, asOf)
	if err != nil {
		return nil, err
	}
	if idx < limit {
		return nil, fmt.Errorf("%w: %s %s: need %d bars before index %d",
			ErrDataGap, symbol, timeframe, limit, idx)
	}

	out := make([]Bar, limit)
	copy(out, bars[idx-limit:idx])
	if duplicateLast {
		copy(out, out[1:])
		out[limit-1] = bars[idx-1]
	}
	return out, nil
}
