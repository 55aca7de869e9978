// Package perf reduces filled-order history into performance statistics.
// Everything here is a pure function: the same inputs always produce
// bit-identical output, which keeps backtests reproducible.
package perf

import (
	"fmt"
	"sort"
)

// Fees are commission rates as pre-normalized fractions: 0.0004 means 4
// basis points. Callers loading exchange configs that express a rate as a
// percentage must divide by 100 before constructing Fees.
type Fees struct {
	Taker float64 // applied to market fills
	Maker float64 // applied to limit fills
}

// Point is one entry of a PnL time series. It marshals as the pair
// [timestamp, value].
type Point struct {
	Timestamp int64
	Value     float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%v]", p.Timestamp, p.Value)), nil
}

// Report is the aggregate performance of one symbol, or of a whole portfolio
// after Merge. It is a pure value computed fresh from the order ledger and
// never mutated after construction.
type Report struct {
	PnL      float64 `json:"pnl"`
	LongPnL  float64 `json:"long_pnl"`
	ShortPnL float64 `json:"short_pnl"`

	GrossProfit      float64 `json:"gross_profit"`
	LongGrossProfit  float64 `json:"long_gross_profit"`
	ShortGrossProfit float64 `json:"short_gross_profit"`
	GrossLoss        float64 `json:"gross_loss"`
	LongGrossLoss    float64 `json:"long_gross_loss"`
	ShortGrossLoss   float64 `json:"short_gross_loss"`

	Win       int `json:"win"`
	WinLong   int `json:"win_long"`
	WinShort  int `json:"win_short"`
	Loss      int `json:"loss"`
	LossLong  int `json:"loss_long"`
	LossShort int `json:"loss_short"`

	CommissionPaid    float64 `json:"commission_paid"`
	PercentProfitable float64 `json:"percent_profitable"`

	PnLMax    float64 `json:"pnl_max"`
	PnLMin    float64 `json:"pnl_min"`
	CumPnLMax float64 `json:"cum_pnl_max"`
	CumPnLMin float64 `json:"cum_pnl_min"`

	// BuyHold is the buy-and-hold benchmark over the replay window, filled
	// in by the backtest runner.
	BuyHold float64 `json:"buy_hold"`

	PnLHistory    []Point `json:"pnl_history"`
	CumPnLHistory []Point `json:"cum_pnl_history"`
}

// finalize derives every computed field from the split counters and the raw
// event series. Compute and Merge both end here so that merging a single
// report is an exact identity.
func (r *Report) finalize(events []Point) {
	r.PnLHistory = mergeByTimestamp(events)

	r.GrossProfit = r.LongGrossProfit + r.ShortGrossProfit
	r.GrossLoss = r.LongGrossLoss + r.ShortGrossLoss
	r.LongPnL = r.LongGrossProfit - r.LongGrossLoss
	r.ShortPnL = r.ShortGrossProfit - r.ShortGrossLoss
	r.PnL = r.LongPnL + r.ShortPnL
	r.Win = r.WinLong + r.WinShort
	r.Loss = r.LossLong + r.LossShort

	if r.Win == 0 {
		r.PercentProfitable = 0
	} else {
		r.PercentProfitable = float64(r.Win) / float64(r.Win+r.Loss)
	}

	r.CumPnLHistory = make([]Point, len(r.PnLHistory))
	var cum float64
	for i, p := range r.PnLHistory {
		cum += p.Value
		r.CumPnLHistory[i] = Point{Timestamp: p.Timestamp, Value: cum}
	}

	r.PnLMax, r.PnLMin = seriesBounds(r.PnLHistory)
	r.CumPnLMax, r.CumPnLMin = seriesBounds(r.CumPnLHistory)
}

// mergeByTimestamp sums values sharing an exact timestamp and sorts the
// result ascending. Values for one timestamp accumulate in input order, so
// the reduction is deterministic.
func mergeByTimestamp(events []Point) []Point {
	sums := make(map[int64]float64, len(events))
	for _, p := range events {
		sums[p.Timestamp] += p.Value
	}

	out := make([]Point, 0, len(sums))
	for ts, v := range sums {
		out = append(out, Point{Timestamp: ts, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func seriesBounds(series []Point) (max, min float64) {
	if len(series) == 0 {
		return 0, 0
	}
	max, min = series[0].Value, series[0].Value
	for _, p := range series[1:] {
		if p.Value > max {
			max = p.Value
		}
		if p.Value < min {
			min = p.Value
		}
	}
	return max, min
}
