package perf

// Merge reduces per-symbol reports into one portfolio report. Scalar
// counters sum across symbols; PnL series merge by summing values that share
// an exact timestamp, sorted ascending, with the cumulative series rebuilt
// as the prefix sum of the merged one. Merge is a pure reduction: calling it
// twice on the same inputs yields bit-identical output, and merging a single
// report returns that report unchanged.
func Merge(reports ...Report) Report {
	var (
		out    Report
		events []Point
	)
	for _, r := range reports {
		out.LongGrossProfit += r.LongGrossProfit
		out.ShortGrossProfit += r.ShortGrossProfit
		out.LongGrossLoss += r.LongGrossLoss
		out.ShortGrossLoss += r.ShortGrossLoss
		out.WinLong += r.WinLong
		out.WinShort += r.WinShort
		out.LossLong += r.LossLong
		out.LossShort += r.LossShort
		out.CommissionPaid += r.CommissionPaid
		out.BuyHold += r.BuyHold
		events = append(events, r.PnLHistory...)
	}
	out.finalize(events)
	return out
}
