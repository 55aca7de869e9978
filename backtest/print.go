package backtest

import (
	"fmt"
	"io"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/perf"
)

// PrintReport writes a human-readable run summary.
func PrintReport(w io.Writer, cfg *config.Config, r perf.Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Strategy:       %s\n", cfg.Strategy)
	fmt.Fprintf(w, "Symbol:         %s\n", cfg.Symbol)
	fmt.Fprintf(w, "Interval:       %s\n", cfg.Interval)
	fmt.Fprintf(w, "Period:         %s -> %s\n", cfg.StartTime, cfg.EndTime)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Wins:           %d (long %d / short %d)\n", r.Win, r.WinLong, r.WinShort)
	fmt.Fprintf(w, "Losses:         %d (long %d / short %d)\n", r.Loss, r.LossLong, r.LossShort)
	fmt.Fprintf(w, "Profitable:     %.2f%%\n", r.PercentProfitable*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "PnL")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Net PnL:        %.8f\n", r.PnL)
	fmt.Fprintf(w, "Gross Profit:   %.8f\n", r.GrossProfit)
	fmt.Fprintf(w, "Gross Loss:     %.8f\n", r.GrossLoss)
	fmt.Fprintf(w, "Commission:     %.8f\n", r.CommissionPaid)
	fmt.Fprintf(w, "Buy & Hold:     %.8f\n", r.BuyHold)
	fmt.Fprintf(w, "Best / Worst:   %.8f / %.8f\n", r.PnLMax, r.PnLMin)
	fmt.Fprintf(w, "Cum Max / Min:  %.8f / %.8f\n", r.CumPnLMax, r.CumPnLMin)
	fmt.Fprintln(w)
}
