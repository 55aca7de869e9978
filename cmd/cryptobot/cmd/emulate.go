package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/broker"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/exchange"
	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/perf"
	"github.com/rustyeddy/cryptobot/strategies"
)

var emulateConfigPath string

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Run a strategy against live market data with simulated fills",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFromFile(emulateConfigPath)
		if err != nil {
			return err
		}

		access, err := config.LoadAPIAccess()
		if err != nil {
			// Market data endpoints work unauthenticated, just slower.
			logrus.WithError(err).Warn("running without API credentials")
		}

		log := logrus.StandardLogger()
		data := broker.RetryingMarketData{
			Next:   exchange.NewClient(access),
			Policy: broker.DefaultRetryPolicy(log),
		}
		emu := exchange.NewEmulator(data, log)

		var groups ledger.Groups
		if cfg.OrdersFile != "" {
			if groups, err = ledger.NewFileGroups(cfg.OrdersFile); err != nil {
				return err
			}
		} else {
			groups = ledger.NewMemGroups()
		}

		strat, err := strategies.New(cfg.Strategy, strategies.Params{
			Bot:       emu,
			Groups:    groups,
			Symbol:    cfg.Symbol,
			Timeframe: cfg.Interval,
		})
		if err != nil {
			return err
		}

		step, err := market.ParseTimeframe(cfg.Interval)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithFields(logrus.Fields{
			"strategy": cfg.Strategy,
			"symbol":   cfg.Symbol,
			"interval": cfg.Interval,
		}).Info("emulation started; interrupt to stop and report")

		ticker := time.NewTicker(step)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return emulateReport(cfg, emu)
			case <-ticker.C:
				if err := strat.Run(ctx, time.Now().UnixMilli()); err != nil {
					log.WithError(err).Error("strategy step failed")
				}
			}
		}
	},
}

func emulateReport(cfg *config.Config, emu *exchange.Emulator) error {
	fees := perf.Fees{Taker: cfg.TakerFee, Maker: cfg.MakerFee}

	var reports []perf.Report
	for _, symbol := range emu.Book().Symbols() {
		r, err := perf.Compute(emu.Book().Filled(symbol), fees)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	backtest.PrintReport(os.Stdout, cfg, perf.Merge(reports...))
	return nil
}

func init() {
	emulateCmd.Flags().StringVarP(&emulateConfigPath, "config", "c", "./emulate.yaml", "run configuration file")
	rootCmd.AddCommand(emulateCmd)
}
