package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cryptobot",
	Short: "Crypto strategy backtesting and live emulation",
	Long: `Cryptobot replays historical price bars through a deterministic
order-fill simulator and reduces the resulting order ledger into
performance statistics (PnL, win rate, drawdown series).

It provides tools for:
  - Backtesting strategies against CSV kline history
  - Downloading and converting exchange kline archives
  - Emulating strategies against live market data with simulated fills
  - Journaling run results to SQLite for comparison across revisions`,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
