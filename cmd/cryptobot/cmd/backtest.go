package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/backtest"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/journal"
)

var backtestConfigPath string

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a strategy over historical bars and report performance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadFromFile(backtestConfigPath)
		if err != nil {
			return err
		}

		runner, err := backtest.NewRunner(cfg)
		if err != nil {
			return err
		}

		report, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		backtest.PrintReport(os.Stdout, cfg, report)

		if cfg.ResultDir != "" {
			if err := backtest.WriteArtifacts(cfg.ResultDir, cfg, report, runner.Book()); err != nil {
				return err
			}
			logrus.WithField("dir", cfg.ResultDir).Info("artifacts written")
		}

		if cfg.JournalDB != "" {
			j, err := journal.NewSQLite(cfg.JournalDB)
			if err != nil {
				return err
			}
			defer j.Close()

			runID, err := j.RecordRun(cfg, report)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{"run": runID, "db": cfg.JournalDB}).
				Info("run journaled")
		}
		return nil
	},
}

func init() {
	backtestCmd.Flags().StringVarP(&backtestConfigPath, "config", "c", "./backtest.yaml", "run configuration file")
	rootCmd.AddCommand(backtestCmd)
}
