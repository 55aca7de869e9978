package cmd

import (
	"encoding/csv"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/cryptobot/exchange"
	"github.com/rustyeddy/cryptobot/market"
)

var (
	streamSymbol   string
	streamInterval string
	streamOut      string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Record live closed candles into the history CSV",
	Long: `Subscribes to the exchange kline websocket for one symbol and appends
each closed candle to the canonical history file, keeping a local dataset
current without re-downloading monthly archives.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := os.MkdirAll(streamOut, 0o755); err != nil {
			return err
		}

		log := logrus.StandardLogger()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		bars := make(chan market.Bar, 16)
		stream := &exchange.KlineStream{
			Symbol:    streamSymbol,
			Timeframe: streamInterval,
			Log:       log,
		}
		go func() {
			if err := stream.Run(ctx, bars); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("kline stream stopped")
			}
			close(bars)
		}()

		path := market.HistoryPath(streamOut, streamSymbol, streamInterval)
		log.WithFields(logrus.Fields{
			"symbol": streamSymbol, "interval": streamInterval, "file": path,
		}).Info("recording closed candles; interrupt to stop")

		for bar := range bars {
			if err := appendBar(path, bar); err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"time": bar.Time(), "close": bar.Close, "volume": bar.Volume,
			}).Info("candle recorded")
		}
		return nil
	},
}

// appendBar adds one row to the history file, writing the header first when
// the file is new.
func appendBar(path string, b market.Bar) error {
	fresh := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fresh = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(market.CSVHeader); err != nil {
			return err
		}
	}
	row := []string{
		strconv.FormatInt(b.Timestamp, 10),
		strconv.FormatFloat(b.Open, 'f', -1, 64),
		strconv.FormatFloat(b.High, 'f', -1, 64),
		strconv.FormatFloat(b.Low, 'f', -1, 64),
		strconv.FormatFloat(b.Close, 'f', -1, 64),
		strconv.FormatFloat(b.Volume, 'f', -1, 64),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func init() {
	streamCmd.Flags().StringVar(&streamSymbol, "symbol", "BTC/USDT", "pair to stream")
	streamCmd.Flags().StringVar(&streamInterval, "interval", "1h", "kline interval")
	streamCmd.Flags().StringVar(&streamOut, "out", "./data", "history directory")
	rootCmd.AddCommand(streamCmd)
}
