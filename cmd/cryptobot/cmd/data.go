package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/cryptobot/market"
)

const visionBaseURL = "https://data.binance.vision/data/futures/um/monthly/klines"

var (
	dataSymbol   string
	dataInterval string
	dataMonths   []string
	dataOut      string
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Download monthly kline archives and convert them to history CSV",
	Long: `Downloads Binance Vision monthly kline .zip archives for a symbol,
extracts them, and writes one canonical Timestamp,Open,High,Low,Close,Volume
history file under the data directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(dataMonths) == 0 {
			return fmt.Errorf("at least one --month (YYYY-MM) is required")
		}
		if err := os.MkdirAll(dataOut, 0o755); err != nil {
			return err
		}

		key := market.SymbolKey(dataSymbol)
		var bars []market.Bar
		for _, month := range dataMonths {
			monthBars, err := fetchMonth(key, dataInterval, month)
			if err != nil {
				return fmt.Errorf("month %s: %w", month, err)
			}
			logrus.WithFields(logrus.Fields{"month": month, "bars": len(monthBars)}).
				Info("archive converted")
			bars = append(bars, monthBars...)
		}

		dst := market.HistoryPath(dataOut, dataSymbol, dataInterval)
		if err := market.WriteBars(dst, bars); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"file": dst, "bars": len(bars)}).
			Info("history written")
		return nil
	},
}

func fetchMonth(key, interval, month string) ([]market.Bar, error) {
	name := fmt.Sprintf("%s-%s-%s", key, interval, month)
	url := fmt.Sprintf("%s/%s/%s/%s.zip", visionBaseURL, key, interval, name)

	tmp, err := os.MkdirTemp("", "klines-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	zipPath := filepath.Join(tmp, name+".zip")
	if err := download(url, zipPath); err != nil {
		return nil, err
	}
	if err := unzip.Extract(zipPath, tmp); err != nil {
		return nil, fmt.Errorf("extract %s: %w", zipPath, err)
	}
	return readVisionCSV(filepath.Join(tmp, name+".csv"))
}

func download(url, dst string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// readVisionCSV parses the archive's kline rows:
// open_time,open,high,low,close,volume,... (newer archives carry a header).
func readVisionCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []market.Bar
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 6 {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			// Header row.
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := 0; i < 5; i++ {
			if vals[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		bars = append(bars, market.Bar{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
		})
	}
	return bars, nil
}

func init() {
	dataCmd.Flags().StringVar(&dataSymbol, "symbol", "BTC/USDT", "pair to download")
	dataCmd.Flags().StringVar(&dataInterval, "interval", "1h", "kline interval")
	dataCmd.Flags().StringSliceVar(&dataMonths, "month", nil, "months to fetch (YYYY-MM, repeatable)")
	dataCmd.Flags().StringVar(&dataOut, "out", "./data", "history directory")
	rootCmd.AddCommand(dataCmd)
}
