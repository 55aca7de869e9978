package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ulikunitz/xz"
)

// CSVHeader is the canonical history header. Timestamp is epoch milliseconds,
// one row per bar.
var CSVHeader = []string{"Timestamp", "Open", "High", "Low", "Close", "Volume"}

// ReadBars parses OHLCV history from path. Files ending in .xz are
// decompressed on the fly. A header row is required; empty rows are skipped.
func ReadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src = xr
	}
	return readBars(src, path)
}

func readBars(src io.Reader, path string) ([]Bar, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	var bars []Bar
	sawHeader := false
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) == 0 {
			continue
		}
		if !sawHeader {
			sawHeader = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "timestamp") {
				continue
			}
		}
		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseBarRow(row []string) (Bar, error) {
	if len(row) < 6 {
		return Bar{}, fmt.Errorf("short row %v", row)
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("bad field %q: %w", row[i], err)
		}
		vals[i] = v
	}
	return Bar{
		Timestamp: int64(vals[0]),
		Open:      vals[1],
		High:      vals[2],
		Low:       vals[3],
		Close:     vals[4],
		Volume:    vals[5],
	}, nil
}

// WriteBars writes history to path in the canonical CSV format.
func WriteBars(path string, bars []Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			strconv.FormatInt(b.Timestamp, 10),
			fmtFloat(b.Open),
			fmtFloat(b.High),
			fmtFloat(b.Low),
			fmtFloat(b.Close),
			fmtFloat(b.Volume),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
