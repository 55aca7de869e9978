package backtest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/perf"
)

// WriteArtifacts stores the run's outputs under dir: the performance report,
// the filled-order history export, and an echo of the configuration that
// produced them.
func WriteArtifacts(dir string, cfg *config.Config, report perf.Report, book *ledger.Book) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, "performance.json"), report); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "order_history.json"), book.History(ledger.Filled)); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "config.json"), cfg)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}
