package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/cryptobot/market"
)

// TimeLayout is the wall-clock format used in config files, interpreted UTC.
const TimeLayout = "2006-01-02 15:04:05"

// Config describes one backtest run.
type Config struct {
	Strategy  string  `json:"strategy" yaml:"strategy"`
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Interval  string  `json:"interval" yaml:"interval"`
	StartTime string  `json:"start_time" yaml:"start_time"`
	EndTime   string  `json:"end_time" yaml:"end_time"`
	Balance   float64 `json:"balance" yaml:"balance"`

	// Fee rates are pre-normalized fractions (0.0004 = 4 bps), never
	// percentages.
	TakerFee float64 `json:"taker_fee" yaml:"taker_fee"`
	MakerFee float64 `json:"maker_fee" yaml:"maker_fee"`

	DataDir   string `json:"data_dir" yaml:"data_dir"`
	ResultDir string `json:"result_dir" yaml:"result_dir"`

	// OrdersFile, when set, persists named order groups to a shared JSON
	// file instead of process memory.
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`

	// JournalDB, when set, records the run into a SQLite journal.
	JournalDB string `json:"journal_db,omitempty" yaml:"journal_db,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration before a run starts.
func (c *Config) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("strategy is required")
	}
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, err := market.ParseTimeframe(c.Interval); err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	if c.Balance <= 0 {
		return fmt.Errorf("balance must be positive")
	}
	// A fee of 10% or more is almost certainly a percentage passed where a
	// fraction belongs.
	if c.TakerFee < 0 || c.TakerFee >= 0.1 {
		return fmt.Errorf("taker_fee must be a fraction in [0, 0.1), got %v", c.TakerFee)
	}
	if c.MakerFee < 0 || c.MakerFee >= 0.1 {
		return fmt.Errorf("maker_fee must be a fraction in [0, 0.1), got %v", c.MakerFee)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	start, err := c.Start()
	if err != nil {
		return fmt.Errorf("start_time: %w", err)
	}
	end, err := c.End()
	if err != nil {
		return fmt.Errorf("end_time: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("end_time precedes start_time")
	}
	return nil
}

func (c *Config) Start() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, c.StartTime, time.UTC)
}

func (c *Config) End() (time.Time, error) {
	return time.ParseInLocation(TimeLayout, c.EndTime, time.UTC)
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Strategy:  "noop",
		Symbol:    "BTC/USDT",
		Interval:  "1h",
		StartTime: "2020-01-01 00:00:00",
		EndTime:   "2020-06-01 00:00:00",
		Balance:   10000,
		TakerFee:  0.0004,
		MakerFee:  0.0002,
		DataDir:   "./data",
		ResultDir: "./result",
	}
}
