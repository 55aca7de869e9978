package backtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/broker"
	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/strategies"
)

const hourMs = int64(3600_000)

var replayStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

// stepScript buys one unit on the second step and sells it two steps later.
// It exists to make the fill sequence of a whole run predictable.
type stepScript struct {
	bot    broker.Bot
	symbol string
}

func (s *stepScript) Name() string { return "step-script" }

func (s *stepScript) Run(ctx context.Context, now int64) error {
	switch (now - replayStart) / hourMs {
	case 1:
		_, err := s.bot.BuyMarket(ctx, s.symbol, 1)
		return err
	case 3:
		_, err := s.bot.SellMarket(ctx, s.symbol, 1)
		return err
	}
	return nil
}

func init() {
	strategies.Register("step-script", func(p strategies.Params) strategies.Strategy {
		return &stepScript{bot: p.Bot, symbol: p.Symbol}
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	bars := make([]market.Bar, 8)
	for i := range bars {
		o := 100 + float64(i)
		bars[i] = market.Bar{
			Timestamp: replayStart + int64(i)*hourMs,
			Open:      o,
			High:      o + 5,
			Low:       o - 5,
			Close:     o + 1,
			Volume:    1,
		}
	}
	assert.NoError(t, market.WriteBars(market.HistoryPath(dir, "BTC/USDT", "1h"), bars))

	return &config.Config{
		Strategy:  "step-script",
		Symbol:    "BTC/USDT",
		Interval:  "1h",
		StartTime: "2020-01-01 00:00:00",
		EndTime:   "2020-01-01 05:00:00",
		Balance:   1000,
		DataDir:   dir,
	}
}

func TestRunnerEndToEnd(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r, err := NewRunner(cfg)
	assert.NoError(t, err)

	report, err := r.Run(context.Background())
	assert.NoError(t, err)

	// Buy placed on the bar opening at hour 1 fills at open(hour 2) = 102;
	// sell placed at hour 3 fills at open(hour 4) = 104.
	assert.Equal(t, 2.0, report.PnL)
	assert.Equal(t, 2.0, report.LongPnL)
	assert.Equal(t, 0.0, report.ShortPnL)
	assert.Equal(t, 1, report.Win)
	assert.Equal(t, 0, report.Loss)
	assert.Equal(t, 1.0, report.PercentProfitable)
	assert.Equal(t, 0.0, report.CommissionPaid)

	// Holding 1000 across the window: 1000/100*105 - 1000.
	assert.Equal(t, 50.0, report.BuyHold)

	if assert.Len(t, report.PnLHistory, 1) {
		assert.Equal(t, replayStart+4*hourMs, report.PnLHistory[0].Timestamp)
		assert.Equal(t, 2.0, report.PnLHistory[0].Value)
	}
	assert.Equal(t, report.PnLHistory, report.CumPnLHistory)
}

func TestRunnerCommission(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.TakerFee = 0.001

	r, err := NewRunner(cfg)
	assert.NoError(t, err)
	report, err := r.Run(context.Background())
	assert.NoError(t, err)

	// Two market fills: 102*1*0.001 + 104*1*0.001.
	assert.InDelta(t, 0.206, report.CommissionPaid, 1e-12)
}

func TestRunnerUnknownStrategy(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Strategy = "does-not-exist"

	_, err := NewRunner(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestRunnerMissingHistoryFailsFast(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.DataDir = t.TempDir()

	r, err := NewRunner(cfg)
	assert.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, market.ErrDataMissing)
}

func TestRunnerHonorsContextCancel(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r, err := NewRunner(cfg)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	r, err := NewRunner(cfg)
	assert.NoError(t, err)
	report, err := r.Run(context.Background())
	assert.NoError(t, err)

	out := t.TempDir()
	assert.NoError(t, WriteArtifacts(out, cfg, report, r.Book()))

	for _, name := range []string{"performance.json", "order_history.json", "config.json"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	history, err := os.ReadFile(filepath.Join(out, "order_history.json"))
	assert.NoError(t, err)
	assert.JSONEq(t,
		`[[1577840400000,"buy",1,"BTC/USDT"],[1577847600000,"sell",1,"BTC/USDT"]]`,
		string(history))
}
