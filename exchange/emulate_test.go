package exchange

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
)

// fixedData serves a constant ticker and bar window.
type fixedData struct {
	last float64
	ts   int64
}

func (f fixedData) GetOHLCV(_ context.Context, _ string, _ string, limit int) ([]market.Bar, error) {
	bars := make([]market.Bar, limit)
	for i := range bars {
		bars[i] = market.Bar{Timestamp: f.ts, Open: f.last, High: f.last, Low: f.last, Close: f.last}
	}
	return bars, nil
}

func (f fixedData) GetTicker(context.Context, string) (market.Ticker, error) {
	return market.Ticker{Symbol: "BTC/USDT", Last: f.last, Timestamp: f.ts}, nil
}

func quietLog() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestEmulatorMarketOrderFillsAtLast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := NewEmulator(fixedData{last: 250.5, ts: 1000}, quietLog())

	o, err := e.BuyMarket(ctx, "BTC/USDT", 2)
	assert.NoError(t, err)
	assert.Equal(t, ledger.Filled, o.Status)
	assert.Equal(t, 250.5, o.Price)
	assert.Equal(t, int64(1000), o.Timestamp)

	got, err := e.GetOrder(ctx, o.ID, "BTC/USDT")
	assert.NoError(t, err)
	assert.Equal(t, ledger.Filled, got.Status)
}

func TestEmulatorLimitOrderRests(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	e := NewEmulator(fixedData{last: 250.5, ts: 1000}, quietLog())

	o, err := e.SellGTX(ctx, "BTC/USDT", 1, 300)
	assert.NoError(t, err)
	assert.Equal(t, ledger.Unfilled, o.Status)

	ids, err := e.CancelUnfilledOrders(ctx, "BTC/USDT", 0)
	assert.NoError(t, err)
	assert.Equal(t, []int64{o.ID}, ids)

	got, _ := e.GetOrder(ctx, o.ID, "BTC/USDT")
	assert.Equal(t, ledger.Canceled, got.Status)
}

func TestEmulatorRejectsInvalidOrder(t *testing.T) {
	t.Parallel()

	e := NewEmulator(fixedData{last: 250.5, ts: 1000}, quietLog())

	_, err := e.BuyLimit(context.Background(), "BTC/USDT", 1, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidOrder)
}

func TestEmulatorUnknownOrder(t *testing.T) {
	t.Parallel()

	e := NewEmulator(fixedData{last: 250.5, ts: 1000}, quietLog())

	_, err := e.GetOrder(context.Background(), 42, "BTC/USDT")
	assert.Error(t, err)
}
