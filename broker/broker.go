package broker

import (
	"context"
	"errors"

	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
)

// ErrUnavailable is surfaced when a collaborator (exchange, network) fails
// after exhausting its retries. The backtest path never returns it.
var ErrUnavailable = errors.New("broker: unavailable")

// MarketData is the market-data port consumed by strategies. GetOHLCV returns
// the most recent limit bars, the last one representing the still-forming
// candle.
type MarketData interface {
	GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, error)
	GetTicker(ctx context.Context, symbol string) (market.Ticker, error)
}

// Execution is the order-execution port. The good-till-crossing variants are
// policy-equivalent to limit orders in replay mode; live implementations map
// them to post-only orders.
type Execution interface {
	BuyLimit(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error)
	BuyMarket(ctx context.Context, symbol string, amount float64) (ledger.Order, error)
	BuyGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error)
	SellLimit(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error)
	SellMarket(ctx context.Context, symbol string, amount float64) (ledger.Order, error)
	SellGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error)

	GetOrder(ctx context.Context, id int64, symbol string) (ledger.Order, error)
	CancelOrder(ctx context.Context, id int64, symbol string) error
	CancelUnfilledOrders(ctx context.Context, symbol string, limit int) ([]int64, error)
}

// Bot is what a strategy runs against: market data plus execution.
type Bot interface {
	MarketData
	Execution
}
