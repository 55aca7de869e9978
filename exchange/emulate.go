package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/cryptobot/broker"
	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
)

// Emulator pairs live market data with locally simulated execution: market
// orders fill immediately at the last traded price, limit orders rest in the
// local book. Nothing is ever sent to the exchange, so a strategy can run
// against real prices with zero capital at risk.
type Emulator struct {
	Data broker.MarketData
	book *ledger.Book
	log  *logrus.Logger
}

func NewEmulator(data broker.MarketData, log *logrus.Logger) *Emulator {
	return &Emulator{
		Data: data,
		book: ledger.NewBook(),
		log:  log,
	}
}

// Book exposes the emulated order ledger for performance reporting.
func (e *Emulator) Book() *ledger.Book { return e.book }

func (e *Emulator) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, error) {
	return e.Data.GetOHLCV(ctx, symbol, timeframe, limit)
}

func (e *Emulator) GetTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	return e.Data.GetTicker(ctx, symbol)
}

func (e *Emulator) marketOrder(ctx context.Context, symbol string, side ledger.Side, amount float64) (ledger.Order, error) {
	tk, err := e.Data.GetTicker(ctx, symbol)
	if err != nil {
		return ledger.Order{}, err
	}
	o, err := e.book.Place(symbol, ledger.Market, side, amount, tk.Last, tk.Timestamp)
	if err != nil {
		return ledger.Order{}, err
	}
	e.book.Fill(o.ID, tk.Last)
	o.Status = ledger.Filled

	e.log.WithFields(logrus.Fields{
		"side": side, "amount": amount, "price": tk.Last, "symbol": symbol,
	}).Info("emulated market fill")
	return o, nil
}

func (e *Emulator) limitOrder(symbol string, side ledger.Side, amount, price float64) (ledger.Order, error) {
	o, err := e.book.Place(symbol, ledger.Limit, side, amount, price, time.Now().UnixMilli())
	if err != nil {
		return ledger.Order{}, err
	}
	e.log.WithFields(logrus.Fields{
		"side": side, "amount": amount, "price": price, "symbol": symbol,
	}).Info("emulated limit order resting")
	return o, nil
}

func (e *Emulator) BuyMarket(ctx context.Context, symbol string, amount float64) (ledger.Order, error) {
	return e.marketOrder(ctx, symbol, ledger.Buy, amount)
}

func (e *Emulator) SellMarket(ctx context.Context, symbol string, amount float64) (ledger.Order, error) {
	return e.marketOrder(ctx, symbol, ledger.Sell, amount)
}

func (e *Emulator) BuyLimit(_ context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.limitOrder(symbol, ledger.Buy, amount, price)
}

func (e *Emulator) SellLimit(_ context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.limitOrder(symbol, ledger.Sell, amount, price)
}

func (e *Emulator) BuyGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.BuyLimit(ctx, symbol, amount, price)
}

func (e *Emulator) SellGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.SellLimit(ctx, symbol, amount, price)
}

func (e *Emulator) GetOrder(_ context.Context, id int64, symbol string) (ledger.Order, error) {
	o, ok := e.book.Get(id)
	if !ok {
		return ledger.Order{}, fmt.Errorf("exchange: unknown order %d for %s", id, symbol)
	}
	return o, nil
}

func (e *Emulator) CancelOrder(_ context.Context, id int64, _ string) error {
	e.book.Cancel(id)
	return nil
}

func (e *Emulator) CancelUnfilledOrders(_ context.Context, symbol string, limit int) ([]int64, error) {
	return e.book.CancelUnfilled(symbol, limit), nil
}
