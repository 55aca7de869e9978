// Package sim is the deterministic replay implementation of the broker
// ports. Time advances strictly monotonically through historical bars; no
// operation blocks and nothing touches the network.
package sim

import (
	"context"
	"fmt"

	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
)

// Engine walks the simulation clock over a bar series and transitions
// unfilled orders to filled or canceled.
//
// Fill rules, preserved exactly since reversing them changes fill prices:
//   - limit orders are evaluated against the bar at the pre-advance cursor
//     and fill when bar.Low <= price <= bar.High;
//   - market orders fill unconditionally at the open of the bar at the
//     post-advance cursor, approximating real order latency.
type Engine struct {
	store     *market.Store
	book      *ledger.Book
	timeframe string
	clock     int64 // simulation time, epoch ms
}

func NewEngine(store *market.Store, book *ledger.Book, timeframe string, start int64) *Engine {
	return &Engine{
		store:     store,
		book:      book,
		timeframe: timeframe,
		clock:     start,
	}
}

// Clock returns the current simulation time in epoch milliseconds.
func (e *Engine) Clock() int64 { return e.clock }

// Book exposes the order ledger for reporting.
func (e *Engine) Book() *ledger.Book { return e.book }

// Advance evaluates fills for every unfilled order, then moves the
// simulation clock to next.
func (e *Engine) Advance(next int64) error {
	for _, o := range e.book.Unfilled() {
		switch o.Type {
		case ledger.Limit:
			bars, idx, err := e.store.Locate(o.Symbol, e.timeframe, e.clock)
			if err != nil {
				return fmt.Errorf("advance to %d: %w", next, err)
			}
			bar := bars[idx]
			if bar.Low <= o.Price && o.Price <= bar.High {
				e.book.Fill(o.ID, o.Price)
			}
		case ledger.Market:
			bars, idx, err := e.store.Locate(o.Symbol, e.timeframe, next)
			if err != nil {
				return fmt.Errorf("advance to %d: %w", next, err)
			}
			e.book.Fill(o.ID, bars[idx].Open)
		}
	}
	e.clock = next
	return nil
}

// currentOpen is the open price of the bar at the current cursor, used as
// the bookkeeping price when a market order is placed.
func (e *Engine) currentOpen(symbol string) (float64, error) {
	bars, idx, err := e.store.Locate(symbol, e.timeframe, e.clock)
	if err != nil {
		return 0, err
	}
	return bars[idx].Open, nil
}

func (e *Engine) BuyLimit(_ context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.book.Place(symbol, ledger.Limit, ledger.Buy, amount, price, e.clock)
}

func (e *Engine) SellLimit(_ context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.book.Place(symbol, ledger.Limit, ledger.Sell, amount, price, e.clock)
}

func (e *Engine) BuyMarket(_ context.Context, symbol string, amount float64) (ledger.Order, error) {
	price, err := e.currentOpen(symbol)
	if err != nil {
		return ledger.Order{}, err
	}
	return e.book.Place(symbol, ledger.Market, ledger.Buy, amount, price, e.clock)
}

func (e *Engine) SellMarket(_ context.Context, symbol string, amount float64) (ledger.Order, error) {
	price, err := e.currentOpen(symbol)
	if err != nil {
		return ledger.Order{}, err
	}
	return e.book.Place(symbol, ledger.Market, ledger.Sell, amount, price, e.clock)
}

// Good-till-crossing orders behave exactly like limit orders in replay.
func (e *Engine) BuyGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.BuyLimit(ctx, symbol, amount, price)
}

func (e *Engine) SellGTX(ctx context.Context, symbol string, amount, price float64) (ledger.Order, error) {
	return e.SellLimit(ctx, symbol, amount, price)
}

func (e *Engine) GetOrder(_ context.Context, id int64, symbol string) (ledger.Order, error) {
	o, ok := e.book.Get(id)
	if !ok {
		return ledger.Order{}, fmt.Errorf("sim: unknown order %d for %s", id, symbol)
	}
	return o, nil
}

// CancelOrder cancels an unfilled order. Canceling an order that already
// reached a terminal status is a no-op.
func (e *Engine) CancelOrder(_ context.Context, id int64, _ string) error {
	e.book.Cancel(id)
	return nil
}

func (e *Engine) CancelUnfilledOrders(_ context.Context, symbol string, limit int) ([]int64, error) {
	return e.book.CancelUnfilled(symbol, limit), nil
}

// GetOHLCV returns the limit most recent bars as of the simulation clock.
// The final element repeats the last complete bar, standing in for the
// still-forming candle a live feed would report.
func (e *Engine) GetOHLCV(_ context.Context, symbol, timeframe string, limit int) ([]market.Bar, error) {
	return e.store.Window(symbol, timeframe, e.clock, limit, true)
}

func (e *Engine) GetTicker(_ context.Context, symbol string) (market.Ticker, error) {
	price, err := e.currentOpen(symbol)
	if err != nil {
		return market.Ticker{}, err
	}
	return market.Ticker{Symbol: symbol, Last: price, Timestamp: e.clock}, nil
}
