// Package backtest wires the replay clock, fill engine, and strategy into a
// closed-loop, single-threaded simulation over historical bars.
package backtest

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/ledger"
	"github.com/rustyeddy/cryptobot/market"
	"github.com/rustyeddy/cryptobot/perf"
	"github.com/rustyeddy/cryptobot/sim"
	"github.com/rustyeddy/cryptobot/strategies"
)

type Runner struct {
	cfg      *config.Config
	store    *market.Store
	engine   *sim.Engine
	strategy strategies.Strategy
	groups   ledger.Groups

	start int64 // epoch ms
	end   int64
	step  int64
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	tf, err := market.ParseTimeframe(cfg.Interval)
	if err != nil {
		return nil, err
	}
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}
	end, err := cfg.End()
	if err != nil {
		return nil, err
	}

	store := market.NewStore(cfg.DataDir)
	book := ledger.NewBook()
	engine := sim.NewEngine(store, book, cfg.Interval, start.UnixMilli())

	var groups ledger.Groups
	if cfg.OrdersFile != "" {
		fg, err := ledger.NewFileGroups(cfg.OrdersFile)
		if err != nil {
			return nil, err
		}
		groups = fg
	} else {
		groups = ledger.NewMemGroups()
	}

	strat, err := strategies.New(cfg.Strategy, strategies.Params{
		Bot:       engine,
		Groups:    groups,
		Symbol:    cfg.Symbol,
		Timeframe: cfg.Interval,
	})
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		strategy: strat,
		groups:   groups,
		start:    start.UnixMilli(),
		end:      end.UnixMilli(),
		step:     tf.Milliseconds(),
	}, nil
}

// Book exposes the run's order ledger for exports.
func (r *Runner) Book() *ledger.Book { return r.engine.Book() }

// Run replays the configured window one timeframe step at a time and
// returns the portfolio report.
func (r *Runner) Run(ctx context.Context) (perf.Report, error) {
	// Fail fast on missing input before the loop starts.
	if _, err := r.store.Load(r.cfg.Symbol, r.cfg.Interval); err != nil {
		return perf.Report{}, err
	}

	steps := 0
	for now := r.start; now <= r.end; now += r.step {
		if err := ctx.Err(); err != nil {
			return perf.Report{}, err
		}
		if err := r.engine.Advance(now); err != nil {
			return perf.Report{}, err
		}
		if err := r.strategy.Run(ctx, now); err != nil {
			return perf.Report{}, fmt.Errorf("strategy %s at %d: %w", r.strategy.Name(), now, err)
		}
		steps++
	}

	logrus.WithFields(logrus.Fields{
		"strategy": r.strategy.Name(),
		"symbol":   r.cfg.Symbol,
		"steps":    steps,
	}).Info("replay finished")

	return r.Report()
}

// Report reduces the ledger into the portfolio performance report,
// including the buy-and-hold benchmark over the replay window.
func (r *Runner) Report() (perf.Report, error) {
	fees := perf.Fees{Taker: r.cfg.TakerFee, Maker: r.cfg.MakerFee}
	book := r.engine.Book()

	var reports []perf.Report
	for _, symbol := range book.Symbols() {
		rep, err := perf.Compute(book.Filled(symbol), fees)
		if err != nil {
			return perf.Report{}, fmt.Errorf("accounting %s: %w", symbol, err)
		}
		reports = append(reports, rep)
	}
	merged := perf.Merge(reports...)

	buyHold, err := r.buyHold()
	if err != nil {
		return perf.Report{}, err
	}
	merged.BuyHold = buyHold
	return merged, nil
}

// buyHold values holding the configured balance in the pair across the
// window: balance / open(start) * open(end) - balance.
func (r *Runner) buyHold() (float64, error) {
	bars, i, err := r.store.Locate(r.cfg.Symbol, r.cfg.Interval, r.start)
	if err != nil {
		return 0, err
	}
	startOpen := bars[i].Open

	bars, i, err = r.store.Locate(r.cfg.Symbol, r.cfg.Interval, r.end)
	if err != nil {
		return 0, err
	}
	endOpen := bars[i].Open

	return r.cfg.Balance/startOpen*endOpen - r.cfg.Balance, nil
}
