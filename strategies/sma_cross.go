package strategies

import (
	"context"

	"github.com/sirupsen/logrus"
)

func init() {
	Register("sma-cross", func(p Params) Strategy {
		return &SMACross{
			p:      p,
			Fast:   9,
			Slow:   21,
			Amount: 0.01,
		}
	})
}

// SMACross opens a long with a market order when the fast moving average
// crosses above the slow one and closes it on the cross below. Open orders
// are tracked in the "sma-cross" group so the position survives process
// restarts when the group store is file-backed.
type SMACross struct {
	p      Params
	Fast   int
	Slow   int
	Amount float64
}

const smaGroup = "sma-cross"

func (s *SMACross) Name() string { return "sma-cross" }

func (s *SMACross) Run(ctx context.Context, now int64) error {
	// One extra bar for the previous-step averages, one for the forming
	// candle the feed appends.
	bars, err := s.p.Bot.GetOHLCV(ctx, s.p.Symbol, s.p.Timeframe, s.Slow+2)
	if err != nil {
		return err
	}
	// Drop the still-forming candle; decisions use complete bars only.
	closes := make([]float64, 0, len(bars)-1)
	for _, b := range bars[:len(bars)-1] {
		closes = append(closes, b.Close)
	}
	if len(closes) < s.Slow+1 {
		return nil
	}

	fast := sma(closes, s.Fast)
	slow := sma(closes, s.Slow)
	prevFast := sma(closes[:len(closes)-1], s.Fast)
	prevSlow := sma(closes[:len(closes)-1], s.Slow)

	open, err := s.p.Groups.Len(smaGroup)
	if err != nil {
		return err
	}

	switch {
	case open == 0 && prevFast <= prevSlow && fast > slow:
		o, err := s.p.Bot.BuyMarket(ctx, s.p.Symbol, s.Amount)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{"strategy": s.Name(), "order": o.ID, "price": o.Price}).
			Info("open long")
		return s.p.Groups.Create(smaGroup, o)

	case open > 0 && prevFast >= prevSlow && fast < slow:
		held, err := s.p.Groups.Get(smaGroup)
		if err != nil {
			return err
		}
		for _, o := range held {
			if _, err := s.p.Bot.SellMarket(ctx, s.p.Symbol, o.Amount); err != nil {
				return err
			}
		}
		logrus.WithFields(logrus.Fields{"strategy": s.Name(), "closed": len(held)}).
			Info("close long")
		return s.p.Groups.Clear(smaGroup)
	}
	return nil
}

func sma(values []float64, n int) float64 {
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n)
}
