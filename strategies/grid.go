package strategies

import (
	"context"

	"github.com/sirupsen/logrus"
)

func init() {
	Register("grid", func(p Params) Strategy {
		return &Grid{
			p:      p,
			Levels: 3,
			Step:   0.005,
			Amount: 0.01,
		}
	})
}

// Grid re-quotes a ladder of resting limit orders around the last traded
// price each step: Levels buys below, Levels sells above, Step apart.
// Previous unfilled quotes are canceled before the ladder is replaced.
type Grid struct {
	p      Params
	Levels int
	Step   float64 // fraction of the last price between levels
	Amount float64
}

func (g *Grid) Name() string { return "grid" }

func (g *Grid) Run(ctx context.Context, now int64) error {
	canceled, err := g.p.Bot.CancelUnfilledOrders(ctx, g.p.Symbol, 0)
	if err != nil {
		return err
	}
	if len(canceled) > 0 {
		logrus.WithFields(logrus.Fields{"strategy": g.Name(), "canceled": len(canceled)}).
			Debug("requoting grid")
	}

	tk, err := g.p.Bot.GetTicker(ctx, g.p.Symbol)
	if err != nil {
		return err
	}

	for i := 1; i <= g.Levels; i++ {
		offset := tk.Last * g.Step * float64(i)
		if _, err := g.p.Bot.BuyGTX(ctx, g.p.Symbol, g.Amount, tk.Last-offset); err != nil {
			return err
		}
		if _, err := g.p.Bot.SellGTX(ctx, g.p.Symbol, g.Amount, tk.Last+offset); err != nil {
			return err
		}
	}
	return nil
}
