package strategies

import "context"

func init() {
	Register("noop", func(Params) Strategy { return Noop{} })
}

// Noop places no orders. Useful for dry-running data and config.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Run(context.Context, int64) error { return nil }
