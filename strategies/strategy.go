package strategies

import (
	"context"
	"fmt"
	"sort"

	"github.com/rustyeddy/cryptobot/broker"
	"github.com/rustyeddy/cryptobot/ledger"
)

// Strategy is invoked once per replay step (or once per live interval) with
// the current time in epoch milliseconds. It trades through the broker
// ports; it never touches the engine directly.
type Strategy interface {
	Name() string
	Run(ctx context.Context, now int64) error
}

// Params are the common knobs handed to every constructor.
type Params struct {
	Bot       broker.Bot
	Groups    ledger.Groups
	Symbol    string
	Timeframe string
}

// Constructor builds a strategy instance. Strategies register themselves by
// name at init time; names are resolved once at startup, never by runtime
// reflection.
type Constructor func(p Params) Strategy

var registry = make(map[string]Constructor)

func Register(name string, c Constructor) {
	registry[name] = c
}

// New resolves a registered strategy by name.
func New(name string, p Params) (Strategy, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (registered: %v)", name, Names())
	}
	return c(p), nil
}

// Names lists registered strategies, sorted for stable error messages.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
