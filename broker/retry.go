package broker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/cryptobot/market"
)

// RetryPolicy retries collaborator calls with jittered exponential backoff.
// The core never assumes zero latency from a port; after MaxAttempts failures
// the call is surfaced as ErrUnavailable.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Log         *logrus.Logger
}

// DefaultRetryPolicy matches the live adapters' bounded-attempt convention.
func DefaultRetryPolicy(log *logrus.Logger) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Log:         log,
	}
}

// Do runs fn up to MaxAttempts times. Context cancellation aborts the wait.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if p.Log != nil {
			p.Log.WithFields(logrus.Fields{
				"op":      op,
				"attempt": attempt,
				"error":   err,
			}).Warn("collaborator call failed")
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, op, attempts, err)
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	// Full jitter keeps concurrent clients from thundering in lockstep.
	return time.Duration(rand.Int63n(int64(d) + 1))
}

// RetryingMarketData wraps a MarketData port with a RetryPolicy. Execution is
// deliberately not wrapped: re-sending an order that may have been accepted
// is worse than surfacing the failure to the strategy.
type RetryingMarketData struct {
	Next   MarketData
	Policy RetryPolicy
}

func (r RetryingMarketData) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, error) {
	var bars []market.Bar
	err := r.Policy.Do(ctx, "get_ohlcv", func() error {
		var err error
		bars, err = r.Next.GetOHLCV(ctx, symbol, timeframe, limit)
		return err
	})
	return bars, err
}

func (r RetryingMarketData) GetTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	var tk market.Ticker
	err := r.Policy.Do(ctx, "get_ticker", func() error {
		var err error
		tk, err = r.Next.GetTicker(ctx, symbol)
		return err
	})
	return tk, err
}
