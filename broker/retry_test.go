package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/market"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(5).Do(context.Background(), "op", func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(5).Do(context.Background(), "op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionIsUnavailable(t *testing.T) {
	t.Parallel()

	calls := 0
	err := fastPolicy(3).Do(context.Background(), "get_ticker", func() error {
		calls++
		return errors.New("down")
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "get_ticker")
}

func TestRetryZeroAttemptsMeansOne(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryPolicy{}.Do(context.Background(), "op", func() error {
		calls++
		return errors.New("down")
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestRetryAbortsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	errc := make(chan error, 1)
	go func() {
		errc <- p.Do(ctx, "op", func() error {
			calls++
			return errors.New("down")
		})
	}()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not honor cancellation")
	}
}

// flakyData fails a fixed number of times before answering.
type flakyData struct {
	failures int
	calls    int
}

func (f *flakyData) GetOHLCV(context.Context, string, string, int) ([]market.Bar, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("gateway timeout")
	}
	return []market.Bar{{Timestamp: 1000, Open: 100}}, nil
}

func (f *flakyData) GetTicker(context.Context, string) (market.Ticker, error) {
	f.calls++
	if f.calls <= f.failures {
		return market.Ticker{}, errors.New("gateway timeout")
	}
	return market.Ticker{Symbol: "BTC/USDT", Last: 100, Timestamp: 1000}, nil
}

func TestRetryingMarketData(t *testing.T) {
	t.Parallel()

	src := &flakyData{failures: 2}
	rd := RetryingMarketData{Next: src, Policy: fastPolicy(5)}

	bars, err := rd.GetOHLCV(context.Background(), "BTC/USDT", "1h", 1)
	assert.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, 3, src.calls)

	src = &flakyData{failures: 10}
	rd = RetryingMarketData{Next: src, Policy: fastPolicy(2)}
	_, err = rd.GetTicker(context.Background(), "BTC/USDT")
	assert.ErrorIs(t, err, ErrUnavailable)
}
