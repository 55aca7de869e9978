// Package exchange holds the live-market collaborators: a Binance futures
// market-data client and a locally simulated execution path for emulation
// runs. Everything here owns its own latency, retries, and failure modes;
// the replay core never imports it.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/market"
)

const defaultBaseURL = "https://fapi.binance.com"

// Client is a Binance USDT-futures market-data client implementing the
// broker MarketData port.
type Client struct {
	base   string
	http   *http.Client
	apiKey string
}

func NewClient(access config.APIAccess) *Client {
	return &Client{
		base:   defaultBaseURL,
		http:   &http.Client{Timeout: 15 * time.Second},
		apiKey: access.Key,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange: %s returned %d: %s", path, resp.StatusCode, body)
	}
	return json.Unmarshal(body, v)
}

// GetOHLCV fetches the most recent limit klines. Binance includes the
// still-forming candle as the last element, matching the port contract.
func (c *Client) GetOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]market.Bar, error) {
	q := url.Values{}
	q.Set("symbol", market.SymbolKey(symbol))
	q.Set("interval", timeframe)
	q.Set("limit", strconv.Itoa(limit))

	// Klines arrive as heterogeneous arrays:
	// [openTime, "open", "high", "low", "close", "volume", ...]
	var raw [][]json.RawMessage
	if err := c.get(ctx, "/fapi/v1/klines", q, &raw); err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			return nil, fmt.Errorf("exchange: short kline row")
		}
		var b market.Bar
		if err := json.Unmarshal(row[0], &b.Timestamp); err != nil {
			return nil, fmt.Errorf("exchange: bad kline open time: %w", err)
		}
		for i, dst := range []*float64{&b.Open, &b.High, &b.Low, &b.Close, &b.Volume} {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				return nil, fmt.Errorf("exchange: bad kline field: %w", err)
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("exchange: bad kline value %q: %w", s, err)
			}
			*dst = v
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func (c *Client) GetTicker(ctx context.Context, symbol string) (market.Ticker, error) {
	q := url.Values{}
	q.Set("symbol", market.SymbolKey(symbol))

	var raw struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
		Time   int64  `json:"time"`
	}
	if err := c.get(ctx, "/fapi/v1/ticker/price", q, &raw); err != nil {
		return market.Ticker{}, err
	}
	last, err := strconv.ParseFloat(raw.Price, 64)
	if err != nil {
		return market.Ticker{}, fmt.Errorf("exchange: bad ticker price %q: %w", raw.Price, err)
	}
	ts := raw.Time
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}
	return market.Ticker{Symbol: symbol, Last: last, Timestamp: ts}, nil
}
