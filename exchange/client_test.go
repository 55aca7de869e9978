package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/cryptobot/config"
	"github.com/rustyeddy/cryptobot/market"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(config.APIAccess{Key: "test-key"})
	c.base = srv.URL
	return c
}

func TestGetOHLCV(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/klines", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.Header.Get("X-MBX-APIKEY"))

		w.Write([]byte(`[
			[1577836800000,"100.5","105.0","95.5","101.0","12.3",1577840399999,"0",0,"0","0","0"],
			[1577840400000,"101.0","102.0","99.0","100.0","8.8",1577843999999,"0",0,"0","0","0"]
		]`))
	})

	bars, err := c.GetOHLCV(context.Background(), "BTC/USDT", "1h", 2)
	assert.NoError(t, err)
	assert.Equal(t, []market.Bar{
		{Timestamp: 1577836800000, Open: 100.5, High: 105, Low: 95.5, Close: 101, Volume: 12.3},
		{Timestamp: 1577840400000, Open: 101, High: 102, Low: 99, Close: 100, Volume: 8.8},
	}, bars)
}

func TestGetOHLCVShortRow(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[1577836800000,"100.5"]]`))
	})

	_, err := c.GetOHLCV(context.Background(), "BTC/USDT", "1h", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "short kline row")
}

func TestGetOHLCVHTTPError(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	})

	_, err := c.GetOHLCV(context.Background(), "NOPE/USDT", "1h", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestGetTicker(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fapi/v1/ticker/price", r.URL.Path)
		assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"2345.67","time":1577836800000}`))
	})

	tk, err := c.GetTicker(context.Background(), "ETH/USDT")
	assert.NoError(t, err)
	assert.Equal(t, market.Ticker{Symbol: "ETH/USDT", Last: 2345.67, Timestamp: 1577836800000}, tk)
}

func TestGetTickerBadPrice(t *testing.T) {
	t.Parallel()

	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"not-a-number"}`))
	})

	_, err := c.GetTicker(context.Background(), "BTC/USDT")
	assert.Error(t, err)
}
