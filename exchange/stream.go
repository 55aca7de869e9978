package exchange

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/cryptobot/market"
)

const streamBaseURL = "wss://fstream.binance.com/ws"

// KlineStream pushes closed candles for one symbol/timeframe over a
// websocket, reconnecting with a short pause after any drop.
type KlineStream struct {
	Symbol    string
	Timeframe string
	Log       *logrus.Logger
}

type klineEvent struct {
	Kline struct {
		OpenTime int64  `json:"t"`
		Open     string `json:"o"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Close    string `json:"c"`
		Volume   string `json:"v"`
		Closed   bool   `json:"x"`
	} `json:"k"`
}

// Run streams closed bars into out until ctx is canceled.
func (s *KlineStream) Run(ctx context.Context, out chan<- market.Bar) error {
	url := streamBaseURL + "/" + strings.ToLower(market.SymbolKey(s.Symbol)) + "@kline_" + s.Timeframe

	for {
		if err := s.consume(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.Log.WithError(err).Warn("kline stream disconnected")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			s.Log.Info("kline stream reconnecting")
		}
	}
}

func (s *KlineStream) consume(ctx context.Context, url string, out chan<- market.Bar) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ev klineEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		if !ev.Kline.Closed {
			continue
		}

		bar, ok := parseKline(ev)
		if !ok {
			continue
		}
		select {
		case out <- bar:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func parseKline(ev klineEvent) (market.Bar, bool) {
	fields := []string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return market.Bar{}, false
		}
		vals[i] = v
	}
	return market.Bar{
		Timestamp: ev.Kline.OpenTime,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, true
}
