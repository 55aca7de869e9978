package ledger

import (
	"errors"
	"fmt"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type Type string

const (
	Market Type = "market"
	Limit  Type = "limit"
)

type Status string

const (
	Unfilled Status = "unfilled"
	Filled   Status = "filled"
	Canceled Status = "canceled"
)

// ErrInvalidOrder rejects orders before they enter the ledger: non-positive
// amounts would corrupt the weighted-average entry price downstream, and a
// limit order without a price can never fill.
var ErrInvalidOrder = errors.New("ledger: invalid order")

// Order is a fixed-shape order record. Lifecycle: created unfilled, then
// exactly one terminal transition to filled or canceled.
type Order struct {
	ID        int64   `json:"id"`
	Symbol    string  `json:"symbol"`
	Type      Type    `json:"type"`
	Side      Side    `json:"side"`
	Amount    float64 `json:"amount"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
	Status    Status  `json:"status"`
}

func (o Order) validate() error {
	if o.Amount <= 0 {
		return fmt.Errorf("%w: amount %v must be positive", ErrInvalidOrder, o.Amount)
	}
	if o.Type == Limit && o.Price <= 0 {
		return fmt.Errorf("%w: limit order needs a positive price", ErrInvalidOrder)
	}
	if o.Side != Buy && o.Side != Sell {
		return fmt.Errorf("%w: bad side %q", ErrInvalidOrder, o.Side)
	}
	return nil
}

// HistoryEntry is the order-history export row. It marshals as the tuple
// [timestamp, side, amount, symbol].
type HistoryEntry struct {
	Timestamp int64
	Side      Side
	Amount    float64
	Symbol    string
}

func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`[%d,%q,%v,%q]`, h.Timestamp, h.Side, h.Amount, h.Symbol)), nil
}
