package ledger

import (
	"sync"
)

// Book is the append-only order store. IDs are assigned monotonically from 0.
// Status transitions go through Fill and Cancel only; a terminal order is
// never mutated again.
type Book struct {
	mu     sync.Mutex
	nextID int64
	orders []*Order
}

func NewBook() *Book {
	return &Book{}
}

// Place validates and appends a new unfilled order, returning a copy with its
// assigned id.
func (b *Book) Place(symbol string, typ Type, side Side, amount, price float64, ts int64) (Order, error) {
	o := Order{
		Symbol:    symbol,
		Type:      typ,
		Side:      side,
		Amount:    amount,
		Price:     price,
		Timestamp: ts,
		Status:    Unfilled,
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	o.ID = b.nextID
	b.nextID++
	b.orders = append(b.orders, &o)
	return o, nil
}

// Get returns a copy of the order with the given id.
func (b *Book) Get(id int64) (Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range b.orders {
		if o.ID == id {
			return *o, true
		}
	}
	return Order{}, false
}

// Unfilled returns copies of all unfilled orders in placement order.
func (b *Book) Unfilled() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Order
	for _, o := range b.orders {
		if o.Status == Unfilled {
			out = append(out, *o)
		}
	}
	return out
}

// Fill transitions an unfilled order to filled at the given price. Filling a
// terminal order is a no-op.
func (b *Book) Fill(id int64, price float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range b.orders {
		if o.ID == id && o.Status == Unfilled {
			o.Status = Filled
			o.Price = price
			return true
		}
	}
	return false
}

// Cancel transitions an unfilled order to canceled. Canceling an order that
// is not unfilled is a no-op.
func (b *Book) Cancel(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, o := range b.orders {
		if o.ID == id && o.Status == Unfilled {
			o.Status = Canceled
			return true
		}
	}
	return false
}

// CancelUnfilled cancels unfilled orders for symbol and returns the affected
// ids in placement order. limit > 0 caps how many are canceled.
func (b *Book) CancelUnfilled(symbol string, limit int) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []int64
	for _, o := range b.orders {
		if o.Status != Unfilled || o.Symbol != symbol {
			continue
		}
		o.Status = Canceled
		ids = append(ids, o.ID)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids
}

// Filled returns copies of filled orders for symbol in chronological
// (placement) order.
func (b *Book) Filled(symbol string) []Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []Order
	for _, o := range b.orders {
		if o.Status == Filled && o.Symbol == symbol {
			out = append(out, *o)
		}
	}
	return out
}

// Symbols returns the distinct symbols seen by the book, in first-seen order.
func (b *Book) Symbols() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[string]bool)
	var out []string
	for _, o := range b.orders {
		if !seen[o.Symbol] {
			seen[o.Symbol] = true
			out = append(out, o.Symbol)
		}
	}
	return out
}

// History exports [timestamp, side, amount, symbol] rows, optionally filtered
// by status ("" exports everything).
func (b *Book) History(status Status) []HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]HistoryEntry, 0, len(b.orders))
	for _, o := range b.orders {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, HistoryEntry{
			Timestamp: o.Timestamp,
			Side:      o.Side,
			Amount:    o.Amount,
			Symbol:    o.Symbol,
		})
	}
	return out
}
