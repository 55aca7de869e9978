package perf

import (
	"fmt"
	"math"

	"github.com/rustyeddy/cryptobot/ledger"
)

// amountPrecision is the fixed decimal precision applied to running position
// amounts after each update, suppressing float drift from repeated
// division/multiplication.
const amountPrecision = 10

func round(v float64) float64 {
	shift := math.Pow10(amountPrecision)
	return math.Round(v*shift) / shift
}

type positionSide int

const (
	flat positionSide = iota
	long
	short
)

// Compute replays one symbol's orders in chronological order and returns its
// performance report. Orders that are not filled are skipped. The first
// filled order determines the position side; same-side fills average the
// entry price, opposite-side fills realize PnL against it. A closing order
// larger than the open amount flips the position: PnL is realized on the
// open amount only and the remainder opens the opposite side at the order's
// price.
func Compute(orders []ledger.Order, fees Fees) (Report, error) {
	var (
		r          Report
		events     []Point
		entryPrice float64
		longAmt    float64
		shortAmt   float64
		side       = flat
	)

	for _, o := range orders {
		if o.Status != ledger.Filled {
			continue
		}
		if o.Amount <= 0 {
			return Report{}, fmt.Errorf("order %d: non-positive amount %v reached the accountant", o.ID, o.Amount)
		}

		rate := fees.Maker
		if o.Type == ledger.Market {
			rate = fees.Taker
		}
		r.CommissionPaid += o.Price * o.Amount * rate

		if side == flat {
			if o.Side == ledger.Buy {
				side = long
			} else {
				side = short
			}
		}

		amt := round(o.Amount)
		switch {
		case o.Side == ledger.Buy && side == long:
			// Opening or averaging into the long.
			total := entryPrice*longAmt + amt*o.Price
			longAmt += amt
			entryPrice = total / longAmt

		case o.Side == ledger.Sell && side == short:
			total := entryPrice*shortAmt + amt*o.Price
			shortAmt += amt
			entryPrice = total / shortAmt

		case o.Side == ledger.Sell && side == long:
			var pnl float64
			switch {
			case amt < longAmt:
				pnl = (o.Price - entryPrice) * amt
				longAmt -= amt
			case amt == longAmt:
				pnl = (o.Price - entryPrice) * longAmt
				longAmt = 0
				entryPrice = 0
				side = flat
			default:
				// Close the whole long; the excess opens a short at the
				// order's price with no realized PnL of its own.
				pnl = (o.Price - entryPrice) * longAmt
				shortAmt = amt - longAmt
				longAmt = 0
				entryPrice = o.Price
				side = short
			}
			if pnl > 0 {
				r.LongGrossProfit += pnl
				r.WinLong++
			} else {
				r.LongGrossLoss -= pnl
				r.LossLong++
			}
			events = append(events, Point{Timestamp: o.Timestamp, Value: pnl})

		case o.Side == ledger.Buy && side == short:
			var pnl float64
			switch {
			case amt < shortAmt:
				pnl = (entryPrice - o.Price) * amt
				shortAmt -= amt
			case amt == shortAmt:
				pnl = (entryPrice - o.Price) * shortAmt
				shortAmt = 0
				entryPrice = 0
				side = flat
			default:
				pnl = (entryPrice - o.Price) * shortAmt
				longAmt = amt - shortAmt
				shortAmt = 0
				entryPrice = o.Price
				side = long
			}
			if pnl > 0 {
				r.ShortGrossProfit += pnl
				r.WinShort++
			} else {
				r.ShortGrossLoss -= pnl
				r.LossShort++
			}
			events = append(events, Point{Timestamp: o.Timestamp, Value: pnl})
		}

		longAmt = round(longAmt)
		shortAmt = round(shortAmt)
		if longAmt < 0 || shortAmt < 0 {
			return Report{}, fmt.Errorf("order %d: closed more than the recorded open amount (long=%v short=%v)",
				o.ID, longAmt, shortAmt)
		}
	}

	r.finalize(events)
	return r, nil
}
