// Package matching implements the stateless core of price-time priority
// matching: given an incoming order and the opposite side of the book, it
// walks best-price-first, drains crossing levels, and reports every trade
// it produced. It never touches the incoming order's own side — that is
// OrderBook's job.
package matching

import "limitbook/internal/book"

// Trade is one match produced by Match: a quantity of the incoming order
// filled against a single resting order at the resting order's price.
type Trade struct {
	Buy      *book.Order // the BUY-side participant
	Sell     *book.Order // the SELL-side participant
	Quantity uint64
	Price    float64 // always the resting (maker) order's limit price
}

// Match drains opposite in best-first order against incoming, mutating
// incoming's quantity and the quantities of every resting order it
// touches, and erasing any level it fully drains. It stops when incoming
// is filled, the next level's price no longer crosses, or opposite is
// exhausted. Each resting order's quantity is reduced exactly once, here,
// inside the loop — no caller may decrement it again.
func Match(incoming *book.Order, opposite *book.BookSide) []Trade {
	var trades []Trade

	for incoming.Quantity > 0 {
		level, ok := opposite.Best()
		if !ok {
			break
		}
		if !crosses(incoming, level.PriceLevel) {
			break
		}

		for !level.Empty() && incoming.Quantity > 0 {
			resting := level.Front()
			fill := min(incoming.Quantity, resting.Quantity)

			trades = append(trades, buildTrade(incoming, resting, fill, level.PriceLevel))

			resting.ReduceQuantity(fill)
			incoming.ReduceQuantity(fill)

			if resting.Filled() {
				level.PopFront()
			}
		}

		if level.Empty() {
			opposite.DeleteLevel(level)
		}
	}

	return trades
}

// crosses reports whether incoming's limit price is compatible with a
// resting level at price p: a BUY crosses asks at or below its price, a
// SELL crosses bids at or above its price.
func crosses(incoming *book.Order, p float64) bool {
	if incoming.Side == book.Buy {
		return incoming.Price >= p
	}
	return incoming.Price <= p
}

func buildTrade(incoming, resting *book.Order, quantity uint64, price float64) Trade {
	if incoming.Side == book.Buy {
		return Trade{Buy: incoming, Sell: resting, Quantity: quantity, Price: price}
	}
	return Trade{Buy: resting, Sell: incoming, Quantity: quantity, Price: price}
}
