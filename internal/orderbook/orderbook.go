// Package orderbook owns the two-sided book and coordinates the
// add -> emit-add -> match -> emit-match and remove -> emit-remove
// protocols. It is the only package that mutates a resting order's own
// side or reaches for the matching engine.
//
// OrderBook is not safe for concurrent use. It is a single-threaded,
// synchronous component by design (as is book.OrderFactory):
// a multi-threaded deployment must serialize calls into it externally,
// the way cmd/orderbook's CLI does with a single reader goroutine.
package orderbook

import (
	"limitbook/internal/book"
	"limitbook/internal/events"
	"limitbook/internal/matching"
	"limitbook/internal/observer"
)

// OrderBook is the aggregate root: it owns both sides and the observer
// list, and is the only thing that calls into the matching engine.
type OrderBook struct {
	bids *book.BookSide
	asks *book.BookSide

	observers []observer.Observer
}

// New returns an empty book.
func New() *OrderBook {
	return &OrderBook{
		bids: book.NewBidSide(),
		asks: book.NewAskSide(),
	}
}

// Bids exposes the resting buy side for read-only reporting (CLI print,
// metrics depth gauges). Mutation must only ever happen through AddOrder
// and RemoveOrder.
func (ob *OrderBook) Bids() *book.BookSide { return ob.bids }

// Asks exposes the resting sell side for read-only reporting.
func (ob *OrderBook) Asks() *book.BookSide { return ob.asks }

// AddObserver appends obs to the fan-out list. Order of registration is
// the order of delivery.
func (ob *OrderBook) AddObserver(obs observer.Observer) {
	ob.observers = append(ob.observers, obs)
}

// RemoveObserver removes the first registration of obs found by identity,
// if any.
func (ob *OrderBook) RemoveObserver(obs observer.Observer) {
	for i, o := range ob.observers {
		if o == obs {
			ob.observers = append(ob.observers[:i], ob.observers[i+1:]...)
			return
		}
	}
}

// AddOrder inserts order onto its own side, announces it, then sweeps the
// opposite side for crossing liquidity. Matches are emitted in the exact
// order the matching engine produced them. If the incoming order is fully
// drained by matching, it is swept off its own side before returning so
// no filled order is ever left resting.
//
// order.Quantity on return equals its value on entry minus the sum of
// every emitted Match quantity involving it — the matching engine
// decrements quantity exactly once per trade, so this holds regardless of
// how much of the order filled.
func (ob *OrderBook) AddOrder(order *book.Order) {
	own, opposite := ob.sides(order.Side)

	own.Append(order.Price, order)
	ob.notify(events.NewAdd(order))

	trades := matching.Match(order, opposite)
	for _, t := range trades {
		ob.notify(events.NewMatch(t.Buy, t.Sell, t.Quantity, t.Price))
	}

	if order.Filled() {
		own.Remove(order)
	}
}

// RemoveOrder cancels order: if it is still resting at its own price
// level, it is unlinked and the level is erased if left empty. A Remove
// event is emitted unconditionally, even if the order was not found —
// this matches the source's lenient cancel-of-unknown-order contract.
func (ob *OrderBook) RemoveOrder(order *book.Order) {
	own, _ := ob.sides(order.Side)
	own.Remove(order)
	ob.notify(events.NewRemove(order))
}

func (ob *OrderBook) sides(side book.Side) (own, opposite *book.BookSide) {
	if side == book.Buy {
		return ob.bids, ob.asks
	}
	return ob.asks, ob.bids
}

func (ob *OrderBook) notify(e events.Event) {
	for _, obs := range ob.observers {
		obs.OnEvent(e)
	}
}
