// Package events defines the tagged-union event stream that OrderBook
// emits to its observers: Add, Remove, and Match, each carrying a
// snapshot of the orders involved rather than a live pointer into the
// book.
package events

import (
	"time"

	"github.com/google/uuid"

	"limitbook/internal/book"
)

// Type discriminates the three event kinds. A single type switch in each
// observer is the only dispatch point; there is no downcasting chain.
type Type int

const (
	Add Type = iota
	Remove
	Match
)

func (t Type) String() string {
	switch t {
	case Add:
		return "add"
	case Remove:
		return "cancel"
	case Match:
		return "match"
	default:
		return "unknown"
	}
}

// OrderSnapshot is a value-typed copy of an order's identity and state at
// the instant an event was emitted. Because it is a copy, not a pointer
// into the live book, an observer that retains it can never observe —
// or cause — a later mutation.
type OrderSnapshot struct {
	ID       string
	Side     book.Side
	Price    float64
	Quantity uint64
}

func snapshotOf(o *book.Order) OrderSnapshot {
	return OrderSnapshot{ID: o.ID, Side: o.Side, Price: o.Price, Quantity: o.Quantity}
}

// Event is the single struct emitted for every book mutation. ID is a
// monotonically increasing, globally unique sequence number assigned at
// construction; Token is a random correlation identifier with no ordering
// significance. Of the sinks in this repository only the ledger sink
// records it; the log and stream sinks do not write it.
type Event struct {
	ID        uint64
	Type      Type
	Timestamp time.Time
	Token     uuid.UUID

	// Populated for Add and Remove.
	Order OrderSnapshot

	// Populated for Match.
	Buy      OrderSnapshot
	Sell     OrderSnapshot
	Quantity uint64
	Price    float64
}

// nextID is the package-level, single-threaded event sequence counter. It
// is only ever advanced from the OrderBook's goroutine, which itself is
// single-threaded by contract (see OrderBook's package docs).
var nextID uint64

func newID() uint64 {
	id := nextID
	nextID++
	return id
}

// NewAdd constructs an Add event for an order that was just inserted onto
// its own side.
func NewAdd(o *book.Order) Event {
	return Event{
		ID:        newID(),
		Type:      Add,
		Timestamp: time.Now(),
		Token:     uuid.New(),
		Order:     snapshotOf(o),
	}
}

// NewRemove constructs a Remove event for an order that was cancelled (or
// attempted-cancelled — callers emit this unconditionally, see OrderBook).
func NewRemove(o *book.Order) Event {
	return Event{
		ID:        newID(),
		Type:      Remove,
		Timestamp: time.Now(),
		Token:     uuid.New(),
		Order:     snapshotOf(o),
	}
}

// NewMatch constructs a Match event. price is the maker's (resting
// order's) limit price, per the price-taker convention.
func NewMatch(buy, sell *book.Order, quantity uint64, price float64) Event {
	return Event{
		ID:        newID(),
		Type:      Match,
		Timestamp: time.Now(),
		Token:     uuid.New(),
		Buy:       snapshotOf(buy),
		Sell:      snapshotOf(sell),
		Quantity:  quantity,
		Price:     price,
	}
}

// ResetCounter returns the event-id sequence to 0. Reserved for tests
// that need reproducible ids across runs.
func ResetCounter() {
	nextID = 0
}
