// Package observer declares the sink contract that OrderBook fans events
// out to. Every sink in internal/sinks implements this one method.
package observer

import "limitbook/internal/events"

// Observer accepts events in the order they are emitted. OnEvent has no
// return value and no back-pressure signal; a panicking OnEvent aborts the
// emitting OrderBook call for the remaining observers, but the book's own
// state is already committed by the time emission begins.
type Observer interface {
	OnEvent(e events.Event)
}
