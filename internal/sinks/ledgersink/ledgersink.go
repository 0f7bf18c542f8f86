// Package ledgersink implements the reference durable-ledger observer: it
// appends every event to a Redis stream via XADD so other services
// (accounting, audit) can consume the same history independently of the
// matching core. Writes are handed off to an owned background goroutine;
// OnEvent never blocks: if that goroutine's bounded queue is full, the
// oldest pending write is dropped — ledger completeness is explicitly
// best-effort, unlike the log sink's per-line durability.
package ledgersink

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"limitbook/internal/events"
)

const queueDepth = 256

// Sink appends events to a Redis stream. Construction (dialing Redis) is
// not itself performed here; callers pass an already-configured client so
// connection failures surface at startup through their own client setup.
type Sink struct {
	client *redis.Client
	stream string
	queue  chan events.Event
}

// New returns a Sink that XADDs to stream using client. It starts no
// goroutine; events are only written once the caller runs Run.
func New(client *redis.Client, stream string) *Sink {
	return &Sink{
		client: client,
		stream: stream,
		queue:  make(chan events.Event, queueDepth),
	}
}

// OnEvent implements observer.Observer. It hands e to the background
// writer, dropping the oldest queued event if the queue is saturated
// rather than blocking the matching core.
func (s *Sink) OnEvent(e events.Event) {
	select {
	case s.queue <- e:
		return
	default:
	}

	// Queue full: drop the oldest pending write to make room, logging the
	// loss, and enqueue the new event. Best-effort by design.
	select {
	case old := <-s.queue:
		log.Warn().Uint64("dropped_event_id", old.ID).Msg("ledgersink: queue saturated, dropping oldest")
	default:
	}
	select {
	case s.queue <- e:
	default:
	}
}

// Run drains the queue and XADDs each event to Redis until ctx is
// cancelled.
func (s *Sink) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-s.queue:
			s.write(ctx, e)
		}
	}
}

func (s *Sink) write(ctx context.Context, e events.Event) {
	values := map[string]any{
		"type":      e.Type.String(),
		"token":     e.Token.String(),
		"timestamp": e.Timestamp.UnixMilli(),
	}

	switch e.Type {
	case events.Add, events.Remove:
		values["order_id"] = e.Order.ID
		values["side"] = e.Order.Side.String()
		values["price"] = e.Order.Price
		values["quantity"] = strconv.FormatUint(e.Order.Quantity, 10)
	case events.Match:
		values["buy_id"] = e.Buy.ID
		values["sell_id"] = e.Sell.ID
		values["price"] = e.Price
		values["quantity"] = strconv.FormatUint(e.Quantity, 10)
	}

	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		log.Error().Err(err).Uint64("event_id", e.ID).Msg("ledgersink: xadd failed")
	}
}
