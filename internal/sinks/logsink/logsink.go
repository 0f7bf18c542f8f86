// Package logsink implements the reference JSON-lines observer described
// in the event log format: one flushed line per event, UTF-8, newline
// terminated.
package logsink

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"limitbook/internal/events"
)

// Sink appends one JSON line per event to an append-only file, flushing
// after every write. Construction failure (the file cannot be opened) is
// fatal and returned to the caller; per-write failures are logged and
// swallowed, matching the sink-failure policy for this observer.
type Sink struct {
	mu   sync.Mutex
	file *os.File
}

// New opens (creating if necessary) path for append and returns a Sink
// backed by it.
func New(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logsink: cannot open %s: %w", path, err)
	}
	return &Sink{file: f}, nil
}

// Close closes the underlying file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

type addLine struct {
	Type      string  `json:"type"`
	OrderID   string  `json:"order_id"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Quantity  uint64  `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
}

type cancelLine struct {
	Type      string `json:"type"`
	OrderID   string `json:"order_id"`
	Side      string `json:"side"`
	Timestamp int64  `json:"timestamp"`
}

type matchLine struct {
	Type      string  `json:"type"`
	BuyID     string  `json:"buy_id"`
	SellID    string  `json:"sell_id"`
	Price     float64 `json:"price"`
	Quantity  uint64  `json:"quantity"`
	Timestamp int64   `json:"timestamp"`
}

// OnEvent implements observer.Observer.
func (s *Sink) OnEvent(e events.Event) {
	var (
		payload any
	)
	switch e.Type {
	case events.Add:
		payload = addLine{
			Type:      "add",
			OrderID:   e.Order.ID,
			Side:      e.Order.Side.String(),
			Price:     e.Order.Price,
			Quantity:  e.Order.Quantity,
			Timestamp: e.Timestamp.UnixMilli(),
		}
	case events.Remove:
		payload = cancelLine{
			Type:      "cancel",
			OrderID:   e.Order.ID,
			Side:      e.Order.Side.String(),
			Timestamp: e.Timestamp.UnixMilli(),
		}
	case events.Match:
		payload = matchLine{
			Type:      "match",
			BuyID:     e.Buy.ID,
			SellID:    e.Sell.ID,
			Price:     e.Price,
			Quantity:  e.Quantity,
			Timestamp: e.Timestamp.UnixMilli(),
		}
	default:
		log.Error().Int("type", int(e.Type)).Msg("logsink: unknown event type")
		return
	}

	line, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("logsink: marshal failed")
		return
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.Write(line); err != nil {
		log.Error().Err(err).Msg("logsink: write failed")
		return
	}
	if err := s.file.Sync(); err != nil {
		log.Error().Err(err).Msg("logsink: flush failed")
	}
}
