// Package streamsink implements the reference websocket broadcast
// observer: every connected client receives the same JSON-lines payload
// as the log sink, fanned out by a hub goroutine that never blocks on a
// slow or disconnected client.
package streamsink

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/events"
)

const clientSendBuffer = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Sink is a websocket broadcast hub implementing observer.Observer.
// OnEvent hands the event off to the hub's inbound channel and returns
// immediately; the hub goroutine owns all client bookkeeping.
type Sink struct {
	broadcast  chan []byte
	register   chan *client
	unregister chan *client

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New returns a hub with no clients yet registered. Run must be started
// (typically under a tomb) before any events can be delivered.
func New() *Sink {
	return &Sink{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		clients:    make(map[*client]struct{}),
	}
}

// Upgrade promotes an incoming HTTP request to a websocket connection and
// registers it with the hub. Intended to be wired as an http.HandlerFunc.
func (s *Sink) Upgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("streamsink: upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuffer)}
	s.register <- c
	go s.writePump(c)
}

func (s *Sink) writePump(c *client) {
	defer func() {
		s.unregister <- c
		c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// Run drives the hub's registration and broadcast loop until t is dying.
func (s *Sink) Run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			s.mu.Lock()
			for c := range s.clients {
				close(c.send)
			}
			s.clients = nil
			s.mu.Unlock()
			return nil
		case c := <-s.register:
			s.mu.Lock()
			s.clients[c] = struct{}{}
			s.mu.Unlock()
		case c := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
			}
			s.mu.Unlock()
		case msg := <-s.broadcast:
			s.mu.Lock()
			for c := range s.clients {
				select {
				case c.send <- msg:
				default:
					// Slow or dead client: drop it rather than block the hub.
					delete(s.clients, c)
					close(c.send)
				}
			}
			s.mu.Unlock()
		}
	}
}

type line struct {
	Type      string  `json:"type"`
	OrderID   string  `json:"order_id,omitempty"`
	Side      string  `json:"side,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Quantity  uint64  `json:"quantity,omitempty"`
	BuyID     string  `json:"buy_id,omitempty"`
	SellID    string  `json:"sell_id,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// OnEvent implements observer.Observer. It never blocks on a client; the
// only queue it can fill up is the hub's own inbound broadcast channel,
// which is generously buffered for exactly this reason.
func (s *Sink) OnEvent(e events.Event) {
	var l line
	switch e.Type {
	case events.Add:
		l = line{Type: "add", OrderID: e.Order.ID, Side: e.Order.Side.String(), Price: e.Order.Price, Quantity: e.Order.Quantity, Timestamp: e.Timestamp.UnixMilli()}
	case events.Remove:
		l = line{Type: "cancel", OrderID: e.Order.ID, Side: e.Order.Side.String(), Timestamp: e.Timestamp.UnixMilli()}
	case events.Match:
		l = line{Type: "match", BuyID: e.Buy.ID, SellID: e.Sell.ID, Price: e.Price, Quantity: e.Quantity, Timestamp: e.Timestamp.UnixMilli()}
	default:
		return
	}

	payload, err := json.Marshal(l)
	if err != nil {
		log.Error().Err(err).Msg("streamsink: marshal failed")
		return
	}

	select {
	case s.broadcast <- payload:
	default:
		log.Warn().Msg("streamsink: broadcast channel full, dropping event")
	}
}
