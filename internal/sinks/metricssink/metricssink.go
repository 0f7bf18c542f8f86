// Package metricssink implements the reference Prometheus observer: it
// counts events by kind, sums matched quantity, and republishes book
// depth as gauges on every event.
package metricssink

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"limitbook/internal/events"
)

// DepthFunc reports the current number of resting orders on each side.
// The sink calls it after every event to keep the depth gauges current.
type DepthFunc func() (bidOrders, askOrders int)

// Sink is a Prometheus-instrumented observer.Observer.
type Sink struct {
	eventsTotal *prometheus.CounterVec
	matchQty    prometheus.Counter
	bidDepth    prometheus.Gauge
	askDepth    prometheus.Gauge
	depthFn     DepthFunc
	server      *http.Server
}

// New registers the orderbook metrics on reg and returns a Sink that will
// serve them at addr + "/metrics" once Serve is called.
func New(reg *prometheus.Registry, addr string, depthFn DepthFunc) *Sink {
	s := &Sink{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orderbook_events_total",
			Help: "Number of book lifecycle events emitted, by type.",
		}, []string{"type"}),
		matchQty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orderbook_match_quantity_total",
			Help: "Sum of quantity across every matched trade.",
		}),
		bidDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orderbook_bid_depth",
			Help: "Current number of resting bid orders.",
		}),
		askDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orderbook_ask_depth",
			Help: "Current number of resting ask orders.",
		}),
		depthFn: depthFn,
	}

	reg.MustRegister(s.eventsTotal, s.matchQty, s.bidDepth, s.askDepth)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.server = &http.Server{Addr: addr, Handler: mux}

	return s
}

// OnEvent implements observer.Observer.
func (s *Sink) OnEvent(e events.Event) {
	s.eventsTotal.WithLabelValues(e.Type.String()).Inc()
	if e.Type == events.Match {
		s.matchQty.Add(float64(e.Quantity))
	}

	bids, asks := s.depthFn()
	s.bidDepth.Set(float64(bids))
	s.askDepth.Set(float64(asks))
}

// Serve runs the metrics HTTP endpoint until ctx is cancelled, then shuts
// it down gracefully. Construction failure (the port cannot be bound) is
// reported fatally through the returned error from ListenAndServe; a
// clean shutdown returns nil.
func (s *Sink) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("metricssink: shutting down")
		return s.server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
