// Command orderbook runs the interactive limit-order-book CLI described
// in the reference front-end: it wires a matching OrderBook up to a
// durable JSON-lines log and, optionally, a Prometheus metrics endpoint,
// a websocket broadcast stream, and a Redis-backed ledger, then drives it
// from stdin until "exit" or EOF.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/book"
	"limitbook/internal/cli"
	"limitbook/internal/orderbook"
	"limitbook/internal/sinks/ledgersink"
	"limitbook/internal/sinks/logsink"
	"limitbook/internal/sinks/metricssink"
	"limitbook/internal/sinks/streamsink"
)

func main() {
	logPath := flag.String("log", "trades.jsonl", "path to the JSON-lines trade log")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables it)")
	streamAddr := flag.String("stream-addr", "", "address to serve the websocket event stream on (empty disables it)")
	redisAddr := flag.String("redis-addr", "", "Redis address for the ledger sink (empty disables it)")
	redisStream := flag.String("redis-stream", "orderbook:events", "Redis stream key for the ledger sink")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ob := orderbook.New()
	factory := book.NewOrderFactory()

	log.Info().Str("path", *logPath).Msg("opening trade log")
	logSink, err := logsink.New(*logPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to open trade log")
	}
	defer logSink.Close()
	ob.AddObserver(logSink)

	t, ctx := tomb.WithContext(ctx)

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics := metricssink.New(reg, *metricsAddr, func() (int, int) {
			_, bidOrders := ob.Bids().Depth()
			_, askOrders := ob.Asks().Depth()
			return bidOrders, askOrders
		})
		ob.AddObserver(metrics)
		t.Go(func() error { return metrics.Serve(ctx) })
		log.Info().Str("addr", *metricsAddr).Msg("serving metrics")
	}

	if *streamAddr != "" {
		stream := streamsink.New()
		ob.AddObserver(stream)
		t.Go(func() error { return stream.Run(t) })
		mux := http.NewServeMux()
		mux.HandleFunc("/stream", stream.Upgrade)
		server := &http.Server{Addr: *streamAddr, Handler: mux}
		t.Go(func() error {
			go func() {
				<-t.Dying()
				server.Shutdown(context.Background())
			}()
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		log.Info().Str("addr", *streamAddr).Msg("serving event stream")
	}

	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", *redisAddr).Msg("unable to reach Redis for the ledger sink")
		}
		ledger := ledgersink.New(client, *redisStream)
		ob.AddObserver(ledger)
		t.Go(func() error { return ledger.Run(ctx) })
		log.Info().Str("addr", *redisAddr).Str("stream", *redisStream).Msg("ledger sink enabled")
	}

	front := cli.New(ob, factory, os.Stdin, os.Stdout)
	front.Run()

	stop()
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("background sink exited with error")
		os.Exit(1)
	}
}
