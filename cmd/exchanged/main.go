// Command exchanged is the composition root: it wires configuration,
// logging, the SPSC queue, the order book, the engine loop, the TCP
// ingress adapter, and the HTTP observability surface together, then
// waits for SIGINT/SIGTERM to shut everything down in order.
//
// Grounded in the teacher's main.go wiring style (construct engine,
// start it, submit/consume), generalized from an in-process demo to a
// real composition root with graceful shutdown.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"limitbook/internal/config"
	"limitbook/internal/domain"
	"limitbook/internal/engine"
	"limitbook/internal/httpapi"
	"limitbook/internal/ingress"
	"limitbook/internal/metrics"
	"limitbook/internal/orderbook"
	"limitbook/internal/spscqueue"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional; env vars and defaults otherwise)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	m := metrics.New()

	producer, consumer := spscqueue.New[*domain.Order](cfg.QueueCapacity)

	treeKind := orderbook.TreeKindHashMapList
	if cfg.PriceTreeKind == config.PriceTreeSharded {
		treeKind = orderbook.TreeKindSharded
	}
	book := orderbook.NewBookWithTreeKind(treeKind)

	eng := engine.New(consumer, book, cfg.IdlePolicy, logger.With().Str("component", "engine").Logger(), m, 4096)
	eng.Start()

	go func() {
		for exec := range eng.Executions() {
			logger.Info().
				Uint64("maker_order_id", exec.MakerOrderID).
				Uint64("taker_order_id", exec.TakerOrderID).
				Int64("price", exec.Price).
				Int64("quantity", exec.Quantity).
				Msg("trade executed")
		}
	}()

	adapter := ingress.New(cfg.BindAddress, producer, logger.With().Str("component", "ingress").Logger(), m)
	if err := adapter.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start ingress adapter")
	}

	var httpServer *httpapi.Server
	if cfg.SnapshotEnabled || cfg.MetricsEnabled {
		httpServer = httpapi.New(cfg.HTTPBindAddress, eng, m, cfg.SnapshotEnabled, cfg.MetricsEnabled, logger.With().Str("component", "http").Logger())
		httpServer.Start()
	}

	logger.Info().Msg("exchanged started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// Shutdown order per SPEC_FULL.md §5: stop accepting new connections
	// first, let the engine drain whatever is already queued, then tear
	// down the HTTP observability surface last.
	logger.Info().Msg("shutting down")
	if err := adapter.Stop(); err != nil {
		logger.Error().Err(err).Msg("ingress shutdown error")
	}
	if err := eng.Stop(); err != nil {
		logger.Error().Err(err).Msg("engine shutdown error")
	}
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Stop(ctx); err != nil {
			logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
}
