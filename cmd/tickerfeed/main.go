package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"tickerfeed/internal/config"
	"tickerfeed/internal/events"
	"tickerfeed/internal/logging"
	"tickerfeed/internal/marketdata"
	"tickerfeed/internal/model"
	"tickerfeed/internal/server"
	"tickerfeed/internal/store"
	"tickerfeed/internal/ticker"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger := logging.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	client, err := marketdata.NewClient(logger, cfg.MarketData)
	if err != nil {
		logger.Error("cannot create market data client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.NewMemory(store.State{})
	bus := events.NewBus()

	refresher := ticker.NewRefresher(logger, client, st, model.CoinsFromKeys(cfg.Ticker.Coins),
		ticker.WithInterval(cfg.Ticker.Interval()),
		ticker.WithDefaultFiat(cfg.Ticker.DefaultFiat),
		ticker.WithLimit(cfg.MarketData.Limit),
	)
	refresher.Bind(bus)
	refresher.Start(ctx)
	defer refresher.Stop()

	logger.Info("tickerfeed started",
		"provider", client.GetName(),
		"interval", cfg.Ticker.Interval(),
		"default_fiat", cfg.Ticker.DefaultFiat,
	)

	if err := server.NewServer(logger, st, bus).Run(ctx, cfg.Server.Addr); err != nil {
		logger.Error("server failed", "error", err)
		refresher.Stop()
		os.Exit(1)
	}
}
