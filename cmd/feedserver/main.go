// feedserver runs the simulated NSE market data feed: an in-memory quote
// store, the tick engine that mutates it, and the WebSocket fan-out server.
// Usage: go run ./cmd/feedserver --config configs/feedserver.yaml
package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nsesim/marketfeed/internal/catalog"
	"github.com/nsesim/marketfeed/internal/config"
	"github.com/nsesim/marketfeed/internal/engine"
	"github.com/nsesim/marketfeed/internal/hub"
	"github.com/nsesim/marketfeed/internal/server"
	"github.com/nsesim/marketfeed/internal/store"
	"github.com/nsesim/marketfeed/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty for defaults)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting feedserver",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"addr", cfg.Server.Addr,
		"ws_path", cfg.Server.WSPath,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Seed the universe
	seed := cfg.Ticks.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	st := store.New(catalog.Stocks(), catalog.Indices(), rng)

	logger.Info("universe seeded",
		"stocks", len(st.StockSymbols()),
		"indices", len(st.IndexSymbols()),
	)

	// Fan-out hub over the stock universe
	h := hub.New(st.StockSymbols(), logger)

	// Tick engine, gated on the hub's connection count
	engCfg := engine.Config{
		StockInterval:    cfg.Ticks.StockInterval,
		IndexInterval:    cfg.Ticks.IndexInterval,
		DepthInterval:    cfg.Ticks.DepthInterval,
		MinStocksPerTick: cfg.Ticks.MinStocksPerTick,
		MaxStocksPerTick: cfg.Ticks.MaxStocksPerTick,
		UpdateBufferSize: cfg.Ticks.UpdateBufferSize,
	}
	eng := engine.New(engCfg, st, h, rng, logger)

	// WebSocket server
	srvCfg := server.Config{
		Addr:           cfg.Server.Addr,
		WSPath:         cfg.Server.WSPath,
		WelcomeMessage: cfg.Server.WelcomeMessage,
		WriteTimeout:   cfg.Server.WriteTimeout,
		SendBuffer:     cfg.Server.SendBuffer,
		MaxMessageSize: cfg.Server.MaxMessageSize,
	}
	srv := server.New(srvCfg, st, h, eng, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx, eng.Updates())
		return nil
	})

	if err := eng.Start(ctx); err != nil {
		logger.Error("failed to start tick engine", "error", err)
		os.Exit(1)
	}
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("feedserver running",
		"instance_id", cfg.Instance.ID,
		"url", "ws://localhost"+cfg.Server.Addr+cfg.Server.WSPath,
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := eng.Stop(shutdownCtx); err != nil {
		logger.Error("engine shutdown error", "error", err)
	}
	if err := g.Wait(); err != nil {
		logger.Error("fan-out shutdown error", "error", err)
	}

	logger.Info("feedserver stopped")
}
