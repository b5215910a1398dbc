// feedtest connects to a running feedserver and streams live quotes to the
// console. It exercises the reconnect path: kill and restart the server while
// feedtest runs and it picks the feed back up.
// Usage: go run ./cmd/feedtest --url ws://localhost:8080/ws
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nsesim/marketfeed/internal/feedclient"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "feed WebSocket URL")
	symbols := flag.String("symbols", "TCS,RELIANCE,INFY", "comma-separated symbols to subscribe to")
	interval := flag.Duration("interval", time.Second, "console refresh interval")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	cfg := feedclient.DefaultConfig()
	cfg.URL = *url
	c := feedclient.New(cfg, logger)

	if err := c.Start(ctx); err != nil {
		logger.Error("failed to start feed client", "error", err)
		os.Exit(1)
	}

	watch := strings.Split(*symbols, ",")
	for i := range watch {
		watch[i] = strings.TrimSpace(watch[i])
	}
	if err := c.Subscribe(watch); err != nil {
		logger.Warn("subscribe failed, will retry on reconnect", "error", err)
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("watching %v - press Ctrl+C to stop\n", watch)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.Stop(shutdownCtx)
			shutdownCancel()

			fmt.Println("\nrecent events (newest first):")
			for _, ev := range c.Events() {
				fmt.Printf("  %s  %s\n", ev.TS.Format("15:04:05.000"), ev.Msg)
			}
			return

		case <-ticker.C:
			if !c.Connected() {
				fmt.Println("[disconnected, retrying...]")
				continue
			}
			for _, sym := range watch {
				rec, ok := c.Stock(sym)
				if !ok {
					continue
				}
				fmt.Printf("[QUOTE] %-10s ltp=%.2f change=%+.2f (%+.2f%%) vol=%d\n",
					sym, rec.LTP, rec.Change, rec.ChangePercent, rec.Volume)
			}
			if ix, ok := c.Index("NIFTY50"); ok {
				fmt.Printf("[INDEX] %-10s value=%.2f adv=%d dec=%d\n",
					"NIFTY50", ix.Value, ix.Advances, ix.Declines)
			}
			fmt.Println()
		}
	}
}
