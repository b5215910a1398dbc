// Package feedclient implements the consumer side of the feed protocol: a
// connection that keeps itself alive with a fixed reconnect delay, a capped
// rolling event log, and live stock/index/depth tables replaced wholesale per
// incoming envelope.
package feedclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nsesim/marketfeed/internal/model"
	"github.com/nsesim/marketfeed/internal/protocol"
)

// Config holds feed client settings.
type Config struct {
	URL            string        // Feed endpoint (e.g., ws://localhost:8080/ws)
	ReconnectDelay time.Duration // Fixed wait before every reconnect attempt
	DialTimeout    time.Duration // Handshake timeout per attempt
	LogLimit       int           // Rolling event log cap
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay: 2 * time.Second,
		DialTimeout:    5 * time.Second,
		LogLimit:       50,
	}
}

// Event is one entry of the rolling event log.
type Event struct {
	Msg string
	TS  time.Time
}

// Client consumes the feed and mirrors its state. Server-side subscriptions
// do not survive a reconnect, so the client re-issues SUBSCRIBE for every
// symbol the caller explicitly asked for.
type Client struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.RWMutex
	wmu       sync.Mutex // serializes writes to ws
	connected bool
	ws        *websocket.Conn
	events    []Event
	requested []string // explicit interest, replayed after reconnect
	stocks    map[string]model.QuoteRecord
	indices   map[string]model.IndexRecord
	depth     map[string]model.DepthSnapshot

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a feed client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		logger:  logger,
		stocks:  make(map[string]model.QuoteRecord),
		indices: make(map[string]model.IndexRecord),
		depth:   make(map[string]model.DepthSnapshot),
	}
}

// Start launches the connect loop. It keeps reconnecting with a fixed delay
// until ctx is cancelled or Stop is called; there is no retry cap.
func (c *Client) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("feed client started", "url", c.cfg.URL)
	return nil
}

// Stop shuts the client down.
func (c *Client) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.ws != nil {
		c.ws.Close()
	}
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("feed client stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connected reports whether the feed connection is currently open.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Events returns the rolling log, newest first.
func (c *Client) Events() []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Stock returns the latest record for a stock symbol.
func (c *Client) Stock(symbol string) (model.QuoteRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.stocks[symbol]
	return rec, ok
}

// Index returns the latest record for an index symbol.
func (c *Client) Index(symbol string) (model.IndexRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.indices[symbol]
	return rec, ok
}

// Depth returns the latest standalone depth snapshot for a symbol.
func (c *Client) Depth(symbol string) (model.DepthSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.depth[symbol]
	return d, ok
}

// Subscribe records explicit interest and sends SUBSCRIBE if the connection
// is open. The interest set is replayed after every reconnect; repeated
// calls for the same symbol are recorded once.
func (c *Client) Subscribe(symbols []string) error {
	c.mu.Lock()
	for _, sym := range symbols {
		if !contains(c.requested, sym) {
			c.requested = append(c.requested, sym)
		}
	}
	ws := c.ws
	open := c.connected
	c.mu.Unlock()

	if !open {
		return nil
	}
	return c.writeJSON(ws, protocol.Command{Type: protocol.TypeSubscribe, Symbols: symbols})
}

// run is the connect/read/reconnect loop.
func (c *Client) run() {
	defer c.wg.Done()

	for {
		if c.ctx.Err() != nil {
			return
		}

		if err := c.connectOnce(); err != nil {
			c.logger.Warn("connect failed", "error", err)
			c.addEvent("Connection error")
		}

		c.mu.Lock()
		wasConnected := c.connected
		c.connected = false
		c.ws = nil
		c.mu.Unlock()

		if wasConnected {
			c.addEvent("Disconnected, waiting to reconnect")
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}
}

// connectOnce dials the feed, replays explicit interest, and reads until the
// connection drops.
func (c *Client) connectOnce() error {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.DialTimeout}
	ws, _, err := dialer.DialContext(c.ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ws = ws
	c.connected = true
	requested := make([]string, len(c.requested))
	copy(requested, c.requested)
	c.mu.Unlock()

	c.addEvent("Connected to feed")

	if len(requested) > 0 {
		if err := c.writeJSON(ws, protocol.Command{Type: protocol.TypeSubscribe, Symbols: requested}); err != nil {
			ws.Close()
			return err
		}
	}

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			// A close after a successful open is the normal drop path.
			ws.Close()
			return nil
		}
		c.handleMessage(data)
	}
}

// handleMessage applies one envelope to the local tables. Unknown or
// unparseable envelopes are dropped.
func (c *Client) handleMessage(data []byte) {
	var msg protocol.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug("ignoring bad frame", "error", err)
		return
	}

	switch msg.Type {
	case protocol.TypeConnected:
		c.addEvent("Server: " + msg.Message)

	case protocol.TypeSnapshot, protocol.TypeQuote:
		var rec model.QuoteRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			return
		}
		c.mu.Lock()
		c.stocks[msg.Symbol] = rec
		c.mu.Unlock()

	case protocol.TypeIndex:
		var rec model.IndexRecord
		if err := json.Unmarshal(msg.Data, &rec); err != nil {
			return
		}
		c.mu.Lock()
		c.indices[msg.Symbol] = rec
		c.mu.Unlock()

	case protocol.TypeDepth:
		var d model.DepthSnapshot
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return
		}
		c.mu.Lock()
		c.depth[msg.Symbol] = d
		c.mu.Unlock()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Client) writeJSON(ws *websocket.Conn, v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return ws.WriteJSON(v)
}

// addEvent prepends to the rolling log and trims it to the cap.
func (c *Client) addEvent(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append([]Event{{Msg: msg, TS: time.Now()}}, c.events...)
	if len(c.events) > c.cfg.LogLimit {
		c.events = c.events[:c.cfg.LogLimit]
	}
}
