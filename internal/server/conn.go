package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nsesim/marketfeed/internal/hub"
	"github.com/nsesim/marketfeed/internal/protocol"
	"github.com/nsesim/marketfeed/internal/store"
)

// conn is the handler for one feed connection. Lifecycle: welcome replay,
// then a read loop for inbound commands and a write loop draining the send
// queue, torn down together on the first transport error.
type conn struct {
	id     uuid.UUID
	cfg    Config
	ws     *websocket.Conn
	st     store.Store
	hub    *hub.Hub
	logger *slog.Logger

	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func newConn(cfg Config, ws *websocket.Conn, st store.Store, h *hub.Hub, logger *slog.Logger) *conn {
	id := uuid.New()
	return &conn{
		id:     id,
		cfg:    cfg,
		ws:     ws,
		st:     st,
		hub:    h,
		logger: logger.With("conn_id", id),
		send:   make(chan []byte, cfg.SendBuffer),
		done:   make(chan struct{}),
	}
}

// ID implements hub.Client.
func (c *conn) ID() uuid.UUID { return c.id }

// Send implements hub.Client: best-effort enqueue, never blocking a ticker.
func (c *conn) Send(frame []byte) hub.DeliveryResult {
	select {
	case <-c.done:
		return hub.Closed
	default:
	}

	select {
	case c.send <- frame:
		return hub.Delivered
	case <-c.done:
		return hub.Closed
	default:
		return hub.Dropped
	}
}

// run drives the connection to completion. The welcome replay is enqueued
// before the hub registration, so the send queue delivers CONNECTED, every
// SNAPSHOT and every INDEX ahead of any live update.
func (c *conn) run() {
	c.logger.Info("client connected", "remote", c.ws.RemoteAddr().String())

	go c.writeLoop()

	c.welcome()
	c.hub.Register(c)

	c.readLoop()
	c.teardown()
}

// welcome sends the CONNECTED envelope followed by a full-state replay.
func (c *conn) welcome() {
	now := time.Now()

	c.enqueueJSON(protocol.Welcome{
		Type:             protocol.TypeConnected,
		Message:          c.cfg.WelcomeMessage,
		ServerTime:       protocol.Millis(now),
		AvailableSymbols: c.st.StockSymbols(),
		AvailableIndices: c.st.IndexSymbols(),
	})

	for _, rec := range c.st.Quotes() {
		c.enqueueJSON(protocol.QuoteEnvelope{
			Type:      protocol.TypeSnapshot,
			Symbol:    rec.Symbol,
			Exchange:  rec.Exchange,
			Timestamp: protocol.Millis(now),
			Data:      rec,
		})
	}
	for _, ix := range c.st.Indices() {
		c.enqueueJSON(protocol.IndexEnvelope{
			Type:      protocol.TypeIndex,
			Symbol:    ix.Symbol,
			Timestamp: protocol.Millis(now),
			Data:      ix,
		})
	}
}

// readLoop processes inbound frames until the transport closes or errors.
func (c *conn) readLoop() {
	c.ws.SetReadLimit(c.cfg.MaxMessageSize)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Warn("read error", "error", err)
			}
			return
		}
		c.handleCommand(data)
	}
}

// handleCommand applies one inbound command. Malformed payloads are logged
// and discarded; they never fault the connection.
func (c *conn) handleCommand(data []byte) {
	cmd, err := protocol.DecodeCommand(data)
	if err != nil {
		c.logger.Debug("ignoring bad frame", "error", err)
		return
	}

	switch cmd.Type {
	case protocol.TypeSubscribe:
		result := c.hub.Subscribe(c.id, cmd.Symbols)
		c.logger.Debug("subscribed", "symbols", cmd.Symbols)
		c.enqueueJSON(protocol.SubscriptionAck{
			Type:    protocol.TypeSubscribed,
			Symbols: result,
		})

	case protocol.TypeUnsubscribe:
		c.hub.Unsubscribe(c.id, cmd.Symbols)
		c.enqueueJSON(protocol.SubscriptionAck{
			Type:    protocol.TypeUnsubscribed,
			Symbols: cmd.Symbols,
		})

	case protocol.TypePing:
		c.enqueueJSON(protocol.Pong{
			Type: protocol.TypePong,
			TS:   protocol.Millis(time.Now()),
		})
	}
}

// writeLoop drains the send queue onto the wire. No backlog survives close.
func (c *conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Warn("write error", "error", err)
				c.teardown()
				return
			}
		}
	}
}

func (c *conn) enqueueJSON(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("encode failed", "error", err)
		return
	}
	if res := c.Send(frame); res != hub.Delivered {
		c.logger.Warn("frame not delivered", "result", int(res))
	}
}

// teardown discards the subscription entry and releases the transport.
// Idempotent: both loops and the server may call it.
func (c *conn) teardown() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c.id)
		close(c.done)
		c.ws.Close()
		c.logger.Info("client disconnected")
	})
}
