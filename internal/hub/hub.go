package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nsesim/marketfeed/internal/engine"
	"github.com/nsesim/marketfeed/internal/protocol"
)

// DeliveryResult names the outcome of one best-effort delivery attempt.
// Callers are free to ignore it; the policy exists so tests and future
// hardening can see the contract.
type DeliveryResult int

const (
	// Delivered means the frame was queued on the connection's send path.
	Delivered DeliveryResult = iota
	// Closed means the connection is gone; the frame was discarded.
	Closed
	// Dropped means the connection's send buffer was full; the frame was
	// discarded without retry.
	Dropped
)

// Client is the delivery target the dispatcher fans out to.
type Client interface {
	ID() uuid.UUID
	Send(frame []byte) DeliveryResult
}

// Stats contains fan-out counters.
type Stats struct {
	Connections int
	Delivered   int64
	Closed      int64
	Dropped     int64
}

type subscriber struct {
	client  Client
	symbols map[string]struct{}
}

// Hub owns the per-connection subscription sets and dispatches updates.
type Hub struct {
	universe []string
	logger   *slog.Logger

	mu    sync.RWMutex
	conns map[uuid.UUID]*subscriber

	statsMu   sync.Mutex
	delivered int64
	closed    int64
	dropped   int64
}

// New creates a Hub. universe is the default subscription set assigned to
// every fresh connection.
func New(universe []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	u := make([]string, len(universe))
	copy(u, universe)
	return &Hub{
		universe: u,
		logger:   logger,
		conns:    make(map[uuid.UUID]*subscriber),
	}
}

// Register adds a connection with the default subscription set and returns
// that set in universe order.
func (h *Hub) Register(c Client) []string {
	symbols := make(map[string]struct{}, len(h.universe))
	for _, sym := range h.universe {
		symbols[sym] = struct{}{}
	}

	h.mu.Lock()
	h.conns[c.ID()] = &subscriber{client: c, symbols: symbols}
	count := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("connection registered", "conn_id", c.ID(), "total", count)

	out := make([]string, len(h.universe))
	copy(out, h.universe)
	return out
}

// Unregister discards a connection's subscription entry. Safe to call
// unconditionally and repeatedly; unknown connections are a no-op.
func (h *Hub) Unregister(id uuid.UUID) {
	h.mu.Lock()
	_, existed := h.conns[id]
	delete(h.conns, id)
	count := len(h.conns)
	h.mu.Unlock()

	if existed {
		h.logger.Info("connection unregistered", "conn_id", id, "total", count)
	}
}

// Subscribe adds symbols to a connection's interest set and returns the full
// resulting set, sorted. Idempotent; unknown symbols are accepted (they just
// never match a tick); an unknown connection is a no-op returning nil.
func (h *Hub) Subscribe(id uuid.UUID, symbols []string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.conns[id]
	if !ok {
		return nil
	}
	for _, sym := range symbols {
		sub.symbols[sym] = struct{}{}
	}

	out := make([]string, 0, len(sub.symbols))
	for sym := range sub.symbols {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Unsubscribe removes symbols from a connection's interest set. Unknown
// connections and symbols are no-ops.
func (h *Hub) Unsubscribe(id uuid.UUID, symbols []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, ok := h.conns[id]
	if !ok {
		return
	}
	for _, sym := range symbols {
		delete(sub.symbols, sym)
	}
}

// ConnCount returns the number of active connections.
func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stats returns current fan-out counters.
func (h *Hub) Stats() Stats {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	return Stats{
		Connections: h.ConnCount(),
		Delivered:   h.delivered,
		Closed:      h.closed,
		Dropped:     h.dropped,
	}
}

// Run consumes the update channel until it closes or ctx is cancelled. Each
// update is serialized once and fanned out to matching connections.
func (h *Hub) Run(ctx context.Context, updates <-chan engine.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				h.logger.Info("update channel closed")
				return
			}
			h.Dispatch(u)
		}
	}
}

// Dispatch delivers one update: QUOTE and DEPTH filtered by subscription,
// INDEX broadcast unconditionally.
func (h *Hub) Dispatch(u engine.Update) {
	frame, filtered := h.encode(u)
	if frame == nil {
		return
	}

	h.mu.RLock()
	targets := make([]Client, 0, len(h.conns))
	for _, sub := range h.conns {
		if filtered {
			if _, want := sub.symbols[u.Symbol]; !want {
				continue
			}
		}
		targets = append(targets, sub.client)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.tally(c.Send(frame))
	}
}

// encode builds the wire frame for an update and reports whether delivery is
// subscription-filtered.
func (h *Hub) encode(u engine.Update) ([]byte, bool) {
	ts := protocol.Millis(u.At)

	switch u.Kind {
	case engine.KindQuote:
		frame, _ := json.Marshal(protocol.QuoteEnvelope{
			Type:      protocol.TypeQuote,
			Symbol:    u.Symbol,
			Exchange:  u.Quote.Exchange,
			Timestamp: ts,
			Data:      u.Quote,
		})
		return frame, true
	case engine.KindIndex:
		frame, _ := json.Marshal(protocol.IndexEnvelope{
			Type:      protocol.TypeIndex,
			Symbol:    u.Symbol,
			Timestamp: ts,
			Data:      u.Index,
		})
		return frame, false
	case engine.KindDepth:
		frame, _ := json.Marshal(protocol.DepthEnvelope{
			Type:      protocol.TypeDepth,
			Symbol:    u.Symbol,
			Timestamp: ts,
			Data:      u.Depth,
		})
		return frame, true
	default:
		h.logger.Warn("skipping update of unknown kind", "kind", int(u.Kind))
		return nil, false
	}
}

func (h *Hub) tally(r DeliveryResult) {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	switch r {
	case Delivered:
		h.delivered++
	case Closed:
		h.closed++
	case Dropped:
		h.dropped++
	}
}
