package feedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nsesim/marketfeed/internal/catalog"
	"github.com/nsesim/marketfeed/internal/hub"
	"github.com/nsesim/marketfeed/internal/protocol"
	"github.com/nsesim/marketfeed/internal/server"
	"github.com/nsesim/marketfeed/internal/store"
)

func newTestFeed(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	st := store.New(catalog.Stocks(), catalog.Indices(), rand.New(rand.NewSource(7)))
	h := hub.New(st.StockSymbols(), nil)

	cfg := server.DefaultConfig()
	s := server.New(cfg, st, h, nil, nil)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + cfg.WSPath
	return ts, url
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestConnectPopulatesTables(t *testing.T) {
	_, url := newTestFeed(t)

	cfg := DefaultConfig()
	cfg.URL = url
	c := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Stop(context.Background())

	waitFor(t, 3*time.Second, func() bool {
		_, ok := c.Stock("TCS")
		return ok
	})

	if !c.Connected() {
		t.Error("Connected() = false, want true")
	}
	rec, _ := c.Stock("TCS")
	if rec.LTP <= 0 {
		t.Errorf("Stock(TCS).LTP = %v, want > 0", rec.LTP)
	}
	if _, ok := c.Index("NIFTY50"); !ok {
		t.Error("Index(NIFTY50) missing after connect replay")
	}

	events := c.Events()
	if len(events) == 0 {
		t.Fatal("Events() empty after connect")
	}
	found := false
	for _, ev := range events {
		if strings.Contains(ev.Msg, "Connected") {
			found = true
		}
	}
	if !found {
		t.Errorf("Events() = %v, want a connect entry", events)
	}
}

func TestEventLogNewestFirstAndCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLimit = 50
	c := New(cfg, nil)

	for i := 0; i < 120; i++ {
		c.addEvent(fmt.Sprintf("event %d", i))
	}

	events := c.Events()
	if len(events) != 50 {
		t.Fatalf("len(events) = %d, want 50", len(events))
	}
	if events[0].Msg != "event 119" {
		t.Errorf("events[0] = %q, want newest entry", events[0].Msg)
	}
	if events[49].Msg != "event 70" {
		t.Errorf("events[49] = %q, want %q", events[49].Msg, "event 70")
	}
}

func TestReconnectAfterServerRestart(t *testing.T) {
	ts, url := newTestFeed(t)

	cfg := DefaultConfig()
	cfg.URL = url
	cfg.ReconnectDelay = 100 * time.Millisecond
	c := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Stop(context.Background())

	waitFor(t, 3*time.Second, c.Connected)

	// Drop every open connection; the client should notice and retry until
	// the listener accepts again.
	ts.CloseClientConnections()

	waitFor(t, 3*time.Second, func() bool {
		for _, ev := range c.Events() {
			if strings.Contains(ev.Msg, "Disconnected") {
				return true
			}
		}
		return false
	})

	waitFor(t, 5*time.Second, c.Connected)
}

// subscribeFrame is one SUBSCRIBE observed by the capture server, tagged with
// the ordinal of the connection it arrived on.
type subscribeFrame struct {
	connSeq int
	symbols []string
}

func TestSubscribeReplayedOnReconnect(t *testing.T) {
	// Bare capture server: accepts feed connections and records every
	// SUBSCRIBE it reads, so the replay is observed on the wire rather than
	// inferred from client state.
	frames := make(chan subscribeFrame, 16)
	var connSeq int64
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		seq := int(atomic.AddInt64(&connSeq, 1))
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			var cmd protocol.Command
			if json.Unmarshal(data, &cmd) == nil && cmd.Type == protocol.TypeSubscribe {
				frames <- subscribeFrame{connSeq: seq, symbols: cmd.Symbols}
			}
		}
	}))
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	cfg := DefaultConfig()
	cfg.URL = url
	cfg.ReconnectDelay = 100 * time.Millisecond
	c := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer c.Stop(context.Background())

	waitFor(t, 3*time.Second, c.Connected)
	if err := c.Subscribe([]string{"TCS", "INFY"}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	readFrame := func(want int) subscribeFrame {
		t.Helper()
		select {
		case f := <-frames:
			if f.connSeq != want {
				t.Fatalf("SUBSCRIBE arrived on connection %d, want %d", f.connSeq, want)
			}
			return f
		case <-time.After(5 * time.Second):
			t.Fatalf("no SUBSCRIBE observed on connection %d", want)
			return subscribeFrame{}
		}
	}

	first := readFrame(1)
	if len(first.symbols) != 2 {
		t.Fatalf("first SUBSCRIBE symbols = %v, want [TCS INFY]", first.symbols)
	}

	ts.CloseClientConnections()
	waitFor(t, 5*time.Second, c.Connected)

	// The second connection must receive the replayed interest without any
	// further Subscribe call.
	replay := readFrame(2)
	if len(replay.symbols) != 2 || !contains(replay.symbols, "TCS") || !contains(replay.symbols, "INFY") {
		t.Errorf("replayed SUBSCRIBE symbols = %v, want [TCS INFY]", replay.symbols)
	}
}

func TestSubscribeDeduplicatesInterest(t *testing.T) {
	c := New(DefaultConfig(), nil)

	if err := c.Subscribe([]string{"TCS", "INFY"}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := c.Subscribe([]string{"TCS", "RELIANCE", "INFY"}); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	c.mu.RLock()
	requested := make([]string, len(c.requested))
	copy(requested, c.requested)
	c.mu.RUnlock()

	want := []string{"TCS", "INFY", "RELIANCE"}
	if len(requested) != len(want) {
		t.Fatalf("requested = %v, want %v", requested, want)
	}
	for i, sym := range want {
		if requested[i] != sym {
			t.Errorf("requested[%d] = %q, want %q", i, requested[i], sym)
		}
	}
}

func TestDialFailureKeepsRetrying(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "ws://127.0.0.1:1/ws"
	cfg.ReconnectDelay = 20 * time.Millisecond
	cfg.DialTimeout = 100 * time.Millisecond
	c := New(cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	waitFor(t, 3*time.Second, func() bool {
		n := 0
		for _, ev := range c.Events() {
			if strings.Contains(ev.Msg, "error") {
				n++
			}
		}
		return n >= 2
	})

	if err := c.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if c.Connected() {
		t.Error("Connected() = true after Stop")
	}
}
