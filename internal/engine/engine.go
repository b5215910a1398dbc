package engine

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/nsesim/marketfeed/internal/model"
	"github.com/nsesim/marketfeed/internal/store"
)

// advanceDeclineCeiling is the fixed synthetic constituent count used to
// clamp index advance/decline counters.
const advanceDeclineCeiling = 50

// ConnCounter reports the number of active connections. Tickers skip work
// entirely while nobody is listening.
type ConnCounter interface {
	ConnCount() int
}

// Engine drives the three market tickers.
type Engine struct {
	cfg    Config
	st     store.Store
	conns  ConnCounter
	logger *slog.Logger

	updates chan Update

	// All randomness flows through one injected source. randMu is taken for
	// the full duration of a tick pass, ahead of any record lock.
	randMu sync.Mutex
	rand   *rand.Rand

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

// New creates a Tick Engine. conns may be nil, in which case ticks always
// run. rng may be nil, in which case a time-seeded source is used; tests
// inject a fixed seed for determinism.
func New(cfg Config, st store.Store, conns ConnCounter, rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		cfg:     cfg,
		st:      st,
		conns:   conns,
		logger:  logger,
		rand:    rng,
		updates: make(chan Update, cfg.UpdateBufferSize),
	}
}

// Updates returns the channel of completed tick results.
func (e *Engine) Updates() <-chan Update {
	return e.updates
}

// Start launches the three ticker goroutines.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(3)
	go e.loop(e.cfg.StockInterval, e.tickStocks)
	go e.loop(e.cfg.IndexInterval, e.tickIndices)
	go e.loop(e.cfg.DepthInterval, e.tickDepth)

	e.logger.Info("tick engine started",
		"stock_interval", e.cfg.StockInterval,
		"index_interval", e.cfg.IndexInterval,
		"depth_interval", e.cfg.DepthInterval,
	)
	return nil
}

// Stop shuts the tickers down and closes the update channel.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(e.updates)
		e.logger.Info("tick engine stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("tick engine stop timed out")
		return ctx.Err()
	}
}

// Stats returns current tick counters.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

func (e *Engine) loop(period time.Duration, tick func(now time.Time)) {
	defer e.wg.Done()

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case now := <-t.C:
			if e.conns != nil && e.conns.ConnCount() == 0 {
				continue
			}
			tick(now)
		}
	}
}

// tickStocks mutates a random 3-5 stock subset and publishes QUOTE updates.
func (e *Engine) tickStocks(now time.Time) {
	e.randMu.Lock()
	defer e.randMu.Unlock()

	symbols := e.st.StockSymbols()
	count := e.cfg.MinStocksPerTick + e.rand.Intn(e.cfg.MaxStocksPerTick-e.cfg.MinStocksPerTick+1)
	if count > len(symbols) {
		count = len(symbols)
	}

	for _, i := range e.rand.Perm(len(symbols))[:count] {
		sym := symbols[i]
		rec, ok := e.st.UpdateQuote(sym, func(q *model.QuoteRecord) {
			e.mutateQuote(q, now)
		})
		if !ok {
			continue
		}
		e.publish(Update{Kind: KindQuote, Symbol: sym, At: now, Quote: rec})
	}

	e.statsMu.Lock()
	e.stats.StockTicks++
	e.statsMu.Unlock()
}

// tickIndices mutates every index and publishes INDEX updates.
func (e *Engine) tickIndices(now time.Time) {
	e.randMu.Lock()
	defer e.randMu.Unlock()

	for _, sym := range e.st.IndexSymbols() {
		rec, ok := e.st.UpdateIndex(sym, func(ix *model.IndexRecord) {
			e.mutateIndex(ix)
		})
		if !ok {
			continue
		}
		e.publish(Update{Kind: KindIndex, Symbol: sym, At: now, Index: rec})
	}

	e.statsMu.Lock()
	e.stats.IndexTicks++
	e.statsMu.Unlock()
}

// tickDepth regenerates the depth snapshot of one random stock around its
// current LTP, independent of the stock ticker.
func (e *Engine) tickDepth(now time.Time) {
	e.randMu.Lock()
	defer e.randMu.Unlock()

	symbols := e.st.StockSymbols()
	if len(symbols) == 0 {
		return
	}
	sym := symbols[e.rand.Intn(len(symbols))]

	rec, ok := e.st.UpdateQuote(sym, func(q *model.QuoteRecord) {
		q.Depth = store.GenerateDepth(e.rand, q.LTP)
		q.LastUpdated = now.UnixMilli()
	})
	if !ok {
		return
	}
	e.publish(Update{Kind: KindDepth, Symbol: sym, At: now, Depth: rec.Depth})

	e.statsMu.Lock()
	e.stats.DepthTicks++
	e.statsMu.Unlock()
}

// mutateQuote applies one bounded random price step. Caller holds randMu and
// the record lock.
func (e *Engine) mutateQuote(q *model.QuoteRecord, now time.Time) {
	delta := e.randBetween(-0.003, 0.003)
	ltp := model.Round2(q.LTP * (1 + delta))

	// Circuit clamp: the price may never leave its bounds in one tick.
	if ltp > q.UpperCircuit {
		ltp = q.UpperCircuit
	}
	if ltp < q.LowerCircuit {
		ltp = q.LowerCircuit
	}

	q.LTP = ltp
	if ltp > q.High {
		q.High = ltp
	}
	if ltp < q.Low {
		q.Low = ltp
	}
	q.Volume += int64(e.randBetween(0, 500))
	q.TotalTradedValue = math.Round(ltp * float64(q.Volume) / 1000)
	q.Change = model.Round2(ltp - q.PrevClose)
	q.ChangePercent = model.Round2(q.Change / q.PrevClose * 100)
	q.BuyQty = int64(e.randBetween(500, 80000))
	q.SellQty = int64(e.randBetween(500, 80000))
	q.Depth = store.GenerateDepth(e.rand, ltp)
	q.LastUpdated = now.UnixMilli()
}

// mutateIndex applies one bounded random value step and nudges the
// advance/decline counters. Caller holds randMu and the record lock.
func (e *Engine) mutateIndex(ix *model.IndexRecord) {
	delta := e.randBetween(-0.002, 0.002)
	ix.Value = model.Round2(ix.Value * (1 + delta))
	if ix.Value > ix.High {
		ix.High = ix.Value
	}
	if ix.Value < ix.Low {
		ix.Low = ix.Value
	}
	ix.Change = model.Round2(ix.Value - ix.PrevClose)
	ix.ChangePercent = model.Round2(ix.Change / ix.PrevClose * 100)

	movement := int(math.Round(e.randBetween(-2, 2)))
	ix.Advances = clampInt(ix.Advances+movement, 0, advanceDeclineCeiling)
	ix.Declines = clampInt(advanceDeclineCeiling-ix.Advances, 0, advanceDeclineCeiling)
}

// publish hands an update to the dispatcher without blocking a ticker.
func (e *Engine) publish(u Update) {
	select {
	case e.updates <- u:
		e.statsMu.Lock()
		e.stats.Published++
		e.statsMu.Unlock()
	default:
		e.statsMu.Lock()
		e.stats.Dropped++
		e.statsMu.Unlock()
		e.logger.Warn("update buffer full, dropping",
			"kind", u.Kind.String(),
			"symbol", u.Symbol,
		)
	}
}

func (e *Engine) randBetween(min, max float64) float64 {
	return e.rand.Float64()*(max-min) + min
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
