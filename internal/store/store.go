// Package store implements the Market State Store, the single owner of all
// live quote and index records. Records are mutated only through Update*
// callbacks executed under a per-record lock; every read returns a value copy,
// so tickers can never race with in-flight sends.
package store

import (
	"math/rand"
	"time"

	"github.com/nsesim/marketfeed/internal/catalog"
	"github.com/nsesim/marketfeed/internal/model"
)

// DepthLevels is the number of price levels per side of a depth snapshot.
const DepthLevels = 5

// DepthStep is the fixed price distance between adjacent depth levels.
const DepthStep = 0.5

// Store owns the authoritative market state.
type Store interface {
	// Quote returns a copy of the record for a stock symbol.
	Quote(symbol string) (model.QuoteRecord, bool)

	// Index returns a copy of the record for an index symbol.
	Index(symbol string) (model.IndexRecord, bool)

	// Quotes returns copies of all stock records in catalog order.
	Quotes() []model.QuoteRecord

	// Indices returns copies of all index records in catalog order.
	Indices() []model.IndexRecord

	// StockSymbols returns the stock universe in catalog order.
	StockSymbols() []string

	// IndexSymbols returns the index universe in catalog order.
	IndexSymbols() []string

	// UpdateQuote runs fn on the live record under its lock and returns the
	// resulting copy. Returns false for an unknown symbol.
	UpdateQuote(symbol string, fn func(*model.QuoteRecord)) (model.QuoteRecord, bool)

	// UpdateIndex runs fn on the live record under its lock and returns the
	// resulting copy. Returns false for an unknown symbol.
	UpdateIndex(symbol string, fn func(*model.IndexRecord)) (model.IndexRecord, bool)
}

// New builds a Store seeded from the catalog universe. The random source
// drives the synthetic open/high/low/volume spread around each base price and
// is only used during construction.
func New(stocks []catalog.Instrument, indices []catalog.Index, rng *rand.Rand) Store {
	s := &memStore{
		quotes:  make(map[string]*quoteEntry, len(stocks)),
		indexes: make(map[string]*indexEntry, len(indices)),
	}

	now := time.Now().UnixMilli()
	for _, in := range stocks {
		s.stockOrder = append(s.stockOrder, in.Symbol)
		s.quotes[in.Symbol] = &quoteEntry{rec: seedQuote(in, rng, now)}
	}
	for _, ix := range indices {
		s.indexOrder = append(s.indexOrder, ix.Symbol)
		s.indexes[ix.Symbol] = &indexEntry{rec: seedIndex(ix, rng)}
	}

	return s
}

// GenerateDepth builds a fresh depth snapshot around price: DepthLevels bids
// descending below it and DepthLevels asks ascending above it, each with a
// random quantity.
func GenerateDepth(rng *rand.Rand, price float64) model.DepthSnapshot {
	d := model.DepthSnapshot{
		Bids: make([]model.PriceLevel, 0, DepthLevels),
		Asks: make([]model.PriceLevel, 0, DepthLevels),
	}
	for i := 1; i <= DepthLevels; i++ {
		d.Bids = append(d.Bids, model.PriceLevel{
			Price: model.Round2(price - float64(i)*DepthStep),
			Qty:   int64(randBetween(rng, 100, 2000)),
		})
		d.Asks = append(d.Asks, model.PriceLevel{
			Price: model.Round2(price + float64(i)*DepthStep),
			Qty:   int64(randBetween(rng, 100, 2000)),
		})
	}
	return d
}

func seedQuote(in catalog.Instrument, rng *rand.Rand, now int64) model.QuoteRecord {
	base := in.BasePrice
	return model.QuoteRecord{
		Symbol:       in.Symbol,
		Name:         in.Name,
		Exchange:     in.Exchange,
		Sector:       in.Sector,
		BasePrice:    base,
		LTP:          base,
		Open:         model.Round2(base * (1 + randBetween(rng, -0.02, 0.02))),
		High:         model.Round2(base * (1 + randBetween(rng, 0, 0.04))),
		Low:          model.Round2(base * (1 - randBetween(rng, 0, 0.04))),
		PrevClose:    model.Round2(base * (1 + randBetween(rng, -0.03, 0.03))),
		Volume:       int64(randBetween(rng, 100000, 5000000)),
		BuyQty:       int64(randBetween(rng, 1000, 50000)),
		SellQty:      int64(randBetween(rng, 1000, 50000)),
		UpperCircuit: model.Round2(base * 1.1),
		LowerCircuit: model.Round2(base * 0.9),
		Depth:        GenerateDepth(rng, base),
		LastUpdated:  now,
	}
}

func seedIndex(ix catalog.Index, rng *rand.Rand) model.IndexRecord {
	base := ix.BaseValue
	return model.IndexRecord{
		Symbol:    ix.Symbol,
		Name:      ix.Name,
		BaseValue: base,
		Value:     base,
		Open:      model.Round2(base * (1 + randBetween(rng, -0.01, 0.01))),
		High:      model.Round2(base * (1 + randBetween(rng, 0, 0.02))),
		Low:       model.Round2(base * (1 - randBetween(rng, 0, 0.02))),
		PrevClose: model.Round2(base * (1 + randBetween(rng, -0.02, 0.02))),
		Advances:  int(randBetween(rng, 20, 35)),
		Declines:  int(randBetween(rng, 10, 30)),
		Unchanged: int(randBetween(rng, 0, 5)),
	}
}

func randBetween(rng *rand.Rand, min, max float64) float64 {
	return rng.Float64()*(max-min) + min
}
