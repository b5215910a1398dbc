package engine

import (
	"time"

	"github.com/nsesim/marketfeed/internal/model"
)

// UpdateKind discriminates the payload of an Update.
type UpdateKind int

const (
	KindQuote UpdateKind = iota
	KindIndex
	KindDepth
)

// String returns the wire-facing name of the kind.
func (k UpdateKind) String() string {
	switch k {
	case KindQuote:
		return "quote"
	case KindIndex:
		return "index"
	case KindDepth:
		return "depth"
	default:
		return "unknown"
	}
}

// Update is one completed tick result: a full copy of the record as it stood
// when the ticker finished, safe to serialize without further locking.
type Update struct {
	Kind   UpdateKind
	Symbol string
	At     time.Time

	// Exactly one of these is meaningful, selected by Kind.
	Quote model.QuoteRecord
	Index model.IndexRecord
	Depth model.DepthSnapshot
}

// Config holds Tick Engine settings.
type Config struct {
	StockInterval time.Duration // Stock quote tick period
	IndexInterval time.Duration // Index tick period
	DepthInterval time.Duration // Depth-only tick period

	MinStocksPerTick int // Lower bound of the random per-tick stock subset
	MaxStocksPerTick int // Upper bound (inclusive)

	UpdateBufferSize int // Capacity of the published update channel
}

// DefaultConfig returns the cadence of the simulated market.
func DefaultConfig() Config {
	return Config{
		StockInterval:    400 * time.Millisecond,
		IndexInterval:    1500 * time.Millisecond,
		DepthInterval:    800 * time.Millisecond,
		MinStocksPerTick: 3,
		MaxStocksPerTick: 5,
		UpdateBufferSize: 1024,
	}
}

// Stats contains runtime tick counters.
type Stats struct {
	StockTicks int64
	IndexTicks int64
	DepthTicks int64
	Published  int64
	Dropped    int64
}
