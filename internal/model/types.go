package model

import "math"

// -----------------------------------------------------------------------------
// Quote Types
// -----------------------------------------------------------------------------

// QuoteRecord is the authoritative live state for one stock symbol.
// The Market State Store owns the only mutable copy; everything handed to
// connections is a value copy taken at serialization time.
type QuoteRecord struct {
	Symbol    string  `json:"symbol"`    // Primary key (e.g., "RELIANCE")
	Name      string  `json:"name"`      // Display name
	Exchange  string  `json:"exchange"`  // Exchange code (e.g., "NSE")
	Sector    string  `json:"sector"`    // Sector label
	BasePrice float64 `json:"basePrice"` // Seed price the circuits derive from

	LTP       float64 `json:"ltp"`       // Last traded price
	Open      float64 `json:"open"`      // Session open
	High      float64 `json:"high"`      // Session high
	Low       float64 `json:"low"`       // Session low
	PrevClose float64 `json:"prevClose"` // Previous close

	Volume           int64   `json:"volume"`           // Cumulative traded quantity
	TotalTradedValue float64 `json:"totalTradedValue"` // ltp * volume / 1000, rounded
	BuyQty           int64   `json:"buyQty"`           // Aggregate pending buy quantity
	SellQty          int64   `json:"sellQty"`          // Aggregate pending sell quantity

	UpperCircuit float64 `json:"upperCircuit"` // Hard upper price clamp
	LowerCircuit float64 `json:"lowerCircuit"` // Hard lower price clamp

	Change        float64 `json:"change"`        // ltp - prevClose
	ChangePercent float64 `json:"changePercent"` // change / prevClose * 100

	Depth       DepthSnapshot `json:"depth"`       // Current best-5 levels per side
	LastUpdated int64         `json:"lastUpdated"` // Last mutation (ms since epoch)
}

// IndexRecord is the authoritative live state for one index symbol.
// Index values carry no circuit bounds.
type IndexRecord struct {
	Symbol    string  `json:"symbol"`    // Primary key (e.g., "NIFTY50")
	Name      string  `json:"name"`      // Display name
	BaseValue float64 `json:"baseValue"` // Seed value

	Value     float64 `json:"value"`     // Current index value
	Open      float64 `json:"open"`      // Session open
	High      float64 `json:"high"`      // Session high
	Low       float64 `json:"low"`       // Session low
	PrevClose float64 `json:"prevClose"` // Previous close

	Change        float64 `json:"change"`        // value - prevClose
	ChangePercent float64 `json:"changePercent"` // change / prevClose * 100

	Advances  int `json:"advances"`  // Constituents trading up
	Declines  int `json:"declines"`  // Constituents trading down
	Unchanged int `json:"unchanged"` // Constituents unchanged
}

// -----------------------------------------------------------------------------
// Depth Types
// -----------------------------------------------------------------------------

// PriceLevel is a single (price, quantity) entry in a depth snapshot.
type PriceLevel struct {
	Price float64 `json:"price"`
	Qty   int64   `json:"qty"`
}

// DepthSnapshot holds the best N bid/ask levels for an instrument.
// Bids are ordered descending by price, asks ascending. Snapshots are always
// regenerated wholesale; the level slices are never mutated in place, so a
// struct copy is safe to hand across goroutines.
type DepthSnapshot struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// Round2 rounds to two decimal places, the resolution of every wire price.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
