package store

import (
	"sync"

	"github.com/nsesim/marketfeed/internal/model"
)

// memStore is the in-memory Store implementation. The entry maps are fixed at
// construction, so only the per-entry locks are needed for record access.
type memStore struct {
	stockOrder []string
	indexOrder []string

	quotes  map[string]*quoteEntry
	indexes map[string]*indexEntry
}

type quoteEntry struct {
	mu  sync.Mutex
	rec model.QuoteRecord
}

type indexEntry struct {
	mu  sync.Mutex
	rec model.IndexRecord
}

func (s *memStore) Quote(symbol string) (model.QuoteRecord, bool) {
	e, ok := s.quotes[symbol]
	if !ok {
		return model.QuoteRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}

func (s *memStore) Index(symbol string) (model.IndexRecord, bool) {
	e, ok := s.indexes[symbol]
	if !ok {
		return model.IndexRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}

func (s *memStore) Quotes() []model.QuoteRecord {
	out := make([]model.QuoteRecord, 0, len(s.stockOrder))
	for _, sym := range s.stockOrder {
		rec, _ := s.Quote(sym)
		out = append(out, rec)
	}
	return out
}

func (s *memStore) Indices() []model.IndexRecord {
	out := make([]model.IndexRecord, 0, len(s.indexOrder))
	for _, sym := range s.indexOrder {
		rec, _ := s.Index(sym)
		out = append(out, rec)
	}
	return out
}

func (s *memStore) StockSymbols() []string {
	out := make([]string, len(s.stockOrder))
	copy(out, s.stockOrder)
	return out
}

func (s *memStore) IndexSymbols() []string {
	out := make([]string, len(s.indexOrder))
	copy(out, s.indexOrder)
	return out
}

func (s *memStore) UpdateQuote(symbol string, fn func(*model.QuoteRecord)) (model.QuoteRecord, bool) {
	e, ok := s.quotes[symbol]
	if !ok {
		return model.QuoteRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.rec)
	return e.rec, true
}

func (s *memStore) UpdateIndex(symbol string, fn func(*model.IndexRecord)) (model.IndexRecord, bool) {
	e, ok := s.indexes[symbol]
	if !ok {
		return model.IndexRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.rec)
	return e.rec, true
}
