package catalog

import "testing"

func TestStocksSeed(t *testing.T) {
	s := Stocks()
	if len(s) != 15 {
		t.Fatalf("len(Stocks()) = %d, want 15", len(s))
	}

	seen := make(map[string]bool)
	for _, in := range s {
		if seen[in.Symbol] {
			t.Errorf("duplicate symbol %q", in.Symbol)
		}
		seen[in.Symbol] = true

		if in.BasePrice <= 0 {
			t.Errorf("%s: BasePrice = %v, want > 0", in.Symbol, in.BasePrice)
		}
		if in.Exchange != "NSE" {
			t.Errorf("%s: Exchange = %q, want NSE", in.Symbol, in.Exchange)
		}
		if in.Name == "" || in.Sector == "" {
			t.Errorf("%s: missing name or sector", in.Symbol)
		}
	}

	if s[0].Symbol != "RELIANCE" || s[0].BasePrice != 2940.5 {
		t.Errorf("first stock = %+v, want RELIANCE @ 2940.5", s[0])
	}
}

func TestIndicesSeed(t *testing.T) {
	ix := Indices()
	if len(ix) != 4 {
		t.Fatalf("len(Indices()) = %d, want 4", len(ix))
	}
	if ix[0].Symbol != "NIFTY50" || ix[0].BaseValue != 22450.5 {
		t.Errorf("first index = %+v, want NIFTY50 @ 22450.5", ix[0])
	}
}

func TestSeedCopiesAreIsolated(t *testing.T) {
	a := Stocks()
	a[0].Symbol = "MUTATED"
	if b := Stocks(); b[0].Symbol != "RELIANCE" {
		t.Errorf("seed data mutated through returned copy: %q", b[0].Symbol)
	}

	syms := StockSymbols()
	if len(syms) != 15 || syms[1] != "TCS" {
		t.Errorf("StockSymbols() = %v", syms)
	}
	isyms := IndexSymbols()
	if len(isyms) != 4 || isyms[3] != "NIFTYMID" {
		t.Errorf("IndexSymbols() = %v", isyms)
	}
}
