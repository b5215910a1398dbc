// Package catalog holds the static instrument universe the server simulates.
// The seed data is fixed at compile time and read-only after startup.
package catalog

// Instrument is the immutable seed definition for one stock.
type Instrument struct {
	Symbol    string // Primary key (e.g., "RELIANCE")
	Name      string // Display name
	Exchange  string // Exchange code
	Sector    string // Sector label
	BasePrice float64
}

// Index is the immutable seed definition for one index.
type Index struct {
	Symbol    string
	Name      string
	BaseValue float64
}

var stocks = []Instrument{
	{Symbol: "RELIANCE", Name: "Reliance Industries", Exchange: "NSE", Sector: "Energy", BasePrice: 2940.5},
	{Symbol: "TCS", Name: "Tata Consultancy", Exchange: "NSE", Sector: "IT", BasePrice: 3875.2},
	{Symbol: "HDFCBANK", Name: "HDFC Bank", Exchange: "NSE", Sector: "Bank", BasePrice: 1680.75},
	{Symbol: "INFY", Name: "Infosys", Exchange: "NSE", Sector: "IT", BasePrice: 1582.4},
	{Symbol: "WIPRO", Name: "Wipro", Exchange: "NSE", Sector: "IT", BasePrice: 468.9},
	{Symbol: "SBIN", Name: "State Bank of India", Exchange: "NSE", Sector: "Bank", BasePrice: 812.3},
	{Symbol: "ICICIBANK", Name: "ICICI Bank", Exchange: "NSE", Sector: "Bank", BasePrice: 1245.6},
	{Symbol: "BAJFINANCE", Name: "Bajaj Finance", Exchange: "NSE", Sector: "NBFC", BasePrice: 6780.0},
	{Symbol: "TATAMOTORS", Name: "Tata Motors", Exchange: "NSE", Sector: "Auto", BasePrice: 965.4},
	{Symbol: "ADANIENT", Name: "Adani Enterprises", Exchange: "NSE", Sector: "Conglomerate", BasePrice: 2456.8},
	{Symbol: "HCLTECH", Name: "HCL Technologies", Exchange: "NSE", Sector: "IT", BasePrice: 1623.5},
	{Symbol: "MARUTI", Name: "Maruti Suzuki", Exchange: "NSE", Sector: "Auto", BasePrice: 12340.0},
	{Symbol: "ASIANPAINT", Name: "Asian Paints", Exchange: "NSE", Sector: "FMCG", BasePrice: 2890.5},
	{Symbol: "KOTAKBANK", Name: "Kotak Mahindra Bank", Exchange: "NSE", Sector: "Bank", BasePrice: 1876.4},
	{Symbol: "LTIM", Name: "LTIMindtree", Exchange: "NSE", Sector: "IT", BasePrice: 5234.0},
}

var indices = []Index{
	{Symbol: "NIFTY50", Name: "NIFTY 50", BaseValue: 22450.5},
	{Symbol: "SENSEX", Name: "BSE SENSEX", BaseValue: 73856.2},
	{Symbol: "BANKNIFTY", Name: "BANK NIFTY", BaseValue: 48320.0},
	{Symbol: "NIFTYMID", Name: "NIFTY MIDCAP", BaseValue: 49680.0},
}

// Stocks returns the stock universe in catalog order.
func Stocks() []Instrument {
	out := make([]Instrument, len(stocks))
	copy(out, stocks)
	return out
}

// Indices returns the index universe in catalog order.
func Indices() []Index {
	out := make([]Index, len(indices))
	copy(out, indices)
	return out
}

// StockSymbols returns the stock symbols in catalog order.
func StockSymbols() []string {
	out := make([]string, len(stocks))
	for i, s := range stocks {
		out[i] = s.Symbol
	}
	return out
}

// IndexSymbols returns the index symbols in catalog order.
func IndexSymbols() []string {
	out := make([]string, len(indices))
	for i, ix := range indices {
		out[i] = ix.Symbol
	}
	return out
}
