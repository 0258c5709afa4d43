package capgains

// PriceOracle supplies a best-effort historical unit price in USD for an
// asset on a given day. Implementations must be deterministic for a given
// (asset, date) within one run, and report absence with ok == false
// rather than an error: a missing price is a recoverable data gap.
type PriceOracle interface {
	Price(asset string, on Date) (price Money, ok bool)
}

// Stablecoins are valued at a constant 1.0 USD without any lookup.
var Stablecoins = map[string]bool{
	"USD":  true,
	"USDC": true,
	"USDT": true,
	"GUSD": true,
	"DAI":  true,
	"BUSD": true,
}

// StablecoinOracle answers a constant $1 for known USD stablecoins and
// nothing else. It is meant to sit first in a ChainOracle.
type StablecoinOracle struct{}

func (StablecoinOracle) Price(asset string, on Date) (Money, bool) {
	if Stablecoins[asset] {
		return M(1), true
	}
	return Money{}, false
}

// MemoryOracle is an in-memory price table. It doubles as the
// deterministic fake for tests and as the prefetch target when a caller
// wants to avoid per-transaction lookups during processing.
type MemoryOracle struct {
	prices map[string]map[Date]Money
}

// NewMemoryOracle returns an empty in-memory oracle.
func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{prices: make(map[string]map[Date]Money)}
}

// Set records the price of an asset on a day, replacing any previous value.
func (m *MemoryOracle) Set(asset string, on Date, price Money) {
	days, ok := m.prices[asset]
	if !ok {
		days = make(map[Date]Money)
		m.prices[asset] = days
	}
	days[on] = price
}

func (m *MemoryOracle) Price(asset string, on Date) (Money, bool) {
	p, ok := m.prices[asset][on]
	return p, ok
}

// ChainOracle queries a list of oracles in priority order and returns the
// first answer. It mirrors the source-priority fallback of upstream price
// services: stablecoin shortcut, then cached database, then remote APIs.
type ChainOracle []PriceOracle

func (c ChainOracle) Price(asset string, on Date) (Money, bool) {
	for _, o := range c {
		if p, ok := o.Price(asset, on); ok {
			return p, true
		}
	}
	return Money{}, false
}

var _ PriceOracle = StablecoinOracle{}
var _ PriceOracle = (*MemoryOracle)(nil)
var _ PriceOracle = ChainOracle(nil)
