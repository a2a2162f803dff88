package pricing

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
)

// ErrUnsupportedClass is returned for asset classes without a quote.
var ErrUnsupportedClass = errors.New("pricing: unsupported asset class")

// StaticOracle serves flat per-class valuations seeded from configuration.
// Quotes apply uniformly to every asset id within a class; there is no feed
// refresh loop, operators update quotes through Quote.
type StaticOracle struct {
	mu     sync.RWMutex
	quotes map[string]*big.Int
}

func NewStaticOracle() *StaticOracle {
	return &StaticOracle{quotes: make(map[string]*big.Int)}
}

// Quote sets or replaces the valuation for an asset class.
func (o *StaticOracle) Quote(assetClass string, value *big.Int) error {
	if value == nil || value.Sign() <= 0 {
		return fmt.Errorf("pricing: quote for %q must be positive", assetClass)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.quotes[assetClass] = new(big.Int).Set(value)
	return nil
}

// PriceOf returns the configured valuation for the class; the asset id is
// accepted for interface compatibility but does not influence the quote.
func (o *StaticOracle) PriceOf(assetClass string, assetID uint64) (*big.Int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	value, ok := o.quotes[assetClass]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedClass, assetClass)
	}
	return new(big.Int).Set(value), nil
}

// Classes lists the quoted asset classes in deterministic order.
func (o *StaticOracle) Classes() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	classes := make([]string, 0, len(o.quotes))
	for class := range o.quotes {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}
