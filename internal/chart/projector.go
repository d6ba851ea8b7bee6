package chart

import (
	"sync"

	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/model"
)

// Projector serves the chart window of the selected symbol from the market cache.
type Projector struct {
	Markets *cache.Markets

	mu       sync.RWMutex
	selected string
	n        int
}

func NewProjector(markets *cache.Markets, n int) *Projector {
	if n <= 0 {
		n = DefaultWindow
	}
	return &Projector{Markets: markets, n: n}
}

// Select changes the charted symbol.
func (p *Projector) Select(symbol string) {
	p.mu.Lock()
	p.selected = model.NormalizeSymbol(symbol)
	p.mu.Unlock()
}

func (p *Projector) Selected() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// Current returns the window of the selected symbol.
func (p *Projector) Current() []model.ChartPoint {
	return p.For(p.Selected(), 0)
}

// For returns the last n points for symbol, or the projector default when
// n is not positive. Empty while no snapshot exists.
func (p *Projector) For(symbol string, n int) []model.ChartPoint {
	if n <= 0 {
		n = p.n
	}
	snap, ok := p.Markets.Get(model.NormalizeSymbol(symbol))
	if !ok {
		return Window(nil, n)
	}
	return Window(&snap, n)
}
