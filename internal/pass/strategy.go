// Package pass decides how a periodic process walks the watchlist.
package pass

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Func handles one symbol. Failures are handled inside Func; a pass never aborts.
type Func func(ctx context.Context, symbol string)

// Strategy runs fn once for every symbol.
type Strategy interface {
	Run(ctx context.Context, symbols []string, fn Func)
	Name() string
}

// Sequential awaits each symbol before starting the next, in order.
// A slow symbol delays every symbol after it.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Run(ctx context.Context, symbols []string, fn Func) {
	for _, s := range symbols {
		fn(ctx, s)
	}
}

// Bounded fans out with at most Limit symbols in flight. Start order follows
// the input, completion order does not.
type Bounded struct {
	Limit int
}

func (b Bounded) Name() string { return "bounded" }

func (b Bounded) Run(ctx context.Context, symbols []string, fn Func) {
	var g errgroup.Group
	limit := b.Limit
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, s := range symbols {
		g.Go(func() error {
			fn(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
}

// New returns the strategy for a config mode.
func New(mode string, limit int) Strategy {
	if mode == "bounded" {
		return Bounded{Limit: limit}
	}
	return Sequential{}
}
