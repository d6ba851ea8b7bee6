package collector

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/watchlist"
)

// Poller refreshes the market snapshot of every watched symbol.
type Poller struct {
	API       agent.API
	Watchlist *watchlist.Watchlist
	Markets   *cache.Markets
	Strategy  pass.Strategy
	Recorder  recorder.Recorder

	logger   *zap.Logger
	mu       sync.Mutex
	period   string
	interval string
	trigger  chan struct{}
}

// NewPoller creates a Poller requesting 1d of 1m bars until SetRange says otherwise.
func NewPoller(api agent.API, wl *watchlist.Watchlist, markets *cache.Markets, strategy pass.Strategy, rec recorder.Recorder, logger *zap.Logger) *Poller {
	return &Poller{
		API:       api,
		Watchlist: wl,
		Markets:   markets,
		Strategy:  strategy,
		Recorder:  rec,
		logger:    logger.With(zap.String("component", "market-poller")),
		period:    "1d",
		interval:  "1m",
		trigger:   make(chan struct{}, 1),
	}
}

// SetRange changes the period and interval used from the next request on.
func (p *Poller) SetRange(period, interval string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if period != "" {
		p.period = period
	}
	if interval != "" {
		p.interval = interval
	}
}

// Range returns the period and interval currently requested.
func (p *Poller) Range() (period, interval string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.period, p.interval
}

// PollOnce runs one pass over the current watchlist. A failed symbol keeps
// its previous snapshot and does not stop the pass.
func (p *Poller) PollOnce(ctx context.Context) pass.Report {
	symbols := p.Watchlist.Symbols()
	period, interval := p.Range()
	tr := pass.Track("market")
	logger := p.logger.With(zap.String("pass_id", tr.ID()))

	p.Strategy.Run(ctx, symbols, func(ctx context.Context, symbol string) {
		seq := p.Markets.Begin(symbol)
		snap, err := p.API.MarketData(ctx, symbol, period, interval)
		if err != nil {
			logger.Warn("market data fetch failed", zap.String("symbol", symbol), zap.Error(err))
			tr.Fail(symbol)
			return
		}
		if !p.Markets.Commit(symbol, seq, snap) {
			logger.Debug("stale snapshot discarded", zap.String("symbol", symbol), zap.Uint64("seq", seq))
		}
		tr.Ok(symbol)
	})

	rep := tr.Finish()
	logger.Info("market pass finished",
		zap.Int("ok", len(rep.Ok)),
		zap.Int("failed", len(rep.Failed)),
		zap.Duration("duration", rep.Duration))
	if err := p.Recorder.RecordPass(&recorder.PassEvent{Report: rep}); err != nil {
		logger.Error("record market pass", zap.Error(err))
	}
	return rep
}

// Trigger requests an out-of-band pass. Requests made while one is pending coalesce.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// RunTriggers serves Trigger requests until ctx is cancelled.
func (p *Poller) RunTriggers(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.trigger:
			// Shutdown stops new passes, not requests already on the wire.
			p.PollOnce(context.WithoutCancel(ctx))
		}
	}
}
