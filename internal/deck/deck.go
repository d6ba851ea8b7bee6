// Package deck assembles the watchlist, caches and periodic processes into
// one session and exposes the operations presentation needs.
package deck

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/chart"
	"ScalpDeck/internal/collector"
	"ScalpDeck/internal/feed"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/scheduler"
	"ScalpDeck/internal/status"
	"ScalpDeck/internal/trader"
	"ScalpDeck/internal/watchlist"
)

// Intervals are the bar intervals the deck can chart and trade on.
var Intervals = []string{"1m", "5m", "15m", "1d"}

// ErrUnknownInterval is returned by SetInterval for an unsupported interval.
var ErrUnknownInterval = errors.New("unknown interval")

// Options configures a Deck.
type Options struct {
	Symbols     []string
	Period      string
	Interval    string
	MarketEvery time.Duration
	StatusEvery time.Duration
	HealthEvery time.Duration
	RecordEvery time.Duration
	// AutoTradeInterval picks the auto-trade period; empty follows Interval.
	AutoTradeInterval string
	Strategy          pass.Strategy
}

// Notifier delivers decision alerts to operators.
type Notifier interface {
	NotifyDecision(ctx context.Context, d model.SymbolDecision) error
}

// Deck is one trading session.
type Deck struct {
	API       agent.API
	Watchlist *watchlist.Watchlist
	Markets   *cache.Markets
	Decisions *cache.Decisions
	Status    *cache.StatusHolder

	Poller     *collector.Poller
	Trader     *trader.Trader
	Refresher  *status.Refresher
	Liveness   *status.Liveness
	Scheduler  *scheduler.Scheduler
	AutoTrader *scheduler.AutoTrader
	Chart      *chart.Projector
	Events     *feed.Hub[feed.Event]

	opts   Options
	logger *zap.Logger
	cancel context.CancelFunc
}

// New wires a session. notifier may be nil.
func New(ctx context.Context, api agent.API, rec recorder.Recorder, notifier Notifier, opts Options, logger *zap.Logger) *Deck {
	if opts.Strategy == nil {
		opts.Strategy = pass.Sequential{}
	}
	if opts.AutoTradeInterval == "" {
		opts.AutoTradeInterval = opts.Interval
	}

	ctx, cancel := context.WithCancel(ctx)
	d := &Deck{
		API:       api,
		Watchlist: watchlist.New(opts.Symbols...),
		Markets:   cache.NewStore[model.MarketSnapshot](),
		Decisions: cache.NewStore[model.SymbolDecision](),
		Status:    cache.NewStatusHolder(),
		Events:    feed.NewHub[feed.Event](),
		opts:      opts,
		logger:    logger,
		cancel:    cancel,
	}

	d.Refresher = status.NewRefresher(api, d.Status, rec, opts.RecordEvery, logger)
	d.Liveness = status.NewLiveness(api, logger)
	d.Poller = collector.NewPoller(api, d.Watchlist, d.Markets, opts.Strategy, rec, logger)
	d.Poller.SetRange(opts.Period, opts.Interval)

	d.Trader = trader.NewTrader(api, d.Decisions, d.Refresher, rec, notifier, logger)
	d.Scheduler = scheduler.NewScheduler(ctx, logger)
	d.AutoTrader = scheduler.NewAutoTrader(d.Scheduler, d.Trader, d.Watchlist, opts.Strategy, rec, opts.AutoTradeInterval, logger)
	d.Chart = chart.NewProjector(d.Markets, chart.DefaultWindow)
	if syms := d.Watchlist.Symbols(); len(syms) > 0 {
		d.Chart.Select(syms[0])
	}

	d.wire()
	return d
}

func (d *Deck) wire() {
	d.Watchlist.OnChange(func(symbols []string) {
		d.Poller.Trigger()
		d.Events.Broadcast(feed.Event{Type: feed.TypeWatchlist, Data: symbols})
	})
	d.Markets.OnCommit(func(symbol string, snap model.MarketSnapshot) {
		d.Events.Broadcast(feed.Event{Type: feed.TypeSnapshot, Symbol: symbol, Data: QuoteOf(&snap)})
	})
	d.Decisions.OnCommit(func(symbol string, sd model.SymbolDecision) {
		d.Events.Broadcast(feed.Event{Type: feed.TypeDecision, Symbol: symbol, Data: sd})
	})
	d.Status.OnCommit(func(st model.AgentStatus) {
		d.Events.Broadcast(feed.Event{Type: feed.TypeStatus, Data: st})
	})
	d.AutoTrader.OnChange(func(s scheduler.State) {
		d.Events.Broadcast(feed.Event{Type: feed.TypeAutoTrade, Data: d.autoTradeView()})
	})
}

// Start registers the periodic processes, runs each once and starts the cron.
func (d *Deck) Start() error {
	ctx := d.Scheduler.Ctx
	err := d.Scheduler.RegisterAll(
		scheduler.Periodic{Name: "market-poll", Period: d.opts.MarketEvery, Job: func(ctx context.Context) { d.Poller.PollOnce(ctx) }},
		scheduler.Periodic{Name: "status-refresh", Period: d.opts.StatusEvery, Job: d.Refresher.Refresh},
		scheduler.Periodic{Name: "liveness", Period: d.opts.HealthEvery, Job: func(ctx context.Context) { d.Liveness.Probe(ctx) }},
	)
	if err != nil {
		return fmt.Errorf("register periodic jobs: %w", err)
	}

	go d.Poller.RunTriggers(ctx)
	go func() {
		detached := context.WithoutCancel(ctx)
		d.Liveness.Probe(detached)
		d.Refresher.Refresh(detached)
	}()
	d.Poller.Trigger()
	d.Scheduler.Start()
	return nil
}

// Stop disarms auto-trading, stops the timers and waits for running passes.
// Requests already in flight complete.
func (d *Deck) Stop() {
	d.AutoTrader.Disarm()
	d.cancel()
	d.Scheduler.Stop()
	d.AutoTrader.Wait()
}

// AddSymbol validates and adds raw to the watchlist.
func (d *Deck) AddSymbol(raw string) ([]string, error) {
	sym, err := watchlist.Validate(raw)
	if err != nil {
		return nil, err
	}
	return d.Watchlist.Add(sym), nil
}

// RemoveSymbol removes symbol from the watchlist. Cached data for it is kept.
func (d *Deck) RemoveSymbol(symbol string) []string {
	return d.Watchlist.Remove(model.NormalizeSymbol(symbol))
}

// Trade requests a decision for symbol on behalf of an operator.
func (d *Deck) Trade(ctx context.Context, symbol string) (model.SymbolDecision, error) {
	sym, err := watchlist.Validate(symbol)
	if err != nil {
		return model.SymbolDecision{}, err
	}
	return d.Trader.RequestDecision(ctx, sym)
}

// SetInterval switches the bar interval for polling, charting and the
// auto-trade period. Intraday intervals request one day of bars.
func (d *Deck) SetInterval(interval string) error {
	if !slices.Contains(Intervals, interval) {
		return fmt.Errorf("%w: %q", ErrUnknownInterval, interval)
	}
	period := "1d"
	if interval == "1d" {
		period = "1mo"
	}
	d.Poller.SetRange(period, interval)
	d.AutoTrader.SetInterval(interval)
	d.Poller.Trigger()
	d.Events.Broadcast(feed.Event{Type: feed.TypeAutoTrade, Data: d.autoTradeView()})
	return nil
}

// Initialize creates the remote agent and fetches its first status.
func (d *Deck) Initialize(ctx context.Context, req agent.InitRequest) (agent.InitAck, error) {
	ack, err := d.API.Initialize(ctx, req)
	if err != nil {
		return agent.InitAck{}, fmt.Errorf("initialize agent: %w", err)
	}
	d.logger.Info("agent initialized", zap.String("name", req.Name), zap.Float64("initial_balance", req.InitialBalance))
	d.Refresher.Refresh(ctx)
	return ack, nil
}
