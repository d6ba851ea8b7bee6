package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ScalpDeck/internal/logging"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/trader"
)

// State of the auto-trader.
type State int

const (
	Disabled State = iota
	Armed
)

func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "disabled"
}

// DecisionRequester is the per-symbol decision entry point.
type DecisionRequester interface {
	RequestDecision(ctx context.Context, symbol string) (model.SymbolDecision, error)
}

// SymbolSource yields the symbols of the next pass.
type SymbolSource interface {
	Symbols() []string
}

// IntervalPeriod maps a chart interval to the auto-trade period.
func IntervalPeriod(interval string) time.Duration {
	switch interval {
	case "1m":
		return time.Minute
	case "5m":
		return 5 * time.Minute
	default:
		return 15 * time.Minute
	}
}

// AutoTrader repeatedly requests a decision for every watched symbol while armed.
type AutoTrader struct {
	Trader    DecisionRequester
	Watchlist SymbolSource
	Strategy  pass.Strategy
	Recorder  recorder.Recorder

	sched  *Scheduler
	logger *zap.Logger
	// job runs one pass; it never overlaps itself.
	job cron.Job

	mu       sync.Mutex
	idle     *sync.Cond
	state    State
	entry    cron.EntryID
	period   time.Duration
	inflight int
	onChange []func(State)
}

// NewAutoTrader creates a disabled AutoTrader whose ticks run on sched's cron.
func NewAutoTrader(sched *Scheduler, tr DecisionRequester, wl SymbolSource, strategy pass.Strategy, rec recorder.Recorder, interval string, logger *zap.Logger) *AutoTrader {
	a := &AutoTrader{
		Trader:    tr,
		Watchlist: wl,
		Strategy:  strategy,
		Recorder:  rec,
		sched:     sched,
		logger:    logger.With(zap.String("component", "autotrader")),
		period:    IntervalPeriod(interval),
	}
	a.idle = sync.NewCond(&a.mu)
	cl := logging.CronLogger{Logger: a.logger}
	a.job = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() { a.runPass() }))
	return a
}

// OnChange registers fn to run after every state change.
func (a *AutoTrader) OnChange(fn func(State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onChange = append(a.onChange, fn)
}

func (a *AutoTrader) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Period returns the current tick period.
func (a *AutoTrader) Period() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.period
}

// Arm launches one pass right away and schedules the next ones. Arming an
// armed trader does nothing.
func (a *AutoTrader) Arm() {
	a.mu.Lock()
	if a.state == Armed {
		a.mu.Unlock()
		return
	}
	a.state = Armed
	a.inflight++
	a.entry = a.sched.Cron.Schedule(cron.Every(a.period), cron.FuncJob(a.tick))
	period := a.period
	listeners := a.onChange
	a.mu.Unlock()

	a.logger.Info("auto-trade armed", zap.Duration("period", period))
	go func() {
		defer a.done()
		a.job.Run()
	}()
	notifyState(listeners, Armed)
}

// Disarm cancels future ticks. A pass already running finishes.
func (a *AutoTrader) Disarm() {
	a.mu.Lock()
	if a.state == Disabled {
		a.mu.Unlock()
		return
	}
	a.state = Disabled
	a.sched.Cron.Remove(a.entry)
	a.entry = 0
	listeners := a.onChange
	a.mu.Unlock()

	a.logger.Info("auto-trade disarmed")
	notifyState(listeners, Disabled)
}

// Toggle flips the state and returns the new one.
func (a *AutoTrader) Toggle() State {
	if a.State() == Armed {
		a.Disarm()
		return Disabled
	}
	a.Arm()
	return Armed
}

// SetInterval changes the period from the next tick on without touching a running pass.
func (a *AutoTrader) SetInterval(interval string) time.Duration {
	period := IntervalPeriod(interval)
	a.mu.Lock()
	defer a.mu.Unlock()
	if period == a.period {
		return period
	}
	a.period = period
	if a.state == Armed {
		a.sched.Cron.Remove(a.entry)
		a.entry = a.sched.Cron.Schedule(cron.Every(period), cron.FuncJob(a.tick))
	}
	a.logger.Info("auto-trade period changed", zap.String("interval", interval), zap.Duration("period", period))
	return period
}

// Wait blocks until no pass is running.
func (a *AutoTrader) Wait() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.inflight > 0 {
		a.idle.Wait()
	}
}

func (a *AutoTrader) tick() {
	a.mu.Lock()
	a.inflight++
	a.mu.Unlock()
	defer a.done()
	a.job.Run()
}

func (a *AutoTrader) done() {
	a.mu.Lock()
	a.inflight--
	if a.inflight == 0 {
		a.idle.Broadcast()
	}
	a.mu.Unlock()
}

func (a *AutoTrader) runPass() {
	symbols := a.Watchlist.Symbols()
	tr := pass.Track("trade")
	logger := a.logger.With(zap.String("pass_id", tr.ID()))
	ctx := trader.WithPassID(context.WithoutCancel(a.sched.Ctx), tr.ID())

	logger.Info("trade pass started", zap.Strings("symbols", symbols), zap.String("strategy", a.Strategy.Name()))
	a.Strategy.Run(ctx, symbols, func(ctx context.Context, symbol string) {
		if _, err := a.Trader.RequestDecision(ctx, symbol); err != nil {
			logger.Warn("decision request failed", zap.String("symbol", symbol), zap.Error(err))
			tr.Fail(symbol)
			return
		}
		tr.Ok(symbol)
	})

	rep := tr.Finish()
	logger.Info("trade pass finished",
		zap.Int("ok", len(rep.Ok)),
		zap.Int("failed", len(rep.Failed)),
		zap.Duration("duration", rep.Duration))
	if err := a.Recorder.RecordPass(&recorder.PassEvent{Report: rep}); err != nil {
		logger.Error("record trade pass", zap.Error(err))
	}
}

func notifyState(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}
