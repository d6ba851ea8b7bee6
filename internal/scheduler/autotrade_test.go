package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ScalpDeck/internal/model"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/watchlist"
)

type fakeRequester struct {
	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	hook     func(symbol string) error
}

func (f *fakeRequester) RequestDecision(_ context.Context, symbol string) (model.SymbolDecision, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	if n > f.maxSeen.Load() {
		f.maxSeen.Store(n)
	}
	f.mu.Lock()
	f.calls = append(f.calls, symbol)
	f.mu.Unlock()
	if f.hook != nil {
		if err := f.hook(symbol); err != nil {
			return model.SymbolDecision{}, err
		}
	}
	return model.SymbolDecision{Symbol: symbol, Decision: model.Decision{Action: model.ActionHold}}, nil
}

func (f *fakeRequester) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestAutoTrader(req DecisionRequester, symbols ...string) (*AutoTrader, *Scheduler) {
	sched := NewScheduler(context.Background(), zap.NewNop())
	a := NewAutoTrader(sched, req, watchlist.New(symbols...), pass.Sequential{}, recorder.NewNoopRecorder(), "1m", zap.NewNop())
	return a, sched
}

func TestArm_ImmediatePassBeforeFirstTick(t *testing.T) {
	req := &fakeRequester{}
	a, sched := newTestAutoTrader(req, "AAPL", "GOOGL")

	a.Arm()
	a.Wait()

	assert.Equal(t, Armed, a.State())
	assert.Equal(t, []string{"AAPL", "GOOGL"}, req.Calls())
	require.Len(t, sched.Cron.Entries(), 1)
	assert.Equal(t, time.Minute, sched.Cron.Entries()[0].Schedule.(cron.ConstantDelaySchedule).Delay)
}

func TestTradePass_SequentialInOrder(t *testing.T) {
	req := &fakeRequester{hook: func(string) error {
		time.Sleep(5 * time.Millisecond)
		return nil
	}}
	a, _ := newTestAutoTrader(req, "A", "B", "C")

	a.Arm()
	a.Wait()

	assert.Equal(t, []string{"A", "B", "C"}, req.Calls())
	assert.Equal(t, int32(1), req.maxSeen.Load())
}

func TestTradePass_FailureDoesNotAbort(t *testing.T) {
	req := &fakeRequester{hook: func(s string) error {
		if s == "B" {
			return errors.New("agent down")
		}
		return nil
	}}
	a, _ := newTestAutoTrader(req, "A", "B", "C")

	a.Arm()
	a.Wait()
	assert.Equal(t, []string{"A", "B", "C"}, req.Calls())
}

func TestDisarm_MidPassFinishesWithoutFurtherTicks(t *testing.T) {
	started := make(chan struct{})
	gate := make(chan struct{})
	var once sync.Once
	req := &fakeRequester{hook: func(s string) error {
		if s == "A" {
			once.Do(func() { close(started) })
			<-gate
		}
		return nil
	}}
	a, sched := newTestAutoTrader(req, "A", "B", "C")
	a.period = time.Second
	sched.Start()
	defer sched.Stop()

	a.Arm()
	<-started
	a.Disarm()
	assert.Equal(t, Disabled, a.State())
	assert.Empty(t, sched.Cron.Entries())

	close(gate)
	a.Wait()
	assert.Equal(t, []string{"A", "B", "C"}, req.Calls())

	time.Sleep(1500 * time.Millisecond)
	assert.Len(t, req.Calls(), 3)
}

func TestArm_Idempotent(t *testing.T) {
	req := &fakeRequester{}
	a, sched := newTestAutoTrader(req, "AAPL")

	a.Arm()
	a.Arm()
	a.Wait()

	assert.Equal(t, []string{"AAPL"}, req.Calls())
	assert.Len(t, sched.Cron.Entries(), 1)
}

func TestToggle(t *testing.T) {
	a, sched := newTestAutoTrader(&fakeRequester{}, "AAPL")
	var seen []State
	a.OnChange(func(s State) { seen = append(seen, s) })

	assert.Equal(t, Armed, a.Toggle())
	assert.Equal(t, Disabled, a.Toggle())
	a.Wait()

	assert.Equal(t, []State{Armed, Disabled}, seen)
	assert.Empty(t, sched.Cron.Entries())
}

func TestSetInterval_ReschedulesWhileArmed(t *testing.T) {
	a, sched := newTestAutoTrader(&fakeRequester{}, "AAPL")
	a.Arm()
	a.Wait()

	assert.Equal(t, 5*time.Minute, a.SetInterval("5m"))
	entries := sched.Cron.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 5*time.Minute, entries[0].Schedule.(cron.ConstantDelaySchedule).Delay)
}

func TestIntervalPeriod(t *testing.T) {
	assert.Equal(t, time.Minute, IntervalPeriod("1m"))
	assert.Equal(t, 5*time.Minute, IntervalPeriod("5m"))
	assert.Equal(t, 15*time.Minute, IntervalPeriod("15m"))
	assert.Equal(t, 15*time.Minute, IntervalPeriod("1d"))
	assert.Equal(t, 15*time.Minute, IntervalPeriod(""))
}
