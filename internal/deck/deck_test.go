package deck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/feed"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/recorder"
)

func testOptions(symbols ...string) Options {
	return Options{
		Symbols:     symbols,
		Period:      "1d",
		Interval:    "1m",
		MarketEvery: 30 * time.Second,
		StatusEvery: 30 * time.Second,
		HealthEvery: 30 * time.Second,
	}
}

func newTestDeck(t *testing.T, mock *agent.Mock, symbols ...string) *Deck {
	t.Helper()
	d := New(context.Background(), mock, recorder.NewNoopRecorder(), nil, testOptions(symbols...), zap.NewNop())
	t.Cleanup(d.Stop)
	return d
}

func TestTrade_BuyStoresDecisionAndRefreshesStatusOnce(t *testing.T) {
	mock := agent.NewMock(100)
	mock.SetStatus(&model.AgentStatus{Name: "bot", Initialized: true, CurrentBalance: decimal.NewFromInt(10000)})
	mock.DecideFunc = func(context.Context, string) (model.Decision, error) {
		return model.Decision{Action: model.ActionBuy, Confidence: 0.8, Reasoning: "momentum"}, nil
	}
	d := newTestDeck(t, mock, "AAPL")

	_, err := d.Trade(context.Background(), "AAPL")
	require.NoError(t, err)

	got, ok := d.Decisions.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, model.ActionBuy, got.Action)
	assert.Equal(t, 1, mock.CountCalls("status:"))

	v := d.View()
	assert.True(t, v.Initialized)
	assert.Equal(t, "bot", v.Status.Name)
}

func TestTrade_CallerGoneStillStoresDecision(t *testing.T) {
	mock := agent.NewMock(100)
	mock.SetStatus(&model.AgentStatus{Name: "bot", Initialized: true})
	mock.DecideFunc = func(ctx context.Context, _ string) (model.Decision, error) {
		select {
		case <-ctx.Done():
			return model.Decision{}, ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return model.Decision{Action: model.ActionBuy, Confidence: 0.7}, nil
		}
	}
	d := newTestDeck(t, mock, "AAPL")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	sd, err := d.Trade(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, model.ActionBuy, sd.Action)

	got, ok := d.Decisions.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, model.ActionBuy, got.Action)
	assert.Equal(t, 1, mock.CountCalls("status:"))
}

// gatedDecide blocks each decision until release is closed.
func gatedDecide(started chan<- string, release <-chan struct{}) func(context.Context, string) (model.Decision, error) {
	return func(ctx context.Context, symbol string) (model.Decision, error) {
		started <- symbol
		select {
		case <-ctx.Done():
			return model.Decision{}, ctx.Err()
		case <-release:
			return model.Decision{Action: model.ActionSell, Confidence: 0.6, Reasoning: "late"}, nil
		}
	}
}

func TestAutoTrade_LateResultAfterDisarmIsStored(t *testing.T) {
	mock := agent.NewMock(100)
	started := make(chan string, 1)
	release := make(chan struct{})
	mock.DecideFunc = gatedDecide(started, release)
	d := newTestDeck(t, mock, "AAPL")

	d.AutoTrader.Arm()
	<-started
	d.AutoTrader.Disarm()
	close(release)
	d.AutoTrader.Wait()

	got, ok := d.Decisions.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, model.ActionSell, got.Action)
	assert.Equal(t, "disabled", d.View().AutoTrade.State)
}

func TestAutoTrade_LateResultAfterStopIsStored(t *testing.T) {
	mock := agent.NewMock(100)
	started := make(chan string, 1)
	release := make(chan struct{})
	mock.DecideFunc = gatedDecide(started, release)
	d := newTestDeck(t, mock, "AAPL")

	d.AutoTrader.Arm()
	<-started
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	d.Stop()

	got, ok := d.Decisions.Get("AAPL")
	require.True(t, ok)
	assert.Equal(t, model.ActionSell, got.Action)
	assert.Equal(t, "late", got.Reasoning)
}

func TestView_UninitializedAgent(t *testing.T) {
	d := newTestDeck(t, agent.NewMock(100), "AAPL")
	d.Refresher.Refresh(context.Background())

	v := d.View()
	assert.False(t, v.Initialized)
	assert.Nil(t, v.Status)
	assert.Equal(t, "AAPL", v.Selected)
	assert.Equal(t, "disabled", v.AutoTrade.State)
}

func TestWatchlistChange_TriggersRefresh(t *testing.T) {
	mock := agent.NewMock(100)
	d := newTestDeck(t, mock, "AAPL")
	require.NoError(t, d.Start())

	require.Eventually(t, func() bool { return d.Markets.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := d.AddSymbol(" tsla ")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, ok := d.Markets.Get("TSLA")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err = d.AddSymbol("  ")
	assert.Error(t, err)
}

func TestRemoveSymbol_KeepsCachedData(t *testing.T) {
	mock := agent.NewMock(100)
	d := newTestDeck(t, mock, "AAPL", "MSFT")
	d.Poller.PollOnce(context.Background())

	assert.Equal(t, []string{"AAPL"}, d.RemoveSymbol("msft"))
	_, ok := d.View().Quotes["MSFT"]
	assert.True(t, ok)
}

func TestArm_ImmediatePassOverWatchlist(t *testing.T) {
	mock := agent.NewMock(100)
	d := newTestDeck(t, mock, "AAPL", "GOOGL")

	d.AutoTrader.Arm()
	d.AutoTrader.Wait()

	var decides []string
	for _, c := range mock.Calls() {
		if c == "decide:AAPL" || c == "decide:GOOGL" {
			decides = append(decides, c)
		}
	}
	assert.Equal(t, []string{"decide:AAPL", "decide:GOOGL"}, decides)
	assert.Equal(t, 2, d.Decisions.Len())
}

func TestSetInterval(t *testing.T) {
	d := newTestDeck(t, agent.NewMock(100), "AAPL")

	err := d.SetInterval("2h")
	assert.True(t, errors.Is(err, ErrUnknownInterval))

	require.NoError(t, d.SetInterval("5m"))
	assert.Equal(t, 5*time.Minute, d.AutoTrader.Period())
	period, interval := d.Poller.Range()
	assert.Equal(t, "1d", period)
	assert.Equal(t, "5m", interval)
	assert.Equal(t, "5m", d.View().AutoTrade.Interval)
}

func TestEvents_DecisionPublished(t *testing.T) {
	d := newTestDeck(t, agent.NewMock(100), "AAPL")
	sub := d.Events.Subscribe(8)
	defer d.Events.Unsubscribe(sub)

	_, err := d.Trade(context.Background(), "AAPL")
	require.NoError(t, err)

	select {
	case evt := <-sub.C():
		assert.Equal(t, feed.TypeDecision, evt.Type)
		assert.Equal(t, "AAPL", evt.Symbol)
	case <-time.After(time.Second):
		t.Fatal("no decision event")
	}
}

func TestHandleCommand(t *testing.T) {
	mock := agent.NewMock(100)
	d := newTestDeck(t, mock, "AAPL")
	ctx := context.Background()

	assert.Contains(t, d.HandleCommand(ctx, "/add nvda"), "NVDA")
	assert.Equal(t, []string{"AAPL", "NVDA"}, d.Watchlist.Symbols())
	assert.Contains(t, d.HandleCommand(ctx, "/remove NVDA"), "AAPL")
	assert.Equal(t, "Agent not initialized.", d.HandleCommand(ctx, "/status"))
	assert.Contains(t, d.HandleCommand(ctx, "/trade AAPL"), "HOLD AAPL")
	assert.Equal(t, "Usage: /trade SYMBOL", d.HandleCommand(ctx, "/trade"))
	assert.Contains(t, d.HandleCommand(ctx, "/arm@scalpdeck_bot"), "armed")
	assert.Contains(t, d.HandleCommand(ctx, "/disarm"), "disarmed")
	assert.Contains(t, d.HandleCommand(ctx, "hello"), "Commands")
}
