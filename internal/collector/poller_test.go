package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/pass"
	"ScalpDeck/internal/recorder"
	"ScalpDeck/internal/watchlist"
)

func newTestPoller(mock *agent.Mock, symbols ...string) (*Poller, *cache.Markets) {
	markets := cache.NewStore[model.MarketSnapshot]()
	p := NewPoller(mock, watchlist.New(symbols...), markets, pass.Sequential{}, recorder.NewNoopRecorder(), zap.NewNop())
	return p, markets
}

func TestPollOnce_StoresEverySymbol(t *testing.T) {
	mock := agent.NewMock(100)
	p, markets := newTestPoller(mock, "AAPL", "GOOGL")

	rep := p.PollOnce(context.Background())
	assert.Equal(t, []string{"AAPL", "GOOGL"}, rep.Ok)
	assert.Empty(t, rep.Failed)
	assert.Equal(t, []string{"market:AAPL", "market:GOOGL"}, mock.Calls())

	snap, ok := markets.Get("GOOGL")
	require.True(t, ok)
	assert.Equal(t, "GOOGL", snap.Symbol)
}

func TestPollOnce_FailureKeepsPreviousAndContinues(t *testing.T) {
	mock := agent.NewMock(100)
	p, markets := newTestPoller(mock, "AAPL", "TSLA", "MSFT")

	p.PollOnce(context.Background())
	before, ok := markets.Get("TSLA")
	require.True(t, ok)

	mock.Price = 200
	mock.SetMarketErr("TSLA", errors.New("connection reset"))
	rep := p.PollOnce(context.Background())

	assert.Equal(t, []string{"AAPL", "MSFT"}, rep.Ok)
	assert.Equal(t, []string{"TSLA"}, rep.Failed)

	after, _ := markets.Get("TSLA")
	assert.Equal(t, before, after, "failed symbol keeps its previous snapshot")

	msft, _ := markets.Get("MSFT")
	assert.InDelta(t, 200, msft.CurrentPrice, 20, "later symbols still refreshed")
}

func TestPollOnce_FollowsWatchlistChanges(t *testing.T) {
	mock := agent.NewMock(100)
	p, markets := newTestPoller(mock, "AAPL")

	p.Watchlist.Add("nvda")
	p.PollOnce(context.Background())
	_, ok := markets.Get("NVDA")
	assert.True(t, ok)
}

func TestSetRange(t *testing.T) {
	p, _ := newTestPoller(agent.NewMock(1))
	p.SetRange("5d", "")
	period, interval := p.Range()
	assert.Equal(t, "5d", period)
	assert.Equal(t, "1m", interval)
}

func TestTrigger_Coalesces(t *testing.T) {
	mock := agent.NewMock(100)
	p, _ := newTestPoller(mock, "AAPL")

	p.Trigger()
	p.Trigger()
	p.Trigger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.RunTriggers(ctx)

	require.Eventually(t, func() bool { return mock.CountCalls("market:") >= 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, mock.CountCalls("market:"), "queued triggers collapse into one pass")
}
