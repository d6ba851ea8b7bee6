package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ScalpDeck/internal/model"
)

type fakeBotAPI struct {
	mu   sync.Mutex
	sent []string
	fail int
}

func (f *fakeBotAPI) handler(t *testing.T, updates string) http.HandlerFunc {
	served := false
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.fail > 0 {
				f.fail--
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			f.sent = append(f.sent, p["text"])
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.mu.Lock()
			first := !served
			served = true
			f.mu.Unlock()
			if first {
				w.Write([]byte(updates))
				return
			}
			w.Write([]byte(`{"ok":true,"result":[]}`))
		}
	}
}

func (f *fakeBotAPI) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, api *fakeBotAPI, updates string) *TelegramNotifier {
	srv := httptest.NewServer(api.handler(t, updates))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "42", "", zap.NewNop())
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api, "")
	require.NoError(t, n.Send(context.Background(), "hello"))
	assert.Equal(t, []string{"hello"}, api.Sent())
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	api := &fakeBotAPI{fail: 1}
	n := newTestNotifier(t, api, "")
	require.NoError(t, n.SendWithRetry(context.Background(), "retry me", 2))
	assert.Equal(t, []string{"retry me"}, api.Sent())
}

func TestNotifyDecision_DeliveredByRun(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	require.NoError(t, n.NotifyDecision(ctx, model.SymbolDecision{
		Symbol:   "AAPL",
		Decision: model.Decision{Action: model.ActionBuy, Confidence: 0.8, Reasoning: "breakout"},
	}))
	require.Eventually(t, func() bool { return len(api.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, api.Sent()[0], "BUY AAPL")
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /status ","chat":{"id":42}}}]}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	go n.StartPolling(ctx, func(_ context.Context, cmd string) string {
		got <- cmd
		return "ok"
	})

	select {
	case cmd := <-got:
		assert.Equal(t, "/status", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("command never handled")
	}
	require.Eventually(t, func() bool { return len(api.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartPolling_IgnoresOtherChats(t *testing.T) {
	api := &fakeBotAPI{}
	n := newTestNotifier(t, api, `{"ok":true,"result":[`+
		`{"update_id":8,"message":{"text":"/autotrade on","chat":{"id":999999}}},`+
		`{"update_id":9,"message":{"text":"/status","chat":{"id":42}}}]}`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 2)
	go n.StartPolling(ctx, func(_ context.Context, cmd string) string {
		got <- cmd
		return "ok"
	})

	select {
	case cmd := <-got:
		assert.Equal(t, "/status", cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("command never handled")
	}
	require.Eventually(t, func() bool { return len(api.Sent()) == 1 }, 2*time.Second, 10*time.Millisecond)
	select {
	case cmd := <-got:
		t.Fatalf("unexpected command %q handled", cmd)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Len(t, api.Sent(), 1)
}

func TestFormatters_EscapeHTML(t *testing.T) {
	msg := FormatDecision(model.SymbolDecision{
		Symbol:   "A<B",
		Decision: model.Decision{Action: model.ActionBuy, Confidence: 0.5, Reasoning: "RSI < 30 & price <SMA20"},
	})
	assert.Contains(t, msg, "RSI &lt; 30 &amp; price &lt;SMA20")
	assert.Contains(t, msg, "A&lt;B")
	assert.NotContains(t, msg, "<SMA20")

	out := FormatStatus(&model.AgentStatus{Name: "<b>bot</b> & co"})
	assert.Contains(t, out, "&lt;b&gt;bot&lt;/b&gt; &amp; co")

	wl := FormatWatchlist([]string{"X&Y"}, nil)
	assert.Contains(t, wl, "X&amp;Y")
}

func TestFormatters(t *testing.T) {
	qty := 3
	msg := FormatDecision(model.SymbolDecision{
		Symbol:   "TSLA",
		Decision: model.Decision{Action: model.ActionSell, Confidence: 0.65, Reasoning: "overbought", SuggestedQuantity: &qty},
	})
	assert.Contains(t, msg, "SELL TSLA")
	assert.Contains(t, msg, "65%")
	assert.Contains(t, msg, "Suggested quantity: 3")

	st := &model.AgentStatus{
		Name:             "bot",
		CurrentBalance:   decimal.NewFromFloat(9000.5),
		TotalReturn:      decimal.NewFromInt(-20),
		ReturnPercentage: decimal.NewFromFloat(-0.2),
	}
	out := FormatStatus(st)
	assert.Contains(t, out, "$9000.50")
	assert.Contains(t, out, "📉")

	wl := FormatWatchlist([]string{"AAPL", "MSFT"}, map[string]model.SymbolDecision{
		"AAPL": {Symbol: "AAPL", Decision: model.Decision{Action: model.ActionBuy, Confidence: 0.9}},
	})
	assert.Contains(t, wl, "AAPL  BUY 90%")
	assert.Contains(t, wl, "· MSFT")
	assert.Equal(t, "Watchlist is empty.", FormatWatchlist(nil, nil))
}
