package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"ScalpDeck/internal/model"
)

// Mock is a scriptable in-memory agent for development and testing.
type Mock struct {
	mu sync.Mutex

	// Price seeds generated snapshots for symbols without a scripted one.
	Price      float64
	Bars       int
	Snapshots  map[string]model.MarketSnapshot
	MarketErrs map[string]error
	// DecideFunc overrides the default HOLD decision.
	DecideFunc func(ctx context.Context, symbol string) (model.Decision, error)
	StatusErr  error
	HealthErr  error

	status *model.AgentStatus
	trades []model.Trade
	calls  []string
}

// NewMock returns a mock with generated market data around price.
func NewMock(price float64) *Mock {
	return &Mock{
		Price:      price,
		Bars:       120,
		Snapshots:  map[string]model.MarketSnapshot{},
		MarketErrs: map[string]error{},
	}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

// Calls returns every call made so far as "method:arg" strings in call order.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CountCalls returns how many calls start with prefix.
func (m *Mock) CountCalls(prefix string) int {
	n := 0
	for _, c := range m.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// SetStatus scripts the agent status; nil makes Status fail as uninitialized.
func (m *Mock) SetStatus(st *model.AgentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = st
}

// SetMarketErr scripts a failure (or clears it with nil) for one symbol.
func (m *Mock) SetMarketErr(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.MarketErrs, symbol)
		return
	}
	m.MarketErrs[symbol] = err
}

func (m *Mock) Initialize(_ context.Context, req InitRequest) (InitAck, error) {
	m.record("initialize:" + req.Name)
	bal := decimal.NewFromFloat(req.InitialBalance)
	m.SetStatus(&model.AgentStatus{
		Name:                req.Name,
		Initialized:         true,
		InitialBalance:      bal,
		CurrentBalance:      bal,
		TotalPortfolioValue: bal,
	})
	return InitAck{
		Message:        fmt.Sprintf("Agent '%s' initialized", req.Name),
		InitialBalance: req.InitialBalance,
		HasAPIKey:      req.APIKey != "",
	}, nil
}

func (m *Mock) Status(_ context.Context) (model.AgentStatus, error) {
	m.record("status:")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatusErr != nil {
		return model.AgentStatus{}, m.StatusErr
	}
	if m.status == nil {
		return model.AgentStatus{}, &StatusError{Endpoint: "GET /agent/status", Code: 400, Body: `{"detail":"Agent not initialized"}`}
	}
	return *m.status, nil
}

func (m *Mock) Decide(ctx context.Context, symbol string) (model.Decision, error) {
	m.record("decide:" + symbol)
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, symbol)
	}
	return model.Decision{Action: model.ActionHold, Confidence: 0.5, Reasoning: "Neutral market (mock)"}, nil
}

func (m *Mock) MarketData(_ context.Context, symbol, period, interval string) (model.MarketSnapshot, error) {
	m.record("market:" + symbol)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.MarketErrs[symbol]; ok {
		return model.MarketSnapshot{}, err
	}
	if snap, ok := m.Snapshots[symbol]; ok {
		return snap, nil
	}
	return GenerateSnapshot(symbol, m.Price, m.Bars, interval), nil
}

func (m *Mock) History(_ context.Context) (model.TradeHistory, error) {
	m.record("history:")
	m.mu.Lock()
	defer m.mu.Unlock()
	trades := append([]model.Trade(nil), m.trades...)
	return model.TradeHistory{Trades: trades, TotalTrades: len(trades)}, nil
}

func (m *Mock) Health(_ context.Context) error {
	m.record("health:")
	return m.HealthErr
}

// GenerateSnapshot builds a gently trending simulated snapshot with count bars.
func GenerateSnapshot(symbol string, basePrice float64, count int, interval string) model.MarketSnapshot {
	step := 24 * time.Hour
	layout := "2006-01-02"
	switch interval {
	case "1m":
		step, layout = time.Minute, "2006-01-02 15:04"
	case "5m":
		step, layout = 5*time.Minute, "2006-01-02 15:04"
	case "15m":
		step, layout = 15*time.Minute, "2006-01-02 15:04"
	}

	h := model.HistoricalSeries{
		Date:   make([]string, count),
		Open:   make([]float64, count),
		High:   make([]float64, count),
		Low:    make([]float64, count),
		Close:  make([]float64, count),
		Volume: make([]float64, count),
	}
	start := time.Now().Add(-step * time.Duration(count))
	high, low := basePrice, basePrice
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		h.Date[i] = start.Add(step * time.Duration(i)).Format(layout)
		h.Open[i] = p * 0.999
		h.High[i] = p * 1.005
		h.Low[i] = p * 0.995
		h.Close[i] = p
		h.Volume[i] = 1000000
		if h.High[i] > high {
			high = h.High[i]
		}
		if h.Low[i] < low {
			low = h.Low[i]
		}
	}

	snap := model.MarketSnapshot{
		Symbol:      symbol,
		CompanyName: symbol,
		Sector:      "N/A",
		High52w:     high,
		Low52w:      low,
		History:     h,
		DataSource:  model.DataSourceSimulated,
	}
	if count > 0 {
		snap.CurrentPrice = h.Close[count-1]
		snap.PreviousClose = snap.CurrentPrice
		snap.Volume = h.Volume[count-1]
	}
	if count > 1 {
		snap.PreviousClose = h.Close[count-2]
		snap.ChangePercent = (snap.CurrentPrice - snap.PreviousClose) / snap.PreviousClose * 100
	}
	return snap
}
