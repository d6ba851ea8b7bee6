package deck

import (
	"errors"
	"time"

	"ScalpDeck/internal/model"
	"ScalpDeck/internal/status"
)

// Quote is a snapshot without its price history.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	ChangePercent float64 `json:"change_percent"`
	Volume        float64 `json:"volume"`
	High52w       float64 `json:"high_52w"`
	Low52w        float64 `json:"low_52w"`
	CompanyName   string  `json:"company_name"`
	Sector        string  `json:"sector"`
	Simulated     bool    `json:"simulated"`
	Bars          int     `json:"bars"`
}

func QuoteOf(s *model.MarketSnapshot) Quote {
	return Quote{
		Symbol:        s.Symbol,
		CurrentPrice:  s.CurrentPrice,
		PreviousClose: s.PreviousClose,
		ChangePercent: s.ChangePercent,
		Volume:        s.Volume,
		High52w:       s.High52w,
		Low52w:        s.Low52w,
		CompanyName:   s.CompanyName,
		Sector:        s.Sector,
		Simulated:     s.IsSimulated(),
		Bars:          s.History.Len(),
	}
}

// AutoTradeView describes the auto-trader.
type AutoTradeView struct {
	State    string `json:"state"`
	Interval string `json:"interval"`
	Period   string `json:"period"`
}

// View is everything presentation renders in one read.
type View struct {
	Watchlist   []string                        `json:"watchlist"`
	Quotes      map[string]Quote                `json:"quotes"`
	Decisions   map[string]model.SymbolDecision `json:"decisions"`
	Initialized bool                            `json:"initialized"`
	Status      *model.AgentStatus              `json:"status,omitempty"`
	StatusAt    *time.Time                      `json:"status_updated_at,omitempty"`
	AutoTrade   AutoTradeView                   `json:"autotrade"`
	Health      status.Health                   `json:"health"`
	Selected    string                          `json:"selected"`
}

func (d *Deck) autoTradeView() AutoTradeView {
	_, interval := d.Poller.Range()
	return AutoTradeView{
		State:    d.AutoTrader.State().String(),
		Interval: interval,
		Period:   d.AutoTrader.Period().String(),
	}
}

// View reads the current session state. Symbols removed from the watchlist
// keep their quotes and decisions.
func (d *Deck) View() View {
	v := View{
		Watchlist: d.Watchlist.Symbols(),
		Quotes:    make(map[string]Quote),
		Decisions: d.Decisions.Snapshot(),
		AutoTrade: d.autoTradeView(),
		Health:    d.Liveness.Last(),
		Selected:  d.Chart.Selected(),
	}
	for sym, snap := range d.Markets.Snapshot() {
		v.Quotes[sym] = QuoteOf(&snap)
	}
	st, err := d.Refresher.Current()
	if err == nil {
		_, at, _ := d.Status.Get()
		v.Initialized = true
		v.Status = &st
		v.StatusAt = &at
	} else if !errors.Is(err, status.ErrAgentNotInitialized) {
		d.logger.Sugar().Warnw("read status", "error", err)
	}
	return v
}
