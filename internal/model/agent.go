package model

import "github.com/shopspring/decimal"

// Holding is one open position, valued server-side.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avg_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	CurrentValue decimal.Decimal `json:"current_value"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPct       decimal.Decimal `json:"pnl_pct"`
}

// AgentStatus is the aggregate account view of the remote agent.
type AgentStatus struct {
	Name                string          `json:"name"`
	Initialized         bool            `json:"initialized"`
	InitialBalance      decimal.Decimal `json:"initial_balance"`
	CurrentBalance      decimal.Decimal `json:"current_balance"`
	Holdings            []Holding       `json:"holdings"`
	HoldingsValue       decimal.Decimal `json:"holdings_value"`
	TotalPortfolioValue decimal.Decimal `json:"total_portfolio_value"`
	TotalReturn         decimal.Decimal `json:"total_return"`
	ReturnPercentage    decimal.Decimal `json:"return_percentage"`
	TotalTrades         int             `json:"total_trades"`
}

// IsProfit reports whether the portfolio is at or above its starting balance.
func (s *AgentStatus) IsProfit() bool {
	return !s.TotalReturn.IsNegative()
}

// Trade is one executed order from the agent's journal.
type Trade struct {
	Timestamp    string          `json:"timestamp"`
	Action       Action          `json:"action"`
	Symbol       string          `json:"symbol"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Reasoning    string          `json:"reasoning"`
}

// TradeHistory is the response of the agent's history endpoint.
type TradeHistory struct {
	Trades      []Trade `json:"trades"`
	TotalTrades int     `json:"total_trades"`
}

// TradeSummary counts trades by side.
type TradeSummary struct {
	Total int `json:"total"`
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Summary counts the buys and sells in the history.
func (h *TradeHistory) Summary() TradeSummary {
	s := TradeSummary{Total: len(h.Trades)}
	for _, t := range h.Trades {
		switch t.Action {
		case ActionBuy:
			s.Buys++
		case ActionSell:
			s.Sells++
		}
	}
	return s
}
