package agent

import (
	"context"
	"fmt"

	"ScalpDeck/internal/model"
)

// API is the request/response surface of the remote trading agent.
type API interface {
	Initialize(ctx context.Context, req InitRequest) (InitAck, error)
	Status(ctx context.Context) (model.AgentStatus, error)
	Decide(ctx context.Context, symbol string) (model.Decision, error)
	MarketData(ctx context.Context, symbol, period, interval string) (model.MarketSnapshot, error)
	History(ctx context.Context) (model.TradeHistory, error)
	Health(ctx context.Context) error
	Name() string
}

// InitRequest creates (or replaces) the agent on the server.
type InitRequest struct {
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initial_balance"`
	APIKey         string  `json:"api_key"`
}

// InitAck is the server's acknowledgement of an initialize call.
type InitAck struct {
	Message        string  `json:"message"`
	InitialBalance float64 `json:"initial_balance"`
	HasAPIKey      bool    `json:"has_api_key"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.Endpoint, e.Code, e.Body)
}
