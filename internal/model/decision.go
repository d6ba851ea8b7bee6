package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Action is the agent's recommended move for a symbol.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// UnmarshalJSON rejects actions outside BUY/SELL/HOLD.
func (a *Action) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if !Action(s).Valid() {
		return fmt.Errorf("unknown action %q", s)
	}
	*a = Action(s)
	return nil
}

// Decision is the agent's recommendation for one symbol at one point in time.
type Decision struct {
	Action            Action  `json:"action"`
	Confidence        float64 `json:"confidence"`
	Reasoning         string  `json:"reasoning"`
	SuggestedQuantity *int    `json:"suggested_quantity,omitempty"`
	RawResponse       string  `json:"ai_full_response,omitempty"`
}

// Validate rejects decisions with an unknown action or a confidence outside [0, 1].
func (d Decision) Validate() error {
	if !d.Action.Valid() {
		return fmt.Errorf("unknown action %q", d.Action)
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0, 1]", d.Confidence)
	}
	return nil
}

// SymbolDecision is a Decision tagged with the symbol it was computed for.
type SymbolDecision struct {
	Symbol    string    `json:"symbol"`
	DecidedAt time.Time `json:"decided_at"`
	Decision
}
