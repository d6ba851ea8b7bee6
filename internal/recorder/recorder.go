package recorder

import (
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/pass"
)

// DecisionEvent is one stored decision.
type DecisionEvent struct {
	Decision model.SymbolDecision
	PassID   string // empty for manual requests
}

// StatusEvent is a sampled agent status.
type StatusEvent struct {
	Status model.AgentStatus
}

// PassEvent is a finished market or trade pass.
type PassEvent struct {
	Report pass.Report
}

// Recorder persists session history for later analysis. It is never read back into the live state.
type Recorder interface {
	RecordDecision(evt *DecisionEvent) error
	RecordStatus(evt *StatusEvent) error
	RecordPass(evt *PassEvent) error
	Close() error
}
