package cache

import (
	"time"

	"ScalpDeck/internal/model"
)

const statusKey = "agent"

// StatusHolder keeps the single process-wide AgentStatus.
type StatusHolder struct {
	store *Store[model.AgentStatus]
}

func NewStatusHolder() *StatusHolder {
	return &StatusHolder{store: NewStore[model.AgentStatus]()}
}

// Begin stamps a status request.
func (h *StatusHolder) Begin() uint64 { return h.store.Begin(statusKey) }

// Commit replaces the status unless a later request already landed.
func (h *StatusHolder) Commit(seq uint64, st model.AgentStatus) bool {
	return h.store.Commit(statusKey, seq, st)
}

// Get returns the status and when it was stored; ok is false until the first successful fetch.
func (h *StatusHolder) Get() (st model.AgentStatus, updatedAt time.Time, ok bool) {
	e, ok := h.store.Entry(statusKey)
	return e.Value, e.UpdatedAt, ok
}

// OnCommit registers fn to run after each accepted status.
func (h *StatusHolder) OnCommit(fn func(model.AgentStatus)) {
	h.store.OnCommit(func(_ string, st model.AgentStatus) { fn(st) })
}

// Markets holds the latest snapshot per symbol.
type Markets = Store[model.MarketSnapshot]

// Decisions holds the latest decision per symbol.
type Decisions = Store[model.SymbolDecision]
