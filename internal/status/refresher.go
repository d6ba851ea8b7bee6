// Package status keeps the agent's portfolio status and liveness current.
package status

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/recorder"
)

// ErrAgentNotInitialized means no status has been fetched yet in this session.
var ErrAgentNotInitialized = errors.New("agent not initialized")

// Refresher fetches the agent status and replaces the held instance.
type Refresher struct {
	API      agent.API
	Holder   *cache.StatusHolder
	Recorder recorder.Recorder

	logger      *zap.Logger
	recordEvery time.Duration

	mu           sync.Mutex
	lastRecorded time.Time
}

// NewRefresher creates a Refresher journaling at most one status per recordEvery.
// A zero recordEvery journals every successful refresh.
func NewRefresher(api agent.API, holder *cache.StatusHolder, rec recorder.Recorder, recordEvery time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{
		API:         api,
		Holder:      holder,
		Recorder:    rec,
		recordEvery: recordEvery,
		logger:      logger.With(zap.String("component", "status-refresher")),
	}
}

// Refresh fetches the status once. A failure keeps the previous status.
func (r *Refresher) Refresh(ctx context.Context) {
	seq := r.Holder.Begin()
	st, err := r.API.Status(ctx)
	if err != nil {
		r.logger.Warn("status fetch failed", zap.Error(err))
		return
	}
	if !r.Holder.Commit(seq, st) {
		r.logger.Debug("stale status discarded", zap.Uint64("seq", seq))
		return
	}
	r.maybeRecord(st)
}

func (r *Refresher) maybeRecord(st model.AgentStatus) {
	r.mu.Lock()
	now := time.Now()
	due := r.lastRecorded.IsZero() || now.Sub(r.lastRecorded) >= r.recordEvery
	if due {
		r.lastRecorded = now
	}
	r.mu.Unlock()
	if !due {
		return
	}
	if err := r.Recorder.RecordStatus(&recorder.StatusEvent{Status: st}); err != nil {
		r.logger.Error("record status", zap.Error(err))
	}
}

// Current returns the held status or ErrAgentNotInitialized.
func (r *Refresher) Current() (model.AgentStatus, error) {
	st, _, ok := r.Holder.Get()
	if !ok {
		return model.AgentStatus{}, ErrAgentNotInitialized
	}
	return st, nil
}
