package status

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
)

// Health is the last liveness observation of the agent service.
type Health struct {
	Up        bool      `json:"up"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// Liveness probes the agent's root endpoint.
type Liveness struct {
	API agent.API

	logger *zap.Logger
	mu     sync.RWMutex
	last   Health
}

func NewLiveness(api agent.API, logger *zap.Logger) *Liveness {
	return &Liveness{API: api, logger: logger.With(zap.String("component", "liveness"))}
}

// Probe checks the service once and stores the outcome.
func (l *Liveness) Probe(ctx context.Context) Health {
	h := Health{CheckedAt: time.Now()}
	if err := l.API.Health(ctx); err != nil {
		h.Error = err.Error()
	} else {
		h.Up = true
	}

	l.mu.Lock()
	changed := l.last.CheckedAt.IsZero() || l.last.Up != h.Up
	l.last = h
	l.mu.Unlock()

	if changed {
		if h.Up {
			l.logger.Info("agent service reachable")
		} else {
			l.logger.Warn("agent service unreachable", zap.String("error", h.Error))
		}
	}
	return h
}

// Last returns the latest observation; CheckedAt is zero before the first probe.
func (l *Liveness) Last() Health {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}
