package trader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ScalpDeck/internal/agent"
	"ScalpDeck/internal/cache"
	"ScalpDeck/internal/model"
	"ScalpDeck/internal/recorder"
)

// StatusRefresher is told to refresh after every stored decision.
type StatusRefresher interface {
	Refresh(ctx context.Context)
}

// Notifier receives actionable decisions.
type Notifier interface {
	NotifyDecision(ctx context.Context, d model.SymbolDecision) error
}

type passIDKey struct{}

// WithPassID marks requests made on behalf of a scheduled pass.
func WithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey{}, id)
}

func passID(ctx context.Context) string {
	id, _ := ctx.Value(passIDKey{}).(string)
	return id
}

// Trader requests decisions from the agent and stores them per symbol.
// Manual and scheduled requests share this path.
type Trader struct {
	API       agent.API
	Decisions *cache.Decisions
	Status    StatusRefresher
	Recorder  recorder.Recorder
	Notifier  Notifier

	logger *zap.Logger
	now    func() time.Time
}

// NewTrader creates a Trader. notifier may be nil.
func NewTrader(api agent.API, decisions *cache.Decisions, status StatusRefresher, rec recorder.Recorder, notifier Notifier, logger *zap.Logger) *Trader {
	return &Trader{
		API:       api,
		Decisions: decisions,
		Status:    status,
		Recorder:  rec,
		Notifier:  notifier,
		logger:    logger.With(zap.String("component", "trader")),
		now:       time.Now,
	}
}

// RequestDecision asks the agent to decide on symbol, stores the result and
// refreshes the agent status once. On failure nothing is stored and no
// refresh happens. A caller that goes away does not abort the request: the
// agent may already have traded, so the result is still stored.
func (t *Trader) RequestDecision(ctx context.Context, symbol string) (model.SymbolDecision, error) {
	ctx = context.WithoutCancel(ctx)
	symbol = model.NormalizeSymbol(symbol)
	logger := t.logger.With(zap.String("symbol", symbol))
	if id := passID(ctx); id != "" {
		logger = logger.With(zap.String("pass_id", id))
	}

	seq := t.Decisions.Begin(symbol)
	d, err := t.API.Decide(ctx, symbol)
	if err != nil {
		return model.SymbolDecision{}, fmt.Errorf("decide %s: %w", symbol, err)
	}

	sd := model.SymbolDecision{Symbol: symbol, DecidedAt: t.now(), Decision: d}
	if t.Decisions.Commit(symbol, seq, sd) {
		logger.Info("decision stored",
			zap.String("action", string(d.Action)),
			zap.Float64("confidence", d.Confidence))
	} else {
		logger.Debug("stale decision discarded", zap.Uint64("seq", seq))
	}

	// The decision may have executed a trade server-side.
	t.Status.Refresh(ctx)

	if err := t.Recorder.RecordDecision(&recorder.DecisionEvent{Decision: sd, PassID: passID(ctx)}); err != nil {
		logger.Error("record decision", zap.Error(err))
	}
	if t.Notifier != nil && d.Action != model.ActionHold {
		if err := t.Notifier.NotifyDecision(ctx, sd); err != nil {
			logger.Error("notify decision", zap.Error(err))
		}
	}
	return sd, nil
}
