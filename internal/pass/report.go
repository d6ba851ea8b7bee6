package pass

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report summarizes one pass over the watchlist.
type Report struct {
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Ok       []string      `json:"ok"`
	Failed   []string      `json:"failed"`
}

// Tracker collects per-symbol outcomes while a pass runs. Safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	report Report
}

// Track starts a report for a pass of the given kind.
func Track(kind string) *Tracker {
	return &Tracker{report: Report{
		ID:      uuid.NewString(),
		Kind:    kind,
		Started: time.Now(),
	}}
}

func (t *Tracker) ID() string { return t.report.ID }

func (t *Tracker) Ok(symbol string) {
	t.mu.Lock()
	t.report.Ok = append(t.report.Ok, symbol)
	t.mu.Unlock()
}

func (t *Tracker) Fail(symbol string) {
	t.mu.Lock()
	t.report.Failed = append(t.report.Failed, symbol)
	t.mu.Unlock()
}

// Finish stamps the duration and returns the report.
func (t *Tracker) Finish() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Duration = time.Since(t.report.Started)
	return t.report
}
