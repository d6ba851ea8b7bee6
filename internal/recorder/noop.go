package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ *DecisionEvent) error { return nil }
func (n *NoopRecorder) RecordStatus(_ *StatusEvent) error     { return nil }
func (n *NoopRecorder) RecordPass(_ *PassEvent) error         { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
