package recorder

import "DCAPilot/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ model.Decision) error { return nil }
func (n *NoopRecorder) RecordTrade(_ *TradeSnapshot) error    { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
