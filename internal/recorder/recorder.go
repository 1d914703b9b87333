package recorder

import "DCAPilot/internal/model"

// TradeSnapshot holds everything worth persisting about one execution
// attempt, whether it filled, simulated, or was blocked.
type TradeSnapshot struct {
	Decision model.Decision
	Result   model.OrderResult
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordDecision(d model.Decision) error
	RecordTrade(snap *TradeSnapshot) error
	Close() error
}
