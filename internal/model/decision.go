package model

import "time"

// Action is the discrete DCA action tier decided by the orchestrator.
type Action string

const (
	ActionStrongBuy Action = "strong_buy"
	ActionBuy       Action = "buy"
	ActionNormal    Action = "normal"
	ActionReduce    Action = "reduce"
	ActionMinimal   Action = "minimal"
)

// Decision is the full orchestrator output.
type Decision struct {
	Action     Action
	Multiplier float64  // scaling factor for the base DCA amount, > 0
	Composite  float64  // confidence-weighted composite score in [-1, 1]
	Signals    []Signal // individual agent signals, in gathering order
	Reasoning  string   // human-readable decision log
	CreatedAt  time.Time
}
