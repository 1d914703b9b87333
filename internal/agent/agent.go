package agent

import (
	"time"

	"DCAPilot/internal/model"
)

// Agent is the common scoring capability shared by every signal source.
// The orchestrator holds a list of this interface and never special-cases
// a variant.
type Agent interface {
	Name() string
	Analyse() (model.Signal, error)
}

// Judgment is the post-processed output of an external judgment service
// (an LLM summarizing a batch of textual items).
type Judgment struct {
	Score      float64 // -1 ~ +1
	Confidence float64 // 0 ~ 1
	Reasoning  string
}

// JudgmentProvider scores a batch of textual items.
type JudgmentProvider interface {
	Judge(items []string) (Judgment, error)
}

// ItemFetcher returns the textual items (posts, headlines) an adapter
// feeds into its judgment provider.
type ItemFetcher interface {
	FetchItems() ([]string, error)
}

// OnChainProvider supplies an optional valuation metric for a date.
// ok is false when no value is available from any source.
type OnChainProvider interface {
	MVRVZScore(asOf time.Time) (z float64, source string, ok bool)
}

// fallbackSignal returns the neutral low-confidence signal used whenever
// an adapter's collaborator or configuration is unusable.
func fallbackSignal(source, reason string) model.Signal {
	sig, _ := model.NewSignal(source, 0.0, 0.1, "Fallback: "+reason)
	return sig
}
