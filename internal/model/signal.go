package model

import (
	"fmt"
	"time"
)

// Signal is the standardised output every agent must return.
type Signal struct {
	Source     string    // agent name that produced the signal
	Score      float64   // -1 (strong sell) ~ +1 (strong buy)
	Confidence float64   // 0 (no confidence) ~ 1 (full confidence)
	Reasoning  string    // human-readable explanation
	CreatedAt  time.Time // UTC creation time
}

// NewSignal builds a Signal, rejecting out-of-range score or confidence.
func NewSignal(source string, score, confidence float64, reasoning string) (Signal, error) {
	if score < -1.0 || score > 1.0 {
		return Signal{}, fmt.Errorf("signal score must be in [-1, 1], got %v", score)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return Signal{}, fmt.Errorf("signal confidence must be in [0, 1], got %v", confidence)
	}
	return Signal{
		Source:     source,
		Score:      score,
		Confidence: confidence,
		Reasoning:  reasoning,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// IndicatorScore is the result from a single indicator scorer.
type IndicatorScore struct {
	Name   string
	Score  float64 // -1 (bearish) ~ +1 (bullish)
	Detail string
}
