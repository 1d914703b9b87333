package agent

import (
	"fmt"
	"math"
	"strings"

	"DCAPilot/internal/model"
)

// GeopoliticalAgent assesses macro and geopolitical factors from news
// headlines via an external judgment service. Unlike the sentiment
// adapter the judged score is taken directly, not inverted.
type GeopoliticalAgent struct {
	fetcher      ItemFetcher
	judge        JudgmentProvider
	sampleTarget int
}

// NewGeopoliticalAgent builds the direct macro adapter.
func NewGeopoliticalAgent(fetcher ItemFetcher, judge JudgmentProvider, sampleTarget int) *GeopoliticalAgent {
	if sampleTarget <= 0 {
		sampleTarget = 15
	}
	return &GeopoliticalAgent{fetcher: fetcher, judge: judge, sampleTarget: sampleTarget}
}

func (a *GeopoliticalAgent) Name() string { return "geopolitical" }

// Analyse fetches headlines and scores them via the judgment service.
// Every failure path yields a neutral low-confidence signal.
func (a *GeopoliticalAgent) Analyse() (model.Signal, error) {
	if a.judge == nil {
		return fallbackSignal(a.Name(), "no judgment service configured"), nil
	}
	if a.fetcher == nil {
		return fallbackSignal(a.Name(), "no headline source configured"), nil
	}
	headlines, err := a.fetcher.FetchItems()
	if err != nil {
		return fallbackSignal(a.Name(), fmt.Sprintf("headline fetch failed: %v", err)), nil
	}
	if len(headlines) == 0 {
		return fallbackSignal(a.Name(), "no headlines returned"), nil
	}
	judgment, err := a.judge.Judge(headlines)
	if err != nil {
		return fallbackSignal(a.Name(), fmt.Sprintf("judgment failed: %v", err)), nil
	}
	return a.buildSignal(judgment, len(headlines)), nil
}

func (a *GeopoliticalAgent) buildSignal(j Judgment, headlineCount int) model.Signal {
	confidence := adapterConfidence(j.Confidence, headlineCount, a.sampleTarget, math.Abs(j.Score))

	var b strings.Builder
	fmt.Fprintf(&b, "Headlines analysed: %d\n", headlineCount)
	fmt.Fprintf(&b, "Geopolitical score: %+.2f\n", j.Score)
	fmt.Fprintf(&b, "Judge reasoning: %s\n", j.Reasoning)
	fmt.Fprintf(&b, "Confidence: %.2f", confidence)

	sig, _ := model.NewSignal(a.Name(), j.Score, confidence, b.String())
	return sig
}
