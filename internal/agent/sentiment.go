package agent

import (
	"fmt"
	"math"
	"strings"

	"DCAPilot/internal/calculator"
	"DCAPilot/internal/model"
)

// SentimentAgent gauges market sentiment from social posts via an external
// judgment service, then inverts it: sentiment extremes predict reversals,
// so extreme fear becomes a buy signal.
type SentimentAgent struct {
	fetcher ItemFetcher
	judge   JudgmentProvider

	// sampleTarget is the post count at which the sample-size confidence
	// factor saturates at 1.0.
	sampleTarget int
}

// NewSentimentAgent builds the contrarian sentiment adapter. Either
// collaborator may be nil when unconfigured; Analyse then falls back to a
// neutral signal.
func NewSentimentAgent(fetcher ItemFetcher, judge JudgmentProvider, sampleTarget int) *SentimentAgent {
	if sampleTarget <= 0 {
		sampleTarget = 25
	}
	return &SentimentAgent{fetcher: fetcher, judge: judge, sampleTarget: sampleTarget}
}

func (a *SentimentAgent) Name() string { return "sentiment" }

// Analyse fetches posts, scores sentiment via the judgment service, and
// applies the contrarian transform. Collaborator failures are recovered
// into a neutral low-confidence signal, never propagated.
func (a *SentimentAgent) Analyse() (model.Signal, error) {
	if a.judge == nil {
		return fallbackSignal(a.Name(), "no judgment service configured"), nil
	}
	if a.fetcher == nil {
		return fallbackSignal(a.Name(), "no post source configured"), nil
	}
	posts, err := a.fetcher.FetchItems()
	if err != nil {
		return fallbackSignal(a.Name(), fmt.Sprintf("post fetch failed: %v", err)), nil
	}
	if len(posts) == 0 {
		return fallbackSignal(a.Name(), "no posts returned"), nil
	}
	judgment, err := a.judge.Judge(posts)
	if err != nil {
		return fallbackSignal(a.Name(), fmt.Sprintf("judgment failed: %v", err)), nil
	}
	return a.buildSignal(judgment, len(posts)), nil
}

func (a *SentimentAgent) buildSignal(j Judgment, postCount int) model.Signal {
	contrarian := contrarianScore(j.Score)
	confidence := adapterConfidence(j.Confidence, postCount, a.sampleTarget, math.Abs(j.Score))

	var b strings.Builder
	fmt.Fprintf(&b, "Posts analysed: %d\n", postCount)
	fmt.Fprintf(&b, "Raw sentiment: %+.2f (%s)\n", j.Score, sentimentLabel(j.Score))
	fmt.Fprintf(&b, "Judge reasoning: %s\n", j.Reasoning)
	fmt.Fprintf(&b, "Contrarian signal: %+.2f\n", contrarian)
	fmt.Fprintf(&b, "Confidence: %.2f", confidence)

	sig, _ := model.NewSignal(a.Name(), contrarian, confidence, b.String())
	return sig
}

// contrarianScore inverts raw sentiment: extreme fear (-1) → +0.8 buy,
// extreme greed (+1) → -0.8 sell.
func contrarianScore(sentiment float64) float64 {
	return calculator.Clip(-0.8*sentiment, -1.0, 1.0)
}

// adapterConfidence blends the judge's self-rating (50%), sample size
// (30%, saturating at target), and signal strength (20%).
func adapterConfidence(judgeConf float64, sampleCount, sampleTarget int, strength float64) float64 {
	sample := math.Min(float64(sampleCount)/float64(sampleTarget), 1.0)
	return calculator.Clip(0.50*judgeConf+0.30*sample+0.20*strength, 0.0, 1.0)
}

func sentimentLabel(s float64) string {
	switch {
	case s <= -0.6:
		return "extreme fear"
	case s <= -0.3:
		return "fear"
	case s <= 0.3:
		return "neutral"
	case s <= 0.6:
		return "greed"
	default:
		return "extreme greed"
	}
}
