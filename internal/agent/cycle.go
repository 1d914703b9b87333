package agent

import (
	"fmt"
	"math"
	"strings"
	"time"

	"DCAPilot/internal/calculator"
	"DCAPilot/internal/model"
)

// Historical Bitcoin halving dates.
var halvings = []time.Time{
	time.Date(2012, 11, 28, 0, 0, 0, 0, time.UTC),
	time.Date(2016, 7, 9, 0, 0, 0, 0, time.UTC),
	time.Date(2020, 5, 11, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 4, 19, 0, 0, 0, 0, time.UTC),
}

// Average peak-to-peak cycle length in days.
const avgCycleDays = 1458

// Cycle progress (percent) → score, linearly interpolated within bands:
// 0–30% bullish, 30–60% neutral-bullish, 60–85% cautious, 85–100% bearish.
var cycleBands = []calculator.Breakpoint{
	{X: 0, Y: 0.8},
	{X: 30, Y: 0.4},
	{X: 60, Y: 0.1},
	{X: 85, Y: -0.2},
	{X: 100, Y: -0.8},
}

// MVRV Z-Score → score for z >= 0. z < 0 is handled separately (+1.0).
var mvrvBands = []calculator.Breakpoint{
	{X: 0, Y: 0.6},
	{X: 2.0, Y: 0.0},
	{X: 3.5, Y: -0.5},
	{X: 7.0, Y: -1.0},
}

// Weighting: cycle position 55%, MVRV 45%.
const (
	cycleWeight = 0.55
	mvrvWeight  = 0.45
)

// CycleAgent evaluates Bitcoin halving-cycle position and the MVRV
// Z-Score valuation metric.
type CycleAgent struct {
	metrics OnChainProvider
}

// NewCycleAgent creates a cycle agent. metrics may be nil, in which case
// the MVRV sub-score is always "no data".
func NewCycleAgent(metrics OnChainProvider) *CycleAgent {
	return &CycleAgent{metrics: metrics}
}

func (a *CycleAgent) Name() string { return "cycle" }

// Analyse scores based on today's date.
func (a *CycleAgent) Analyse() (model.Signal, error) {
	return a.ScoreAt(time.Now().UTC()), nil
}

// ScoreAt scores at an arbitrary date (for tests or manual checks).
// The cycle agent never fails: a missing valuation metric only lowers
// confidence.
func (a *CycleAgent) ScoreAt(asOf time.Time) model.Signal {
	progress := cycleProgress(asOf)
	cycleScore, cycleDetail := scoreCyclePosition(progress)

	var (
		mvrvZ       float64
		mvrvPresent bool
		mvrvSrc     = "unavailable"
	)
	if a.metrics != nil {
		mvrvZ, mvrvSrc, mvrvPresent = a.metrics.MVRVZScore(asOf)
	}
	mvrvScore, mvrvDetail := scoreMVRV(mvrvZ, mvrvPresent)

	final := calculator.Clip(cycleWeight*cycleScore+mvrvWeight*mvrvScore, -1.0, 1.0)
	confidence := cycleConfidence(cycleScore, mvrvScore, mvrvPresent)

	var b strings.Builder
	fmt.Fprintf(&b, "Halving cycle (%.0f%%): %s\n", cycleWeight*100, cycleDetail)
	fmt.Fprintf(&b, "MVRV (%.0f%%, src=%s): %s\n", mvrvWeight*100, mvrvSrc, mvrvDetail)
	fmt.Fprintf(&b, "Combined: %+.3f  confidence=%.2f", final, confidence)

	sig, _ := model.NewSignal(a.Name(), final, confidence, b.String())
	return sig
}

// cycleProgress returns days since the most recent halving divided by the
// average cycle length, clamped to [0, 1].
func cycleProgress(asOf time.Time) float64 {
	last := halvings[len(halvings)-1]
	days := asOf.Sub(last).Hours() / 24.0
	return calculator.Clip(days/avgCycleDays, 0.0, 1.0)
}

func scoreCyclePosition(progress float64) (float64, string) {
	pct := progress * 100.0
	score := calculator.Clip(calculator.Interpolate(cycleBands, pct), -1.0, 1.0)

	var phase string
	switch {
	case pct <= 30:
		phase = "early"
	case pct <= 60:
		phase = "mid"
	case pct <= 85:
		phase = "late"
	default:
		phase = "final"
	}
	return score, fmt.Sprintf("Cycle %.1f%% (%s) → %+.2f", pct, phase, score)
}

func scoreMVRV(z float64, present bool) (float64, string) {
	if !present {
		return 0.0, "MVRV: no data → 0.00"
	}
	var score float64
	if z < 0 {
		score = 1.0 // deep value
	} else {
		score = calculator.Interpolate(mvrvBands, z)
	}
	score = calculator.Clip(score, -1.0, 1.0)
	return score, fmt.Sprintf("MVRV Z=%.2f → %+.2f", z, score)
}

// cycleConfidence blends data availability (40%), sub-score agreement
// (35%), and mean absolute magnitude (25%).
func cycleConfidence(cycleScore, mvrvScore float64, mvrvPresent bool) float64 {
	availability := 0.4
	if mvrvPresent {
		availability = 1.0
	}

	agreement := 0.5
	if cycleScore != 0 && mvrvScore != 0 {
		if (cycleScore > 0) == (mvrvScore > 0) {
			agreement = 1.0
		} else {
			agreement = 0.25
		}
	}

	magnitude := (math.Abs(cycleScore) + math.Abs(mvrvScore)) / 2.0

	return calculator.Clip(0.40*availability+0.35*agreement+0.25*magnitude, 0.0, 1.0)
}
