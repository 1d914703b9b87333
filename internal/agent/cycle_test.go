package agent

import (
	"math"
	"testing"
	"time"
)

type stubMetrics struct {
	z       float64
	source  string
	present bool
}

func (s stubMetrics) MVRVZScore(time.Time) (float64, string, bool) {
	return s.z, s.source, s.present
}

func TestCycleProgress(t *testing.T) {
	lastHalving := halvings[len(halvings)-1]

	if got := cycleProgress(lastHalving); got != 0.0 {
		t.Errorf("progress at halving date: expected 0, got %.3f", got)
	}
	half := lastHalving.AddDate(0, 0, avgCycleDays/2)
	if got := cycleProgress(half); math.Abs(got-0.5) > 0.001 {
		t.Errorf("progress at half cycle: expected ~0.5, got %.3f", got)
	}
	// Past a full cycle clamps to 1.
	if got := cycleProgress(lastHalving.AddDate(0, 0, avgCycleDays*2)); got != 1.0 {
		t.Errorf("progress past full cycle: expected 1, got %.3f", got)
	}
}

func TestScoreCyclePosition_Bands(t *testing.T) {
	tests := []struct {
		progress float64
		want     float64
		phase    string
	}{
		{0.0, 0.8, "early"},
		{0.30, 0.4, "early"},
		{0.60, 0.1, "mid"},
		{0.85, -0.2, "late"},
		{1.0, -0.8, "final"},
	}
	for _, tt := range tests {
		score, detail := scoreCyclePosition(tt.progress)
		if math.Abs(score-tt.want) > 1e-9 {
			t.Errorf("progress %.2f: expected %.2f, got %.4f (%s)", tt.progress, tt.want, score, detail)
		}
	}
}

func TestScoreMVRV(t *testing.T) {
	tests := []struct {
		name    string
		z       float64
		present bool
		want    float64
	}{
		{"no data", 0, false, 0.0},
		{"deep value below zero", -0.5, true, 1.0},
		{"fair value at zero", 0.0, true, 0.6},
		{"neutral at 2", 2.0, true, 0.0},
		{"overheated at 3.5", 3.5, true, -0.5},
		{"euphoric at 7", 7.0, true, -1.0},
		{"beyond table clamps", 10.0, true, -1.0},
	}
	for _, tt := range tests {
		score, _ := scoreMVRV(tt.z, tt.present)
		if math.Abs(score-tt.want) > 1e-9 {
			t.Errorf("%s: expected %.2f, got %.4f", tt.name, tt.want, score)
		}
	}
}

func TestCycleConfidence(t *testing.T) {
	// Agreeing sub-scores with data beat disagreeing ones without.
	high := cycleConfidence(0.5, 0.5, true)
	low := cycleConfidence(0.5, -0.5, false)
	if high <= low {
		t.Errorf("expected agreement+data confidence %.2f > %.2f", high, low)
	}
	if high < 0 || high > 1 || low < 0 || low > 1 {
		t.Errorf("confidence out of bounds: %.2f, %.2f", high, low)
	}
}

func TestCycleAgent_ScoreAt(t *testing.T) {
	a := NewCycleAgent(stubMetrics{z: -1.0, source: "lookup", present: true})

	// Early cycle with deep-value MVRV: strongly positive signal.
	asOf := halvings[len(halvings)-1].AddDate(0, 0, 30)
	sig := a.ScoreAt(asOf)
	if sig.Score <= 0.5 {
		t.Errorf("early cycle + deep value should be strongly positive, got %+.3f", sig.Score)
	}
	if sig.Source != "cycle" {
		t.Errorf("unexpected source %q", sig.Source)
	}

	// Nil metrics provider never fails, just lowers confidence.
	bare := NewCycleAgent(nil)
	sigBare, err := bare.Analyse()
	if err != nil {
		t.Fatalf("cycle agent must not fail: %v", err)
	}
	if sigBare.Confidence >= sig.Confidence {
		t.Errorf("missing MVRV should lower confidence: %.2f >= %.2f", sigBare.Confidence, sig.Confidence)
	}
}
