package agent

import (
	"math"
	"testing"
)

func TestRSIScorer_Mapping(t *testing.T) {
	// A long falling series drives RSI to 0 → score clips at +1.
	falling := make([]float64, 50)
	for i := range falling {
		falling[i] = 200.0 - float64(i)
	}
	got := newRSIScorer().score(falling)
	if got.Score != 1.0 {
		t.Errorf("deep oversold should clip to +1, got %+.2f", got.Score)
	}

	// Flat series → RSI 50 → score 0.
	flat := make([]float64, 50)
	for i := range flat {
		flat[i] = 100.0
	}
	got = newRSIScorer().score(flat)
	if got.Score != 0.0 {
		t.Errorf("flat series should score 0, got %+.2f", got.Score)
	}
}

func TestRSIScorer_InsufficientData(t *testing.T) {
	got := newRSIScorer().score([]float64{1, 2, 3})
	if got.Score != 0 {
		t.Errorf("insufficient data should score 0, got %+.2f", got.Score)
	}
}

func TestMACrossScorer_GapScaling(t *testing.T) {
	// 250 bars at 100, so SMA50 == SMA200 == 100 → gap 0 → score 0.
	flat := make([]float64, 250)
	for i := range flat {
		flat[i] = 100.0
	}
	got := newMACrossScorer().score(flat)
	if got.Score != 0 {
		t.Errorf("equal SMAs should score 0, got %+.2f", got.Score)
	}

	got = newMACrossScorer().score(flat[:100])
	if got.Score != 0 {
		t.Errorf("short series should score 0, got %+.2f", got.Score)
	}
}

func TestHistogramMomentum_DecisionTable(t *testing.T) {
	tests := []struct {
		name string
		hist []float64
		want float64
	}{
		{"rising positive", []float64{0.1, 0.5}, 1.0},
		{"falling positive", []float64{0.5, 0.1}, 0.3},
		{"falling negative", []float64{-0.1, -0.5}, -1.0},
		{"rising negative", []float64{-0.5, -0.1}, -0.3},
		{"zero", []float64{0.5, 0.0}, 0.0},
		{"too short", []float64{0.5}, 0.0},
	}
	for _, tt := range tests {
		if got := histogramMomentum(tt.hist); got != tt.want {
			t.Errorf("%s: expected %+.1f, got %+.1f", tt.name, tt.want, got)
		}
	}
}

func TestMACDScorer_Bounds(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100.0 + 20.0*math.Sin(float64(i)/8.0)
	}
	got := newMACDScorer().score(closes)
	if got.Score < -1.0 || got.Score > 1.0 {
		t.Errorf("score out of bounds: %+.3f", got.Score)
	}
}
