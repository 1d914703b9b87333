package agent

import (
	"testing"

	"DCAPilot/internal/collector"
)

func risingSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestTechnicalAgent_ScoreSeries_Bounds(t *testing.T) {
	a := NewTechnicalAgent(nil, "BTC/USD", 400, 200)

	// A steady downtrend drives RSI oversold: DCA logic treats that as a
	// buying opportunity, so the blended score must be positive.
	daily := risingSeries(400, 90000, -100)
	weekly := risingSeries(200, 110000, -300)
	sig, err := a.ScoreSeries(daily, weekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Score < -1.0 || sig.Score > 1.0 {
		t.Fatalf("score out of bounds: %+.3f", sig.Score)
	}
	if sig.Confidence < 0.0 || sig.Confidence > 1.0 {
		t.Fatalf("confidence out of bounds: %.3f", sig.Confidence)
	}
	if sig.Source != "technical" {
		t.Errorf("unexpected source %q", sig.Source)
	}
}

func TestTechnicalAgent_ShortSeriesStillScores(t *testing.T) {
	a := NewTechnicalAgent(nil, "BTC/USD", 400, 200)
	sig, err := a.ScoreSeries([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("short series must not error: %v", err)
	}
	if sig.Score != 0.0 {
		t.Errorf("all-insufficient indicators should blend to 0, got %+.3f", sig.Score)
	}
}

func TestTechnicalAgent_FetchFailurePropagates(t *testing.T) {
	mock := collector.NewMockFetcher()
	mock.FailDaily = true
	a := NewTechnicalAgent(mock, "BTC/USD", 400, 200)
	if _, err := a.Analyse(); err == nil {
		t.Fatal("expected error when bar fetch fails")
	}
}

func TestTechnicalAgent_AnalyseWithMockData(t *testing.T) {
	mock := collector.NewMockFetcher()
	a := NewTechnicalAgent(mock, "BTC/USD", 400, 200)
	sig, err := a.Analyse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Score < -1.0 || sig.Score > 1.0 || sig.Confidence < 0.0 || sig.Confidence > 1.0 {
		t.Errorf("signal out of bounds: score=%+.3f conf=%.3f", sig.Score, sig.Confidence)
	}
}
