package calculator

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRSI_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100.0
	}
	rsi, err := RSI(closes, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 50.0 {
		t.Errorf("flat series should be neutral, got RSI=%.2f", rsi)
	}
}

func TestRSI_MonotonicSeries(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100.0 + float64(i)
		down[i] = 200.0 - float64(i)
	}

	rsiUp, err := RSI(up, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsiUp != 100.0 {
		t.Errorf("all-gains series: expected RSI=100, got %.2f", rsiUp)
	}

	rsiDown, err := RSI(down, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsiDown != 0.0 {
		t.Errorf("all-losses series: expected RSI=0, got %.2f", rsiDown)
	}
}

func TestRSI_InsufficientData(t *testing.T) {
	if _, err := RSI([]float64{1, 2, 3}, 14); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	// Exactly period closes is still one short of period+1.
	if _, err := RSI(make([]float64, 14), 14); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData at period closes, got %v", err)
	}
}

func TestSMA_KnownValues(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	got, err := SMA(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 4.0 {
		t.Errorf("SMA of last 3 of 1..5: expected 4, got %.4f", got)
	}
	if _, err := SMA(closes, 6); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestEMA_SeededWithSMA(t *testing.T) {
	closes := []float64{2, 4, 6, 8}
	out, err := EMA(closes, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 values, got %d", len(out))
	}
	// Seed = SMA(2,4,6) = 4; k = 0.5; next = (8-4)*0.5 + 4 = 6.
	if out[0] != 4.0 || out[1] != 6.0 {
		t.Errorf("expected [4 6], got %v", out)
	}
}

func TestMACD_AlignedTails(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100.0 + float64(i)*0.5
	}
	res, err := MACD(closes, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Line) != len(res.Signal) || len(res.Line) != len(res.Histogram) {
		t.Fatalf("misaligned series: line=%d signal=%d hist=%d",
			len(res.Line), len(res.Signal), len(res.Histogram))
	}
	for i := range res.Histogram {
		if !almostEqual(res.Histogram[i], res.Line[i]-res.Signal[i], 1e-9) {
			t.Fatalf("histogram[%d] != line-signal", i)
		}
	}
}

func TestMACD_InsufficientData(t *testing.T) {
	if _, err := MACD(make([]float64, 30), 12, 26, 9); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestInterpolate_Bands(t *testing.T) {
	table := []Breakpoint{
		{X: 0, Y: 0.8},
		{X: 30, Y: 0.4},
		{X: 60, Y: 0.1},
		{X: 85, Y: -0.2},
		{X: 100, Y: -0.8},
	}
	tests := []struct {
		x, want float64
	}{
		{-10, 0.8},  // clamps below
		{0, 0.8},    // left endpoint
		{15, 0.6},   // midpoint of first band
		{30, 0.4},   // interior anchor
		{100, -0.8}, // right endpoint
		{150, -0.8}, // clamps above
	}
	for _, tt := range tests {
		if got := Interpolate(table, tt.x); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("Interpolate(%.0f): expected %.2f, got %.4f", tt.x, tt.want, got)
		}
	}
}

func TestClip(t *testing.T) {
	if got := Clip(2.0, -1, 1); got != 1.0 {
		t.Errorf("expected 1, got %v", got)
	}
	if got := Clip(-2.0, -1, 1); got != -1.0 {
		t.Errorf("expected -1, got %v", got)
	}
	if got := Clip(0.5, -1, 1); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}
