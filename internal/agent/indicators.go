package agent

import (
	"fmt"

	"DCAPilot/internal/calculator"
	"DCAPilot/internal/model"
)

// indicatorScorer turns a chronological close-price series into a bounded
// IndicatorScore. Scorers never fail: insufficient data yields score 0
// with an explanatory detail.
type indicatorScorer interface {
	score(closes []float64) model.IndicatorScore
}

// rsiScorer maps RSI(period) linearly into [-1, 1]:
// RSI 30 → +1 (oversold / buy), RSI 70 → -1 (overbought / sell).
type rsiScorer struct {
	period int
}

func newRSIScorer() *rsiScorer { return &rsiScorer{period: 14} }

func (s *rsiScorer) score(closes []float64) model.IndicatorScore {
	rsi, err := calculator.RSI(closes, s.period)
	if err != nil {
		return model.IndicatorScore{Name: "RSI", Score: 0, Detail: "RSI: insufficient data"}
	}
	v := calculator.Clip((50.0-rsi)/20.0, -1.0, 1.0)
	return model.IndicatorScore{
		Name:   "RSI",
		Score:  v,
		Detail: fmt.Sprintf("RSI(%d)=%.1f → %+.2f", s.period, rsi, v),
	}
}

// maCrossScorer scores the percentage gap between the fast and slow SMA,
// scaled so ±scalePct % → ±1.
type maCrossScorer struct {
	fast     int
	slow     int
	scalePct float64
}

func newMACrossScorer() *maCrossScorer {
	return &maCrossScorer{fast: 50, slow: 200, scalePct: 5.0}
}

func (s *maCrossScorer) score(closes []float64) model.IndicatorScore {
	if len(closes) < s.slow {
		return model.IndicatorScore{
			Name:   "MA_Cross",
			Score:  0,
			Detail: fmt.Sprintf("MA cross: need %d bars, have %d", s.slow, len(closes)),
		}
	}
	smaFast, errF := calculator.SMA(closes, s.fast)
	smaSlow, errS := calculator.SMA(closes, s.slow)
	if errF != nil || errS != nil || smaSlow == 0 {
		return model.IndicatorScore{Name: "MA_Cross", Score: 0, Detail: "MA cross: insufficient data"}
	}
	gapPct := (smaFast - smaSlow) / smaSlow * 100.0
	v := calculator.Clip(gapPct/s.scalePct, -1.0, 1.0)
	return model.IndicatorScore{
		Name:   "MA_Cross",
		Score:  v,
		Detail: fmt.Sprintf("SMA%d=%.0f SMA%d=%.0f gap=%+.2f%% → %+.2f", s.fast, smaFast, s.slow, smaSlow, gapPct, v),
	}
}

// macdScorer blends MACD-signal crossover direction (60%) with histogram
// momentum (40%).
type macdScorer struct {
	fast   int
	slow   int
	signal int
}

func newMACDScorer() *macdScorer { return &macdScorer{fast: 12, slow: 26, signal: 9} }

func (s *macdScorer) score(closes []float64) model.IndicatorScore {
	res, err := calculator.MACD(closes, s.fast, s.slow, s.signal)
	if err != nil || len(res.Line) == 0 {
		return model.IndicatorScore{Name: "MACD", Score: 0, Detail: "MACD: insufficient data"}
	}
	price := closes[len(closes)-1]
	if price == 0 {
		return model.IndicatorScore{Name: "MACD", Score: 0, Detail: "MACD: zero price"}
	}

	// Factor 1: crossover direction — normalise (MACD − signal) / price to ±1%.
	macdLine := res.Line[len(res.Line)-1]
	signalLine := res.Signal[len(res.Signal)-1]
	diffPct := (macdLine - signalLine) / price * 100.0
	crossover := calculator.Clip(diffPct/1.0, -1.0, 1.0)

	// Factor 2: histogram momentum from the last two histogram values.
	momentum := histogramMomentum(res.Histogram)

	v := calculator.Clip(0.6*crossover+0.4*momentum, -1.0, 1.0)
	return model.IndicatorScore{
		Name:   "MACD",
		Score:  v,
		Detail: fmt.Sprintf("MACD xover=%+.2f momentum=%+.2f → %+.2f", crossover, momentum, v),
	}
}

// histogramMomentum applies the fixed momentum decision table:
// rising-and-positive → 1.0, falling-but-positive → 0.3,
// falling-and-negative → -1.0, rising-but-negative → -0.3, else 0.
func histogramMomentum(hist []float64) float64 {
	if len(hist) < 2 {
		return 0.0
	}
	cur, prev := hist[len(hist)-1], hist[len(hist)-2]
	switch {
	case cur > 0 && cur > prev:
		return 1.0
	case cur > 0 && cur <= prev:
		return 0.3
	case cur < 0 && cur < prev:
		return -1.0
	case cur < 0 && cur >= prev:
		return -0.3
	default:
		return 0.0
	}
}
