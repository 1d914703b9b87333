package agent

import (
	"fmt"
	"math"
	"strings"

	"DCAPilot/internal/calculator"
	"DCAPilot/internal/collector"
	"DCAPilot/internal/model"
)

// Per-indicator weights within a single timeframe.
var indicatorWeights = map[string]float64{
	"RSI":      0.30,
	"MA_Cross": 0.35,
	"MACD":     0.35,
}

// Timeframe blend: daily 60%, weekly 40%.
const (
	dailyWeight  = 0.60
	weeklyWeight = 0.40
)

// TechnicalAgent runs RSI, SMA crossover, and MACD scorers on daily and
// weekly close prices.
type TechnicalAgent struct {
	Symbol        string
	DailyCandles  int
	WeeklyCandles int

	fetcher collector.Fetcher
	scorers []indicatorScorer
}

// NewTechnicalAgent creates a technical agent with default indicator
// parameters.
func NewTechnicalAgent(fetcher collector.Fetcher, symbol string, dailyCandles, weeklyCandles int) *TechnicalAgent {
	if dailyCandles <= 0 {
		dailyCandles = 400
	}
	if weeklyCandles <= 0 {
		weeklyCandles = 200
	}
	return &TechnicalAgent{
		Symbol:        symbol,
		DailyCandles:  dailyCandles,
		WeeklyCandles: weeklyCandles,
		fetcher:       fetcher,
		scorers:       []indicatorScorer{newRSIScorer(), newMACrossScorer(), newMACDScorer()},
	}
}

func (a *TechnicalAgent) Name() string { return "technical" }

// Analyse fetches live bars and scores them. A fetch failure is returned
// to the caller so the orchestrator can exclude this source from the run.
func (a *TechnicalAgent) Analyse() (model.Signal, error) {
	dailyBars, err := a.fetcher.FetchDailyBars(a.Symbol, a.DailyCandles)
	if err != nil {
		return model.Signal{}, fmt.Errorf("fetch daily bars: %w", err)
	}
	weeklyBars, err := a.fetcher.FetchWeeklyBars(a.Symbol, a.WeeklyCandles)
	if err != nil {
		return model.Signal{}, fmt.Errorf("fetch weekly bars: %w", err)
	}
	return a.ScoreSeries(model.Closes(dailyBars), model.Closes(weeklyBars))
}

// ScoreSeries scores pre-fetched close series (also used by tests).
func (a *TechnicalAgent) ScoreSeries(daily, weekly []float64) (model.Signal, error) {
	dailyScore, dailyDetails := a.scoreTimeframe(daily)
	weeklyScore, weeklyDetails := a.scoreTimeframe(weekly)

	final := calculator.Clip(dailyWeight*dailyScore+weeklyWeight*weeklyScore, -1.0, 1.0)
	confidence := technicalConfidence(dailyDetails, weeklyDetails, dailyScore, weeklyScore)

	var b strings.Builder
	fmt.Fprintf(&b, "Daily (%.0f%%): score=%+.3f\n", dailyWeight*100, dailyScore)
	for _, d := range dailyDetails {
		fmt.Fprintf(&b, "  %s\n", d.Detail)
	}
	fmt.Fprintf(&b, "Weekly (%.0f%%): score=%+.3f\n", weeklyWeight*100, weeklyScore)
	for _, d := range weeklyDetails {
		fmt.Fprintf(&b, "  %s\n", d.Detail)
	}
	fmt.Fprintf(&b, "Combined: %+.3f  confidence=%.2f", final, confidence)

	return model.NewSignal(a.Name(), final, confidence, b.String())
}

// scoreTimeframe runs all indicator scorers on one close series and
// returns their weighted average.
func (a *TechnicalAgent) scoreTimeframe(closes []float64) (float64, []model.IndicatorScore) {
	details := make([]model.IndicatorScore, 0, len(a.scorers))
	weightedSum, totalWeight := 0.0, 0.0
	for _, sc := range a.scorers {
		result := sc.score(closes)
		details = append(details, result)
		w, ok := indicatorWeights[result.Name]
		if !ok {
			w = 1.0 / float64(len(a.scorers))
		}
		weightedSum += w * result.Score
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, details
	}
	return calculator.Clip(weightedSum/totalWeight, -1.0, 1.0), details
}

// technicalConfidence blends indicator agreement (45%), average magnitude
// (30%), and daily/weekly alignment (25%).
func technicalConfidence(daily, weekly []model.IndicatorScore, dailyScore, weeklyScore float64) float64 {
	all := make([]float64, 0, len(daily)+len(weekly))
	for _, d := range daily {
		all = append(all, d.Score)
	}
	for _, d := range weekly {
		all = append(all, d.Score)
	}
	if len(all) == 0 {
		return 0.0
	}

	pos, neg := 0, 0
	magSum := 0.0
	for _, s := range all {
		if s > 0 {
			pos++
		} else if s < 0 {
			neg++
		}
		magSum += math.Abs(s)
	}

	agreement := 0.5
	if pos+neg > 0 {
		dominant := pos
		if neg > dominant {
			dominant = neg
		}
		agreement = float64(dominant) / float64(pos+neg)
	}
	magnitude := magSum / float64(len(all))

	alignment := 0.5
	if dailyScore != 0 && weeklyScore != 0 {
		if (dailyScore > 0) == (weeklyScore > 0) {
			alignment = 1.0
		} else {
			alignment = 0.2
		}
	}

	return calculator.Clip(0.45*agreement+0.30*magnitude+0.25*alignment, 0.0, 1.0)
}
