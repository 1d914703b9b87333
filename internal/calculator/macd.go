package calculator

// MACDResult holds the aligned tails of the MACD line, signal line, and
// histogram series. All three slices share the same length and end at the
// most recent close.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the MACD(fast, slow, signal) series over closes.
// Requires at least slow+signal closes.
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if len(closes) < slow+signal {
		return nil, ErrInsufficientData
	}
	emaFast, err := EMA(closes, fast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := EMA(closes, slow)
	if err != nil {
		return nil, err
	}

	// Both EMA series end at the last close; align on the shorter tail.
	n := len(emaSlow)
	macdLine := make([]float64, n)
	for i := 0; i < n; i++ {
		macdLine[i] = emaFast[len(emaFast)-n+i] - emaSlow[i]
	}

	signalLine, err := EMA(macdLine, signal)
	if err != nil {
		return nil, err
	}

	m := len(signalLine)
	res := &MACDResult{
		Line:      macdLine[n-m:],
		Signal:    signalLine,
		Histogram: make([]float64, m),
	}
	for i := 0; i < m; i++ {
		res.Histogram[i] = res.Line[i] - res.Signal[i]
	}
	return res, nil
}
