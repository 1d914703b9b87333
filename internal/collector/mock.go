package collector

import (
	"errors"
	"time"

	"DCAPilot/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV

	// Failure injection for tests.
	FailDaily  bool
	FailWeekly bool
	FailPrice  bool
}

// NewMockFetcher creates a mock with a plausible BTC price.
func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Price: 65000}
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ string, days int) ([]model.OHLCV, error) {
	if m.FailDaily {
		return nil, errors.New("mock: daily bars unavailable")
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func (m *MockFetcher) FetchWeeklyBars(_ string, weeks int) ([]model.OHLCV, error) {
	if m.FailWeekly {
		return nil, errors.New("mock: weekly bars unavailable")
	}
	if m.WeeklyData != nil {
		return m.WeeklyData, nil
	}
	return generateMockBars(m.Price, weeks), nil
}

func (m *MockFetcher) FetchCurrentPrice(_ string) (float64, error) {
	if m.FailPrice {
		return 0, errors.New("mock: price unavailable")
	}
	return m.Price, nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 10,
		}
	}
	return bars
}
