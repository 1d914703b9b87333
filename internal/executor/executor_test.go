package executor

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"
)

type stubExchange struct {
	price     float64
	priceErr  error
	orderErr  error
	fillPrice float64
	orderID   string

	placedQty      float64
	placedLeverage int
	placeCalls     int
}

func (s *stubExchange) FetchCurrentPrice(string) (float64, error) {
	return s.price, s.priceErr
}

func (s *stubExchange) PlaceMarketBuy(_ string, qty float64, leverage int) (float64, string, error) {
	s.placeCalls++
	s.placedQty = qty
	s.placedLeverage = leverage
	if s.orderErr != nil {
		return 0, "", s.orderErr
	}
	return s.fillPrice, s.orderID, nil
}

func newTestExecutor(t *testing.T, dryRun, killSwitch bool, maxOrder, maxDaily float64, ex *stubExchange) (*Executor, *Ledger) {
	t.Helper()
	ledger := NewLedger(filepath.Join(t.TempDir(), "ledger.json"))
	return New("BTC/USD", dryRun, killSwitch, 1, maxOrder, maxDaily, ex, ex, ledger), ledger
}

func today() string { return time.Now().Format("2006-01-02") }

func TestExecute_KillSwitchBlocksEverything(t *testing.T) {
	ex := &stubExchange{price: 50000}
	e, ledger := newTestExecutor(t, true, true, 500, 1000, ex)

	result, err := e.Execute(100)
	if err != nil {
		t.Fatalf("blocked order is not an error: %v", err)
	}
	if result.Executed || result.Simulated {
		t.Error("kill switch must block execution")
	}
	if result.Reason != "kill switch active" {
		t.Errorf("unexpected reason %q", result.Reason)
	}
	if ledger.SpentOn(today()) != 0 {
		t.Error("blocked order must not touch the ledger")
	}
}

func TestExecute_PerOrderClamp(t *testing.T) {
	ex := &stubExchange{price: 50000}
	e, _ := newTestExecutor(t, true, false, 300, 1000, ex)

	result, err := e.Execute(900)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AmountUSD != 300 {
		t.Errorf("expected clamp to 300, got %.2f", result.AmountUSD)
	}
	if math.Abs(result.AmountBTC-300.0/50000.0) > 1e-12 {
		t.Errorf("BTC amount not derived from clamped USD: %.8f", result.AmountBTC)
	}
}

func TestExecute_DailyBudgetSequence(t *testing.T) {
	ex := &stubExchange{price: 50000}
	e, ledger := newTestExecutor(t, true, false, 500, 600, ex)

	// First order: full 500 goes through.
	r1, err := e.Execute(500)
	if err != nil {
		t.Fatalf("first order: %v", err)
	}
	if !r1.Simulated || r1.AmountUSD != 500 {
		t.Fatalf("first order should simulate 500, got %+v", r1)
	}

	// Second order: only 100 of budget left, clamps down.
	r2, err := e.Execute(500)
	if err != nil {
		t.Fatalf("second order: %v", err)
	}
	if r2.AmountUSD != 100 {
		t.Errorf("expected clamp to remaining 100, got %.2f", r2.AmountUSD)
	}

	// Third order: budget exhausted, blocked.
	r3, err := e.Execute(500)
	if err != nil {
		t.Fatalf("third order: %v", err)
	}
	if r3.Simulated || r3.Executed {
		t.Error("exhausted budget must block")
	}
	if r3.Reason != "daily limit reached" {
		t.Errorf("unexpected reason %q", r3.Reason)
	}
	if got := ledger.SpentOn(today()); got != 600 {
		t.Errorf("ledger should hold 600, got %.2f", got)
	}
}

func TestExecute_DryRunRecordsSpend(t *testing.T) {
	ex := &stubExchange{price: 40000}
	e, ledger := newTestExecutor(t, true, false, 500, 1000, ex)

	result, err := e.Execute(200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Simulated || result.Executed {
		t.Fatalf("expected simulated result, got %+v", result)
	}
	if result.OrderID == "" {
		t.Error("dry run should still assign an order id")
	}
	if ex.placeCalls != 0 {
		t.Error("dry run must not place a live order")
	}
	if got := ledger.SpentOn(today()); got != 200 {
		t.Errorf("dry-run spend must count against the daily cap, got %.2f", got)
	}
}

func TestExecute_PriceFailure(t *testing.T) {
	ex := &stubExchange{priceErr: errors.New("ticker down")}
	e, ledger := newTestExecutor(t, true, false, 500, 1000, ex)

	result, err := e.Execute(200)
	if err == nil {
		t.Fatal("expected error on price failure")
	}
	if result.Executed || result.Simulated {
		t.Error("price failure must not execute")
	}
	if ledger.SpentOn(today()) != 0 {
		t.Error("price failure must not touch the ledger")
	}
}

func TestExecute_ZeroPriceQuoteBlocks(t *testing.T) {
	ex := &stubExchange{price: 0} // broken quote source, no error
	e, ledger := newTestExecutor(t, true, false, 500, 1000, ex)

	result, err := e.Execute(200)
	if err == nil {
		t.Fatal("expected error on non-positive quote")
	}
	if result.Executed || result.Simulated {
		t.Error("non-positive quote must not execute")
	}
	if result.Price != 0 || result.AmountBTC != 0 {
		t.Errorf("blocked result must carry no fill quantities, got price=%v btc=%v", result.Price, result.AmountBTC)
	}
	if ledger.SpentOn(today()) != 0 {
		t.Error("non-positive quote must not touch the ledger")
	}
}

func TestExecute_LiveOrder(t *testing.T) {
	ex := &stubExchange{price: 50000, fillPrice: 50100, orderID: "OABC-123"}
	ledger := NewLedger(filepath.Join(t.TempDir(), "ledger.json"))
	e := New("BTC/USD", false, false, 3, 500, 1000, ex, ex, ledger)

	result, err := e.Execute(250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Executed || result.Simulated {
		t.Fatalf("expected executed result, got %+v", result)
	}
	if result.OrderID != "OABC-123" {
		t.Errorf("unexpected order id %q", result.OrderID)
	}
	if result.Price != 50100 {
		t.Errorf("fill price should override the quote, got %.2f", result.Price)
	}
	if ex.placedLeverage != 3 {
		t.Errorf("expected leverage 3, got %d", ex.placedLeverage)
	}
	if got := ledger.SpentOn(today()); got != 250 {
		t.Errorf("live fill must record spend, got %.2f", got)
	}
}

func TestExecute_LiveOrderFailureDoesNotSpend(t *testing.T) {
	ex := &stubExchange{price: 50000, orderErr: errors.New("insufficient funds")}
	ledger := NewLedger(filepath.Join(t.TempDir(), "ledger.json"))
	e := New("BTC/USD", false, false, 1, 500, 1000, ex, ex, ledger)

	result, err := e.Execute(250)
	if err == nil {
		t.Fatal("expected error on order failure")
	}
	if result.Executed {
		t.Error("failed order must not report executed")
	}
	if ledger.SpentOn(today()) != 0 {
		t.Error("failed order must not record spend")
	}
}
