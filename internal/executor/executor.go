package executor

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"DCAPilot/internal/model"
)

// QuoteProvider supplies the current reference price for a symbol.
type QuoteProvider interface {
	FetchCurrentPrice(symbol string) (float64, error)
}

// OrderPlacer submits a live market buy and reports the fill.
type OrderPlacer interface {
	PlaceMarketBuy(symbol string, qty float64, leverage int) (fillPrice float64, orderID string, err error)
}

// Executor turns a decided USD amount into an order, enforcing the risk
// bounds in a fixed sequence: kill switch, per-order cap, daily cap,
// then price discovery and sizing.
type Executor struct {
	Symbol      string
	DryRun      bool
	KillSwitch  bool
	Leverage    int
	MaxOrderUSD float64
	MaxDailyUSD float64

	quotes QuoteProvider
	placer OrderPlacer
	ledger *Ledger
}

// New builds an executor. placer may equal quotes when one client serves
// both roles.
func New(symbol string, dryRun, killSwitch bool, leverage int, maxOrderUSD, maxDailyUSD float64, quotes QuoteProvider, placer OrderPlacer, ledger *Ledger) *Executor {
	if leverage < 1 {
		leverage = 1
	}
	return &Executor{
		Symbol:      symbol,
		DryRun:      dryRun,
		KillSwitch:  killSwitch,
		Leverage:    leverage,
		MaxOrderUSD: maxOrderUSD,
		MaxDailyUSD: maxDailyUSD,
		quotes:      quotes,
		placer:      placer,
		ledger:      ledger,
	}
}

// DailySpend returns today's committed USD total.
func (e *Executor) DailySpend() float64 {
	return e.ledger.SpentOn(time.Now().Format("2006-01-02"))
}

// Execute attempts to buy amountUSD of the configured symbol. The result
// always describes what happened; err is reserved for infrastructure
// failures (price fetch, order placement, ledger write).
func (e *Executor) Execute(amountUSD float64) (model.OrderResult, error) {
	result := model.OrderResult{
		Symbol:   e.Symbol,
		Side:     "buy",
		Leverage: e.Leverage,
	}

	if e.KillSwitch {
		result.Reason = "kill switch active"
		log.Printf("[WARN] execution blocked: kill switch active")
		return result, nil
	}
	if amountUSD <= 0 {
		result.Reason = "non-positive amount"
		return result, nil
	}

	// Per-order cap first, then the remaining daily budget.
	if e.MaxOrderUSD > 0 && amountUSD > e.MaxOrderUSD {
		log.Printf("[INFO] clamping order %.2f to per-order cap %.2f", amountUSD, e.MaxOrderUSD)
		amountUSD = e.MaxOrderUSD
	}

	today := time.Now().Format("2006-01-02")
	if e.MaxDailyUSD > 0 {
		spent := e.ledger.SpentOn(today)
		remaining := e.MaxDailyUSD - spent
		if remaining <= 0 {
			result.Reason = "daily limit reached"
			log.Printf("[WARN] execution blocked: daily limit reached (spent %.2f of %.2f)", spent, e.MaxDailyUSD)
			return result, nil
		}
		if amountUSD > remaining {
			log.Printf("[INFO] clamping order %.2f to remaining daily budget %.2f", amountUSD, remaining)
			amountUSD = remaining
		}
	}
	result.AmountUSD = amountUSD

	price, err := e.quotes.FetchCurrentPrice(e.Symbol)
	if err != nil {
		result.Reason = fmt.Sprintf("price fetch failed: %v", err)
		return result, fmt.Errorf("fetch price: %w", err)
	}
	if price <= 0 {
		result.Reason = fmt.Sprintf("invalid price quote: %v", price)
		return result, fmt.Errorf("fetch price: non-positive quote %v", price)
	}
	result.Price = price
	result.AmountBTC = amountUSD / price

	if e.DryRun {
		result.Simulated = true
		result.OrderID = "dry-run-" + uuid.NewString()
		result.Reason = "dry run"
		if err := e.ledger.Record(today, amountUSD); err != nil {
			return result, fmt.Errorf("record spend: %w", err)
		}
		log.Printf("[INFO] dry run: would buy %.8f BTC (%.2f USD @ %.2f)", result.AmountBTC, amountUSD, price)
		return result, nil
	}

	fillPrice, orderID, err := e.placer.PlaceMarketBuy(e.Symbol, result.AmountBTC, e.Leverage)
	if err != nil {
		result.Reason = fmt.Sprintf("order failed: %v", err)
		return result, fmt.Errorf("place order: %w", err)
	}
	result.Executed = true
	result.OrderID = orderID
	if fillPrice > 0 {
		result.Price = fillPrice
	}
	result.Reason = "order filled"
	if err := e.ledger.Record(today, amountUSD); err != nil {
		// The order went through; a failed ledger write must not mask it.
		log.Printf("[ERROR] order %s filled but ledger write failed: %v", orderID, err)
	}
	log.Printf("[INFO] bought %.8f BTC (%.2f USD @ %.2f), order %s", result.AmountBTC, amountUSD, result.Price, orderID)
	return result, nil
}
