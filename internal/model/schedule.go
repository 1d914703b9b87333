package model

// BuyStatus is the lifecycle state of a scheduled buy.
// Transitions are one-directional: pending→confirmed or pending→missed.
type BuyStatus string

const (
	BuyPending   BuyStatus = "pending"
	BuyConfirmed BuyStatus = "confirmed"
	BuyMissed    BuyStatus = "missed"
)

// ScheduledBuy is one entry in the recurring pay-date purchase calendar.
// Exactly one entry exists per calendar date.
type ScheduledBuy struct {
	Date             string    `json:"date"`         // "YYYY-MM-DD" in the schedule's local zone
	PlannedTime      string    `json:"planned_time"` // e.g. "09:00 PT"
	Status           BuyStatus `json:"status"`
	PlannedAmountUSD float64   `json:"planned_amount_usd"`

	// Filled in on confirmation only.
	ExecutedAt      string  `json:"executed_at,omitempty"` // RFC 3339 UTC
	ActualAmountUSD float64 `json:"actual_amount_usd,omitempty"`
	ActualAmountBTC float64 `json:"actual_amount_btc,omitempty"`
	Price           float64 `json:"price,omitempty"`
	Action          string  `json:"action,omitempty"`
	Multiplier      float64 `json:"dca_multiplier,omitempty"`
	Simulated       bool    `json:"simulated,omitempty"`
	TradeReason     string  `json:"trade_reason,omitempty"`
}
