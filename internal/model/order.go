package model

// OrderResult describes the outcome of one execution attempt.
// AmountBTC and Price are zero when the order was blocked before a
// price could be fetched.
type OrderResult struct {
	Executed  bool    // true only when a live order was filled
	Simulated bool    // true when dry-run mode computed but did not place the order
	Symbol    string
	Side      string
	AmountUSD float64 // USD committed (after any clamping)
	AmountBTC float64
	Price     float64
	OrderID   string
	Leverage  int // >= 1
	Reason    string
}
