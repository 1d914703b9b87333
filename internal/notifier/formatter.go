package notifier

import (
	"fmt"
	"strings"
	"time"

	"DCAPilot/internal/model"
)

// FormatDecisionReport formats an orchestrator decision into a Telegram
// message.
func FormatDecisionReport(d model.Decision, baseUSD float64) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🧭 <b>DCA Decision</b> | %s\n\n", d.CreatedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Composite score: %+.3f\n", d.Composite))
	b.WriteString(fmt.Sprintf("Action: <b>%s</b> (%.1fx base)\n", actionLabel(d.Action), d.Multiplier))
	b.WriteString(fmt.Sprintf("Planned amount: $%.2f (base $%.2f)\n\n", baseUSD*d.Multiplier, baseUSD))

	b.WriteString("📈 <b>Signals:</b>\n")
	for _, sig := range d.Signals {
		b.WriteString(fmt.Sprintf("  %s: %+.2f (conf %.2f)\n", sig.Source, sig.Score, sig.Confidence))
	}
	if len(d.Signals) == 0 {
		b.WriteString("  none available\n")
	}
	return b.String()
}

// FormatExecutionReport formats an execution outcome.
func FormatExecutionReport(result model.OrderResult) string {
	var b strings.Builder
	switch {
	case result.Executed:
		b.WriteString("✅ <b>Order filled</b>\n\n")
	case result.Simulated:
		b.WriteString("🧪 <b>Dry run</b> (no order placed)\n\n")
	default:
		b.WriteString("🚫 <b>Order blocked</b>\n\n")
		b.WriteString(fmt.Sprintf("Reason: %s\n", result.Reason))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Bought: %.8f BTC\n", result.AmountBTC))
	b.WriteString(fmt.Sprintf("Spent: $%.2f @ $%.2f\n", result.AmountUSD, result.Price))
	if result.Leverage > 1 {
		b.WriteString(fmt.Sprintf("Leverage: %dx\n", result.Leverage))
	}
	if result.OrderID != "" {
		b.WriteString(fmt.Sprintf("Order: %s\n", result.OrderID))
	}
	return b.String()
}

// FormatSchedule formats the purchase calendar, most recent entries last.
func FormatSchedule(entries []model.ScheduledBuy, next time.Time) string {
	var b strings.Builder
	b.WriteString("📅 <b>Purchase schedule</b>\n\n")
	if len(entries) == 0 {
		b.WriteString("No tracked pay dates yet.\n")
	}
	// Keep the message readable: show the last 10 entries at most.
	start := 0
	if len(entries) > 10 {
		start = len(entries) - 10
	}
	for _, e := range entries[start:] {
		b.WriteString(fmt.Sprintf("%s %s | %s", statusIcon(e.Status), e.Date, e.Status))
		if e.Status == model.BuyConfirmed {
			b.WriteString(fmt.Sprintf(" | $%.2f → %.8f BTC", e.ActualAmountUSD, e.ActualAmountBTC))
			if e.Simulated {
				b.WriteString(" (dry run)")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\nNext pay date: %s\n", next.Format("2006-01-02")))
	return b.String()
}

// FormatLedgerStatus formats today's spend against the daily cap.
func FormatLedgerStatus(spentToday, maxDailyUSD float64) string {
	var b strings.Builder
	b.WriteString("💳 <b>Daily spend</b>\n\n")
	b.WriteString(fmt.Sprintf("Spent today: $%.2f\n", spentToday))
	if maxDailyUSD > 0 {
		b.WriteString(fmt.Sprintf("Daily cap: $%.2f\n", maxDailyUSD))
		b.WriteString(fmt.Sprintf("Remaining: $%.2f\n", maxDailyUSD-spentToday))
	} else {
		b.WriteString("Daily cap: none\n")
	}
	return b.String()
}

func actionLabel(a model.Action) string {
	switch a {
	case model.ActionStrongBuy:
		return "STRONG BUY"
	case model.ActionBuy:
		return "BUY"
	case model.ActionNormal:
		return "NORMAL"
	case model.ActionReduce:
		return "REDUCE"
	case model.ActionMinimal:
		return "MINIMAL"
	default:
		return strings.ToUpper(string(a))
	}
}

func statusIcon(s model.BuyStatus) string {
	switch s {
	case model.BuyConfirmed:
		return "✅"
	case model.BuyMissed:
		return "❌"
	default:
		return "⏳"
	}
}
