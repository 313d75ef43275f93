package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PortfolioGuard/internal/model"
)

// FormatCheckResult formats a check pass for Telegram (HTML parse mode).
func FormatCheckResult(res *model.CheckResult, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📉 <b>Portfolio check</b> | %s\n\n", at.Format("2006-01-02 15:04")))
	if len(res.Alerts) == 0 {
		b.WriteString("No stop-loss alerts ✅\n")
	}
	for _, a := range res.Alerts {
		b.WriteString("• " + html.EscapeString(a) + "\n")
	}
	if len(res.Failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ No quote for: %s\n", html.EscapeString(strings.Join(res.Failed, ", "))))
	}
	if !res.Saved {
		b.WriteString("\n<i>Baselines not updated (outside trading window)</i>\n")
	}
	return b.String()
}

// FormatPositions lists the stored positions.
func FormatPositions(positions []model.Position) string {
	var b strings.Builder
	b.WriteString("📦 <b>Positions</b>\n\n")
	if len(positions) == 0 {
		b.WriteString("(none)\n")
	}
	for _, p := range positions {
		mark := "🟢"
		if !p.Active() {
			mark = "⚪"
		}
		b.WriteString(fmt.Sprintf("%s %s  base %.4f  invested %.2f  shares %d\n",
			mark, html.EscapeString(p.Symbol), p.BaselinePrice, p.InvestedAmount, p.ShareCount()))
	}
	return b.String()
}
