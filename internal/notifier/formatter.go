package notifier

import (
	"fmt"
	"html"
	"strings"

	"ScalpDeck/internal/model"
)

func actionIcon(a model.Action) string {
	switch a {
	case model.ActionBuy:
		return "🟢"
	case model.ActionSell:
		return "🔴"
	default:
		return "⚪"
	}
}

// FormatDecision formats one stored decision.
func FormatDecision(d model.SymbolDecision) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> | confidence %.0f%%\n", actionIcon(d.Action), d.Action, html.EscapeString(d.Symbol), d.Confidence*100))
	if d.SuggestedQuantity != nil {
		b.WriteString(fmt.Sprintf("Suggested quantity: %d\n", *d.SuggestedQuantity))
	}
	if d.Reasoning != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(d.Reasoning)))
	}
	if !d.DecidedAt.IsZero() {
		b.WriteString(fmt.Sprintf("\n%s", d.DecidedAt.Format("2006-01-02 15:04:05")))
	}
	return b.String()
}

// FormatStatus formats the agent's portfolio status.
func FormatStatus(st *model.AgentStatus) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s</b>\n\n", html.EscapeString(st.Name)))
	b.WriteString(fmt.Sprintf("Cash: $%s\n", st.CurrentBalance.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Holdings: $%s\n", st.HoldingsValue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Portfolio: $%s\n", st.TotalPortfolioValue.StringFixed(2)))
	sign := "📈"
	if !st.IsProfit() {
		sign = "📉"
	}
	b.WriteString(fmt.Sprintf("%s Return: $%s (%s%%)\n", sign, st.TotalReturn.StringFixed(2), st.ReturnPercentage.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Trades: %d\n", st.TotalTrades))
	if len(st.Holdings) > 0 {
		b.WriteString("\n<b>Positions</b>\n")
		for _, h := range st.Holdings {
			b.WriteString(fmt.Sprintf("  %s × %d @ $%s  P&amp;L $%s (%s%%)\n",
				html.EscapeString(h.Symbol), h.Quantity, h.AvgPrice.StringFixed(2), h.PnL.StringFixed(2), h.PnLPct.StringFixed(2)))
		}
	}
	return b.String()
}

// FormatWatchlist lists the watched symbols with their latest decision, if any.
func FormatWatchlist(symbols []string, decisions map[string]model.SymbolDecision) string {
	if len(symbols) == 0 {
		return "Watchlist is empty."
	}
	var b strings.Builder
	b.WriteString("👀 <b>Watchlist</b>\n\n")
	for _, s := range symbols {
		label := html.EscapeString(s)
		if d, ok := decisions[s]; ok {
			b.WriteString(fmt.Sprintf("%s %s  %s %.0f%%\n", actionIcon(d.Action), label, d.Action, d.Confidence*100))
			continue
		}
		b.WriteString(fmt.Sprintf("· %s\n", label))
	}
	return b.String()
}

// Help lists the supported commands.
func Help() string {
	return "Commands:\n" +
		"• /watchlist\n" +
		"• /add SYMBOL\n" +
		"• /remove SYMBOL\n" +
		"• /trade SYMBOL\n" +
		"• /arm | /disarm\n" +
		"• /status"
}
