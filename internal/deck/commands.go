package deck

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"ScalpDeck/internal/notifier"
	"ScalpDeck/internal/status"
)

// HandleCommand processes an operator chat command and returns a reply.
func (d *Deck) HandleCommand(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return notifier.Help()
	}
	cmd := strings.ToLower(fields[0])
	// Commands addressed to a bot in a group look like /status@scalpdeck_bot.
	cmd, _, _ = strings.Cut(cmd, "@")
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch cmd {
	case "/watchlist":
		return notifier.FormatWatchlist(d.Watchlist.Symbols(), d.Decisions.Snapshot())
	case "/add":
		syms, err := d.AddSymbol(arg)
		if err != nil {
			return "Usage: /add SYMBOL"
		}
		return notifier.FormatWatchlist(syms, d.Decisions.Snapshot())
	case "/remove":
		if arg == "" {
			return "Usage: /remove SYMBOL"
		}
		return notifier.FormatWatchlist(d.RemoveSymbol(arg), d.Decisions.Snapshot())
	case "/trade":
		if arg == "" {
			return "Usage: /trade SYMBOL"
		}
		sd, err := d.Trade(ctx, arg)
		if err != nil {
			return "❌ Trade failed: " + html.EscapeString(err.Error())
		}
		return notifier.FormatDecision(sd)
	case "/arm":
		d.AutoTrader.Arm()
		return fmt.Sprintf("⚡ Auto-trade armed, every %s", d.AutoTrader.Period())
	case "/disarm":
		d.AutoTrader.Disarm()
		return "⏸ Auto-trade disarmed"
	case "/status":
		st, err := d.Refresher.Current()
		if errors.Is(err, status.ErrAgentNotInitialized) {
			return "Agent not initialized."
		}
		return notifier.FormatStatus(&st)
	default:
		return notifier.Help()
	}
}
