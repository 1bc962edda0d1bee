package commands

import (
	"fmt"
	"strings"

	"github.com/susu3304/pokerclub/internal/cashier"
	"github.com/susu3304/pokerclub/internal/ranking"
)

// MessageLimit is Discord's maximum message length.
const MessageLimit = 2000

func signed(v int64) string {
	if v > 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

func FormatCashier(r cashier.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Cashier**\nTo receive: %d | To pay out: %d\n", r.TotalToReceive, r.TotalToPayOut)
	listed := 0
	for _, bal := range r.Balances {
		if bal.Balance == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %s (%d unpaid)\n", bal.Player.Name, signed(bal.Balance), len(bal.Unpaid))
		listed++
	}
	if listed == 0 {
		b.WriteString("Everyone is settled up.\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatEntries(title string, entries []ranking.Entry, empty string) string {
	if len(entries) == 0 {
		return empty
	}
	var b strings.Builder
	b.WriteString(title)
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s %s", i+1, e.Name, signed(e.Profit))
	}
	return b.String()
}

func FormatRanking(year int, entries []ranking.Entry) string {
	return formatEntries(fmt.Sprintf("**Ranking %d**", year), entries, fmt.Sprintf("No sessions in %d.", year))
}

func FormatLastGame(entries []ranking.Entry) string {
	return formatEntries("**Last game**", entries, "No sessions recorded yet.")
}

func FormatHighlights(h ranking.Highlights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Highlights**\nTotal pot: %d", h.TotalPot)
	if w := h.BiggestSingleWin; w != nil {
		fmt.Fprintf(&b, "\nBiggest single win: %s %s (%s)", w.Name, signed(w.Profit), w.SessionName)
	}
	if w := h.TopCumulativeWinner; w != nil {
		fmt.Fprintf(&b, "\nTop cumulative winner: %s %s", w.Name, signed(w.Profit))
	}
	if w := h.MostConsistentWinner; w != nil {
		fmt.Fprintf(&b, "\nMost sessions won: %s (%d)", w.Name, w.Wins)
	}
	return b.String()
}

// FormatReminder lists outstanding balances, or returns "" when there are none.
func FormatReminder(r cashier.Report) string {
	var lines []string
	for _, bal := range r.Balances {
		switch {
		case bal.Balance < 0:
			lines = append(lines, fmt.Sprintf("- %s owes %d", bal.Player.Name, -bal.Balance))
		case bal.Balance > 0:
			lines = append(lines, fmt.Sprintf("- %s is owed %d", bal.Player.Name, bal.Balance))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "**Outstanding balances**\n" + strings.Join(lines, "\n")
}

// Chunk splits content on line boundaries into messages no longer than limit.
// A single line longer than limit is cut.
func Chunk(content string, limit int) []string {
	var (
		out    []string
		buffer strings.Builder
	)
	for _, line := range strings.Split(content, "\n") {
		for len(line) > limit {
			if buffer.Len() > 0 {
				out = append(out, buffer.String())
				buffer.Reset()
			}
			out = append(out, line[:limit])
			line = line[limit:]
		}
		if buffer.Len() > 0 && buffer.Len()+len(line)+1 > limit {
			out = append(out, buffer.String())
			buffer.Reset()
		}
		if buffer.Len() > 0 {
			buffer.WriteString("\n")
		}
		buffer.WriteString(line)
	}
	if buffer.Len() > 0 {
		out = append(out, buffer.String())
	}
	return out
}
