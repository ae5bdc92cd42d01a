package app

import (
	"fmt"
	"strings"

	"github.com/rajcricket/prepbot/bot/stats"
	"github.com/rajcricket/prepbot/core/telegram/format"
)

// renderStats formats the admin /stats report.
func renderStats(userCount int64, counters []stats.Counter) string {
	var b strings.Builder
	b.WriteString("📊 ")
	b.WriteString(format.Bold("Usage statistics"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Users: %s\n", format.Bold(fmt.Sprintf("%d", userCount)))

	if len(counters) == 0 {
		b.WriteString("\nNo actions recorded yet.")
		return b.String()
	}

	b.WriteString("\nActions:\n")
	for _, c := range counters {
		fmt.Fprintf(&b, "• %s: %d\n", format.Code(c.Action), c.Count)
	}
	return strings.TrimRight(b.String(), "\n")
}
