package router

import (
	"time"

	"github.com/rajcricket/prepbot/core/telegram/commands"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CommandRoute wraps a registered command handler with access control and
// a per-update summary log line.
func CommandRoute(name string, cmd commands.Command, adminGate tele.MiddlewareFunc) tele.HandlerFunc {
	handlerName := normalizeHandlerName(name)
	h := cmd.Handler
	if cmd.AdminOnly && adminGate != nil {
		h = adminGate(h)
	}
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, handlerName, start, func() error {
			return h(c)
		}, slog.String("kind", "command"))
	}
}
