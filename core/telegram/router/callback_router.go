package router

import (
	"strings"
	"time"

	"github.com/rajcricket/prepbot/core/logger"
	"github.com/rajcricket/prepbot/core/telegram/callbacks"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// CallbackResolver matches incoming callback data to a handler.
// Implemented by *telegram.Registry.
type CallbackResolver interface {
	ResolveCallback(data string) (tele.HandlerFunc, bool)
	CallbackNotFound() tele.HandlerFunc
}

// CallbackRoute dispatches tele.OnCallback updates through the resolver and
// emits a summary log line per callback. The callback query is always
// answered so the client spinner never hangs, even when the handler fails.
func CallbackRoute(resolver CallbackResolver) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()

		data := callbacks.Data(c)
		key := callbackKey(data)
		handlerName := "cb_" + normalizeHandlerName(key)

		handler, found := resolver.ResolveCallback(data)
		if !found {
			handler = resolver.CallbackNotFound()
			handlerName = "cb_not_found"
		}

		err := handleWithSummary(c, handlerName, start, func() error {
			defer func() {
				// Best effort; handlers that already responded make this a no-op error.
				_ = c.Respond()
			}()
			return handler(c)
		}, slog.String("kind", "callback"), slog.String("cb_key", logger.SanitizeLimit(key, 48)))

		return err
	}
}

// callbackKey trims embedded identifiers so log lines group by action, not payload.
func callbackKey(data string) string {
	if i := strings.IndexByte(data, '|'); i >= 0 {
		return data[:i]
	}
	return data
}
