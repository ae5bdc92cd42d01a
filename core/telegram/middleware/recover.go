package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/rajcricket/prepbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// PanicNotifier receives a description of a recovered panic, typically to
// forward it to the operator.
type PanicNotifier func(c tele.Context, description string)

// RecoverWith returns a middleware that catches panics in handlers, so one
// malformed update can never terminate the process, and reports the panic
// through notify when it is non-nil.
func RecoverWith(notify PanicNotifier) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.TG.Error("panic recovered",
						slog.String("event", "tg.panic"),
						slog.Any("err", r),
						slog.String("stack", string(debug.Stack())),
					)
					if notify != nil {
						notify(c, fmt.Sprintf("panic in update handler: %v", r))
					}
				}
			}()
			return next(c)
		}
	}
}
