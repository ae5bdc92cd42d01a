package telegram

import (
	"time"

	coreconfig "github.com/rajcricket/prepbot/core/config"
	"github.com/rajcricket/prepbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the standard global middleware chain:
// panic recovery (with optional admin notification), rate limiting
// and per-update logging, in that order.
func DefaultMiddlewares(cfg *coreconfig.Config, notify middleware.PanicNotifier) []Middleware {
	chain := []Middleware{
		{Name: "recover", Use: middleware.RecoverWith(notify)},
	}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, v := range cfg.RateLimit.ExcludeUpdates {
			exclude[v] = struct{}{}
		}
		chain = append(chain, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:  exclude,
			}),
		})
	}

	chain = append(chain, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
	return chain
}

// AdminGate returns the middleware protecting admin-only commands.
func AdminGate(adminID int64, onReject tele.HandlerFunc) tele.MiddlewareFunc {
	return middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  adminID,
		OnReject: onReject,
	})
}
