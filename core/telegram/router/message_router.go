package router

import (
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// TextRoute wraps the free-text endpoint with a summary log line.
func TextRoute(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, "on_text", start, func() error {
			return h(c)
		}, slog.String("kind", "message"))
	}
}

// PhotoRoute wraps the photo endpoint with a summary log line.
func PhotoRoute(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, "on_photo", start, func() error {
			return h(c)
		}, slog.String("kind", "message"))
	}
}

// MediaRoute wraps the generic media endpoint, which telebot fires for media
// kinds that have no dedicated handler.
func MediaRoute(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		start := time.Now()
		return handleWithSummary(c, "on_media", start, func() error {
			return h(c)
		}, slog.String("kind", "message"))
	}
}
