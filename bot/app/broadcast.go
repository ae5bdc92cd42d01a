package app

import (
	"context"

	"github.com/rajcricket/prepbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Sender is the outbound surface broadcast needs; satisfied by *tele.Bot.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Broadcast sends text to every user id synchronously, one by one, and
// returns exact sent/total numbers. Individual failures (blocked bot,
// deleted account) are logged and skipped.
func Broadcast(ctx context.Context, bot Sender, userIDs []int64, text string) (sent, total int) {
	total = len(userIDs)
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "broadcast", "aborted",
				slog.Int("sent", sent),
				slog.Int("total", total),
				slog.String("err", err.Error()),
			)
			return sent, total
		}
		if _, err := bot.Send(tele.ChatID(id), text); err != nil {
			logger.Warn(ctx, "broadcast", "send.fail",
				slog.Int64("dest_id", id),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			continue
		}
		sent++
	}
	logger.Info(ctx, "broadcast", "done",
		slog.Int("sent", sent),
		slog.Int("failed", total-sent),
		slog.Int("total", total),
	)
	return sent, total
}
