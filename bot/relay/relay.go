package relay

import (
	"strings"

	"github.com/rajcricket/prepbot/bot/session"
	"github.com/rajcricket/prepbot/core/logger"
	"github.com/rajcricket/prepbot/core/telegram/format"
	tghelpers "github.com/rajcricket/prepbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const (
	adminReplyMarker = "💬 Admin replied:"
	generalContext   = "General Query"
)

// Sender is the outbound surface the relay needs; satisfied by *tele.Bot.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// CourseNamer resolves a course id to its display name for relay context
// lines. Lookup misses fall back to the general query label.
type CourseNamer interface {
	CourseName(courseID string) (string, bool)
}

// Relay forwards user traffic to the admin and admin replies back to users.
type Relay struct {
	AdminID int64
	Bot     Sender
	Courses CourseNamer
}

// contextLine resolves the course label attached to a forwarded message.
func (r *Relay) contextLine(sess session.Session) string {
	if sess.CourseID != "" && r.Courses != nil {
		if name, ok := r.Courses.CourseName(sess.CourseID); ok {
			return name
		}
	}
	return generalContext
}

// UserMessageBody renders the admin-facing body of a forwarded text message.
// The correlation token stays outside any HTML tag so the reply handler sees
// it verbatim in the plain message text.
func UserMessageBody(firstName string, userID int64, courseContext, text string) string {
	var b strings.Builder
	b.WriteString("📩 ")
	b.WriteString(format.Bold("New message"))
	b.WriteString("\nFrom: ")
	b.WriteString(userLabel(format.Escape(firstName), userID))
	b.WriteString("\nContext: ")
	b.WriteString(format.Escape(courseContext))
	b.WriteString("\n\n")
	b.WriteString(format.Escape(text))
	return b.String()
}

// ScreenshotCaption renders the caption attached to a forwarded payment
// screenshot.
func ScreenshotCaption(firstName string, userID int64, courseContext string) string {
	var b strings.Builder
	b.WriteString("🖼 ")
	b.WriteString(format.Bold("Payment screenshot"))
	b.WriteString("\nFrom: ")
	b.WriteString(userLabel(format.Escape(firstName), userID))
	b.WriteString("\nContext: ")
	b.WriteString(format.Escape(courseContext))
	return b.String()
}

// AdminReplyBody renders the user-facing body of an admin reply.
func AdminReplyBody(text string) string {
	return adminReplyMarker + "\n\n" + format.Escape(text)
}

// ForwardText relays the user's text message to the admin.
func (r *Relay) ForwardText(c tele.Context, sess session.Session) error {
	msg := c.Message()
	sender := c.Sender()
	if msg == nil || sender == nil {
		return nil
	}

	body := UserMessageBody(sender.FirstName, sender.ID, r.contextLine(sess), msg.Text)
	if _, err := r.Bot.Send(tele.ChatID(r.AdminID), body, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
		logger.Error(tghelpers.BuildContext(c), "relay", "forward.text.fail",
			slog.Int64("user_id", sender.ID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, "Could not deliver your message right now. Please try again.")
	}

	logger.Info(tghelpers.BuildContext(c), "relay", "forward.text",
		slog.Int64("user_id", sender.ID),
		slog.String("course_id", sess.CourseID),
		slog.String("phase", sess.Phase.String()),
	)
	return tghelpers.SendText(c, "✅ Your message has been sent. You will get a reply here.")
}

// ForwardPhoto relays the user's payment screenshot to the admin.
func (r *Relay) ForwardPhoto(c tele.Context, sess session.Session) error {
	msg := c.Message()
	sender := c.Sender()
	if msg == nil || sender == nil || msg.Photo == nil {
		return nil
	}

	photo := &tele.Photo{
		File:    msg.Photo.File,
		Caption: ScreenshotCaption(sender.FirstName, sender.ID, r.contextLine(sess)),
	}
	if _, err := r.Bot.Send(tele.ChatID(r.AdminID), photo, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
		logger.Error(tghelpers.BuildContext(c), "relay", "forward.photo.fail",
			slog.Int64("user_id", sender.ID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, "Could not deliver your screenshot right now. Please try again.")
	}

	logger.Info(tghelpers.BuildContext(c), "relay", "forward.photo",
		slog.Int64("user_id", sender.ID),
		slog.String("course_id", sess.CourseID),
		slog.String("phase", sess.Phase.String()),
	)
	return tghelpers.SendText(c, "✅ Screenshot received. We will verify your payment and get back to you.")
}

// IsAdminReply reports whether the update is the admin replying to a
// forwarded message.
func (r *Relay) IsAdminReply(c tele.Context) bool {
	sender := c.Sender()
	msg := c.Message()
	return sender != nil && sender.ID == r.AdminID && msg != nil && msg.ReplyTo != nil
}

// IsFollowUp reports whether a user message replies to an earlier admin
// reply, which reopens the relay without pressing the button again.
func IsFollowUp(msg *tele.Message) bool {
	if msg == nil || msg.ReplyTo == nil {
		return false
	}
	return strings.HasPrefix(msg.ReplyTo.Text, adminReplyMarker)
}

// HandleAdminReply routes the admin's reply back to the originating user.
// Outcomes, including failures, are reported to the admin only.
func (r *Relay) HandleAdminReply(c tele.Context) error {
	msg := c.Message()
	replyTo := msg.ReplyTo

	body := replyTo.Text
	if body == "" {
		body = replyTo.Caption
	}

	userID, err := ParseToken(body)
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), "relay", "reply.unroutable",
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, "⚠️ Cannot route this reply: the quoted message has no user tag. Reply directly to a forwarded user message.")
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if strings.TrimSpace(text) == "" {
		return tghelpers.SendText(c, "⚠️ Only text replies can be relayed.")
	}

	out := AdminReplyBody(text)
	if _, err := r.Bot.Send(tele.ChatID(userID), out, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
		logger.Error(tghelpers.BuildContext(c), "relay", "reply.deliver.fail",
			slog.Int64("dest_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return tghelpers.SendText(c, "⚠️ Could not deliver the reply. The user may have blocked the bot.")
	}

	logger.Info(tghelpers.BuildContext(c), "relay", "reply.delivered",
		slog.Int64("dest_id", userID),
	)
	return tghelpers.SendText(c, "✅ Reply delivered.")
}
