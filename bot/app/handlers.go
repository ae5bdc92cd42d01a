package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rajcricket/prepbot/bot/content"
	"github.com/rajcricket/prepbot/bot/flow"
	"github.com/rajcricket/prepbot/bot/relay"
	"github.com/rajcricket/prepbot/bot/session"
	"github.com/rajcricket/prepbot/core/logger"
	"github.com/rajcricket/prepbot/core/telegram/callbacks"
	tghelpers "github.com/rajcricket/prepbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// errSessionExpired marks actions that need navigation context the session
// no longer has, typically after a restart.
var errSessionExpired = &sessionExpiredError{}

type sessionExpiredError struct{}

func (e *sessionExpiredError) Error() string { return "session context expired" }
func (e *sessionExpiredError) Code() string  { return "SESSION_EXPIRED" }

func (a *App) handleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	a.sessions.Reset(sender.ID)
	a.usage.TrackUser(ctx, sender.ID, sender.FirstName)
	a.usage.Count(ctx, "bot_starts")

	s := a.flow.MainMenu(sender.FirstName)
	return tghelpers.SendHTML(c, s.Text, s.Markup())
}

func (a *App) handleCancel(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.SetPhase(sender.ID, session.Browsing)
	if err := tghelpers.SendText(c, flow.CancelNotice()); err != nil {
		return err
	}
	s := a.flow.MainMenu(sender.FirstName)
	return tghelpers.SendHTML(c, s.Text, s.Markup())
}

func (a *App) cbMainMenu(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.Reset(sender.ID)
	s := a.flow.MainMenu(sender.FirstName)
	return tghelpers.EditOrSendHTML(c, s.Text, s.Markup())
}

func (a *App) cbCourse(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	data := callbackData(c)

	course, err := a.catalog.Course(data)
	if err != nil {
		// Stale button from an older catalog; rebuild the main menu and
		// leave the session untouched.
		logger.Warn(tghelpers.BuildContext(c), "flow", "course.stale",
			slog.String("course_id", data),
		)
		s := a.flow.MainMenu(sender.FirstName)
		if sendErr := tghelpers.EditOrSendHTML(c, s.Text, s.Markup()); sendErr != nil {
			return sendErr
		}
		return err
	}

	a.usage.Count(tghelpers.BuildContext(c), "view_"+course.ID)
	a.sessions.Update(sender.ID, func(sess *session.Session) {
		sess.CourseID = course.ID
		sess.SubjectID = ""
		sess.ReturnTarget = course.ID
	})

	s := a.flow.CourseMenu(course)
	return tghelpers.EditOrSendHTML(c, s.Text, s.Markup())
}

func (a *App) cbSubject(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	data := callbackData(c)

	courseID, subjectID, ok := flow.ParseRef(data, flow.PrefixSubject)
	if !ok {
		return tghelpers.Alert(c, "This button is no longer valid.")
	}
	course, subj, err := a.catalog.Subject(courseID, subjectID)
	if err != nil {
		logger.Warn(tghelpers.BuildContext(c), "flow", "subject.stale",
			slog.String("course_id", courseID),
			slog.String("subject_id", subjectID),
		)
		s := a.flow.MainMenu(sender.FirstName)
		if sendErr := tghelpers.EditOrSendHTML(c, s.Text, s.Markup()); sendErr != nil {
			return sendErr
		}
		return err
	}

	// Back from the buy screen lands on the course's subject list, not on
	// this subject's action menu.
	a.sessions.Update(sender.ID, func(sess *session.Session) {
		sess.CourseID = course.ID
		sess.SubjectID = subj.ID
		sess.ReturnTarget = course.ID
	})

	s := a.flow.SubjectMenu(course, subj)
	return tghelpers.EditOrSendHTML(c, s.Text, s.Markup())
}

func (a *App) cbDemoVideo(c tele.Context) error {
	return a.deliverDemo(c, flow.PrefixDemoVideo, content.KindVideo)
}

func (a *App) cbDemoMaterial(c tele.Context) error {
	return a.deliverDemo(c, flow.PrefixDemoMaterial, content.KindMaterial)
}

func (a *App) deliverDemo(c tele.Context, prefix string, kind content.Kind) error {
	data := callbackData(c)

	courseID, subjectID, ok := flow.ParseRef(data, prefix)
	if !ok {
		return tghelpers.Alert(c, "This button is no longer valid.")
	}
	course, subj, err := a.catalog.Subject(courseID, subjectID)
	if err != nil {
		if alertErr := tghelpers.Alert(c, "This demo is no longer listed."); alertErr != nil {
			return alertErr
		}
		return err
	}

	ctx := tghelpers.BuildContext(c)
	err = a.content.Deliver(ctx, c.Recipient(), course, subj, kind)
	switch {
	case err == nil:
		return nil
	case content.IsUnavailable(err):
		if alertErr := tghelpers.Alert(c, "This demo is not uploaded yet. Please check back soon."); alertErr != nil {
			return alertErr
		}
		return err
	default:
		if alertErr := tghelpers.Alert(c, "Could not send the demo right now. Please try again."); alertErr != nil {
			return alertErr
		}
		return err
	}
}

func (a *App) cbBuyCourse(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	sess := a.sessions.Get(sender.ID)

	course, err := a.catalog.Course(sess.CourseID)
	if sess.CourseID == "" || err != nil {
		if sendErr := tghelpers.SendText(c, flow.SessionExpiredNotice()); sendErr != nil {
			return sendErr
		}
		return errSessionExpired
	}

	// Sent as a new message: the buy button also sits under copied demo
	// media, which cannot be edited into text.
	s := a.flow.BuyScreen(course, sess.ReturnTarget)
	return tghelpers.SendHTML(c, s.Text, s.Markup())
}

func (a *App) cbTalkAdmin(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.SetPhase(sender.ID, session.AwaitingAdminMessage)
	return tghelpers.SendText(c, flow.AdminPrompt())
}

func (a *App) cbShareScreenshot(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	a.sessions.SetPhase(sender.ID, session.AwaitingPaymentScreenshot)
	return tghelpers.SendText(c, flow.ScreenshotPrompt())
}

// onText handles free-form text: admin replies route back to users, user
// text is relayed to the admin with whatever course context the session has.
func (a *App) onText(c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil {
		return nil
	}

	if a.relay.IsAdminReply(c) {
		return a.relay.HandleAdminReply(c)
	}
	if sender.ID == a.cfg.Telegram.AdminID {
		// Non-reply admin text has no routing target.
		return nil
	}

	if strings.HasPrefix(msg.Text, "/") {
		// Unregistered command; commands with handlers never reach OnText.
		return tghelpers.SendText(c, "Unknown command. Send /start to open the menu.")
	}

	ctx := tghelpers.BuildContext(c)
	a.usage.TrackUser(ctx, sender.ID, sender.FirstName)

	sess := a.sessions.Get(sender.ID)

	// A reply to an earlier admin answer reopens the relay regardless of phase.
	if relay.IsFollowUp(msg) {
		return a.relay.ForwardText(c, sess)
	}

	switch sess.Phase {
	case session.AwaitingAdminMessage:
		a.sessions.SetPhase(sender.ID, session.Browsing)
		return a.relay.ForwardText(c, sess)
	case session.AwaitingPaymentScreenshot:
		// Wrong input type; keep the phase and ask again.
		return tghelpers.SendText(c, flow.ScreenshotPrompt())
	default:
		// Stray text while browsing is not relayed; the admin only hears
		// from users who pressed Talk to Admin or replied to an answer.
		return tghelpers.SendText(c, "Use /start to browse courses, or press Talk to Admin on a subject screen to reach us.")
	}
}

// onPhoto handles photos: payment screenshots when expected, otherwise a
// gentle pointer to the right flow.
func (a *App) onPhoto(c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil {
		return nil
	}

	if a.relay.IsAdminReply(c) {
		return a.relay.HandleAdminReply(c)
	}
	if sender.ID == a.cfg.Telegram.AdminID {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	a.usage.TrackUser(ctx, sender.ID, sender.FirstName)

	sess := a.sessions.Get(sender.ID)
	switch sess.Phase {
	case session.AwaitingPaymentScreenshot:
		a.sessions.SetPhase(sender.ID, session.Browsing)
		return a.relay.ForwardPhoto(c, sess)
	case session.AwaitingAdminMessage:
		return tghelpers.SendText(c, flow.AdminPrompt())
	default:
		return tghelpers.SendText(c, "To share a payment screenshot, open a course, press Buy Full Course and then Share Payment Screenshot.")
	}
}

// onOtherMedia catches media kinds without a dedicated route (documents,
// voice, stickers) so an input phase re-prompts instead of going silent.
func (a *App) onOtherMedia(c tele.Context) error {
	sender := c.Sender()
	msg := c.Message()
	if sender == nil || msg == nil {
		return nil
	}

	if a.relay.IsAdminReply(c) {
		return a.relay.HandleAdminReply(c)
	}
	if sender.ID == a.cfg.Telegram.AdminID {
		return nil
	}

	sess := a.sessions.Get(sender.ID)
	switch sess.Phase {
	case session.AwaitingAdminMessage:
		return tghelpers.SendText(c, flow.AdminPrompt())
	case session.AwaitingPaymentScreenshot:
		return tghelpers.SendText(c, flow.ScreenshotPrompt())
	default:
		return nil
	}
}

func (a *App) handleStats(c tele.Context) error {
	ctx, cancel := context.WithTimeout(tghelpers.BuildContext(c), 5*time.Second)
	defer cancel()

	users, err := a.store.CountUsers(ctx)
	if err != nil {
		if sendErr := tghelpers.SendText(c, "Could not load statistics."); sendErr != nil {
			return sendErr
		}
		return err
	}
	counters, err := a.store.ListCounters(ctx)
	if err != nil {
		if sendErr := tghelpers.SendText(c, "Could not load statistics."); sendErr != nil {
			return sendErr
		}
		return err
	}

	return tghelpers.SendHTML(c, renderStats(users, counters))
}

func (a *App) handleBroadcast(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Payload)
	if text == "" {
		return tghelpers.SendText(c, "Usage: /broadcast <message>")
	}

	ctx := tghelpers.BuildContext(c)
	ids, err := a.store.ListUserIDs(ctx)
	if err != nil {
		if sendErr := tghelpers.SendText(c, "Could not load the user list."); sendErr != nil {
			return sendErr
		}
		return err
	}

	sent, total := Broadcast(ctx, a.bot, ids, text)
	return tghelpers.SendText(c, fmt.Sprintf("📣 Broadcast complete: sent %d/%d.", sent, total))
}

func callbackData(c tele.Context) string {
	return callbacks.Data(c)
}
