// Package content replays demo videos and materials from the private demo
// channel into user chats. Replay is a copy, not a forward, so the channel
// identity never leaks to users.
package content

import (
	"context"
	"errors"
	"strconv"

	"github.com/rajcricket/prepbot/bot/catalog"
	"github.com/rajcricket/prepbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Kind selects which demo asset of a subject to replay.
type Kind string

const (
	KindVideo    Kind = "video"
	KindMaterial Kind = "material"
)

// ErrUnavailable means no demo of the requested kind is configured, either
// because the subject has no asset or the channel is not set up.
var ErrUnavailable = errors.New("content: demo not available")

type unavailableError struct{ reason string }

func (e *unavailableError) Error() string { return "content: unavailable: " + e.reason }
func (e *unavailableError) Code() string  { return "UNAVAILABLE" }
func (e *unavailableError) Unwrap() error { return ErrUnavailable }

type transportError struct{ err error }

func (e *transportError) Error() string { return "content: copy failed: " + e.err.Error() }
func (e *transportError) Code() string  { return "TRANSPORT_FAILURE" }
func (e *transportError) Unwrap() error { return e.err }

// Copier is the single Telegram call delivery needs; satisfied by *tele.Bot.
type Copier interface {
	Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
}

// Deliverer copies demo messages out of the channel into user chats.
type Deliverer struct {
	ChannelID int64
	Bot       Copier
	// Upsell is attached under every delivered demo; optional.
	Upsell func(courseID string) *tele.ReplyMarkup
}

func demoID(subj *catalog.Subject, kind Kind) int {
	switch kind {
	case KindVideo:
		return subj.DemoVideoID
	case KindMaterial:
		return subj.DemoMaterialID
	default:
		return 0
	}
}

// Deliver replays the subject's demo asset of the given kind to the
// recipient. The copy is protected so users cannot re-forward paid-preview
// content.
func (d *Deliverer) Deliver(ctx context.Context, to tele.Recipient, course *catalog.Course, subj *catalog.Subject, kind Kind) error {
	if d.ChannelID == 0 {
		return &unavailableError{reason: "channel not configured"}
	}
	msgID := demoID(subj, kind)
	if msgID == 0 {
		return &unavailableError{reason: string(kind) + " not set for subject " + subj.ID}
	}

	src := tele.StoredMessage{
		MessageID: strconv.Itoa(msgID),
		ChatID:    d.ChannelID,
	}
	opts := &tele.SendOptions{Protected: true}
	if d.Upsell != nil {
		opts.ReplyMarkup = d.Upsell(course.ID)
	}

	if _, err := d.Bot.Copy(to, src, opts); err != nil {
		logger.Error(ctx, "content", "deliver.fail",
			slog.String("course_id", course.ID),
			slog.String("subject_id", subj.ID),
			slog.String("kind", string(kind)),
			slog.Int("message_id", msgID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return &transportError{err: err}
	}

	logger.Info(ctx, "content", "deliver.ok",
		slog.String("course_id", course.ID),
		slog.String("subject_id", subj.ID),
		slog.String("kind", string(kind)),
		slog.Int("message_id", msgID),
	)
	return nil
}

// IsUnavailable reports whether err is a configuration gap rather than a
// transport failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
