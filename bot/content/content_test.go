package content

import (
	"context"
	"errors"
	"testing"

	"github.com/rajcricket/prepbot/bot/catalog"

	tele "gopkg.in/telebot.v4"
)

type fakeCopier struct {
	calls []copyCall
	err   error
}

type copyCall struct {
	to   tele.Recipient
	msg  tele.Editable
	opts []interface{}
}

func (f *fakeCopier) Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, copyCall{to: to, msg: msg, opts: opts})
	if f.err != nil {
		return nil, f.err
	}
	return &tele.Message{ID: 1}, nil
}

var (
	testCourse = &catalog.Course{ID: "c_gsssb", Name: "GSSSB Non-Tech", Price: 499}
	testSubj   = &catalog.Subject{ID: "s_maths", Name: "Maths", DemoVideoID: 10, DemoMaterialID: 11}
)

func TestDeliverCopiesProtected(t *testing.T) {
	copier := &fakeCopier{}
	d := &Deliverer{ChannelID: -100123, Bot: copier}

	if err := d.Deliver(context.Background(), tele.ChatID(42), testCourse, testSubj, KindVideo); err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	if len(copier.calls) != 1 {
		t.Fatalf("copy calls = %d, want 1", len(copier.calls))
	}
	call := copier.calls[0]

	stored, ok := call.msg.(tele.StoredMessage)
	if !ok {
		t.Fatalf("copied %T, want tele.StoredMessage", call.msg)
	}
	if stored.ChatID != -100123 || stored.MessageID != "10" {
		t.Errorf("source = %+v, want channel -100123 message 10", stored)
	}

	if len(call.opts) != 1 {
		t.Fatalf("opts = %v", call.opts)
	}
	sendOpts, ok := call.opts[0].(*tele.SendOptions)
	if !ok || !sendOpts.Protected {
		t.Errorf("copy not protected: %+v", call.opts[0])
	}
}

func TestDeliverMaterialUsesMaterialID(t *testing.T) {
	copier := &fakeCopier{}
	d := &Deliverer{ChannelID: -100123, Bot: copier}

	if err := d.Deliver(context.Background(), tele.ChatID(42), testCourse, testSubj, KindMaterial); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	stored := copier.calls[0].msg.(tele.StoredMessage)
	if stored.MessageID != "11" {
		t.Errorf("message id = %s, want 11", stored.MessageID)
	}
}

func TestDeliverAttachesUpsell(t *testing.T) {
	copier := &fakeCopier{}
	markup := &tele.ReplyMarkup{}
	var gotCourse string
	d := &Deliverer{
		ChannelID: -100123,
		Bot:       copier,
		Upsell: func(courseID string) *tele.ReplyMarkup {
			gotCourse = courseID
			return markup
		},
	}

	if err := d.Deliver(context.Background(), tele.ChatID(42), testCourse, testSubj, KindVideo); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if gotCourse != "c_gsssb" {
		t.Errorf("upsell course = %q", gotCourse)
	}
	opts := copier.calls[0].opts[0].(*tele.SendOptions)
	if opts.ReplyMarkup != markup {
		t.Error("upsell markup not attached")
	}
}

func TestDeliverUnavailable(t *testing.T) {
	copier := &fakeCopier{}

	// Channel not configured.
	d := &Deliverer{ChannelID: 0, Bot: copier}
	err := d.Deliver(context.Background(), tele.ChatID(42), testCourse, testSubj, KindVideo)
	if !IsUnavailable(err) {
		t.Errorf("unconfigured channel: err = %v, want unavailable", err)
	}

	// Subject has no asset of the requested kind.
	d = &Deliverer{ChannelID: -100123, Bot: copier}
	bare := &catalog.Subject{ID: "s_bim", Name: "Building Materials"}
	err = d.Deliver(context.Background(), tele.ChatID(42), testCourse, bare, KindMaterial)
	if !IsUnavailable(err) {
		t.Errorf("missing asset: err = %v, want unavailable", err)
	}

	if len(copier.calls) != 0 {
		t.Errorf("unavailable paths must not call Copy, calls = %d", len(copier.calls))
	}

	type coder interface{ Code() string }
	if c, ok := err.(coder); !ok || c.Code() != "UNAVAILABLE" {
		t.Errorf("err %v does not carry UNAVAILABLE code", err)
	}
}

func TestDeliverTransportFailure(t *testing.T) {
	copier := &fakeCopier{err: errors.New("telegram: Bad Request (400)")}
	d := &Deliverer{ChannelID: -100123, Bot: copier}

	err := d.Deliver(context.Background(), tele.ChatID(42), testCourse, testSubj, KindVideo)
	if err == nil || IsUnavailable(err) {
		t.Fatalf("err = %v, want transport failure", err)
	}
	type coder interface{ Code() string }
	if c, ok := err.(coder); !ok || c.Code() != "TRANSPORT_FAILURE" {
		t.Errorf("err %v does not carry TRANSPORT_FAILURE code", err)
	}
}
