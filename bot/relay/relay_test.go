package relay

import (
	"errors"
	"strings"
	"testing"

	"github.com/rajcricket/prepbot/bot/session"

	tele "gopkg.in/telebot.v4"
)

type fakeNamer map[string]string

func (f fakeNamer) CourseName(id string) (string, bool) {
	name, ok := f[id]
	return name, ok
}

func TestContextLine(t *testing.T) {
	r := &Relay{Courses: fakeNamer{"c_gsssb": "GSSSB Non-Tech"}}

	if got := r.contextLine(session.Session{CourseID: "c_gsssb"}); got != "GSSSB Non-Tech" {
		t.Errorf("contextLine = %q", got)
	}
	if got := r.contextLine(session.Session{}); got != "General Query" {
		t.Errorf("empty course: contextLine = %q", got)
	}
	if got := r.contextLine(session.Session{CourseID: "c_gone"}); got != "General Query" {
		t.Errorf("stale course: contextLine = %q", got)
	}
}

func TestIsFollowUp(t *testing.T) {
	reply := &tele.Message{ReplyTo: &tele.Message{Text: AdminReplyBody("hello")}}
	if !IsFollowUp(reply) {
		t.Error("reply to admin reply not detected as follow-up")
	}

	if IsFollowUp(&tele.Message{ReplyTo: &tele.Message{Text: "some bot menu"}}) {
		t.Error("reply to unrelated bot message treated as follow-up")
	}
	if IsFollowUp(&tele.Message{Text: "plain"}) {
		t.Error("non-reply treated as follow-up")
	}
	if IsFollowUp(nil) {
		t.Error("nil message treated as follow-up")
	}
}

type fakeBot struct {
	to     []tele.Recipient
	bodies []interface{}
	fail   bool
}

func (f *fakeBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.fail {
		return nil, errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	}
	f.to = append(f.to, to)
	f.bodies = append(f.bodies, what)
	return &tele.Message{ID: len(f.to)}, nil
}

// fakeContext stubs the handful of tele.Context methods the relay touches.
// Anything else panics, which is what we want in a test.
type fakeContext struct {
	tele.Context
	sender *tele.User
	msg    *tele.Message
	store  map[string]interface{}
	sent   []string
}

func (c *fakeContext) Sender() *tele.User     { return c.sender }
func (c *fakeContext) Chat() *tele.Chat       { return nil }
func (c *fakeContext) Message() *tele.Message { return c.msg }
func (c *fakeContext) Update() tele.Update    { return tele.Update{ID: 1, Message: c.msg} }

func (c *fakeContext) Get(key string) interface{} { return c.store[key] }

func (c *fakeContext) Set(key string, val interface{}) {
	if c.store == nil {
		c.store = make(map[string]interface{})
	}
	c.store[key] = val
}

func (c *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func TestForwardTextReachesAdmin(t *testing.T) {
	bot := &fakeBot{}
	r := &Relay{AdminID: 99, Bot: bot, Courses: fakeNamer{"c_gsssb": "GSSSB Non-Tech"}}
	c := &fakeContext{
		sender: &tele.User{ID: 42, FirstName: "Raj"},
		msg:    &tele.Message{Text: "is there a discount?"},
	}

	if err := r.ForwardText(c, session.Session{CourseID: "c_gsssb"}); err != nil {
		t.Fatalf("ForwardText: %v", err)
	}
	if len(bot.to) != 1 || bot.to[0] != tele.ChatID(99) {
		t.Fatalf("forwarded to %v, want admin chat 99", bot.to)
	}
	body, _ := bot.bodies[0].(string)
	if !strings.Contains(body, "(ID: 42)") || !strings.Contains(body, "GSSSB Non-Tech") {
		t.Errorf("forwarded body = %q", body)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "has been sent") {
		t.Errorf("user confirmation = %v", c.sent)
	}
}

func TestHandleAdminReplyDelivers(t *testing.T) {
	bot := &fakeBot{}
	r := &Relay{AdminID: 99, Bot: bot}

	quoted := UserMessageBody("Raj", 42, "General Query", "when does the batch start?")
	c := &fakeContext{
		sender: &tele.User{ID: 99},
		msg:    &tele.Message{Text: "Monday 9am", ReplyTo: &tele.Message{Text: quoted}},
	}

	if err := r.HandleAdminReply(c); err != nil {
		t.Fatalf("HandleAdminReply: %v", err)
	}
	if len(bot.to) != 1 || bot.to[0] != tele.ChatID(42) {
		t.Fatalf("delivered to %v, want user chat 42", bot.to)
	}
	if body, _ := bot.bodies[0].(string); body != AdminReplyBody("Monday 9am") {
		t.Errorf("delivered body = %q", body)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Reply delivered") {
		t.Errorf("admin confirmation = %v", c.sent)
	}
}

func TestHandleAdminReplyUnroutableStaysWithAdmin(t *testing.T) {
	bot := &fakeBot{}
	r := &Relay{AdminID: 99, Bot: bot}
	c := &fakeContext{
		sender: &tele.User{ID: 99},
		msg:    &tele.Message{Text: "hello", ReplyTo: &tele.Message{Text: "some bot menu, no user tag"}},
	}

	if err := r.HandleAdminReply(c); err != nil {
		t.Fatalf("HandleAdminReply: %v", err)
	}
	if len(bot.to) != 0 {
		t.Fatalf("unroutable reply must not be relayed, got %v", bot.to)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Cannot route") {
		t.Errorf("admin warning = %v", c.sent)
	}
}

func TestHandleAdminReplyRejectsEmptyText(t *testing.T) {
	bot := &fakeBot{}
	r := &Relay{AdminID: 99, Bot: bot}
	quoted := UserMessageBody("Raj", 42, "General Query", "q")
	c := &fakeContext{
		sender: &tele.User{ID: 99},
		msg:    &tele.Message{Text: "   ", ReplyTo: &tele.Message{Text: quoted}},
	}

	if err := r.HandleAdminReply(c); err != nil {
		t.Fatalf("HandleAdminReply: %v", err)
	}
	if len(bot.to) != 0 {
		t.Fatalf("blank reply must not be relayed, got %v", bot.to)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Only text replies") {
		t.Errorf("admin notice = %v", c.sent)
	}
}

func TestForwardTextFailureApologizes(t *testing.T) {
	bot := &fakeBot{fail: true}
	r := &Relay{AdminID: 99, Bot: bot}
	c := &fakeContext{
		sender: &tele.User{ID: 42, FirstName: "Raj"},
		msg:    &tele.Message{Text: "hello"},
	}

	if err := r.ForwardText(c, session.Session{}); err != nil {
		t.Fatalf("ForwardText: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "Could not deliver") {
		t.Errorf("user apology = %v", c.sent)
	}
}
