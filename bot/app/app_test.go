package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rajcricket/prepbot/bot/catalog"
	"github.com/rajcricket/prepbot/bot/flow"
	"github.com/rajcricket/prepbot/bot/relay"
	"github.com/rajcricket/prepbot/bot/session"
	"github.com/rajcricket/prepbot/bot/stats"
	coreconfig "github.com/rajcricket/prepbot/core/config"

	tele "gopkg.in/telebot.v4"
)

type fakeSender struct {
	sent    []tele.Recipient
	failFor map[int64]bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if id, ok := to.(tele.ChatID); ok && f.failFor[int64(id)] {
		return nil, errors.New("telegram: Forbidden: bot was blocked by the user (403)")
	}
	f.sent = append(f.sent, to)
	return &tele.Message{ID: len(f.sent)}, nil
}

func TestBroadcastCountsExactly(t *testing.T) {
	bot := &fakeSender{failFor: map[int64]bool{3: true, 7: true}}
	ids := []int64{1, 2, 3, 4, 5, 6, 7, 8}

	sent, total := Broadcast(context.Background(), bot, ids, "new batch starts Monday")
	if total != 8 {
		t.Errorf("total = %d, want 8", total)
	}
	if sent != 6 {
		t.Errorf("sent = %d, want 6", sent)
	}
	if len(bot.sent) != 6 {
		t.Errorf("deliveries = %d, want 6", len(bot.sent))
	}
}

func TestBroadcastEmptyRoster(t *testing.T) {
	bot := &fakeSender{}
	sent, total := Broadcast(context.Background(), bot, nil, "hello")
	if sent != 0 || total != 0 {
		t.Errorf("sent/total = %d/%d, want 0/0", sent, total)
	}
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	bot := &fakeSender{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sent, total := Broadcast(ctx, bot, []int64{1, 2, 3}, "hello")
	if sent != 0 || total != 3 {
		t.Errorf("sent/total = %d/%d, want 0/3", sent, total)
	}
}

func TestRenderStats(t *testing.T) {
	out := renderStats(12, []stats.Counter{
		{Action: "bot_starts", Count: 40},
		{Action: "view_c_gsssb", Count: 25},
	})
	for _, want := range []string{"12", "bot_starts", ": 40", "view_c_gsssb", ": 25"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderStatsEmpty(t *testing.T) {
	out := renderStats(0, nil)
	if !strings.Contains(out, "No actions recorded yet") {
		t.Errorf("empty stats output: %q", out)
	}
}

func TestSessionExpiredCode(t *testing.T) {
	if errSessionExpired.Code() != "SESSION_EXPIRED" {
		t.Errorf("code = %q", errSessionExpired.Code())
	}
}

const testCatalogYAML = `
courses:
  - id: c_gsssb
    name: "GSSSB Non-Tech"
    price: 499
    subjects:
      - {id: s_maths, name: "Maths", demo_video_id: 10, demo_material_id: 11}
      - {id: s_reason, name: "Reasoning", demo_video_id: 12, demo_material_id: 13}
`

// testApp wires the handler graph without storage or a live transport.
func testApp(t *testing.T) (*App, *fakeSender) {
	t.Helper()
	reg, err := catalog.Parse([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("catalog.Parse: %v", err)
	}
	cfg := &coreconfig.Config{}
	cfg.Telegram.AdminID = 99
	bot := &fakeSender{}
	return &App{
		cfg:      cfg,
		catalog:  reg,
		flow:     &flow.Flow{Catalog: reg, PaymentLink: "https://pay.example.com/upi"},
		sessions: session.NewStore(),
		relay:    &relay.Relay{AdminID: 99, Bot: bot, Courses: courseNames{reg: reg}},
	}, bot
}

// fakeContext stubs the tele.Context methods the handlers touch. Anything
// else panics, which is what we want in a test.
type fakeContext struct {
	tele.Context
	sender  *tele.User
	msg     *tele.Message
	cb      *tele.Callback
	store   map[string]interface{}
	sent    []string
	markups []*tele.ReplyMarkup
}

func (c *fakeContext) Sender() *tele.User     { return c.sender }
func (c *fakeContext) Chat() *tele.Chat       { return nil }
func (c *fakeContext) Message() *tele.Message { return c.msg }

func (c *fakeContext) Callback() *tele.Callback { return c.cb }

func (c *fakeContext) Update() tele.Update {
	return tele.Update{ID: 1, Message: c.msg, Callback: c.cb}
}

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
	for _, o := range opts {
		if so, ok := o.(*tele.SendOptions); ok && so != nil {
			c.markups = append(c.markups, so.ReplyMarkup)
		}
	}
	return nil
}

func (c *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

func (c *fakeContext) Respond(resp ...*tele.CallbackResponse) error { return nil }

func buttonData(m *tele.ReplyMarkup) []string {
	if m == nil {
		return nil
	}
	var out []string
	for _, row := range m.InlineKeyboard {
		for _, b := range row {
			out = append(out, b.Data)
		}
	}
	return out
}

func TestBuyBackButtonTargetsSubjectList(t *testing.T) {
	a, _ := testApp(t)
	user := &tele.User{ID: 5, FirstName: "Raj"}

	sel := &fakeContext{sender: user, cb: &tele.Callback{Data: "subj_c_gsssb_s_maths"}}
	if err := a.cbSubject(sel); err != nil {
		t.Fatalf("cbSubject: %v", err)
	}

	buy := &fakeContext{sender: user, cb: &tele.Callback{Data: flow.KeyBuyCourse}}
	if err := a.cbBuyCourse(buy); err != nil {
		t.Fatalf("cbBuyCourse: %v", err)
	}
	if len(buy.markups) == 0 {
		t.Fatal("buy screen carried no keyboard")
	}

	var toCourse, toSubject bool
	for _, data := range buttonData(buy.markups[len(buy.markups)-1]) {
		switch data {
		case "c_gsssb":
			toCourse = true
		case "subj_c_gsssb_s_maths":
			toSubject = true
		}
	}
	if !toCourse {
		t.Error("buy screen back button must open the course's subject list")
	}
	if toSubject {
		t.Error("buy screen back button must not reopen the subject action menu")
	}
}

func TestBuyWithoutCourseSaysStartOver(t *testing.T) {
	a, _ := testApp(t)
	c := &fakeContext{sender: &tele.User{ID: 6}, cb: &tele.Callback{Data: flow.KeyBuyCourse}}

	if err := a.cbBuyCourse(c); err != errSessionExpired {
		t.Fatalf("err = %v, want session expired", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "start over using /start") {
		t.Errorf("user notice = %v", c.sent)
	}
}

func TestBrowsingTextIsNotRelayed(t *testing.T) {
	a, bot := testApp(t)
	c := &fakeContext{
		sender: &tele.User{ID: 7, FirstName: "Raj"},
		msg:    &tele.Message{Text: "hello?"},
	}

	if err := a.onText(c); err != nil {
		t.Fatalf("onText: %v", err)
	}
	if len(bot.sent) != 0 {
		t.Fatalf("browsing text reached the admin: %v", bot.sent)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "/start") {
		t.Errorf("menu pointer = %v", c.sent)
	}
}

func TestAwaitingAdminTextRelaysAndResets(t *testing.T) {
	a, bot := testApp(t)
	a.sessions.SetPhase(7, session.AwaitingAdminMessage)
	c := &fakeContext{
		sender: &tele.User{ID: 7, FirstName: "Raj"},
		msg:    &tele.Message{Text: "is there a discount?"},
	}

	if err := a.onText(c); err != nil {
		t.Fatalf("onText: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0] != tele.ChatID(99) {
		t.Fatalf("relayed to %v, want admin chat 99", bot.sent)
	}
	if got := a.sessions.Get(7).Phase; got != session.Browsing {
		t.Errorf("phase after relay = %v, want browsing", got)
	}
}

func TestFollowUpReplyRelaysWhileBrowsing(t *testing.T) {
	a, bot := testApp(t)
	c := &fakeContext{
		sender: &tele.User{ID: 7, FirstName: "Raj"},
		msg: &tele.Message{
			Text:    "thanks, one more thing",
			ReplyTo: &tele.Message{Text: relay.AdminReplyBody("see the site")},
		},
	}

	if err := a.onText(c); err != nil {
		t.Fatalf("onText: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0] != tele.ChatID(99) {
		t.Fatalf("follow-up relayed to %v, want admin chat 99", bot.sent)
	}
}

func TestAdminReplyRoutedToUser(t *testing.T) {
	a, bot := testApp(t)
	quoted := relay.UserMessageBody("Raj", 42, "General Query", "when does the batch start?")
	c := &fakeContext{
		sender: &tele.User{ID: 99},
		msg:    &tele.Message{Text: "Monday 9am", ReplyTo: &tele.Message{Text: quoted}},
	}

	if err := a.onText(c); err != nil {
		t.Fatalf("onText: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0] != tele.ChatID(42) {
		t.Fatalf("reply delivered to %v, want user chat 42", bot.sent)
	}
}

func TestScreenshotPhotoForwarded(t *testing.T) {
	a, bot := testApp(t)
	a.sessions.SetPhase(7, session.AwaitingPaymentScreenshot)
	c := &fakeContext{
		sender: &tele.User{ID: 7, FirstName: "Raj"},
		msg:    &tele.Message{Photo: &tele.Photo{}},
	}

	if err := a.onPhoto(c); err != nil {
		t.Fatalf("onPhoto: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0] != tele.ChatID(99) {
		t.Fatalf("screenshot relayed to %v, want admin chat 99", bot.sent)
	}
	if got := a.sessions.Get(7).Phase; got != session.Browsing {
		t.Errorf("phase after screenshot = %v, want browsing", got)
	}
}

func TestOtherMediaRepromptsPerPhase(t *testing.T) {
	a, bot := testApp(t)
	a.sessions.SetPhase(7, session.AwaitingPaymentScreenshot)
	c := &fakeContext{
		sender: &tele.User{ID: 7},
		msg:    &tele.Message{Sticker: &tele.Sticker{}},
	}

	if err := a.onOtherMedia(c); err != nil {
		t.Fatalf("onOtherMedia: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "payment screenshot") {
		t.Errorf("re-prompt = %v", c.sent)
	}
	if got := a.sessions.Get(7).Phase; got != session.AwaitingPaymentScreenshot {
		t.Errorf("phase = %v, want unchanged", got)
	}

	browsing := &fakeContext{
		sender: &tele.User{ID: 8},
		msg:    &tele.Message{Sticker: &tele.Sticker{}},
	}
	if err := a.onOtherMedia(browsing); err != nil {
		t.Fatalf("onOtherMedia browsing: %v", err)
	}
	if len(browsing.sent) != 0 {
		t.Errorf("browsing sticker answered: %v", browsing.sent)
	}
	if len(bot.sent) != 0 {
		t.Errorf("media reached the admin: %v", bot.sent)
	}
}

func TestCancelReturnsToMainMenu(t *testing.T) {
	a, _ := testApp(t)
	a.sessions.SetPhase(7, session.AwaitingAdminMessage)
	c := &fakeContext{
		sender: &tele.User{ID: 7, FirstName: "Raj"},
		msg:    &tele.Message{Text: "/cancel"},
	}

	if err := a.handleCancel(c); err != nil {
		t.Fatalf("handleCancel: %v", err)
	}
	if got := a.sessions.Get(7).Phase; got != session.Browsing {
		t.Errorf("phase = %v, want browsing", got)
	}
	if len(c.sent) != 2 {
		t.Fatalf("messages = %v, want cancel notice plus menu", c.sent)
	}
	if len(c.markups) == 0 {
		t.Fatal("main menu carried no keyboard")
	}
	var hasCourse bool
	for _, data := range buttonData(c.markups[len(c.markups)-1]) {
		if data == "c_gsssb" {
			hasCourse = true
		}
	}
	if !hasCourse {
		t.Error("menu after cancel misses the course button")
	}
}
