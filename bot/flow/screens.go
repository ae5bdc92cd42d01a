package flow

import (
	"fmt"
	"strings"

	"github.com/rajcricket/prepbot/bot/catalog"
	"github.com/rajcricket/prepbot/core/telegram/format"
	"github.com/rajcricket/prepbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Screen is a renderable storefront state: HTML text plus button rows.
type Screen struct {
	Text    string
	Buttons [][]keyboard.Btn
}

// Markup converts the button rows to a Telegram inline keyboard.
func (s Screen) Markup() *tele.ReplyMarkup {
	if len(s.Buttons) == 0 {
		return nil
	}
	return keyboard.Rows(s.Buttons...)
}

// Flow builds screens from the catalog.
type Flow struct {
	Catalog     *catalog.Registry
	PaymentLink string
}

// MainMenu is the course picker every conversation starts from.
func (f *Flow) MainMenu(firstName string) Screen {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}

	var rows [][]keyboard.Btn
	for _, course := range f.Catalog.Courses() {
		rows = append(rows, []keyboard.Btn{{
			Text: "📚 " + course.Name,
			Data: course.ID,
		}})
	}

	text := fmt.Sprintf("👋 Hello %s!\n\n%s\nChoose a course to explore demo lectures and study material:",
		format.Escape(name),
		format.Bold("Welcome to the exam preparation store."),
	)
	return Screen{Text: text, Buttons: rows}
}

// CourseMenu lists the subjects of a course. Purchase and support actions
// live on the subject screen.
func (f *Flow) CourseMenu(course *catalog.Course) Screen {
	var rows [][]keyboard.Btn
	for _, subj := range course.Subjects {
		rows = append(rows, []keyboard.Btn{{
			Text: subj.Name,
			Data: SubjectRef(course.ID, subj.ID),
		}})
	}
	rows = append(rows,
		[]keyboard.Btn{{Text: "🔙 Main Menu", Data: KeyMainMenu}},
	)

	text := fmt.Sprintf("%s\n\nPick a subject to preview its demo lecture and material:",
		format.Bold(course.Name),
	)
	return Screen{Text: text, Buttons: rows}
}

// SubjectMenu offers the demo assets of a subject.
func (f *Flow) SubjectMenu(course *catalog.Course, subj *catalog.Subject) Screen {
	rows := [][]keyboard.Btn{
		{{Text: "🎬 Demo Lecture", Data: DemoVideoRef(course.ID, subj.ID)}},
		{{Text: "📄 Demo Material", Data: DemoMaterialRef(course.ID, subj.ID)}},
		{{Text: "💰 Buy Full Course", Data: KeyBuyCourse}},
		{{Text: "💬 Talk to Admin", Data: KeyTalkAdmin}},
		{{Text: "🔙 Back", Data: course.ID}},
	}

	text := fmt.Sprintf("%s › %s\n\nWhat would you like to preview?",
		format.Bold(course.Name),
		format.Escape(subj.Name),
	)
	return Screen{Text: text, Buttons: rows}
}

// BuyScreen shows the price and checkout link of the selected course.
// returnTarget is the callback data of the screen "back" rebuilds.
func (f *Flow) BuyScreen(course *catalog.Course, returnTarget string) Screen {
	if returnTarget == "" {
		returnTarget = KeyMainMenu
	}
	rows := [][]keyboard.Btn{
		{{Text: "💳 Pay Now", URL: f.PaymentLink}},
		{{Text: "📸 Share Payment Screenshot", Data: KeyShareScreenshot}},
		{{Text: "🔙 Back", Data: returnTarget}},
	}

	text := fmt.Sprintf("%s\n\nPrice: %s\n\nPay using the link below, then share the payment screenshot here.\n%s",
		format.Bold(course.Name),
		format.Boldf("₹%d", course.Price),
		format.Italic("Access is unlocked after verification."),
	)
	return Screen{Text: text, Buttons: rows}
}

// UpsellMarkup is attached under delivered demo content.
func (f *Flow) UpsellMarkup(courseID string) *tele.ReplyMarkup {
	return keyboard.Column(
		keyboard.Btn{Text: "💰 Buy Full Course", Data: KeyBuyCourse},
		keyboard.Btn{Text: "🔙 Back", Data: courseID},
	)
}

// AdminPrompt asks the user to type the message that will be forwarded.
func AdminPrompt() string {
	return "✍️ Type your question and send it as one message. The admin will reply to you right here.\n\nSend /cancel to go back."
}

// ScreenshotPrompt asks the user to attach the payment proof photo.
func ScreenshotPrompt() string {
	return "📸 Send the payment screenshot as a photo. We will verify it and unlock your course.\n\nSend /cancel to go back."
}

// CancelNotice confirms leaving an input phase.
func CancelNotice() string {
	return "Cancelled. You are back to browsing."
}

// SessionExpiredNotice tells the user their navigation context is gone,
// typically after a bot restart.
func SessionExpiredNotice() string {
	return "⚠️ Session expired. Please start over using /start."
}
