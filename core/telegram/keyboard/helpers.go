package keyboard

import tele "gopkg.in/telebot.v4"

// Btn describes an inline button carrying either raw callback data or a URL.
type Btn struct {
	Text string
	Data string
	URL  string
}

// Rows builds an inline keyboard from explicit rows of Btn.
func Rows(rows ...[]Btn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			r = append(r, tele.InlineButton{Text: b.Text, Data: b.Data, URL: b.URL})
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Column builds an inline keyboard with one button per row.
func Column(buttons ...Btn) *tele.ReplyMarkup {
	rows := make([][]Btn, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []Btn{b})
	}
	return Rows(rows...)
}
