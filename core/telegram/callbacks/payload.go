package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Data returns the raw callback data with telebot's \f prefix stripped.
// Buttons in this bot carry plain data strings (no unique|payload encoding),
// so the stripped data is the routing key itself.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	return strings.TrimPrefix(cb.Data, "\f")
}
