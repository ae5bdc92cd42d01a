package format

import (
	"fmt"
	"html"
)

// Escape makes arbitrary user text safe for Telegram HTML parse mode.
// Unlike Markdown escaping this never rewrites plain punctuation, which
// matters for text protocols embedded in message bodies.
func Escape(text string) string {
	return html.EscapeString(text)
}

// Bold wraps escaped text in bold tags.
func Bold(text string) string {
	return "<b>" + Escape(text) + "</b>"
}

// Italic wraps escaped text in italic tags.
func Italic(text string) string {
	return "<i>" + Escape(text) + "</i>"
}

// Code wraps escaped text in a monospace span.
func Code(text string) string {
	return "<code>" + Escape(text) + "</code>"
}

// Boldf formats and wraps in bold tags; arguments are escaped individually
// by the caller when they carry user input.
func Boldf(formatStr string, args ...any) string {
	return "<b>" + fmt.Sprintf(formatStr, args...) + "</b>"
}
