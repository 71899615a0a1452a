package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits Telebot's "\f<unique>|<payload>" callback encoding.
// Data without the form-feed marker is treated as a bare unique key.
func ParseCallbackData(data string) (unique, payload string) {
	raw := strings.TrimPrefix(data, "\f")
	unique, payload, _ = strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// Parse returns the unique key and payload of a callback. When Telebot already
// matched a "\f<unique>" endpoint it has split Data for us and set Unique.
func Parse(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return ParseCallbackData(cb.Data)
}

// CallbackKey returns the unique key of the current callback.
func CallbackKey(c tele.Context) string {
	key, _ := Parse(c.Callback())
	return key
}

// CallbackPayload returns the payload of the current callback.
func CallbackPayload(c tele.Context) string {
	_, payload := Parse(c.Callback())
	return payload
}
