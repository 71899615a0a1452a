package keyboard

import (
	"github.com/samber/lo"
	tele "gopkg.in/telebot.v4"
)

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// RemoveKeyboard returns a markup that hides the keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.InlineKeyboard = lo.Map(rows, func(row []InlineBtn, _ int) []tele.InlineButton {
		return lo.Map(row, func(btn InlineBtn, _ int) tele.InlineButton {
			return *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		})
	})
	return markup
}

// InlineButtonsNPerRow splits a flat list of buttons into rows with up to n buttons per row.
// If n <= 1, every button gets its own row.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	if n < 1 {
		n = 1
	}
	return InlineButtonsRows(lo.Chunk(buttons, n)...)
}
