// Package router turns registry entries and the FSM into telebot routes.
package router

import (
	"github.com/m3rciful/reviewbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Options configures access checks and fallbacks shared by all routes.
type Options struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc

	UnknownText     tele.HandlerFunc
	UnknownCommand  tele.HandlerFunc
	UnknownCallback tele.HandlerFunc
}

// WithFallbacks fills the fallback handlers from fb, keeping any already set.
func (o Options) WithFallbacks(fb ui.FallbackProvider) Options {
	if fb == nil {
		return o
	}
	if o.UnknownText == nil {
		o.UnknownText = fb.UnknownText()
	}
	if o.UnknownCommand == nil {
		o.UnknownCommand = fb.UnknownCommand()
	}
	if o.UnknownCallback == nil {
		o.UnknownCallback = fb.UnknownCallback()
	}
	return o
}
