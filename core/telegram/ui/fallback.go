// Package ui declares the hooks features provide for updates no route claims.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider exposes handlers used when incoming updates
// cannot be mapped to commands, callbacks, or an active conversation.
type FallbackProvider interface {
	// UnknownText handles plain text outside any conversation.
	UnknownText() tele.HandlerFunc
	// UnknownCommand handles text starting with "/" that names no command.
	UnknownCommand() tele.HandlerFunc
	// UnknownCallback handles buttons whose key has no registered handler.
	UnknownCallback() tele.HandlerFunc
}
