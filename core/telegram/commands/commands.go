package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly restricts the command to telegram.admin_id and hides it from the menu.
	AdminOnly bool
	// Hidden keeps a command out of the menu while leaving it callable.
	Hidden bool
}
