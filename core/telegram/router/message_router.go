package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/reviewbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM defines the minimal interface for an FSM manager.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

func privateChat(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate
}

// TextRoutes builds the OnText route. Commands always win over the FSM and
// text starting with "/" never reaches a state handler. Conversations are
// private: text from groups and channels never advances a session.
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts Options) []tg.Route {
	handler := func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())

		if strings.HasPrefix(text, "/") {
			if reg != nil {
				if name, def, ok := reg.LookupCommand(text); ok && def.Handler != nil {
					return commandHandler(name, def, opts)(c)
				}
			}
			if opts.UnknownCommand != nil {
				return handleWithSummary(c, "unknown_command", opts.UnknownCommand)
			}
			logHandlerSummary(c, "unknown_command", time.Now(), "skip", nil)
			return nil
		}

		if sender := c.Sender(); fsmMgr != nil && sender != nil && privateChat(c) && fsmMgr.InProgress(sender.ID) {
			return handleWithSummary(c, "fsm", fsmMgr.ManagerHandler)
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", opts.UnknownText)
		}
		logHandlerSummary(c, "unknown_text", time.Now(), "skip", nil)
		return nil
	}

	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}
