package middleware

import (
	"log/slog"

	"github.com/m3rciful/reviewbot/core/logger"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"
	"github.com/m3rciful/reviewbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// StateGetter is the minimal interface required from an FSM manager.
type StateGetter interface {
	GetState(userID int64) state.State
}

// State lets the update through only when the sender is in the expected FSM
// state. Other updates go to onSkip, or are dropped when onSkip is nil.
func State(mgr StateGetter, expected state.State, onSkip tele.HandlerFunc) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			current := state.StateIdle
			if sender != nil {
				current = mgr.GetState(sender.ID)
			}
			if sender != nil && current == expected {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "fsm.skip",
				slog.String("status", "skip"),
				slog.String("state", string(current)),
				slog.String("next_state", string(expected)),
			)
			if onSkip != nil {
				return onSkip(c)
			}
			return nil
		}
	}
}
