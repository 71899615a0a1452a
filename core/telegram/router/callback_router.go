package router

import (
	"log/slog"

	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute routes every callback through the registry by its unique key.
// Handlers answer the callback query themselves.
func CallbackRoute(reg *tg.Registry, opts Options) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.CallbackKey(c)
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		if reg != nil {
			if cbHandler, ok := reg.GetCallback(key); ok {
				return handleWithSummary(c, name, cbHandler, extras...)
			}
		}

		fallback := opts.UnknownCallback
		if fallback == nil && reg != nil {
			fallback = reg.CallbackNotFound()
		}
		if fallback == nil {
			fallback = func(c tele.Context) error { return c.Respond() }
		}
		return handleWithSummary(c, name, fallback, append(extras, slog.String("cause", "not_found"))...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
