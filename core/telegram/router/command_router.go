package router

import (
	"log/slog"

	"github.com/m3rciful/reviewbot/core/logger"
	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/commands"
	"github.com/m3rciful/reviewbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

func commandHandler(name string, def commands.Command, opts Options) tele.HandlerFunc {
	h := def.Handler
	if def.AdminOnly {
		h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
			AdminID:  opts.AdminID,
			OnReject: opts.OnAdminReject,
		})(h)
	}
	handlerName := normalizeHandlerName(name)
	return func(c tele.Context) error {
		return handleWithSummary(c, handlerName, h)
	}
}

// CommandRoutes binds every registered command to its endpoint.
// Global middlewares are applied by the bot, not here.
func CommandRoutes(reg *tg.Registry, opts Options) []tg.Route {
	if reg == nil {
		return nil
	}

	defs := reg.Commands()
	routes := make([]tg.Route, 0, len(defs))
	for name, def := range defs {
		routes = append(routes, tg.Route{Endpoint: name, Handler: commandHandler(name, def, opts)})
	}

	logger.LogEvent(logger.Background(), logger.TWire, slog.LevelInfo, "complete",
		slog.Int("commands", len(defs)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
