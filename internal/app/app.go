// Package app assembles the review bot from its parts.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/reviewbot/core/bootstrap"
	"github.com/m3rciful/reviewbot/core/logger"
	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/router"
	"github.com/m3rciful/reviewbot/core/telegram/sender"
	"github.com/m3rciful/reviewbot/core/telegram/state"
	"github.com/m3rciful/reviewbot/internal/config"
	"github.com/m3rciful/reviewbot/internal/review"
	"github.com/m3rciful/reviewbot/internal/storage"
	"github.com/m3rciful/reviewbot/migrations"
)

// App owns the long-lived components of one bot process.
type App struct {
	cfg   *config.Config
	infra *bootstrap.Result

	registry   *tg.Registry
	dispatcher *sender.Dispatcher
	sessions   state.Manager[review.Draft]
	publisher  *review.Publisher
	controller *review.Controller
}

// Bootstrap initializes logging and the optional journal database, then builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	infra, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:     cfg.CoreConfig(),
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return a, nil
}

// New wires the bot on top of already initialized infrastructure; infra may be nil.
func New(cfg *config.Config, infra *bootstrap.Result) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if infra == nil {
		infra = &bootstrap.Result{}
	}

	var journal review.Journal
	if infra.DB != nil {
		journal = storage.NewJournal(infra.DB)
	}

	a := &App{
		cfg:        cfg,
		infra:      infra,
		registry:   tg.NewRegistry(),
		dispatcher: sender.NewDispatcher(sender.Options{MaxRetries: 2}),
		sessions:   state.NewMemoryManager[review.Draft](state.Options{TTL: cfg.Review.SessionTTL()}),
	}
	a.publisher = review.NewPublisher(cfg.Telegram.ChannelID, review.WithJournal(journal))

	ctl, err := review.NewController(review.Options{
		Sessions:       a.sessions,
		Publisher:      a.publisher,
		Journal:        journal,
		SendsDelivered: a.dispatcher.SentCount,
		SendFailures:   a.dispatcher.ErrorCount,
	})
	if err != nil {
		return nil, err
	}
	if err := ctl.Register(a.registry); err != nil {
		return nil, err
	}
	a.controller = ctl
	return a, nil
}

func (a *App) routes(tg.Runtime) []tg.Route {
	opts := router.Options{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: review.AdminOnly,
	}.WithFallbacks(a.controller)

	routes := router.CommandRoutes(a.registry, opts)
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, opts)...)
	return append(routes, router.CallbackRoute(a.registry, opts))
}

// TelegramRunOptions describes how the runtime should run this bot.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(a.cfg.CoreConfig(), review.RateLimited),
		Routes:      a.routes,
		OnStart:     a.onStart,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot != nil {
		a.publisher.Bind(rt.Bot)
	}
	if every := a.cfg.Review.SweepInterval(); every > 0 {
		go state.RunSweeper(ctx, a.sessions, every)
	}
	logger.Info(ctx, "review", "review.ready",
		slog.Int64("channel_id", a.cfg.Telegram.ChannelID),
		slog.Bool("db", a.infra.DB != nil),
		slog.Duration("ttl", a.cfg.Review.SessionTTL()),
	)
	return nil
}

// Close releases the database; the runtime already closed the dispatcher.
func (a *App) Close() error {
	return a.infra.Close()
}
