package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/reviewbot/core/config"
	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telegram = coreconfig.TelegramConfig{Token: "1:x", ChannelID: -100, AdminID: 9}
	cfg.Review.SessionTTLMinutes = 10
	return cfg
}

func TestNewWiresRoutes(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.dispatcher.Close()

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.Same(t, a.registry, opts.Registry)
	require.Same(t, a.dispatcher, opts.Dispatcher)
	require.NotEmpty(t, opts.Middlewares)

	var endpoints []any
	for _, r := range opts.Routes(tg.Runtime{}) {
		require.NotNil(t, r.Handler)
		endpoints = append(endpoints, r.Endpoint)
	}
	require.ElementsMatch(t, []any{"/start", "/cancel", "/stats", tele.OnText, tele.OnCallback}, endpoints)

	visible := a.registry.ListCommands(true)
	require.Len(t, visible, 2, "/stats stays out of the menu")
}

func TestOnStartWithoutBot(t *testing.T) {
	a, err := New(testConfig(), nil)
	require.NoError(t, err)
	defer a.dispatcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.onStart(ctx, tg.Runtime{}))
	cancel()
	require.NoError(t, a.Close())
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
}
