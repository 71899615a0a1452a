package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func TestBuildPollerLongpollDefaults(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	require.True(t, ok)
	require.Equal(t, 10*time.Second, p.Timeout)
	require.ElementsMatch(t, []string{"message", "callback_query"}, p.AllowedUpdates)
}

func TestBuildPollerWebhook(t *testing.T) {
	p, ok := BuildPoller(PollerOptions{
		RunMode: "WEBHOOK",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://example.org/hook"},
	}).(*tele.Webhook)
	require.True(t, ok)
	require.Equal(t, "0.0.0.0:8443", p.Listen)
	require.Equal(t, "https://example.org/hook", p.Endpoint.PublicURL)
}
