package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/reviewbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// allowedUpdates is everything the review flow reacts to.
var allowedUpdates = []string{"message", "callback_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions selects between long polling and a webhook listener.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// LongPollTimeout is the getUpdates timeout, 10s when unset.
func (o PollerOptions) LongPollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds > 0 {
		return time.Duration(o.LongPollTimeoutSeconds) * time.Second
	}
	return defaultLongPollTimeout
}

func (o PollerOptions) webhook() bool {
	return strings.EqualFold(strings.TrimSpace(o.RunMode), coreconfig.RunModeWebhook)
}

func BuildPoller(opts PollerOptions) tele.Poller {
	if !opts.webhook() {
		return &tele.LongPoller{
			Timeout:        opts.LongPollTimeout(),
			AllowedUpdates: allowedUpdates,
		}
	}
	return &tele.Webhook{
		Listen:         net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
		AllowedUpdates: allowedUpdates,
		Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
	}
}
