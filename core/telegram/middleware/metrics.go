package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

type replyCounters struct {
	messages atomic.Int32
	kb       atomic.Bool
}

// metricsContext wraps tele.Context to count replies and detect keyboard usage.
type metricsContext struct {
	tele.Context
	counters *replyCounters
}

func (m metricsContext) record(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	m.counters.messages.Add(1)
	if hasKeyboard(opts) {
		m.counters.kb.Store(true)
	}
	return nil
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil && !v.ReplyMarkup.RemoveKeyboard {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil && !v.RemoveKeyboard {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Send(what, opts...), opts)
}

func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Reply(what, opts...), opts)
}

func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.record(m.Context.Edit(what, opts...), opts)
}

// MessageMetricsMiddleware instruments the context so handler summaries can
// report how many messages a handler sent and whether a keyboard was attached.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		counters := &replyCounters{}
		c.Set(countersKey, counters)
		return next(metricsContext{Context: c, counters: counters})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
// Replies still queued in the dispatcher are not counted yet.
func GetCounters(c tele.Context) (int, bool) {
	counters, ok := c.Get(countersKey).(*replyCounters)
	if !ok || counters == nil {
		return 0, false
	}
	return int(counters.messages.Load()), counters.kb.Load()
}
