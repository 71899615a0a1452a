package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"
	"github.com/m3rciful/reviewbot/core/telegram/state"
	"github.com/m3rciful/reviewbot/core/telegram/teletest"
)

func ok(tele.Context) error { return nil }

func TestRateLimitMiddleware(t *testing.T) {
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Exclude:   map[string]struct{}{"callback": {}},
		OnLimited: func(tele.Context) error { limited++; return nil },
		Now:       func() time.Time { return now },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	c := teletest.NewText(7, tele.ChatPrivate, "hi")
	require.NoError(t, h(c))
	require.NoError(t, h(c))
	require.Equal(t, 1, calls)
	require.Equal(t, 1, limited)

	cb := teletest.NewCallback(7, "pick", "x")
	require.NoError(t, h(cb))
	require.Equal(t, 2, calls, "callbacks are excluded")

	now = now.Add(2 * time.Second)
	require.NoError(t, h(c))
	require.Equal(t, 3, calls)
}

func TestLimiterPrunesStaleUsers(t *testing.T) {
	lim := newLimiter(time.Second)
	start := time.Unix(1000, 0)

	for id := int64(1); id <= 50; id++ {
		require.True(t, lim.allow(id, start))
	}
	require.False(t, lim.allow(7, start.Add(500*time.Millisecond)))
	require.Equal(t, 50, lim.size())

	later := start.Add(3 * time.Second)
	require.True(t, lim.allow(99, later))
	require.Equal(t, 1, lim.size(), "users idle longer than the interval are forgotten")
	require.True(t, lim.allow(7, later.Add(time.Second)))
}

type fixedState map[int64]state.State

func (f fixedState) GetState(userID int64) state.State {
	if st, ok := f[userID]; ok {
		return st
	}
	return state.StateIdle
}

func TestStateGuard(t *testing.T) {
	const want state.State = "review.category"
	skipped := 0
	guard := State(fixedState{1: want}, want, func(tele.Context) error { skipped++; return nil })
	passed := 0
	h := guard(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(teletest.NewCallback(1, "k", "v")))
	require.NoError(t, h(teletest.NewCallback(2, "k", "v")))
	require.Equal(t, 1, passed)
	require.Equal(t, 1, skipped)

	dropping := State(fixedState{}, want, nil)(func(tele.Context) error { passed++; return nil })
	require.NoError(t, dropping(teletest.NewCallback(1, "k", "v")))
	require.Equal(t, 1, passed)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	rejected := 0
	opts := AdminOptions{AdminID: 42, OnReject: func(tele.Context) error { rejected++; return nil }}
	passed := 0
	h := AdminOnlyMiddleware(opts)(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(teletest.NewText(42, tele.ChatPrivate, "/stats")))
	require.NoError(t, h(teletest.NewText(5, tele.ChatPrivate, "/stats")))
	require.Equal(t, 1, passed)
	require.Equal(t, 1, rejected)

	noAdmin := AdminOnlyMiddleware(AdminOptions{})(func(tele.Context) error { passed++; return nil })
	require.NoError(t, noAdmin(teletest.NewText(42, tele.ChatPrivate, "/stats")))
	require.Equal(t, 1, passed)
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(teletest.NewText(1, tele.ChatPrivate, "x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	require.ErrorIs(t, h(teletest.NewText(1, tele.ChatPrivate, "x")), want)
}

func TestMessageMetricsMiddleware(t *testing.T) {
	c := teletest.NewText(1, tele.ChatPrivate, "x")
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := c.Send("one"); err != nil {
			return err
		}
		return c.Send("two", &tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}})
	})
	require.NoError(t, h(c))
	msgs, kb := GetCounters(c)
	require.Equal(t, 2, msgs)
	require.True(t, kb)
	require.Len(t, c.Sent(), 2)

	msgs, kb = GetCounters(teletest.NewText(1, tele.ChatPrivate, "x"))
	require.Zero(t, msgs)
	require.False(t, kb)
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	c := teletest.NewText(9, tele.ChatPrivate, "hello")
	require.NoError(t, LoggerMiddleware(ok)(c))

	rid, _ := c.Get(tghelpers.RIDKey).(string)
	require.NotEmpty(t, rid)
	_, found := tghelpers.ContextFrom(c)
	require.True(t, found)
}
