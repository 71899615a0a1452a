package middleware

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/reviewbot/core/config"
	"github.com/m3rciful/reviewbot/core/logger"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return coreconfig.UpdateCallback
	case upd.Message != nil:
		return coreconfig.UpdateMessage
	case upd.Query != nil:
		return coreconfig.UpdateInlineQuery
	}
	return "other"
}

// limiter remembers when each user last got through. Entries older than
// interval carry no information and are pruned, at most once per interval.
type limiter struct {
	interval time.Duration

	mu        sync.Mutex
	lastSeen  map[int64]time.Time
	lastPrune time.Time
}

func newLimiter(interval time.Duration) *limiter {
	return &limiter{interval: interval, lastSeen: make(map[int64]time.Time)}
}

// allow records ts for userID unless the previous pass was within interval.
func (l *limiter) allow(userID int64, ts time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, seen := l.lastSeen[userID]; seen && ts.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[userID] = ts
	if ts.Sub(l.lastPrune) >= l.interval {
		maps.DeleteFunc(l.lastSeen, func(_ int64, last time.Time) bool {
			return ts.Sub(last) >= l.interval
		})
		l.lastPrune = ts
	}
	return true
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lastSeen)
}

// RateLimitMiddleware returns a middleware that enforces a minimum interval
// between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	lim := newLimiter(opts.Interval)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if lim.allow(user.ID, now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "skip"),
				slog.Int64("user_id", user.ID),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
