package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const keepLoggedFor = 10 * time.Second

// recentUpdates remembers update ids whose receipt line was already written.
var recentUpdates = struct {
	sync.Mutex
	seen map[int]time.Time
}{seen: make(map[int]time.Time)}

func alreadyLogged(updateID int, now time.Time) bool {
	recentUpdates.Lock()
	defer recentUpdates.Unlock()
	for id, ts := range recentUpdates.seen {
		if now.Sub(ts) > keepLoggedFor {
			delete(recentUpdates.seen, id)
		}
	}
	if _, ok := recentUpdates.seen[updateID]; ok {
		return true
	}
	recentUpdates.seen[updateID] = now
	return false
}

// LoggerMiddleware assigns the request id, caches the logging context on the
// update and writes one sampled debug receipt line per update id.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		updateID, chatID, userID := tghelpers.UpdateMeta(c)

		rid := logger.BuildRID(updateID, chatID, userID)
		c.Set(tghelpers.RIDKey, rid)
		ctx := tghelpers.NewContext(c, rid)
		tghelpers.StoreContext(c, ctx)

		if !logger.ShouldSampleDebug() || alreadyLogged(updateID, time.Now()) {
			return next(c)
		}

		attrs := []slog.Attr{slog.String("status", "ok")}
		if chat := c.Chat(); chat != nil {
			attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
		}
		if user := c.Sender(); user != nil {
			if user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
		}
		switch {
		case upd.Callback != nil:
			key, payload := callbacks.Parse(upd.Callback)
			if key != "" {
				attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
			}
			if payload != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
			}
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
		}
		logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		return next(c)
	}
}
