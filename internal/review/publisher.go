package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrIncompleteDraft is returned when a draft misses a field.
	ErrIncompleteDraft = errors.New("review: incomplete draft")
	// ErrNotBound is returned when Publish runs before a Sender is bound.
	ErrNotBound = errors.New("review: publisher has no sender")
)

// Sender is the part of *tele.Bot used to post into the channel.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// PublisherOption customises a Publisher.
type PublisherOption func(*Publisher)

// WithJournal records every attempt in j.
func WithJournal(j Journal) PublisherOption {
	return func(p *Publisher) { p.journal = j }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.log = l }
}

// Publisher posts finished reviews to one channel. Each call sends at most
// once: failures are logged with the exact body and never retried.
type Publisher struct {
	channelID int64
	journal   Journal
	log       *slog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	sender Sender
}

// NewPublisher creates a publisher for the channel. Bind a Sender before use.
func NewPublisher(channelID int64, opts ...PublisherOption) *Publisher {
	p := &Publisher{channelID: channelID, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Bind sets the Sender, normally the running bot.
func (p *Publisher) Bind(s Sender) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sender = s
}

func (p *Publisher) logger() *slog.Logger {
	if p.log != nil {
		return p.log
	}
	return logger.Component("review.publish")
}

// Publish formats d and sends it to the channel with HTML parse mode.
// Every failure is logged as publish.fail together with the body.
func (p *Publisher) Publish(ctx context.Context, userID int64, d Draft) error {
	body := FormatPost(d)
	start := time.Now()
	if !d.Complete() {
		p.logFailure(ctx, ErrIncompleteDraft, body, start)
		return ErrIncompleteDraft
	}
	p.mu.RLock()
	s := p.sender
	p.mu.RUnlock()
	if s == nil {
		p.logFailure(ctx, ErrNotBound, body, start)
		p.record(ctx, NewEntry(userID, d, ErrNotBound, p.now()))
		return ErrNotBound
	}

	logger.LogEvent(ctx, p.logger(), slog.LevelDebug, "publish.attempt",
		slog.Int64("channel_id", p.channelID),
		slog.String("body", body),
	)
	msg, err := s.Send(tele.ChatID(p.channelID), body, &tele.SendOptions{ParseMode: tele.ModeHTML})
	if err != nil {
		err = fmt.Errorf("review: publish to channel %d: %w", p.channelID, err)
		p.logFailure(ctx, err, body, start)
	} else {
		attrs := []slog.Attr{
			slog.String("status", "ok"),
			slog.String("outcome", "published"),
			slog.Int64("channel_id", p.channelID),
			slog.String("category", string(d.Category)),
			slog.Int("rating", d.Rating),
			slog.Duration("duration", logger.Took(start)),
		}
		if msg != nil {
			attrs = append(attrs, slog.Int("review_id", msg.ID))
		}
		logger.LogEvent(ctx, p.logger(), slog.LevelInfo, "publish.ok", attrs...)
	}

	p.record(ctx, NewEntry(userID, d, err, p.now()))
	return err
}

func (p *Publisher) logFailure(ctx context.Context, err error, body string, start time.Time) {
	logger.LogEvent(ctx, p.logger(), slog.LevelError, "publish.fail",
		slog.String("status", "fail"),
		slog.Int64("channel_id", p.channelID),
		slog.String("err", sender.SanitizeError(err)),
		slog.String("err_code", sender.ClassifyError(err)),
		slog.Duration("duration", logger.Took(start)),
		slog.String("body", body),
	)
}

// record writes the journal entry; journal failures never reach the user.
func (p *Publisher) record(ctx context.Context, e Entry) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		logger.LogEvent(ctx, logger.Component("review.journal"), slog.LevelWarn, "journal.write",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
			slog.String("outcome", string(e.Status)),
		)
	}
}
