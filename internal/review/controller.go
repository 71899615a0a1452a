package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/m3rciful/reviewbot/core/logger"
	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/callbacks"
	"github.com/m3rciful/reviewbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"
	"github.com/m3rciful/reviewbot/core/telegram/keyboard"
	"github.com/m3rciful/reviewbot/core/telegram/middleware"
	"github.com/m3rciful/reviewbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// Publishing is what the controller needs from a Publisher.
type Publishing interface {
	Publish(ctx context.Context, userID int64, d Draft) error
}

// Options wires a Controller.
type Options struct {
	Sessions  state.Manager[Draft]
	Publisher Publishing
	// Journal is optional and only feeds /stats.
	Journal Journal
	// SendsDelivered and SendFailures report asynchronous send outcomes; optional.
	SendsDelivered func() uint64
	SendFailures   func() uint64
}

// Controller drives the four-step review conversation.
type Controller struct {
	sessions       state.Manager[Draft]
	publisher      Publishing
	journal        Journal
	sendsDelivered func() uint64
	sendFailures   func() uint64
}

// NewController validates opts and returns a Controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Sessions == nil {
		return nil, errors.New("review: nil session manager")
	}
	if opts.Publisher == nil {
		return nil, errors.New("review: nil publisher")
	}
	return &Controller{
		sessions:       opts.Sessions,
		publisher:      opts.Publisher,
		journal:        opts.Journal,
		sendsDelivered: opts.SendsDelivered,
		sendFailures:   opts.SendFailures,
	}, nil
}

// Register binds commands, the category callback and the per-state text handlers.
func (ctl *Controller) Register(reg *tg.Registry) error {
	cmds := map[string]commands.Command{
		"/start":  {Handler: ctl.Start, Description: "Оставить отзыв"},
		"/cancel": {Handler: ctl.Cancel, Description: "Отменить отзыв"},
		"/stats":  {Handler: ctl.Stats, Description: "Статистика", AdminOnly: true, Hidden: true},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return fmt.Errorf("review: %w", err)
		}
	}

	guarded := middleware.State(ctl.sessions, StateCategory, ctl.staleChoice)(ctl.OnCategory)
	if err := reg.RegisterCallback(CallbackCategory, guarded); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	ctl.sessions.Handle(StateProduct, ctl.OnProduct)
	ctl.sessions.Handle(StateRating, ctl.OnRating)
	ctl.sessions.Handle(StateText, ctl.OnReview)
	return nil
}

func step(c tele.Context, from, next state.State) {
	logger.Debug(tghelpers.BuildContext(c), "review", "review.step",
		slog.String("state", string(from)),
		slog.String("next_state", string(next)),
	)
}

func isPrivate(c tele.Context) bool {
	chat := c.Chat()
	return chat != nil && chat.Type == tele.ChatPrivate
}

// Start begins a new conversation, dropping any unfinished draft.
func (ctl *Controller) Start(c tele.Context) error {
	if !isPrivate(c) || c.Sender() == nil {
		return tghelpers.SendText(c, MsgPrivateOnly)
	}
	userID := c.Sender().ID
	prev := ctl.sessions.GetState(userID)
	ctl.sessions.Start(userID, StateProduct)
	step(c, prev, StateProduct)
	return tghelpers.SendText(c, MsgAskProduct)
}

// Cancel ends the current conversation without publishing. Only the private
// chat the conversation lives in can cancel it.
func (ctl *Controller) Cancel(c tele.Context) error {
	if !isPrivate(c) {
		return tghelpers.SendText(c, MsgPrivateOnly)
	}
	sender := c.Sender()
	if sender == nil || !ctl.sessions.InProgress(sender.ID) {
		return tghelpers.SendText(c, MsgNothingToCancel)
	}
	prev := ctl.sessions.GetState(sender.ID)
	ctl.sessions.Clear(sender.ID)
	step(c, prev, state.StateIdle)
	return tghelpers.SendText(c, MsgCancelled, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

// OnProduct stores the product name.
func (ctl *Controller) OnProduct(c tele.Context) error {
	product := c.Text()
	if !ctl.sessions.Advance(c.Sender().ID, StateProduct, StateRating, func(d *Draft) { d.Product = product }) {
		return nil
	}
	step(c, StateProduct, StateRating)
	return tghelpers.SendText(c, MsgAskRating)
}

// OnRating validates and stores the rating, re-prompting on bad input.
func (ctl *Controller) OnRating(c tele.Context) error {
	rating, err := ParseRating(c.Text())
	switch {
	case errors.Is(err, ErrNotANumber):
		return tghelpers.SendText(c, MsgNotANumber)
	case errors.Is(err, ErrRatingOutOfRange):
		return tghelpers.SendText(c, MsgAskRating)
	}
	ok := ctl.sessions.Advance(c.Sender().ID, StateRating, StateText, func(d *Draft) {
		d.Rating = rating
		d.RatingSet = true
	})
	if !ok {
		return nil
	}
	step(c, StateRating, StateText)
	return tghelpers.SendText(c, MsgAskReview)
}

// OnReview stores the review text and shows the category chooser.
func (ctl *Controller) OnReview(c tele.Context) error {
	text := c.Text()
	if !ctl.sessions.Advance(c.Sender().ID, StateText, StateCategory, func(d *Draft) { d.ReviewText = text }) {
		return nil
	}
	step(c, StateText, StateCategory)
	return tghelpers.SendText(c, MsgChooseCategory, &tele.SendOptions{ReplyMarkup: CategoryKeyboard()})
}

// CategoryKeyboard is the one-row chooser with a button per category.
func CategoryKeyboard() *tele.ReplyMarkup {
	buttons := lo.Map(Categories(), func(cat Category, _ int) keyboard.InlineBtn {
		return keyboard.InlineBtn{Text: cat.Label(), Unique: CallbackCategory, Data: string(cat)}
	})
	return keyboard.InlineButtonsNPerRow(buttons, len(buttons))
}

// OnCategory finishes the conversation: it publishes the draft once and
// replaces the chooser with the outcome.
func (ctl *Controller) OnCategory(c tele.Context) error {
	category, err := ParseCategory(callbacks.CallbackPayload(c))
	if err != nil {
		return ctl.staleChoice(c)
	}
	userID := c.Sender().ID
	draft, ok := ctl.sessions.Take(userID, StateCategory)
	if !ok {
		return ctl.staleChoice(c)
	}
	_ = c.Respond()
	step(c, StateCategory, state.StateIdle)

	draft.Category = category
	ctx := tghelpers.BuildContext(c)
	result := MsgPublished
	if err := ctl.publisher.Publish(ctx, userID, draft); err != nil {
		result = MsgPublishFailed
	}
	return tghelpers.EditText(c, result)
}

func (ctl *Controller) staleChoice(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: MsgStaleChoice})
}

// Stats reports live counters to the admin.
func (ctl *Controller) Stats(c tele.Context) error {
	lines := []string{fmt.Sprintf("Активных отзывов: %d", ctl.sessions.Len())}
	if ctl.sendsDelivered != nil {
		lines = append(lines, fmt.Sprintf("Отправлено сообщений: %d", ctl.sendsDelivered()))
	}
	if ctl.sendFailures != nil {
		lines = append(lines, fmt.Sprintf("Ошибок отправки: %d", ctl.sendFailures()))
	}
	if ctl.journal != nil {
		counts, err := ctl.journal.Counts(tghelpers.BuildContext(c))
		if err != nil {
			logger.Warn(tghelpers.BuildContext(c), "review.journal", "journal.counts",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
			lines = append(lines, "Журнал недоступен")
		} else {
			lines = append(lines,
				fmt.Sprintf("Опубликовано: %d", counts[StatusPublished]),
				fmt.Sprintf("Не опубликовано: %d", counts[StatusFailed]),
			)
		}
	}
	return tghelpers.SendText(c, strings.Join(lines, "\n"))
}

// UnknownText answers stray text in private chats.
func (ctl *Controller) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if !isPrivate(c) {
			return nil
		}
		return tghelpers.SendText(c, MsgIdleHint)
	}
}

// UnknownCommand answers unregistered commands in private chats.
func (ctl *Controller) UnknownCommand() tele.HandlerFunc {
	return func(c tele.Context) error {
		if !isPrivate(c) {
			return nil
		}
		return tghelpers.SendText(c, MsgUnknownCommand)
	}
}

// UnknownCallback answers buttons nothing handles.
func (ctl *Controller) UnknownCallback() tele.HandlerFunc {
	return ctl.staleChoice
}

// RateLimited tells the user to slow down.
func RateLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: MsgRateLimited})
	}
	return tghelpers.SendText(c, MsgRateLimited)
}

// AdminOnly rejects admin commands from other users.
func AdminOnly(c tele.Context) error {
	return tghelpers.SendText(c, MsgAdminOnly)
}
