package review

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/router"
	"github.com/m3rciful/reviewbot/core/telegram/state"
	"github.com/m3rciful/reviewbot/core/telegram/teletest"
)

const testChannel int64 = -1001234

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	args := m.Called(to, what, opts)
	msg, _ := args.Get(0).(*tele.Message)
	return msg, args.Error(1)
}

type memJournal struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (j *memJournal) Record(_ context.Context, e Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) Counts(context.Context) (map[Status]int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := map[Status]int{}
	for _, e := range j.entries {
		out[e.Status]++
	}
	return out, nil
}

type logRecord struct {
	level slog.Level
	attrs map[string]string
}

// captureHandler keeps log records in memory for assertions.
type captureHandler struct {
	mu      sync.Mutex
	records []logRecord
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler       { return h }
func (h *captureHandler) WithGroup(string) slog.Handler            { return h }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	rec := logRecord{level: r.Level, attrs: map[string]string{}}
	r.Attrs(func(a slog.Attr) bool {
		rec.attrs[a.Key] = a.Value.String()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, rec)
	return nil
}

func (h *captureHandler) find(event string) (logRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.attrs["event"] == event {
			return r, true
		}
	}
	return logRecord{}, false
}

type harness struct {
	sessions state.Manager[Draft]
	sender   *mockSender
	journal  *memJournal
	logs     *captureHandler
	ctl      *Controller
	text     tele.HandlerFunc
	callback tele.HandlerFunc
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sessions: state.NewMemoryManager[Draft](state.Options{}),
		sender:   &mockSender{},
		journal:  &memJournal{},
		logs:     &captureHandler{},
	}
	pub := NewPublisher(testChannel, WithJournal(h.journal), WithLogger(slog.New(h.logs)))
	pub.Bind(h.sender)

	ctl, err := NewController(Options{
		Sessions:       h.sessions,
		Publisher:      pub,
		Journal:        h.journal,
		SendsDelivered: func() uint64 { return 12 },
		SendFailures:   func() uint64 { return 3 },
	})
	require.NoError(t, err)
	h.ctl = ctl

	reg := tg.NewRegistry()
	require.NoError(t, ctl.Register(reg))
	opts := router.Options{AdminID: 1, OnAdminReject: AdminOnly}.WithFallbacks(ctl)
	h.text = router.TextRoutes(h.sessions, reg, opts)[0].Handler
	h.callback = router.CallbackRoute(reg, opts).Handler
	return h
}

func (h *harness) say(t *testing.T, userID int64, text string) *teletest.Context {
	t.Helper()
	c := teletest.NewText(userID, tele.ChatPrivate, text)
	require.NoError(t, h.text(c))
	return c
}

// pick presses a category button the way Telebot delivers it to OnCallback.
func (h *harness) pick(t *testing.T, userID int64, payload string) *teletest.Context {
	t.Helper()
	c := teletest.NewCallback(userID, "", "\f"+CallbackCategory+"|"+payload)
	require.NoError(t, h.callback(c))
	return c
}

func (h *harness) walkToCategory(t *testing.T, userID int64) {
	t.Helper()
	h.say(t, userID, "/start")
	h.say(t, userID, "Товар А")
	h.say(t, userID, "5")
	h.say(t, userID, "Отлично!")
	require.Equal(t, StateCategory, h.sessions.GetState(userID))
}

func TestConversationPublishesOnce(t *testing.T) {
	h := newHarness(t)
	h.sender.On("Send", tele.ChatID(testChannel), mock.AnythingOfType("string"), mock.Anything).
		Return(&tele.Message{ID: 77}, nil).Once()

	require.Equal(t, MsgAskProduct, h.say(t, 5, "/start").LastText())
	require.Equal(t, StateProduct, h.sessions.GetState(5))
	require.Equal(t, MsgAskRating, h.say(t, 5, "Товар А").LastText())
	require.Equal(t, MsgAskReview, h.say(t, 5, "5").LastText())

	c := h.say(t, 5, "Отлично!")
	require.Equal(t, MsgChooseCategory, c.LastText())
	sent := c.Sent()
	opts, ok := sent[len(sent)-1].Opts[0].(*tele.SendOptions)
	require.True(t, ok)
	require.Len(t, opts.ReplyMarkup.InlineKeyboard, 1)
	row := opts.ReplyMarkup.InlineKeyboard[0]
	require.Len(t, row, 3)
	require.Equal(t, []string{"Чай", "Доставка", "Сервис"}, []string{row[0].Text, row[1].Text, row[2].Text})

	cb := h.pick(t, 5, "tea")

	h.sender.AssertNumberOfCalls(t, "Send", 1)
	call := h.sender.Calls[0]
	body := call.Arguments.Get(1).(string)
	require.Contains(t, body, "Товар А")
	require.Contains(t, body, "⭐⭐⭐⭐⭐")
	require.Contains(t, body, "Отлично!")
	require.Contains(t, body, "#отзыв ")
	require.Contains(t, body, "#отзыв_чай")
	sendOpts := call.Arguments.Get(2).([]interface{})[0].(*tele.SendOptions)
	require.Equal(t, tele.ModeHTML, sendOpts.ParseMode)

	edits := cb.Edited()
	require.Len(t, edits, 1)
	require.Equal(t, MsgPublished, edits[0].What)
	require.False(t, h.sessions.InProgress(5))

	require.Len(t, h.journal.entries, 1)
	require.Equal(t, StatusPublished, h.journal.entries[0].Status)
	require.Equal(t, CategoryTea, h.journal.entries[0].Category)

	rec, ok := h.logs.find("publish.ok")
	require.True(t, ok)
	require.Equal(t, "77", rec.attrs["review_id"])

	again := h.pick(t, 5, "tea")
	h.sender.AssertNumberOfCalls(t, "Send", 1)
	require.Equal(t, MsgStaleChoice, again.Responses()[0].Text)
}

func TestRatingValidation(t *testing.T) {
	for _, in := range []string{"0", "1", "2", "3", "4", "5", " 3 "} {
		t.Run("accept "+in, func(t *testing.T) {
			h := newHarness(t)
			h.say(t, 1, "/start")
			h.say(t, 1, "p")
			require.Equal(t, MsgAskReview, h.say(t, 1, in).LastText())
			sess, ok := h.sessions.Get(1)
			require.True(t, ok)
			require.Equal(t, StateText, sess.State)
			require.True(t, sess.Data.RatingSet)
			want, _ := ParseRating(in)
			require.Equal(t, want, sess.Data.Rating)
		})
	}

	cases := map[string]string{
		"abc": MsgNotANumber,
		"4.5": MsgNotANumber,
		"":    MsgNotANumber,
		"6":   MsgAskRating,
		"-1":  MsgAskRating,
	}
	for in, reply := range cases {
		t.Run("reject "+in, func(t *testing.T) {
			h := newHarness(t)
			h.say(t, 1, "/start")
			h.say(t, 1, "p")
			before, _ := h.sessions.Get(1)

			require.Equal(t, reply, h.say(t, 1, in).LastText())
			after, ok := h.sessions.Get(1)
			require.True(t, ok)
			require.Equal(t, StateRating, after.State)
			require.Equal(t, before.Data, after.Data)
		})
	}
}

func TestCancelMidReview(t *testing.T) {
	h := newHarness(t)
	h.say(t, 2, "/start")
	h.say(t, 2, "Товар")
	h.say(t, 2, "4")
	require.Equal(t, StateText, h.sessions.GetState(2))

	require.Equal(t, MsgCancelled, h.say(t, 2, "/cancel").LastText())
	require.False(t, h.sessions.InProgress(2))
	require.Equal(t, MsgNothingToCancel, h.say(t, 2, "/cancel").LastText())

	h.pick(t, 2, "tea")
	h.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	require.Empty(t, h.journal.entries)
}

func TestCancelDuringCategoryLeavesStaleButtons(t *testing.T) {
	h := newHarness(t)
	h.walkToCategory(t, 3)
	h.say(t, 3, "/cancel")

	cb := h.pick(t, 3, "service")
	require.Equal(t, MsgStaleChoice, cb.Responses()[0].Text)
	require.Empty(t, cb.Edited())
	h.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishFailure(t *testing.T) {
	h := newHarness(t)
	h.sender.On("Send", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("telegram: chat not found (400)")).Once()

	h.walkToCategory(t, 4)
	cb := h.pick(t, 4, "delivery")

	h.sender.AssertNumberOfCalls(t, "Send", 1)
	edits := cb.Edited()
	require.Len(t, edits, 1)
	require.Equal(t, MsgPublishFailed, edits[0].What)
	require.Empty(t, cb.Texts(), "no extra messages besides the edited status")
	require.False(t, h.sessions.InProgress(4))

	rec, ok := h.logs.find("publish.fail")
	require.True(t, ok)
	require.Equal(t, slog.LevelError, rec.level)
	want := FormatPost(Draft{Product: "Товар А", Rating: 5, RatingSet: true, ReviewText: "Отлично!", Category: CategoryDelivery})
	require.Equal(t, want, rec.attrs["body"])
	require.Contains(t, rec.attrs["err"], "chat not found")

	require.Len(t, h.journal.entries, 1)
	require.Equal(t, StatusFailed, h.journal.entries[0].Status)
	require.Contains(t, h.journal.entries[0].Error, "chat not found")
}

func TestJournalFailureIsNotSurfaced(t *testing.T) {
	h := newHarness(t)
	h.journal.err = errors.New("db down")
	h.sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(&tele.Message{ID: 1}, nil)

	h.walkToCategory(t, 6)
	cb := h.pick(t, 6, "tea")
	require.Equal(t, MsgPublished, cb.Edited()[0].What)
}

func TestStartOutsidePrivateChat(t *testing.T) {
	h := newHarness(t)
	for _, kind := range []tele.ChatType{tele.ChatGroup, tele.ChatSuperGroup, tele.ChatChannel} {
		c := teletest.NewText(8, kind, "/start")
		require.NoError(t, h.text(c))
		require.Equal(t, MsgPrivateOnly, c.LastText())
		require.False(t, h.sessions.InProgress(8))
	}
}

func TestGroupMessagesLeavePrivateSessionAlone(t *testing.T) {
	h := newHarness(t)
	h.say(t, 9, "/start")

	inGroup := func(text string) *teletest.Context {
		c := teletest.NewText(9, tele.ChatGroup, text)
		c.ChatV.ID = -500
		require.NoError(t, h.text(c))
		return c
	}

	chatter := inGroup("hello everyone")
	require.Empty(t, chatter.Sent())
	sess, ok := h.sessions.Get(9)
	require.True(t, ok)
	require.Equal(t, StateProduct, sess.State)
	require.Empty(t, sess.Data.Product)

	cancel := inGroup("/cancel")
	require.Equal(t, MsgPrivateOnly, cancel.LastText())
	require.True(t, h.sessions.InProgress(9))

	require.Equal(t, MsgAskRating, h.say(t, 9, "Товар А").LastText())
	sess, _ = h.sessions.Get(9)
	require.Equal(t, "Товар А", sess.Data.Product)
}

func TestStartRestartsConversation(t *testing.T) {
	h := newHarness(t)
	h.say(t, 9, "/start")
	h.say(t, 9, "old")
	h.say(t, 9, "2")

	require.Equal(t, MsgAskProduct, h.say(t, 9, "/start").LastText())
	sess, ok := h.sessions.Get(9)
	require.True(t, ok)
	require.Equal(t, StateProduct, sess.State)
	require.Equal(t, Draft{}, sess.Data)
}

func TestUnknownCategoryPayload(t *testing.T) {
	h := newHarness(t)
	h.walkToCategory(t, 10)

	cb := h.pick(t, 10, "coffee")
	require.Equal(t, MsgStaleChoice, cb.Responses()[0].Text)
	require.Equal(t, StateCategory, h.sessions.GetState(10))
	h.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommandsAndFallbacks(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, MsgIdleHint, h.say(t, 11, "hello").LastText())
	require.Equal(t, MsgUnknownCommand, h.say(t, 11, "/nope").LastText())

	h.say(t, 11, "/start")
	require.Equal(t, MsgUnknownCommand, h.say(t, 11, "/product").LastText())
	require.Equal(t, StateProduct, h.sessions.GetState(11), "slash text is never a product name")

	group := teletest.NewText(12, tele.ChatGroup, "chatter")
	require.NoError(t, h.text(group))
	require.Empty(t, group.Sent())
}

func TestStatsIsAdminOnly(t *testing.T) {
	h := newHarness(t)
	h.sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(&tele.Message{ID: 1}, nil)
	h.walkToCategory(t, 20)
	h.pick(t, 20, "tea")
	h.say(t, 21, "/start")

	require.Equal(t, MsgAdminOnly, h.say(t, 21, "/stats").LastText())

	report := h.say(t, 1, "/stats").LastText()
	require.Contains(t, report, "Активных отзывов: 1")
	require.Contains(t, report, "Отправлено сообщений: 12")
	require.Contains(t, report, "Ошибок отправки: 3")
	require.Contains(t, report, "Опубликовано: 1")
	require.Contains(t, report, "Не опубликовано: 0")
}

func TestPublisherGuards(t *testing.T) {
	snd := &mockSender{}
	logs := &captureHandler{}
	journal := &memJournal{}
	pub := NewPublisher(testChannel, WithLogger(slog.New(logs)), WithJournal(journal))
	full := Draft{Product: "p", RatingSet: true, ReviewText: "r", Category: CategoryTea}

	require.ErrorIs(t, pub.Publish(context.Background(), 1, full), ErrNotBound)
	rec, ok := logs.find("publish.fail")
	require.True(t, ok)
	require.Equal(t, slog.LevelError, rec.level)
	require.Equal(t, FormatPost(full), rec.attrs["body"])
	require.Contains(t, rec.attrs["err"], "no sender")
	require.Len(t, journal.entries, 1)
	require.Equal(t, StatusFailed, journal.entries[0].Status)

	pub.Bind(snd)
	logs.records = nil
	require.ErrorIs(t, pub.Publish(context.Background(), 1, Draft{Product: "p"}), ErrIncompleteDraft)
	rec, ok = logs.find("publish.fail")
	require.True(t, ok)
	require.Contains(t, rec.attrs["err"], "incomplete draft")
	require.Len(t, journal.entries, 1, "incomplete drafts are not journaled")
	snd.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewControllerRequiresDependencies(t *testing.T) {
	_, err := NewController(Options{})
	require.Error(t, err)
	_, err = NewController(Options{Sessions: state.NewMemoryManager[Draft](state.Options{})})
	require.Error(t, err)
}
