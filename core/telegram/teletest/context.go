// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Sent records one outgoing call made through the fake context.
type Sent struct {
	What any
	Opts []any
}

// Context implements the subset of tele.Context used by the bot's handlers.
// Calling any other method panics through the nil embedded interface.
type Context struct {
	tele.Context

	UpdateID int
	User     *tele.User
	ChatV    *tele.Chat
	Msg      *tele.Message
	CB       *tele.Callback

	// SendErr is returned by Send and Reply when set.
	SendErr error

	mu        sync.Mutex
	store     map[string]any
	sent      []Sent
	edited    []Sent
	responded []*tele.CallbackResponse
}

// NewText builds a context for a text message from userID in a chat of chatType.
func NewText(userID int64, chatType tele.ChatType, text string) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	chat := &tele.Chat{ID: userID, Type: chatType}
	return &Context{
		UpdateID: 1,
		User:     user,
		ChatV:    chat,
		Msg:      &tele.Message{ID: 10, Sender: user, Chat: chat, Text: text},
	}
}

// NewCallback builds a context for a pressed inline button already matched by
// Telebot, so Unique and Data are split.
func NewCallback(userID int64, unique, data string) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	chat := &tele.Chat{ID: userID, Type: tele.ChatPrivate}
	msg := &tele.Message{ID: 11, Sender: user, Chat: chat}
	return &Context{
		UpdateID: 2,
		User:     user,
		ChatV:    chat,
		CB:       &tele.Callback{ID: "cb", Sender: user, Message: msg, Unique: unique, Data: data},
	}
}

func (c *Context) Sender() *tele.User { return c.User }
func (c *Context) Chat() *tele.Chat   { return c.ChatV }

func (c *Context) Callback() *tele.Callback { return c.CB }

func (c *Context) Message() *tele.Message {
	if c.Msg != nil {
		return c.Msg
	}
	if c.CB != nil {
		return c.CB.Message
	}
	return nil
}

func (c *Context) Text() string {
	if c.Msg == nil {
		return ""
	}
	return c.Msg.Text
}

func (c *Context) Update() tele.Update {
	return tele.Update{ID: c.UpdateID, Message: c.Msg, Callback: c.CB}
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Reply(what any, opts ...any) error {
	return c.Send(what, opts...)
}

func (c *Context) Edit(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edited = append(c.edited, Sent{What: what, Opts: opts})
	return nil
}

func (c *Context) Respond(resp ...*tele.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(resp) == 0 {
		c.responded = append(c.responded, &tele.CallbackResponse{})
		return nil
	}
	c.responded = append(c.responded, resp[0])
	return nil
}

// Sent returns a copy of the recorded Send and Reply calls.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Texts returns the string payloads of recorded Send calls.
func (c *Context) Texts() []string {
	var out []string
	for _, s := range c.Sent() {
		if text, ok := s.What.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

// LastText returns the most recent string payload sent, or "".
func (c *Context) LastText() string {
	texts := c.Texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

// Edited returns a copy of the recorded Edit calls.
func (c *Context) Edited() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.edited...)
}

// Responses returns a copy of the recorded callback answers.
func (c *Context) Responses() []*tele.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*tele.CallbackResponse(nil), c.responded...)
}

// Reset drops recorded outgoing calls but keeps the stored values.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent, c.edited, c.responded = nil, nil, nil
}
