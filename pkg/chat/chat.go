// Package chat is the support chat of the storefront.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"julianmorley.ca/con-plar/storefront/pkg/clock"
)

const (
	Greeting    = "Hi! How can we help you today?"
	CannedReply = "Thank you for your message! Our team will get back to you soon."

	DefaultDelay = time.Second
)

var ErrEmptyMessage = errors.New("message is empty")

type Sender string

const (
	FromBot  Sender = "bot"
	FromUser Sender = "user"
)

type Message struct {
	From Sender `json:"from"`
	Text string `json:"text"`
}

// Responder produces the bot's reply to the conversation so far
type Responder interface {
	Reply(ctx context.Context, history []Message) (string, error)
}

// CannedResponder always sends CannedReply after Delay
type CannedResponder struct {
	Delay time.Duration
	Clock clock.Clock
}

func (r CannedResponder) Reply(ctx context.Context, _ []Message) (string, error) {
	if err := clock.Sleep(ctx, r.Clock, r.Delay); err != nil {
		return "", err
	}
	return CannedReply, nil
}

type Conversation struct {
	mu        sync.Mutex
	messages  []Message
	responder Responder
	log       *slog.Logger
}

func NewConversation(responder Responder, log *slog.Logger) *Conversation {
	if log == nil {
		log = slog.Default()
	}
	return &Conversation{
		messages:  []Message{{From: FromBot, Text: Greeting}},
		responder: responder,
		log:       log,
	}
}

func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Send posts text and waits for the reply. Blank text is rejected. If the
// responder fails the canned reply is used instead.
func (c *Conversation) Send(ctx context.Context, text string) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return c.Messages(), ErrEmptyMessage
	}

	c.mu.Lock()
	c.messages = append(c.messages, Message{From: FromUser, Text: text})
	history := slices.Clone(c.messages)
	c.mu.Unlock()

	reply, err := c.responder.Reply(ctx, history)
	if err != nil || strings.TrimSpace(reply) == "" {
		c.log.Warn("chat responder failed, sending canned reply", "error", err)
		reply = CannedReply
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{From: FromBot, Text: reply})
	return slices.Clone(c.messages), nil
}
