// Package agent holds the Socratic Q&A conversation attached to a story.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"mythos/internal/model"
	"mythos/internal/prompt"
)

var (
	// ErrChat marks a failed call to the chat model.
	ErrChat = errors.New("conversation failed")
	// ErrBusy is returned while another turn of the same conversation is in flight.
	ErrBusy = errors.New("conversation busy")
	// ErrEmptyMessage rejects a blank user turn.
	ErrEmptyMessage = fmt.Errorf("%w: message is empty", model.ErrInvalidRequest)
)

// Conversation 一个故事的对话会话. History is append-only, oldest first.
type Conversation struct {
	chat      einomodel.BaseChatModel
	grounding string
	inflight  *semaphore.Weighted

	mu      sync.RWMutex
	history []model.ChatMessage
}

func NewConversation(chat einomodel.BaseChatModel, grounding string) *Conversation {
	return &Conversation{
		chat:      chat,
		grounding: grounding,
		inflight:  semaphore.NewWeighted(1),
	}
}

// History returns a copy of the turns so far.
func (c *Conversation) History() []model.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

// Seed asks for the opening question and stores it as the first model turn.
// Without grounding text nothing is called; an already seeded conversation is
// returned as is.
func (c *Conversation) Seed(ctx context.Context) ([]model.ChatMessage, error) {
	if strings.TrimSpace(c.grounding) == "" {
		return c.History(), nil
	}
	if !c.inflight.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer c.inflight.Release(1)

	if h := c.History(); len(h) > 0 {
		return h, nil
	}

	msgs, err := prompt.FormatOpening(ctx, c.grounding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChat, err)
	}
	reply, err := c.generate(ctx, msgs)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.history = append(c.history, model.ChatMessage{Role: model.RoleModel, Text: reply})
	c.mu.Unlock()
	return c.History(), nil
}

// Send adds one user turn and the model's answer. Both are appended together,
// and only when the model answers.
func (c *Conversation) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}
	if !c.inflight.TryAcquire(1) {
		return model.ChatMessage{}, ErrBusy
	}
	defer c.inflight.Release(1)

	msgs, err := prompt.FormatContinue(ctx, c.grounding, toSchema(c.History()), text)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("%w: %w", ErrChat, err)
	}
	reply, err := c.generate(ctx, msgs)
	if err != nil {
		return model.ChatMessage{}, err
	}

	answer := model.ChatMessage{Role: model.RoleModel, Text: reply}
	c.mu.Lock()
	c.history = append(c.history, model.ChatMessage{Role: model.RoleUser, Text: text}, answer)
	c.mu.Unlock()
	return answer, nil
}

func (c *Conversation) generate(ctx context.Context, msgs []*schema.Message) (string, error) {
	out, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		logrus.WithError(err).Warn("chat model call failed")
		return "", fmt.Errorf("%w: %w", ErrChat, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: no reply", ErrChat)
	}
	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrChat)
	}
	return reply, nil
}

func toSchema(history []model.ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if m.Role == model.RoleModel {
			out = append(out, schema.AssistantMessage(m.Text, nil))
			continue
		}
		out = append(out, schema.UserMessage(m.Text))
	}
	return out
}
