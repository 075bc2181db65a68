package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythos/internal/model"
)

type fakeChat struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   int
	inputs  [][]*schema.Message
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeChat) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return schema.AssistantMessage(reply, nil), nil
}

func (f *fakeChat) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestSeed(t *testing.T) {
	t.Run("first message is from the model", func(t *testing.T) {
		chat := &fakeChat{replies: []string{"Why is the sea salty?"}}
		c := NewConversation(chat, "The sea breathes.")

		history, err := c.Seed(context.Background())
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.RoleModel, history[0].Role)
		assert.Equal(t, "Why is the sea salty?", history[0].Text)
		assert.Contains(t, chat.inputs[0][0].Content, "The sea breathes.")
	})

	t.Run("empty grounding makes no call", func(t *testing.T) {
		chat := &fakeChat{}
		c := NewConversation(chat, "  \n ")

		history, err := c.Seed(context.Background())
		require.NoError(t, err)
		assert.Empty(t, history)
		assert.Equal(t, 0, chat.calls)
	})

	t.Run("seeding twice reuses the opening question", func(t *testing.T) {
		chat := &fakeChat{replies: []string{"Q1?"}}
		c := NewConversation(chat, "story")

		_, err := c.Seed(context.Background())
		require.NoError(t, err)
		history, err := c.Seed(context.Background())
		require.NoError(t, err)
		assert.Len(t, history, 1)
		assert.Equal(t, 1, chat.calls)
	})

	t.Run("failure seeds nothing", func(t *testing.T) {
		c := NewConversation(&fakeChat{err: errors.New("503")}, "story")
		_, err := c.Seed(context.Background())
		assert.ErrorIs(t, err, ErrChat)
		assert.Empty(t, c.History())
	})
}

func TestSend(t *testing.T) {
	chat := &fakeChat{replies: []string{"Q1?", "A1", "A2"}}
	c := NewConversation(chat, "story text")
	ctx := context.Background()

	_, err := c.Seed(ctx)
	require.NoError(t, err)

	reply, err := c.Send(ctx, " first ")
	require.NoError(t, err)
	assert.Equal(t, model.ChatMessage{Role: model.RoleModel, Text: "A1"}, reply)

	_, err = c.Send(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, []model.ChatMessage{
		{Role: model.RoleModel, Text: "Q1?"},
		{Role: model.RoleUser, Text: "first"},
		{Role: model.RoleModel, Text: "A1"},
		{Role: model.RoleUser, Text: "second"},
		{Role: model.RoleModel, Text: "A2"},
	}, c.History())

	// system + 3 prior turns + new user turn
	last := chat.inputs[2]
	require.Len(t, last, 5)
	assert.Equal(t, schema.System, last[0].Role)
	assert.Contains(t, last[0].Content, "story text")
	assert.Equal(t, schema.Assistant, last[1].Role)
	assert.Equal(t, "second", last[4].Content)
}

func TestSend_Rejections(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		chat := &fakeChat{}
		_, err := NewConversation(chat, "s").Send(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.ErrorIs(t, err, model.ErrInvalidRequest)
		assert.Equal(t, 0, chat.calls)
	})

	t.Run("failure appends nothing", func(t *testing.T) {
		c := NewConversation(&fakeChat{err: errors.New("boom")}, "s")
		_, err := c.Send(context.Background(), "hello")
		assert.ErrorIs(t, err, ErrChat)
		assert.Empty(t, c.History())
	})

	t.Run("concurrent send is busy", func(t *testing.T) {
		chat := &fakeChat{replies: []string{"A1"}, block: make(chan struct{}), entered: make(chan struct{})}
		c := NewConversation(chat, "s")

		done := make(chan error, 1)
		go func() {
			_, err := c.Send(context.Background(), "first")
			done <- err
		}()
		<-chat.entered

		_, err := c.Send(context.Background(), "second")
		assert.ErrorIs(t, err, ErrBusy)
		_, err = c.Seed(context.Background())
		assert.ErrorIs(t, err, ErrBusy)

		close(chat.block)
		require.NoError(t, <-done)
		assert.Len(t, c.History(), 2)
	})
}
