package store

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythos/internal/agent"
	"mythos/internal/model"
)

type echoChat struct{}

func (echoChat) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	return schema.AssistantMessage("What happened next?", nil), nil
}

func (echoChat) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("What happened next?", nil)}), nil
}

func newStore(capacity int) *Store {
	return New(capacity, func(grounding string) *agent.Conversation {
		return agent.NewConversation(echoChat{}, grounding)
	})
}

func TestPutGet(t *testing.T) {
	s := newStore(4)
	s.Put(model.GeneratedStory{ID: "a", Title: "A"})

	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvictionAndList(t *testing.T) {
	s := newStore(2)
	assert.Empty(t, s.Put(model.GeneratedStory{ID: "a"}))
	assert.Empty(t, s.Put(model.GeneratedStory{ID: "b"}))
	assert.Equal(t, []string{"a"}, s.Put(model.GeneratedStory{ID: "c"}))

	_, err := s.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 2, s.Len())

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestUpdate(t *testing.T) {
	s := newStore(4)
	s.Put(model.GeneratedStory{ID: "a", AudioURL: "old"})

	got, err := s.Update("a", func(cur model.GeneratedStory) (model.GeneratedStory, error) {
		return cur.WithAudio("new"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", got.AudioURL)

	_, err = s.Update("a", func(cur model.GeneratedStory) (model.GeneratedStory, error) {
		return model.GeneratedStory{}, errors.New("image generation failed")
	})
	assert.Error(t, err)
	stored, _ := s.Get("a")
	assert.Equal(t, "new", stored.AudioURL)

	_, err = s.Update("missing", func(cur model.GeneratedStory) (model.GeneratedStory, error) { return cur, nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_Busy(t *testing.T) {
	s := newStore(4)
	s.Put(model.GeneratedStory{ID: "a"})

	var inner error
	_, err := s.Update("a", func(cur model.GeneratedStory) (model.GeneratedStory, error) {
		_, inner = s.Update("a", func(cur model.GeneratedStory) (model.GeneratedStory, error) { return cur, nil })
		return cur, nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrBusy)

	// guard is released afterwards
	_, err = s.Update("a", func(cur model.GeneratedStory) (model.GeneratedStory, error) { return cur, nil })
	assert.NoError(t, err)
}

func TestConversation(t *testing.T) {
	s := newStore(4)
	s.Put(model.GeneratedStory{ID: "a", Content: "The fox and the grapes."})

	c1, err := s.Conversation("a")
	require.NoError(t, err)
	c2, err := s.Conversation("a")
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	history, err := c1.Seed(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = s.Conversation("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
