package gemini

import (
	"context"
	"errors"
	"io"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatModel_Generate(t *testing.T) {
	fake := &fakeModels{reply: "What did the fox want?"}
	m := NewChatModel(fake, "gemini-1.5-flash")

	msg, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("You are a tutor."),
		schema.UserMessage("Start"),
		schema.AssistantMessage("Hello", nil),
		schema.UserMessage("Go on"),
	}, einomodel.WithTemperature(0.2))
	require.NoError(t, err)

	assert.Equal(t, schema.Assistant, msg.Role)
	assert.Equal(t, "What did the fox want?", msg.Content)

	require.NotNil(t, fake.config.SystemInstruction)
	assert.Equal(t, "You are a tutor.", fake.config.SystemInstruction.Parts[0].Text)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.2, *fake.config.Temperature, 1e-6)

	require.Len(t, fake.contents, 3)
	assert.Equal(t, "user", fake.contents[0].Role)
	assert.Equal(t, "model", fake.contents[1].Role)
	assert.Equal(t, "Go on", fake.contents[2].Parts[0].Text)
}

func TestChatModel_Errors(t *testing.T) {
	_, err := NewChatModel(&fakeModels{}, "m").Generate(context.Background(), []*schema.Message{schema.SystemMessage("only system")})
	assert.Error(t, err)

	_, err = NewChatModel(&fakeModels{err: errors.New("boom")}, "m").Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.Error(t, err)

	_, err = NewChatModel(&fakeModels{reply: "   "}, "m").Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	assert.Error(t, err)
}

func TestChatModel_Stream(t *testing.T) {
	sr, err := NewChatModel(&fakeModels{reply: "hi there"}, "m").Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer sr.Close()

	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "hi there", msg.Content)

	_, err = sr.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
