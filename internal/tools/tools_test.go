package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythos/internal/model"
	"mythos/internal/service"
)

type fakeDrafter struct{ req model.StoryRequest }

func (f *fakeDrafter) DraftStory(ctx context.Context, req model.StoryRequest) (model.StoryDraft, error) {
	f.req = req
	return model.StoryDraft{Title: "Owls", Content: "Hoo.", ImagePrompt: "an owl"}, nil
}

type fakeRenderer struct {
	err       error
	style     model.ImageStyle
	mediaType model.MediaType
}

func (f *fakeRenderer) RegenerateStoryImage(ctx context.Context, p string, style model.ImageStyle, mediaType model.MediaType, format model.VideoFormat) (model.MediaUpdate, error) {
	f.style, f.mediaType = style, mediaType
	if f.err != nil {
		return model.MediaUpdate{}, f.err
	}
	return model.MediaUpdate{ImageURL: "data:image/png;base64,AA=="}, nil
}

type fakeSynth struct{ err error }

func (f fakeSynth) Synthesize(ctx context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "data:audio/mpeg;base64,AA==", nil
}

func newRegistry(t *testing.T, renderer *fakeRenderer, synth fakeSynth) (*Registry, *fakeDrafter) {
	t.Helper()
	drafter := &fakeDrafter{}
	r, err := NewRegistry(context.Background(),
		NewStoryTool(drafter),
		NewImageTool(renderer),
		NewSpeechTool(synth),
		NewVideoTool(service.SimulatedVideo{}),
	)
	require.NoError(t, err)
	return r, drafter
}

func TestRegistry_Infos(t *testing.T) {
	r, _ := newRegistry(t, &fakeRenderer{}, fakeSynth{})

	infos, err := r.Infos(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
		assert.NotEmpty(t, info.Desc)
	}
	assert.Equal(t, []string{"image_generate", "speech_generate", "story_generate", "video_generate"}, names)
}

func TestRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry(context.Background(), NewSpeechTool(fakeSynth{}), NewSpeechTool(fakeSynth{}))
	assert.Error(t, err)
}

func TestStoryTool(t *testing.T) {
	r, drafter := newRegistry(t, &fakeRenderer{}, fakeSynth{})

	out, err := r.Invoke(context.Background(), "story_generate", `{"topic":"owls","genre":"folktale","includeCulture":true}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Owls","content":"Hoo.","imagePrompt":"an owl"}`, out)
	assert.Equal(t, model.GenreFolktale, drafter.req.Genre)
	assert.True(t, drafter.req.IncludeCulture)

	_, err = r.Invoke(context.Background(), "story_generate", `{not json`)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestImageTool(t *testing.T) {
	renderer := &fakeRenderer{}
	r, _ := newRegistry(t, renderer, fakeSynth{})

	out, err := r.Invoke(context.Background(), "image_generate", `{"prompt":"a fox"}`)
	require.NoError(t, err)
	var update model.MediaUpdate
	require.NoError(t, json.Unmarshal([]byte(out), &update))
	assert.Equal(t, "data:image/png;base64,AA==", update.ImageURL)
	assert.Equal(t, model.StyleDigitalArt, renderer.style)
	assert.Equal(t, model.MediaTextWithImage, renderer.mediaType)

	_, err = r.Invoke(context.Background(), "image_generate", `{"prompt":" "}`)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	renderer.err = errors.New("image generation failed")
	_, err = r.Invoke(context.Background(), "image_generate", `{"prompt":"a fox"}`)
	assert.Error(t, err)
}

func TestSpeechTool(t *testing.T) {
	r, _ := newRegistry(t, &fakeRenderer{}, fakeSynth{})
	out, err := r.Invoke(context.Background(), "speech_generate", `{"text":"hello"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"audioUrl":"data:audio/mpeg;base64,AA=="}`, out)

	failing, _ := newRegistry(t, &fakeRenderer{}, fakeSynth{err: errors.New("quota")})
	_, err = failing.Invoke(context.Background(), "speech_generate", `{"text":"hello"}`)
	assert.Error(t, err)

	_, err = r.Invoke(context.Background(), "speech_generate", `{}`)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestVideoTool(t *testing.T) {
	r, _ := newRegistry(t, &fakeRenderer{}, fakeSynth{})
	out, err := r.Invoke(context.Background(), "video_generate", `{"image":"data:image/png;base64,AA=="}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"videoUrl":"data:image/png;base64,AA==","isVideoSimulated":true}`, out)

	_, err = r.Invoke(context.Background(), "video_generate", `{"image":"data:audio/mpeg;base64,AA=="}`)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestRegistry_UnknownTool(t *testing.T) {
	r, _ := newRegistry(t, &fakeRenderer{}, fakeSynth{})
	_, err := r.Invoke(context.Background(), "dance", `{}`)
	assert.ErrorIs(t, err, ErrUnknownTool)
}
