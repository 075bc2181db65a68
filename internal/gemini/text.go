// Package gemini wraps the Gemini API for story drafting and chat.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"mythos/internal/model"
	"mythos/internal/prompt"
)

// ErrTextGeneration marks a failed call to the text model.
var ErrTextGeneration = errors.New("story generation failed")

const (
	UntitledMarker  = "Untitled"
	NoContentMarker = "No content generated."
)

// ContentGenerator is the part of genai.Models this package calls.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient returns the Gemini Developer API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

var storySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"content":     {Type: genai.TypeString},
		"imagePrompt": {Type: genai.TypeString},
	},
	Required: []string{"title", "content", "imagePrompt"},
}

// TextClient drafts stories as constrained JSON.
type TextClient struct {
	models ContentGenerator
	model  string
}

func NewTextClient(models ContentGenerator, modelName string) *TextClient {
	return &TextClient{models: models, model: modelName}
}

// GenerateStory sends the prompt and parses the reply. Only a failed call is an
// error; a malformed reply falls back to defaults built from topic.
func (c *TextClient) GenerateStory(ctx context.Context, instruction, topic string) (model.StoryDraft, error) {
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{userContent(instruction)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   storySchema,
		},
	)
	if err != nil {
		return model.StoryDraft{}, fmt.Errorf("%w: %w", ErrTextGeneration, err)
	}

	var raw string
	if resp != nil {
		raw = resp.Text()
	}
	return ParseStoryDraft(raw, topic), nil
}

// ParseStoryDraft decodes the model reply. Parse failures and missing fields are
// treated the same way: each empty field gets its default.
func ParseStoryDraft(raw, topic string) model.StoryDraft {
	var d model.StoryDraft
	if err := json.Unmarshal([]byte(stripFence(raw)), &d); err != nil {
		logrus.WithError(err).WithField("bytes", len(raw)).Warn("story reply is not valid JSON, using defaults")
		d = model.StoryDraft{}
	}
	if strings.TrimSpace(d.Title) == "" {
		d.Title = UntitledMarker
	}
	if strings.TrimSpace(d.Content) == "" {
		d.Content = NoContentMarker
	}
	if strings.TrimSpace(d.ImagePrompt) == "" {
		d.ImagePrompt = prompt.FallbackImagePrompt(topic)
	}
	return d
}

// stripFence removes a ```json ... ``` wrapper some models add despite the MIME type.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func userContent(text string) *genai.Content {
	return &genai.Content{Role: "user", Parts: []*genai.Part{{Text: text}}}
}
