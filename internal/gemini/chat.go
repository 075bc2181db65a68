package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// ChatModel adapts Gemini to eino's chat model interface. System messages become
// the system instruction; assistant turns are sent with the "model" role.
type ChatModel struct {
	models ContentGenerator
	model  string
}

func NewChatModel(models ContentGenerator, modelName string) *ChatModel {
	return &ChatModel{models: models, model: modelName}
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	contents, system := toContents(input)
	if len(contents) == 0 {
		return nil, errors.New("no user or assistant messages")
	}

	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	common := einomodel.GetCommonOptions(&einomodel.Options{}, opts...)
	if common.Temperature != nil {
		cfg.Temperature = common.Temperature
	}
	if common.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*common.MaxTokens)
	}
	modelName := m.model
	if common.Model != nil && *common.Model != "" {
		modelName = *common.Model
	}

	resp, err := m.models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini chat: %w", err)
	}
	var text string
	if resp != nil {
		text = resp.Text()
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("gemini chat: empty reply")
	}
	return schema.AssistantMessage(text, nil), nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func toContents(input []*schema.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: msg.Content}}})
		default:
			contents = append(contents, userContent(msg.Content))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}
}

var _ einomodel.BaseChatModel = (*ChatModel)(nil)
