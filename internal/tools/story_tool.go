package tools

import (
	"context"
	"encoding/json"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"mythos/internal/model"
)

// StoryDrafter drafts the text of a story without media.
type StoryDrafter interface {
	DraftStory(ctx context.Context, req model.StoryRequest) (model.StoryDraft, error)
}

// StoryTool 实现eino框架的故事生成工具
type StoryTool struct {
	drafter StoryDrafter
}

// NewStoryTool 创建故事生成工具实例
func NewStoryTool(drafter StoryDrafter) *StoryTool {
	return &StoryTool{drafter: drafter}
}

// Info 获取故事生成工具信息
func (t *StoryTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"topic":          {Type: schema.String, Required: true, Desc: "story topic"},
		"genre":          {Type: schema.String, Desc: "story genre", Enum: enumOf(model.Genres)},
		"ageGroup":       {Type: schema.String, Desc: "target audience", Enum: enumOf(model.AgeGroups)},
		"language":       {Type: schema.String, Desc: "narrative language, default English"},
		"mediaType":      {Type: schema.String, Desc: "video asks for a very short script", Enum: enumOf(model.MediaTypes)},
		"includeCulture": {Type: schema.Boolean, Desc: "weave regional references into the story"},
	}
	return &schema.ToolInfo{
		Name:        "story_generate",
		Desc:        "Write the title, narrative text and an English illustration prompt for a topic",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行故事生成任务
func (t *StoryTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var req model.StoryRequest
	if err := json.Unmarshal([]byte(argumentsInJSON), &req); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}

	draft, err := t.drafter.DraftStory(ctx, req)
	if err != nil {
		return "", err
	}
	return marshal(draft)
}

func enumOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func marshal(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// 确保StoryTool实现了einotool.InvokableTool接口
var _ einotool.InvokableTool = (*StoryTool)(nil)
