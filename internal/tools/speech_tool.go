package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"mythos/internal/model"
	"mythos/internal/speech"
)

// SpeechTool narrates text. Unlike story regeneration, failures are returned.
type SpeechTool struct {
	synth speech.Synthesizer
}

type SpeechToolArgs struct {
	Text string `json:"text"`
}

type SpeechToolResp struct {
	AudioURL string `json:"audioUrl"`
}

func NewSpeechTool(synth speech.Synthesizer) *SpeechTool {
	return &SpeechTool{synth: synth}
}

func (t *SpeechTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"text": {Type: schema.String, Required: true, Desc: "narrative text; markdown and [directions] are stripped"},
	}
	return &schema.ToolInfo{
		Name:        "speech_generate",
		Desc:        "Narrate text and return the audio as a data URI",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *SpeechTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args SpeechToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if strings.TrimSpace(args.Text) == "" {
		return "", fmt.Errorf("%w: text required", model.ErrInvalidRequest)
	}

	uri, err := t.synth.Synthesize(ctx, args.Text)
	if err != nil {
		return "", err
	}
	return marshal(SpeechToolResp{AudioURL: uri})
}

var _ einotool.InvokableTool = (*SpeechTool)(nil)
