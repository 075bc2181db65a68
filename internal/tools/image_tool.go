package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"mythos/internal/model"
)

// ImageRenderer renders an illustration and, for video media, its video.
type ImageRenderer interface {
	RegenerateStoryImage(ctx context.Context, imagePrompt string, style model.ImageStyle, mediaType model.MediaType, videoFormat model.VideoFormat) (model.MediaUpdate, error)
}

type ImageTool struct {
	renderer ImageRenderer
}

type ImageToolArgs struct {
	Prompt      string            `json:"prompt"`
	Style       model.ImageStyle  `json:"style"`
	MediaType   model.MediaType   `json:"mediaType"`
	VideoFormat model.VideoFormat `json:"videoFormat"`
}

func NewImageTool(renderer ImageRenderer) *ImageTool {
	return &ImageTool{renderer: renderer}
}

func (t *ImageTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"prompt":      {Type: schema.String, Required: true, Desc: "illustration prompt in English"},
		"style":       {Type: schema.String, Desc: "image style, default digital-art", Enum: enumOf(model.ImageStyles)},
		"mediaType":   {Type: schema.String, Desc: "video also returns a video artifact", Enum: enumOf(model.MediaTypes)},
		"videoFormat": {Type: schema.String, Desc: "container for video media", Enum: enumOf(model.VideoFormats)},
	}
	return &schema.ToolInfo{
		Name:        "image_generate",
		Desc:        "Render a 1280x720 illustration as a data URI, plus a video when mediaType is video",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

func (t *ImageTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args ImageToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if strings.TrimSpace(args.Prompt) == "" {
		return "", fmt.Errorf("%w: prompt required", model.ErrInvalidRequest)
	}
	if args.Style == "" {
		args.Style = model.StyleDigitalArt
	}
	if args.MediaType == "" {
		args.MediaType = model.MediaTextWithImage
	}

	update, err := t.renderer.RegenerateStoryImage(ctx, args.Prompt, args.Style, args.MediaType, args.VideoFormat)
	if err != nil {
		return "", err
	}
	return marshal(update)
}

var _ einotool.InvokableTool = (*ImageTool)(nil)
