package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"mythos/internal/datauri"
	"mythos/internal/model"
	"mythos/internal/service"
)

// 实现eino框架的视频生成工具
type VideoTool struct {
	video service.VideoSynthesizer
}

// 视频生成请求参数
type VideoToolArgs struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

// 视频生成响应
type VideoToolResp struct {
	VideoURL    string `json:"videoUrl"`
	IsSimulated bool   `json:"isVideoSimulated"`
}

// NewVideoTool 创建视频生成工具实例
func NewVideoTool(video service.VideoSynthesizer) *VideoTool {
	return &VideoTool{video: video}
}

// Info 获取视频生成工具信息
func (t *VideoTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params := map[string]*schema.ParameterInfo{
		"image":  {Type: schema.String, Required: true, Desc: "first frame, as a data URI or URL"},
		"prompt": {Type: schema.String, Desc: "motion description"},
	}
	return &schema.ToolInfo{
		Name:        "video_generate",
		Desc:        "Turn a still illustration into a video with the configured video backend",
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}, nil
}

// InvokableRun 执行视频生成任务
func (t *VideoTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...einotool.Option) (string, error) {
	var args VideoToolArgs
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidRequest, err)
	}
	if strings.TrimSpace(args.Image) == "" {
		return "", fmt.Errorf("%w: image required", model.ErrInvalidRequest)
	}
	if mt := datauri.MediaType(args.Image); mt != "" && !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("%w: image must be an image, got %s", model.ErrInvalidRequest, mt)
	}

	res, err := t.video.Synthesize(ctx, args.Image, args.Prompt)
	if err != nil {
		return "", err
	}
	return marshal(VideoToolResp{VideoURL: res.URL, IsSimulated: res.Simulated})
}

var _ einotool.InvokableTool = (*VideoTool)(nil)
