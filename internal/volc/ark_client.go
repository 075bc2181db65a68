// Package volc talks to the Volcengine Ark API: Seedream images, Seedance
// image-to-video tasks and Ark chat models.
package volc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"
)

const (
	defaultBase   = "https://ark.cn-beijing.volces.com"
	defaultRegion = "cn-beijing"

	DefaultImageModel = "doubao-seedream-4.0"
	DefaultVideoModel = "doubao-seedance-1-0-lite-i2v"
	defaultImageSize  = "1024x1024"

	imagesPath = "/api/v3/images/generations"
	tasksPath  = "/api/v3/contents/generations/tasks"
)

// 视频任务状态
const (
	TaskQueued    = "queued"
	TaskRunning   = "running"
	TaskSucceeded = "succeeded"
	TaskFailed    = "failed"
)

// APIError is a non-2xx answer from Ark.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return "http " + strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

type ArkClient struct {
	BaseURL    string
	Region     string
	APIKey     string
	HTTPClient *http.Client
}

func NewArkClient(baseURL, region, apiKey string, timeout time.Duration) *ArkClient {
	if baseURL == "" {
		baseURL = defaultBase
	}
	if region == "" {
		region = defaultRegion
	}
	return &ArkClient{
		BaseURL:    baseURL,
		Region:     region,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// NewChatModel builds an eino chat model backed by the Ark chat endpoint.
func (c *ArkClient) NewChatModel(ctx context.Context, modelName string) (einomodel.BaseChatModel, error) {
	if modelName == "" {
		return nil, errors.New("model required")
	}
	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:     c.APIKey,
		Region:     c.Region,
		HTTPClient: c.HTTPClient,
		Model:      modelName,
	})
}

type ImageGenParams struct {
	Model  string
	Prompt string
	Size   string
	Seed   int
}

type imageRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Size      string `json:"size"`
	Seed      int    `json:"seed,omitempty"`
	Watermark bool   `json:"watermark"`
}

type imageDatum struct {
	URL    string `json:"url"`
	B64    string `json:"b64_json"`
	Format string `json:"format"`
}

// location is the remote URL, or a data URI for inline results.
func (d imageDatum) location() string {
	if d.URL != "" || d.B64 == "" {
		return d.URL
	}
	format := d.Format
	if format == "" {
		format = "png"
	}
	return "data:image/" + format + ";base64," + d.B64
}

// GenerateImages returns the image URLs (remote, or data URIs for b64 responses).
func (c *ArkClient) GenerateImages(ctx context.Context, p ImageGenParams) ([]string, error) {
	in := imageRequest{Model: p.Model, Prompt: p.Prompt, Size: p.Size, Seed: p.Seed}
	if in.Model == "" {
		in.Model = DefaultImageModel
	}
	if in.Size == "" {
		in.Size = defaultImageSize
	}

	var out struct {
		Data []imageDatum `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, imagesPath, in, &out); err != nil {
		return nil, err
	}
	var locations []string
	for _, d := range out.Data {
		if loc := d.location(); loc != "" {
			locations = append(locations, loc)
		}
	}
	if len(locations) == 0 {
		return nil, errors.New("no images returned")
	}
	return locations, nil
}

type VideoTaskParams struct {
	Model         string
	Prompt        string
	FirstFrameURL string
	Ratio         string
	Duration      int
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
	Role     string    `json:"role,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

type taskResponse struct {
	ID       string `json:"id"`
	TaskID   string `json:"task_id"`
	Status   string `json:"status"`
	VideoURL string `json:"video_url"`
	Content  struct {
		VideoURL string `json:"video_url"`
	} `json:"content"`
}

// CreateVideoTask 创建首帧图生视频任务
func (c *ArkClient) CreateVideoTask(ctx context.Context, p VideoTaskParams) (string, error) {
	if p.FirstFrameURL == "" {
		return "", errors.New("first frame required")
	}
	modelName := p.Model
	if modelName == "" {
		modelName = DefaultVideoModel
	}

	// 比例和时长以命令参数的形式附在文本后
	text := p.Prompt
	if p.Ratio != "" {
		text += " --ratio " + p.Ratio
	}
	if p.Duration > 0 {
		text += " --duration " + strconv.Itoa(p.Duration)
	}
	in := struct {
		Model   string        `json:"model"`
		Content []contentPart `json:"content"`
	}{
		Model: modelName,
		Content: []contentPart{
			{Type: "text", Text: text},
			{Type: "image_url", ImageURL: &imageRef{URL: p.FirstFrameURL}, Role: "first_frame"},
		},
	}

	var out taskResponse
	if err := c.do(ctx, http.MethodPost, tasksPath, in, &out); err != nil {
		return "", err
	}
	switch {
	case out.TaskID != "":
		return out.TaskID, nil
	case out.ID != "":
		return out.ID, nil
	}
	return "", errors.New("no task id in response")
}

// GetVideoTask returns the task status and, once succeeded, the video URL.
func (c *ArkClient) GetVideoTask(ctx context.Context, taskID string) (string, string, error) {
	var out taskResponse
	if err := c.do(ctx, http.MethodGet, tasksPath+"/"+url.PathEscape(taskID), nil, &out); err != nil {
		return "", "", err
	}
	videoURL := out.VideoURL
	if videoURL == "" {
		videoURL = out.Content.VideoURL
	}
	return out.Status, videoURL, nil
}

// do sends in as JSON (when non-nil) and decodes a 2xx answer into out.
func (c *ArkClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	logrus.WithFields(logrus.Fields{"method": method, "path": path}).Debug("ark request")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &APIError{StatusCode: res.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}
	return json.Unmarshal(raw, out)
}
