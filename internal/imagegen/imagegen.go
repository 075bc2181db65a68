// Package imagegen renders illustrations and returns them as data URIs.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mythos/internal/datauri"
	"mythos/internal/model"
)

// ErrImageGeneration marks any failure to produce an image.
var ErrImageGeneration = errors.New("image generation failed")

// maxImageBytes bounds a downloaded image.
const maxImageBytes = 20 << 20

// Generator produces one image for a prompt and style.
type Generator interface {
	Generate(ctx context.Context, prompt string, style model.ImageStyle) (string, error)
}

// EnhancePrompt adds the style and quality modifiers sent to every backend.
func EnhancePrompt(prompt string, style model.ImageStyle) string {
	return fmt.Sprintf("%s, %s style, high quality, detailed, 8k resolution, cinematic lighting", prompt, style)
}

// Pollinations fetches images from the Pollinations GET endpoint.
type Pollinations struct {
	BaseURL    string
	HTTPClient *http.Client
	// Seed returns the cache-busting seed in [0,999].
	Seed func() int
}

func NewPollinations(baseURL string, timeout time.Duration) *Pollinations {
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	return &Pollinations{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Seed:       func() int { return rand.IntN(1000) },
	}
}

// URL builds the request URL for a prompt.
func (p *Pollinations) URL(prompt string, style model.ImageStyle) string {
	q := url.Values{}
	q.Set("width", "1280")
	q.Set("height", "720")
	q.Set("model", "flux")
	q.Set("nologo", "true")
	q.Set("seed", fmt.Sprint(p.Seed()))
	return p.BaseURL + "/prompt/" + url.PathEscape(EnhancePrompt(prompt, style)) + "?" + q.Encode()
}

func (p *Pollinations) Generate(ctx context.Context, prompt string, style model.ImageStyle) (string, error) {
	uri, err := fetchImage(ctx, p.HTTPClient, p.URL(prompt, style))
	if err != nil {
		logrus.WithError(err).WithField("style", style).Warn("pollinations image failed")
		return "", fmt.Errorf("%w: %w", ErrImageGeneration, err)
	}
	return uri, nil
}

// fetchImage downloads an image and inlines it as a data URI.
func fetchImage(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d", res.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxImageBytes))
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("empty image body")
	}

	mimeType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("unexpected content type %q", mimeType)
	}
	return datauri.Encode(mimeType, data), nil
}
